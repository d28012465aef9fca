package testutil

import (
	"context"
	"sync"

	"ledgerbot/internal/domain"

	"go.uber.org/zap"
)

// NewTestLogger creates a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// NewTestSubscriber creates a fully onboarded, authorized subscriber
func NewTestSubscriber(phone string) *domain.Subscriber {
	return &domain.Subscriber{
		Phone:       phone,
		Email:       "user@example.com",
		Authorized:  true,
		LedgerID:    "ledger-" + phone,
		LedgerURL:   "https://docs.google.com/spreadsheets/d/ledger-" + phone + "/edit",
		DisplayName: "Tester",
	}
}

// FakeMessage is an inbound message that records replies
type FakeMessage struct {
	From     string
	Body     string
	ReplyErr error

	mu      sync.Mutex
	replies []string
}

// NewFakeMessage creates a message from sender with text
func NewFakeMessage(from, body string) *FakeMessage {
	return &FakeMessage{From: from, Body: body}
}

func (m *FakeMessage) Sender() string { return m.From }

func (m *FakeMessage) Text() string { return m.Body }

func (m *FakeMessage) Reply(ctx context.Context, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, text)
	return m.ReplyErr
}

// Replies returns the texts sent so far
func (m *FakeMessage) Replies() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.replies...)
}

// LastReply returns the most recent reply or ""
func (m *FakeMessage) LastReply() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.replies) == 0 {
		return ""
	}
	return m.replies[len(m.replies)-1]
}
