package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"ledgerbot/internal/domain"
)

// MemoryDirectory is an in-memory DirectoryRepository keyed by canonical phone
type MemoryDirectory struct {
	mu           sync.Mutex
	rows         map[string]*domain.Subscriber
	FindErr      error
	SetFieldsErr error
	Finds        int
	Appended     []string
}

// NewMemoryDirectory creates a directory holding copies of subs
func NewMemoryDirectory(subs ...*domain.Subscriber) *MemoryDirectory {
	d := &MemoryDirectory{rows: make(map[string]*domain.Subscriber)}
	for _, s := range subs {
		c := *s
		d.rows[s.Phone] = &c
	}
	return d
}

// Get returns a copy of the stored row, or nil
func (d *MemoryDirectory) Get(phone string) *domain.Subscriber {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.rows[phone]
	if !ok {
		return nil
	}
	c := *s
	return &c
}

// Len returns the number of rows
func (d *MemoryDirectory) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.rows)
}

func (d *MemoryDirectory) FindByPhone(ctx context.Context, phone string) (*domain.Subscriber, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Finds++
	if d.FindErr != nil {
		return nil, d.FindErr
	}
	s, ok := d.rows[phone]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *s
	return &c, nil
}

func (d *MemoryDirectory) SetFields(ctx context.Context, phone string, fields map[domain.Field]string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.SetFieldsErr != nil {
		return d.SetFieldsErr
	}
	s, ok := d.rows[phone]
	if !ok {
		return domain.ErrNotFound
	}
	for f, v := range fields {
		switch f {
		case domain.FieldEmail:
			s.Email = v
		case domain.FieldLedgerID:
			s.LedgerID = v
		case domain.FieldLedgerURL:
			s.LedgerURL = v
		case domain.FieldDisplayName:
			s.DisplayName = v
		case domain.FieldNote:
			s.Note = v
		default:
			return fmt.Errorf("unknown field %q", f)
		}
	}
	return nil
}

func (d *MemoryDirectory) SetAuthorized(ctx context.Context, phone string, authorized bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.rows[phone]
	if !ok {
		return domain.ErrNotFound
	}
	s.Authorized = authorized
	return nil
}

func (d *MemoryDirectory) Append(ctx context.Context, phone string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Appended = append(d.Appended, phone)
	if s, ok := d.rows[phone]; ok {
		s.Authorized = true
		return nil
	}
	d.rows[phone] = &domain.Subscriber{Phone: phone, Authorized: true}
	return nil
}

// MemoryLedger is an in-memory LedgerRepository
type MemoryLedger struct {
	mu           sync.Mutex
	Transactions map[string][]domain.Transaction
	categories   map[string]map[domain.Kind][]string
	Provisioned  []string
	Shared       []string
	Dashboards   []string

	AppendErr    error
	ProvisionErr error
	ListErr      error
}

// NewMemoryLedger creates an empty ledger store
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		Transactions: make(map[string][]domain.Transaction),
		categories:   make(map[string]map[domain.Kind][]string),
	}
}

// SetCategories replaces the categories of one kind
func (l *MemoryLedger) SetCategories(ledgerID string, kind domain.Kind, names ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.categories[ledgerID] == nil {
		l.categories[ledgerID] = make(map[domain.Kind][]string)
	}
	l.categories[ledgerID][kind] = names
}

// Recorded returns the movements of a ledger
func (l *MemoryLedger) Recorded(ledgerID string) []domain.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.Transaction(nil), l.Transactions[ledgerID]...)
}

func (l *MemoryLedger) AppendTransaction(ctx context.Context, ledgerID string, tx domain.Transaction) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.AppendErr != nil {
		return l.AppendErr
	}
	l.Transactions[ledgerID] = append(l.Transactions[ledgerID], tx)
	return nil
}

func (l *MemoryLedger) RecentTransactions(ctx context.Context, ledgerID string, limit int) ([]domain.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	txs := l.Transactions[ledgerID]
	if limit > 0 && len(txs) > limit {
		txs = txs[len(txs)-limit:]
	}
	return append([]domain.Transaction(nil), txs...), nil
}

func (l *MemoryLedger) ListCategories(ctx context.Context, ledgerID string, kind domain.Kind) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ListErr != nil {
		return nil, l.ListErr
	}
	return append([]string(nil), l.categories[ledgerID][kind]...), nil
}

func (l *MemoryLedger) AddCategory(ctx context.Context, ledgerID string, kind domain.Kind, name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.categories[ledgerID] == nil {
		l.categories[ledgerID] = make(map[domain.Kind][]string)
	}
	for _, existing := range l.categories[ledgerID][kind] {
		if strings.EqualFold(existing, name) {
			return nil
		}
	}
	l.categories[ledgerID][kind] = append(l.categories[ledgerID][kind], name)
	return nil
}

func (l *MemoryLedger) ProvisionLedger(ctx context.Context, templateID, title string) (domain.Ledger, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ProvisionErr != nil {
		return domain.Ledger{}, l.ProvisionErr
	}
	l.Provisioned = append(l.Provisioned, title)
	id := fmt.Sprintf("%s-copy-%d", templateID, len(l.Provisioned))
	return domain.Ledger{ID: id, URL: "https://docs.google.com/spreadsheets/d/" + id + "/edit"}, nil
}

func (l *MemoryLedger) ShareLedger(ctx context.Context, ledgerID, email string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Shared = append(l.Shared, ledgerID+":"+email)
	return nil
}

func (l *MemoryLedger) InitDashboard(ctx context.Context, ledgerID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Dashboards = append(l.Dashboards, ledgerID)
	return nil
}
