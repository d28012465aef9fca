package handler

import (
	"context"
	"errors"
	"strings"

	"ledgerbot/internal/domain"
	"ledgerbot/internal/service"
	"ledgerbot/internal/session"

	"go.uber.org/zap"
)

// defaultRecentLimit is how many movements the movimientos command lists
const defaultRecentLimit = 5

// Options tunes the dispatcher
type Options struct {
	// RejectUnauthorized replies to unknown senders instead of ignoring them
	RejectUnauthorized bool
	RecentLimit        int
}

// Handler routes inbound messages to the admin commands or the conversation
type Handler struct {
	accessService     *service.AccessService
	subscriberService *service.SubscriberService
	ledgerService     *service.LedgerService
	sessions          session.Store
	logger            *zap.Logger
	opts              Options
}

// NewHandler creates a new handler instance
func NewHandler(
	accessService *service.AccessService,
	subscriberService *service.SubscriberService,
	ledgerService *service.LedgerService,
	sessions session.Store,
	logger *zap.Logger,
	opts Options,
) *Handler {
	if opts.RecentLimit <= 0 {
		opts.RecentLimit = defaultRecentLimit
	}
	return &Handler{
		accessService:     accessService,
		subscriberService: subscriberService,
		ledgerService:     ledgerService,
		sessions:          sessions,
		logger:            logger,
		opts:              opts,
	}
}

// Identity returns the canonical identity of a raw sender
func (h *Handler) Identity(sender string) string {
	return h.accessService.Identity(sender)
}

// Handle processes one inbound message. Store failures are answered and logged
// here, so a returned error means the reply itself could not be sent.
func (h *Handler) Handle(ctx context.Context, msg domain.Message) error {
	identity := h.accessService.Identity(msg.Sender())
	text := strings.TrimSpace(msg.Text())

	if identity == "" || text == "" {
		h.logger.Debug("Ignoring message", zap.String("sender", msg.Sender()))
		return nil
	}

	if h.accessService.IsAdmin(identity) && isAdminCommand(text) {
		return h.reply(ctx, msg, h.handleAdmin(ctx, text)...)
	}

	sub, err := h.accessService.Resolve(ctx, identity)
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		h.logger.Info("Unauthorized sender", zap.String("phone", identity))
		if h.opts.RejectUnauthorized {
			return h.reply(ctx, msg, textUnauthorized)
		}
		return nil
	case err != nil:
		h.logger.Error("Failed to resolve sender", zap.Error(err), zap.String("phone", identity))
		return h.reply(ctx, msg, textUnexpected)
	}

	if isAdminCommand(text) {
		return h.reply(ctx, msg, textAdminOnly)
	}

	return h.reply(ctx, msg, h.converse(ctx, sub, text)...)
}

func (h *Handler) reply(ctx context.Context, msg domain.Message, texts ...string) error {
	for _, t := range texts {
		if err := msg.Reply(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

func firstWord(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}
