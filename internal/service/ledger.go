package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ledgerbot/internal/domain"
	"ledgerbot/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LedgerOptions configures provisioning and dates
type LedgerOptions struct {
	TemplateID string
	Share      bool
	Dashboard  bool
	Location   *time.Location
}

// LedgerService handles per-user ledgers
type LedgerService struct {
	ledger    repository.LedgerRepository
	directory repository.DirectoryRepository
	opts      LedgerOptions
	logger    *zap.Logger

	now   func() time.Time
	newID func() (string, error)
}

// NewLedgerService creates a new ledger service
func NewLedgerService(
	ledger repository.LedgerRepository,
	directory repository.DirectoryRepository,
	opts LedgerOptions,
	logger *zap.Logger,
) *LedgerService {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &LedgerService{
		ledger:    ledger,
		directory: directory,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
		newID:     newTransactionID,
	}
}

// SetClock replaces the time source
func (s *LedgerService) SetClock(now func() time.Time) {
	s.now = now
}

// uuid v7 ids sort by creation time
func newTransactionID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// EnsureProvisioned creates the subscriber's ledger unless it already has one.
// It reports whether a ledger was created. sub is updated in place.
// Sharing and the dashboard are best effort. A provisioning failure is
// written to the subscriber's note so the admin sees it, and a later
// success clears it.
func (s *LedgerService) EnsureProvisioned(ctx context.Context, sub *domain.Subscriber) (bool, error) {
	if sub.HasLedger() {
		return false, nil
	}

	ledger, err := s.provision(ctx, sub)
	if err != nil {
		note := fmt.Sprintf("%s error al crear Excel: %v", s.today(), err)
		if nerr := s.directory.SetFields(ctx, sub.Phone, map[domain.Field]string{domain.FieldNote: note}); nerr != nil {
			s.logger.Warn("Failed to record provisioning note", zap.Error(nerr), zap.String("phone", sub.Phone))
		} else {
			sub.Note = note
		}
		return false, err
	}

	sub.LedgerID = ledger.ID
	sub.LedgerURL = ledger.URL
	sub.Note = ""

	s.logger.Info("Ledger provisioned",
		zap.String("phone", sub.Phone),
		zap.String("ledger_id", ledger.ID),
	)

	if s.opts.Dashboard {
		if err := s.ledger.InitDashboard(ctx, ledger.ID); err != nil {
			s.logger.Warn("Failed to init dashboard", zap.Error(err), zap.String("ledger_id", ledger.ID))
		}
	}
	if s.opts.Share && sub.HasValidEmail() {
		if err := s.ledger.ShareLedger(ctx, ledger.ID, sub.Email); err != nil {
			s.logger.Warn("Failed to share ledger", zap.Error(err), zap.String("ledger_id", ledger.ID))
		}
	}
	return true, nil
}

func (s *LedgerService) provision(ctx context.Context, sub *domain.Subscriber) (domain.Ledger, error) {
	if s.opts.TemplateID == "" {
		return domain.Ledger{}, errors.New("no ledger template configured")
	}

	ledger, err := s.ledger.ProvisionLedger(ctx, s.opts.TemplateID, sub.LedgerTitle())
	if err != nil {
		return domain.Ledger{}, fmt.Errorf("provision ledger: %w", err)
	}

	fields := map[domain.Field]string{
		domain.FieldLedgerID:  ledger.ID,
		domain.FieldLedgerURL: ledger.URL,
	}
	// an earlier failure note no longer applies
	if sub.Note != "" {
		fields[domain.FieldNote] = ""
	}
	if err := s.directory.SetFields(ctx, sub.Phone, fields); err != nil {
		return domain.Ledger{}, fmt.Errorf("save ledger: %w", err)
	}
	return ledger, nil
}

// Categories lists the kind's categories, falling back to the defaults
// when the ledger has none or cannot be read
func (s *LedgerService) Categories(ctx context.Context, ledgerID string, kind domain.Kind) []string {
	names, err := s.ledger.ListCategories(ctx, ledgerID, kind)
	if err != nil {
		s.logger.Warn("Failed to list categories, using defaults",
			zap.Error(err),
			zap.String("ledger_id", ledgerID),
			zap.String("kind", string(kind)),
		)
		return domain.DefaultCategories(kind)
	}
	if len(names) == 0 {
		return domain.DefaultCategories(kind)
	}
	return names
}

// AddCategory stores a new category and returns the cleaned name
func (s *LedgerService) AddCategory(ctx context.Context, ledgerID string, kind domain.Kind, name string) (string, error) {
	name = truncate(strings.TrimSpace(name), maxNameLength)
	if name == "" {
		return "", domain.ErrInvalidCategory
	}

	if err := s.ledger.AddCategory(ctx, ledgerID, kind, name); err != nil {
		return "", err
	}
	return name, nil
}

// Record appends a movement dated today in the configured timezone.
// amount is a magnitude, the sign follows kind.
func (s *LedgerService) Record(
	ctx context.Context,
	ledgerID string,
	kind domain.Kind,
	category string,
	amount decimal.Decimal,
	detail string,
) (domain.Transaction, error) {
	id, err := s.newID()
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("generate id: %w", err)
	}

	tx := domain.NewTransaction(id, s.now().In(s.opts.Location), kind, category, amount, strings.TrimSpace(detail))
	if err := s.ledger.AppendTransaction(ctx, ledgerID, tx); err != nil {
		return domain.Transaction{}, err
	}
	return tx, nil
}

// Recent returns the last n movements, oldest first
func (s *LedgerService) Recent(ctx context.Context, ledgerID string, n int) ([]domain.Transaction, error) {
	return s.ledger.RecentTransactions(ctx, ledgerID, n)
}

func (s *LedgerService) today() string {
	return s.now().In(s.opts.Location).Format(domain.DateLayout)
}
