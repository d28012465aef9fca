package repository

import (
	"context"

	"ledgerbot/internal/domain"
)

// DirectoryRepository defines operations on the shared subscriber directory.
// Phones passed in are canonical.
type DirectoryRepository interface {
	// FindByPhone returns domain.ErrNotFound when no row matches
	FindByPhone(ctx context.Context, phone string) (*domain.Subscriber, error)
	SetFields(ctx context.Context, phone string, fields map[domain.Field]string) error
	SetAuthorized(ctx context.Context, phone string, authorized bool) error
	// Append creates an authorized row, or authorizes the existing one
	Append(ctx context.Context, phone string) error
}

// LedgerRepository defines operations on per-user ledgers
type LedgerRepository interface {
	AppendTransaction(ctx context.Context, ledgerID string, tx domain.Transaction) error
	RecentTransactions(ctx context.Context, ledgerID string, limit int) ([]domain.Transaction, error)
	ListCategories(ctx context.Context, ledgerID string, kind domain.Kind) ([]string, error)
	// AddCategory is a no-op when the name exists ignoring case
	AddCategory(ctx context.Context, ledgerID string, kind domain.Kind, name string) error
	ProvisionLedger(ctx context.Context, templateID, title string) (domain.Ledger, error)
	ShareLedger(ctx context.Context, ledgerID, email string) error
	InitDashboard(ctx context.Context, ledgerID string) error
}
