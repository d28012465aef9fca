package testutil

import (
	"context"

	"ledgerbot/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockDirectoryRepository is a mock for DirectoryRepository
type MockDirectoryRepository struct {
	mock.Mock
}

func (m *MockDirectoryRepository) FindByPhone(ctx context.Context, phone string) (*domain.Subscriber, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subscriber), args.Error(1)
}

func (m *MockDirectoryRepository) SetFields(ctx context.Context, phone string, fields map[domain.Field]string) error {
	args := m.Called(ctx, phone, fields)
	return args.Error(0)
}

func (m *MockDirectoryRepository) SetAuthorized(ctx context.Context, phone string, authorized bool) error {
	args := m.Called(ctx, phone, authorized)
	return args.Error(0)
}

func (m *MockDirectoryRepository) Append(ctx context.Context, phone string) error {
	args := m.Called(ctx, phone)
	return args.Error(0)
}

// MockLedgerRepository is a mock for LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) AppendTransaction(ctx context.Context, ledgerID string, tx domain.Transaction) error {
	args := m.Called(ctx, ledgerID, tx)
	return args.Error(0)
}

func (m *MockLedgerRepository) RecentTransactions(ctx context.Context, ledgerID string, limit int) ([]domain.Transaction, error) {
	args := m.Called(ctx, ledgerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockLedgerRepository) ListCategories(ctx context.Context, ledgerID string, kind domain.Kind) ([]string, error) {
	args := m.Called(ctx, ledgerID, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockLedgerRepository) AddCategory(ctx context.Context, ledgerID string, kind domain.Kind, name string) error {
	args := m.Called(ctx, ledgerID, kind, name)
	return args.Error(0)
}

func (m *MockLedgerRepository) ProvisionLedger(ctx context.Context, templateID, title string) (domain.Ledger, error) {
	args := m.Called(ctx, templateID, title)
	return args.Get(0).(domain.Ledger), args.Error(1)
}

func (m *MockLedgerRepository) ShareLedger(ctx context.Context, ledgerID, email string) error {
	args := m.Called(ctx, ledgerID, email)
	return args.Error(0)
}

func (m *MockLedgerRepository) InitDashboard(ctx context.Context, ledgerID string) error {
	args := m.Called(ctx, ledgerID)
	return args.Error(0)
}
