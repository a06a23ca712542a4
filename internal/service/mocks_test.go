package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/axlesai/floorplan-engine/internal/domain"
	"github.com/axlesai/floorplan-engine/internal/repository"
)

// stubTxRunner runs the callback with a nil transaction; repository mocks
// never touch it.
type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	return fn(nil)
}

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, dealerID, accountID uuid.UUID) (*domain.Account, error) {
	args := m.Called(ctx, dealerID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) GetAny(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) List(ctx context.Context, dealerID uuid.UUID) ([]*domain.Account, error) {
	args := m.Called(ctx, dealerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) Update(ctx context.Context, q repository.Querier, account *domain.Account) error {
	args := m.Called(ctx, q, account)
	return args.Error(0)
}

func (m *MockAccountRepository) SetCreditLimit(ctx context.Context, q repository.Querier, accountID uuid.UUID, limit, available decimal.Decimal) error {
	args := m.Called(ctx, q, accountID, limit, available)
	return args.Error(0)
}

func (m *MockAccountRepository) GetForUpdate(ctx context.Context, q repository.Querier, accountID uuid.UUID) (*domain.Account, error) {
	args := m.Called(ctx, q, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) AdjustAvailableCredit(ctx context.Context, q repository.Querier, accountID uuid.UUID, delta decimal.Decimal) error {
	args := m.Called(ctx, q, accountID, delta)
	return args.Error(0)
}

type MockUnitLoanRepository struct {
	mock.Mock
}

func (m *MockUnitLoanRepository) Create(ctx context.Context, q repository.Querier, loan *domain.UnitLoan) error {
	args := m.Called(ctx, q, loan)
	return args.Error(0)
}

func (m *MockUnitLoanRepository) GetByID(ctx context.Context, dealerID, loanID uuid.UUID) (*domain.UnitLoan, error) {
	args := m.Called(ctx, dealerID, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UnitLoan), args.Error(1)
}

func (m *MockUnitLoanRepository) GetForUpdate(ctx context.Context, q repository.Querier, loanID uuid.UUID) (*domain.UnitLoan, error) {
	args := m.Called(ctx, q, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UnitLoan), args.Error(1)
}

func (m *MockUnitLoanRepository) List(ctx context.Context, dealerID uuid.UUID, filter domain.LoanFilter) ([]*domain.UnitLoan, error) {
	args := m.Called(ctx, dealerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.UnitLoan), args.Error(1)
}

func (m *MockUnitLoanRepository) ListAllActive(ctx context.Context) ([]*domain.UnitLoan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.UnitLoan), args.Error(1)
}

func (m *MockUnitLoanRepository) CountActiveByAccount(ctx context.Context, q repository.Querier, accountID uuid.UUID) (int, error) {
	args := m.Called(ctx, q, accountID)
	return args.Int(0), args.Error(1)
}

func (m *MockUnitLoanRepository) HasActiveForUnit(ctx context.Context, q repository.Querier, unitID uuid.UUID) (bool, error) {
	args := m.Called(ctx, q, unitID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUnitLoanRepository) Update(ctx context.Context, q repository.Querier, loan *domain.UnitLoan) error {
	args := m.Called(ctx, q, loan)
	return args.Error(0)
}

func (m *MockUnitLoanRepository) MarkPastDue(ctx context.Context, asOf time.Time) (int64, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).(int64), args.Error(1)
}

type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Insert(ctx context.Context, q repository.Querier, entry *domain.LedgerEntry) error {
	args := m.Called(ctx, q, entry)
	return args.Error(0)
}

func (m *MockLedgerRepository) ListByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.LedgerEntry, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LedgerEntry), args.Error(1)
}

type MockProviderRepository struct {
	mock.Mock
}

func (m *MockProviderRepository) List(ctx context.Context) ([]*domain.Provider, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Provider), args.Error(1)
}

func (m *MockProviderRepository) GetByID(ctx context.Context, providerID uuid.UUID) (*domain.Provider, error) {
	args := m.Called(ctx, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Provider), args.Error(1)
}
