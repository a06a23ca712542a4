package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/axlesai/floorplan-engine/internal/domain"
)

// AccountRepository defines the interface for floor plan account data operations
type AccountRepository interface {
	// Create creates a new account
	Create(ctx context.Context, account *domain.Account) error

	// GetByID retrieves an account scoped to its owning dealer
	GetByID(ctx context.Context, dealerID, accountID uuid.UUID) (*domain.Account, error)

	// GetAny retrieves an account without dealer scoping (internal jobs only)
	GetAny(ctx context.Context, accountID uuid.UUID) (*domain.Account, error)

	// List retrieves all accounts for a dealer, newest first
	List(ctx context.Context, dealerID uuid.UUID) ([]*domain.Account, error)

	// Update persists the mutable account terms inside the caller's
	// transaction; credit_limit and available_credit are not written
	Update(ctx context.Context, q Querier, account *domain.Account) error

	// SetCreditLimit writes credit_limit and available_credit together
	// inside the caller's transaction, which must hold the row lock
	SetCreditLimit(ctx context.Context, q Querier, accountID uuid.UUID, limit, available decimal.Decimal) error

	// GetForUpdate locks the account row for the duration of the enclosing
	// transaction and returns its current state
	GetForUpdate(ctx context.Context, q Querier, accountID uuid.UUID) (*domain.Account, error)

	// AdjustAvailableCredit moves available_credit by delta (negative on
	// draw, positive on payoff) inside the caller's transaction
	AdjustAvailableCredit(ctx context.Context, q Querier, accountID uuid.UUID, delta decimal.Decimal) error
}

// UnitLoanRepository defines the interface for unit loan data operations
type UnitLoanRepository interface {
	// Create inserts a new unit loan inside the caller's transaction
	Create(ctx context.Context, q Querier, loan *domain.UnitLoan) error

	// GetByID retrieves a unit loan scoped to its owning dealer
	GetByID(ctx context.Context, dealerID, loanID uuid.UUID) (*domain.UnitLoan, error)

	// GetForUpdate locks the loan row for the duration of the enclosing
	// transaction and returns its current state
	GetForUpdate(ctx context.Context, q Querier, loanID uuid.UUID) (*domain.UnitLoan, error)

	// List retrieves a dealer's unit loans narrowed by filter
	List(ctx context.Context, dealerID uuid.UUID, filter domain.LoanFilter) ([]*domain.UnitLoan, error)

	// ListAllActive retrieves every active loan across dealers (accrual job)
	ListAllActive(ctx context.Context) ([]*domain.UnitLoan, error)

	// CountActiveByAccount counts active loans drawing on an account inside
	// the caller's transaction
	CountActiveByAccount(ctx context.Context, q Querier, accountID uuid.UUID) (int, error)

	// HasActiveForUnit reports whether an inventory unit already has an
	// active floor plan
	HasActiveForUnit(ctx context.Context, q Querier, unitID uuid.UUID) (bool, error)

	// Update persists balance, curtailment, interest, status and payoff
	// fields inside the caller's transaction
	Update(ctx context.Context, q Querier, loan *domain.UnitLoan) error

	// MarkPastDue flags active loans whose next curtailment date has passed
	// and returns how many rows changed
	MarkPastDue(ctx context.Context, asOf time.Time) (int64, error)
}

// LedgerRepository defines the interface for the append-only payment ledger
type LedgerRepository interface {
	// Insert appends one immutable entry inside the caller's transaction
	Insert(ctx context.Context, q Querier, entry *domain.LedgerEntry) error

	// ListByLoan retrieves a loan's entries in payment_date/insertion order
	ListByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.LedgerEntry, error)
}

// ProviderRepository defines the interface for lender reference data
type ProviderRepository interface {
	// List retrieves all known floor plan providers
	List(ctx context.Context) ([]*domain.Provider, error)

	// GetByID retrieves one provider
	GetByID(ctx context.Context, providerID uuid.UUID) (*domain.Provider, error)
}
