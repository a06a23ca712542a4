package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/axlesai/floorplan-engine/internal/domain"
)

type accountRepository struct {
	db *sqlx.DB
}

func NewAccountRepository(db *sqlx.DB) AccountRepository {
	return &accountRepository{db: db}
}

const accountColumns = `
	id, dealer_id, provider_id, name, credit_limit, available_credit,
	interest_rate, interest_type, interest_calculation,
	curtailment_days, curtailment_percent, subsequent_curtailment_days,
	payoff_fee, status, closed_at, created_at, updated_at
`

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO floor_plan_accounts (
			id, dealer_id, provider_id, name, credit_limit, available_credit,
			interest_rate, interest_type, interest_calculation,
			curtailment_days, curtailment_percent, subsequent_curtailment_days,
			payoff_fee, status, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.db.ExecContext(ctx, query,
		account.ID,
		account.DealerID,
		account.ProviderID,
		account.Name,
		account.CreditLimit,
		account.AvailableCredit,
		account.InterestRate,
		account.InterestType,
		account.InterestCalculation,
		account.CurtailmentDays,
		account.CurtailmentPercent,
		account.SubsequentCurtailmentDays,
		account.PayoffFee,
		account.Status,
		account.CreatedAt,
		account.UpdatedAt,
	)

	return err
}

func (r *accountRepository) GetByID(ctx context.Context, dealerID, accountID uuid.UUID) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM floor_plan_accounts
		WHERE id = $1 AND dealer_id = $2
	`

	var account domain.Account
	if err := r.db.GetContext(ctx, &account, query, accountID, dealerID); err != nil {
		return nil, err
	}

	return &account, nil
}

func (r *accountRepository) GetAny(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM floor_plan_accounts
		WHERE id = $1
	`

	var account domain.Account
	if err := r.db.GetContext(ctx, &account, query, accountID); err != nil {
		return nil, err
	}

	return &account, nil
}

func (r *accountRepository) List(ctx context.Context, dealerID uuid.UUID) ([]*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM floor_plan_accounts
		WHERE dealer_id = $1
		ORDER BY created_at DESC
	`

	var accounts []*domain.Account
	if err := r.db.SelectContext(ctx, &accounts, query, dealerID); err != nil {
		return nil, err
	}

	return accounts, nil
}

// Update persists the account's terms. credit_limit and available_credit are
// deliberately not written here; they only move through SetCreditLimit and
// AdjustAvailableCredit so a stale struct can never clobber committed credit.
func (r *accountRepository) Update(ctx context.Context, q Querier, account *domain.Account) error {
	query := `
		UPDATE floor_plan_accounts
		SET name = $2, interest_rate = $3, interest_type = $4,
		    interest_calculation = $5, curtailment_days = $6,
		    curtailment_percent = $7, subsequent_curtailment_days = $8,
		    payoff_fee = $9, status = $10, closed_at = $11, updated_at = $12
		WHERE id = $1
	`

	_, err := q.ExecContext(ctx, query,
		account.ID,
		account.Name,
		account.InterestRate,
		account.InterestType,
		account.InterestCalculation,
		account.CurtailmentDays,
		account.CurtailmentPercent,
		account.SubsequentCurtailmentDays,
		account.PayoffFee,
		account.Status,
		account.ClosedAt,
		time.Now(),
	)

	return err
}

// SetCreditLimit moves both credit columns together inside the caller's
// transaction; the caller must hold the row lock.
func (r *accountRepository) SetCreditLimit(ctx context.Context, q Querier, accountID uuid.UUID, limit, available decimal.Decimal) error {
	query := `
		UPDATE floor_plan_accounts
		SET credit_limit = $2, available_credit = $3, updated_at = $4
		WHERE id = $1
	`

	_, err := q.ExecContext(ctx, query, accountID, limit, available, time.Now())
	return err
}

// GetForUpdate takes the row lock that serializes concurrent credit
// check-and-decrement on the same account.
func (r *accountRepository) GetForUpdate(ctx context.Context, q Querier, accountID uuid.UUID) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM floor_plan_accounts
		WHERE id = $1
		FOR UPDATE
	`

	var account domain.Account
	if err := q.GetContext(ctx, &account, query, accountID); err != nil {
		return nil, err
	}

	return &account, nil
}

func (r *accountRepository) AdjustAvailableCredit(ctx context.Context, q Querier, accountID uuid.UUID, delta decimal.Decimal) error {
	query := `
		UPDATE floor_plan_accounts
		SET available_credit = available_credit + $2, updated_at = $3
		WHERE id = $1
	`

	_, err := q.ExecContext(ctx, query, accountID, delta, time.Now())
	return err
}
