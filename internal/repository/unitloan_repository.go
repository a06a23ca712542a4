package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/axlesai/floorplan-engine/internal/domain"
)

type unitLoanRepository struct {
	db *sqlx.DB
}

func NewUnitLoanRepository(db *sqlx.DB) UnitLoanRepository {
	return &unitLoanRepository{db: db}
}

const loanColumns = `
	id, account_id, dealer_id, unit_id, floor_amount, current_balance,
	curtailments_paid, next_curtailment_date, total_interest_accrued,
	total_interest_paid, is_past_due, status, floor_date, last_accrual_date,
	payoff_date, payoff_amount, payoff_reference, created_at, updated_at
`

func (r *unitLoanRepository) Create(ctx context.Context, q Querier, loan *domain.UnitLoan) error {
	query := `
		INSERT INTO unit_loans (
			id, account_id, dealer_id, unit_id, floor_amount, current_balance,
			curtailments_paid, next_curtailment_date, total_interest_accrued,
			total_interest_paid, is_past_due, status, floor_date, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := q.ExecContext(ctx, query,
		loan.ID,
		loan.AccountID,
		loan.DealerID,
		loan.UnitID,
		loan.FloorAmount,
		loan.CurrentBalance,
		loan.CurtailmentsPaid,
		loan.NextCurtailmentDate,
		loan.TotalInterestAccrued,
		loan.TotalInterestPaid,
		loan.IsPastDue,
		loan.Status,
		loan.FloorDate,
		loan.CreatedAt,
		loan.UpdatedAt,
	)

	return err
}

func (r *unitLoanRepository) GetByID(ctx context.Context, dealerID, loanID uuid.UUID) (*domain.UnitLoan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM unit_loans
		WHERE id = $1 AND dealer_id = $2
	`

	var loan domain.UnitLoan
	if err := r.db.GetContext(ctx, &loan, query, loanID, dealerID); err != nil {
		return nil, err
	}

	return &loan, nil
}

func (r *unitLoanRepository) GetForUpdate(ctx context.Context, q Querier, loanID uuid.UUID) (*domain.UnitLoan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM unit_loans
		WHERE id = $1
		FOR UPDATE
	`

	var loan domain.UnitLoan
	if err := q.GetContext(ctx, &loan, query, loanID); err != nil {
		return nil, err
	}

	return &loan, nil
}

func (r *unitLoanRepository) List(ctx context.Context, dealerID uuid.UUID, filter domain.LoanFilter) ([]*domain.UnitLoan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM unit_loans
		WHERE dealer_id = $1
	`
	args := []interface{}{dealerID}

	if filter.Status != "" {
		args = append(args, filter.Status)
		query += ` AND status = $` + strconv.Itoa(len(args))
	}
	if filter.AccountID != nil {
		args = append(args, *filter.AccountID)
		query += ` AND account_id = $` + strconv.Itoa(len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := strconv.Itoa(len(args))
		query += ` AND (payoff_reference ILIKE $` + n + ` OR unit_id::text ILIKE $` + n + `)`
	}

	query += ` ORDER BY floor_date DESC, created_at DESC`

	var loans []*domain.UnitLoan
	if err := r.db.SelectContext(ctx, &loans, query, args...); err != nil {
		return nil, err
	}

	return loans, nil
}

func (r *unitLoanRepository) ListAllActive(ctx context.Context) ([]*domain.UnitLoan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM unit_loans
		WHERE status = 'active'
		ORDER BY created_at
	`

	var loans []*domain.UnitLoan
	if err := r.db.SelectContext(ctx, &loans, query); err != nil {
		return nil, err
	}

	return loans, nil
}

func (r *unitLoanRepository) CountActiveByAccount(ctx context.Context, q Querier, accountID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM unit_loans
		WHERE account_id = $1 AND status = 'active'
	`

	var count int
	if err := q.GetContext(ctx, &count, query, accountID); err != nil {
		return 0, err
	}

	return count, nil
}

func (r *unitLoanRepository) HasActiveForUnit(ctx context.Context, q Querier, unitID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM unit_loans WHERE unit_id = $1 AND status = 'active'
		)
	`

	var exists bool
	if err := q.GetContext(ctx, &exists, query, unitID); err != nil {
		return false, err
	}

	return exists, nil
}

func (r *unitLoanRepository) Update(ctx context.Context, q Querier, loan *domain.UnitLoan) error {
	query := `
		UPDATE unit_loans
		SET current_balance = $2, curtailments_paid = $3, next_curtailment_date = $4,
		    total_interest_accrued = $5, total_interest_paid = $6, is_past_due = $7,
		    status = $8, last_accrual_date = $9, payoff_date = $10,
		    payoff_amount = $11, payoff_reference = $12, updated_at = $13
		WHERE id = $1
	`

	_, err := q.ExecContext(ctx, query,
		loan.ID,
		loan.CurrentBalance,
		loan.CurtailmentsPaid,
		loan.NextCurtailmentDate,
		loan.TotalInterestAccrued,
		loan.TotalInterestPaid,
		loan.IsPastDue,
		loan.Status,
		loan.LastAccrualDate,
		loan.PayoffDate,
		loan.PayoffAmount,
		loan.PayoffReference,
		time.Now(),
	)

	return err
}

func (r *unitLoanRepository) MarkPastDue(ctx context.Context, asOf time.Time) (int64, error) {
	query := `
		UPDATE unit_loans
		SET is_past_due = TRUE, updated_at = $2
		WHERE status = 'active' AND is_past_due = FALSE AND next_curtailment_date < $1
	`

	result, err := r.db.ExecContext(ctx, query, asOf, time.Now())
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
