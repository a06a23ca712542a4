package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/axlesai/floorplan-engine/internal/domain"
)

type ledgerRepository struct {
	db *sqlx.DB
}

func NewLedgerRepository(db *sqlx.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

// Insert appends an entry. There is deliberately no update or delete here;
// the ledger is the immutable explanation of every balance change.
func (r *ledgerRepository) Insert(ctx context.Context, q Querier, entry *domain.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (
			id, unit_loan_id, payment_type, amount, payment_date,
			reference, notes, balance_after, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := q.ExecContext(ctx, query,
		entry.ID,
		entry.UnitLoanID,
		entry.PaymentType,
		entry.Amount,
		entry.PaymentDate,
		entry.Reference,
		entry.Notes,
		entry.BalanceAfter,
		entry.CreatedAt,
	)

	return err
}

func (r *ledgerRepository) ListByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.LedgerEntry, error) {
	query := `
		SELECT id, unit_loan_id, payment_type, amount, payment_date,
		       reference, notes, balance_after, created_at
		FROM ledger_entries
		WHERE unit_loan_id = $1
		ORDER BY payment_date, created_at
	`

	var entries []*domain.LedgerEntry
	if err := r.db.SelectContext(ctx, &entries, query, loanID); err != nil {
		return nil, err
	}

	return entries, nil
}
