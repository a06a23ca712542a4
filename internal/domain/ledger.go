package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	PaymentTypeCurtailment = "curtailment"
	PaymentTypeInterest    = "interest"
	PaymentTypePayoff      = "payoff"
	PaymentTypeAdjustment  = "adjustment"
)

// LedgerEntry is one immutable record in a unit loan's payment history.
// Entries are never updated or deleted; BalanceAfter snapshots the loan's
// balance immediately after the entry was applied, so replaying the entries
// in payment_date/insertion order reproduces the loan's current state.
type LedgerEntry struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	UnitLoanID   uuid.UUID       `json:"unit_loan_id" db:"unit_loan_id"`
	PaymentType  string          `json:"payment_type" db:"payment_type"`
	Amount       decimal.Decimal `json:"amount" db:"amount"`
	PaymentDate  time.Time       `json:"payment_date" db:"payment_date"`
	Reference    string          `json:"reference,omitempty" db:"reference"`
	Notes        string          `json:"notes,omitempty" db:"notes"`
	BalanceAfter decimal.Decimal `json:"balance_after" db:"balance_after"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}

// ReplayState is what a fold over a loan's ledger entries reconstructs
type ReplayState struct {
	CurrentBalance    decimal.Decimal
	CurtailmentsPaid  int
	TotalInterestPaid decimal.Decimal
}

// Replay folds the stated mutation rules over entries in order, starting
// from the original floor amount. Used by reconciliation checks to verify a
// loan row has not drifted from its ledger.
func Replay(floorAmount decimal.Decimal, entries []*LedgerEntry) ReplayState {
	state := ReplayState{
		CurrentBalance:    floorAmount,
		TotalInterestPaid: decimal.Zero,
	}

	for _, e := range entries {
		switch e.PaymentType {
		case PaymentTypeCurtailment:
			state.CurrentBalance = state.CurrentBalance.Sub(e.Amount)
			if state.CurrentBalance.IsNegative() {
				state.CurrentBalance = decimal.Zero
			}
			state.CurtailmentsPaid++
		case PaymentTypeInterest:
			state.TotalInterestPaid = state.TotalInterestPaid.Add(e.Amount)
		case PaymentTypeAdjustment:
			state.CurrentBalance = state.CurrentBalance.Sub(e.Amount)
			if state.CurrentBalance.IsNegative() {
				state.CurrentBalance = decimal.Zero
			}
		case PaymentTypePayoff:
			state.CurrentBalance = decimal.Zero
		}
	}

	return state
}
