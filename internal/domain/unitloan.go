package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	LoanStatusActive      = "active"
	LoanStatusPaidOff     = "paid_off"
	LoanStatusTransferred = "transferred"
)

// UnitLoan is the floor plan on one inventory unit: the draw against an
// account's credit line plus everything needed to track curtailments and
// interest until payoff. A unit has at most one active loan at a time, and
// an active loan only ever exits to paid_off or transferred.
type UnitLoan struct {
	ID                   uuid.UUID        `json:"id" db:"id"`
	AccountID            uuid.UUID        `json:"account_id" db:"account_id"`
	DealerID             uuid.UUID        `json:"dealer_id" db:"dealer_id"`
	UnitID               uuid.UUID        `json:"unit_id" db:"unit_id"`
	FloorAmount          decimal.Decimal  `json:"floor_amount" db:"floor_amount"`
	CurrentBalance       decimal.Decimal  `json:"current_balance" db:"current_balance"`
	CurtailmentsPaid     int              `json:"curtailments_paid" db:"curtailments_paid"`
	NextCurtailmentDate  time.Time        `json:"next_curtailment_date" db:"next_curtailment_date"`
	TotalInterestAccrued decimal.Decimal  `json:"total_interest_accrued" db:"total_interest_accrued"`
	TotalInterestPaid    decimal.Decimal  `json:"total_interest_paid" db:"total_interest_paid"`
	IsPastDue            bool             `json:"is_past_due" db:"is_past_due"`
	Status               string           `json:"status" db:"status"`
	FloorDate            time.Time        `json:"floor_date" db:"floor_date"`
	LastAccrualDate      *time.Time       `json:"last_accrual_date,omitempty" db:"last_accrual_date"`
	PayoffDate           *time.Time       `json:"payoff_date,omitempty" db:"payoff_date"`
	PayoffAmount         *decimal.Decimal `json:"payoff_amount,omitempty" db:"payoff_amount"`
	PayoffReference      *string          `json:"payoff_reference,omitempty" db:"payoff_reference"`
	CreatedAt            time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at" db:"updated_at"`
}

// IsActive reports whether the loan still holds drawn credit
func (l *UnitLoan) IsActive() bool {
	return l.Status == LoanStatusActive
}

// UnpaidInterest is interest accrued but not yet paid
func (l *UnitLoan) UnpaidInterest() decimal.Decimal {
	return l.TotalInterestAccrued.Sub(l.TotalInterestPaid)
}

// EstimatedPayoff quotes the amount to settle the loan today:
// outstanding principal plus unpaid interest plus the account's flat payoff fee.
func (l *UnitLoan) EstimatedPayoff(payoffFee decimal.Decimal) decimal.Decimal {
	return l.CurrentBalance.Add(l.UnpaidInterest()).Add(payoffFee)
}

// LoanFilter narrows unit loan listings
type LoanFilter struct {
	Status    string
	AccountID *uuid.UUID
	Search    string
}

// DTOs for requests and responses

type FloorUnitRequest struct {
	UnitID      uuid.UUID       `json:"unit_id" validate:"required"`
	AccountID   uuid.UUID       `json:"account_id" validate:"required"`
	FloorAmount decimal.Decimal `json:"floor_amount" validate:"-"`
	FloorDate   string          `json:"floor_date" validate:"required,datetime=2006-01-02"`
	Reference   string          `json:"reference" validate:"omitempty,max=50"`
}

type RecordPaymentRequest struct {
	PaymentType string          `json:"payment_type" validate:"required,oneof=curtailment interest adjustment"`
	Amount      decimal.Decimal `json:"amount" validate:"-"`
	PaymentDate string          `json:"payment_date" validate:"required,datetime=2006-01-02"`
	Reference   string          `json:"reference" validate:"omitempty,max=50"`
	Notes       string          `json:"notes" validate:"omitempty,max=500"`
}

type PayoffRequest struct {
	PayoffAmount decimal.Decimal `json:"payoff_amount" validate:"-"`
	PayoffDate   string          `json:"payoff_date" validate:"required,datetime=2006-01-02"`
	Reference    string          `json:"reference" validate:"omitempty,max=50"`
	Notes        string          `json:"notes" validate:"omitempty,max=500"`
}

type PayoffQuote struct {
	UnitLoanID     uuid.UUID       `json:"unit_loan_id"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	UnpaidInterest decimal.Decimal `json:"unpaid_interest"`
	PayoffFee      decimal.Decimal `json:"payoff_fee"`
	EstimatedTotal decimal.Decimal `json:"estimated_total"`
	QuotedAt       time.Time       `json:"quoted_at"`
}
