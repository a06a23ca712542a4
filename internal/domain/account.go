package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	AccountStatusActive    = "active"
	AccountStatusSuspended = "suspended"
	AccountStatusClosed    = "closed"
)

// Interest accrual knobs carried on the account
const (
	InterestTypeDaily   = "daily"
	InterestTypeMonthly = "monthly"

	InterestCalcSimple   = "simple"
	InterestCalcCompound = "compound"
)

// Account is one revolving credit facility between a dealer and a lender.
// available_credit must always equal credit_limit minus the sum of current
// balances on the account's active unit loans.
type Account struct {
	ID                        uuid.UUID       `json:"id" db:"id"`
	DealerID                  uuid.UUID       `json:"dealer_id" db:"dealer_id"`
	ProviderID                uuid.UUID       `json:"provider_id" db:"provider_id"`
	Name                      string          `json:"name" db:"name"`
	CreditLimit               decimal.Decimal `json:"credit_limit" db:"credit_limit"`
	AvailableCredit           decimal.Decimal `json:"available_credit" db:"available_credit"`
	InterestRate              decimal.Decimal `json:"interest_rate" db:"interest_rate"`
	InterestType              string          `json:"interest_type" db:"interest_type"`
	InterestCalculation       string          `json:"interest_calculation" db:"interest_calculation"`
	CurtailmentDays           int             `json:"curtailment_days" db:"curtailment_days"`
	CurtailmentPercent        decimal.Decimal `json:"curtailment_percent" db:"curtailment_percent"`
	SubsequentCurtailmentDays int             `json:"subsequent_curtailment_days" db:"subsequent_curtailment_days"`
	PayoffFee                 decimal.Decimal `json:"payoff_fee" db:"payoff_fee"`
	Status                    string          `json:"status" db:"status"`
	ClosedAt                  *time.Time      `json:"closed_at,omitempty" db:"closed_at"`
	CreatedAt                 time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt                 time.Time       `json:"updated_at" db:"updated_at"`
}

// DrawnBalance is the portion of the limit currently in use
func (a *Account) DrawnBalance() decimal.Decimal {
	return a.CreditLimit.Sub(a.AvailableCredit)
}

// IsActive reports whether the account can back new draws
func (a *Account) IsActive() bool {
	return a.Status == AccountStatusActive
}

// DTOs for requests and responses

type OpenAccountRequest struct {
	ProviderID                uuid.UUID       `json:"provider_id" validate:"required"`
	Name                      string          `json:"name" validate:"required,max=100"`
	CreditLimit               decimal.Decimal `json:"credit_limit" validate:"-"`
	InterestRate              decimal.Decimal `json:"interest_rate" validate:"-"`
	InterestType              string          `json:"interest_type" validate:"required,oneof=daily monthly"`
	InterestCalculation       string          `json:"interest_calculation" validate:"required,oneof=simple compound"`
	CurtailmentDays           int             `json:"curtailment_days" validate:"required,gt=0,lte=365"`
	CurtailmentPercent        decimal.Decimal `json:"curtailment_percent" validate:"-"`
	SubsequentCurtailmentDays int             `json:"subsequent_curtailment_days" validate:"required,gt=0,lte=365"`
	PayoffFee                 decimal.Decimal `json:"payoff_fee" validate:"-"`
}

// UpdateAccountRequest carries the mutable account fields; nil means unchanged
type UpdateAccountRequest struct {
	Name                      *string          `json:"name,omitempty" validate:"omitempty,max=100"`
	CreditLimit               *decimal.Decimal `json:"credit_limit,omitempty"`
	InterestRate              *decimal.Decimal `json:"interest_rate,omitempty"`
	InterestType              *string          `json:"interest_type,omitempty" validate:"omitempty,oneof=daily monthly"`
	InterestCalculation       *string          `json:"interest_calculation,omitempty" validate:"omitempty,oneof=simple compound"`
	CurtailmentDays           *int             `json:"curtailment_days,omitempty" validate:"omitempty,gt=0,lte=365"`
	CurtailmentPercent        *decimal.Decimal `json:"curtailment_percent,omitempty"`
	SubsequentCurtailmentDays *int             `json:"subsequent_curtailment_days,omitempty" validate:"omitempty,gt=0,lte=365"`
	PayoffFee                 *decimal.Decimal `json:"payoff_fee,omitempty"`
	Status                    *string          `json:"status,omitempty" validate:"omitempty,oneof=active suspended"`
}

// CreditCheck is the result of a read-only credit availability probe
type CreditCheck struct {
	AccountID       uuid.UUID       `json:"account_id"`
	Requested       decimal.Decimal `json:"requested"`
	AvailableCredit decimal.Decimal `json:"available_credit"`
	OK              bool            `json:"ok"`
}
