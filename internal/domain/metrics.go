package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/axlesai/floorplan-engine/pkg/utils"
)

// DashboardMetrics is the read-side roll-up across a dealer's accounts and
// unit loans. Every field is recomputed from current rows on each query so
// the numbers can never drift from the ledger.
type DashboardMetrics struct {
	TotalCreditLimit        decimal.Decimal `json:"total_credit_limit"`
	TotalAvailableCredit    decimal.Decimal `json:"total_available_credit"`
	TotalCurrentBalance     decimal.Decimal `json:"total_current_balance"`
	TotalFloored            decimal.Decimal `json:"total_floored"`
	CreditUtilization       decimal.Decimal `json:"credit_utilization"`
	UnitsFloored            int             `json:"units_floored"`
	UnitsPastDue            int             `json:"units_past_due"`
	UpcomingCurtailments    int             `json:"upcoming_curtailments"`
	UnpaidInterest          decimal.Decimal `json:"unpaid_interest"`
	MonthlyInterestEstimate decimal.Decimal `json:"monthly_interest_estimate"`
}

// ComputeMetrics rolls up active accounts and active unit loans as of `now`.
// Curtailments count as upcoming when due within the next 7 days, today
// inclusive.
func ComputeMetrics(now time.Time, accounts []*Account, loans []*UnitLoan) DashboardMetrics {
	m := DashboardMetrics{
		TotalCreditLimit:        decimal.Zero,
		TotalAvailableCredit:    decimal.Zero,
		TotalCurrentBalance:     decimal.Zero,
		TotalFloored:            decimal.Zero,
		UnpaidInterest:          decimal.Zero,
		MonthlyInterestEstimate: decimal.Zero,
	}

	rates := make(map[string]decimal.Decimal, len(accounts))
	for _, a := range accounts {
		rates[a.ID.String()] = a.InterestRate
		if !a.IsActive() {
			continue
		}
		m.TotalCreditLimit = m.TotalCreditLimit.Add(a.CreditLimit)
		m.TotalAvailableCredit = m.TotalAvailableCredit.Add(a.AvailableCredit)
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	horizon := today.AddDate(0, 0, 7)

	for _, l := range loans {
		if !l.IsActive() {
			continue
		}
		m.UnitsFloored++
		m.TotalCurrentBalance = m.TotalCurrentBalance.Add(l.CurrentBalance)
		m.TotalFloored = m.TotalFloored.Add(l.FloorAmount)
		m.UnpaidInterest = m.UnpaidInterest.Add(l.UnpaidInterest())

		if l.IsPastDue {
			m.UnitsPastDue++
		}

		due := l.NextCurtailmentDate
		if !due.Before(today) && !due.After(horizon) {
			m.UpcomingCurtailments++
		}

		if rate, ok := rates[l.AccountID.String()]; ok {
			monthly := l.CurrentBalance.Mul(rate).Div(decimal.NewFromInt(100)).Div(decimal.NewFromInt(12))
			m.MonthlyInterestEstimate = m.MonthlyInterestEstimate.Add(monthly)
		}
	}

	m.CreditUtilization = utils.UtilizationPercent(m.TotalCreditLimit, m.TotalAvailableCredit)

	m.MonthlyInterestEstimate = m.MonthlyInterestEstimate.Round(2)
	m.UnpaidInterest = m.UnpaidInterest.Round(2)

	return m
}
