package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format for all floor plan dates
const DateLayout = "2006-01-02"

var (
	daysInYear   = decimal.NewFromInt(365)
	monthsInYear = decimal.NewFromInt(12)
	oneHundred   = decimal.NewFromInt(100)
)

// ParseDate parses a YYYY-MM-DD date string into a UTC midnight time
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// FormatDate renders a time as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DateOnly truncates a time to UTC midnight
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysUntil returns the number of whole days from `from` until `until`,
// negative when `until` is in the past.
func DaysUntil(from, until time.Time) int {
	return int(DateOnly(until).Sub(DateOnly(from)).Hours() / 24)
}

// DailyInterest computes one day of simple interest on a balance at an
// annual percentage rate.
/// Formula: balance * (rate/100) / 365
func DailyInterest(balance, annualRatePercent decimal.Decimal) decimal.Decimal {
	return balance.Mul(annualRatePercent).Div(oneHundred).Div(daysInYear)
}

// MonthlyInterest computes one month of simple interest on a balance at an
// annual percentage rate.
// Formula: balance * (rate/100) / 12
func MonthlyInterest(balance, annualRatePercent decimal.Decimal) decimal.Decimal {
	return balance.Mul(annualRatePercent).Div(oneHundred).Div(monthsInYear)
}

// UtilizationPercent returns (limit - available) / limit * 100 rounded to
// one decimal place, or zero when the limit is zero.
func UtilizationPercent(limit, available decimal.Decimal) decimal.Decimal {
	if limit.IsZero() {
		return decimal.Zero
	}
	return limit.Sub(available).Div(limit).Mul(oneHundred).Round(1)
}

// Money rounds a decimal to 2 places for presentation
func Money(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
