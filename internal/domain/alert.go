package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/axlesai/floorplan-engine/pkg/utils"
)

const (
	AlertSeverityCritical = "critical"
	AlertSeverityWarning  = "warning"
	AlertSeverityInfo     = "info"
)

// Alert is a derived risk signal. It is regenerated from current account and
// loan state on every read; only the dismissed flag persists, keyed by the
// alert's deterministic id so a re-derived condition keeps the same identity.
type Alert struct {
	ID        string    `json:"id"`
	Severity  string    `json:"severity"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Dismissed bool      `json:"dismissed"`
	Timestamp time.Time `json:"timestamp"`
}

// AlertPolicy bounds what GenerateAlerts reports
type AlertPolicy struct {
	CurtailmentWarningDays int
	UtilizationThreshold   decimal.Decimal // percent, e.g. 80
	NewLoanWindowDays      int
}

// DefaultAlertPolicy matches the dashboard defaults
func DefaultAlertPolicy() AlertPolicy {
	return AlertPolicy{
		CurtailmentWarningDays: 7,
		UtilizationThreshold:   decimal.NewFromInt(80),
		NewLoanWindowDays:      7,
	}
}

// AlertID derives a stable id from the underlying condition. The same
// condition always hashes to the same id, so dismissals survive regeneration.
func AlertID(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// GenerateAlerts derives the current risk signals for a dealer from account
// and loan state. Pure function: no I/O, no randomness beyond `now`.
func GenerateAlerts(now time.Time, policy AlertPolicy, accounts []*Account, loans []*UnitLoan) []*Alert {
	var alerts []*Alert

	accountsByID := make(map[string]*Account, len(accounts))
	for _, a := range accounts {
		accountsByID[a.ID.String()] = a
	}

	for _, loan := range loans {
		if !loan.IsActive() {
			continue
		}

		if loan.IsPastDue {
			alerts = append(alerts, &Alert{
				ID:       AlertID("past_due", loan.ID.String()),
				Severity: AlertSeverityCritical,
				Title:    "Curtailment past due",
				Message: fmt.Sprintf("Unit loan balance %s was due for curtailment on %s",
					loan.CurrentBalance.StringFixed(2), loan.NextCurtailmentDate.Format("2006-01-02")),
				Timestamp: now,
			})
			continue
		}

		// Calendar days, so the window does not shrink as the day wears on.
		days := utils.DaysUntil(now, loan.NextCurtailmentDate)
		if days >= 0 && days <= policy.CurtailmentWarningDays {
			alerts = append(alerts, &Alert{
				ID:       AlertID("curtailment_due", loan.ID.String(), loan.NextCurtailmentDate.Format("2006-01-02")),
				Severity: AlertSeverityWarning,
				Title:    "Curtailment due soon",
				Message: fmt.Sprintf("Curtailment on balance %s due %s",
					loan.CurrentBalance.StringFixed(2), loan.NextCurtailmentDate.Format("2006-01-02")),
				Timestamp: now,
			})
		}

		if now.Sub(loan.FloorDate) <= time.Duration(policy.NewLoanWindowDays)*24*time.Hour {
			alerts = append(alerts, &Alert{
				ID:        AlertID("new_loan", loan.ID.String()),
				Severity:  AlertSeverityInfo,
				Title:     "Unit floored",
				Message:   fmt.Sprintf("New floor plan opened for %s", loan.FloorAmount.StringFixed(2)),
				Timestamp: now,
			})
		}
	}

	for _, account := range accounts {
		if !account.IsActive() || account.CreditLimit.IsZero() {
			continue
		}
		utilization := utils.UtilizationPercent(account.CreditLimit, account.AvailableCredit)
		if utilization.GreaterThan(policy.UtilizationThreshold) {
			alerts = append(alerts, &Alert{
				ID:       AlertID("high_util", account.ID.String()),
				Severity: AlertSeverityWarning,
				Title:    "High credit utilization",
				Message: fmt.Sprintf("%s is at %s%% of its %s credit line",
					account.Name, utilization.String(), account.CreditLimit.StringFixed(2)),
				Timestamp: now,
			})
		}
	}

	return alerts
}

// AlertDigest is the dashboard view of the alert list after the display
// policy caps each severity bucket.
type AlertDigest struct {
	Alerts     []*Alert `json:"alerts"`
	Suppressed int      `json:"suppressed"`
}

// DigestAlerts applies the display policy: at most 2 critical, 2 warning and
// 1 info alert shown; the rest are summarized as a count. Dismissed alerts
// are dropped before counting.
func DigestAlerts(alerts []*Alert) AlertDigest {
	limits := map[string]int{
		AlertSeverityCritical: 2,
		AlertSeverityWarning:  2,
		AlertSeverityInfo:     1,
	}

	digest := AlertDigest{Alerts: []*Alert{}}
	for _, severity := range []string{AlertSeverityCritical, AlertSeverityWarning, AlertSeverityInfo} {
		shown := 0
		for _, a := range alerts {
			if a.Severity != severity || a.Dismissed {
				continue
			}
			if shown < limits[severity] {
				digest.Alerts = append(digest.Alerts, a)
				shown++
			} else {
				digest.Suppressed++
			}
		}
	}

	return digest
}
