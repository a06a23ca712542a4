package service

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/axlesai/floorplan-engine/internal/domain"
	"github.com/axlesai/floorplan-engine/internal/repository"
	customError "github.com/axlesai/floorplan-engine/pkg/errors"
	"github.com/axlesai/floorplan-engine/pkg/utils"
)

// AccrualService runs the scheduled interest and past-due jobs. Accrual only
// grows total_interest_accrued; it never touches current_balance, so no
// ledger entry is written. Each loan accrues at most once per calendar day,
// guarded by last_accrual_date inside the loan's transaction, which makes
// job retries safe.
type AccrualService struct {
	AccountRepo repository.AccountRepository
	LoanRepo    repository.UnitLoanRepository
	tx          repository.TxRunner
	logger      zerolog.Logger
}

func NewAccrualService(
	accountRepo repository.AccountRepository,
	loanRepo repository.UnitLoanRepository,
	tx repository.TxRunner,
	logger zerolog.Logger,
) *AccrualService {
	return &AccrualService{
		AccountRepo: accountRepo,
		LoanRepo:    loanRepo,
		tx:          tx,
		logger:      logger.With().Str("component", "accrual_service").Logger(),
	}
}

// AccrueInterest accrues interest on every active loan for the calendar day
// of `now`. Per-loan failures are logged and skipped so one bad row cannot
// stall the whole run.
func (s *AccrualService) AccrueInterest(ctx context.Context, now time.Time) error {
	loans, err := s.LoanRepo.ListAllActive(ctx)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}

	today := utils.DateOnly(now)
	accounts := make(map[string]*domain.Account)
	accrued := 0

	for _, l := range loans {
		account, ok := accounts[l.AccountID.String()]
		if !ok {
			account, err = s.AccountRepo.GetAny(ctx, l.AccountID)
			if err != nil {
				s.logger.Error().Err(err).Str("account_id", l.AccountID.String()).Msg("loading account for accrual")
				continue
			}
			accounts[l.AccountID.String()] = account
		}

		err := s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
			loan, err := s.LoanRepo.GetForUpdate(ctx, tx, l.ID)
			if err != nil {
				return err
			}
			if !loan.IsActive() {
				return nil
			}
			if loan.LastAccrualDate != nil && !utils.DateOnly(*loan.LastAccrualDate).Before(today) {
				// Already accrued for this day.
				return nil
			}

			interest := accrualAmount(account, loan, today)
			if interest.IsPositive() {
				loan.TotalInterestAccrued = loan.TotalInterestAccrued.Add(interest)
			}
			loan.LastAccrualDate = &today

			return s.LoanRepo.Update(ctx, tx, loan)
		})
		if err != nil {
			s.logger.Error().Err(err).Str("unit_loan_id", l.ID.String()).Msg("accruing interest")
			continue
		}
		accrued++
	}

	s.logger.Info().Int("loans", accrued).Str("date", utils.FormatDate(today)).Msg("interest accrual run complete")
	return nil
}

// accrualAmount computes one day's worth of accrual for a loan.
// daily accrues every day; monthly accrues only on the monthly anniversary
// of the floor date (clamped for short months). Compound calculation uses
// the balance plus unpaid interest as the base.
func accrualAmount(account *domain.Account, loan *domain.UnitLoan, today time.Time) decimal.Decimal {
	base := loan.CurrentBalance
	if account.InterestCalculation == domain.InterestCalcCompound {
		base = base.Add(loan.UnpaidInterest())
	}
	if !base.IsPositive() {
		return decimal.Zero
	}

	switch account.InterestType {
	case domain.InterestTypeMonthly:
		if today.Day() != anniversaryDay(loan.FloorDate, today) {
			return decimal.Zero
		}
		return utils.MonthlyInterest(base, account.InterestRate)
	default:
		return utils.DailyInterest(base, account.InterestRate)
	}
}

// anniversaryDay clamps the floor date's day-of-month into the current month
func anniversaryDay(floorDate, today time.Time) int {
	day := floorDate.Day()
	lastDay := time.Date(today.Year(), today.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > lastDay {
		return lastDay
	}
	return day
}

// SweepPastDue flags active loans whose next curtailment date has slipped
// past the start of `now`'s day.
func (s *AccrualService) SweepPastDue(ctx context.Context, now time.Time) (int64, error) {
	flagged, err := s.LoanRepo.MarkPastDue(ctx, utils.DateOnly(now))
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}

	if flagged > 0 {
		s.logger.Warn().Int64("loans", flagged).Msg("loans newly past due")
	}
	return flagged, nil
}
