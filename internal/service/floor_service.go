package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/axlesai/floorplan-engine/internal/domain"
	"github.com/axlesai/floorplan-engine/internal/repository"
	customError "github.com/axlesai/floorplan-engine/pkg/errors"
	"github.com/axlesai/floorplan-engine/pkg/utils"
)

// FloorService owns the unit-loan state machine and the payment ledger.
// Every balance mutation flows through here as one transaction: the ledger
// entry, the loan row and the account's available credit always move
// together or not at all.
type FloorService struct {
	AccountRepo repository.AccountRepository
	LoanRepo    repository.UnitLoanRepository
	LedgerRepo  repository.LedgerRepository
	tx          repository.TxRunner
	logger      zerolog.Logger
}

func NewFloorService(
	accountRepo repository.AccountRepository,
	loanRepo repository.UnitLoanRepository,
	ledgerRepo repository.LedgerRepository,
	tx repository.TxRunner,
	logger zerolog.Logger,
) *FloorService {
	return &FloorService{
		AccountRepo: accountRepo,
		LoanRepo:    loanRepo,
		LedgerRepo:  ledgerRepo,
		tx:          tx,
		logger:      logger.With().Str("component", "floor_service").Logger(),
	}
}

// FloorUnit draws credit from an account to finance one inventory unit.
// The credit check and the decrement run under the account row lock, so two
// concurrent floors cannot jointly overdraw the line.
func (s *FloorService) FloorUnit(ctx context.Context, dealerID uuid.UUID, request *domain.FloorUnitRequest) (*domain.UnitLoan, error) {
	if !request.FloorAmount.IsPositive() {
		return nil, customError.WrapValidationError("floor_amount must be greater than zero")
	}
	floorDate, err := utils.ParseDate(request.FloorDate)
	if err != nil {
		return nil, customError.WrapValidationError("floor_date must be YYYY-MM-DD")
	}

	account, err := s.AccountRepo.GetByID(ctx, dealerID, request.AccountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapAccountNotFound(request.AccountID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}
	if !account.IsActive() {
		return nil, customError.WrapAccountNotActive(account.ID.String(), account.Status)
	}

	now := time.Now()
	loan := &domain.UnitLoan{
		ID:                   uuid.New(),
		AccountID:            account.ID,
		DealerID:             dealerID,
		UnitID:               request.UnitID,
		FloorAmount:          request.FloorAmount,
		CurrentBalance:       request.FloorAmount,
		CurtailmentsPaid:     0,
		NextCurtailmentDate:  floorDate.AddDate(0, 0, account.CurtailmentDays),
		TotalInterestAccrued: decimal.Zero,
		TotalInterestPaid:    decimal.Zero,
		Status:               domain.LoanStatusActive,
		FloorDate:            floorDate,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	err = s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		locked, err := s.AccountRepo.GetForUpdate(ctx, tx, account.ID)
		if err != nil {
			return customError.WrapDatabaseError(err)
		}
		if !locked.IsActive() {
			return customError.WrapAccountNotActive(locked.ID.String(), locked.Status)
		}

		floored, err := s.LoanRepo.HasActiveForUnit(ctx, tx, request.UnitID)
		if err != nil {
			return customError.WrapDatabaseError(err)
		}
		if floored {
			return customError.WrapAlreadyFloored(request.UnitID.String())
		}

		if request.FloorAmount.GreaterThan(locked.AvailableCredit) {
			return customError.WrapInsufficientCredit(request.FloorAmount, locked.AvailableCredit)
		}

		if err := s.LoanRepo.Create(ctx, tx, loan); err != nil {
			return customError.WrapDatabaseError(err)
		}
		if err := s.AccountRepo.AdjustAvailableCredit(ctx, tx, account.ID, request.FloorAmount.Neg()); err != nil {
			return customError.WrapDatabaseError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("unit_loan_id", loan.ID.String()).
		Str("account_id", account.ID.String()).
		Str("floor_amount", loan.FloorAmount.StringFixed(2)).
		Msg("unit floored")

	return loan, nil
}

// RecordPayment is the sole balance-mutation entry point for curtailment,
// interest and adjustment payments. The payoff type has its own path.
func (s *FloorService) RecordPayment(ctx context.Context, dealerID, loanID uuid.UUID, request *domain.RecordPaymentRequest) (*domain.UnitLoan, *domain.LedgerEntry, error) {
	if request.PaymentType == domain.PaymentTypePayoff {
		return nil, nil, customError.WrapValidationError("payoff is recorded via the payoff endpoint")
	}
	if request.PaymentType != domain.PaymentTypeAdjustment && !request.Amount.IsPositive() {
		return nil, nil, customError.WrapValidationError("amount must be greater than zero")
	}
	if request.Amount.IsZero() {
		return nil, nil, customError.WrapValidationError("amount must not be zero")
	}
	paymentDate, err := utils.ParseDate(request.PaymentDate)
	if err != nil {
		return nil, nil, customError.WrapValidationError("payment_date must be YYYY-MM-DD")
	}

	loan, err := s.getLoan(ctx, dealerID, loanID)
	if err != nil {
		return nil, nil, err
	}

	var entry *domain.LedgerEntry
	err = s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		// Account first, loan second: same lock order as payoff.
		account, err := s.AccountRepo.GetForUpdate(ctx, tx, loan.AccountID)
		if err != nil {
			return customError.WrapDatabaseError(err)
		}

		loan, err = s.LoanRepo.GetForUpdate(ctx, tx, loanID)
		if err != nil {
			return customError.WrapDatabaseError(err)
		}
		if !loan.IsActive() {
			return customError.WrapLoanNotActive(loanID.String(), loan.Status)
		}

		balanceBefore := loan.CurrentBalance

		switch request.PaymentType {
		case domain.PaymentTypeCurtailment:
			loan.CurrentBalance = maxZero(loan.CurrentBalance.Sub(request.Amount))
			loan.CurtailmentsPaid++
			loan.NextCurtailmentDate = paymentDate.AddDate(0, 0, account.SubsequentCurtailmentDays)
			loan.IsPastDue = false
		case domain.PaymentTypeInterest:
			loan.TotalInterestPaid = loan.TotalInterestPaid.Add(request.Amount)
		case domain.PaymentTypeAdjustment:
			loan.CurrentBalance = maxZero(loan.CurrentBalance.Sub(request.Amount))
		}

		entry = &domain.LedgerEntry{
			ID:           uuid.New(),
			UnitLoanID:   loan.ID,
			PaymentType:  request.PaymentType,
			Amount:       request.Amount,
			PaymentDate:  paymentDate,
			Reference:    request.Reference,
			Notes:        request.Notes,
			BalanceAfter: loan.CurrentBalance,
			CreatedAt:    time.Now(),
		}

		if err := s.LedgerRepo.Insert(ctx, tx, entry); err != nil {
			return customError.WrapDatabaseError(err)
		}
		if err := s.LoanRepo.Update(ctx, tx, loan); err != nil {
			return customError.WrapDatabaseError(err)
		}

		// Principal reduction frees up the credit line.
		freed := balanceBefore.Sub(loan.CurrentBalance)
		if !freed.IsZero() {
			if err := s.AccountRepo.AdjustAvailableCredit(ctx, tx, account.ID, freed); err != nil {
				return customError.WrapDatabaseError(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info().
		Str("unit_loan_id", loanID.String()).
		Str("payment_type", request.PaymentType).
		Str("amount", request.Amount.StringFixed(2)).
		Str("balance_after", entry.BalanceAfter.StringFixed(2)).
		Msg("payment recorded")

	return loan, entry, nil
}

// Payoff settles the loan in full: a terminal payoff ledger entry, the loan
// zeroed and closed, and the outstanding principal returned to the account's
// available credit, all in one transaction.
func (s *FloorService) Payoff(ctx context.Context, dealerID, loanID uuid.UUID, request *domain.PayoffRequest) (*domain.UnitLoan, error) {
	if !request.PayoffAmount.IsPositive() {
		return nil, customError.WrapValidationError("payoff_amount must be greater than zero")
	}
	payoffDate, err := utils.ParseDate(request.PayoffDate)
	if err != nil {
		return nil, customError.WrapValidationError("payoff_date must be YYYY-MM-DD")
	}

	loan, err := s.getLoan(ctx, dealerID, loanID)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := s.AccountRepo.GetForUpdate(ctx, tx, loan.AccountID); err != nil {
			return customError.WrapDatabaseError(err)
		}

		loan, err = s.LoanRepo.GetForUpdate(ctx, tx, loanID)
		if err != nil {
			return customError.WrapDatabaseError(err)
		}
		if !loan.IsActive() {
			return customError.WrapLoanNotActive(loanID.String(), loan.Status)
		}

		outstanding := loan.CurrentBalance

		entry := &domain.LedgerEntry{
			ID:           uuid.New(),
			UnitLoanID:   loan.ID,
			PaymentType:  domain.PaymentTypePayoff,
			Amount:       request.PayoffAmount,
			PaymentDate:  payoffDate,
			Reference:    request.Reference,
			Notes:        request.Notes,
			BalanceAfter: decimal.Zero,
			CreatedAt:    time.Now(),
		}
		if err := s.LedgerRepo.Insert(ctx, tx, entry); err != nil {
			return customError.WrapDatabaseError(err)
		}

		loan.Status = domain.LoanStatusPaidOff
		loan.CurrentBalance = decimal.Zero
		loan.IsPastDue = false
		loan.PayoffDate = &payoffDate
		loan.PayoffAmount = &request.PayoffAmount
		if request.Reference != "" {
			loan.PayoffReference = &request.Reference
		}

		if err := s.LoanRepo.Update(ctx, tx, loan); err != nil {
			return customError.WrapDatabaseError(err)
		}

		if !outstanding.IsZero() {
			if err := s.AccountRepo.AdjustAvailableCredit(ctx, tx, loan.AccountID, outstanding); err != nil {
				return customError.WrapDatabaseError(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("unit_loan_id", loanID.String()).
		Str("payoff_amount", request.PayoffAmount.StringFixed(2)).
		Msg("unit loan paid off")

	return loan, nil
}

// PayoffQuote estimates what a payoff today would cost:
// balance + unpaid interest + the account's flat payoff fee.
func (s *FloorService) PayoffQuote(ctx context.Context, dealerID, loanID uuid.UUID) (*domain.PayoffQuote, error) {
	loan, err := s.getLoan(ctx, dealerID, loanID)
	if err != nil {
		return nil, err
	}
	if !loan.IsActive() {
		return nil, customError.WrapLoanNotActive(loanID.String(), loan.Status)
	}

	account, err := s.AccountRepo.GetByID(ctx, dealerID, loan.AccountID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return &domain.PayoffQuote{
		UnitLoanID:     loan.ID,
		CurrentBalance: loan.CurrentBalance,
		UnpaidInterest: utils.Money(loan.UnpaidInterest()),
		PayoffFee:      account.PayoffFee,
		EstimatedTotal: utils.Money(loan.EstimatedPayoff(account.PayoffFee)),
		QuotedAt:       time.Now(),
	}, nil
}

// ListUnitLoans returns a dealer's loans narrowed by filter
func (s *FloorService) ListUnitLoans(ctx context.Context, dealerID uuid.UUID, filter domain.LoanFilter) ([]*domain.UnitLoan, error) {
	loans, err := s.LoanRepo.List(ctx, dealerID, filter)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return loans, nil
}

// GetUnitLoan returns one loan scoped to the caller
func (s *FloorService) GetUnitLoan(ctx context.Context, dealerID, loanID uuid.UUID) (*domain.UnitLoan, error) {
	return s.getLoan(ctx, dealerID, loanID)
}

// ListLedger returns the loan's ledger entries oldest first. Each read also
// replays the ledger against the loan row and logs when the two disagree;
// the read itself never fails on a drifted balance.
func (s *FloorService) ListLedger(ctx context.Context, dealerID, loanID uuid.UUID) ([]*domain.LedgerEntry, error) {
	loan, err := s.getLoan(ctx, dealerID, loanID)
	if err != nil {
		return nil, err
	}

	entries, err := s.LedgerRepo.ListByLoan(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	replayed := domain.Replay(loan.FloorAmount, entries)
	if !replayed.CurrentBalance.Equal(loan.CurrentBalance) {
		s.logger.Warn().
			Str("loan_id", loanID.String()).
			Str("balance", loan.CurrentBalance.StringFixed(2)).
			Str("replayed_balance", replayed.CurrentBalance.StringFixed(2)).
			Msg("loan balance drifted from ledger")
	}

	return entries, nil
}

func (s *FloorService) getLoan(ctx context.Context, dealerID, loanID uuid.UUID) (*domain.UnitLoan, error) {
	loan, err := s.LoanRepo.GetByID(ctx, dealerID, loanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapUnitLoanNotFound(loanID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return loan, nil
}

func maxZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
