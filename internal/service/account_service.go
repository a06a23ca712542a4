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

	"github.com/axlesai/floorplan-engine/internal/config"
	"github.com/axlesai/floorplan-engine/internal/domain"
	"github.com/axlesai/floorplan-engine/internal/repository"
	customError "github.com/axlesai/floorplan-engine/pkg/errors"
)

// AccountService owns the dealer's credit facilities: limits, rates,
// curtailment policy and the running available balance. Term updates and
// closure take the account row lock so they serialize against concurrent
// floors and payments on the same line.
type AccountService struct {
	AccountRepo  repository.AccountRepository
	LoanRepo     repository.UnitLoanRepository
	ProviderRepo repository.ProviderRepository
	tx           repository.TxRunner
	config       *config.Config
	logger       zerolog.Logger
}

func NewAccountService(
	accountRepo repository.AccountRepository,
	loanRepo repository.UnitLoanRepository,
	providerRepo repository.ProviderRepository,
	tx repository.TxRunner,
	config *config.Config,
	logger zerolog.Logger,
) *AccountService {
	return &AccountService{
		AccountRepo:  accountRepo,
		LoanRepo:     loanRepo,
		ProviderRepo: providerRepo,
		tx:           tx,
		config:       config,
		logger:       logger.With().Str("component", "account_service").Logger(),
	}
}

// OpenAccount creates a credit facility with available credit equal to the
// full limit.
func (s *AccountService) OpenAccount(ctx context.Context, dealerID uuid.UUID, request *domain.OpenAccountRequest) (*domain.Account, error) {
	if request.CreditLimit.IsNegative() {
		return nil, customError.WrapValidationError("credit_limit must be zero or greater")
	}
	if request.InterestRate.IsNegative() || request.InterestRate.GreaterThan(s.config.GetMaxInterestRate()) {
		return nil, customError.WrapValidationError("interest_rate must be between 0 and " + s.config.FloorPlan.MaxInterestRate)
	}
	if request.CurtailmentPercent.IsNegative() || request.CurtailmentPercent.GreaterThan(decimal.NewFromInt(100)) {
		return nil, customError.WrapValidationError("curtailment_percent must be between 0 and 100")
	}
	if request.PayoffFee.IsNegative() {
		return nil, customError.WrapValidationError("payoff_fee must be zero or greater")
	}

	if _, err := s.ProviderRepo.GetByID(ctx, request.ProviderID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapValidationError("unknown provider")
		}
		return nil, customError.WrapDatabaseError(err)
	}

	now := time.Now()
	account := &domain.Account{
		ID:                        uuid.New(),
		DealerID:                  dealerID,
		ProviderID:                request.ProviderID,
		Name:                      request.Name,
		CreditLimit:               request.CreditLimit,
		AvailableCredit:           request.CreditLimit,
		InterestRate:              request.InterestRate,
		InterestType:              request.InterestType,
		InterestCalculation:       request.InterestCalculation,
		CurtailmentDays:           request.CurtailmentDays,
		CurtailmentPercent:        request.CurtailmentPercent,
		SubsequentCurtailmentDays: request.SubsequentCurtailmentDays,
		PayoffFee:                 request.PayoffFee,
		Status:                    domain.AccountStatusActive,
		CreatedAt:                 now,
		UpdatedAt:                 now,
	}

	if err := s.AccountRepo.Create(ctx, account); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.logger.Info().
		Str("account_id", account.ID.String()).
		Str("dealer_id", dealerID.String()).
		Str("credit_limit", account.CreditLimit.StringFixed(2)).
		Msg("account opened")

	return account, nil
}

// ListAccounts returns all of a dealer's accounts
func (s *AccountService) ListAccounts(ctx context.Context, dealerID uuid.UUID) ([]*domain.Account, error) {
	accounts, err := s.AccountRepo.List(ctx, dealerID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return accounts, nil
}

// GetAccount returns one account scoped to the caller
func (s *AccountService) GetAccount(ctx context.Context, dealerID, accountID uuid.UUID) (*domain.Account, error) {
	account, err := s.AccountRepo.GetByID(ctx, dealerID, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapAccountNotFound(accountID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return account, nil
}

// UpdateTerms mutates the account's mutable fields. All checks and writes
// run under the account row lock: the credit limit can never drop below the
// drawn balance as of the lock, and available credit is recomputed from the
// locked row only when the limit changes, so a concurrent floor or payment
// is never clobbered by a stale snapshot.
func (s *AccountService) UpdateTerms(ctx context.Context, dealerID, accountID uuid.UUID, request *domain.UpdateAccountRequest) (*domain.Account, error) {
	if request.InterestRate != nil {
		rate := *request.InterestRate
		if rate.IsNegative() || rate.GreaterThan(s.config.GetMaxInterestRate()) {
			return nil, customError.WrapValidationError("interest_rate must be between 0 and " + s.config.FloorPlan.MaxInterestRate)
		}
	}
	if request.CurtailmentPercent != nil {
		pct := *request.CurtailmentPercent
		if pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(100)) {
			return nil, customError.WrapValidationError("curtailment_percent must be between 0 and 100")
		}
	}
	if request.PayoffFee != nil && request.PayoffFee.IsNegative() {
		return nil, customError.WrapValidationError("payoff_fee must be zero or greater")
	}

	// Ownership check before taking the lock; misses read as NotFound.
	if _, err := s.GetAccount(ctx, dealerID, accountID); err != nil {
		return nil, err
	}

	var account *domain.Account
	err := s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		locked, err := s.AccountRepo.GetForUpdate(ctx, tx, accountID)
		if err != nil {
			return customError.WrapDatabaseError(err)
		}
		if locked.Status == domain.AccountStatusClosed {
			return customError.WrapAccountNotActive(accountID.String(), locked.Status)
		}

		if request.Name != nil {
			locked.Name = *request.Name
		}
		if request.InterestRate != nil {
			locked.InterestRate = *request.InterestRate
		}
		if request.InterestType != nil {
			locked.InterestType = *request.InterestType
		}
		if request.InterestCalculation != nil {
			locked.InterestCalculation = *request.InterestCalculation
		}
		if request.CurtailmentDays != nil {
			locked.CurtailmentDays = *request.CurtailmentDays
		}
		if request.CurtailmentPercent != nil {
			locked.CurtailmentPercent = *request.CurtailmentPercent
		}
		if request.SubsequentCurtailmentDays != nil {
			locked.SubsequentCurtailmentDays = *request.SubsequentCurtailmentDays
		}
		if request.PayoffFee != nil {
			locked.PayoffFee = *request.PayoffFee
		}
		if request.Status != nil {
			locked.Status = *request.Status
		}

		if request.CreditLimit != nil {
			newLimit := *request.CreditLimit
			drawn := locked.DrawnBalance()
			if newLimit.LessThan(drawn) {
				return customError.WrapCreditConflict(newLimit, drawn)
			}
			locked.CreditLimit = newLimit
			locked.AvailableCredit = newLimit.Sub(drawn)
			if err := s.AccountRepo.SetCreditLimit(ctx, tx, accountID, locked.CreditLimit, locked.AvailableCredit); err != nil {
				return customError.WrapDatabaseError(err)
			}
		}

		if err := s.AccountRepo.Update(ctx, tx, locked); err != nil {
			return customError.WrapDatabaseError(err)
		}

		account = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("account_id", accountID.String()).Msg("account terms updated")

	return account, nil
}

// CloseAccount is terminal and only permitted once no active unit loans
// draw on the account. The count runs under the account row lock, so a floor
// committing concurrently either lands before the lock and blocks the close,
// or waits behind it and fails on the closed status.
func (s *AccountService) CloseAccount(ctx context.Context, dealerID, accountID uuid.UUID) (*domain.Account, error) {
	if _, err := s.GetAccount(ctx, dealerID, accountID); err != nil {
		return nil, err
	}

	var account *domain.Account
	err := s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		locked, err := s.AccountRepo.GetForUpdate(ctx, tx, accountID)
		if err != nil {
			return customError.WrapDatabaseError(err)
		}
		if locked.Status == domain.AccountStatusClosed {
			account = locked
			return nil
		}

		active, err := s.LoanRepo.CountActiveByAccount(ctx, tx, accountID)
		if err != nil {
			return customError.WrapDatabaseError(err)
		}
		if active > 0 {
			return customError.WrapActiveLoansExist(accountID.String(), active)
		}

		now := time.Now()
		locked.Status = domain.AccountStatusClosed
		locked.ClosedAt = &now

		if err := s.AccountRepo.Update(ctx, tx, locked); err != nil {
			return customError.WrapDatabaseError(err)
		}

		account = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("account_id", accountID.String()).Msg("account closed")

	return account, nil
}

// CheckCredit is a read-only availability probe. The authoritative check
// happens again under the account row lock when a unit is floored.
func (s *AccountService) CheckCredit(ctx context.Context, dealerID, accountID uuid.UUID, amount decimal.Decimal) (*domain.CreditCheck, error) {
	account, err := s.GetAccount(ctx, dealerID, accountID)
	if err != nil {
		return nil, err
	}

	return &domain.CreditCheck{
		AccountID:       accountID,
		Requested:       amount,
		AvailableCredit: account.AvailableCredit,
		OK:              account.IsActive() && amount.LessThanOrEqual(account.AvailableCredit),
	}, nil
}

// ListProviders returns lender reference data
func (s *AccountService) ListProviders(ctx context.Context) ([]*domain.Provider, error) {
	providers, err := s.ProviderRepo.List(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return providers, nil
}
