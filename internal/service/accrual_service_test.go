package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/axlesai/floorplan-engine/internal/domain"
	"github.com/axlesai/floorplan-engine/pkg/utils"
)

func newAccrualService(accountRepo *MockAccountRepository, loanRepo *MockUnitLoanRepository) *AccrualService {
	return NewAccrualService(accountRepo, loanRepo, stubTxRunner{}, zerolog.Nop())
}

func TestAccrueInterestDaily(t *testing.T) {
	dealerID := uuid.New()
	accountRepo := new(MockAccountRepository)
	loanRepo := new(MockUnitLoanRepository)

	account := testAccount(dealerID, 100000, 70000)
	loan := testLoan(account, 30000)

	now := time.Date(2025, 3, 10, 1, 0, 0, 0, time.UTC)

	loanRepo.On("ListAllActive", mock.Anything).Return([]*domain.UnitLoan{loan}, nil)
	accountRepo.On("GetAny", mock.Anything, account.ID).Return(account, nil)
	loanRepo.On("GetForUpdate", mock.Anything, mock.Anything, loan.ID).Return(loan, nil)
	loanRepo.On("Update", mock.Anything, mock.Anything, loan).Return(nil)

	svc := newAccrualService(accountRepo, loanRepo)
	err := svc.AccrueInterest(context.Background(), now)

	assert.NoError(t, err)
	// 30000 * 10% / 365
	expected := decimal.NewFromInt(30000).Mul(decimal.NewFromInt(10)).
		Div(decimal.NewFromInt(100)).Div(decimal.NewFromInt(365))
	assert.True(t, loan.TotalInterestAccrued.Equal(expected))
	assert.NotNil(t, loan.LastAccrualDate)
	assert.Equal(t, "2025-03-10", utils.FormatDate(*loan.LastAccrualDate))
}

func TestAccrueInterestOncePerDay(t *testing.T) {
	dealerID := uuid.New()
	accountRepo := new(MockAccountRepository)
	loanRepo := new(MockUnitLoanRepository)

	account := testAccount(dealerID, 100000, 70000)
	loan := testLoan(account, 30000)
	already := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	loan.LastAccrualDate = &already

	loanRepo.On("ListAllActive", mock.Anything).Return([]*domain.UnitLoan{loan}, nil)
	accountRepo.On("GetAny", mock.Anything, account.ID).Return(account, nil)
	loanRepo.On("GetForUpdate", mock.Anything, mock.Anything, loan.ID).Return(loan, nil)

	svc := newAccrualService(accountRepo, loanRepo)
	err := svc.AccrueInterest(context.Background(), time.Date(2025, 3, 10, 23, 0, 0, 0, time.UTC))

	assert.NoError(t, err)
	assert.True(t, loan.TotalInterestAccrued.IsZero())
	loanRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestAccrueInterestMonthlyAnniversary(t *testing.T) {
	dealerID := uuid.New()

	tests := []struct {
		name      string
		floorDate time.Time
		now       time.Time
		accrues   bool
	}{
		{
			name:      "accrues on the monthly anniversary",
			floorDate: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
			now:       time.Date(2025, 3, 15, 1, 0, 0, 0, time.UTC),
			accrues:   true,
		},
		{
			name:      "silent between anniversaries",
			floorDate: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
			now:       time.Date(2025, 3, 16, 1, 0, 0, 0, time.UTC),
			accrues:   false,
		},
		{
			name:      "day 31 clamps to the end of short months",
			floorDate: time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
			now:       time.Date(2025, 2, 28, 1, 0, 0, 0, time.UTC),
			accrues:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accountRepo := new(MockAccountRepository)
			loanRepo := new(MockUnitLoanRepository)

			account := testAccount(dealerID, 100000, 70000)
			account.InterestType = domain.InterestTypeMonthly
			loan := testLoan(account, 30000)
			loan.FloorDate = tt.floorDate

			loanRepo.On("ListAllActive", mock.Anything).Return([]*domain.UnitLoan{loan}, nil)
			accountRepo.On("GetAny", mock.Anything, account.ID).Return(account, nil)
			loanRepo.On("GetForUpdate", mock.Anything, mock.Anything, loan.ID).Return(loan, nil)
			loanRepo.On("Update", mock.Anything, mock.Anything, loan).Return(nil)

			svc := newAccrualService(accountRepo, loanRepo)
			err := svc.AccrueInterest(context.Background(), tt.now)
			assert.NoError(t, err)

			if tt.accrues {
				// balance * 10% / 12
				expected := decimal.NewFromInt(30000).Mul(decimal.NewFromInt(10)).
					Div(decimal.NewFromInt(100)).Div(decimal.NewFromInt(12))
				assert.True(t, loan.TotalInterestAccrued.Equal(expected))
			} else {
				assert.True(t, loan.TotalInterestAccrued.IsZero())
			}
			// The accrual date advances either way so the day is marked done.
			assert.NotNil(t, loan.LastAccrualDate)
		})
	}
}

func TestAccrueInterestCompound(t *testing.T) {
	dealerID := uuid.New()
	accountRepo := new(MockAccountRepository)
	loanRepo := new(MockUnitLoanRepository)

	account := testAccount(dealerID, 100000, 70000)
	account.InterestCalculation = domain.InterestCalcCompound
	loan := testLoan(account, 30000)
	loan.TotalInterestAccrued = decimal.NewFromInt(500)
	loan.TotalInterestPaid = decimal.NewFromInt(100)

	loanRepo.On("ListAllActive", mock.Anything).Return([]*domain.UnitLoan{loan}, nil)
	accountRepo.On("GetAny", mock.Anything, account.ID).Return(account, nil)
	loanRepo.On("GetForUpdate", mock.Anything, mock.Anything, loan.ID).Return(loan, nil)
	loanRepo.On("Update", mock.Anything, mock.Anything, loan).Return(nil)

	svc := newAccrualService(accountRepo, loanRepo)
	err := svc.AccrueInterest(context.Background(), time.Date(2025, 3, 10, 1, 0, 0, 0, time.UTC))

	assert.NoError(t, err)
	// Base is balance plus the 400 of unpaid interest.
	day := decimal.NewFromInt(30400).Mul(decimal.NewFromInt(10)).
		Div(decimal.NewFromInt(100)).Div(decimal.NewFromInt(365))
	assert.True(t, loan.TotalInterestAccrued.Equal(decimal.NewFromInt(500).Add(day)))
}

func TestSweepPastDue(t *testing.T) {
	accountRepo := new(MockAccountRepository)
	loanRepo := new(MockUnitLoanRepository)

	now := time.Date(2025, 3, 10, 2, 0, 0, 0, time.UTC)
	loanRepo.On("MarkPastDue", mock.Anything, utils.DateOnly(now)).Return(int64(3), nil)

	svc := newAccrualService(accountRepo, loanRepo)
	flagged, err := svc.SweepPastDue(context.Background(), now)

	assert.NoError(t, err)
	assert.Equal(t, int64(3), flagged)
	loanRepo.AssertExpectations(t)
}
