package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/axlesai/floorplan-engine/internal/domain"
)

type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) OpenAccount(ctx context.Context, dealerID uuid.UUID, request *domain.OpenAccountRequest) (*domain.Account, error) {
	args := m.Called(ctx, dealerID, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) ListAccounts(ctx context.Context, dealerID uuid.UUID) ([]*domain.Account, error) {
	args := m.Called(ctx, dealerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccount(ctx context.Context, dealerID, accountID uuid.UUID) (*domain.Account, error) {
	args := m.Called(ctx, dealerID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) UpdateTerms(ctx context.Context, dealerID, accountID uuid.UUID, request *domain.UpdateAccountRequest) (*domain.Account, error) {
	args := m.Called(ctx, dealerID, accountID, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) CloseAccount(ctx context.Context, dealerID, accountID uuid.UUID) (*domain.Account, error) {
	args := m.Called(ctx, dealerID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) CheckCredit(ctx context.Context, dealerID, accountID uuid.UUID, amount decimal.Decimal) (*domain.CreditCheck, error) {
	args := m.Called(ctx, dealerID, accountID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CreditCheck), args.Error(1)
}

func (m *MockAccountService) ListProviders(ctx context.Context) ([]*domain.Provider, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Provider), args.Error(1)
}

type MockFloorService struct {
	mock.Mock
}

func (m *MockFloorService) FloorUnit(ctx context.Context, dealerID uuid.UUID, request *domain.FloorUnitRequest) (*domain.UnitLoan, error) {
	args := m.Called(ctx, dealerID, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UnitLoan), args.Error(1)
}

func (m *MockFloorService) ListUnitLoans(ctx context.Context, dealerID uuid.UUID, filter domain.LoanFilter) ([]*domain.UnitLoan, error) {
	args := m.Called(ctx, dealerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.UnitLoan), args.Error(1)
}

func (m *MockFloorService) GetUnitLoan(ctx context.Context, dealerID, loanID uuid.UUID) (*domain.UnitLoan, error) {
	args := m.Called(ctx, dealerID, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UnitLoan), args.Error(1)
}

func (m *MockFloorService) ListLedger(ctx context.Context, dealerID, loanID uuid.UUID) ([]*domain.LedgerEntry, error) {
	args := m.Called(ctx, dealerID, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LedgerEntry), args.Error(1)
}

func (m *MockFloorService) RecordPayment(ctx context.Context, dealerID, loanID uuid.UUID, request *domain.RecordPaymentRequest) (*domain.UnitLoan, *domain.LedgerEntry, error) {
	args := m.Called(ctx, dealerID, loanID, request)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.UnitLoan), args.Get(1).(*domain.LedgerEntry), args.Error(2)
}

func (m *MockFloorService) Payoff(ctx context.Context, dealerID, loanID uuid.UUID, request *domain.PayoffRequest) (*domain.UnitLoan, error) {
	args := m.Called(ctx, dealerID, loanID, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UnitLoan), args.Error(1)
}

func (m *MockFloorService) PayoffQuote(ctx context.Context, dealerID, loanID uuid.UUID) (*domain.PayoffQuote, error) {
	args := m.Called(ctx, dealerID, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PayoffQuote), args.Error(1)
}

type MockAlertService struct {
	mock.Mock
}

func (m *MockAlertService) GetAlerts(ctx context.Context, dealerID uuid.UUID) (domain.AlertDigest, error) {
	args := m.Called(ctx, dealerID)
	return args.Get(0).(domain.AlertDigest), args.Error(1)
}

func (m *MockAlertService) DismissAlert(ctx context.Context, dealerID uuid.UUID, alertID string) error {
	args := m.Called(ctx, dealerID, alertID)
	return args.Error(0)
}

type MockMetricsService struct {
	mock.Mock
}

func (m *MockMetricsService) Dashboard(ctx context.Context, dealerID uuid.UUID) (domain.DashboardMetrics, error) {
	args := m.Called(ctx, dealerID)
	return args.Get(0).(domain.DashboardMetrics), args.Error(1)
}

func (m *MockMetricsService) UpcomingCurtailments(ctx context.Context, dealerID uuid.UUID, windowDays int) ([]*domain.UnitLoan, error) {
	args := m.Called(ctx, dealerID, windowDays)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.UnitLoan), args.Error(1)
}
