package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/axlesai/floorplan-engine/internal/domain"
	"github.com/axlesai/floorplan-engine/internal/repository"
	customError "github.com/axlesai/floorplan-engine/pkg/errors"
)

// MetricsService is the pure read-side roll-up for the dashboard. Sums are
// recomputed from current rows on every call; nothing is cached, so two
// calls without intervening writes always agree.
type MetricsService struct {
	AccountRepo repository.AccountRepository
	LoanRepo    repository.UnitLoanRepository
}

func NewMetricsService(
	accountRepo repository.AccountRepository,
	loanRepo repository.UnitLoanRepository,
) *MetricsService {
	return &MetricsService{
		AccountRepo: accountRepo,
		LoanRepo:    loanRepo,
	}
}

// Dashboard computes the dealer's aggregate floor plan position
func (s *MetricsService) Dashboard(ctx context.Context, dealerID uuid.UUID) (domain.DashboardMetrics, error) {
	accounts, err := s.AccountRepo.List(ctx, dealerID)
	if err != nil {
		return domain.DashboardMetrics{}, customError.WrapDatabaseError(err)
	}
	loans, err := s.LoanRepo.List(ctx, dealerID, domain.LoanFilter{Status: domain.LoanStatusActive})
	if err != nil {
		return domain.DashboardMetrics{}, customError.WrapDatabaseError(err)
	}

	return domain.ComputeMetrics(time.Now(), accounts, loans), nil
}

// UpcomingCurtailments lists active loans due within the warning window,
// today inclusive, soonest first.
func (s *MetricsService) UpcomingCurtailments(ctx context.Context, dealerID uuid.UUID, windowDays int) ([]*domain.UnitLoan, error) {
	loans, err := s.LoanRepo.List(ctx, dealerID, domain.LoanFilter{Status: domain.LoanStatusActive})
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	horizon := today.AddDate(0, 0, windowDays)

	upcoming := make([]*domain.UnitLoan, 0)
	for _, l := range loans {
		due := l.NextCurtailmentDate
		if !due.Before(today) && !due.After(horizon) {
			upcoming = append(upcoming, l)
		}
	}

	sort.Slice(upcoming, func(i, j int) bool {
		return upcoming[i].NextCurtailmentDate.Before(upcoming[j].NextCurtailmentDate)
	})

	return upcoming, nil
}
