package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/axlesai/floorplan-engine/internal/domain"
	"github.com/axlesai/floorplan-engine/internal/repository"
	customError "github.com/axlesai/floorplan-engine/pkg/errors"
)

// AlertService regenerates risk alerts from current account and loan state.
// Alerts are never stored; only dismissed alert ids persist, in a per-dealer
// redis set keyed by the alert's deterministic condition hash.
type AlertService struct {
	AccountRepo repository.AccountRepository
	LoanRepo    repository.UnitLoanRepository
	redis       *redis.Client
	policy      domain.AlertPolicy
	logger      zerolog.Logger
}

func NewAlertService(
	accountRepo repository.AccountRepository,
	loanRepo repository.UnitLoanRepository,
	redisClient *redis.Client,
	policy domain.AlertPolicy,
	logger zerolog.Logger,
) *AlertService {
	return &AlertService{
		AccountRepo: accountRepo,
		LoanRepo:    loanRepo,
		redis:       redisClient,
		policy:      policy,
		logger:      logger.With().Str("component", "alert_service").Logger(),
	}
}

func dismissedKey(dealerID uuid.UUID) string {
	return "floorplan:alerts:dismissed:" + dealerID.String()
}

// GetAlerts derives the dealer's current alerts, applies stored dismissals
// and caps the result per the display policy.
func (s *AlertService) GetAlerts(ctx context.Context, dealerID uuid.UUID) (domain.AlertDigest, error) {
	accounts, err := s.AccountRepo.List(ctx, dealerID)
	if err != nil {
		return domain.AlertDigest{}, customError.WrapDatabaseError(err)
	}
	loans, err := s.LoanRepo.List(ctx, dealerID, domain.LoanFilter{Status: domain.LoanStatusActive})
	if err != nil {
		return domain.AlertDigest{}, customError.WrapDatabaseError(err)
	}

	alerts := domain.GenerateAlerts(time.Now(), s.policy, accounts, loans)

	dismissed, err := s.redis.SMembers(ctx, dismissedKey(dealerID)).Result()
	if err != nil {
		// Alerts are advisory; a cache miss degrades to showing everything.
		s.logger.Warn().Err(err).Msg("loading dismissed alert ids")
		dismissed = nil
	}
	dismissedSet := make(map[string]bool, len(dismissed))
	for _, id := range dismissed {
		dismissedSet[id] = true
	}
	for _, a := range alerts {
		a.Dismissed = dismissedSet[a.ID]
	}

	return domain.DigestAlerts(alerts), nil
}

// DismissAlert stickies a dismissal. The id is a hash of the condition, so
// the same condition re-derived later stays dismissed.
func (s *AlertService) DismissAlert(ctx context.Context, dealerID uuid.UUID, alertID string) error {
	if err := s.redis.SAdd(ctx, dismissedKey(dealerID), alertID).Err(); err != nil {
		return customError.WrapCacheError(err)
	}

	s.logger.Info().
		Str("dealer_id", dealerID.String()).
		Str("alert_id", alertID).
		Msg("alert dismissed")

	return nil
}
