package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/axlesai/floorplan-engine/internal/domain"
)

type providerRepository struct {
	db *sqlx.DB
}

func NewProviderRepository(db *sqlx.DB) ProviderRepository {
	return &providerRepository{db: db}
}

func (r *providerRepository) List(ctx context.Context) ([]*domain.Provider, error) {
	query := `
		SELECT id, name, website, phone, default_rate, default_curtail_days, created_at
		FROM floor_plan_providers
		ORDER BY name
	`

	var providers []*domain.Provider
	if err := r.db.SelectContext(ctx, &providers, query); err != nil {
		return nil, err
	}

	return providers, nil
}

func (r *providerRepository) GetByID(ctx context.Context, providerID uuid.UUID) (*domain.Provider, error) {
	query := `
		SELECT id, name, website, phone, default_rate, default_curtail_days, created_at
		FROM floor_plan_providers
		WHERE id = $1
	`

	var provider domain.Provider
	if err := r.db.GetContext(ctx, &provider, query, providerID); err != nil {
		return nil, err
	}

	return &provider, nil
}
