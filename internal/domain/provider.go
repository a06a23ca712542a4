package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Provider is a floor plan lender. Reference data only; accounts point at a
// provider but the engine never mutates providers.
type Provider struct {
	ID                 uuid.UUID       `json:"id" db:"id"`
	Name               string          `json:"name" db:"name"`
	Website            string          `json:"website,omitempty" db:"website"`
	Phone              string          `json:"phone,omitempty" db:"phone"`
	DefaultRate        decimal.Decimal `json:"default_rate" db:"default_rate"`
	DefaultCurtailDays int             `json:"default_curtail_days" db:"default_curtail_days"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
}
