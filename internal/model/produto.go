package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Produto is static reference data: the expected copper and zinc content of a
// product type, stored as percentages (0–100).
type Produto struct {
	ID              uuid.UUID        `gorm:"type:uuid;primaryKey"`
	Nome            string           `gorm:"index;not null"`
	PercentualCobre *decimal.Decimal `gorm:"type:decimal(7,4)"`
	PercentualZinco *decimal.Decimal `gorm:"type:decimal(7,4)"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (Produto) TableName() string { return "produtos" }
