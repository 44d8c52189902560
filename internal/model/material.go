package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Material is a priced raw material. The same name may repeat across
// suppliers with different values; FornecedorID nil means "any supplier".
// Grupo is free text expected to mention cobre, zinco or sucata.
type Material struct {
	ID           uuid.UUID        `gorm:"type:uuid;primaryKey"`
	Nome         string           `gorm:"index;not null"`
	FornecedorID *uuid.UUID       `gorm:"type:uuid;index"`
	Grupo        string           `gorm:"not null;default:''"`
	Valor        *decimal.Decimal `gorm:"type:decimal(14,4)"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Material) TableName() string { return "materiais" }
