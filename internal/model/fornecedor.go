package model

import (
	"time"

	"github.com/google/uuid"
)

// Fornecedor represents a supplier. Entries reference it by name, not by id.
type Fornecedor struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Nome      string    `gorm:"index;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Fornecedor) TableName() string { return "fornecedores" }
