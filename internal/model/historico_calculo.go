package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TipoAdicionar = "adicionar"
	TipoSubtrair  = "subtrair"
)

// HistoricoCalculo records one stock distribution operation. Append-only.
type HistoricoCalculo struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Usuario    string          `gorm:"not null;default:''"`
	NF         string          `gorm:"column:nf;not null;default:''"`
	Produto    string          `gorm:"index;not null;default:''"`
	Quantidade decimal.Decimal `gorm:"type:decimal(14,3);not null"`
	Tipo       string          `gorm:"type:varchar(20);not null"` // adicionar | subtrair
	CreatedAt  time.Time       `gorm:"index"`
}

func (HistoricoCalculo) TableName() string { return "calculo_historico" }
