package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CalculoNF is the costing ledger row of one EntradaNF (1:1 by EntradaID).
// All derived fields are nullable: nil means "never computed".
type CalculoNF struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	EntradaID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`

	// QuantidadeEstoque is seeded from the entry's net weight and afterwards
	// only moved by distribution or a bounded hand edit.
	QuantidadeEstoque *decimal.Decimal `gorm:"type:decimal(14,3)"`

	QtdCobre             *decimal.Decimal `gorm:"column:qtd_cobre;type:decimal(14,3)"`
	QtdZinco             *decimal.Decimal `gorm:"column:qtd_zinco;type:decimal(14,3)"`
	QtdSucata            *decimal.Decimal `gorm:"column:qtd_sucata;type:decimal(14,3)"`
	ValorTotalNF         *decimal.Decimal `gorm:"column:valor_total_nf;type:decimal(14,2)"`
	MateriaPrima         *decimal.Decimal `gorm:"column:materia_prima;type:decimal(14,2)"`
	MateriaPrimaUnitario *decimal.Decimal `gorm:"column:materia_prima_unitario;type:decimal(14,2)"`
	MaoDeObra            *decimal.Decimal `gorm:"column:mao_de_obra;type:decimal(14,2)"`
	MaoDeObraUnitario    *decimal.Decimal `gorm:"column:mao_de_obra_unitario;type:decimal(14,2)"`
	CustoTotal           *decimal.Decimal `gorm:"column:custo_total;type:decimal(14,2)"`

	// CustoTotalManual, when > 0, takes precedence over CustoTotal.
	CustoTotalManual *decimal.Decimal `gorm:"column:custo_total_manual;type:decimal(14,2)"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Entrada *EntradaNF `gorm:"foreignKey:EntradaID;constraint:OnDelete:CASCADE"`
}

func (CalculoNF) TableName() string { return "calculo_nfs" }
