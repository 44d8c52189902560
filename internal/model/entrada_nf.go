package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxMateriais is the number of material slots an entry carries.
const MaxMateriais = 5

// EntradaNF is one inbound purchase-invoice line. It is data entry only; the
// costing engine reads it and writes its results to CalculoNF.
//
// Supplier, product and material names are free text matched by normalized
// name against the reference tables.
type EntradaNF struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Data       *time.Time `gorm:"type:date;index"`
	NF         string     `gorm:"column:nf;index"`
	Fornecedor string     `gorm:"not null;default:''"`
	Produto    string     `gorm:"index;not null;default:''"`

	Material1 string `gorm:"column:material_1;not null;default:''"`
	Material2 string `gorm:"column:material_2;not null;default:''"`
	Material3 string `gorm:"column:material_3;not null;default:''"`
	Material4 string `gorm:"column:material_4;not null;default:''"`
	Material5 string `gorm:"column:material_5;not null;default:''"`

	// PesoLiquido is the delivered (net) weight, PesoIntegral the contracted one.
	// IPI is a percentage (3.25 means 3.25%).
	PesoLiquido   *decimal.Decimal `gorm:"type:decimal(14,3)"`
	PesoIntegral  *decimal.Decimal `gorm:"type:decimal(14,3)"`
	ValorIntegral *decimal.Decimal `gorm:"type:decimal(14,4)"`
	IPI           *decimal.Decimal `gorm:"column:ipi;type:decimal(7,4)"`

	ValorUnitario1 *decimal.Decimal `gorm:"column:valor_unitario_1;type:decimal(14,4)"`
	ValorUnitario2 *decimal.Decimal `gorm:"column:valor_unitario_2;type:decimal(14,4)"`
	ValorUnitario3 *decimal.Decimal `gorm:"column:valor_unitario_3;type:decimal(14,4)"`
	ValorUnitario4 *decimal.Decimal `gorm:"column:valor_unitario_4;type:decimal(14,4)"`
	ValorUnitario5 *decimal.Decimal `gorm:"column:valor_unitario_5;type:decimal(14,4)"`

	// ValorMaoObraTM is labor per ton of metal.
	ValorMaoObraTM       *decimal.Decimal `gorm:"column:valor_mao_obra_tm_metallica;type:decimal(14,4)"`
	ValorUnitarioEnergia *decimal.Decimal `gorm:"type:decimal(14,4)"`

	Duplicata1   *decimal.Decimal `gorm:"column:duplicata_1;type:decimal(14,2)"`
	Duplicata2   *decimal.Decimal `gorm:"column:duplicata_2;type:decimal(14,2)"`
	Duplicata3   *decimal.Decimal `gorm:"column:duplicata_3;type:decimal(14,2)"`
	Duplicata4   *decimal.Decimal `gorm:"column:duplicata_4;type:decimal(14,2)"`
	Duplicata5   *decimal.Decimal `gorm:"column:duplicata_5;type:decimal(14,2)"`
	Duplicata6   *decimal.Decimal `gorm:"column:duplicata_6;type:decimal(14,2)"`
	CustoEmpresa *decimal.Decimal `gorm:"type:decimal(14,2)"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (EntradaNF) TableName() string { return "entrada_nf" }

// Materiais returns the material names in slot order (index 0 is material_1).
func (e *EntradaNF) Materiais() [MaxMateriais]string {
	return [MaxMateriais]string{e.Material1, e.Material2, e.Material3, e.Material4, e.Material5}
}

// ValoresUnitarios returns the per-slot unit values, aligned with Materiais.
func (e *EntradaNF) ValoresUnitarios() [MaxMateriais]*decimal.Decimal {
	return [MaxMateriais]*decimal.Decimal{e.ValorUnitario1, e.ValorUnitario2, e.ValorUnitario3, e.ValorUnitario4, e.ValorUnitario5}
}
