package repository

import (
	"fmt"
	"strings"

	"mediocusto/internal/calculo"
	"mediocusto/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CalculoFilter narrows a ledger listing.
type CalculoFilter struct {
	// Produto is a case-insensitive substring of the entry's product name.
	Produto string
}

// CalculoRepository is the data access contract for the costing ledger.
// Every method runs on the transaction the caller passes in.
type CalculoRepository interface {
	// ReconcileTx makes sure every entry with a net weight has a ledger row,
	// seeding quantidade_estoque only where it is still NULL.
	ReconcileTx(tx *gorm.DB) (int64, error)

	ListTx(tx *gorm.DB, filter CalculoFilter) ([]model.CalculoNF, error)
	FindByEntradaTx(tx *gorm.DB, entradaID uuid.UUID, lock bool) (*model.CalculoNF, error)

	// LockTx loads and row-locks the ledger rows of the given entries, ordered
	// by entry date (oldest first unless newestFirst). Undated entries come
	// last either way.
	LockTx(tx *gorm.DB, entradaIDs []uuid.UUID, newestFirst bool) ([]model.CalculoNF, error)

	// UpsertTx writes the derived columns of c. With preserve set, columns that
	// already hold a non-null, non-zero value are kept.
	UpsertTx(tx *gorm.DB, c *model.CalculoNF, preserve bool) error

	UpdateEstoqueTx(tx *gorm.DB, entradaID uuid.UUID, quantidade decimal.Decimal) error
	SetCustoManualTx(tx *gorm.DB, entradaIDs []uuid.UUID, valor *decimal.Decimal) (int64, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type calculoRepo struct{ db *gorm.DB }

func NewCalculoRepository(db *gorm.DB) CalculoRepository { return &calculoRepo{db: db} }

const joinEntrada = "JOIN entrada_nf ON entrada_nf.id = calculo_nfs.entrada_id"

var conflitoEntrada = []clause.Column{{Name: "entrada_id"}}

func (r *calculoRepo) ReconcileTx(tx *gorm.DB) (int64, error) {
	var entradas []model.EntradaNF
	if err := tx.Model(&model.EntradaNF{}).
		Select("id", "peso_liquido").
		Where("peso_liquido IS NOT NULL").
		Find(&entradas).Error; err != nil {
		return 0, err
	}
	if len(entradas) == 0 {
		return 0, nil
	}

	linhas := make([]model.CalculoNF, 0, len(entradas))
	for _, e := range entradas {
		linhas = append(linhas, model.CalculoNF{EntradaID: e.ID, QuantidadeEstoque: e.PesoLiquido})
	}

	res := tx.Clauses(clause.OnConflict{
		Columns: conflitoEntrada,
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantidade_estoque": gorm.Expr("COALESCE(calculo_nfs.quantidade_estoque, excluded.quantidade_estoque)"),
		}),
	}).CreateInBatches(&linhas, 200)
	return res.RowsAffected, res.Error
}

func (r *calculoRepo) ListTx(tx *gorm.DB, filter CalculoFilter) ([]model.CalculoNF, error) {
	q := tx.Model(&model.CalculoNF{}).Joins(joinEntrada).Preload("Entrada")
	if p := strings.TrimSpace(filter.Produto); p != "" {
		q = q.Where("LOWER(entrada_nf.produto) LIKE ?", "%"+strings.ToLower(p)+"%")
	}

	var linhas []model.CalculoNF
	err := q.Order("entrada_nf.data DESC NULLS LAST, entrada_nf.created_at DESC, calculo_nfs.id DESC").
		Find(&linhas).Error
	return linhas, err
}

func (r *calculoRepo) FindByEntradaTx(tx *gorm.DB, entradaID uuid.UUID, lock bool) (*model.CalculoNF, error) {
	q := tx.Preload("Entrada")
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var c model.CalculoNF
	err := q.Where("entrada_id = ?", entradaID).First(&c).Error
	return &c, err
}

func (r *calculoRepo) LockTx(tx *gorm.DB, entradaIDs []uuid.UUID, newestFirst bool) ([]model.CalculoNF, error) {
	if len(entradaIDs) == 0 {
		return nil, nil
	}
	dir := "ASC"
	if newestFirst {
		dir = "DESC"
	}

	var linhas []model.CalculoNF
	err := tx.Model(&model.CalculoNF{}).
		Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: model.CalculoNF{}.TableName()}}).
		Joins(joinEntrada).
		Where("calculo_nfs.entrada_id IN ?", entradaIDs).
		Order(fmt.Sprintf("entrada_nf.data %[1]s NULLS LAST, entrada_nf.created_at %[1]s, calculo_nfs.id %[1]s", dir)).
		Preload("Entrada").
		Find(&linhas).Error
	return linhas, err
}

func (r *calculoRepo) UpsertTx(tx *gorm.DB, c *model.CalculoNF, preserve bool) error {
	cols := calculo.CamposDerivados
	if !preserve {
		cols = append(append([]string{}, cols...), calculo.CampoQuantidadeEstoque, calculo.CampoCustoTotalManual)
	}

	set := make(map[string]interface{}, len(cols)+1)
	for _, col := range cols {
		if preserve {
			set[col] = gorm.Expr(fmt.Sprintf("COALESCE(NULLIF(calculo_nfs.%[1]s, 0), excluded.%[1]s)", col))
		} else {
			set[col] = gorm.Expr("excluded." + col)
		}
	}
	set["updated_at"] = gorm.Expr("excluded.updated_at")

	// fresh id so only the entrada_id constraint can conflict
	linha := *c
	linha.ID = uuid.Nil
	linha.Entrada = nil
	return tx.Clauses(clause.OnConflict{
		Columns:   conflitoEntrada,
		DoUpdates: clause.Assignments(set),
	}).Create(&linha).Error
}

func (r *calculoRepo) UpdateEstoqueTx(tx *gorm.DB, entradaID uuid.UUID, quantidade decimal.Decimal) error {
	return tx.Model(&model.CalculoNF{}).
		Where("entrada_id = ?", entradaID).
		Update("quantidade_estoque", quantidade).Error
}

func (r *calculoRepo) SetCustoManualTx(tx *gorm.DB, entradaIDs []uuid.UUID, valor *decimal.Decimal) (int64, error) {
	res := tx.Model(&model.CalculoNF{}).
		Where("entrada_id IN ?", entradaIDs).
		Update("custo_total_manual", valor)
	return res.RowsAffected, res.Error
}

func (r *calculoRepo) DB() *gorm.DB { return r.db }
