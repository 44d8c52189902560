package repository

import (
	"context"
	"strings"

	"mediocusto/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EntradaFilter narrows and paginates an entry listing.
type EntradaFilter struct {
	Produto string
	Page    int
	Limit   int
}

// EntradaRepository is the data access contract for inbound invoice entries.
type EntradaRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.EntradaNF, error)
	List(ctx context.Context, filter EntradaFilter) ([]model.EntradaNF, int64, error)
	Create(ctx context.Context, e *model.EntradaNF) error
	// UpdateCampos writes column → value pairs; callers whitelist the columns.
	UpdateCampos(ctx context.Context, id uuid.UUID, campos map[string]interface{}) error
	CreateBatchTx(tx *gorm.DB, entradas []model.EntradaNF) error
	// DeleteTx removes entries by id. Their ledger rows go with them through
	// the ON DELETE CASCADE foreign key.
	DeleteTx(tx *gorm.DB, ids []uuid.UUID) (int64, error)

	DB() *gorm.DB
}

type entradaRepo struct{ db *gorm.DB }

func NewEntradaRepository(db *gorm.DB) EntradaRepository { return &entradaRepo{db: db} }

func (r *entradaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.EntradaNF, error) {
	var e model.EntradaNF
	err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error
	return &e, err
}

// List returns entries newest-first; undated entries come last.
func (r *entradaRepo) List(ctx context.Context, filter EntradaFilter) ([]model.EntradaNF, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.EntradaNF{})
	if p := strings.TrimSpace(filter.Produto); p != "" {
		q = q.Where("LOWER(produto) LIKE ?", "%"+strings.ToLower(p)+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	limit := filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 10
	}
	offset := (page - 1) * limit

	var entradas []model.EntradaNF
	err := q.Order("data DESC NULLS LAST, nf DESC, created_at DESC, id DESC").
		Offset(offset).Limit(limit).Find(&entradas).Error
	return entradas, total, err
}

func (r *entradaRepo) Create(ctx context.Context, e *model.EntradaNF) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *entradaRepo) UpdateCampos(ctx context.Context, id uuid.UUID, campos map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&model.EntradaNF{}).Where("id = ?", id).Updates(campos)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *entradaRepo) CreateBatchTx(tx *gorm.DB, entradas []model.EntradaNF) error {
	if len(entradas) == 0 {
		return nil
	}
	return tx.CreateInBatches(&entradas, 100).Error
}

func (r *entradaRepo) DeleteTx(tx *gorm.DB, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := tx.Where("id IN ?", ids).Delete(&model.EntradaNF{})
	return res.RowsAffected, res.Error
}

func (r *entradaRepo) DB() *gorm.DB { return r.db }
