package repository

import (
	"context"

	"mediocusto/internal/model"

	"gorm.io/gorm"
)

// HistoricoFilter defines filters for listing distribution history.
type HistoricoFilter struct {
	Produto string
	Tipo    string
	Page    int
	Limit   int
}

type HistoricoRepository interface {
	Create(ctx context.Context, h *model.HistoricoCalculo) error
	List(ctx context.Context, filter HistoricoFilter) ([]model.HistoricoCalculo, int64, error)
}

type historicoRepo struct{ db *gorm.DB }

func NewHistoricoRepository(db *gorm.DB) HistoricoRepository {
	return &historicoRepo{db: db}
}

func (r *historicoRepo) Create(ctx context.Context, h *model.HistoricoCalculo) error {
	return r.db.WithContext(ctx).Create(h).Error
}

// List returns history newest-first (append-only table).
func (r *historicoRepo) List(ctx context.Context, filter HistoricoFilter) ([]model.HistoricoCalculo, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.HistoricoCalculo{})
	if filter.Produto != "" {
		q = q.Where("produto = ?", filter.Produto)
	}
	if filter.Tipo != "" {
		q = q.Where("tipo = ?", filter.Tipo)
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
		limit = 50
	}
	offset := (page - 1) * limit

	var rows []model.HistoricoCalculo
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&rows).Error
	return rows, total, err
}
