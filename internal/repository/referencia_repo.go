package repository

import (
	"context"

	"mediocusto/internal/model"

	"gorm.io/gorm"
)

// ReferenciaRepository reads the static reference tables the costing engine
// caches once per pass. Rows come back in a stable order so that "first
// match wins" rules are reproducible.
type ReferenciaRepository interface {
	ListProdutos(ctx context.Context) ([]model.Produto, error)
	ListFornecedores(ctx context.Context) ([]model.Fornecedor, error)
	ListMateriais(ctx context.Context) ([]model.Material, error)
}

type referenciaRepo struct{ db *gorm.DB }

func NewReferenciaRepository(db *gorm.DB) ReferenciaRepository {
	return &referenciaRepo{db: db}
}

const ordemEstavel = "nome ASC, created_at ASC, id ASC"

func (r *referenciaRepo) ListProdutos(ctx context.Context) ([]model.Produto, error) {
	var produtos []model.Produto
	err := r.db.WithContext(ctx).Order(ordemEstavel).Find(&produtos).Error
	return produtos, err
}

func (r *referenciaRepo) ListFornecedores(ctx context.Context) ([]model.Fornecedor, error) {
	var fornecedores []model.Fornecedor
	err := r.db.WithContext(ctx).Order(ordemEstavel).Find(&fornecedores).Error
	return fornecedores, err
}

func (r *referenciaRepo) ListMateriais(ctx context.Context) ([]model.Material, error) {
	var materiais []model.Material
	err := r.db.WithContext(ctx).Order(ordemEstavel).Find(&materiais).Error
	return materiais, err
}
