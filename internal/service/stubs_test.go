package service

import (
	"context"
	"errors"
	"strings"

	"mediocusto/internal/model"
	"mediocusto/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── In-memory Repository Stubs ────────────────────────────────────────────────

type stubCalculoRepo struct {
	linhas map[uuid.UUID]*model.CalculoNF // by entrada_id
	ordem  []uuid.UUID                    // oldest entry first

	falhaUpsert map[uuid.UUID]bool
	upserts     int
}

var _ repository.CalculoRepository = (*stubCalculoRepo)(nil)

func newStubCalculoRepo() *stubCalculoRepo {
	return &stubCalculoRepo{linhas: map[uuid.UUID]*model.CalculoNF{}, falhaUpsert: map[uuid.UUID]bool{}}
}

// addEntrada registers an entry and its (not yet reconciled) ledger row.
func (r *stubCalculoRepo) addEntrada(e *model.EntradaNF) *model.CalculoNF {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	c := &model.CalculoNF{ID: uuid.New(), EntradaID: e.ID, Entrada: e}
	r.linhas[e.ID] = c
	r.ordem = append(r.ordem, e.ID)
	return c
}

func (r *stubCalculoRepo) ReconcileTx(*gorm.DB) (int64, error) {
	var n int64
	for _, c := range r.linhas {
		if c.Entrada != nil && c.Entrada.PesoLiquido != nil && c.QuantidadeEstoque == nil {
			v := *c.Entrada.PesoLiquido
			c.QuantidadeEstoque = &v
			n++
		}
	}
	return n, nil
}

func (r *stubCalculoRepo) ListTx(_ *gorm.DB, filter repository.CalculoFilter) ([]model.CalculoNF, error) {
	var out []model.CalculoNF
	for i := len(r.ordem) - 1; i >= 0; i-- {
		c := r.linhas[r.ordem[i]]
		if filter.Produto != "" && (c.Entrada == nil ||
			!strings.Contains(strings.ToLower(c.Entrada.Produto), strings.ToLower(filter.Produto))) {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (r *stubCalculoRepo) FindByEntradaTx(_ *gorm.DB, entradaID uuid.UUID, _ bool) (*model.CalculoNF, error) {
	c, ok := r.linhas[entradaID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *stubCalculoRepo) LockTx(_ *gorm.DB, entradaIDs []uuid.UUID, newestFirst bool) ([]model.CalculoNF, error) {
	want := map[uuid.UUID]bool{}
	for _, id := range entradaIDs {
		want[id] = true
	}
	var out []model.CalculoNF
	for _, id := range r.ordem {
		if want[id] {
			out = append(out, *r.linhas[id])
		}
	}
	if newestFirst {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out, nil
}

func (r *stubCalculoRepo) UpsertTx(_ *gorm.DB, c *model.CalculoNF, preserve bool) error {
	if r.falhaUpsert[c.EntradaID] {
		return errors.New("violação de restrição")
	}
	r.upserts++
	atual, ok := r.linhas[c.EntradaID]
	if !ok {
		cp := *c
		r.linhas[c.EntradaID] = &cp
		r.ordem = append(r.ordem, c.EntradaID)
		return nil
	}
	merge := func(dst **decimal.Decimal, v *decimal.Decimal) {
		if !preserve || *dst == nil || (*dst).IsZero() {
			*dst = v
		}
	}
	merge(&atual.QtdCobre, c.QtdCobre)
	merge(&atual.QtdZinco, c.QtdZinco)
	merge(&atual.QtdSucata, c.QtdSucata)
	merge(&atual.ValorTotalNF, c.ValorTotalNF)
	merge(&atual.MateriaPrima, c.MateriaPrima)
	merge(&atual.MateriaPrimaUnitario, c.MateriaPrimaUnitario)
	merge(&atual.MaoDeObra, c.MaoDeObra)
	merge(&atual.MaoDeObraUnitario, c.MaoDeObraUnitario)
	merge(&atual.CustoTotal, c.CustoTotal)
	if !preserve {
		atual.QuantidadeEstoque = c.QuantidadeEstoque
		atual.CustoTotalManual = c.CustoTotalManual
	}
	return nil
}

func (r *stubCalculoRepo) UpdateEstoqueTx(_ *gorm.DB, entradaID uuid.UUID, q decimal.Decimal) error {
	c, ok := r.linhas[entradaID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.QuantidadeEstoque = &q
	return nil
}

func (r *stubCalculoRepo) SetCustoManualTx(_ *gorm.DB, entradaIDs []uuid.UUID, valor *decimal.Decimal) (int64, error) {
	var n int64
	for _, id := range entradaIDs {
		if c, ok := r.linhas[id]; ok {
			c.CustoTotalManual = valor
			n++
		}
	}
	return n, nil
}

func (r *stubCalculoRepo) DB() *gorm.DB { return nil }

type stubReferenciaRepo struct {
	produtos     []model.Produto
	fornecedores []model.Fornecedor
	materiais    []model.Material
	err          error
}

var _ repository.ReferenciaRepository = (*stubReferenciaRepo)(nil)

func (r *stubReferenciaRepo) ListProdutos(context.Context) ([]model.Produto, error) {
	return r.produtos, r.err
}

func (r *stubReferenciaRepo) ListFornecedores(context.Context) ([]model.Fornecedor, error) {
	return r.fornecedores, r.err
}

func (r *stubReferenciaRepo) ListMateriais(context.Context) ([]model.Material, error) {
	return r.materiais, r.err
}

type stubHistoricoRepo struct {
	rows []model.HistoricoCalculo
	err  error
}

var _ repository.HistoricoRepository = (*stubHistoricoRepo)(nil)

func (r *stubHistoricoRepo) Create(_ context.Context, h *model.HistoricoCalculo) error {
	if r.err != nil {
		return r.err
	}
	r.rows = append(r.rows, *h)
	return nil
}

func (r *stubHistoricoRepo) List(_ context.Context, _ repository.HistoricoFilter) ([]model.HistoricoCalculo, int64, error) {
	return r.rows, int64(len(r.rows)), r.err
}

type stubNotifier struct{ chamadas int }

func (n *stubNotifier) NotificarHistorico(context.Context) error {
	n.chamadas++
	return nil
}

type stubEntradaRepo struct {
	entradas map[uuid.UUID]*model.EntradaNF
	criadas  []model.EntradaNF
	filtro   repository.EntradaFilter
	err      error
}

var _ repository.EntradaRepository = (*stubEntradaRepo)(nil)

func newStubEntradaRepo() *stubEntradaRepo {
	return &stubEntradaRepo{entradas: map[uuid.UUID]*model.EntradaNF{}}
}

func (r *stubEntradaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.EntradaNF, error) {
	e, ok := r.entradas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return e, nil
}

func (r *stubEntradaRepo) UpdateCampos(_ context.Context, id uuid.UUID, campos map[string]interface{}) error {
	e, ok := r.entradas[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for col, v := range campos {
		camposEntrada[col].set(e, v)
	}
	return nil
}

func (r *stubEntradaRepo) CreateBatchTx(_ *gorm.DB, entradas []model.EntradaNF) error {
	r.criadas = append(r.criadas, entradas...)
	return nil
}

func (r *stubEntradaRepo) List(_ context.Context, filter repository.EntradaFilter) ([]model.EntradaNF, int64, error) {
	r.filtro = filter
	if r.err != nil {
		return nil, 0, r.err
	}
	out := make([]model.EntradaNF, 0, len(r.entradas))
	for _, e := range r.entradas {
		out = append(out, *e)
	}
	return out, int64(len(out)), nil
}

func (r *stubEntradaRepo) Create(_ context.Context, e *model.EntradaNF) error {
	if r.err != nil {
		return r.err
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	r.entradas[e.ID] = e
	return nil
}

func (r *stubEntradaRepo) DeleteTx(_ *gorm.DB, ids []uuid.UUID) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	var n int64
	for _, id := range ids {
		if _, ok := r.entradas[id]; ok {
			delete(r.entradas, id)
			n++
		}
	}
	return n, nil
}

func (r *stubEntradaRepo) DB() *gorm.DB { return nil }
