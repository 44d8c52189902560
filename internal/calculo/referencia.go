// Package calculo holds the costing engine: the per-pass reference cache,
// metal quantity resolution, the cost cascade and stock distribution
// planning. Everything here is pure; persistence lives in the service and
// repository layers.
package calculo

import (
	"context"
	"sort"
	"strings"

	"mediocusto/internal/model"
	"mediocusto/internal/normalize"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var cem = decimal.NewFromInt(100)

// Composicao holds a product's metal content as fractions (0–1).
type Composicao struct {
	Cobre *decimal.Decimal
	Zinco *decimal.Decimal
}

// MaterialRef is the reference data of one material: lowercase group tag and
// unit value.
type MaterialRef struct {
	Grupo string
	Valor *decimal.Decimal
}

type chaveMaterial struct {
	nome         string
	fornecedorID uuid.UUID
}

// ReferenciaLoader reads the three reference tables.
type ReferenciaLoader interface {
	ListProdutos(ctx context.Context) ([]model.Produto, error)
	ListFornecedores(ctx context.Context) ([]model.Fornecedor, error)
	ListMateriais(ctx context.Context) ([]model.Material, error)
}

// Referencias is the in-memory reference cache built once per listing or
// recompute pass. All keys are normalize.Name keys.
type Referencias struct {
	produtos      map[string]Composicao
	produtoChaves []string

	fornecedores map[string]uuid.UUID

	materiaisPorFornecedor map[chaveMaterial]MaterialRef
	materiaisFallback      map[string]MaterialRef
	materialChaves         []string
}

// NovaReferencias loads the reference tables through loader. A table that
// fails to load is logged and left empty; the pass continues without it.
func NovaReferencias(ctx context.Context, loader ReferenciaLoader) *Referencias {
	r := &Referencias{
		produtos:               map[string]Composicao{},
		fornecedores:           map[string]uuid.UUID{},
		materiaisPorFornecedor: map[chaveMaterial]MaterialRef{},
		materiaisFallback:      map[string]MaterialRef{},
	}

	if produtos, err := loader.ListProdutos(ctx); err != nil {
		log.Warn().Err(err).Msg("calculo: produtos indisponíveis, seguindo sem composição")
	} else {
		r.addProdutos(produtos)
	}

	if fornecedores, err := loader.ListFornecedores(ctx); err != nil {
		log.Warn().Err(err).Msg("calculo: fornecedores indisponíveis")
	} else {
		for _, f := range fornecedores {
			key := normalize.Name(f.Nome)
			if key == "" {
				continue
			}
			if _, ok := r.fornecedores[key]; !ok {
				r.fornecedores[key] = f.ID
			}
		}
	}

	if materiais, err := loader.ListMateriais(ctx); err != nil {
		log.Warn().Err(err).Msg("calculo: materiais indisponíveis")
	} else {
		r.addMateriais(materiais)
	}

	return r
}

func (r *Referencias) addProdutos(produtos []model.Produto) {
	for _, p := range produtos {
		key := normalize.Name(p.Nome)
		if key == "" {
			continue
		}
		if _, ok := r.produtos[key]; ok {
			continue
		}
		r.produtos[key] = Composicao{
			Cobre: fracao(p.PercentualCobre),
			Zinco: fracao(p.PercentualZinco),
		}
		r.produtoChaves = append(r.produtoChaves, key)
	}
	sort.Strings(r.produtoChaves)
}

// addMateriais expects rows in a stable order; the first material seen for a
// name becomes its supplier-less fallback.
func (r *Referencias) addMateriais(materiais []model.Material) {
	for _, m := range materiais {
		key := normalize.Name(m.Nome)
		if key == "" {
			continue
		}
		ref := MaterialRef{Grupo: strings.ToLower(m.Grupo), Valor: m.Valor}
		if m.FornecedorID != nil {
			k := chaveMaterial{nome: key, fornecedorID: *m.FornecedorID}
			if _, ok := r.materiaisPorFornecedor[k]; !ok {
				r.materiaisPorFornecedor[k] = ref
			}
		}
		if _, ok := r.materiaisFallback[key]; !ok {
			r.materiaisFallback[key] = ref
			r.materialChaves = append(r.materialChaves, key)
		}
	}
	sort.Strings(r.materialChaves)
}

// Composicao returns the composition of a product by name, exact first and
// then by fuzzy containment.
func (r *Referencias) Composicao(produto string) (Composicao, bool) {
	key := normalize.Name(produto)
	if c, ok := r.produtos[key]; ok {
		return c, true
	}
	if k, ok := aproximar(key, r.produtoChaves); ok {
		return r.produtos[k], true
	}
	return Composicao{}, false
}

// Fornecedor resolves a supplier id by exact normalized name.
func (r *Referencias) Fornecedor(nome string) (uuid.UUID, bool) {
	id, ok := r.fornecedores[normalize.Name(nome)]
	return id, ok
}

// Material looks a material up for a supplier: (name, supplier) first, then
// the supplier-less fallback, then fuzzy containment over fallback names.
func (r *Referencias) Material(nome string, fornecedorID *uuid.UUID) (MaterialRef, bool) {
	key := normalize.Name(nome)
	if key == "" {
		return MaterialRef{}, false
	}
	if fornecedorID != nil {
		if m, ok := r.materiaisPorFornecedor[chaveMaterial{nome: key, fornecedorID: *fornecedorID}]; ok {
			return m, true
		}
	}
	if m, ok := r.materiaisFallback[key]; ok {
		return m, true
	}
	if k, ok := aproximar(key, r.materialChaves); ok {
		return r.materiaisFallback[k], true
	}
	return MaterialRef{}, false
}

// aproximar picks, among sorted keys that contain key or are contained in it,
// the one with the longest common prefix, then the closest length, then the
// lexicographically smallest.
func aproximar(key string, chaves []string) (string, bool) {
	if key == "" {
		return "", false
	}
	var (
		melhor     string
		achou      bool
		melhorPref int
		melhorDif  int
	)
	for _, k := range chaves {
		if k == "" || !(strings.Contains(k, key) || strings.Contains(key, k)) {
			continue
		}
		pref := prefixoComum(k, key)
		dif := len(k) - len(key)
		if dif < 0 {
			dif = -dif
		}
		if !achou || pref > melhorPref || (pref == melhorPref && dif < melhorDif) {
			melhor, melhorPref, melhorDif, achou = k, pref, dif, true
		}
	}
	return melhor, achou
}

func prefixoComum(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}

func fracao(pct *decimal.Decimal) *decimal.Decimal {
	if pct == nil {
		return nil
	}
	f := pct.Div(cem)
	return &f
}
