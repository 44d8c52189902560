package calculo

import (
	"strings"

	"mediocusto/internal/model"
	"mediocusto/internal/normalize"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Metal selects which derived quantity the resolver computes.
type Metal int

const (
	Cobre Metal = iota
	Zinco
	Sucata
)

// Metais lists every metal in the order the ledger stores them.
var Metais = [...]Metal{Cobre, Zinco, Sucata}

func (m Metal) String() string {
	switch m {
	case Cobre:
		return "cobre"
	case Zinco:
		return "zinco"
	case Sucata:
		return "sucata"
	}
	return "desconhecido"
}

// marcador is the substring a material group must contain to count for m.
// "zinc" also matches "zinco".
func (m Metal) marcador() string {
	switch m {
	case Cobre:
		return "cobr"
	case Zinco:
		return "zinc"
	default:
		return "sucata"
	}
}

// ResolucaoInput is the slice of an entry the resolver looks at.
type ResolucaoInput struct {
	Produto      string
	Fornecedor   string
	Materiais    [model.MaxMateriais]string
	PesoLiquido  *decimal.Decimal
	PesoIntegral *decimal.Decimal
}

// EntradaParaResolucao extracts the resolver input from an entry.
func EntradaParaResolucao(e *model.EntradaNF) ResolucaoInput {
	return ResolucaoInput{
		Produto:      e.Produto,
		Fornecedor:   e.Fornecedor,
		Materiais:    e.Materiais(),
		PesoLiquido:  e.PesoLiquido,
		PesoIntegral: e.PesoIntegral,
	}
}

// Resolucao is a resolved metal quantity. Slot is the 0-based material slot
// that matched and ValorMaterial the reference unit value used as divisor.
type Resolucao struct {
	Quantidade    decimal.Decimal
	Slot          int
	ValorMaterial decimal.Decimal
}

// Resolver computes the quantity of metal for an entry:
//
//	cobre/zinco: (liquido - integral) * fração / valor do material
//	sucata:      (liquido - integral) / valor do material
//
// The second return value is false when the quantity does not apply: no
// composition for the metal, no material of the right group with a usable
// value, a non-positive differential for scrap, or a negative result.
func (r *Referencias) Resolver(in ResolucaoInput, metal Metal) (Resolucao, bool) {
	fator := decimal.NewFromInt(1)
	if metal != Sucata {
		comp, ok := r.Composicao(in.Produto)
		if !ok {
			return Resolucao{}, false
		}
		f := comp.Cobre
		if metal == Zinco {
			f = comp.Zinco
		}
		if f == nil || f.IsZero() {
			return Resolucao{}, false
		}
		fator = *f
	}

	diff := normalize.OrZero(in.PesoLiquido).Sub(normalize.OrZero(in.PesoIntegral))
	if metal == Sucata && !diff.IsPositive() {
		return Resolucao{}, false
	}

	fornecedorID := r.fornecedorPtr(in.Fornecedor)
	marcador := metal.marcador()

	for slot, nome := range in.Materiais {
		if strings.TrimSpace(nome) == "" {
			continue
		}
		ref, ok := r.Material(nome, fornecedorID)
		if !ok || ref.Valor == nil || ref.Valor.IsZero() {
			continue
		}
		if !strings.Contains(ref.Grupo, marcador) {
			continue
		}

		qtd := diff.Mul(fator).Div(*ref.Valor).Round(3)
		if qtd.IsNegative() {
			return Resolucao{}, false
		}
		return Resolucao{Quantidade: qtd, Slot: slot, ValorMaterial: *ref.Valor}, true
	}
	return Resolucao{}, false
}

func (r *Referencias) fornecedorPtr(nome string) *uuid.UUID {
	id, ok := r.Fornecedor(nome)
	if !ok {
		return nil
	}
	return &id
}
