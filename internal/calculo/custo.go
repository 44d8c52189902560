package calculo

import (
	"mediocusto/internal/normalize"

	"github.com/shopspring/decimal"
)

// Parcela is one metal's contribution to the raw-material cost.
type Parcela struct {
	Quantidade *decimal.Decimal
	Preco      *decimal.Decimal
}

// Fixados carries totals a user pinned by hand. A non-nil value replaces the
// computed one before the final cost is derived from it.
type Fixados struct {
	ValorTotalNF *decimal.Decimal
	MateriaPrima *decimal.Decimal
	MaoDeObra    *decimal.Decimal
}

// CustoInput holds every input of the cost cascade. nil counts as zero.
type CustoInput struct {
	PesoLiquido          *decimal.Decimal
	PesoIntegral         *decimal.Decimal
	ValorIntegral        *decimal.Decimal
	IPI                  *decimal.Decimal // percent
	ValorMaoObraTM       *decimal.Decimal
	ValorUnitarioEnergia *decimal.Decimal
	CustoTotalManual     *decimal.Decimal

	Parcelas []Parcela
	Fixados  Fixados
}

// CustoResultado is the cost cascade output, rounded to cents.
type CustoResultado struct {
	ValorTotalNF         decimal.Decimal
	MateriaPrima         decimal.Decimal
	MateriaPrimaUnitario decimal.Decimal
	MaoDeObra            decimal.Decimal
	MaoDeObraUnitario    decimal.Decimal
	CustoTotal           decimal.Decimal
}

// Calcular runs the cost cascade for one ledger row.
//
// CustoTotal precedence: a manual cost > 0; else, without an integral unit
// value, MateriaPrima + MaoDeObra; else ValorTotalNF per unit of net weight;
// else zero.
func Calcular(in CustoInput) CustoResultado {
	liquido := normalize.OrZero(in.PesoLiquido)
	integral := normalize.OrZero(in.PesoIntegral)
	valorIntegral := normalize.OrZero(in.ValorIntegral)
	ipi := normalize.OrZero(in.IPI)
	manual := normalize.OrZero(in.CustoTotalManual)

	diff := liquido.Sub(integral)
	if diff.IsNegative() {
		diff = decimal.Zero
	}

	materiaPrima := decimal.Zero
	for _, p := range in.Parcelas {
		materiaPrima = materiaPrima.Add(normalize.OrZero(p.Quantidade).Mul(normalize.OrZero(p.Preco)))
	}
	maoDeObra := diff.Mul(normalize.OrZero(in.ValorMaoObraTM).Add(normalize.OrZero(in.ValorUnitarioEnergia)))

	if in.Fixados.MateriaPrima != nil {
		materiaPrima = *in.Fixados.MateriaPrima
	}
	if in.Fixados.MaoDeObra != nil {
		maoDeObra = *in.Fixados.MaoDeObra
	}

	valorTotal := integral.Mul(valorIntegral).
		Mul(decimal.NewFromInt(1).Add(ipi.Div(cem))).
		Add(materiaPrima).
		Add(maoDeObra)
	if in.Fixados.ValorTotalNF != nil {
		valorTotal = *in.Fixados.ValorTotalNF
	}

	maoDeObraUnit := maoDeObra
	if diff.IsPositive() {
		maoDeObraUnit = maoDeObra.Div(diff)
	}

	var custoTotal decimal.Decimal
	switch {
	case manual.IsPositive():
		custoTotal = manual
	case valorIntegral.IsZero():
		custoTotal = materiaPrima.Add(maoDeObra)
	case !liquido.IsZero():
		custoTotal = valorTotal.Div(liquido)
	default:
		custoTotal = decimal.Zero
	}

	res := CustoResultado{
		ValorTotalNF:      valorTotal.Round(2),
		MateriaPrima:      materiaPrima.Round(2),
		MaoDeObra:         maoDeObra.Round(2),
		MaoDeObraUnitario: maoDeObraUnit.Round(2),
		CustoTotal:        custoTotal.Round(2),
	}
	switch {
	case !valorIntegral.IsZero():
		res.MateriaPrimaUnitario = res.CustoTotal.Sub(res.MaoDeObraUnitario)
	case !liquido.IsZero():
		res.MateriaPrimaUnitario = materiaPrima.Div(liquido).Round(2)
	}
	return res
}
