package calculo

import (
	"mediocusto/internal/model"

	"github.com/shopspring/decimal"
)

// Ledger columns a user may edit by hand.
const (
	CampoQuantidadeEstoque = "quantidade_estoque"
	CampoQtdCobre          = "qtd_cobre"
	CampoQtdZinco          = "qtd_zinco"
	CampoQtdSucata         = "qtd_sucata"
	CampoValorTotalNF      = "valor_total_nf"
	CampoMaoDeObra         = "mao_de_obra"
	CampoMateriaPrima      = "materia_prima"
	CampoCustoTotalManual  = "custo_total_manual"
	CampoCustoTotal        = "custo_total"
)

// CamposEditaveis is the whitelist of hand-editable ledger columns.
var CamposEditaveis = map[string]bool{
	CampoQuantidadeEstoque: true,
	CampoQtdCobre:          true,
	CampoQtdZinco:          true,
	CampoQtdSucata:         true,
	CampoValorTotalNF:      true,
	CampoMaoDeObra:         true,
	CampoMateriaPrima:      true,
	CampoCustoTotalManual:  true,
	CampoCustoTotal:        true,
}

// CamposDerivados are the columns the engine writes.
var CamposDerivados = []string{
	CampoQtdCobre, CampoQtdZinco, CampoQtdSucata,
	CampoValorTotalNF, CampoMateriaPrima, "materia_prima_unitario",
	CampoMaoDeObra, "mao_de_obra_unitario", CampoCustoTotal,
}

var metalCampo = map[Metal]string{
	Cobre:  CampoQtdCobre,
	Zinco:  CampoQtdZinco,
	Sucata: CampoQtdSucata,
}

// Modo selects the overwrite policy of Aplicar.
type Modo int

const (
	// PreencherLacunas only writes fields that are nil or zero. Used by listing.
	PreencherLacunas Modo = iota
	// Recalcular overwrites every derived field not pinned by the caller.
	Recalcular
)

// Aplicar computes the derived fields of c from its entry e and stores them
// in c according to modo. Fields in fixos are left as they are (Recalcular
// only); a manual cost > 0 still decides CustoTotal.
func (r *Referencias) Aplicar(e *model.EntradaNF, c *model.CalculoNF, modo Modo, fixos map[string]bool) {
	grava := func(campo string, dst **decimal.Decimal, v *decimal.Decimal) {
		switch modo {
		case Recalcular:
			if !fixos[campo] {
				*dst = v
			}
		default:
			if v != nil && lacuna(*dst) {
				*dst = v
			}
		}
	}

	in := EntradaParaResolucao(e)
	precos := e.ValoresUnitarios()
	parcelas := make([]Parcela, 0, len(Metais))
	for _, metal := range Metais {
		dst := qtdCampo(c, metal)
		res, ok := r.Resolver(in, metal)
		var preco *decimal.Decimal
		if ok {
			q := res.Quantidade
			grava(metalCampo[metal], dst, &q)
			preco = precos[res.Slot]
			if preco == nil {
				v := res.ValorMaterial
				preco = &v
			}
		} else {
			grava(metalCampo[metal], dst, nil)
		}
		parcelas = append(parcelas, Parcela{Quantidade: *dst, Preco: preco})
	}

	custo := CustoInput{
		PesoLiquido:          e.PesoLiquido,
		PesoIntegral:         e.PesoIntegral,
		ValorIntegral:        e.ValorIntegral,
		IPI:                  e.IPI,
		ValorMaoObraTM:       e.ValorMaoObraTM,
		ValorUnitarioEnergia: e.ValorUnitarioEnergia,
		CustoTotalManual:     c.CustoTotalManual,
		Parcelas:             parcelas,
	}
	mantido := func(campo string, v *decimal.Decimal) *decimal.Decimal {
		if modo == Recalcular {
			if fixos[campo] {
				return v
			}
			return nil
		}
		if lacuna(v) {
			return nil
		}
		return v
	}
	custo.Fixados = Fixados{
		ValorTotalNF: mantido(CampoValorTotalNF, c.ValorTotalNF),
		MateriaPrima: mantido(CampoMateriaPrima, c.MateriaPrima),
		MaoDeObra:    mantido(CampoMaoDeObra, c.MaoDeObra),
	}

	res := Calcular(custo)
	grava(CampoValorTotalNF, &c.ValorTotalNF, ptr(res.ValorTotalNF))
	grava(CampoMateriaPrima, &c.MateriaPrima, ptr(res.MateriaPrima))
	grava("materia_prima_unitario", &c.MateriaPrimaUnitario, ptr(res.MateriaPrimaUnitario))
	grava(CampoMaoDeObra, &c.MaoDeObra, ptr(res.MaoDeObra))
	grava("mao_de_obra_unitario", &c.MaoDeObraUnitario, ptr(res.MaoDeObraUnitario))

	if modo == Recalcular && c.CustoTotalManual != nil && c.CustoTotalManual.IsPositive() {
		c.CustoTotal = ptr(res.CustoTotal)
		return
	}
	grava(CampoCustoTotal, &c.CustoTotal, ptr(res.CustoTotal))
}

func qtdCampo(c *model.CalculoNF, m Metal) **decimal.Decimal {
	switch m {
	case Cobre:
		return &c.QtdCobre
	case Zinco:
		return &c.QtdZinco
	default:
		return &c.QtdSucata
	}
}

// lacuna reports whether a derived field still needs a value.
func lacuna(d *decimal.Decimal) bool {
	return d == nil || d.IsZero()
}

func ptr(d decimal.Decimal) *decimal.Decimal { return &d }
