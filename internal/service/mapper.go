package service

import (
	"time"

	"mediocusto/internal/dto"
	"mediocusto/internal/model"

	"github.com/shopspring/decimal"
)

const formatoData = "02/01/2006"

func formatarData(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(formatoData)
	return &s
}

func linhaToResponse(c *model.CalculoNF) dto.LinhaCalculoResponse {
	resp := dto.LinhaCalculoResponse{
		ID:                   c.ID.String(),
		EntradaID:            c.EntradaID.String(),
		QuantidadeEstoque:    c.QuantidadeEstoque,
		QtdCobre:             c.QtdCobre,
		QtdZinco:             c.QtdZinco,
		QtdSucata:            c.QtdSucata,
		ValorTotalNF:         c.ValorTotalNF,
		MateriaPrima:         c.MateriaPrima,
		MateriaPrimaUnitario: c.MateriaPrimaUnitario,
		MaoDeObra:            c.MaoDeObra,
		MaoDeObraUnitario:    c.MaoDeObraUnitario,
		CustoTotalManual:     c.CustoTotalManual,
		CustoTotal:           c.CustoTotal,
	}
	if e := c.Entrada; e != nil {
		resp.Data = formatarData(e.Data)
		resp.NF = e.NF
		resp.Fornecedor = e.Fornecedor
		resp.Produto = e.Produto
		resp.PesoLiquido = e.PesoLiquido
	}
	return resp
}

func linhasToResponse(linhas []model.CalculoNF) []dto.LinhaCalculoResponse {
	out := make([]dto.LinhaCalculoResponse, 0, len(linhas))
	for i := range linhas {
		out = append(out, linhaToResponse(&linhas[i]))
	}
	return out
}

func entradaToResponse(e *model.EntradaNF) *dto.EntradaResponse {
	resp := &dto.EntradaResponse{
		ID:                   e.ID.String(),
		Data:                 formatarData(e.Data),
		NF:                   e.NF,
		Fornecedor:           e.Fornecedor,
		Produto:              e.Produto,
		Materiais:            []dto.MaterialEntrada{},
		PesoLiquido:          e.PesoLiquido,
		PesoIntegral:         e.PesoIntegral,
		ValorIntegral:        e.ValorIntegral,
		IPI:                  e.IPI,
		ValorMaoObraTM:       e.ValorMaoObraTM,
		ValorUnitarioEnergia: e.ValorUnitarioEnergia,
		Duplicatas:           []decimal.Decimal{},
		CustoEmpresa:         e.CustoEmpresa,
	}

	valores := e.ValoresUnitarios()
	for i, nome := range e.Materiais() {
		if nome == "" {
			continue
		}
		resp.Materiais = append(resp.Materiais, dto.MaterialEntrada{Slot: i + 1, Nome: nome, ValorUnitario: valores[i]})
	}
	for _, d := range []*decimal.Decimal{e.Duplicata1, e.Duplicata2, e.Duplicata3, e.Duplicata4, e.Duplicata5, e.Duplicata6} {
		if d != nil && !d.IsZero() {
			resp.Duplicatas = append(resp.Duplicatas, *d)
		}
	}
	return resp
}

func historicoToItem(h *model.HistoricoCalculo) dto.HistoricoItem {
	return dto.HistoricoItem{
		ID:         h.ID.String(),
		Usuario:    h.Usuario,
		NF:         h.NF,
		Produto:    h.Produto,
		Quantidade: h.Quantidade,
		Tipo:       h.Tipo,
		CreatedAt:  h.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
