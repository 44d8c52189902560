package dto

import "github.com/shopspring/decimal"

// ── Ledger ────────────────────────────────────────────────────────────────────

type CalculoFilter struct {
	Produto string `form:"produto"`
}

type LinhaCalculoResponse struct {
	ID          string           `json:"id"`
	EntradaID   string           `json:"entrada_id"`
	Data        *string          `json:"data"` // dd/mm/yyyy
	NF          string           `json:"nf"`
	Fornecedor  string           `json:"fornecedor"`
	Produto     string           `json:"produto"`
	PesoLiquido *decimal.Decimal `json:"peso_liquido"`

	QuantidadeEstoque    *decimal.Decimal `json:"quantidade_estoque"`
	QtdCobre             *decimal.Decimal `json:"qtd_cobre"`
	QtdZinco             *decimal.Decimal `json:"qtd_zinco"`
	QtdSucata            *decimal.Decimal `json:"qtd_sucata"`
	ValorTotalNF         *decimal.Decimal `json:"valor_total_nf"`
	MateriaPrima         *decimal.Decimal `json:"materia_prima"`
	MateriaPrimaUnitario *decimal.Decimal `json:"materia_prima_unitario"`
	MaoDeObra            *decimal.Decimal `json:"mao_de_obra"`
	MaoDeObraUnitario    *decimal.Decimal `json:"mao_de_obra_unitario"`
	CustoTotalManual     *decimal.Decimal `json:"custo_total_manual"`
	CustoTotal           *decimal.Decimal `json:"custo_total"`
}

type CalculoListResponse struct {
	Data  []LinhaCalculoResponse `json:"data"`
	Total int                    `json:"total"`
}

// EditarCalculoRequest carries hand-edited ledger cells as typed text
// ("1.234,56"); an empty string or null clears the cell.
type EditarCalculoRequest struct {
	Campos map[string]*string `json:"campos" validate:"required,min=1"`
}

type RecalcularRequest struct {
	EntradaIDs []string `json:"entrada_ids" validate:"required,min=1,dive,uuid"`
}

type CustoManualRequest struct {
	EntradaIDs []string `json:"entrada_ids" validate:"required,min=1,dive,uuid"`
	Valor      string   `json:"valor" validate:"required"`
}

type RecalcularResponse struct {
	Processados int                    `json:"processados"`
	Linhas      []LinhaCalculoResponse `json:"linhas"`
}

// ── Distribution ──────────────────────────────────────────────────────────────

// DistribuirRequest moves stock in or out of one entry (Alvo is an entrada_id)
// or of every entry of a product (Alvo is a product name).
type DistribuirRequest struct {
	Alvo     string `json:"alvo" validate:"required"`
	Valor    string `json:"valor" validate:"required"`
	Operacao string `json:"operacao" validate:"required"` // adicionar | subtrair
}

type DetalheDistribuicao struct {
	EntradaID string          `json:"entrada_id"`
	NF        string          `json:"nf"`
	Anterior  decimal.Decimal `json:"anterior"`
	Novo      decimal.Decimal `json:"novo"`
	Aplicado  decimal.Decimal `json:"aplicado"`
	Motivo    string          `json:"motivo,omitempty"`
}

type DistribuirResponse struct {
	AplicadoTotal decimal.Decimal       `json:"aplicado_total"`
	Solicitado    decimal.Decimal       `json:"solicitado"`
	Pendente      decimal.Decimal       `json:"pendente"`
	Detalhes      []DetalheDistribuicao `json:"detalhes"`
}
