package dto

import "github.com/shopspring/decimal"

// EditarEntradaRequest is {fields: {coluna: valor}}. Values may be strings in
// pt-BR format, numbers or null; unknown columns are ignored.
type EditarEntradaRequest struct {
	Fields map[string]interface{} `json:"fields" validate:"required,min=1"`
}

// CriarEntradaRequest uses the same {fields: {coluna: valor}} shape as edits.
type CriarEntradaRequest struct {
	Fields map[string]interface{} `json:"fields" validate:"required,min=1"`
}

type EntradaFilter struct {
	Produto string `form:"produto"`
	Page    int    `form:"page,default=1"`
	Limit   int    `form:"limit,default=10"`
}

type ExcluirEntradasRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,uuid"`
}

type ExcluirEntradasResponse struct {
	Removidas int64 `json:"removidas"`
}

type EntradaResponse struct {
	ID                   string            `json:"id"`
	Data                 *string           `json:"data"`
	NF                   string            `json:"nf"`
	Fornecedor           string            `json:"fornecedor"`
	Produto              string            `json:"produto"`
	Materiais            []MaterialEntrada `json:"materiais"`
	PesoLiquido          *decimal.Decimal  `json:"peso_liquido"`
	PesoIntegral         *decimal.Decimal  `json:"peso_integral"`
	ValorIntegral        *decimal.Decimal  `json:"valor_integral"`
	IPI                  *decimal.Decimal  `json:"ipi"`
	ValorMaoObraTM       *decimal.Decimal  `json:"valor_mao_obra_tm_metallica"`
	ValorUnitarioEnergia *decimal.Decimal  `json:"valor_unitario_energia"`
	Duplicatas           []decimal.Decimal `json:"duplicatas"`
	CustoEmpresa         *decimal.Decimal  `json:"custo_empresa"`
}

type MaterialEntrada struct {
	Slot          int              `json:"slot"`
	Nome          string           `json:"nome"`
	ValorUnitario *decimal.Decimal `json:"valor_unitario"`
}

type ErroImportacao struct {
	Linha   int    `json:"linha"`
	Detalhe string `json:"detalhe"`
}

type ImportarEntradasResponse struct {
	Importadas int              `json:"importadas"`
	Erros      []ErroImportacao `json:"erros"`
}

type EntradaListResponse struct {
	Data  []EntradaResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
