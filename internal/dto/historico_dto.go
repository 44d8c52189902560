package dto

import "github.com/shopspring/decimal"

type HistoricoFilter struct {
	Produto string `form:"produto"`
	Tipo    string `form:"tipo"`
	Page    int    `form:"page,default=1"`
	Limit   int    `form:"limit,default=50"`
}

type HistoricoItem struct {
	ID         string          `json:"id"`
	Usuario    string          `json:"usuario"`
	NF         string          `json:"nf"`
	Produto    string          `json:"produto"`
	Quantidade decimal.Decimal `json:"quantidade"`
	Tipo       string          `json:"tipo"`
	CreatedAt  string          `json:"created_at"`
}

type HistoricoListResponse struct {
	Data  []HistoricoItem `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
