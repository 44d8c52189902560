// Package apierror provides the error envelopes returned by the API. Every
// 4xx/5xx body goes through here so internal details never reach clients.
package apierror

import "github.com/shopspring/decimal"

// APIError is the canonical error envelope.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError lists the rejected fields with the reason for each.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Erro de validação", Fields: fields}
}

// QuantidadeError is returned when a stock movement asks for more than is
// available.
type QuantidadeError struct {
	Detail     string          `json:"detail"`
	Solicitado decimal.Decimal `json:"solicitado"`
	Disponivel decimal.Decimal `json:"disponivel"`
}

func NewQuantidade(msg string, solicitado, disponivel decimal.Decimal) *QuantidadeError {
	return &QuantidadeError{Detail: msg, Solicitado: solicitado, Disponivel: disponivel}
}
