package service

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrNaoEncontrado means the target entry or ledger row does not exist.
	ErrNaoEncontrado = errors.New("registro não encontrado")
	// ErrOperacaoInvalida wraps every rejected input that is not tied to a
	// single field (unknown operation, non-positive amount, nothing to edit).
	ErrOperacaoInvalida = errors.New("operação inválida")
)

// CampoInvalidoError reports a value that could not be accepted for a column.
type CampoInvalidoError struct {
	Campo  string
	Motivo string
}

func (e *CampoInvalidoError) Error() string {
	return fmt.Sprintf("valor inválido para %s: %s", e.Campo, e.Motivo)
}

// QuantidadeExcedidaError is returned when a single-entry subtraction asks
// for more than the row holds. Nothing is changed.
type QuantidadeExcedidaError struct {
	Solicitado decimal.Decimal
	Disponivel decimal.Decimal
}

func (e *QuantidadeExcedidaError) Error() string {
	return fmt.Sprintf("quantidade a subtrair (%s) maior que disponível (%s)", e.Solicitado, e.Disponivel)
}
