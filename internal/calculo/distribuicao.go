package calculo

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Reasons reported per row by Planejar.
const (
	MotivoLimiteAtingido = "limite atingido"
	MotivoSemEstoque     = "sem estoque"
)

// Operacao is the direction of a distribution.
type Operacao string

const (
	Adicionar Operacao = "adicionar"
	Subtrair  Operacao = "subtrair"
)

func (o Operacao) Valida() bool { return o == Adicionar || o == Subtrair }

// Saldo is the stock position of one ledger row. Limite is the entry's net
// weight, the ceiling for additions.
type Saldo struct {
	EntradaID uuid.UUID
	Atual     decimal.Decimal
	Limite    decimal.Decimal
}

// Movimento is the planned change of one row.
type Movimento struct {
	EntradaID uuid.UUID
	Anterior  decimal.Decimal
	Novo      decimal.Decimal
	Aplicado  decimal.Decimal
	Motivo    string
}

// Plano is the outcome of spreading an amount over several rows.
type Plano struct {
	Solicitado decimal.Decimal
	Aplicado   decimal.Decimal
	Pendente   decimal.Decimal
	Movimentos []Movimento
}

// Planejar spreads valor over saldos in the given order. Subtractions are
// capped by each row's stock, additions by Limite - Atual. Rows that can take
// nothing are reported with a motivo; whatever does not fit ends up in
// Pendente. Planejar never goes below zero or above a row's limit.
func Planejar(saldos []Saldo, valor decimal.Decimal, op Operacao) Plano {
	plano := Plano{Solicitado: valor}
	restante := valor

	for _, s := range saldos {
		if !restante.IsPositive() {
			break
		}

		var capacidade decimal.Decimal
		motivo := MotivoSemEstoque
		if op == Adicionar {
			capacidade = s.Limite.Sub(s.Atual)
			motivo = MotivoLimiteAtingido
		} else {
			capacidade = s.Atual
		}

		mov := Movimento{EntradaID: s.EntradaID, Anterior: s.Atual, Novo: s.Atual}
		if !capacidade.IsPositive() {
			mov.Motivo = motivo
			plano.Movimentos = append(plano.Movimentos, mov)
			continue
		}

		aplicado := decimal.Min(restante, capacidade)
		if aplicado.LessThan(restante) {
			mov.Motivo = motivo
		}
		mov.Aplicado = aplicado
		if op == Adicionar {
			mov.Novo = s.Atual.Add(aplicado)
		} else {
			mov.Novo = s.Atual.Sub(aplicado)
		}
		restante = restante.Sub(aplicado)
		plano.Aplicado = plano.Aplicado.Add(aplicado)
		plano.Movimentos = append(plano.Movimentos, mov)
	}

	plano.Pendente = restante
	return plano
}
