package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"mediocusto/internal/model"
	"mediocusto/internal/normalize"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

type tipoCampo int

const (
	campoTexto tipoCampo = iota
	campoNumero
	campoPercentual
	campoData
)

// campoEntrada describes one editable entrada_nf column.
type campoEntrada struct {
	tipo tipoCampo
	set  func(e *model.EntradaNF, v interface{})
}

func texto(dst func(e *model.EntradaNF) *string) campoEntrada {
	return campoEntrada{tipo: campoTexto, set: func(e *model.EntradaNF, v interface{}) { *dst(e) = v.(string) }}
}

func numero(tipo tipoCampo, dst func(e *model.EntradaNF) **decimal.Decimal) campoEntrada {
	return campoEntrada{tipo: tipo, set: func(e *model.EntradaNF, v interface{}) { *dst(e) = v.(*decimal.Decimal) }}
}

// camposEntrada is the whitelist of columns accepted by edits and imports.
var camposEntrada = map[string]campoEntrada{
	"data": {tipo: campoData, set: func(e *model.EntradaNF, v interface{}) { e.Data = v.(*time.Time) }},

	"nf":         texto(func(e *model.EntradaNF) *string { return &e.NF }),
	"fornecedor": texto(func(e *model.EntradaNF) *string { return &e.Fornecedor }),
	"produto":    texto(func(e *model.EntradaNF) *string { return &e.Produto }),
	"material_1": texto(func(e *model.EntradaNF) *string { return &e.Material1 }),
	"material_2": texto(func(e *model.EntradaNF) *string { return &e.Material2 }),
	"material_3": texto(func(e *model.EntradaNF) *string { return &e.Material3 }),
	"material_4": texto(func(e *model.EntradaNF) *string { return &e.Material4 }),
	"material_5": texto(func(e *model.EntradaNF) *string { return &e.Material5 }),

	"peso_liquido":   numero(campoNumero, func(e *model.EntradaNF) **decimal.Decimal { return &e.PesoLiquido }),
	"peso_integral":  numero(campoNumero, func(e *model.EntradaNF) **decimal.Decimal { return &e.PesoIntegral }),
	"valor_integral": numero(campoNumero, func(e *model.EntradaNF) **decimal.Decimal { return &e.ValorIntegral }),
	"ipi":            numero(campoPercentual, func(e *model.EntradaNF) **decimal.Decimal { return &e.IPI }),

	"valor_unitario_1": numero(campoNumero, func(e *model.EntradaNF) **decimal.Decimal { return &e.ValorUnitario1 }),
	"valor_unitario_2": numero(campoNumero, func(e *model.EntradaNF) **decimal.Decimal { return &e.ValorUnitario2 }),
	"valor_unitario_3": numero(campoNumero, func(e *model.EntradaNF) **decimal.Decimal { return &e.ValorUnitario3 }),
	"valor_unitario_4": numero(campoNumero, func(e *model.EntradaNF) **decimal.Decimal { return &e.ValorUnitario4 }),
	"valor_unitario_5": numero(campoNumero, func(e *model.EntradaNF) **decimal.Decimal { return &e.ValorUnitario5 }),

	"valor_mao_obra_tm_metallica": numero(campoNumero, func(e *model.EntradaNF) **decimal.Decimal { return &e.ValorMaoObraTM }),
	"valor_unitario_energia":      numero(campoNumero, func(e *model.EntradaNF) **decimal.Decimal { return &e.ValorUnitarioEnergia }),

	"duplicata_1":   numero(campoNumero, func(e *model.EntradaNF) **decimal.Decimal { return &e.Duplicata1 }),
	"duplicata_2":   numero(campoNumero, func(e *model.EntradaNF) **decimal.Decimal { return &e.Duplicata2 }),
	"duplicata_3":   numero(campoNumero, func(e *model.EntradaNF) **decimal.Decimal { return &e.Duplicata3 }),
	"duplicata_4":   numero(campoNumero, func(e *model.EntradaNF) **decimal.Decimal { return &e.Duplicata4 }),
	"duplicata_5":   numero(campoNumero, func(e *model.EntradaNF) **decimal.Decimal { return &e.Duplicata5 }),
	"duplicata_6":   numero(campoNumero, func(e *model.EntradaNF) **decimal.Decimal { return &e.Duplicata6 }),
	"custo_empresa": numero(campoNumero, func(e *model.EntradaNF) **decimal.Decimal { return &e.CustoEmpresa }),
}

var formatosData = []string{"02/01/2006", "2006-01-02", time.RFC3339, "2006-01-02 15:04:05"}

// converterCampo turns a raw JSON or spreadsheet value into the Go value the
// column stores. Blank input clears the column.
func converterCampo(col string, tipo tipoCampo, raw interface{}) (interface{}, error) {
	switch tipo {
	case campoTexto:
		if raw == nil {
			return "", nil
		}
		return strings.TrimSpace(fmt.Sprint(raw)), nil

	case campoNumero, campoPercentual:
		switch v := raw.(type) {
		case nil:
			return (*decimal.Decimal)(nil), nil
		case float64:
			d := decimal.NewFromFloat(v)
			return &d, nil
		case string:
			if strings.TrimSpace(v) == "" {
				return (*decimal.Decimal)(nil), nil
			}
			parse := normalize.ParseDecimal
			if tipo == campoPercentual {
				parse = normalize.Percent
			}
			d, ok := parse(v)
			if !ok {
				return nil, &CampoInvalidoError{Campo: col, Motivo: fmt.Sprintf("%q não é um número", v)}
			}
			return &d, nil
		}

	case campoData:
		s, isStr := raw.(string)
		if raw == nil || (isStr && strings.TrimSpace(s) == "") {
			return (*time.Time)(nil), nil
		}
		if !isStr {
			s = fmt.Sprint(raw)
		}
		if t, ok := parseData(s); ok {
			return &t, nil
		}
		return nil, &CampoInvalidoError{Campo: col, Motivo: fmt.Sprintf("data %q inválida", s)}
	}
	return nil, &CampoInvalidoError{Campo: col, Motivo: fmt.Sprintf("tipo %T não suportado", raw)}
}

// parseData accepts dd/mm/yyyy, ISO dates and spreadsheet date serials.
func parseData(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range formatosData {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}
