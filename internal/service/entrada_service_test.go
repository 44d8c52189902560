package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"mediocusto/internal/dto"
	"mediocusto/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func novaEntrada(repo *stubEntradaRepo) uuid.UUID {
	id := uuid.New()
	repo.entradas[id] = &model.EntradaNF{ID: id, NF: "1", Produto: "Fio", Material1: "Cobre Mel"}
	return id
}

func TestAtualizarCampos_ConverteFormatos(t *testing.T) {
	repo := newStubEntradaRepo()
	id := novaEntrada(repo)
	svc := NewEntradaService(repo)

	resp, err := svc.AtualizarCampos(context.Background(), id, map[string]interface{}{
		"ipi":           "3,25%",
		"data":          "05/02/2024",
		"peso_liquido":  "1.234,5",
		"peso_integral": 800.0,
		"nf":            " 99 ",
		"desconhecido":  "x",
	})
	require.NoError(t, err)

	requireDec(t, "3.25", resp.IPI)
	require.NotNil(t, resp.Data)
	assert.Equal(t, "05/02/2024", *resp.Data)
	requireDec(t, "1234.5", resp.PesoLiquido)
	requireDec(t, "800", resp.PesoIntegral)
	assert.Equal(t, "99", resp.NF)
	require.Len(t, resp.Materiais, 1)
	assert.Equal(t, 1, resp.Materiais[0].Slot)
}

func TestAtualizarCampos_LimpaValor(t *testing.T) {
	repo := newStubEntradaRepo()
	id := novaEntrada(repo)
	repo.entradas[id].PesoLiquido = dec("10")
	svc := NewEntradaService(repo)

	resp, err := svc.AtualizarCampos(context.Background(), id, map[string]interface{}{"peso_liquido": ""})
	require.NoError(t, err)
	assert.Nil(t, resp.PesoLiquido)
}

func TestAtualizarCampos_Erros(t *testing.T) {
	repo := newStubEntradaRepo()
	id := novaEntrada(repo)
	svc := NewEntradaService(repo)

	_, err := svc.AtualizarCampos(context.Background(), id, map[string]interface{}{"valor_integral": "doze"})
	var campoErr *CampoInvalidoError
	require.ErrorAs(t, err, &campoErr)
	assert.Equal(t, "valor_integral", campoErr.Campo)

	_, err = svc.AtualizarCampos(context.Background(), id, map[string]interface{}{"data": "31/02/2024"})
	assert.ErrorAs(t, err, &campoErr)

	_, err = svc.AtualizarCampos(context.Background(), id, map[string]interface{}{"id": "x"})
	assert.ErrorIs(t, err, ErrOperacaoInvalida)

	_, err = svc.AtualizarCampos(context.Background(), uuid.New(), map[string]interface{}{"nf": "2"})
	assert.ErrorIs(t, err, ErrNaoEncontrado)
}

func TestParseData(t *testing.T) {
	for _, in := range []string{"10/01/2024", "2024-01-10", "2024-01-10T13:00:00Z", "45301"} {
		got, ok := parseData(in)
		require.True(t, ok, in)
		assert.Equal(t, "2024-01-10", got.Format("2006-01-02"), in)
	}
	_, ok := parseData("ontem")
	assert.False(t, ok)
}

func planilha(t *testing.T, linhas ...[]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, l := range linhas {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		row := l
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestImportar(t *testing.T) {
	repo := newStubEntradaRepo()
	svc := NewEntradaService(repo)

	buf := planilha(t,
		[]interface{}{"NF", "Data", "Produto", "Peso Líquido", "Material 1", "IPI", "Observação"},
		[]interface{}{"100", "10/01/2024", "Fio", "1.000,5", "Cobre Mel", "5%", "ignorada"},
		[]interface{}{"", "11/01/2024", "Fio", "10", "", "", ""},
		[]interface{}{"102", "xx/yy", "Fio", "10", "", "", ""},
	)

	resp, err := svc.Importar(context.Background(), buf)
	require.NoError(t, err)

	assert.Equal(t, 1, resp.Importadas)
	require.Len(t, resp.Erros, 2)
	assert.Equal(t, 3, resp.Erros[0].Linha)
	assert.Contains(t, resp.Erros[0].Detalhe, "nf")
	assert.Equal(t, 4, resp.Erros[1].Linha)
	assert.Contains(t, resp.Erros[1].Detalhe, "data")

	require.Len(t, repo.criadas, 1)
	e := repo.criadas[0]
	assert.Equal(t, "100", e.NF)
	assert.Equal(t, "Cobre Mel", e.Material1)
	requireDec(t, "1000.5", e.PesoLiquido)
	requireDec(t, "5", e.IPI)
	require.NotNil(t, e.Data)
	assert.Equal(t, "2024-01-10", e.Data.Format("2006-01-02"))
}

func TestImportar_SemColunaNF(t *testing.T) {
	svc := NewEntradaService(newStubEntradaRepo())
	buf := planilha(t, []interface{}{"Produto"}, []interface{}{"Fio"})

	_, err := svc.Importar(context.Background(), buf)
	assert.ErrorIs(t, err, ErrOperacaoInvalida)
}

func TestImportar_ArquivoInvalido(t *testing.T) {
	svc := NewEntradaService(newStubEntradaRepo())
	_, err := svc.Importar(context.Background(), strings.NewReader("nf;produto\n1;Fio"))
	assert.ErrorIs(t, err, ErrOperacaoInvalida)
}

func TestCriar_ConverteEExigeNF(t *testing.T) {
	repo := newStubEntradaRepo()
	svc := NewEntradaService(repo)

	resp, err := svc.Criar(context.Background(), map[string]interface{}{
		"nf":           "500",
		"data":         "2024-03-01",
		"produto":      "Fio",
		"peso_liquido": "1.000,5",
		"ipi":          "",
		"id":           "ignorado",
	})
	require.NoError(t, err)
	assert.Equal(t, "500", resp.NF)
	requireDec(t, "1000.5", resp.PesoLiquido)
	assert.Nil(t, resp.IPI)
	require.NotNil(t, resp.Data)
	assert.Equal(t, "01/03/2024", *resp.Data)
	require.Len(t, repo.entradas, 1)

	var campoErr *CampoInvalidoError
	_, err = svc.Criar(context.Background(), map[string]interface{}{"produto": "Fio"})
	require.ErrorAs(t, err, &campoErr)
	assert.Equal(t, "nf", campoErr.Campo)

	_, err = svc.Criar(context.Background(), map[string]interface{}{"nf": "1", "peso_integral": "pesado"})
	require.ErrorAs(t, err, &campoErr)
	assert.Equal(t, "peso_integral", campoErr.Campo)
	assert.Len(t, repo.entradas, 1)
}

func TestListarEntradas(t *testing.T) {
	repo := newStubEntradaRepo()
	novaEntrada(repo)
	svc := NewEntradaService(repo)

	resp, err := svc.Listar(context.Background(), dto.EntradaFilter{Produto: "fio", Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Total)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Fio", resp.Data[0].Produto)
	assert.Equal(t, 2, resp.Page)
	assert.Equal(t, "fio", repo.filtro.Produto)
	assert.Equal(t, 2, repo.filtro.Page)
}

func TestExcluir(t *testing.T) {
	repo := newStubEntradaRepo()
	a, b := novaEntrada(repo), novaEntrada(repo)
	svc := NewEntradaService(repo)

	_, err := svc.Excluir(context.Background(), nil)
	assert.ErrorIs(t, err, ErrOperacaoInvalida)

	resp, err := svc.Excluir(context.Background(), []uuid.UUID{a, uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Removidas)
	assert.NotContains(t, repo.entradas, a)
	assert.Contains(t, repo.entradas, b)

	_, err = svc.Excluir(context.Background(), []uuid.UUID{a})
	assert.ErrorIs(t, err, ErrNaoEncontrado)

	repo.err = errors.New("pq: deadlock detected")
	_, err = svc.Excluir(context.Background(), []uuid.UUID{b})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNaoEncontrado)
}
