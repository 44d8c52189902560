package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"mediocusto/internal/dto"
	"mediocusto/internal/model"
	"mediocusto/internal/normalize"
	"mediocusto/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// EntradaService handles inbound invoice entries: data entry, listing,
// whitelisted inline edits, deletion and spreadsheet imports.
type EntradaService interface {
	Criar(ctx context.Context, campos map[string]interface{}) (*dto.EntradaResponse, error)
	Listar(ctx context.Context, filtro dto.EntradaFilter) (*dto.EntradaListResponse, error)
	AtualizarCampos(ctx context.Context, id uuid.UUID, campos map[string]interface{}) (*dto.EntradaResponse, error)
	// Excluir deletes entries together with their ledger rows.
	Excluir(ctx context.Context, ids []uuid.UUID) (*dto.ExcluirEntradasResponse, error)
	Importar(ctx context.Context, r io.Reader) (*dto.ImportarEntradasResponse, error)
}

type entradaService struct {
	repo repository.EntradaRepository
}

func NewEntradaService(repo repository.EntradaRepository) EntradaService {
	return &entradaService{repo: repo}
}

// Criar stores one entry typed by hand. Values follow the same rules as
// AtualizarCampos; nf is required.
func (s *entradaService) Criar(ctx context.Context, campos map[string]interface{}) (*dto.EntradaResponse, error) {
	e, err := montarEntrada(campos)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("criar entrada: %w", err)
	}
	log.Info().Str("entrada_id", e.ID.String()).Str("nf", e.NF).Msg("entrada criada")
	return entradaToResponse(e), nil
}

func (s *entradaService) Listar(ctx context.Context, filtro dto.EntradaFilter) (*dto.EntradaListResponse, error) {
	rows, total, err := s.repo.List(ctx, repository.EntradaFilter{
		Produto: filtro.Produto,
		Page:    filtro.Page,
		Limit:   filtro.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("listar entradas: %w", err)
	}

	data := make([]dto.EntradaResponse, 0, len(rows))
	for i := range rows {
		data = append(data, *entradaToResponse(&rows[i]))
	}
	return &dto.EntradaListResponse{Data: data, Total: total, Page: filtro.Page, Limit: filtro.Limit}, nil
}

func (s *entradaService) Excluir(ctx context.Context, ids []uuid.UUID) (*dto.ExcluirEntradasResponse, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: nenhuma entrada informada", ErrOperacaoInvalida)
	}

	var removidas int64
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		n, err := s.repo.DeleteTx(tx, ids)
		removidas = n
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("excluir entradas: %w", err)
	}
	if removidas == 0 {
		return nil, fmt.Errorf("%w: nenhuma das entradas existe", ErrNaoEncontrado)
	}
	log.Info().Int64("removidas", removidas).Msg("entradas excluídas")
	return &dto.ExcluirEntradasResponse{Removidas: removidas}, nil
}

func (s *entradaService) AtualizarCampos(ctx context.Context, id uuid.UUID, campos map[string]interface{}) (*dto.EntradaResponse, error) {
	updates := make(map[string]interface{}, len(campos))
	for col, raw := range campos {
		def, ok := camposEntrada[col]
		if !ok {
			continue
		}
		v, err := converterCampo(col, def.tipo, raw)
		if err != nil {
			return nil, err
		}
		updates[col] = v
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("%w: nenhum campo editável informado", ErrOperacaoInvalida)
	}

	if err := s.repo.UpdateCampos(ctx, id, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: entrada %s", ErrNaoEncontrado, id)
		}
		return nil, fmt.Errorf("atualizar entrada: %w", err)
	}

	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("buscar entrada: %w", err)
	}
	return entradaToResponse(e), nil
}

// Importar reads the first sheet of an .xlsx workbook. The first row holds
// column names (matched ignoring case, accents and underscores); every other
// non-blank row becomes an entry. Rows with errors are reported and skipped;
// the valid ones are inserted in one transaction.
func (s *entradaService) Importar(ctx context.Context, r io.Reader) (*dto.ImportarEntradasResponse, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: planilha ilegível: %v", ErrOperacaoInvalida, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("importar: erro ao fechar planilha")
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: planilha vazia", ErrOperacaoInvalida)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOperacaoInvalida, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: planilha sem cabeçalho", ErrOperacaoInvalida)
	}

	colunas := mapearCabecalho(rows[0])
	if _, ok := colunas["nf"]; !ok {
		return nil, fmt.Errorf("%w: coluna nf ausente no cabeçalho", ErrOperacaoInvalida)
	}

	resp := &dto.ImportarEntradasResponse{Erros: []dto.ErroImportacao{}}
	var entradas []model.EntradaNF
	for i, row := range rows[1:] {
		linha := i + 2
		if linhaVazia(row) {
			continue
		}
		e, err := entradaDaLinha(row, colunas)
		if err != nil {
			resp.Erros = append(resp.Erros, dto.ErroImportacao{Linha: linha, Detalhe: err.Error()})
			continue
		}
		entradas = append(entradas, *e)
	}

	if len(entradas) > 0 {
		err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
			return s.repo.CreateBatchTx(tx, entradas)
		})
		if err != nil {
			return nil, fmt.Errorf("gravar entradas: %w", err)
		}
	}
	resp.Importadas = len(entradas)
	log.Info().Int("importadas", resp.Importadas).Int("erros", len(resp.Erros)).Msg("importar: entradas")
	return resp, nil
}

// mapearCabecalho maps whitelisted column names to their cell index.
func mapearCabecalho(header []string) map[string]int {
	porChave := make(map[string]string, len(camposEntrada))
	for col := range camposEntrada {
		porChave[chaveColuna(col)] = col
	}
	colunas := make(map[string]int, len(header))
	for i, h := range header {
		if col, ok := porChave[chaveColuna(h)]; ok {
			if _, dup := colunas[col]; !dup {
				colunas[col] = i
			}
		}
	}
	return colunas
}

func chaveColuna(s string) string {
	return normalize.Name(strings.ReplaceAll(s, "_", " "))
}

func linhaVazia(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func entradaDaLinha(row []string, colunas map[string]int) (*model.EntradaNF, error) {
	campos := make(map[string]interface{}, len(colunas))
	for col, idx := range colunas {
		if idx < len(row) {
			campos[col] = row[idx]
		} else {
			campos[col] = nil
		}
	}
	return montarEntrada(campos)
}

// montarEntrada builds a new entry from whitelisted columns, ignoring the
// rest. nf is required.
func montarEntrada(campos map[string]interface{}) (*model.EntradaNF, error) {
	// deterministic order so the first reported error is stable
	cols := make([]string, 0, len(campos))
	for col := range campos {
		if _, ok := camposEntrada[col]; ok {
			cols = append(cols, col)
		}
	}
	sort.Strings(cols)

	e := &model.EntradaNF{}
	for _, col := range cols {
		def := camposEntrada[col]
		v, err := converterCampo(col, def.tipo, campos[col])
		if err != nil {
			return nil, err
		}
		def.set(e, v)
	}
	if e.NF == "" {
		return nil, &CampoInvalidoError{Campo: "nf", Motivo: "obrigatória"}
	}
	return e, nil
}
