package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mediocusto/internal/calculo"
	"mediocusto/internal/dto"
	"mediocusto/internal/model"
	"mediocusto/internal/normalize"
	"mediocusto/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// HistoricoNotifier announces that a history entry was written. Optional.
type HistoricoNotifier interface {
	NotificarHistorico(ctx context.Context) error
}

// CalculoService is the costing and stock-reconciliation engine.
type CalculoService interface {
	// Listar reconciles stock, fills the gaps of every ledger row and returns
	// the rows. Never overwrites a non-null, non-zero derived value.
	Listar(ctx context.Context, filtro dto.CalculoFilter) (*dto.CalculoListResponse, error)
	// RecalcularESalvar applies hand-edited cells and recomputes everything else.
	RecalcularESalvar(ctx context.Context, entradaID uuid.UUID, campos map[string]*string) (*dto.LinhaCalculoResponse, error)
	RecalcularLote(ctx context.Context, entradaIDs []uuid.UUID) (*dto.RecalcularResponse, error)
	AtualizarCustoManual(ctx context.Context, entradaIDs []uuid.UUID, valor string) (*dto.RecalcularResponse, error)
	Distribuir(ctx context.Context, req dto.DistribuirRequest, usuario string) (*dto.DistribuirResponse, error)
	ListarHistorico(ctx context.Context, filtro dto.HistoricoFilter) (*dto.HistoricoListResponse, error)
}

type calculoService struct {
	repo      repository.CalculoRepository
	refs      repository.ReferenciaRepository
	historico repository.HistoricoRepository
	notifier  HistoricoNotifier
}

func NewCalculoService(
	repo repository.CalculoRepository,
	refs repository.ReferenciaRepository,
	historico repository.HistoricoRepository,
	notifier HistoricoNotifier,
) CalculoService {
	return &calculoService{repo: repo, refs: refs, historico: historico, notifier: notifier}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// savepoint nests fn in a SAVEPOINT so a failed row does not abort tx.
func savepoint(tx *gorm.DB, fn func(sp *gorm.DB) error) error {
	if tx == nil {
		return fn(nil)
	}
	return tx.Transaction(fn)
}

// protegido turns a panic in fn into an error.
func protegido(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

// ── Listar ────────────────────────────────────────────────────────────────────

func (s *calculoService) Listar(ctx context.Context, filtro dto.CalculoFilter) (*dto.CalculoListResponse, error) {
	refs := calculo.NovaReferencias(ctx, s.refs)

	var linhas []model.CalculoNF
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		n, err := s.repo.ReconcileTx(tx)
		if err != nil {
			return fmt.Errorf("reconciliar estoque: %w", err)
		}
		log.Debug().Int64("linhas", n).Msg("calculo: estoque reconciliado")

		linhas, err = s.repo.ListTx(tx, repository.CalculoFilter{Produto: filtro.Produto})
		if err != nil {
			return fmt.Errorf("listar calculo_nfs: %w", err)
		}
		for i := range linhas {
			s.preencherLinha(tx, refs, &linhas[i])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	data := linhasToResponse(linhas)
	return &dto.CalculoListResponse{Data: data, Total: len(data)}, nil
}

// preencherLinha computes and persists one row in gap-fill mode. On any
// failure the row keeps its persisted values and the listing goes on.
func (s *calculoService) preencherLinha(tx *gorm.DB, refs *calculo.Referencias, c *model.CalculoNF) {
	original := *c
	err := protegido(func() error {
		if c.Entrada == nil {
			return errors.New("entrada ausente")
		}
		refs.Aplicar(c.Entrada, c, calculo.PreencherLacunas, nil)
		return savepoint(tx, func(sp *gorm.DB) error {
			return s.repo.UpsertTx(sp, c, true)
		})
	})
	if err != nil {
		log.Error().Err(err).
			Str("entrada_id", c.EntradaID.String()).
			Msg("calculo: falha ao calcular linha, mantendo valores gravados")
		*c = original
	}
}

// ── RecalcularESalvar ─────────────────────────────────────────────────────────

func (s *calculoService) RecalcularESalvar(ctx context.Context, entradaID uuid.UUID, campos map[string]*string) (*dto.LinhaCalculoResponse, error) {
	editados := make(map[string]*decimal.Decimal, len(campos))
	for campo, raw := range campos {
		if !calculo.CamposEditaveis[campo] {
			continue
		}
		if raw == nil || strings.TrimSpace(*raw) == "" {
			editados[campo] = nil
			continue
		}
		v, ok := normalize.ParseDecimal(*raw)
		if !ok {
			return nil, &CampoInvalidoError{Campo: campo, Motivo: fmt.Sprintf("%q não é um número", *raw)}
		}
		editados[campo] = &v
	}
	if len(editados) == 0 {
		return nil, fmt.Errorf("%w: nada para atualizar", ErrOperacaoInvalida)
	}

	refs := calculo.NovaReferencias(ctx, s.refs)

	var linha *model.CalculoNF
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		c, err := s.buscarLinha(tx, entradaID)
		if err != nil {
			return err
		}

		fixos := make(map[string]bool, len(editados))
		for campo, v := range editados {
			if err := aplicarEdicao(c, campo, v); err != nil {
				return err
			}
			fixos[campo] = true
		}

		refs.Aplicar(c.Entrada, c, calculo.Recalcular, fixos)
		if err := s.repo.UpsertTx(tx, c, false); err != nil {
			return fmt.Errorf("salvar calculo: %w", err)
		}
		linha = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := linhaToResponse(linha)
	return &resp, nil
}

func (s *calculoService) buscarLinha(tx *gorm.DB, entradaID uuid.UUID) (*model.CalculoNF, error) {
	c, err := s.repo.FindByEntradaTx(tx, entradaID, true)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: calculo da entrada %s", ErrNaoEncontrado, entradaID)
	}
	if err != nil {
		return nil, fmt.Errorf("buscar calculo: %w", err)
	}
	if c.Entrada == nil {
		return nil, fmt.Errorf("%w: entrada %s", ErrNaoEncontrado, entradaID)
	}
	return c, nil
}

func aplicarEdicao(c *model.CalculoNF, campo string, v *decimal.Decimal) error {
	switch campo {
	case calculo.CampoQuantidadeEstoque:
		if v != nil {
			limite := normalize.OrZero(c.Entrada.PesoLiquido)
			if v.IsNegative() || v.GreaterThan(limite) {
				return &CampoInvalidoError{
					Campo:  campo,
					Motivo: fmt.Sprintf("deve ficar entre 0 e %s", limite),
				}
			}
		}
		c.QuantidadeEstoque = v
	case calculo.CampoQtdCobre:
		c.QtdCobre = v
	case calculo.CampoQtdZinco:
		c.QtdZinco = v
	case calculo.CampoQtdSucata:
		c.QtdSucata = v
	case calculo.CampoValorTotalNF:
		c.ValorTotalNF = v
	case calculo.CampoMaoDeObra:
		c.MaoDeObra = v
	case calculo.CampoMateriaPrima:
		c.MateriaPrima = v
	case calculo.CampoCustoTotalManual:
		c.CustoTotalManual = v
	case calculo.CampoCustoTotal:
		c.CustoTotal = v
	}
	return nil
}

// ── RecalcularLote / AtualizarCustoManual ─────────────────────────────────────

func (s *calculoService) RecalcularLote(ctx context.Context, entradaIDs []uuid.UUID) (*dto.RecalcularResponse, error) {
	return s.recalcularVarios(ctx, entradaIDs, nil, nil)
}

func (s *calculoService) AtualizarCustoManual(ctx context.Context, entradaIDs []uuid.UUID, valor string) (*dto.RecalcularResponse, error) {
	v, ok := normalize.ParseDecimal(valor)
	if !ok || v.IsNegative() {
		return nil, &CampoInvalidoError{Campo: calculo.CampoCustoTotalManual, Motivo: fmt.Sprintf("%q não é um valor válido", valor)}
	}

	// everything but the final cost and the unit figures stays as persisted
	fixos := make(map[string]bool, len(calculo.CamposEditaveis))
	for campo := range calculo.CamposEditaveis {
		fixos[campo] = campo != calculo.CampoCustoTotal
	}
	return s.recalcularVarios(ctx, entradaIDs, fixos, &v)
}

func (s *calculoService) recalcularVarios(ctx context.Context, entradaIDs []uuid.UUID, fixos map[string]bool, manual *decimal.Decimal) (*dto.RecalcularResponse, error) {
	if len(entradaIDs) == 0 {
		return nil, fmt.Errorf("%w: nenhuma entrada informada", ErrOperacaoInvalida)
	}
	refs := calculo.NovaReferencias(ctx, s.refs)

	var linhas []model.CalculoNF
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if manual != nil {
			if _, err := s.repo.SetCustoManualTx(tx, entradaIDs, manual); err != nil {
				return fmt.Errorf("atualizar custo manual: %w", err)
			}
		}

		var err error
		linhas, err = s.repo.LockTx(tx, entradaIDs, false)
		if err != nil {
			return fmt.Errorf("carregar calculo_nfs: %w", err)
		}
		if len(linhas) == 0 {
			return ErrNaoEncontrado
		}
		for i := range linhas {
			c := &linhas[i]
			if c.Entrada == nil {
				continue
			}
			refs.Aplicar(c.Entrada, c, calculo.Recalcular, fixos)
			if err := s.repo.UpsertTx(tx, c, false); err != nil {
				return fmt.Errorf("salvar calculo da entrada %s: %w", c.EntradaID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &dto.RecalcularResponse{Processados: len(linhas), Linhas: linhasToResponse(linhas)}, nil
}

// ── Distribuir ────────────────────────────────────────────────────────────────

func (s *calculoService) Distribuir(ctx context.Context, req dto.DistribuirRequest, usuario string) (*dto.DistribuirResponse, error) {
	op := calculo.Operacao(strings.ToLower(strings.TrimSpace(req.Operacao)))
	if !op.Valida() {
		return nil, fmt.Errorf("%w: operação %q desconhecida", ErrOperacaoInvalida, req.Operacao)
	}
	valor, ok := normalize.ParseDecimal(req.Valor)
	if !ok || !valor.IsPositive() {
		return nil, fmt.Errorf("%w: valor deve ser maior que zero", ErrOperacaoInvalida)
	}
	alvo := strings.TrimSpace(req.Alvo)
	entradaID, errID := uuid.Parse(alvo)
	unica := errID == nil

	var (
		plano   calculo.Plano
		linhas  []model.CalculoNF
		produto = alvo
		nf      string
	)
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		ids := []uuid.UUID{entradaID}
		if !unica {
			var err error
			ids, err = s.entradasDoProduto(tx, alvo)
			if err != nil {
				return err
			}
		}

		var err error
		linhas, err = s.repo.LockTx(tx, ids, op == calculo.Adicionar)
		if err != nil {
			return fmt.Errorf("bloquear calculo_nfs: %w", err)
		}
		if len(linhas) == 0 {
			return fmt.Errorf("%w: nenhum estoque para %q", ErrNaoEncontrado, alvo)
		}

		saldos := make([]calculo.Saldo, 0, len(linhas))
		for _, c := range linhas {
			saldo := calculo.Saldo{EntradaID: c.EntradaID, Atual: normalize.OrZero(c.QuantidadeEstoque)}
			if c.Entrada != nil {
				saldo.Limite = normalize.OrZero(c.Entrada.PesoLiquido)
			}
			saldos = append(saldos, saldo)
		}

		if unica {
			if e := linhas[0].Entrada; e != nil {
				produto, nf = e.Produto, e.NF
			}
			if op == calculo.Subtrair && valor.GreaterThan(saldos[0].Atual) {
				return &QuantidadeExcedidaError{Solicitado: valor, Disponivel: saldos[0].Atual}
			}
		}

		plano = calculo.Planejar(saldos, valor, op)
		for _, m := range plano.Movimentos {
			if m.Aplicado.IsZero() {
				continue
			}
			if err := s.repo.UpdateEstoqueTx(tx, m.EntradaID, m.Novo); err != nil {
				return fmt.Errorf("atualizar estoque da entrada %s: %w", m.EntradaID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !plano.Aplicado.IsZero() {
		s.registrarHistorico(ctx, &model.HistoricoCalculo{
			Usuario:    usuario,
			NF:         nf,
			Produto:    produto,
			Quantidade: plano.Aplicado,
			Tipo:       string(op),
		})
	}

	return distribuicaoToResponse(plano, linhas), nil
}

// entradasDoProduto finds the entries whose product matches nome by
// normalized name.
func (s *calculoService) entradasDoProduto(tx *gorm.DB, nome string) ([]uuid.UUID, error) {
	chave := normalize.Name(nome)
	if chave == "" {
		return nil, fmt.Errorf("%w: alvo vazio", ErrOperacaoInvalida)
	}
	todas, err := s.repo.ListTx(tx, repository.CalculoFilter{})
	if err != nil {
		return nil, fmt.Errorf("listar calculo_nfs: %w", err)
	}
	var ids []uuid.UUID
	for _, c := range todas {
		if c.Entrada != nil && normalize.Name(c.Entrada.Produto) == chave {
			ids = append(ids, c.EntradaID)
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: produto %q sem entradas", ErrNaoEncontrado, nome)
	}
	return ids, nil
}

// registrarHistorico is best-effort: failures are logged and swallowed.
func (s *calculoService) registrarHistorico(ctx context.Context, h *model.HistoricoCalculo) {
	if s.historico == nil {
		return
	}
	if err := s.historico.Create(ctx, h); err != nil {
		log.Warn().Err(err).Str("produto", h.Produto).Msg("calculo: histórico não gravado")
		return
	}
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotificarHistorico(ctx); err != nil {
		log.Debug().Err(err).Msg("calculo: notificação de histórico falhou")
	}
}

func distribuicaoToResponse(p calculo.Plano, linhas []model.CalculoNF) *dto.DistribuirResponse {
	nfs := make(map[uuid.UUID]string, len(linhas))
	for _, c := range linhas {
		if c.Entrada != nil {
			nfs[c.EntradaID] = c.Entrada.NF
		}
	}
	resp := &dto.DistribuirResponse{
		AplicadoTotal: p.Aplicado,
		Solicitado:    p.Solicitado,
		Pendente:      p.Pendente,
		Detalhes:      make([]dto.DetalheDistribuicao, 0, len(p.Movimentos)),
	}
	for _, m := range p.Movimentos {
		resp.Detalhes = append(resp.Detalhes, dto.DetalheDistribuicao{
			EntradaID: m.EntradaID.String(),
			NF:        nfs[m.EntradaID],
			Anterior:  m.Anterior,
			Novo:      m.Novo,
			Aplicado:  m.Aplicado,
			Motivo:    m.Motivo,
		})
	}
	return resp
}

// ── Histórico ─────────────────────────────────────────────────────────────────

func (s *calculoService) ListarHistorico(ctx context.Context, filtro dto.HistoricoFilter) (*dto.HistoricoListResponse, error) {
	rows, total, err := s.historico.List(ctx, repository.HistoricoFilter{
		Produto: filtro.Produto,
		Tipo:    filtro.Tipo,
		Page:    filtro.Page,
		Limit:   filtro.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("listar histórico: %w", err)
	}

	data := make([]dto.HistoricoItem, 0, len(rows))
	for i := range rows {
		data = append(data, historicoToItem(&rows[i]))
	}
	return &dto.HistoricoListResponse{Data: data, Total: total, Page: filtro.Page, Limit: filtro.Limit}, nil
}
