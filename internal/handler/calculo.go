package handler

import (
	"net/http"

	"mediocusto/internal/apierror"
	"mediocusto/internal/dto"
	"mediocusto/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CalculoHandler serves the cost ledger: listing, inline edits, batch
// recompute and stock distribution.
type CalculoHandler struct {
	svc service.CalculoService
}

func NewCalculoHandler(svc service.CalculoService) *CalculoHandler {
	return &CalculoHandler{svc: svc}
}

// Listar godoc
// @Summary      Lista o cálculo das NFs
// @Description  Reconcilia o estoque, preenche os campos derivados ainda vazios e retorna as linhas (mais recentes primeiro).
// @Tags         calculo
// @Security     BearerAuth
// @Param        produto query    string false "Filtro por produto (substring)"
// @Success      200     {object} dto.CalculoListResponse
// @Failure      500     {object} apierror.APIError
// @Router       /v1/calculo-nfs [get]
func (h *CalculoHandler) Listar(c *gin.Context) {
	var filtro dto.CalculoFilter
	if err := c.ShouldBindQuery(&filtro); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filtro)
	if err != nil {
		responderErro(c, err, "Erro ao listar cálculo")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Editar godoc
// @Summary      Edita células do cálculo e recalcula a linha
// @Description  Os campos editados ficam fixos; os demais derivados são recalculados. Valores em formato pt-BR ("1.234,56"); vazio limpa o campo.
// @Tags         calculo
// @Security     BearerAuth
// @Param        entrada_id path     string                     true "UUID da entrada"
// @Param        body       body     dto.EditarCalculoRequest   true "Campos editados"
// @Success      200        {object} dto.LinhaCalculoResponse
// @Failure      400        {object} apierror.APIError
// @Failure      404        {object} apierror.APIError
// @Failure      422        {object} apierror.ValidationError
// @Router       /v1/calculo-nfs/{entrada_id} [patch]
func (h *CalculoHandler) Editar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("entrada_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID de entrada inválido"))
		return
	}
	var req dto.EditarCalculoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RecalcularESalvar(c.Request.Context(), id, req.Campos)
	if err != nil {
		responderErro(c, err, "Erro ao salvar cálculo")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Recalcular godoc
// @Summary      Recalcula linhas do cálculo
// @Tags         calculo
// @Security     BearerAuth
// @Param        body body     dto.RecalcularRequest true "Entradas"
// @Success      200  {object} dto.RecalcularResponse
// @Failure      404  {object} apierror.APIError
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/calculo-nfs/recalcular [post]
func (h *CalculoHandler) Recalcular(c *gin.Context) {
	var req dto.RecalcularRequest
	if !bindAndValidate(c, &req) {
		return
	}
	ids, err := parseIDs(req.EntradaIDs)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID de entrada inválido"))
		return
	}
	resp, err := h.svc.RecalcularLote(c.Request.Context(), ids)
	if err != nil {
		responderErro(c, err, "Erro ao recalcular")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CustoManual godoc
// @Summary      Define o custo total manual de várias entradas
// @Tags         calculo
// @Security     BearerAuth
// @Param        body body     dto.CustoManualRequest true "Entradas e valor"
// @Success      200  {object} dto.RecalcularResponse
// @Failure      404  {object} apierror.APIError
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/calculo-nfs/custo-manual [post]
func (h *CalculoHandler) CustoManual(c *gin.Context) {
	var req dto.CustoManualRequest
	if !bindAndValidate(c, &req) {
		return
	}
	ids, err := parseIDs(req.EntradaIDs)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID de entrada inválido"))
		return
	}
	resp, err := h.svc.AtualizarCustoManual(c.Request.Context(), ids, req.Valor)
	if err != nil {
		responderErro(c, err, "Erro ao atualizar custo manual")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Distribuir godoc
// @Summary      Adiciona ou subtrai estoque
// @Description  Alvo é um entrada_id (uma linha) ou um nome de produto (todas as linhas do produto). Subtração consome as entradas mais antigas primeiro; adição preenche as mais recentes até o peso líquido.
// @Tags         calculo
// @Security     BearerAuth
// @Param        body body     dto.DistribuirRequest true "Distribuição"
// @Success      200  {object} dto.DistribuirResponse
// @Failure      400  {object} apierror.QuantidadeError
// @Failure      404  {object} apierror.APIError
// @Router       /v1/calculo-nfs/distribuir [post]
func (h *CalculoHandler) Distribuir(c *gin.Context) {
	var req dto.DistribuirRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Distribuir(c.Request.Context(), req, ator(c))
	if err != nil {
		responderErro(c, err, "Erro ao distribuir estoque")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Historico godoc
// @Summary      Histórico de movimentações de estoque
// @Tags         calculo
// @Security     BearerAuth
// @Param        produto query    string false "Produto"
// @Param        tipo    query    string false "adicionar | subtrair"
// @Param        page    query    int    false "Página (default 1)"
// @Param        limit   query    int    false "Registros por página (default 50, max 200)"
// @Success      200     {object} dto.HistoricoListResponse
// @Router       /v1/calculo-nfs/historico [get]
func (h *CalculoHandler) Historico(c *gin.Context) {
	var filtro dto.HistoricoFilter
	if err := c.ShouldBindQuery(&filtro); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.ListarHistorico(c.Request.Context(), filtro)
	if err != nil {
		responderErro(c, err, "Erro ao obter histórico")
		return
	}
	c.JSON(http.StatusOK, resp)
}
