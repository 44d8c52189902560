package handler

import (
	"net/http"
	"path/filepath"
	"strings"

	"mediocusto/internal/apierror"
	"mediocusto/internal/dto"
	"mediocusto/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxPlanilhaBytes = 10 << 20

type EntradasHandler struct{ svc service.EntradaService }

func NewEntradasHandler(svc service.EntradaService) *EntradasHandler {
	return &EntradasHandler{svc: svc}
}

// Criar godoc
// @Summary      Registra uma entrada de NF
// @Description  Mesmas regras de conversão da edição; nf é obrigatória.
// @Tags         entradas
// @Security     BearerAuth
// @Param        body body     dto.CriarEntradaRequest true "Campos"
// @Success      201  {object} dto.EntradaResponse
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/entradas [post]
func (h *EntradasHandler) Criar(c *gin.Context) {
	var req dto.CriarEntradaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Criar(c.Request.Context(), req.Fields)
	if err != nil {
		responderErro(c, err, "Erro ao registrar entrada")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary      Lista entradas de NF, mais recentes primeiro
// @Tags         entradas
// @Security     BearerAuth
// @Param        produto query    string false "Filtro por produto"
// @Param        page    query    int    false "Página (default 1)"
// @Param        limit   query    int    false "Registros por página (default 10, max 200)"
// @Success      200     {object} dto.EntradaListResponse
// @Router       /v1/entradas [get]
func (h *EntradasHandler) Listar(c *gin.Context) {
	var filtro dto.EntradaFilter
	if err := c.ShouldBindQuery(&filtro); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filtro)
	if err != nil {
		responderErro(c, err, "Erro ao listar entradas")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Excluir godoc
// @Summary      Exclui entradas e suas linhas de cálculo
// @Tags         entradas
// @Security     BearerAuth
// @Param        body body     dto.ExcluirEntradasRequest true "IDs"
// @Success      200  {object} dto.ExcluirEntradasResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/entradas/excluir [post]
func (h *EntradasHandler) Excluir(c *gin.Context) {
	var req dto.ExcluirEntradasRequest
	if !bindAndValidate(c, &req) {
		return
	}
	ids, err := parseIDs(req.IDs)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID de entrada inválido"))
		return
	}
	resp, err := h.svc.Excluir(c.Request.Context(), ids)
	if err != nil {
		responderErro(c, err, "Erro ao excluir entradas")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Editar godoc
// @Summary      Edita campos de uma entrada de NF
// @Description  Colunas desconhecidas são ignoradas. Datas em dd/mm/aaaa ou ISO; números em formato pt-BR.
// @Tags         entradas
// @Security     BearerAuth
// @Param        id   path     string                   true "UUID da entrada"
// @Param        body body     dto.EditarEntradaRequest true "Campos"
// @Success      200  {object} dto.EntradaResponse
// @Failure      404  {object} apierror.APIError
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/entradas/{id} [patch]
func (h *EntradasHandler) Editar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID de entrada inválido"))
		return
	}
	var req dto.EditarEntradaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AtualizarCampos(c.Request.Context(), id, req.Fields)
	if err != nil {
		responderErro(c, err, "Erro ao atualizar entrada")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Importar godoc
// @Summary      Importa entradas de uma planilha .xlsx
// @Tags         entradas
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Param        arquivo formData file true "Planilha .xlsx"
// @Success      200     {object} dto.ImportarEntradasResponse
// @Failure      400     {object} apierror.APIError
// @Router       /v1/entradas/importar [post]
func (h *EntradasHandler) Importar(c *gin.Context) {
	fh, err := c.FormFile("arquivo")
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Arquivo 'arquivo' obrigatório"))
		return
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".xlsx") {
		c.JSON(http.StatusBadRequest, apierror.New("Formato não suportado, envie um .xlsx"))
		return
	}
	if fh.Size > maxPlanilhaBytes {
		c.JSON(http.StatusRequestEntityTooLarge, apierror.New("Planilha maior que 10 MB"))
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Não foi possível ler o arquivo"))
		return
	}
	defer f.Close()

	resp, err := h.svc.Importar(c.Request.Context(), f)
	if err != nil {
		responderErro(c, err, "Erro ao importar entradas")
		return
	}
	c.JSON(http.StatusOK, resp)
}
