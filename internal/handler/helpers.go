package handler

import (
	"errors"
	"net/http"
	"reflect"

	"mediocusto/internal/apierror"
	"mediocusto/internal/middleware"
	"mediocusto/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// decimal.Decimal is validated as its float value, otherwise tags such as
	// gt=0 panic with "Bad field type decimal.Decimal".
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds the JSON body and runs the validator tags.
// On false the error response is already written.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON inválido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
			return false
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// parseIDs converts a validated list of UUID strings.
func parseIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// responderErro maps service errors to HTTP responses. Anything not
// recognised is a 500 whose detail is fallback; the cause only goes to the log.
func responderErro(c *gin.Context, err error, fallback string) {
	var (
		campo    *service.CampoInvalidoError
		excedida *service.QuantidadeExcedidaError
	)
	switch {
	case errors.As(err, &campo):
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(map[string]string{campo.Campo: campo.Motivo}))
	case errors.As(err, &excedida):
		c.JSON(http.StatusBadRequest, apierror.NewQuantidade(excedida.Error(), excedida.Solicitado, excedida.Disponivel))
	case errors.Is(err, service.ErrNaoEncontrado):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case errors.Is(err, service.ErrOperacaoInvalida):
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	default:
		log.Error().Err(err).
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Str("path", c.FullPath()).
			Msg(fallback)
		c.JSON(http.StatusInternalServerError, apierror.New(fallback))
	}
}

// ator is the username of the authenticated caller, empty when the route is
// not behind JWTAuth.
func ator(c *gin.Context) string {
	v, ok := c.Get(middleware.ClaimsKey)
	if !ok {
		return ""
	}
	claims, ok := v.(*middleware.JWTClaims)
	if !ok {
		return ""
	}
	return claims.Username
}
