package handler

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/parinohernan/janus314-sub001/internal/apierror"
	"github.com/parinohernan/janus314-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// statusPara traduce la taxonomía de errores del servicio a códigos HTTP.
func statusPara(err error) int {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrClaveInvalida):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrConflictoAsignacion),
		errors.Is(err, service.ErrTransicionInvalida),
		errors.Is(err, service.ErrYaFacturado),
		errors.Is(err, service.ErrAnulacionNoPermitida),
		errors.Is(err, service.ErrStockInsuficiente):
		return http.StatusConflict
	case errors.Is(err, service.ErrAutorizacionRechazada):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrAutorizacionFallida):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}
