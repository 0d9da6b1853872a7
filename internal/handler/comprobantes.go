package handler

import (
	"errors"
	"net/http"

	"github.com/parinohernan/janus314-sub001/internal/apierror"
	"github.com/parinohernan/janus314-sub001/internal/dto"
	"github.com/parinohernan/janus314-sub001/internal/model"
	"github.com/parinohernan/janus314-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ComprobantesHandler struct{ svc service.ComprobanteService }

func NewComprobantesHandler(svc service.ComprobanteService) *ComprobantesHandler {
	return &ComprobantesHandler{svc: svc}
}

// Crear godoc
// @Summary      Crear comprobante en borrador
// @Description  Crea un comprobante (PRV/PED/FCA/NCA/NDA) en estado borrador, sin número asignado. Los precios y alícuotas se congelan por línea.
// @Tags         comprobantes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearComprobanteRequest true "Datos del comprobante"
// @Success      201  {object} dto.ComprobanteResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/comprobantes [post]
func (h *ComprobantesHandler) Crear(c *gin.Context) {
	var req dto.CrearComprobanteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		c.JSON(statusPara(err), apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Confirmar godoc
// @Summary      Confirmar comprobante
// @Description  Asigna el siguiente número de la secuencia (tipo, sucursal) y congela totales. Para tipos fiscales además registra stock y solicita el CAE en la misma transacción.
// @Tags         comprobantes
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID del comprobante"
// @Success      200  {object} dto.ComprobanteResponse
// @Success      202  {object} dto.ComprobanteResponse "Emitido con autorización fiscal pendiente"
// @Failure      409  {object} apierror.APIError
// @Router       /v1/comprobantes/{id}/confirmar [post]
func (h *ComprobantesHandler) Confirmar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Confirmar(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusPara(err), apierror.New(err.Error()))
		return
	}
	c.JSON(statusEmision(resp.EstadoFiscal, http.StatusOK), resp)
}

// Facturar godoc
// @Summary      Facturar preventa o pedido
// @Description  Convierte el documento origen confirmado en una factura emitida: número propio, stock, CAE y enlace bidireccional en una transacción. Si AFIP no responde la factura se emite con autorización pendiente.
// @Tags         comprobantes
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID del documento origen"
// @Success      201  {object} dto.ComprobanteResponse
// @Failure      409  {object} apierror.APIError "Ya facturado o transición inválida"
// @Failure      422  {object} apierror.APIError "Rechazado por AFIP"
// @Router       /v1/comprobantes/{id}/facturar [post]
func (h *ComprobantesHandler) Facturar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Facturar(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusPara(err), apierror.New(err.Error()))
		return
	}
	c.JSON(statusEmision(resp.EstadoFiscal, http.StatusCreated), resp)
}

// Anular godoc
// @Summary      Anular comprobante
// @Description  Anula el comprobante y revierte sus movimientos de stock con entradas compensatorias. Bloqueado mientras exista un documento derivado vigente.
// @Tags         comprobantes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                       true "UUID del comprobante"
// @Param        body body dto.AnularComprobanteRequest true "Motivo de anulación"
// @Success      200  {object} dto.ComprobanteResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/comprobantes/{id} [delete]
func (h *ComprobantesHandler) Anular(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.AnularComprobanteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Anular(c.Request.Context(), id, req.Motivo)
	if err != nil {
		c.JSON(statusPara(err), apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ReintentarAutorizacion godoc
// @Summary      Reintentar autorización fiscal
// @Description  Re-dispara la solicitud de CAE de un comprobante emitido con autorización pendiente. No reasigna números ni vuelve a tocar stock.
// @Tags         comprobantes
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID del comprobante"
// @Success      200  {object} dto.ComprobanteResponse
// @Success      202  {object} dto.ComprobanteResponse "AFIP sigue sin responder; próximo reintento agendado"
// @Failure      409  {object} apierror.APIError "Reintentos agotados"
// @Router       /v1/comprobantes/{id}/reintentar-cae [post]
func (h *ComprobantesHandler) ReintentarAutorizacion(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.ReintentarAutorizacion(c.Request.Context(), id)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, resp)
	case errors.Is(err, service.ErrAutorizacionDiferida):
		c.JSON(http.StatusAccepted, resp)
	default:
		c.JSON(statusPara(err), apierror.New(err.Error()))
	}
}

// Obtener godoc
// @Summary      Obtener comprobante
// @Tags         comprobantes
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID del comprobante"
// @Success      200  {object} dto.ComprobanteResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/comprobantes/{id} [get]
func (h *ComprobantesHandler) Obtener(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusPara(err), apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Listar godoc
// @Summary      Listar comprobantes
// @Description  Lista paginada filtrada por tipo, sucursal y estado.
// @Tags         comprobantes
// @Produce      json
// @Security     BearerAuth
// @Param        tipo     query string false "PRV | PED | FCA | NCA | NDA"
// @Param        sucursal query string false "Sucursal de 4 dígitos"
// @Param        estado   query string false "borrador | confirmado | facturado | anulado | all"
// @Param        page     query int    false "Página (default 1)"
// @Param        limit    query int    false "Registros por página (default 50)"
// @Success      200  {object} dto.ComprobanteListResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/comprobantes [get]
func (h *ComprobantesHandler) Listar(c *gin.Context) {
	var filter dto.ComprobanteFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar comprobantes"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// statusEmision degrada el status de una emisión exitosa a 202 cuando la
// autorización fiscal quedó pendiente: el documento existe pero el CAE no.
func statusEmision(estadoFiscal string, ok int) int {
	if estadoFiscal == model.FiscalPendiente {
		return http.StatusAccepted
	}
	return ok
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return uuid.Nil, false
	}
	return id, true
}
