package handler

import (
	"net/http"

	"github.com/parinohernan/janus314-sub001/internal/apierror"
	"github.com/parinohernan/janus314-sub001/internal/dto"
	"github.com/parinohernan/janus314-sub001/internal/repository"
	"github.com/parinohernan/janus314-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type StockHandler struct{ svc service.StockService }

func NewStockHandler(svc service.StockService) *StockHandler { return &StockHandler{svc: svc} }

// StockActual godoc
// @Summary      Consultar stock actual
// @Description  Devuelve la suma de movimientos de un artículo en una sucursal (agregado cacheado). Consulta pública, solo lectura.
// @Tags         stock
// @Produce      json
// @Param        articulo_id path  string true "UUID del artículo"
// @Param        sucursal    query string true "Sucursal de 4 dígitos"
// @Success      200  {object} dto.StockActualResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/stock/{articulo_id} [get]
func (h *StockHandler) StockActual(c *gin.Context) {
	articuloID, err := uuid.Parse(c.Param("articulo_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("articulo_id invalido"))
		return
	}
	sucursal := c.Query("sucursal")
	if sucursal == "" {
		c.JSON(http.StatusBadRequest, apierror.New("sucursal es requerida"))
		return
	}

	stock, err := h.svc.StockActual(c.Request.Context(), articuloID, sucursal)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al consultar stock"))
		return
	}
	c.JSON(http.StatusOK, dto.StockActualResponse{
		ArticuloID: articuloID.String(),
		Sucursal:   sucursal,
		Stock:      stock,
	})
}

// ListarMovimientos godoc
// @Summary      Listar movimientos de stock
// @Description  Libro de movimientos, paginado y filtrable por artículo, sucursal, comprobante y motivo.
// @Tags         stock
// @Produce      json
// @Security     BearerAuth
// @Param        articulo_id    query string false "UUID del artículo"
// @Param        sucursal       query string false "Sucursal de 4 dígitos"
// @Param        comprobante_id query string false "UUID del comprobante"
// @Param        motivo         query string false "confirmacion | reversa_anulacion | ajuste"
// @Param        page           query int    false "Página (default 1)"
// @Param        limit          query int    false "Registros por página (default 50)"
// @Success      200  {object} dto.MovimientoStockListResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/stock/movimientos [get]
func (h *StockHandler) ListarMovimientos(c *gin.Context) {
	var filter dto.MovimientoStockFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}

	repoFilter := repository.MovimientoStockFilter{
		Sucursal: filter.Sucursal,
		Motivo:   filter.Motivo,
		Page:     filter.Page,
		Limit:    filter.Limit,
	}
	if filter.ArticuloID != "" {
		id, err := uuid.Parse(filter.ArticuloID)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("articulo_id invalido"))
			return
		}
		repoFilter.ArticuloID = &id
	}
	if filter.ComprobanteID != "" {
		id, err := uuid.Parse(filter.ComprobanteID)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("comprobante_id invalido"))
			return
		}
		repoFilter.ComprobanteID = &id
	}

	movs, total, err := h.svc.ListarMovimientos(c.Request.Context(), repoFilter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar movimientos"))
		return
	}

	resp := dto.MovimientoStockListResponse{
		Data:  make([]dto.MovimientoStockResponse, 0, len(movs)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range movs {
		m := &movs[i]
		resp.Data = append(resp.Data, dto.MovimientoStockResponse{
			ID:            m.ID.String(),
			ArticuloID:    m.ArticuloID.String(),
			Sucursal:      m.Sucursal,
			Cantidad:      m.Cantidad,
			ComprobanteID: m.ComprobanteID.String(),
			Motivo:        m.Motivo,
			CreatedAt:     m.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	c.JSON(http.StatusOK, resp)
}
