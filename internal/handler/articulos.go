package handler

import (
	"net/http"

	"github.com/parinohernan/janus314-sub001/internal/apierror"
	"github.com/parinohernan/janus314-sub001/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ArticulosHandler expone el catálogo en modo solo lectura: el maestro
// de artículos se administra en otro sistema.
type ArticulosHandler struct{ repo repository.ArticuloRepository }

func NewArticulosHandler(repo repository.ArticuloRepository) *ArticulosHandler {
	return &ArticulosHandler{repo: repo}
}

// Listar godoc
// @Summary      Listar artículos
// @Tags         articulos
// @Produce      json
// @Security     BearerAuth
// @Param        activos query bool false "Solo artículos activos (default true)"
// @Success      200  {array} model.Articulo
// @Router       /v1/articulos [get]
func (h *ArticulosHandler) Listar(c *gin.Context) {
	soloActivos := c.DefaultQuery("activos", "true") == "true"
	articulos, err := h.repo.List(c.Request.Context(), soloActivos)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar articulos"))
		return
	}
	c.JSON(http.StatusOK, articulos)
}

// Obtener godoc
// @Summary      Obtener artículo
// @Tags         articulos
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID del artículo"
// @Success      200  {object} model.Articulo
// @Failure      404  {object} apierror.APIError
// @Router       /v1/articulos/{id} [get]
func (h *ArticulosHandler) Obtener(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	art, err := h.repo.FindByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Articulo no encontrado"))
		return
	}
	c.JSON(http.StatusOK, art)
}
