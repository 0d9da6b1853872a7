package dto

import "github.com/shopspring/decimal"

// MovimientoStockFilter is bound from query string of GET /v1/stock/movimientos.
type MovimientoStockFilter struct {
	ArticuloID    string `form:"articulo_id"    validate:"omitempty,uuid"`
	Sucursal      string `form:"sucursal"       validate:"omitempty,len=4,numeric"`
	ComprobanteID string `form:"comprobante_id" validate:"omitempty,uuid"`
	Motivo        string `form:"motivo"         validate:"omitempty,oneof=reserva confirmacion reversa_anulacion ajuste"`
	Page          int    `form:"page,default=1"   validate:"min=1"`
	Limit         int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type MovimientoStockResponse struct {
	ID            string          `json:"id"`
	ArticuloID    string          `json:"articulo_id"`
	Sucursal      string          `json:"sucursal"`
	Cantidad      decimal.Decimal `json:"cantidad"`
	ComprobanteID string          `json:"comprobante_id"`
	Motivo        string          `json:"motivo"`
	CreatedAt     string          `json:"created_at"`
}

type MovimientoStockListResponse struct {
	Data  []MovimientoStockResponse `json:"data"`
	Total int64                     `json:"total"`
	Page  int                       `json:"page"`
	Limit int                       `json:"limit"`
}

// StockActualResponse is the aggregate answer of GET /v1/stock/:articulo_id.
type StockActualResponse struct {
	ArticuloID string          `json:"articulo_id"`
	Sucursal   string          `json:"sucursal"`
	Stock      decimal.Decimal `json:"stock"`
}
