package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// ComprobanteFilter is bound from query string of GET /v1/comprobantes.
type ComprobanteFilter struct {
	Tipo     string `form:"tipo"     validate:"omitempty,oneof=PRV PED FCA NCA NDA"`
	Sucursal string `form:"sucursal" validate:"omitempty,len=4,numeric"`
	Estado   string `form:"estado,default=all"` // borrador | confirmado | facturado | anulado | all
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type ComprobanteListResponse struct {
	Data  []ComprobanteResponse `json:"data"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ItemComprobanteRequest struct {
	ArticuloID       string          `json:"articulo_id"       validate:"required,uuid"`
	CantidadEntera   int             `json:"cantidad_entera"   validate:"min=0"`
	CantidadFraccion decimal.Decimal `json:"cantidad_fraccion"`
	// PrecioUnitario: optional override; omitted = precio de lista del artículo.
	PrecioUnitario *decimal.Decimal `json:"precio_unitario" validate:"omitempty"`
	DescuentoPorc  decimal.Decimal  `json:"descuento_porc"  validate:"min=0,max=100"`
}

type CrearComprobanteRequest struct {
	Tipo     string                   `json:"tipo"     validate:"required,oneof=PRV PED FCA NCA NDA"`
	Sucursal string                   `json:"sucursal" validate:"required,len=4,numeric"`
	// ClienteID is required at confirmation time; a draft may start without it.
	ClienteID *string                  `json:"cliente_id" validate:"omitempty,uuid"`
	PorStock  *bool                    `json:"por_stock"` // nil = true
	Items     []ItemComprobanteRequest `json:"items"      validate:"omitempty,dive"`
	// DocumentoOrigenID: an NCA/NDA references the factura it adjusts.
	DocumentoOrigenID *string `json:"documento_origen_id" validate:"omitempty,uuid"`
}

type AnularComprobanteRequest struct {
	Motivo string `json:"motivo" validate:"required,min=5"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemComprobanteResponse struct {
	ArticuloID     string          `json:"articulo_id"`
	Articulo       string          `json:"articulo,omitempty"`
	Cantidad       decimal.Decimal `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	DescuentoPorc  decimal.Decimal `json:"descuento_porc"`
	AlicuotaIVA    decimal.Decimal `json:"alicuota_iva"`
	ImporteLinea   decimal.Decimal `json:"importe_linea"`
}

type DetalleIVAResponse struct {
	Alicuota      decimal.Decimal `json:"alicuota"`
	BaseImponible decimal.Decimal `json:"base_imponible"`
	Importe       decimal.Decimal `json:"importe"`
}

type ComprobanteResponse struct {
	ID           string  `json:"id"`
	Tipo         string  `json:"tipo"`
	Sucursal     string  `json:"sucursal"`
	Numero       *string `json:"numero"`
	Estado       string  `json:"estado"`
	EstadoFiscal string  `json:"estado_fiscal,omitempty"`
	FechaEmision string  `json:"fecha_emision"`

	ClienteID *string `json:"cliente_id,omitempty"`
	Cliente   string  `json:"cliente,omitempty"`
	PorStock  bool    `json:"por_stock"`

	Items       []ItemComprobanteResponse `json:"items"`
	DetallesIVA []DetalleIVAResponse      `json:"detalles_iva,omitempty"`

	ImporteBruto     decimal.Decimal `json:"importe_bruto"`
	ImporteDescuento decimal.Decimal `json:"importe_descuento"`
	ImporteNeto      decimal.Decimal `json:"importe_neto"`
	ImporteIVA       decimal.Decimal `json:"importe_iva"`
	ImporteTotal     decimal.Decimal `json:"importe_total"`

	DocumentoOrigenID *string `json:"documento_origen_id,omitempty"`
	ConvertidoAID     *string `json:"convertido_a_id,omitempty"`

	CAE             *string `json:"cae,omitempty"`
	CAEVencimiento  *string `json:"cae_vencimiento,omitempty"`
	IntentosCAE     int     `json:"intentos_cae,omitempty"`
	MotivoAnulacion *string `json:"motivo_anulacion,omitempty"`

	CreatedAt string `json:"created_at"`
}
