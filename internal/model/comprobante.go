package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tipos de comprobante. Las secuencias de numeración son independientes
// por (tipo, sucursal).
const (
	TipoPreventa    = "PRV"
	TipoPedido      = "PED"
	TipoFactura     = "FCA"
	TipoNotaCredito = "NCA"
	TipoNotaDebito  = "NDA"
)

// Estados del ciclo de vida de un comprobante.
const (
	EstadoBorrador   = "borrador"
	EstadoConfirmado = "confirmado"
	EstadoFacturado  = "facturado"
	EstadoAnulado    = "anulado"
)

// Estado fiscal frente a AFIP. Vacío para tipos no fiscales (PRV, PED).
const (
	FiscalPendiente  = "pendiente"
	FiscalAutorizado = "autorizado"
	FiscalRechazado  = "rechazado"
)

// TiposValidos enumera los tipos reconocidos por el asignador de números.
var TiposValidos = map[string]bool{
	TipoPreventa:    true,
	TipoPedido:      true,
	TipoFactura:     true,
	TipoNotaCredito: true,
	TipoNotaDebito:  true,
}

// TiposFiscales son los tipos que requieren CAE para tener validez legal.
var TiposFiscales = map[string]bool{
	TipoFactura:     true,
	TipoNotaCredito: true,
	TipoNotaDebito:  true,
}

// Comprobante es el documento comercial genérico: preventa, pedido,
// factura, nota de crédito o nota de débito. El número se asigna recién
// al confirmar; los ítems y totales quedan congelados a partir de ahí.
type Comprobante struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Tipo     string    `gorm:"type:varchar(3);not null;uniqueIndex:idx_comprobante_numero"`
	Sucursal string    `gorm:"type:varchar(4);not null;uniqueIndex:idx_comprobante_numero"`
	// Numero es la cadena de 8 dígitos con ceros a la izquierda ("00000001").
	// NULL mientras el comprobante está en borrador.
	Numero       *string   `gorm:"type:varchar(8);uniqueIndex:idx_comprobante_numero"`
	Estado       string    `gorm:"type:varchar(20);not null;default:'borrador';index"`
	FechaEmision time.Time `gorm:"not null"`

	ClienteID  *uuid.UUID `gorm:"type:uuid;index"`
	VendedorID *uuid.UUID `gorm:"type:uuid"`

	// PorStock indica si los ítems validan y descuentan stock. Cuando es
	// false los movimientos igual se registran (auditoría) pero no se
	// valida stock negativo.
	PorStock bool `gorm:"not null;default:true"`

	Items       []ComprobanteItem `gorm:"foreignKey:ComprobanteID"`
	DetallesIVA []ComprobanteIVA  `gorm:"foreignKey:ComprobanteID"`

	ImporteBruto     decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	ImporteDescuento decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	ImporteNeto      decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	ImporteIVA       decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0;column:importe_iva"`
	ImporteTotal     decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`

	// DocumentoOrigenID enlaza hacia atrás: una factura referencia la
	// preventa/pedido que la originó; una nota de crédito, la factura
	// que acredita. Es una referencia de solo lectura, nunca un segundo
	// dueño del documento origen.
	DocumentoOrigenID *uuid.UUID `gorm:"type:uuid;index"`
	// ConvertidoAID apunta al documento downstream generado a partir de
	// éste (preventa → factura). Mientras exista y no esté anulado, el
	// origen no puede anularse.
	ConvertidoAID *uuid.UUID `gorm:"type:uuid"`

	// Autorización fiscal (solo FCA/NCA/NDA)
	EstadoFiscal   string     `gorm:"type:varchar(20);index"`
	CAE            *string    `gorm:"type:varchar(20);column:cae"`
	CAEVencimiento *time.Time `gorm:"column:cae_vencimiento"`
	AutorizadoEn   *time.Time

	// Campos de reintento usados por el cron de autorización
	IntentosCAE      int        `gorm:"not null;default:0;column:intentos_cae"`
	ProximoReintento *time.Time `gorm:"index"`
	UltimoErrorCAE   *string    `gorm:"column:ultimo_error_cae"`

	PDFPath         *string `gorm:"column:pdf_path"`
	MotivoAnulacion *string

	CreatedAt time.Time
	UpdatedAt time.Time

	Cliente         *Cliente     `gorm:"foreignKey:ClienteID"`
	DocumentoOrigen *Comprobante `gorm:"foreignKey:DocumentoOrigenID"`
}

// EsFiscal indica si el comprobante requiere CAE.
func (c *Comprobante) EsFiscal() bool { return TiposFiscales[c.Tipo] }

// ComprobanteItem es una línea del comprobante. La cantidad se separa en
// parte entera y fraccional (unidades sueltas vs. peso/volumen).
type ComprobanteItem struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ComprobanteID uuid.UUID `gorm:"type:uuid;not null;index"`
	ArticuloID    uuid.UUID `gorm:"type:uuid;not null"`

	CantidadEntera   int             `gorm:"not null"`
	CantidadFraccion decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	PrecioUnitario   decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	DescuentoPorc    decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	// AlicuotaIVA es el porcentaje de IVA de la línea (21, 10.5, 0).
	AlicuotaIVA  decimal.Decimal `gorm:"type:decimal(5,2);not null;column:alicuota_iva"`
	ImporteLinea decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`

	Articulo *Articulo `gorm:"foreignKey:ArticuloID"`
}

// Cantidad devuelve la cantidad total de la línea (entera + fraccional).
func (i *ComprobanteItem) Cantidad() decimal.Decimal {
	return decimal.NewFromInt(int64(i.CantidadEntera)).Add(i.CantidadFraccion)
}

// ComprobanteIVA es el desglose de IVA por alícuota, congelado junto con
// los totales al confirmar.
type ComprobanteIVA struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ComprobanteID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Alicuota      decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	BaseImponible decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Importe       decimal.Decimal `gorm:"type:decimal(14,2);not null"`
}

// TableName overrides GORM's default pluralization.
func (ComprobanteIVA) TableName() string { return "comprobante_iva" }
