package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Motivos de movimiento de stock.
const (
	MotivoConfirmacion     = "confirmacion"
	MotivoReversaAnulacion = "reversa_anulacion"
	MotivoAjuste           = "ajuste"
)

// MovimientoStock es una entrada del libro de stock, append-only: el
// stock actual de un artículo en una sucursal es la suma de todos sus
// movimientos. Las anulaciones registran entradas compensatorias, nunca
// borran historia.
type MovimientoStock struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ArticuloID uuid.UUID `gorm:"type:uuid;not null;index:idx_stock_articulo_sucursal"`
	Sucursal   string    `gorm:"type:varchar(4);not null;index:idx_stock_articulo_sucursal"`
	// Cantidad con signo: positiva = entrada, negativa = salida.
	Cantidad decimal.Decimal `gorm:"type:decimal(14,3);not null"`
	// ComprobanteID identifica el documento que originó el movimiento.
	ComprobanteID uuid.UUID `gorm:"type:uuid;not null;index"`
	Motivo        string    `gorm:"type:varchar(20);not null"`
	CreatedAt     time.Time

	Articulo *Articulo `gorm:"foreignKey:ArticuloID"`
}

// TableName overrides GORM's default pluralization.
func (MovimientoStock) TableName() string { return "movimientos_stock" }
