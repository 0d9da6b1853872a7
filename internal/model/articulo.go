package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Articulo es la entrada de catálogo que referencian las líneas de los
// comprobantes. El motor solo la lee; el ABM de catálogo vive fuera de
// este servicio.
type Articulo struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Codigo      string          `gorm:"type:varchar(30);uniqueIndex;not null"`
	Nombre      string          `gorm:"type:varchar(120);not null"`
	PrecioVenta decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	AlicuotaIVA decimal.Decimal `gorm:"type:decimal(5,2);not null;default:21;column:alicuota_iva"`
	Activo      bool            `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
