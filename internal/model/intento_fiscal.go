package model

import (
	"time"

	"github.com/google/uuid"
)

// Resultados de un intento de autorización fiscal.
const (
	IntentoPendiente    = "pendiente"
	IntentoAprobado     = "aprobado"
	IntentoRechazado    = "rechazado"
	IntentoSinRespuesta = "sin_respuesta"
)

// IntentoFiscal registra cada llamada a AFIP para un comprobante.
// Aprobado y rechazado son terminales; sin_respuesta puede reintentarse
// generando un nuevo NroIntento. Los intentos se persisten fuera de la
// transacción de negocio para que sobrevivan a un rollback.
type IntentoFiscal struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ComprobanteID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	NroIntento     int        `gorm:"not null"`
	SolicitadoEn   time.Time  `gorm:"not null"`
	Resultado      string     `gorm:"type:varchar(20);not null;default:'pendiente'"`
	CAE            *string    `gorm:"type:varchar(20);column:cae"`
	CAEVencimiento *time.Time `gorm:"column:cae_vencimiento"`
	DetalleError   *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName overrides GORM's default pluralization.
func (IntentoFiscal) TableName() string { return "intentos_fiscales" }
