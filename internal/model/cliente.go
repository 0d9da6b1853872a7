package model

import (
	"time"

	"github.com/google/uuid"
)

// Cliente es el receptor de un comprobante. Igual que Articulo, es
// master data de solo lectura para el motor de numeración.
type Cliente struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RazonSocial  string    `gorm:"type:varchar(120);not null"`
	CUIT         *string   `gorm:"type:varchar(20);column:cuit"`
	Email        *string   `gorm:"type:varchar(120)"`
	CondicionIVA string    `gorm:"type:varchar(30);default:'consumidor_final';column:condicion_iva"`
	Activo       bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
