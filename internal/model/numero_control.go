package model

import "time"

// NumeroControl guarda el próximo número a emitir para cada par
// (tipo, sucursal). La fila se bloquea con FOR UPDATE dentro de la
// transacción que confirma el comprobante, de modo que dos emisiones
// concurrentes de la misma clave nunca observen el mismo valor.
// Las filas se crean en 1 la primera vez y no se borran jamás.
type NumeroControl struct {
	Tipo          string `gorm:"type:varchar(3);primaryKey"`
	Sucursal      string `gorm:"type:varchar(4);primaryKey"`
	ProximoNumero int64  `gorm:"not null;default:1"`
	UltimaEmision *time.Time
}

// TableName overrides GORM's default pluralization.
func (NumeroControl) TableName() string { return "numeros_control" }
