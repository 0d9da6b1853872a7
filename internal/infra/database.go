package infra

import (
	"fmt"

	"github.com/parinohernan/janus314-sub001/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establece la conexión GORM sobre pgx y migra el esquema.
// El aislamiento repeatable read de las operaciones de negocio se fija
// por transacción en la capa de servicio, no acá.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return db, nil
}

// RunMigrations crea / actualiza todas las tablas del motor.
func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Articulo{},
		&model.Cliente{},
		&model.Comprobante{},
		&model.ComprobanteItem{},
		&model.ComprobanteIVA{},
		&model.NumeroControl{},
		&model.MovimientoStock{},
		&model.IntentoFiscal{},
	)
}
