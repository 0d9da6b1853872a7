package repository

import (
	"context"

	"github.com/parinohernan/janus314-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IntentoFiscalRepository persiste el historial de llamadas a AFIP.
// Escribe siempre contra la conexión raíz, nunca contra la transacción
// de negocio: un intento rechazado debe quedar registrado aunque la
// operación que lo disparó haga rollback.
type IntentoFiscalRepository interface {
	Create(ctx context.Context, i *model.IntentoFiscal) error
	Update(ctx context.Context, i *model.IntentoFiscal) error
	ProximoNroIntento(ctx context.Context, comprobanteID uuid.UUID) (int, error)
	ListByComprobante(ctx context.Context, comprobanteID uuid.UUID) ([]model.IntentoFiscal, error)
}

type intentoFiscalRepo struct{ db *gorm.DB }

func NewIntentoFiscalRepository(db *gorm.DB) IntentoFiscalRepository {
	return &intentoFiscalRepo{db: db}
}

func (r *intentoFiscalRepo) Create(ctx context.Context, i *model.IntentoFiscal) error {
	return r.db.WithContext(ctx).Create(i).Error
}

func (r *intentoFiscalRepo) Update(ctx context.Context, i *model.IntentoFiscal) error {
	return r.db.WithContext(ctx).Save(i).Error
}

func (r *intentoFiscalRepo) ProximoNroIntento(ctx context.Context, comprobanteID uuid.UUID) (int, error) {
	var max int
	err := r.db.WithContext(ctx).Model(&model.IntentoFiscal{}).
		Select("COALESCE(MAX(nro_intento), 0)").
		Where("comprobante_id = ?", comprobanteID).
		Scan(&max).Error
	return max + 1, err
}

func (r *intentoFiscalRepo) ListByComprobante(ctx context.Context, comprobanteID uuid.UUID) ([]model.IntentoFiscal, error) {
	var intentos []model.IntentoFiscal
	err := r.db.WithContext(ctx).
		Where("comprobante_id = ?", comprobanteID).
		Order("nro_intento").
		Find(&intentos).Error
	return intentos, err
}
