package repository

import (
	"context"
	"time"

	"github.com/parinohernan/janus314-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ComprobanteFilter define los filtros de listado.
type ComprobanteFilter struct {
	Tipo     string
	Sucursal string
	Estado   string
	Page     int
	Limit    int
}

type ComprobanteRepository interface {
	Create(ctx context.Context, tx *gorm.DB, c *model.Comprobante) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Comprobante, error)
	// FindByIDTx relee el comprobante con el aislamiento de la
	// transacción en curso (evita decidir sobre una lectura vieja).
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Comprobante, error)
	SaveTx(tx *gorm.DB, c *model.Comprobante) error
	Save(ctx context.Context, c *model.Comprobante) error
	List(ctx context.Context, filter ComprobanteFilter) ([]model.Comprobante, int64, error)
	// ListPendientesFiscales devuelve comprobantes con autorización
	// pendiente cuyo próximo reintento ya venció.
	ListPendientesFiscales(ctx context.Context, ahora time.Time, limit int) ([]model.Comprobante, error)
	DB() *gorm.DB // expone la DB para abrir transacciones en la capa de servicio
}

type comprobanteRepo struct{ db *gorm.DB }

func NewComprobanteRepository(db *gorm.DB) ComprobanteRepository {
	return &comprobanteRepo{db: db}
}

func (r *comprobanteRepo) DB() *gorm.DB { return r.db }

func (r *comprobanteRepo) Create(ctx context.Context, tx *gorm.DB, c *model.Comprobante) error {
	return tx.WithContext(ctx).Create(c).Error
}

func (r *comprobanteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Comprobante, error) {
	var c model.Comprobante
	err := r.db.WithContext(ctx).
		Preload("Items.Articulo").
		Preload("DetallesIVA").
		Preload("Cliente").
		First(&c, "id = ?", id).Error
	return &c, err
}

func (r *comprobanteRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Comprobante, error) {
	var c model.Comprobante
	err := tx.
		Preload("Items.Articulo").
		Preload("DetallesIVA").
		Preload("Cliente").
		First(&c, "id = ?", id).Error
	return &c, err
}

// SaveTx persiste el comprobante junto con sus asociaciones: al
// confirmar se escriben en el mismo Save los ítems congelados y el
// desglose de IVA recién calculado.
func (r *comprobanteRepo) SaveTx(tx *gorm.DB, c *model.Comprobante) error {
	return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(c).Error
}

func (r *comprobanteRepo) Save(ctx context.Context, c *model.Comprobante) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(c).Error
}

func (r *comprobanteRepo) List(ctx context.Context, filter ComprobanteFilter) ([]model.Comprobante, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Comprobante{})
	if filter.Tipo != "" {
		q = q.Where("tipo = ?", filter.Tipo)
	}
	if filter.Sucursal != "" {
		q = q.Where("sucursal = ?", filter.Sucursal)
	}
	if filter.Estado != "" && filter.Estado != "all" {
		q = q.Where("estado = ?", filter.Estado)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	var comps []model.Comprobante
	err := q.Preload("Items.Articulo").Preload("Cliente").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&comps).Error
	return comps, total, err
}

func (r *comprobanteRepo) ListPendientesFiscales(ctx context.Context, ahora time.Time, limit int) ([]model.Comprobante, error) {
	var comps []model.Comprobante
	err := r.db.WithContext(ctx).
		Where("estado_fiscal = ? AND proximo_reintento IS NOT NULL AND proximo_reintento <= ?",
			model.FiscalPendiente, ahora).
		Order("proximo_reintento").
		Limit(limit).
		Find(&comps).Error
	return comps, err
}
