package repository

import (
	"context"

	"github.com/parinohernan/janus314-sub001/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MovimientoStockFilter define los filtros para listar movimientos.
type MovimientoStockFilter struct {
	ArticuloID    *uuid.UUID
	ComprobanteID *uuid.UUID
	Sucursal      string
	Motivo        string
	Page          int
	Limit         int
}

type MovimientoStockRepository interface {
	CreateTx(tx *gorm.DB, m *model.MovimientoStock) error
	// ListByComprobanteTx devuelve los movimientos atribuidos a un
	// comprobante dentro de la transacción en curso.
	ListByComprobanteTx(tx *gorm.DB, comprobanteID uuid.UUID) ([]model.MovimientoStock, error)
	// ExisteReversaTx informa si ya se registró una reversa para el
	// comprobante (hace idempotente a RevertirMovimientos).
	ExisteReversaTx(tx *gorm.DB, comprobanteID uuid.UUID) (bool, error)
	// SumTx suma los movimientos de (artículo, sucursal) con el
	// aislamiento de la transacción en curso.
	SumTx(tx *gorm.DB, articuloID uuid.UUID, sucursal string) (decimal.Decimal, error)
	// Sum es la variante de solo lectura, sin transacción.
	Sum(ctx context.Context, articuloID uuid.UUID, sucursal string) (decimal.Decimal, error)
	List(ctx context.Context, filter MovimientoStockFilter) ([]model.MovimientoStock, int64, error)
}

type movimientoStockRepo struct{ db *gorm.DB }

func NewMovimientoStockRepository(db *gorm.DB) MovimientoStockRepository {
	return &movimientoStockRepo{db: db}
}

func (r *movimientoStockRepo) CreateTx(tx *gorm.DB, m *model.MovimientoStock) error {
	return tx.Create(m).Error
}

func (r *movimientoStockRepo) ListByComprobanteTx(tx *gorm.DB, comprobanteID uuid.UUID) ([]model.MovimientoStock, error) {
	var movs []model.MovimientoStock
	err := tx.Where("comprobante_id = ?", comprobanteID).
		Order("created_at").
		Find(&movs).Error
	return movs, err
}

func (r *movimientoStockRepo) ExisteReversaTx(tx *gorm.DB, comprobanteID uuid.UUID) (bool, error) {
	var n int64
	err := tx.Model(&model.MovimientoStock{}).
		Where("comprobante_id = ? AND motivo = ?", comprobanteID, model.MotivoReversaAnulacion).
		Count(&n).Error
	return n > 0, err
}

func (r *movimientoStockRepo) SumTx(tx *gorm.DB, articuloID uuid.UUID, sucursal string) (decimal.Decimal, error) {
	return sumMovimientos(tx, articuloID, sucursal)
}

func (r *movimientoStockRepo) Sum(ctx context.Context, articuloID uuid.UUID, sucursal string) (decimal.Decimal, error) {
	return sumMovimientos(r.db.WithContext(ctx), articuloID, sucursal)
}

func sumMovimientos(db *gorm.DB, articuloID uuid.UUID, sucursal string) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := db.Model(&model.MovimientoStock{}).
		Select("SUM(cantidad)").
		Where("articulo_id = ? AND sucursal = ?", articuloID, sucursal).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

func (r *movimientoStockRepo) List(ctx context.Context, filter MovimientoStockFilter) ([]model.MovimientoStock, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.MovimientoStock{}).Preload("Articulo")
	if filter.ArticuloID != nil {
		q = q.Where("articulo_id = ?", *filter.ArticuloID)
	}
	if filter.ComprobanteID != nil {
		q = q.Where("comprobante_id = ?", *filter.ComprobanteID)
	}
	if filter.Sucursal != "" {
		q = q.Where("sucursal = ?", filter.Sucursal)
	}
	if filter.Motivo != "" {
		q = q.Where("motivo = ?", filter.Motivo)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	limit := filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}
	offset := (page - 1) * limit

	var movs []model.MovimientoStock
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&movs).Error
	return movs, total, err
}
