package repository

import (
	"context"

	"github.com/parinohernan/janus314-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ArticuloRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Articulo, error)
	List(ctx context.Context, soloActivos bool) ([]model.Articulo, error)
}

type articuloRepo struct{ db *gorm.DB }

func NewArticuloRepository(db *gorm.DB) ArticuloRepository {
	return &articuloRepo{db: db}
}

func (r *articuloRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Articulo, error) {
	var a model.Articulo
	err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error
	return &a, err
}

func (r *articuloRepo) List(ctx context.Context, soloActivos bool) ([]model.Articulo, error) {
	q := r.db.WithContext(ctx)
	if soloActivos {
		q = q.Where("activo = true")
	}
	var articulos []model.Articulo
	err := q.Order("nombre").Find(&articulos).Error
	return articulos, err
}
