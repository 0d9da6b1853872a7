package repository

import (
	"context"
	"errors"
	"time"

	"github.com/parinohernan/janus314-sub001/internal/model"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrFilaBloqueada indica que la fila de numeración está tomada por otra
// transacción y el lock no pudo adquirirse dentro de la espera acotada.
// El servicio la traduce a un conflicto de asignación reintentable.
var ErrFilaBloqueada = errors.New("fila de numeración bloqueada por otra transacción")

type NumeroControlRepository interface {
	// SiguienteTx lee la fila (tipo, sucursal) con FOR UPDATE NOWAIT,
	// la incrementa y devuelve el valor pre-incremento. Debe invocarse
	// dentro de una transacción abierta: un rollback del llamador
	// deshace también la asignación.
	SiguienteTx(ctx context.Context, tx *gorm.DB, tipo, sucursal string) (int64, error)
	Listar(ctx context.Context) ([]model.NumeroControl, error)
}

type numeroControlRepo struct{ db *gorm.DB }

func NewNumeroControlRepository(db *gorm.DB) NumeroControlRepository {
	return &numeroControlRepo{db: db}
}

func (r *numeroControlRepo) SiguienteTx(ctx context.Context, tx *gorm.DB, tipo, sucursal string) (int64, error) {
	var nc model.NumeroControl
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "NOWAIT"}).
		Where("tipo = ? AND sucursal = ?", tipo, sucursal).
		First(&nc).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		// Primera emisión de la clave: la fila nace en 1. Una creación
		// concurrente pierde por la PK compuesta y se trata como conflicto.
		nc = model.NumeroControl{Tipo: tipo, Sucursal: sucursal, ProximoNumero: 1}
		if err := tx.WithContext(ctx).Create(&nc).Error; err != nil {
			if esSQLState(err, "23505") {
				return 0, ErrFilaBloqueada
			}
			return 0, err
		}
	case err != nil:
		if esSQLState(err, "55P03") { // lock_not_available
			return 0, ErrFilaBloqueada
		}
		return 0, err
	}

	asignado := nc.ProximoNumero
	ahora := time.Now()
	err = tx.WithContext(ctx).Model(&model.NumeroControl{}).
		Where("tipo = ? AND sucursal = ?", tipo, sucursal).
		Updates(map[string]interface{}{
			"proximo_numero": asignado + 1,
			"ultima_emision": ahora,
		}).Error
	if err != nil {
		return 0, err
	}
	return asignado, nil
}

func (r *numeroControlRepo) Listar(ctx context.Context) ([]model.NumeroControl, error) {
	var numeros []model.NumeroControl
	err := r.db.WithContext(ctx).Order("tipo, sucursal").Find(&numeros).Error
	return numeros, err
}

// esSQLState detecta un SQLSTATE concreto en la cadena de errores de pgx.
func esSQLState(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
