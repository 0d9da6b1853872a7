package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/parinohernan/janus314-sub001/internal/model"
	"github.com/parinohernan/janus314-sub001/internal/repository"

	"gorm.io/gorm"
)

// NumeracionService emite números secuenciales sin huecos ni colisiones
// por (tipo, sucursal). AsignarSiguiente debe invocarse dentro de la
// transacción del orquestador: si ésta hace rollback, el incremento se
// deshace y ningún número se quema por fallas. Solo el historial de
// intentos fiscales persiste fuera de la transacción.
type NumeracionService interface {
	AsignarSiguiente(ctx context.Context, tx *gorm.DB, tipo, sucursal string) (string, error)
}

type numeracionService struct {
	repo repository.NumeroControlRepository
}

func NewNumeracionService(repo repository.NumeroControlRepository) NumeracionService {
	return &numeracionService{repo: repo}
}

func (s *numeracionService) AsignarSiguiente(ctx context.Context, tx *gorm.DB, tipo, sucursal string) (string, error) {
	if !model.TiposValidos[tipo] || !sucursalValida(sucursal) {
		return "", fmt.Errorf("%w: tipo=%q sucursal=%q", ErrClaveInvalida, tipo, sucursal)
	}

	n, err := s.repo.SiguienteTx(ctx, tx, tipo, sucursal)
	if err != nil {
		if errors.Is(err, repository.ErrFilaBloqueada) {
			return "", ErrConflictoAsignacion
		}
		return "", fmt.Errorf("asignar número %s/%s: %w", tipo, sucursal, err)
	}
	return fmt.Sprintf("%08d", n), nil
}

// sucursalValida exige exactamente 4 dígitos ("0001").
func sucursalValida(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
