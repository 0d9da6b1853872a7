package service

import (
	"context"
	"fmt"
	"time"

	"github.com/parinohernan/janus314-sub001/internal/model"
	"github.com/parinohernan/janus314-sub001/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	stockCacheTTL    = 5 * time.Minute
	stockCachePrefix = "stock:"
)

// StockService mantiene el libro de movimientos de stock. El stock
// actual de (artículo, sucursal) es la suma de sus movimientos; el
// agregado se cachea en Redis y se invalida en cada append.
type StockService interface {
	// RegistrarMovimientoTx agrega una entrada dentro de la transacción
	// del orquestador. Con validar=true rechaza con ErrStockInsuficiente
	// todo movimiento que dejaría el stock negativo; con validar=false
	// (documentos sin control de stock) solo registra para auditoría.
	RegistrarMovimientoTx(ctx context.Context, tx *gorm.DB, mov *model.MovimientoStock, validar bool) error

	// RevertirMovimientosTx registra entradas compensatorias para todos
	// los movimientos atribuidos al comprobante. Idempotente: si ya hay
	// una reversa registrada no hace nada.
	RevertirMovimientosTx(ctx context.Context, tx *gorm.DB, comprobanteID uuid.UUID) error

	// StockActual devuelve la suma de movimientos, con caché de lectura.
	// No requiere transacción: pensada para consumidores de solo lectura.
	StockActual(ctx context.Context, articuloID uuid.UUID, sucursal string) (decimal.Decimal, error)

	ListarMovimientos(ctx context.Context, filter repository.MovimientoStockFilter) ([]model.MovimientoStock, int64, error)
}

type stockService struct {
	repo repository.MovimientoStockRepository
	rdb  *redis.Client
}

func NewStockService(repo repository.MovimientoStockRepository, rdb *redis.Client) StockService {
	return &stockService{repo: repo, rdb: rdb}
}

func (s *stockService) RegistrarMovimientoTx(ctx context.Context, tx *gorm.DB, mov *model.MovimientoStock, validar bool) error {
	if validar && mov.Cantidad.IsNegative() {
		actual, err := s.repo.SumTx(tx, mov.ArticuloID, mov.Sucursal)
		if err != nil {
			return fmt.Errorf("leer stock de %s: %w", mov.ArticuloID, err)
		}
		if actual.Add(mov.Cantidad).IsNegative() {
			return fmt.Errorf("%w: articulo=%s sucursal=%s disponible=%s solicitado=%s",
				ErrStockInsuficiente, mov.ArticuloID, mov.Sucursal,
				actual.String(), mov.Cantidad.Neg().String())
		}
	}

	if err := s.repo.CreateTx(tx, mov); err != nil {
		return err
	}
	s.invalidarCache(ctx, mov.ArticuloID, mov.Sucursal)
	return nil
}

func (s *stockService) RevertirMovimientosTx(ctx context.Context, tx *gorm.DB, comprobanteID uuid.UUID) error {
	yaRevertido, err := s.repo.ExisteReversaTx(tx, comprobanteID)
	if err != nil {
		return err
	}
	if yaRevertido {
		return nil
	}

	movs, err := s.repo.ListByComprobanteTx(tx, comprobanteID)
	if err != nil {
		return err
	}

	for i := range movs {
		reversa := &model.MovimientoStock{
			ArticuloID:    movs[i].ArticuloID,
			Sucursal:      movs[i].Sucursal,
			Cantidad:      movs[i].Cantidad.Neg(),
			ComprobanteID: comprobanteID,
			Motivo:        model.MotivoReversaAnulacion,
		}
		// La reversa nunca valida stock: deshacer historia siempre es legal.
		if err := s.repo.CreateTx(tx, reversa); err != nil {
			return err
		}
		s.invalidarCache(ctx, movs[i].ArticuloID, movs[i].Sucursal)
	}
	return nil
}

func (s *stockService) StockActual(ctx context.Context, articuloID uuid.UUID, sucursal string) (decimal.Decimal, error) {
	key := stockCacheKey(articuloID, sucursal)

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, key).Result(); err == nil {
			if d, derr := decimal.NewFromString(cached); derr == nil {
				return d, nil
			}
		}
	}

	total, err := s.repo.Sum(ctx, articuloID, sucursal)
	if err != nil {
		return decimal.Zero, err
	}

	if s.rdb != nil {
		if err := s.rdb.Set(ctx, key, total.String(), stockCacheTTL).Err(); err != nil {
			log.Debug().Err(err).Str("key", key).Msg("stock: cache set failed")
		}
	}
	return total, nil
}

func (s *stockService) ListarMovimientos(ctx context.Context, filter repository.MovimientoStockFilter) ([]model.MovimientoStock, int64, error) {
	return s.repo.List(ctx, filter)
}

// invalidarCache borra el agregado cacheado; best-effort, un DEL fallido
// solo alarga la vida del valor viejo hasta el TTL.
func (s *stockService) invalidarCache(ctx context.Context, articuloID uuid.UUID, sucursal string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, stockCacheKey(articuloID, sucursal)).Err(); err != nil {
		log.Debug().Err(err).Msg("stock: cache invalidation failed")
	}
}

func stockCacheKey(articuloID uuid.UUID, sucursal string) string {
	return stockCachePrefix + articuloID.String() + ":" + sucursal
}
