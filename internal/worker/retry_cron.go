package worker

// retry_cron.go
// Background goroutine that periodically re-drives comprobantes stuck
// with estado_fiscal='pendiente' and a proximo_reintento in the past.
// Checks the Circuit Breaker before each tick to avoid hammering a
// downed AFIP sidecar.

import (
	"context"
	"errors"
	"time"

	"github.com/parinohernan/janus314-sub001/internal/infra"
	"github.com/parinohernan/janus314-sub001/internal/repository"
	"github.com/parinohernan/janus314-sub001/internal/service"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = 30 * time.Second
	retryBatchSize    = 10
)

// RetryCronConfig holds all dependencies for the retry goroutine.
type RetryCronConfig struct {
	ComprobanteRepo repository.ComprobanteRepository
	Comprobantes    service.ComprobanteService
	CB              *infra.CircuitBreaker
	RDB             *redis.Client
}

// StartRetryCron launches a background goroutine that ticks every 30s,
// queries pending comprobantes, and re-attempts the CAE request through
// the service layer. It respects the context for graceful shutdown.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				processRetries(ctx, cfg)
			}
		}
	}()
}

func processRetries(ctx context.Context, cfg RetryCronConfig) {
	// If CB is open, skip entirely — don't hammer a downed sidecar
	if cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("retry_cron: circuit breaker is open, skipping tick")
		return
	}

	pendientes, err := cfg.ComprobanteRepo.ListPendientesFiscales(ctx, time.Now(), retryBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to query pending comprobantes")
		return
	}
	if len(pendientes) == 0 {
		return
	}

	log.Info().Int("count", len(pendientes)).Msg("retry_cron: processing pending comprobantes")

	for i := range pendientes {
		// Check CB state before each call — it may have tripped mid-batch
		if cfg.CB.State() == infra.CBOpen {
			log.Debug().Msg("retry_cron: circuit breaker opened mid-batch, stopping")
			return
		}

		comp := &pendientes[i]
		resp, err := cfg.Comprobantes.ReintentarAutorizacion(ctx, comp.ID)

		switch {
		case err == nil:
			log.Info().
				Str("comprobante_id", comp.ID.String()).
				Msg("retry_cron: CAE obtained after retry")

		case errors.Is(err, service.ErrAutorizacionDiferida):
			log.Warn().
				Str("comprobante_id", comp.ID.String()).
				Msg("retry_cron: AFIP still unavailable, next attempt scheduled")

		case errors.Is(err, service.ErrAutorizacionRechazada):
			log.Warn().
				Str("comprobante_id", comp.ID.String()).
				Msg("retry_cron: AFIP rejected on retry")

		case errors.Is(err, service.ErrAutorizacionFallida):
			intentos := comp.IntentosCAE
			if resp != nil {
				intentos = resp.IntentosCAE
			}
			SendToDLQ(ctx, cfg.RDB, QueueAutorizacion, comp.ID.String(), err.Error(), intentos)
			log.Error().
				Str("comprobante_id", comp.ID.String()).
				Int("intentos", intentos).
				Msg("retry_cron: max retries exceeded, moved to DLQ")

		default:
			log.Error().Err(err).
				Str("comprobante_id", comp.ID.String()).
				Msg("retry_cron: unexpected failure")
		}
	}
}
