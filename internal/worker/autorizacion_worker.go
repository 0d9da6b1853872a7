package worker

// autorizacion_worker.go
// Processes CAE retry jobs from QueueAutorizacion. The heavy lifting
// (attempt accounting, backoff scheduling, circuit breaker) lives in the
// service layer; the worker only drives it and routes terminal failures
// to the DLQ.

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/parinohernan/janus314-sub001/internal/service"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type AutorizacionWorker struct {
	comprobantes service.ComprobanteService
	rdb          *redis.Client
}

func NewAutorizacionWorker(comprobantes service.ComprobanteService, rdb *redis.Client) *AutorizacionWorker {
	return &AutorizacionWorker{comprobantes: comprobantes, rdb: rdb}
}

func (w *AutorizacionWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload AutorizacionJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("autorizacion_worker: invalid payload")
		return
	}

	id, err := uuid.Parse(payload.ComprobanteID)
	if err != nil {
		log.Error().Str("comprobante_id", payload.ComprobanteID).Msg("autorizacion_worker: invalid comprobante_id")
		return
	}

	resp, err := w.comprobantes.ReintentarAutorizacion(ctx, id)
	switch {
	case err == nil:
		log.Info().Str("comprobante_id", payload.ComprobanteID).Msg("autorizacion_worker: CAE resuelto")

	case errors.Is(err, service.ErrAutorizacionDiferida):
		// Queda agendado en proximo_reintento; el cron lo retoma.
		log.Warn().Str("comprobante_id", payload.ComprobanteID).Msg("autorizacion_worker: AFIP sigue sin responder")

	case errors.Is(err, service.ErrAutorizacionRechazada):
		log.Warn().Str("comprobante_id", payload.ComprobanteID).Msg("autorizacion_worker: comprobante rechazado por AFIP")

	case errors.Is(err, service.ErrAutorizacionFallida):
		intentos := 0
		if resp != nil {
			intentos = resp.IntentosCAE
		}
		SendToDLQ(ctx, w.rdb, QueueAutorizacion, payload.ComprobanteID, err.Error(), intentos)
		log.Error().Str("comprobante_id", payload.ComprobanteID).Msg("autorizacion_worker: reintentos agotados, a DLQ")

	default:
		log.Error().Err(err).Str("comprobante_id", payload.ComprobanteID).Msg("autorizacion_worker: fallo inesperado")
	}
}
