package worker

// dlq.go — cola de castigo de autorizaciones.
// Un comprobante que agota su presupuesto de reintentos de CAE queda
// pendiente en la base; acá se estaciona su referencia en una lista
// Redis (dlq:{cola}) para intervención manual.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DLQPrefix = "dlq:"

// DLQEntry referencia al comprobante varado, con el contexto mínimo para
// decidir qué hacer con él sin ir a buscar los logs.
type DLQEntry struct {
	ColaOrigen    string    `json:"cola_origen"`
	ComprobanteID string    `json:"comprobante_id"`
	Motivo        string    `json:"motivo"`
	IntentosCAE   int       `json:"intentos_cae"`
	FallidoEn     time.Time `json:"fallido_en"`
}

// SendToDLQ estaciona el comprobante en la cola de castigo. Best-effort:
// un push fallido se loguea y nada más, el estado de verdad vive en la
// base (estado_fiscal pendiente, sin próximo reintento).
func SendToDLQ(ctx context.Context, rdb *redis.Client, cola, comprobanteID, motivo string, intentosCAE int) {
	entry := DLQEntry{
		ColaOrigen:    cola,
		ComprobanteID: comprobanteID,
		Motivo:        motivo,
		IntentosCAE:   intentosCAE,
		FallidoEn:     time.Now().UTC(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("comprobante_id", comprobanteID).Msg("dlq: no se pudo serializar la entrada")
		return
	}

	key := DLQPrefix + cola
	if err := rdb.LPush(ctx, key, data).Err(); err != nil {
		log.Error().Err(err).Str("dlq_key", key).Msg("dlq: no se pudo encolar")
		return
	}

	log.Warn().
		Str("comprobante_id", comprobanteID).
		Str("cola", cola).
		Str("motivo", motivo).
		Int("intentos_cae", intentosCAE).
		Msg("dlq: comprobante estacionado para intervención manual")
}

// DLQLength devuelve la cantidad de comprobantes varados en una cola.
func DLQLength(ctx context.Context, rdb *redis.Client, cola string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+cola).Result()
}
