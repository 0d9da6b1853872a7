package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueAutorizacion = "jobs:autorizacion"
	QueueEmision      = "jobs:emision"
	QueueEmail        = "jobs:email"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AutorizacionJobPayload re-drives the CAE request of a pending comprobante.
type AutorizacionJobPayload struct {
	ComprobanteID string `json:"comprobante_id"`
}

// EmisionJobPayload triggers PDF generation for an authorized comprobante.
type EmisionJobPayload struct {
	ComprobanteID string `json:"comprobante_id"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueAutorizacion pushes a CAE retry job to Redis.
func (d *Dispatcher) EnqueueAutorizacion(ctx context.Context, comprobanteID string) error {
	return d.enqueue(ctx, QueueAutorizacion, "autorizacion", AutorizacionJobPayload{ComprobanteID: comprobanteID})
}

// EnqueueEmision pushes a PDF emission job to Redis.
func (d *Dispatcher) EnqueueEmision(ctx context.Context, comprobanteID string) error {
	return d.enqueue(ctx, QueueEmision, "emision", EmisionJobPayload{ComprobanteID: comprobanteID})
}

// EnqueueEmail pushes an email job to Redis.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload EmailJobPayload) error {
	return d.enqueue(ctx, QueueEmail, "email", payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// Handlers agrupa los procesadores de cada cola.
type Handlers struct {
	Autorizacion *AutorizacionWorker
	Emision      *EmisionWorker
	Email        *EmailWorker
}

// StartWorkerPool launches numWorkers goroutines consuming the three queues.
// Each goroutine blocks on BRPOP — zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, numWorkers int, h Handlers) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, i, h)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, id int, h Handlers) {
	queues := []string{QueueAutorizacion, QueueEmision, QueueEmail}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, result[0], result[1], h)
		}
	}
}

func processJob(ctx context.Context, queue, raw string, h Handlers) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}

	switch queue {
	case QueueAutorizacion:
		if h.Autorizacion != nil {
			h.Autorizacion.Process(ctx, job.Payload)
		}
	case QueueEmision:
		if h.Emision != nil {
			h.Emision.Process(ctx, job.Payload)
		}
	case QueueEmail:
		if h.Email != nil {
			h.Email.Process(ctx, job.Payload)
		}
	default:
		log.Warn().Str("queue", queue).Str("type", job.Type).Msg("job from unknown queue")
	}
}
