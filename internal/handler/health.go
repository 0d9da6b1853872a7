package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/parinohernan/janus314-sub001/internal/infra"
	"github.com/parinohernan/janus314-sub001/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health returns a JSON health check response.
// Checks DB and Redis connectivity and reports the AFIP circuit breaker
// state plus the depth of the authorization DLQ; never exposes
// credentials or internals.
func Health(db *gorm.DB, rdb *redis.Client, afipCB *infra.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "connected"
		var dlqAutorizacion int64
		if rdb.Ping(ctx).Err() != nil {
			redisStatus = "error"
		} else if n, err := worker.DLQLength(ctx, rdb, worker.QueueAutorizacion); err == nil {
			dlqAutorizacion = n
		}

		cbStatus := "closed"
		switch afipCB.State() {
		case infra.CBOpen:
			cbStatus = "open"
		case infra.CBHalfOpen:
			cbStatus = "half-open"
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":               status == http.StatusOK,
			"db":               dbStatus,
			"redis":            redisStatus,
			"afip_circuit":     cbStatus,
			"dlq_autorizacion": dlqAutorizacion,
		})
	}
}
