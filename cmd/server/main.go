package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/parinohernan/janus314-sub001/internal/config"
	"github.com/parinohernan/janus314-sub001/internal/infra"
	"github.com/parinohernan/janus314-sub001/internal/repository"
	"github.com/parinohernan/janus314-sub001/internal/router"
	"github.com/parinohernan/janus314-sub001/internal/service"
	"github.com/parinohernan/janus314-sub001/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Composition root for the async side: the worker pool and the retry
	// cron get their own service graph over the same DB/Redis handles.
	afipCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	afipClient := infra.NewAFIPClient(cfg.AFIPSidecarURL, time.Duration(cfg.AFIPTimeoutSeconds)*time.Second)
	mailer := infra.NewMailer(cfg)
	dispatcher := worker.NewDispatcher(rdb)

	comprobanteRepo := repository.NewComprobanteRepository(db)
	numeroControlRepo := repository.NewNumeroControlRepository(db)
	movimientoStockRepo := repository.NewMovimientoStockRepository(db)
	intentoFiscalRepo := repository.NewIntentoFiscalRepository(db)
	articuloRepo := repository.NewArticuloRepository(db)
	clienteRepo := repository.NewClienteRepository(db)

	numeracionSvc := service.NewNumeracionService(numeroControlRepo)
	stockSvc := service.NewStockService(movimientoStockRepo, rdb)
	fiscalSvc := service.NewFiscalService(afipClient, afipCB, intentoFiscalRepo,
		cfg.AFIPCUITEmisor, time.Duration(cfg.AFIPTimeoutSeconds)*time.Second)
	comprobanteSvc := service.NewComprobanteService(
		comprobanteRepo, articuloRepo, clienteRepo,
		numeracionSvc, stockSvc, fiscalSvc,
		dispatcher, cfg.AFIPMaxIntentos)

	handlers := worker.Handlers{
		Autorizacion: worker.NewAutorizacionWorker(comprobanteSvc, rdb),
		Emision:      worker.NewEmisionWorker(comprobanteRepo, dispatcher, cfg.PDFStoragePath),
		Email:        worker.NewEmailWorker(mailer),
	}
	worker.StartWorkerPool(ctx, rdb, cfg.WorkerPoolSize, handlers)

	worker.StartRetryCron(ctx, worker.RetryCronConfig{
		ComprobanteRepo: comprobanteRepo,
		Comprobantes:    comprobanteSvc,
		CB:              afipCB,
		RDB:             rdb,
	})

	r := router.New(cfg, db, rdb, afipCB, dispatcher)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("fiscal engine listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
