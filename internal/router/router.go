package router

import (
	"time"

	"github.com/parinohernan/janus314-sub001/internal/config"
	"github.com/parinohernan/janus314-sub001/internal/handler"
	"github.com/parinohernan/janus314-sub001/internal/infra"
	"github.com/parinohernan/janus314-sub001/internal/middleware"
	"github.com/parinohernan/janus314-sub001/internal/repository"
	"github.com/parinohernan/janus314-sub001/internal/service"
	"github.com/parinohernan/janus314-sub001/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, afipCB *infra.CircuitBreaker, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Infrastructure ───────────────────────────────────────────────────────
	afipClient := infra.NewAFIPClient(cfg.AFIPSidecarURL, time.Duration(cfg.AFIPTimeoutSeconds)*time.Second)

	// ── Repositories ─────────────────────────────────────────────────────────
	comprobanteRepo := repository.NewComprobanteRepository(db)
	numeroControlRepo := repository.NewNumeroControlRepository(db)
	movimientoStockRepo := repository.NewMovimientoStockRepository(db)
	intentoFiscalRepo := repository.NewIntentoFiscalRepository(db)
	articuloRepo := repository.NewArticuloRepository(db)
	clienteRepo := repository.NewClienteRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	numeracionSvc := service.NewNumeracionService(numeroControlRepo)
	stockSvc := service.NewStockService(movimientoStockRepo, rdb)
	fiscalSvc := service.NewFiscalService(afipClient, afipCB, intentoFiscalRepo,
		cfg.AFIPCUITEmisor, time.Duration(cfg.AFIPTimeoutSeconds)*time.Second)
	comprobanteSvc := service.NewComprobanteService(
		comprobanteRepo, articuloRepo, clienteRepo,
		numeracionSvc, stockSvc, fiscalSvc,
		dispatcher, cfg.AFIPMaxIntentos)

	// ── Handlers ─────────────────────────────────────────────────────────────
	comprobantesH := handler.NewComprobantesHandler(comprobanteSvc)
	stockH := handler.NewStockHandler(stockSvc)
	articulosH := handler.NewArticulosHandler(articuloRepo)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, afipCB))
	// Consulta de stock: pública y de solo lectura
	r.GET("/v1/stock/:articulo_id", stockH.StockActual)

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: vendedor, supervisor, administrador — declared per-endpoint
		v1.POST("/comprobantes", middleware.RequireRole("vendedor", "supervisor", "administrador"), comprobantesH.Crear)
		v1.GET("/comprobantes", middleware.RequireRole("vendedor", "supervisor", "administrador"), comprobantesH.Listar)
		v1.GET("/comprobantes/:id", middleware.RequireRole("vendedor", "supervisor", "administrador"), comprobantesH.Obtener)
		v1.POST("/comprobantes/:id/confirmar", middleware.RequireRole("vendedor", "supervisor", "administrador"), comprobantesH.Confirmar)
		v1.POST("/comprobantes/:id/facturar", middleware.RequireRole("supervisor", "administrador"), comprobantesH.Facturar)
		// Anular y reintento fiscal — solo administrador
		v1.DELETE("/comprobantes/:id", middleware.RequireRole("administrador"), comprobantesH.Anular)
		v1.POST("/comprobantes/:id/reintentar-cae", middleware.RequireRole("administrador"), comprobantesH.ReintentarAutorizacion)

		// Catálogo solo lectura
		v1.GET("/articulos", middleware.RequireRole("vendedor", "supervisor", "administrador"), articulosH.Listar)
		v1.GET("/articulos/:id", middleware.RequireRole("vendedor", "supervisor", "administrador"), articulosH.Obtener)

		// Libro de movimientos — requiere credenciales
		v1.GET("/stock/movimientos", middleware.RequireRole("vendedor", "supervisor", "administrador"), stockH.ListarMovimientos)
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
