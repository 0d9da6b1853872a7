package infra

import (
	"errors"
	"sync"
	"time"
)

// ── Circuit breaker del sidecar AFIP ─────────────────────────────────────────
// Cuando el sidecar encadena fallas, seguir golpeándolo solo alarga cada
// emisión hasta su timeout. El breaker corta esas llamadas de entrada:
// para el servicio fiscal un circuito abierto equivale a "AFIP sin
// respuesta", así que la emisión continúa como autorización diferida y el
// cron la retoma cuando el circuito vuelve a cerrar.

// CBState es el estado del circuito.
type CBState int

const (
	CBClosed   CBState = iota // operación normal, las llamadas pasan
	CBOpen                    // cortado: toda llamada falla sin salir a la red
	CBHalfOpen                // sondeo: se dejan pasar llamadas de prueba
)

// String se expone en el health endpoint y en los logs.
func (s CBState) String() string {
	switch s {
	case CBClosed:
		return "closed"
	case CBOpen:
		return "open"
	case CBHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen corta Execute mientras el circuito está abierto.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreakerConfig parametriza el corte hacia el sidecar.
type CircuitBreakerConfig struct {
	FailureThreshold int           // fallas seguidas que abren el circuito
	SuccessThreshold int           // éxitos seguidos en half-open que lo cierran
	OpenTimeout      time.Duration // cuánto permanece abierto antes de sondear
}

// DefaultCBConfig tolera más fallas que reintentos locales tiene una
// emisión, para que una única factura con mala suerte no abra el circuito,
// y sondea bastante antes del primer backoff del cron de reintentos.
func DefaultCBConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		OpenTimeout:      60 * time.Second,
	}
}

// CircuitBreaker implementa el ciclo Closed → Open → Half-Open con
// transiciones seguras para uso concurrente.
type CircuitBreaker struct {
	mu  sync.Mutex
	cfg CircuitBreakerConfig

	estado         CBState
	fallasSeguidas int
	exitosSeguidos int
	abiertoDesde   time.Time
}

// NewCircuitBreaker arranca cerrado; la configuración se normaliza a los
// defaults campo por campo.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	def := DefaultCBConfig()
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = def.SuccessThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = def.OpenTimeout
	}
	return &CircuitBreaker{cfg: cfg, estado: CBClosed}
}

// State devuelve el estado vigente, aplicando de paso la transición
// open → half-open si el timeout de corte ya venció.
func (cb *CircuitBreaker) State() CBState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.estadoVigente()
}

// Execute corre fn salvo que el circuito esté abierto, y contabiliza el
// resultado para las transiciones.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if cb.State() == CBOpen {
		return ErrCircuitOpen
	}

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err != nil {
		cb.registrarFalla()
		return err
	}
	cb.registrarExito()
	return nil
}

// estadoVigente debe llamarse con el lock tomado.
func (cb *CircuitBreaker) estadoVigente() CBState {
	if cb.estado == CBOpen && time.Since(cb.abiertoDesde) >= cb.cfg.OpenTimeout {
		cb.estado = CBHalfOpen
		cb.exitosSeguidos = 0
	}
	return cb.estado
}

func (cb *CircuitBreaker) registrarFalla() {
	switch cb.estadoVigente() {
	case CBClosed:
		cb.fallasSeguidas++
		if cb.fallasSeguidas >= cb.cfg.FailureThreshold {
			cb.estado = CBOpen
			cb.abiertoDesde = time.Now()
			cb.exitosSeguidos = 0
		}
	case CBHalfOpen:
		// La sonda falló: el sidecar sigue caído
		cb.estado = CBOpen
		cb.abiertoDesde = time.Now()
		cb.fallasSeguidas = 0
	}
}

func (cb *CircuitBreaker) registrarExito() {
	switch cb.estadoVigente() {
	case CBClosed:
		cb.fallasSeguidas = 0
	case CBHalfOpen:
		cb.exitosSeguidos++
		if cb.exitosSeguidos >= cb.cfg.SuccessThreshold {
			cb.estado = CBClosed
			cb.fallasSeguidas = 0
			cb.exitosSeguidos = 0
		}
	}
}
