package infra

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errSidecar = errors.New("sidecar down")

func cbParaTest() *CircuitBreaker {
	return NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 3,
		SuccessThreshold: 2,
		OpenTimeout:      50 * time.Millisecond,
	})
}

func fallar(cb *CircuitBreaker) error {
	return cb.Execute(func() error { return errSidecar })
}

func TestCircuitBreakerAbreTrasFallasConsecutivas(t *testing.T) {
	cb := cbParaTest()

	for i := 0; i < 2; i++ {
		assert.ErrorIs(t, fallar(cb), errSidecar)
		assert.Equal(t, CBClosed, cb.State(), "sigue cerrado tras %d fallas", i+1)
	}
	assert.ErrorIs(t, fallar(cb), errSidecar)
	assert.Equal(t, CBOpen, cb.State())
}

func TestCircuitBreakerAbiertoFallaRapidoSinEjecutar(t *testing.T) {
	cb := cbParaTest()
	for i := 0; i < 3; i++ {
		_ = fallar(cb)
	}
	require.Equal(t, CBOpen, cb.State())

	ejecutado := false
	err := cb.Execute(func() error {
		ejecutado = true
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, ejecutado)
}

func TestCircuitBreakerExitoResetaElContadorDeFallas(t *testing.T) {
	cb := cbParaTest()

	_ = fallar(cb)
	_ = fallar(cb)
	require.NoError(t, cb.Execute(func() error { return nil }))
	// El contador vuelve a cero: hacen falta 3 fallas nuevas para abrir
	_ = fallar(cb)
	_ = fallar(cb)
	assert.Equal(t, CBClosed, cb.State())
	_ = fallar(cb)
	assert.Equal(t, CBOpen, cb.State())
}

func TestCircuitBreakerPasaAHalfOpenTrasElTimeout(t *testing.T) {
	cb := cbParaTest()
	for i := 0; i < 3; i++ {
		_ = fallar(cb)
	}
	require.Equal(t, CBOpen, cb.State())

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, CBHalfOpen, cb.State())
}

func TestCircuitBreakerSondaFallidaReabre(t *testing.T) {
	cb := cbParaTest()
	for i := 0; i < 3; i++ {
		_ = fallar(cb)
	}
	time.Sleep(60 * time.Millisecond)
	require.Equal(t, CBHalfOpen, cb.State())

	assert.ErrorIs(t, fallar(cb), errSidecar)
	assert.Equal(t, CBOpen, cb.State())
}

func TestCircuitBreakerCierraTrasExitosEnHalfOpen(t *testing.T) {
	cb := cbParaTest()
	for i := 0; i < 3; i++ {
		_ = fallar(cb)
	}
	time.Sleep(60 * time.Millisecond)
	require.Equal(t, CBHalfOpen, cb.State())

	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, CBHalfOpen, cb.State(), "un éxito no alcanza")
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreakerStateString(t *testing.T) {
	assert.Equal(t, "closed", CBClosed.String())
	assert.Equal(t, "open", CBOpen.String())
	assert.Equal(t, "half-open", CBHalfOpen.String())
}
