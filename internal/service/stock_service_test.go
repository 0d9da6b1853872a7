package service

import (
	"context"
	"testing"

	"github.com/parinohernan/janus314-sub001/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistrarMovimientoValidaStockNegativo(t *testing.T) {
	repo := &stubMovimientoStockRepo{}
	svc := NewStockService(repo, nil)
	ctx := context.Background()
	articulo := uuid.New()

	// Entrada inicial de 5
	err := svc.RegistrarMovimientoTx(ctx, nil, &model.MovimientoStock{
		ArticuloID: articulo, Sucursal: "0001",
		Cantidad: decimal.NewFromInt(5), ComprobanteID: uuid.New(), Motivo: model.MotivoAjuste,
	}, true)
	require.NoError(t, err)

	// Sacar 7 dejaría −2
	err = svc.RegistrarMovimientoTx(ctx, nil, &model.MovimientoStock{
		ArticuloID: articulo, Sucursal: "0001",
		Cantidad: decimal.NewFromInt(-7), ComprobanteID: uuid.New(), Motivo: model.MotivoConfirmacion,
	}, true)
	assert.ErrorIs(t, err, ErrStockInsuficiente)

	// Sacar exactamente 5 deja 0: permitido
	err = svc.RegistrarMovimientoTx(ctx, nil, &model.MovimientoStock{
		ArticuloID: articulo, Sucursal: "0001",
		Cantidad: decimal.NewFromInt(-5), ComprobanteID: uuid.New(), Motivo: model.MotivoConfirmacion,
	}, true)
	require.NoError(t, err)

	total, err := svc.StockActual(ctx, articulo, "0001")
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}

func TestRegistrarMovimientoSinValidarPermiteNegativo(t *testing.T) {
	repo := &stubMovimientoStockRepo{}
	svc := NewStockService(repo, nil)
	ctx := context.Background()
	articulo := uuid.New()

	err := svc.RegistrarMovimientoTx(ctx, nil, &model.MovimientoStock{
		ArticuloID: articulo, Sucursal: "0001",
		Cantidad: decimal.NewFromInt(-3), ComprobanteID: uuid.New(), Motivo: model.MotivoConfirmacion,
	}, false)
	require.NoError(t, err)

	total, err := svc.StockActual(ctx, articulo, "0001")
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(-3)))
}

func TestStockPorSucursalIndependiente(t *testing.T) {
	repo := &stubMovimientoStockRepo{}
	svc := NewStockService(repo, nil)
	ctx := context.Background()
	articulo := uuid.New()

	for _, m := range []struct {
		sucursal string
		cantidad int64
	}{{"0001", 10}, {"0002", 4}, {"0001", -2}} {
		err := svc.RegistrarMovimientoTx(ctx, nil, &model.MovimientoStock{
			ArticuloID: articulo, Sucursal: m.sucursal,
			Cantidad: decimal.NewFromInt(m.cantidad), ComprobanteID: uuid.New(), Motivo: model.MotivoAjuste,
		}, false)
		require.NoError(t, err)
	}

	s1, _ := svc.StockActual(ctx, articulo, "0001")
	s2, _ := svc.StockActual(ctx, articulo, "0002")
	assert.True(t, s1.Equal(decimal.NewFromInt(8)))
	assert.True(t, s2.Equal(decimal.NewFromInt(4)))
}

func TestRevertirMovimientosCompensaYEsIdempotente(t *testing.T) {
	repo := &stubMovimientoStockRepo{}
	svc := NewStockService(repo, nil)
	ctx := context.Background()
	articulo := uuid.New()
	comprobante := uuid.New()

	err := svc.RegistrarMovimientoTx(ctx, nil, &model.MovimientoStock{
		ArticuloID: articulo, Sucursal: "0001",
		Cantidad: decimal.NewFromInt(-2), ComprobanteID: comprobante, Motivo: model.MotivoConfirmacion,
	}, false)
	require.NoError(t, err)

	require.NoError(t, svc.RevertirMovimientosTx(ctx, nil, comprobante))

	total, _ := svc.StockActual(ctx, articulo, "0001")
	assert.True(t, total.IsZero(), "la reversa compensa la salida")

	// Segunda reversa: no-op, sin doble crédito
	require.NoError(t, svc.RevertirMovimientosTx(ctx, nil, comprobante))
	total, _ = svc.StockActual(ctx, articulo, "0001")
	assert.True(t, total.IsZero())
	assert.Len(t, repo.movimientos, 2, "original + una sola reversa")
}

func TestRevertirSinMovimientosNoFalla(t *testing.T) {
	svc := NewStockService(&stubMovimientoStockRepo{}, nil)
	require.NoError(t, svc.RevertirMovimientosTx(context.Background(), nil, uuid.New()))
}
