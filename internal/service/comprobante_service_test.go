package service

import (
	"context"
	"testing"

	"github.com/parinohernan/janus314-sub001/internal/dto"
	"github.com/parinohernan/janus314-sub001/internal/model"
	"github.com/parinohernan/janus314-sub001/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func crearRequestPreventa(articuloID uuid.UUID, clienteID string) dto.CrearComprobanteRequest {
	return dto.CrearComprobanteRequest{
		Tipo:      model.TipoPreventa,
		Sucursal:  "0001",
		ClienteID: &clienteID,
		Items: []dto.ItemComprobanteRequest{
			{ArticuloID: articuloID.String(), CantidadEntera: 2},
		},
	}
}

func TestCrearPreventaEnBorrador(t *testing.T) {
	f := newFixture()
	cid := f.clienteDemo.String()

	resp, err := f.svc.Crear(context.Background(), crearRequestPreventa(f.articuloYerba, cid))
	require.NoError(t, err)

	assert.Equal(t, model.EstadoBorrador, resp.Estado)
	assert.Nil(t, resp.Numero)
	assert.Len(t, resp.Items, 1)
	// Precio y alícuota quedan congelados desde el catálogo
	assert.True(t, resp.Items[0].PrecioUnitario.Equal(decimal.NewFromInt(100)))
	assert.True(t, resp.Items[0].AlicuotaIVA.Equal(decimal.NewFromInt(21)))
}

func TestCrearConArticuloInexistente(t *testing.T) {
	f := newFixture()
	cid := f.clienteDemo.String()

	_, err := f.svc.Crear(context.Background(), crearRequestPreventa(uuid.New(), cid))
	require.Error(t, err)
}

func TestConfirmarPreventaAsignaNumeroYCongelaTotales(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := f.crearPreventa(ctx)

	resp, err := f.svc.Confirmar(ctx, id)
	require.NoError(t, err)

	require.NotNil(t, resp.Numero)
	assert.Equal(t, "00000001", *resp.Numero)
	assert.Equal(t, model.EstadoConfirmado, resp.Estado)

	// 2 × $100 al 21%
	assert.True(t, resp.ImporteNeto.Equal(decimal.NewFromInt(200)), "neto: %s", resp.ImporteNeto)
	assert.True(t, resp.ImporteIVA.Equal(decimal.NewFromInt(42)), "iva: %s", resp.ImporteIVA)
	assert.True(t, resp.ImporteTotal.Equal(decimal.NewFromInt(242)), "total: %s", resp.ImporteTotal)
	require.Len(t, resp.DetallesIVA, 1)
	assert.True(t, resp.DetallesIVA[0].BaseImponible.Equal(decimal.NewFromInt(200)))

	// Una preventa confirmada no toca stock ni AFIP
	movs, _, _ := f.stockRepo.List(ctx, repository.MovimientoStockFilter{})
	assert.Empty(t, movs)
	assert.Equal(t, 0, f.afip.llamadas)
}

func TestConfirmarNumeracionSecuencialPorTipoYSucursal(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	for _, esperado := range []string{"00000001", "00000002", "00000003"} {
		id := f.crearPreventa(ctx)
		resp, err := f.svc.Confirmar(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, esperado, *resp.Numero)
	}
}

func TestConfirmarSinItems(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	cid := f.clienteDemo.String()

	resp, err := f.svc.Crear(ctx, dto.CrearComprobanteRequest{
		Tipo: model.TipoPreventa, Sucursal: "0001", ClienteID: &cid,
	})
	require.NoError(t, err)

	_, err = f.svc.Confirmar(ctx, uuid.MustParse(resp.ID))
	require.Error(t, err)
}

func TestConfirmarDosVecesEsTransicionInvalida(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := f.crearPreventa(ctx)

	_, err := f.svc.Confirmar(ctx, id)
	require.NoError(t, err)
	_, err = f.svc.Confirmar(ctx, id)
	assert.ErrorIs(t, err, ErrTransicionInvalida)
}

func TestConfirmarReintentaTrasConflictoDeAsignacion(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := f.crearPreventa(ctx)

	// Las dos primeras asignaciones chocan con la fila bloqueada
	f.numeros.fallas = 2

	resp, err := f.svc.Confirmar(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "00000001", *resp.Numero)
}

func TestConfirmarConflictoPersistente(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := f.crearPreventa(ctx)

	f.numeros.fallas = 10 // más que los reintentos acotados

	_, err := f.svc.Confirmar(ctx, id)
	assert.ErrorIs(t, err, ErrConflictoAsignacion)
}

func TestFacturarPreventaDescuentaStockYObtieneCAE(t *testing.T) {
	f := newFixture(aprueba("71234567890123"))
	ctx := context.Background()
	f.cargarStock(f.articuloYerba, "0001", 5)

	id := f.crearPreventa(ctx)
	_, err := f.svc.Confirmar(ctx, id)
	require.NoError(t, err)

	factura, err := f.svc.Facturar(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, model.TipoFactura, factura.Tipo)
	assert.Equal(t, model.EstadoFacturado, factura.Estado)
	assert.Equal(t, "00000001", *factura.Numero) // secuencia FCA propia
	assert.Equal(t, model.FiscalAutorizado, factura.EstadoFiscal)
	require.NotNil(t, factura.CAE)
	assert.Equal(t, "71234567890123", *factura.CAE)
	require.NotNil(t, factura.DocumentoOrigenID)
	assert.Equal(t, id.String(), *factura.DocumentoOrigenID)

	// El origen queda facturado y enlazado
	origen, err := f.svc.Obtener(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.EstadoFacturado, origen.Estado)
	require.NotNil(t, origen.ConvertidoAID)
	assert.Equal(t, factura.ID, *origen.ConvertidoAID)

	// Stock: 5 − 2 = 3
	stock, err := f.stock.StockActual(ctx, f.articuloYerba, "0001")
	require.NoError(t, err)
	assert.True(t, stock.Equal(decimal.NewFromInt(3)), "stock: %s", stock)

	// El PDF se encola solo tras la autorización
	assert.Equal(t, []string{factura.ID}, f.dispatcher.emisiones)
}

func TestFacturarConStockInsuficiente(t *testing.T) {
	f := newFixture(aprueba("70000000000001"))
	ctx := context.Background()
	f.cargarStock(f.articuloYerba, "0001", 1) // se necesitan 2

	id := f.crearPreventa(ctx)
	_, err := f.svc.Confirmar(ctx, id)
	require.NoError(t, err)

	_, err = f.svc.Facturar(ctx, id)
	assert.ErrorIs(t, err, ErrStockInsuficiente)
	// AFIP nunca llega a llamarse: el stock corta antes
	assert.Equal(t, 0, f.afip.llamadas)
}

func TestFacturarSinControlDeStockRegistraIgual(t *testing.T) {
	f := newFixture(aprueba("70000000000002"))
	ctx := context.Background()
	cid := f.clienteDemo.String()
	porStock := false

	req := crearRequestPreventa(f.articuloYerba, cid)
	req.PorStock = &porStock
	resp, err := f.svc.Crear(ctx, req)
	require.NoError(t, err)
	id := uuid.MustParse(resp.ID)

	_, err = f.svc.Confirmar(ctx, id)
	require.NoError(t, err)
	factura, err := f.svc.Facturar(ctx, id)
	require.NoError(t, err)

	// Sin validación el stock puede quedar negativo, pero el movimiento
	// queda registrado para auditoría.
	stock, err := f.stock.StockActual(ctx, f.articuloYerba, "0001")
	require.NoError(t, err)
	assert.True(t, stock.Equal(decimal.NewFromInt(-2)), "stock: %s", stock)
	assert.Equal(t, model.FiscalAutorizado, factura.EstadoFiscal)
}

func TestFacturarDosVecesErrYaFacturado(t *testing.T) {
	f := newFixture(aprueba("70000000000003"))
	ctx := context.Background()
	f.cargarStock(f.articuloYerba, "0001", 10)

	id := f.crearPreventa(ctx)
	_, err := f.svc.Confirmar(ctx, id)
	require.NoError(t, err)
	_, err = f.svc.Facturar(ctx, id)
	require.NoError(t, err)

	_, err = f.svc.Facturar(ctx, id)
	assert.ErrorIs(t, err, ErrYaFacturado)
}

func TestFacturarRechazadoNoTocaOrigen(t *testing.T) {
	f := newFixture(rechaza("CUIT del receptor inválido"))
	ctx := context.Background()
	f.cargarStock(f.articuloYerba, "0001", 5)

	id := f.crearPreventa(ctx)
	_, err := f.svc.Confirmar(ctx, id)
	require.NoError(t, err)

	_, err = f.svc.Facturar(ctx, id)
	assert.ErrorIs(t, err, ErrAutorizacionRechazada)

	// La preventa sigue confirmada, sin enlace
	origen, err := f.svc.Obtener(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.EstadoConfirmado, origen.Estado)
	assert.Nil(t, origen.ConvertidoAID)

	// El intento rechazado queda registrado aunque la emisión se descartó
	require.Len(t, f.intentos.intentos, 1)
	assert.Equal(t, model.IntentoRechazado, f.intentos.intentos[0].Resultado)
}

func TestFacturarSinRespuestaEmitePendienteYReintentaSinReasignar(t *testing.T) {
	f := newFixture(sinRespuesta(), aprueba("70000000000004"))
	ctx := context.Background()
	f.cargarStock(f.articuloYerba, "0001", 5)

	id := f.crearPreventa(ctx)
	_, err := f.svc.Confirmar(ctx, id)
	require.NoError(t, err)

	// AFIP caída: la factura se emite igual, pendiente de CAE
	factura, err := f.svc.Facturar(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.EstadoFacturado, factura.Estado)
	assert.Equal(t, model.FiscalPendiente, factura.EstadoFiscal)
	assert.Nil(t, factura.CAE)
	numeroOriginal := *factura.Numero
	assert.Empty(t, f.dispatcher.emisiones)

	stock, _ := f.stock.StockActual(ctx, f.articuloYerba, "0001")
	assert.True(t, stock.Equal(decimal.NewFromInt(3)))

	// Reintento: CAE otorgado sin reasignar número ni re-postear stock
	facturaID := uuid.MustParse(factura.ID)
	reintentada, err := f.svc.ReintentarAutorizacion(ctx, facturaID)
	require.NoError(t, err)
	assert.Equal(t, model.FiscalAutorizado, reintentada.EstadoFiscal)
	assert.Equal(t, numeroOriginal, *reintentada.Numero)
	assert.Equal(t, 2, reintentada.IntentosCAE)

	stock, _ = f.stock.StockActual(ctx, f.articuloYerba, "0001")
	assert.True(t, stock.Equal(decimal.NewFromInt(3)), "el reintento no repite movimientos")
	assert.Equal(t, []string{factura.ID}, f.dispatcher.emisiones)
}

func TestReintentarSobreAutorizadoEsNoOp(t *testing.T) {
	f := newFixture(aprueba("70000000000005"))
	ctx := context.Background()
	f.cargarStock(f.articuloYerba, "0001", 5)

	id := f.crearPreventa(ctx)
	_, err := f.svc.Confirmar(ctx, id)
	require.NoError(t, err)
	factura, err := f.svc.Facturar(ctx, id)
	require.NoError(t, err)

	llamadasPrevias := f.afip.llamadas
	resp, err := f.svc.ReintentarAutorizacion(ctx, uuid.MustParse(factura.ID))
	require.NoError(t, err)
	assert.Equal(t, model.FiscalAutorizado, resp.EstadoFiscal)
	assert.Equal(t, llamadasPrevias, f.afip.llamadas, "no debe volver a llamar a AFIP")
}

func TestReintentarAgotadoErrAutorizacionFallida(t *testing.T) {
	f := newFixture(sinRespuesta())
	ctx := context.Background()
	f.cargarStock(f.articuloYerba, "0001", 5)

	id := f.crearPreventa(ctx)
	_, err := f.svc.Confirmar(ctx, id)
	require.NoError(t, err)
	factura, err := f.svc.Facturar(ctx, id)
	require.NoError(t, err)
	facturaID := uuid.MustParse(factura.ID)

	// El primer intento se consumió al emitir; el presupuesto es 5
	for i := 0; i < 3; i++ {
		_, err = f.svc.ReintentarAutorizacion(ctx, facturaID)
		assert.ErrorIs(t, err, ErrAutorizacionDiferida)
	}
	// Quinto intento sin respuesta: presupuesto agotado
	_, err = f.svc.ReintentarAutorizacion(ctx, facturaID)
	assert.ErrorIs(t, err, ErrAutorizacionFallida)
	// Y de acá en adelante corta antes de llamar a AFIP
	llamadas := f.afip.llamadas
	_, err = f.svc.ReintentarAutorizacion(ctx, facturaID)
	assert.ErrorIs(t, err, ErrAutorizacionFallida)
	assert.Equal(t, llamadas, f.afip.llamadas)
}

func TestAnularPreventaConfirmadaRevierteNada(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := f.crearPreventa(ctx)
	_, err := f.svc.Confirmar(ctx, id)
	require.NoError(t, err)

	resp, err := f.svc.Anular(ctx, id, "cliente desistió")
	require.NoError(t, err)
	assert.Equal(t, model.EstadoAnulado, resp.Estado)
	require.NotNil(t, resp.MotivoAnulacion)
	assert.Equal(t, "cliente desistió", *resp.MotivoAnulacion)
}

func TestAnularBloqueadoPorDerivadoVigente(t *testing.T) {
	f := newFixture(aprueba("70000000000006"))
	ctx := context.Background()
	f.cargarStock(f.articuloYerba, "0001", 5)

	id := f.crearPreventa(ctx)
	_, err := f.svc.Confirmar(ctx, id)
	require.NoError(t, err)
	factura, err := f.svc.Facturar(ctx, id)
	require.NoError(t, err)

	// La preventa no puede anularse mientras su factura siga vigente
	_, err = f.svc.Anular(ctx, id, "error de carga")
	assert.ErrorIs(t, err, ErrAnulacionNoPermitida)

	// Anulada la factura, el stock vuelve y la preventa puede caer
	facturaID := uuid.MustParse(factura.ID)
	_, err = f.svc.Anular(ctx, facturaID, "factura mal emitida")
	require.NoError(t, err)

	stock, _ := f.stock.StockActual(ctx, f.articuloYerba, "0001")
	assert.True(t, stock.Equal(decimal.NewFromInt(5)), "stock restaurado: %s", stock)

	_, err = f.svc.Anular(ctx, id, "error de carga")
	require.NoError(t, err)

	// Anular dos veces no está modelado
	_, err = f.svc.Anular(ctx, facturaID, "de nuevo")
	assert.ErrorIs(t, err, ErrTransicionInvalida)
}

func TestAnularBorradorNoPermitido(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := f.crearPreventa(ctx)

	_, err := f.svc.Anular(ctx, id, "nunca confirmado")
	assert.ErrorIs(t, err, ErrTransicionInvalida)
}
