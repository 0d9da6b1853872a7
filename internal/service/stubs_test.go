package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/parinohernan/janus314-sub001/internal/infra"
	"github.com/parinohernan/janus314-sub001/internal/model"
	"github.com/parinohernan/janus314-sub001/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

// stubNumeroControlRepo is an in-memory NumeroControlRepository. It can
// simulate a locked row failing the first N calls.
type stubNumeroControlRepo struct {
	mu         sync.Mutex
	secuencias map[string]int64
	fallas     int // remaining calls that fail with ErrFilaBloqueada
}

func newStubNumeroControlRepo() *stubNumeroControlRepo {
	return &stubNumeroControlRepo{secuencias: make(map[string]int64)}
}

func (r *stubNumeroControlRepo) SiguienteTx(_ context.Context, _ *gorm.DB, tipo, sucursal string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fallas > 0 {
		r.fallas--
		return 0, repository.ErrFilaBloqueada
	}
	key := tipo + "/" + sucursal
	n := r.secuencias[key] + 1
	r.secuencias[key] = n
	return n, nil
}

func (r *stubNumeroControlRepo) Listar(_ context.Context) ([]model.NumeroControl, error) {
	return nil, nil
}

var _ repository.NumeroControlRepository = (*stubNumeroControlRepo)(nil)

// stubMovimientoStockRepo keeps the stock ledger in memory.
type stubMovimientoStockRepo struct {
	mu          sync.Mutex
	movimientos []model.MovimientoStock
}

func (r *stubMovimientoStockRepo) CreateTx(_ *gorm.DB, m *model.MovimientoStock) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()
	r.movimientos = append(r.movimientos, *m)
	return nil
}

func (r *stubMovimientoStockRepo) ListByComprobanteTx(_ *gorm.DB, comprobanteID uuid.UUID) ([]model.MovimientoStock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.MovimientoStock
	for _, m := range r.movimientos {
		if m.ComprobanteID == comprobanteID && m.Motivo != model.MotivoReversaAnulacion {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *stubMovimientoStockRepo) ExisteReversaTx(_ *gorm.DB, comprobanteID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.movimientos {
		if m.ComprobanteID == comprobanteID && m.Motivo == model.MotivoReversaAnulacion {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubMovimientoStockRepo) SumTx(_ *gorm.DB, articuloID uuid.UUID, sucursal string) (decimal.Decimal, error) {
	return r.sum(articuloID, sucursal), nil
}

func (r *stubMovimientoStockRepo) Sum(_ context.Context, articuloID uuid.UUID, sucursal string) (decimal.Decimal, error) {
	return r.sum(articuloID, sucursal), nil
}

func (r *stubMovimientoStockRepo) sum(articuloID uuid.UUID, sucursal string) decimal.Decimal {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := decimal.Zero
	for _, m := range r.movimientos {
		if m.ArticuloID == articuloID && m.Sucursal == sucursal {
			total = total.Add(m.Cantidad)
		}
	}
	return total
}

func (r *stubMovimientoStockRepo) List(_ context.Context, _ repository.MovimientoStockFilter) ([]model.MovimientoStock, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.MovimientoStock(nil), r.movimientos...), int64(len(r.movimientos)), nil
}

var _ repository.MovimientoStockRepository = (*stubMovimientoStockRepo)(nil)

// stubComprobanteRepo is an in-memory ComprobanteRepository.
type stubComprobanteRepo struct {
	mu           sync.Mutex
	comprobantes map[uuid.UUID]*model.Comprobante
}

func newStubComprobanteRepo() *stubComprobanteRepo {
	return &stubComprobanteRepo{comprobantes: make(map[uuid.UUID]*model.Comprobante)}
}

func (r *stubComprobanteRepo) Create(_ context.Context, _ *gorm.DB, c *model.Comprobante) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = time.Now()
	r.comprobantes[c.ID] = c
	return nil
}

func (r *stubComprobanteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Comprobante, error) {
	return r.find(id)
}

func (r *stubComprobanteRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Comprobante, error) {
	return r.find(id)
}

func (r *stubComprobanteRepo) find(id uuid.UUID) (*model.Comprobante, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comprobantes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubComprobanteRepo) SaveTx(_ *gorm.DB, c *model.Comprobante) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.comprobantes[c.ID] = c
	return nil
}

func (r *stubComprobanteRepo) Save(_ context.Context, c *model.Comprobante) error {
	return r.SaveTx(nil, c)
}

func (r *stubComprobanteRepo) List(_ context.Context, _ repository.ComprobanteFilter) ([]model.Comprobante, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Comprobante
	for _, c := range r.comprobantes {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (r *stubComprobanteRepo) ListPendientesFiscales(_ context.Context, ahora time.Time, _ int) ([]model.Comprobante, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Comprobante
	for _, c := range r.comprobantes {
		if c.EstadoFiscal == model.FiscalPendiente && c.ProximoReintento != nil && !c.ProximoReintento.After(ahora) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *stubComprobanteRepo) DB() *gorm.DB { return nil }

var _ repository.ComprobanteRepository = (*stubComprobanteRepo)(nil)

// stubIntentoFiscalRepo records CAE attempts in memory.
type stubIntentoFiscalRepo struct {
	mu       sync.Mutex
	intentos []*model.IntentoFiscal
}

func (r *stubIntentoFiscalRepo) Create(_ context.Context, i *model.IntentoFiscal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	r.intentos = append(r.intentos, i)
	return nil
}

func (r *stubIntentoFiscalRepo) Update(_ context.Context, _ *model.IntentoFiscal) error {
	return nil // stored by pointer, already up to date
}

func (r *stubIntentoFiscalRepo) ProximoNroIntento(_ context.Context, comprobanteID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	max := 0
	for _, i := range r.intentos {
		if i.ComprobanteID == comprobanteID && i.NroIntento > max {
			max = i.NroIntento
		}
	}
	return max + 1, nil
}

func (r *stubIntentoFiscalRepo) ListByComprobante(_ context.Context, comprobanteID uuid.UUID) ([]model.IntentoFiscal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.IntentoFiscal
	for _, i := range r.intentos {
		if i.ComprobanteID == comprobanteID {
			out = append(out, *i)
		}
	}
	return out, nil
}

var _ repository.IntentoFiscalRepository = (*stubIntentoFiscalRepo)(nil)

// stubArticuloRepo serves catalog lookups from a map.
type stubArticuloRepo struct {
	articulos map[uuid.UUID]*model.Articulo
}

func (r *stubArticuloRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Articulo, error) {
	a, ok := r.articulos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func (r *stubArticuloRepo) List(_ context.Context, _ bool) ([]model.Articulo, error) {
	return nil, nil
}

var _ repository.ArticuloRepository = (*stubArticuloRepo)(nil)

type stubClienteRepo struct {
	clientes map[uuid.UUID]*model.Cliente
}

func (r *stubClienteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Cliente, error) {
	c, ok := r.clientes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

var _ repository.ClienteRepository = (*stubClienteRepo)(nil)

// stubClienteFiscal devuelve respuestas programadas en orden FIFO. Cuando
// la cola se agota repite la última.
type stubClienteFiscal struct {
	mu        sync.Mutex
	respuesta []stubRespuestaAFIP
	llamadas  int
}

type stubRespuestaAFIP struct {
	resp *infra.RespuestaCAE
	err  error
}

func (s *stubClienteFiscal) SolicitarCAE(_ context.Context, _ infra.SolicitudCAE) (*infra.RespuestaCAE, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.llamadas++
	if len(s.respuesta) == 0 {
		return nil, errors.New("stub sin respuestas programadas")
	}
	r := s.respuesta[0]
	if len(s.respuesta) > 1 {
		s.respuesta = s.respuesta[1:]
	}
	return r.resp, r.err
}

var _ ClienteFiscal = (*stubClienteFiscal)(nil)

func aprueba(cae string) stubRespuestaAFIP {
	return stubRespuestaAFIP{resp: &infra.RespuestaCAE{CAE: cae, CAEVencimiento: "20270115", Resultado: "A"}}
}

func rechaza(motivo string) stubRespuestaAFIP {
	return stubRespuestaAFIP{resp: &infra.RespuestaCAE{
		Resultado:     "R",
		Observaciones: []infra.ObservacionAFIP{{Codigo: 10015, Mensaje: motivo}},
	}}
}

func sinRespuesta() stubRespuestaAFIP {
	return stubRespuestaAFIP{err: errors.New("connection refused")}
}

// stubDespachador records enqueued emission jobs.
type stubDespachador struct {
	mu        sync.Mutex
	emisiones []string
}

func (d *stubDespachador) EnqueueEmision(_ context.Context, comprobanteID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.emisiones = append(d.emisiones, comprobanteID)
	return nil
}

var _ Despachador = (*stubDespachador)(nil)

// ── Fixture ──────────────────────────────────────────────────────────────────

// fixture bundles the full service graph over in-memory stubs.
type fixture struct {
	comprobantes  *stubComprobanteRepo
	numeros       *stubNumeroControlRepo
	stockRepo     *stubMovimientoStockRepo
	intentos      *stubIntentoFiscalRepo
	afip          *stubClienteFiscal
	dispatcher    *stubDespachador
	articuloYerba uuid.UUID
	clienteDemo   uuid.UUID

	svc   ComprobanteService
	stock StockService
}

func newFixture(respuestas ...stubRespuestaAFIP) *fixture {
	f := &fixture{
		comprobantes:  newStubComprobanteRepo(),
		numeros:       newStubNumeroControlRepo(),
		stockRepo:     &stubMovimientoStockRepo{},
		intentos:      &stubIntentoFiscalRepo{},
		afip:          &stubClienteFiscal{respuesta: respuestas},
		dispatcher:    &stubDespachador{},
		articuloYerba: uuid.New(),
		clienteDemo:   uuid.New(),
	}

	articuloRepo := &stubArticuloRepo{articulos: map[uuid.UUID]*model.Articulo{
		f.articuloYerba: {
			ID:          f.articuloYerba,
			Codigo:      "YERBA-1KG",
			Nombre:      "Yerba Mate 1kg",
			PrecioVenta: decimal.NewFromInt(100),
			AlicuotaIVA: decimal.NewFromInt(21),
			Activo:      true,
		},
	}}
	email := "demo@cliente.com"
	clienteRepo := &stubClienteRepo{clientes: map[uuid.UUID]*model.Cliente{
		f.clienteDemo: {ID: f.clienteDemo, RazonSocial: "Cliente Demo", Email: &email, Activo: true},
	}}

	cb := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	fiscal := NewFiscalService(f.afip, cb, f.intentos, "20111111112", time.Second)
	numeracion := NewNumeracionService(f.numeros)
	f.stock = NewStockService(f.stockRepo, nil)
	f.svc = NewComprobanteService(
		f.comprobantes, articuloRepo, clienteRepo,
		numeracion, f.stock, fiscal, f.dispatcher, 5)
	return f
}

// cargarStock seeds initial stock through an ajuste entry.
func (f *fixture) cargarStock(articuloID uuid.UUID, sucursal string, cantidad int64) {
	_ = f.stockRepo.CreateTx(nil, &model.MovimientoStock{
		ArticuloID:    articuloID,
		Sucursal:      sucursal,
		Cantidad:      decimal.NewFromInt(cantidad),
		ComprobanteID: uuid.New(),
		Motivo:        model.MotivoAjuste,
	})
}

// crearPreventa creates a draft PRV: 2 × Yerba ($100, 21%) in sucursal 0001.
func (f *fixture) crearPreventa(ctx context.Context) uuid.UUID {
	cid := f.clienteDemo.String()
	resp, err := f.svc.Crear(ctx, crearRequestPreventa(f.articuloYerba, cid))
	if err != nil {
		panic(fmt.Sprintf("crearPreventa: %v", err))
	}
	return uuid.MustParse(resp.ID)
}
