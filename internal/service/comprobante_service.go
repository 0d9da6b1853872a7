package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/parinohernan/janus314-sub001/internal/dto"
	"github.com/parinohernan/janus314-sub001/internal/model"
	"github.com/parinohernan/janus314-sub001/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	// maxReintentosAsignacion acota los reintentos locales cuando la fila
	// de numeración está tomada por otra transacción.
	maxReintentosAsignacion = 3

	// backoffBaseCAE es la espera base del calendario exponencial de
	// reintentos de autorización fiscal.
	backoffBaseCAE = 30 * time.Second
	backoffMaxCAE  = 15 * time.Minute
)

// Despachador encola trabajos asíncronos posteriores a la emisión.
// *worker.Dispatcher lo implementa; los tests unitarios lo omiten.
type Despachador interface {
	EnqueueEmision(ctx context.Context, comprobanteID string) error
}

type ComprobanteService interface {
	Crear(ctx context.Context, req dto.CrearComprobanteRequest) (*dto.ComprobanteResponse, error)
	// Confirmar asigna número, congela totales y, para tipos fiscales,
	// registra stock y solicita el CAE, todo en una transacción.
	Confirmar(ctx context.Context, id uuid.UUID) (*dto.ComprobanteResponse, error)
	// Facturar convierte una preventa o pedido confirmado en una factura
	// emitida, enlazada bidireccionalmente con su origen.
	Facturar(ctx context.Context, id uuid.UUID) (*dto.ComprobanteResponse, error)
	Anular(ctx context.Context, id uuid.UUID, motivo string) (*dto.ComprobanteResponse, error)
	// ReintentarAutorizacion re-dispara la solicitud de CAE de un
	// comprobante emitido con autorización pendiente.
	ReintentarAutorizacion(ctx context.Context, id uuid.UUID) (*dto.ComprobanteResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.ComprobanteResponse, error)
	Listar(ctx context.Context, filter dto.ComprobanteFilter) (*dto.ComprobanteListResponse, error)
}

type comprobanteService struct {
	repo         repository.ComprobanteRepository
	articuloRepo repository.ArticuloRepository
	clienteRepo  repository.ClienteRepository
	numeracion   NumeracionService
	stock        StockService
	fiscal       FiscalService
	dispatcher   Despachador
	maxIntentos  int
}

func NewComprobanteService(
	repo repository.ComprobanteRepository,
	articuloRepo repository.ArticuloRepository,
	clienteRepo repository.ClienteRepository,
	numeracion NumeracionService,
	stock StockService,
	fiscal FiscalService,
	dispatcher Despachador,
	maxIntentosCAE int,
) ComprobanteService {
	if maxIntentosCAE <= 0 {
		maxIntentosCAE = 5
	}
	return &comprobanteService{
		repo:         repo,
		articuloRepo: articuloRepo,
		clienteRepo:  clienteRepo,
		numeracion:   numeracion,
		stock:        stock,
		fiscal:       fiscal,
		dispatcher:   dispatcher,
		maxIntentos:  maxIntentosCAE,
	}
}

// runTx executes fn inside a REPEATABLE READ transaction when db is
// available, or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
}

// conReintentos ejecuta fn hasta maxReintentosAsignacion veces mientras
// falle con ErrConflictoAsignacion. Cada intento corre en una transacción
// fresca; cualquier otro error corta de inmediato.
func conReintentos(ctx context.Context, fn func() error) error {
	var err error
	for intento := 0; intento < maxReintentosAsignacion; intento++ {
		if intento > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(intento) * 25 * time.Millisecond):
			}
		}
		if err = fn(); !errors.Is(err, ErrConflictoAsignacion) {
			return err
		}
	}
	return err
}

// ── Crear ────────────────────────────────────────────────────────────────────

func (s *comprobanteService) Crear(ctx context.Context, req dto.CrearComprobanteRequest) (*dto.ComprobanteResponse, error) {
	comp := &model.Comprobante{
		Tipo:         req.Tipo,
		Sucursal:     req.Sucursal,
		Estado:       model.EstadoBorrador,
		FechaEmision: time.Now(),
		PorStock:     true,
	}
	if req.PorStock != nil {
		comp.PorStock = *req.PorStock
	}

	if req.ClienteID != nil {
		cid, err := uuid.Parse(*req.ClienteID)
		if err != nil {
			return nil, fmt.Errorf("cliente_id inválido: %w", err)
		}
		if _, err := s.clienteRepo.FindByID(ctx, cid); err != nil {
			return nil, fmt.Errorf("cliente %s no encontrado", cid)
		}
		comp.ClienteID = &cid
	}

	if req.DocumentoOrigenID != nil {
		oid, err := uuid.Parse(*req.DocumentoOrigenID)
		if err != nil {
			return nil, fmt.Errorf("documento_origen_id inválido: %w", err)
		}
		origen, err := s.repo.FindByID(ctx, oid)
		if err != nil {
			return nil, fmt.Errorf("documento origen %s no encontrado", oid)
		}
		if origen.Estado == model.EstadoAnulado {
			return nil, fmt.Errorf("documento origen %s está anulado", oid)
		}
		comp.DocumentoOrigenID = &oid
	}

	// Snapshot de precio y alícuota por línea: el borrador ya no sigue a
	// la lista de precios.
	for _, item := range req.Items {
		aid, err := uuid.Parse(item.ArticuloID)
		if err != nil {
			return nil, fmt.Errorf("articulo_id inválido: %w", err)
		}
		art, err := s.articuloRepo.FindByID(ctx, aid)
		if err != nil {
			return nil, fmt.Errorf("artículo %s no encontrado", aid)
		}
		if !art.Activo {
			return nil, fmt.Errorf("artículo %s está inactivo", art.Nombre)
		}
		precio := art.PrecioVenta
		if item.PrecioUnitario != nil {
			precio = *item.PrecioUnitario
		}
		comp.Items = append(comp.Items, model.ComprobanteItem{
			ArticuloID:       aid,
			CantidadEntera:   item.CantidadEntera,
			CantidadFraccion: item.CantidadFraccion,
			PrecioUnitario:   precio,
			DescuentoPorc:    item.DescuentoPorc,
			AlicuotaIVA:      art.AlicuotaIVA,
		})
	}

	err := runTx(ctx, s.db(), func(tx *gorm.DB) error {
		return s.repo.Create(ctx, tx, comp)
	})
	if err != nil {
		return nil, fmt.Errorf("crear comprobante: %w", err)
	}

	log.Info().
		Str("comprobante_id", comp.ID.String()).
		Str("tipo", comp.Tipo).
		Str("sucursal", comp.Sucursal).
		Msg("comprobante creado en borrador")
	return comprobanteToResponse(comp), nil
}

// ── Confirmar ────────────────────────────────────────────────────────────────

func (s *comprobanteService) Confirmar(ctx context.Context, id uuid.UUID) (*dto.ComprobanteResponse, error) {
	var comp *model.Comprobante

	err := conReintentos(ctx, func() error {
		return runTx(ctx, s.db(), func(tx *gorm.DB) error {
			var err error
			comp, err = s.repo.FindByIDTx(tx, id)
			if err != nil {
				return fmt.Errorf("comprobante %s: %w", id, err)
			}

			destino, err := siguienteEstado(comp.Tipo, comp.Estado, EventoConfirmar)
			if err != nil {
				return err
			}
			if len(comp.Items) == 0 {
				return fmt.Errorf("el comprobante %s no tiene ítems", id)
			}
			if comp.ClienteID == nil {
				return fmt.Errorf("el comprobante %s no tiene cliente asignado", id)
			}

			numero, err := s.numeracion.AsignarSiguiente(ctx, tx, comp.Tipo, comp.Sucursal)
			if err != nil {
				return err
			}
			comp.Numero = &numero
			comp.Estado = destino
			comp.FechaEmision = time.Now()
			congelarTotales(comp)

			if comp.EsFiscal() {
				if err := s.postearStock(ctx, tx, comp, signoStockConfirmacion(comp.Tipo)); err != nil {
					return err
				}
				if err := s.autorizar(ctx, comp); !esEmisionValida(err) {
					return err
				}
			}
			return s.repo.SaveTx(tx, comp)
		})
	})
	if err != nil {
		return nil, err
	}

	s.despacharEmision(ctx, comp)
	log.Info().
		Str("comprobante_id", comp.ID.String()).
		Str("numero", *comp.Numero).
		Str("tipo", comp.Tipo).
		Msg("comprobante confirmado")
	return comprobanteToResponse(comp), nil
}

// ── Facturar ─────────────────────────────────────────────────────────────────

func (s *comprobanteService) Facturar(ctx context.Context, id uuid.UUID) (*dto.ComprobanteResponse, error) {
	var factura *model.Comprobante

	err := conReintentos(ctx, func() error {
		return runTx(ctx, s.db(), func(tx *gorm.DB) error {
			origen, err := s.repo.FindByIDTx(tx, id)
			if err != nil {
				return fmt.Errorf("comprobante %s: %w", id, err)
			}
			if origen.Tipo != model.TipoPreventa && origen.Tipo != model.TipoPedido {
				return fmt.Errorf("%w: solo preventas y pedidos se facturan", ErrTransicionInvalida)
			}
			if origen.Estado == model.EstadoFacturado || origen.Estado == model.EstadoAnulado || origen.ConvertidoAID != nil {
				return ErrYaFacturado
			}
			destinoOrigen, err := siguienteEstado(origen.Tipo, origen.Estado, EventoFacturar)
			if err != nil {
				return err
			}

			factura = &model.Comprobante{
				Tipo:              model.TipoFactura,
				Sucursal:          origen.Sucursal,
				Estado:            model.EstadoConfirmado,
				FechaEmision:      time.Now(),
				ClienteID:         origen.ClienteID,
				VendedorID:        origen.VendedorID,
				PorStock:          origen.PorStock,
				DocumentoOrigenID: &origen.ID,
			}
			for _, item := range origen.Items {
				factura.Items = append(factura.Items, model.ComprobanteItem{
					ArticuloID:       item.ArticuloID,
					CantidadEntera:   item.CantidadEntera,
					CantidadFraccion: item.CantidadFraccion,
					PrecioUnitario:   item.PrecioUnitario,
					DescuentoPorc:    item.DescuentoPorc,
					AlicuotaIVA:      item.AlicuotaIVA,
				})
			}

			numero, err := s.numeracion.AsignarSiguiente(ctx, tx, factura.Tipo, factura.Sucursal)
			if err != nil {
				return err
			}
			factura.Numero = &numero
			congelarTotales(factura)

			if err := s.repo.Create(ctx, tx, factura); err != nil {
				return fmt.Errorf("crear factura: %w", err)
			}

			// El signo lo dicta el origen: una preventa facturada saca
			// mercadería; un pedido facturado la ingresa.
			signo := decimal.NewFromInt(-1)
			if origen.Tipo == model.TipoPedido {
				signo = decimal.NewFromInt(1)
			}
			if err := s.postearStock(ctx, tx, factura, signo); err != nil {
				return err
			}

			// La llamada a AFIP va al final: si rechaza, el rollback
			// deshace factura, número y stock sin efectos residuales.
			if err := s.autorizar(ctx, factura); !esEmisionValida(err) {
				return err
			}

			// La factura queda emitida (también con autorización
			// diferida: el CAE pendiente no la devuelve a confirmado).
			destinoFactura, err := siguienteEstado(factura.Tipo, factura.Estado, EventoFacturar)
			if err != nil {
				return err
			}
			factura.Estado = destinoFactura
			if err := s.repo.SaveTx(tx, factura); err != nil {
				return err
			}

			origen.ConvertidoAID = &factura.ID
			origen.Estado = destinoOrigen
			return s.repo.SaveTx(tx, origen)
		})
	})
	if err != nil {
		return nil, err
	}

	s.despacharEmision(ctx, factura)
	log.Info().
		Str("factura_id", factura.ID.String()).
		Str("numero", *factura.Numero).
		Str("origen_id", id.String()).
		Str("estado_fiscal", factura.EstadoFiscal).
		Msg("factura emitida desde documento origen")
	return comprobanteToResponse(factura), nil
}

// ── Anular ───────────────────────────────────────────────────────────────────

func (s *comprobanteService) Anular(ctx context.Context, id uuid.UUID, motivo string) (*dto.ComprobanteResponse, error) {
	var comp *model.Comprobante

	err := runTx(ctx, s.db(), func(tx *gorm.DB) error {
		var err error
		comp, err = s.repo.FindByIDTx(tx, id)
		if err != nil {
			return fmt.Errorf("comprobante %s: %w", id, err)
		}

		destino, err := siguienteEstado(comp.Tipo, comp.Estado, EventoAnular)
		if err != nil {
			return err
		}

		// La invalidación corre en una sola dirección: primero cae el
		// documento derivado, después el origen.
		if comp.ConvertidoAID != nil {
			derivado, err := s.repo.FindByIDTx(tx, *comp.ConvertidoAID)
			if err != nil {
				return fmt.Errorf("documento derivado %s: %w", *comp.ConvertidoAID, err)
			}
			if derivado.Estado != model.EstadoAnulado {
				return ErrAnulacionNoPermitida
			}
		}

		if err := s.stock.RevertirMovimientosTx(ctx, tx, comp.ID); err != nil {
			return fmt.Errorf("revertir stock: %w", err)
		}

		comp.Estado = destino
		comp.MotivoAnulacion = &motivo
		comp.ProximoReintento = nil // un comprobante anulado no reintenta CAE
		return s.repo.SaveTx(tx, comp)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("comprobante_id", comp.ID.String()).
		Str("motivo", motivo).
		Msg("comprobante anulado")
	return comprobanteToResponse(comp), nil
}

// ── ReintentarAutorizacion ───────────────────────────────────────────────────

func (s *comprobanteService) ReintentarAutorizacion(ctx context.Context, id uuid.UUID) (*dto.ComprobanteResponse, error) {
	comp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("comprobante %s: %w", id, err)
	}
	if !comp.EsFiscal() {
		return nil, fmt.Errorf("el comprobante %s (%s) no requiere autorización fiscal", id, comp.Tipo)
	}
	// Idempotente: un segundo llamador concurrente observa el resultado
	// terminal y no vuelve a llamar a AFIP.
	if comp.EstadoFiscal == model.FiscalAutorizado {
		return comprobanteToResponse(comp), nil
	}
	if comp.Estado == model.EstadoAnulado {
		return comprobanteToResponse(comp), nil
	}
	if comp.IntentosCAE >= s.maxIntentos {
		return nil, fmt.Errorf("%w: %d intentos sobre %s", ErrAutorizacionFallida, comp.IntentosCAE, id)
	}

	// El reintento nunca reasigna números ni vuelve a tocar stock: el
	// documento ya está emitido, solo falta la autorización.
	err = s.autorizar(ctx, comp)

	switch {
	case err == nil:
		if saveErr := s.repo.Save(ctx, comp); saveErr != nil {
			return nil, saveErr
		}
		s.despacharEmision(ctx, comp)
		log.Info().
			Str("comprobante_id", comp.ID.String()).
			Int("intentos", comp.IntentosCAE).
			Msg("autorización obtenida en reintento")
		return comprobanteToResponse(comp), nil

	case errors.Is(err, ErrAutorizacionRechazada):
		// El documento ya está emitido y no se puede deshacer: queda
		// marcado rechazado para intervención manual.
		comp.EstadoFiscal = model.FiscalRechazado
		comp.ProximoReintento = nil
		if saveErr := s.repo.Save(ctx, comp); saveErr != nil {
			return nil, saveErr
		}
		return comprobanteToResponse(comp), err

	case errors.Is(err, ErrAutorizacionDiferida):
		if comp.IntentosCAE >= s.maxIntentos {
			comp.ProximoReintento = nil
			err = fmt.Errorf("%w: %d intentos sobre %s", ErrAutorizacionFallida, comp.IntentosCAE, id)
		}
		if saveErr := s.repo.Save(ctx, comp); saveErr != nil {
			return nil, saveErr
		}
		return comprobanteToResponse(comp), err

	default:
		return nil, err
	}
}

// ── Consultas ────────────────────────────────────────────────────────────────

func (s *comprobanteService) Obtener(ctx context.Context, id uuid.UUID) (*dto.ComprobanteResponse, error) {
	comp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return comprobanteToResponse(comp), nil
}

func (s *comprobanteService) Listar(ctx context.Context, filter dto.ComprobanteFilter) (*dto.ComprobanteListResponse, error) {
	comps, total, err := s.repo.List(ctx, repository.ComprobanteFilter{
		Tipo:     filter.Tipo,
		Sucursal: filter.Sucursal,
		Estado:   filter.Estado,
		Page:     filter.Page,
		Limit:    filter.Limit,
	})
	if err != nil {
		return nil, err
	}

	resp := &dto.ComprobanteListResponse{
		Data:  make([]dto.ComprobanteResponse, 0, len(comps)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range comps {
		resp.Data = append(resp.Data, *comprobanteToResponse(&comps[i]))
	}
	return resp, nil
}

// ── Internos ─────────────────────────────────────────────────────────────────

func (s *comprobanteService) db() *gorm.DB {
	if s.repo == nil {
		return nil
	}
	return s.repo.DB()
}

// congelarTotales calcula y fija bruto, descuento, neto, desglose de IVA
// y total a partir de las líneas. Redondeo a 2 decimales por alícuota.
func congelarTotales(comp *model.Comprobante) {
	cien := decimal.NewFromInt(100)
	bruto := decimal.Zero
	descuento := decimal.Zero
	neto := decimal.Zero

	basePorAlicuota := map[string]*model.ComprobanteIVA{}
	orden := []string{}

	for i := range comp.Items {
		item := &comp.Items[i]
		lineaBruto := item.PrecioUnitario.Mul(item.Cantidad())
		lineaDesc := lineaBruto.Mul(item.DescuentoPorc).Div(cien).Round(2)
		item.ImporteLinea = lineaBruto.Sub(lineaDesc).Round(2)

		bruto = bruto.Add(lineaBruto)
		descuento = descuento.Add(lineaDesc)
		neto = neto.Add(item.ImporteLinea)

		key := item.AlicuotaIVA.String()
		det, ok := basePorAlicuota[key]
		if !ok {
			det = &model.ComprobanteIVA{Alicuota: item.AlicuotaIVA}
			basePorAlicuota[key] = det
			orden = append(orden, key)
		}
		det.BaseImponible = det.BaseImponible.Add(item.ImporteLinea)
	}

	iva := decimal.Zero
	comp.DetallesIVA = comp.DetallesIVA[:0]
	for _, key := range orden {
		det := basePorAlicuota[key]
		det.BaseImponible = det.BaseImponible.Round(2)
		det.Importe = det.BaseImponible.Mul(det.Alicuota).Div(cien).Round(2)
		det.ComprobanteID = comp.ID
		iva = iva.Add(det.Importe)
		comp.DetallesIVA = append(comp.DetallesIVA, *det)
	}

	comp.ImporteBruto = bruto.Round(2)
	comp.ImporteDescuento = descuento.Round(2)
	comp.ImporteNeto = neto.Round(2)
	comp.ImporteIVA = iva
	comp.ImporteTotal = comp.ImporteNeto.Add(iva)
}

// signoStockConfirmacion: una factura directa saca mercadería, una nota
// de crédito la devuelve, una nota de débito ajusta dinero y no toca
// stock (signo cero).
func signoStockConfirmacion(tipo string) decimal.Decimal {
	switch tipo {
	case model.TipoFactura:
		return decimal.NewFromInt(-1)
	case model.TipoNotaCredito:
		return decimal.NewFromInt(1)
	default:
		return decimal.Zero
	}
}

func (s *comprobanteService) postearStock(ctx context.Context, tx *gorm.DB, comp *model.Comprobante, signo decimal.Decimal) error {
	if signo.IsZero() {
		return nil
	}
	for i := range comp.Items {
		mov := &model.MovimientoStock{
			ArticuloID:    comp.Items[i].ArticuloID,
			Sucursal:      comp.Sucursal,
			Cantidad:      comp.Items[i].Cantidad().Mul(signo),
			ComprobanteID: comp.ID,
			Motivo:        model.MotivoConfirmacion,
		}
		if err := s.stock.RegistrarMovimientoTx(ctx, tx, mov, comp.PorStock); err != nil {
			return err
		}
	}
	return nil
}

// autorizar llama a AFIP y vuelca el resultado sobre el comprobante.
// No persiste: el llamador decide dentro de qué transacción (o fuera de
// cualquiera) guardar los cambios.
//   - nil: autorizado, CAE cargado
//   - ErrAutorizacionDiferida: pendiente con próximo reintento agendado
//   - ErrAutorizacionRechazada: el llamador decide rollback o marca
func (s *comprobanteService) autorizar(ctx context.Context, comp *model.Comprobante) error {
	comp.EstadoFiscal = model.FiscalPendiente

	intento, err := s.fiscal.SolicitarAutorizacion(ctx, comp)
	if intento != nil {
		comp.IntentosCAE = intento.NroIntento
	}

	switch {
	case err == nil:
		ahora := time.Now()
		comp.EstadoFiscal = model.FiscalAutorizado
		comp.CAE = intento.CAE
		comp.AutorizadoEn = &ahora
		comp.ProximoReintento = nil
		comp.UltimoErrorCAE = nil
		if resp := intentoVencimiento(intento); resp != nil {
			comp.CAEVencimiento = resp
		}
		return nil

	case errors.Is(err, ErrAutorizacionDiferida):
		proximo := time.Now().Add(backoffCAE(comp.IntentosCAE))
		comp.ProximoReintento = &proximo
		comp.UltimoErrorCAE = intento.DetalleError
		return err

	default:
		if intento != nil {
			comp.UltimoErrorCAE = intento.DetalleError
		}
		return err
	}
}

// Confirmar y Facturar toleran la autorización diferida: el documento se
// emite igual con EstadoFiscal pendiente. El resto de los errores aborta.
func esEmisionValida(err error) bool {
	return err == nil || errors.Is(err, ErrAutorizacionDiferida)
}

// backoffCAE: 30s, 60s, 120s… con techo de 15 minutos.
func backoffCAE(intentos int) time.Duration {
	if intentos < 1 {
		intentos = 1
	}
	d := backoffBaseCAE << uint(intentos-1)
	if d > backoffMaxCAE || d <= 0 {
		return backoffMaxCAE
	}
	return d
}

// despacharEmision encola la generación de PDF (y el posterior email)
// para comprobantes autorizados. Best-effort: una cola caída no afecta
// la emisión ya confirmada.
func (s *comprobanteService) despacharEmision(ctx context.Context, comp *model.Comprobante) {
	if s.dispatcher == nil || comp == nil || comp.EstadoFiscal != model.FiscalAutorizado {
		return
	}
	if err := s.dispatcher.EnqueueEmision(ctx, comp.ID.String()); err != nil {
		log.Warn().Err(err).
			Str("comprobante_id", comp.ID.String()).
			Msg("no se pudo encolar la emisión del comprobante")
	}
}

func intentoVencimiento(intento *model.IntentoFiscal) *time.Time {
	if intento == nil || intento.CAEVencimiento == nil {
		return nil
	}
	return intento.CAEVencimiento
}

// ── Mapping ──────────────────────────────────────────────────────────────────

func comprobanteToResponse(c *model.Comprobante) *dto.ComprobanteResponse {
	resp := &dto.ComprobanteResponse{
		ID:               c.ID.String(),
		Tipo:             c.Tipo,
		Sucursal:         c.Sucursal,
		Numero:           c.Numero,
		Estado:           c.Estado,
		EstadoFiscal:     c.EstadoFiscal,
		FechaEmision:     c.FechaEmision.Format(time.RFC3339),
		PorStock:         c.PorStock,
		ImporteBruto:     c.ImporteBruto,
		ImporteDescuento: c.ImporteDescuento,
		ImporteNeto:      c.ImporteNeto,
		ImporteIVA:       c.ImporteIVA,
		ImporteTotal:     c.ImporteTotal,
		CAE:              c.CAE,
		IntentosCAE:      c.IntentosCAE,
		MotivoAnulacion:  c.MotivoAnulacion,
		CreatedAt:        c.CreatedAt.Format(time.RFC3339),
	}
	if c.ClienteID != nil {
		cid := c.ClienteID.String()
		resp.ClienteID = &cid
	}
	if c.Cliente != nil {
		resp.Cliente = c.Cliente.RazonSocial
	}
	if c.DocumentoOrigenID != nil {
		oid := c.DocumentoOrigenID.String()
		resp.DocumentoOrigenID = &oid
	}
	if c.ConvertidoAID != nil {
		did := c.ConvertidoAID.String()
		resp.ConvertidoAID = &did
	}
	if c.CAEVencimiento != nil {
		venc := c.CAEVencimiento.Format("2006-01-02")
		resp.CAEVencimiento = &venc
	}
	for i := range c.Items {
		item := &c.Items[i]
		ir := dto.ItemComprobanteResponse{
			ArticuloID:     item.ArticuloID.String(),
			Cantidad:       item.Cantidad(),
			PrecioUnitario: item.PrecioUnitario,
			DescuentoPorc:  item.DescuentoPorc,
			AlicuotaIVA:    item.AlicuotaIVA,
			ImporteLinea:   item.ImporteLinea,
		}
		if item.Articulo != nil {
			ir.Articulo = item.Articulo.Nombre
		}
		resp.Items = append(resp.Items, ir)
	}
	for i := range c.DetallesIVA {
		resp.DetallesIVA = append(resp.DetallesIVA, dto.DetalleIVAResponse{
			Alicuota:      c.DetallesIVA[i].Alicuota,
			BaseImponible: c.DetallesIVA[i].BaseImponible,
			Importe:       c.DetallesIVA[i].Importe,
		})
	}
	return resp
}
