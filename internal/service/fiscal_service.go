package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/parinohernan/janus314-sub001/internal/infra"
	"github.com/parinohernan/janus314-sub001/internal/model"
	"github.com/parinohernan/janus314-sub001/internal/repository"

	"github.com/rs/zerolog/log"
)

// ClienteFiscal es el contrato mínimo hacia la autoridad fiscal.
// *infra.AFIPClient lo implementa; los tests inyectan un stub.
type ClienteFiscal interface {
	SolicitarCAE(ctx context.Context, sol infra.SolicitudCAE) (*infra.RespuestaCAE, error)
}

// FiscalService coordina la obtención del CAE para un comprobante ya
// numerado y con totales congelados. Cada llamada registra un
// IntentoFiscal contra la conexión raíz, de modo que el historial
// sobrevive al rollback de la transacción de emisión.
//
// Resultados:
//   - aprobado:      CAE disponible en el intento, el llamador lo persiste
//   - rechazado:     ErrAutorizacionRechazada — el llamador debe abortar
//   - sin_respuesta: ErrAutorizacionDiferida — el documento puede emitirse
//     como pendiente y reintentarse después
type FiscalService interface {
	SolicitarAutorizacion(ctx context.Context, comp *model.Comprobante) (*model.IntentoFiscal, error)
}

type fiscalService struct {
	client     ClienteFiscal
	cb         *infra.CircuitBreaker
	intentos   repository.IntentoFiscalRepository
	cuitEmisor string
	timeout    time.Duration
}

func NewFiscalService(
	client ClienteFiscal,
	cb *infra.CircuitBreaker,
	intentos repository.IntentoFiscalRepository,
	cuitEmisor string,
	timeout time.Duration,
) FiscalService {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &fiscalService{
		client:     client,
		cb:         cb,
		intentos:   intentos,
		cuitEmisor: cuitEmisor,
		timeout:    timeout,
	}
}

func (s *fiscalService) SolicitarAutorizacion(ctx context.Context, comp *model.Comprobante) (*model.IntentoFiscal, error) {
	if comp.Numero == nil {
		return nil, fmt.Errorf("solicitar CAE: comprobante %s sin número asignado", comp.ID)
	}

	nro, err := s.intentos.ProximoNroIntento(ctx, comp.ID)
	if err != nil {
		return nil, fmt.Errorf("numerar intento fiscal: %w", err)
	}

	intento := &model.IntentoFiscal{
		ComprobanteID: comp.ID,
		NroIntento:    nro,
		SolicitadoEn:  time.Now(),
		Resultado:     model.IntentoPendiente,
	}
	if err := s.intentos.Create(ctx, intento); err != nil {
		return nil, fmt.Errorf("registrar intento fiscal: %w", err)
	}

	sol := infra.SolicitudCAE{
		Tipo:          comp.Tipo,
		Sucursal:      comp.Sucursal,
		Numero:        *comp.Numero,
		CUITEmisor:    s.cuitEmisor,
		ImporteNeto:   comp.ImporteNeto.InexactFloat64(),
		ImporteIVA:    comp.ImporteIVA.InexactFloat64(),
		ImporteTotal:  comp.ImporteTotal.InexactFloat64(),
		ComprobanteID: comp.ID.String(),
	}

	// Timeout acotado: esta llamada ocurre antes del commit de la emisión
	// y no debe extender la ventana del lock de numeración más de lo
	// estrictamente necesario.
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var resp *infra.RespuestaCAE
	cbErr := s.cb.Execute(func() error {
		r, err := s.client.SolicitarCAE(callCtx, sol)
		if err != nil {
			return err
		}
		resp = r
		return nil
	})

	switch {
	case cbErr != nil:
		// Falla de transporte o circuito abierto: el comprobante puede
		// emitirse igual y autorizarse en un reintento posterior.
		detalle := cbErr.Error()
		intento.Resultado = model.IntentoSinRespuesta
		intento.DetalleError = &detalle
		s.guardarIntento(ctx, intento)
		if errors.Is(cbErr, infra.ErrCircuitOpen) {
			log.Debug().Str("comprobante_id", comp.ID.String()).Msg("fiscal: circuito abierto, autorización diferida")
		}
		return intento, ErrAutorizacionDiferida

	case resp.Aprobada():
		cae := resp.CAE
		intento.Resultado = model.IntentoAprobado
		intento.CAE = &cae
		if venc, err := infra.ParseFechaCAE(resp.CAEVencimiento); err == nil {
			intento.CAEVencimiento = venc
		}
		s.guardarIntento(ctx, intento)
		log.Info().
			Str("cae", cae).
			Str("comprobante_id", comp.ID.String()).
			Int("intento", nro).
			Msg("fiscal: CAE otorgado")
		return intento, nil

	default:
		// Rechazo de negocio: terminal para este intento. El llamador
		// descarta la emisión completa; el intento queda como registro.
		motivo := resp.MotivoRechazo()
		intento.Resultado = model.IntentoRechazado
		intento.DetalleError = &motivo
		s.guardarIntento(ctx, intento)
		log.Warn().
			Str("comprobante_id", comp.ID.String()).
			Str("motivo", motivo).
			Msg("fiscal: comprobante rechazado por AFIP")
		return intento, ErrAutorizacionRechazada
	}
}

func (s *fiscalService) guardarIntento(ctx context.Context, intento *model.IntentoFiscal) {
	if err := s.intentos.Update(ctx, intento); err != nil {
		log.Error().Err(err).
			Str("comprobante_id", intento.ComprobanteID.String()).
			Msg("fiscal: no se pudo actualizar el intento")
	}
}
