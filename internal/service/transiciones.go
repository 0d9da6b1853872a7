package service

import (
	"github.com/parinohernan/janus314-sub001/internal/model"
)

// Eventos del ciclo de vida.
const (
	EventoConfirmar = "confirmar"
	EventoFacturar  = "facturar"
	EventoAnular    = "anular"
)

// transicion identifica una celda de la tabla de transiciones.
type transicion struct {
	Tipo   string
	Estado string
	Evento string
}

// tablaTransiciones es la máquina de estados de todos los tipos de
// comprobante en un solo lugar, indexada por tipo. Todo par no modelado
// es ErrTransicionInvalida: ninguna transición falla en silencio.
//
//	PRV/PED: borrador → confirmado → {facturado | anulado}
//	FCA:     borrador → confirmado → {facturado | anulado}
//	NCA/NDA: borrador → confirmado → anulado
//
// facturado admite anular solo con la guarda de documento derivado que
// aplica el orquestador: una preventa facturada exige que su factura
// esté anulada primero.
var tablaTransiciones = map[transicion]string{
	{model.TipoPreventa, model.EstadoBorrador, EventoConfirmar}:   model.EstadoConfirmado,
	{model.TipoPreventa, model.EstadoConfirmado, EventoFacturar}:  model.EstadoFacturado,
	{model.TipoPreventa, model.EstadoConfirmado, EventoAnular}:    model.EstadoAnulado,
	{model.TipoPreventa, model.EstadoFacturado, EventoAnular}:     model.EstadoAnulado,

	{model.TipoPedido, model.EstadoBorrador, EventoConfirmar}:  model.EstadoConfirmado,
	{model.TipoPedido, model.EstadoConfirmado, EventoFacturar}: model.EstadoFacturado,
	{model.TipoPedido, model.EstadoConfirmado, EventoAnular}:   model.EstadoAnulado,
	{model.TipoPedido, model.EstadoFacturado, EventoAnular}:    model.EstadoAnulado,

	{model.TipoFactura, model.EstadoBorrador, EventoConfirmar}:  model.EstadoConfirmado,
	{model.TipoFactura, model.EstadoConfirmado, EventoFacturar}: model.EstadoFacturado,
	{model.TipoFactura, model.EstadoConfirmado, EventoAnular}:   model.EstadoAnulado,
	{model.TipoFactura, model.EstadoFacturado, EventoAnular}:    model.EstadoAnulado,

	{model.TipoNotaCredito, model.EstadoBorrador, EventoConfirmar}: model.EstadoConfirmado,
	{model.TipoNotaCredito, model.EstadoConfirmado, EventoAnular}:  model.EstadoAnulado,

	{model.TipoNotaDebito, model.EstadoBorrador, EventoConfirmar}: model.EstadoConfirmado,
	{model.TipoNotaDebito, model.EstadoConfirmado, EventoAnular}:  model.EstadoAnulado,
}

// siguienteEstado resuelve la transición o devuelve ErrTransicionInvalida.
func siguienteEstado(tipo, estado, evento string) (string, error) {
	destino, ok := tablaTransiciones[transicion{tipo, estado, evento}]
	if !ok {
		return "", ErrTransicionInvalida
	}
	return destino, nil
}
