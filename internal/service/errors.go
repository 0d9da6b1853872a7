package service

import "errors"

// Taxonomía de errores del motor. Los handlers los traducen a HTTP;
// el orquestador decide cuáles se reintentan.
var (
	// ErrConflictoAsignacion: la fila de numeración estaba tomada por otra
	// transacción. Transitorio — el orquestador reintenta con una
	// transacción fresca una cantidad acotada de veces.
	ErrConflictoAsignacion = errors.New("conflicto de asignación de número: secuencia en uso")

	// ErrClaveInvalida: tipo de comprobante o sucursal no reconocidos.
	ErrClaveInvalida = errors.New("tipo de comprobante o sucursal inválidos")

	// ErrTransicionInvalida: el par (estado, evento) no está modelado para
	// el tipo de documento.
	ErrTransicionInvalida = errors.New("transición de estado inválida")

	// ErrStockInsuficiente: el movimiento dejaría stock negativo en un
	// documento con control de stock. Aborta toda la transacción.
	ErrStockInsuficiente = errors.New("stock insuficiente")

	// ErrYaFacturado: el documento origen ya fue convertido o anulado.
	ErrYaFacturado = errors.New("el comprobante ya fue facturado o anulado")

	// ErrAnulacionNoPermitida: existe un documento downstream vigente; debe
	// anularse primero (la invalidación corre en una sola dirección).
	ErrAnulacionNoPermitida = errors.New("no se puede anular: existe un comprobante derivado vigente")

	// ErrAutorizacionDiferida: AFIP inalcanzable. El comprobante queda
	// emitido con autorización pendiente; un reintento posterior la
	// completa. Es el único caso de éxito parcial persistido.
	ErrAutorizacionDiferida = errors.New("autorización fiscal diferida: AFIP no disponible")

	// ErrAutorizacionRechazada: AFIP rechazó el comprobante. En la emisión
	// inicial provoca rollback completo.
	ErrAutorizacionRechazada = errors.New("autorización fiscal rechazada por AFIP")

	// ErrAutorizacionFallida: se agotaron los reintentos; requiere
	// intervención manual. El comprobante sigue pendiente.
	ErrAutorizacionFallida = errors.New("autorización fiscal fallida: reintentos agotados")
)
