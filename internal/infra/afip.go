package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// SolicitudCAE es el contrato opaco hacia la autoridad fiscal: tipo,
// sucursal, número y totales del comprobante. El detalle del protocolo
// WSAA/WSFEV1 vive en el sidecar, no acá.
type SolicitudCAE struct {
	Tipo          string  `json:"tipo"`
	Sucursal      string  `json:"sucursal"`
	Numero        string  `json:"numero"`
	CUITEmisor    string  `json:"cuit_emisor"`
	ImporteNeto   float64 `json:"importe_neto"`
	ImporteIVA    float64 `json:"importe_iva"`
	ImporteTotal  float64 `json:"importe_total"`
	ComprobanteID string  `json:"comprobante_id"`
}

// ObservacionAFIP es una observación devuelta por la autoridad fiscal
// junto con un rechazo.
type ObservacionAFIP struct {
	Codigo  int    `json:"codigo"`
	Mensaje string `json:"mensaje"`
}

// RespuestaCAE es la respuesta de la autoridad fiscal.
// Resultado: "A" (aprobado) | "R" (rechazado).
type RespuestaCAE struct {
	CAE            string            `json:"cae"`
	CAEVencimiento string            `json:"cae_vencimiento"` // formato AFIP: YYYYMMDD
	Resultado      string            `json:"resultado"`
	Observaciones  []ObservacionAFIP `json:"observaciones"`
}

// Aprobada indica si la autoridad otorgó el CAE.
func (r *RespuestaCAE) Aprobada() bool { return r.Resultado == "A" }

// MotivoRechazo concatena las observaciones devueltas por la autoridad.
func (r *RespuestaCAE) MotivoRechazo() string {
	if len(r.Observaciones) == 0 {
		return fmt.Sprintf("resultado=%s", r.Resultado)
	}
	msg := ""
	for i, obs := range r.Observaciones {
		if i > 0 {
			msg += "; "
		}
		msg += fmt.Sprintf("[%d] %s", obs.Codigo, obs.Mensaje)
	}
	return msg
}

// AFIPClient delega la comunicación con AFIP en un sidecar HTTP.
// El timeout acota la única llamada de red que ocurre dentro de la
// ventana transaccional de emisión.
type AFIPClient struct {
	sidecarURL string
	httpClient *http.Client
}

func NewAFIPClient(sidecarURL string, timeout time.Duration) *AFIPClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &AFIPClient{
		sidecarURL: sidecarURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SolicitarCAE envía la solicitud al sidecar y devuelve la respuesta.
// Un error acá es siempre de transporte; los rechazos de negocio vienen
// dentro de RespuestaCAE.
func (c *AFIPClient) SolicitarCAE(ctx context.Context, sol SolicitudCAE) (*RespuestaCAE, error) {
	body, err := json.Marshal(sol)
	if err != nil {
		return nil, fmt.Errorf("afip: marshal solicitud: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.sidecarURL+"/cae", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("afip: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("afip: sidecar unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("afip: sidecar returned %d", resp.StatusCode)
	}

	var result RespuestaCAE
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("afip: decode respuesta: %w", err)
	}
	return &result, nil
}

// ParseFechaCAE interpreta el formato de fecha que devuelve AFIP (YYYYMMDD).
func ParseFechaCAE(s string) (*time.Time, error) {
	t, err := time.Parse("20060102", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
