package worker

// emision_worker.go
// Processes PDF emission jobs from QueueEmision: renders the printable
// comprobante once the CAE is granted, stores the path on the row and
// optionally enqueues an email job for the cliente.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/parinohernan/janus314-sub001/internal/infra"
	"github.com/parinohernan/janus314-sub001/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type EmisionWorker struct {
	comprobanteRepo repository.ComprobanteRepository
	dispatcher      *Dispatcher
	pdfStoragePath  string
}

func NewEmisionWorker(comprobanteRepo repository.ComprobanteRepository, dispatcher *Dispatcher, pdfStoragePath string) *EmisionWorker {
	return &EmisionWorker{
		comprobanteRepo: comprobanteRepo,
		dispatcher:      dispatcher,
		pdfStoragePath:  pdfStoragePath,
	}
}

func (w *EmisionWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload EmisionJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("emision_worker: invalid payload")
		return
	}

	id, err := uuid.Parse(payload.ComprobanteID)
	if err != nil {
		log.Error().Str("comprobante_id", payload.ComprobanteID).Msg("emision_worker: invalid comprobante_id")
		return
	}

	comp, err := w.comprobanteRepo.FindByID(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("comprobante_id", payload.ComprobanteID).Msg("emision_worker: comprobante not found")
		return
	}

	pdfPath, err := infra.GenerarComprobantePDF(comp, w.pdfStoragePath)
	if err != nil {
		log.Warn().Err(err).Str("comprobante_id", payload.ComprobanteID).Msg("emision_worker: PDF generation failed")
		return
	}

	comp.PDFPath = &pdfPath
	if err := w.comprobanteRepo.Save(ctx, comp); err != nil {
		log.Error().Err(err).Str("comprobante_id", payload.ComprobanteID).Msg("emision_worker: failed to store pdf path")
		return
	}
	log.Info().Str("pdf", pdfPath).Str("comprobante_id", payload.ComprobanteID).Msg("emision_worker: PDF generated")

	if comp.Cliente == nil || comp.Cliente.Email == nil || *comp.Cliente.Email == "" || comp.Numero == nil {
		return
	}
	emailJob := EmailJobPayload{
		ToEmail: *comp.Cliente.Email,
		Subject: fmt.Sprintf("Comprobante %s %s-%s", comp.Tipo, comp.Sucursal, *comp.Numero),
		Body: fmt.Sprintf("Adjunto encontrarás tu comprobante.\nTotal: $%s",
			comp.ImporteTotal.StringFixed(2)),
		PDFPath: pdfPath,
	}
	if err := w.dispatcher.EnqueueEmail(ctx, emailJob); err != nil {
		log.Warn().Err(err).Str("email", *comp.Cliente.Email).Msg("emision_worker: failed to enqueue email")
		return
	}
	log.Info().Str("email", *comp.Cliente.Email).Msg("emision_worker: email job enqueued")
}
