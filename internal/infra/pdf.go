package infra

// pdf.go — Generación del PDF del comprobante autorizado con go-pdf/fpdf.
// Layout A4: encabezado con tipo/sucursal/número, datos del receptor,
// tabla de ítems, desglose de IVA por alícuota, total y pie con CAE.
//
// El archivo se guarda en storagePath/{tipo}_{sucursal}_{numero}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/parinohernan/janus314-sub001/internal/model"

	"github.com/go-pdf/fpdf"
)

var nombresTipo = map[string]string{
	model.TipoFactura:     "FACTURA",
	model.TipoNotaCredito: "NOTA DE CRÉDITO",
	model.TipoNotaDebito:  "NOTA DE DÉBITO",
	model.TipoPreventa:    "PREVENTA",
	model.TipoPedido:      "PEDIDO",
}

// GenerarComprobantePDF renderiza el comprobante y devuelve la ruta del
// archivo generado. Requiere número asignado (comprobante confirmado).
func GenerarComprobantePDF(comp *model.Comprobante, storagePath string) (string, error) {
	if comp.Numero == nil {
		return "", fmt.Errorf("pdf: comprobante sin número asignado")
	}
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("%s_%s_%s.pdf", comp.Tipo, comp.Sucursal, *comp.Numero)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Encabezado ───────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, nombresTipo[comp.Tipo], "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW, 7, fmt.Sprintf("%s-%s", comp.Sucursal, *comp.Numero), "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, "Fecha de emisión: "+comp.FechaEmision.Format("02/01/2006"), "", 1, "C", false, 0, "")
	pdf.Ln(3)

	if comp.Cliente != nil {
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(contentW, 5, "Cliente: "+comp.Cliente.RazonSocial, "", 1, "L", false, 0, "")
		if comp.Cliente.CUIT != nil {
			pdf.CellFormat(contentW, 5, "CUIT: "+*comp.Cliente.CUIT, "", 1, "L", false, 0, "")
		}
		pdf.Ln(2)
	}

	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(2)

	// ── Ítems ────────────────────────────────────────────────────────────────
	col1 := contentW * 0.44 // artículo
	col2 := contentW * 0.14 // cantidad
	col3 := contentW * 0.14 // precio unit.
	col4 := contentW * 0.12 // desc %
	col5 := contentW * 0.16 // importe

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(col1, 6, "Artículo", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 6, "Cantidad", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 6, "P. Unit.", "B", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 6, "Desc. %", "B", 0, "R", false, 0, "")
	pdf.CellFormat(col5, 6, "Importe", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	for _, item := range comp.Items {
		nombre := item.ArticuloID.String()[:8]
		if item.Articulo != nil {
			nombre = item.Articulo.Nombre
		}
		if len(nombre) > 40 {
			nombre = nombre[:39] + "…"
		}
		pdf.CellFormat(col1, 5, nombre, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, item.Cantidad().StringFixed(3), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, "$"+item.PrecioUnitario.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 5, item.DescuentoPorc.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(col5, 5, "$"+item.ImporteLinea.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(2)

	// ── Totales ──────────────────────────────────────────────────────────────
	labelW := col1 + col2 + col3 + col4

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(labelW, 5, "Neto gravado:", "", 0, "R", false, 0, "")
	pdf.CellFormat(col5, 5, "$"+comp.ImporteNeto.StringFixed(2), "", 1, "R", false, 0, "")

	for _, iva := range comp.DetallesIVA {
		pdf.CellFormat(labelW, 5, fmt.Sprintf("IVA %s%%:", iva.Alicuota.StringFixed(2)), "", 0, "R", false, 0, "")
		pdf.CellFormat(col5, 5, "$"+iva.Importe.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(labelW, 7, "TOTAL:", "", 0, "R", false, 0, "")
	pdf.CellFormat(col5, 7, "$"+comp.ImporteTotal.StringFixed(2), "", 1, "R", false, 0, "")

	// ── Pie fiscal ───────────────────────────────────────────────────────────
	if comp.CAE != nil {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(contentW, 5, "CAE: "+*comp.CAE, "", 1, "L", false, 0, "")
		if comp.CAEVencimiento != nil {
			pdf.SetFont("Helvetica", "", 8)
			pdf.CellFormat(contentW, 5, "Vencimiento CAE: "+comp.CAEVencimiento.Format("02/01/2006"), "", 1, "L", false, 0, "")
		}
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}
