// Package pdf renders a printable summary of a computed declaration: the
// declarant header, the period, the four totals boxes, and the per-recipient
// breakdown table.
package pdf

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"github.com/asesorix/modelo111/internal/domain"
)

// Generate writes the declaration summary PDF to w.
func Generate(d *domain.Declaration, c *domain.Company, w io.Writer) error {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(18, 18, 18)
	doc.SetAutoPageBreak(true, 18)
	doc.AliasNbPages("{nb}")
	doc.AddPage()

	pageW, _ := doc.GetPageSize()
	marginL, marginT, marginR, _ := doc.GetMargins()
	contentW := pageW - marginL - marginR

	// ── Header bar ───────────────────────────────────────────────────────────
	doc.SetFillColor(30, 30, 30)
	doc.Rect(marginL, marginT, contentW, 10, "F")
	doc.SetTextColor(255, 255, 255)
	doc.SetFont("Helvetica", "B", 11)
	doc.SetXY(marginL+2, marginT+1.5)
	doc.CellFormat(contentW-4, 7, "MODELO 111  RETENCIONES E INGRESOS A CUENTA DEL IRPF", "", 0, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 9)
	doc.CellFormat(0, 7, "Page "+fmt.Sprint(doc.PageNo())+" of {nb}", "", 1, "R", false, 0, "")
	doc.SetTextColor(0, 0, 0)

	y := marginT + 13

	// ── Declarant section ────────────────────────────────────────────────────
	doc.SetFillColor(240, 240, 240)
	doc.SetFont("Helvetica", "B", 8)
	doc.SetXY(marginL, y)
	doc.CellFormat(contentW, 5.5, "DECLARANTE", "LRT", 1, "L", true, 0, "")
	y += 5.5

	doc.SetFont("Helvetica", "", 9)
	doc.SetXY(marginL, y)
	colHalf := contentW / 2
	doc.CellFormat(colHalf, 6, c.LegalName, "L", 0, "L", false, 0, "")
	doc.CellFormat(colHalf, 6, "NIF: "+c.TaxID, "R", 1, "L", false, 0, "")
	y += 6
	doc.SetXY(marginL, y)
	doc.CellFormat(colHalf, 6, "Contacto: "+c.ContactPerson, "LB", 0, "L", false, 0, "")
	periodLabel := fmt.Sprintf("Ejercicio %d  -  %s a %s",
		d.Year(), d.DateStart.Format("02-01-2006"), d.DateEnd.Format("02-01-2006"))
	doc.CellFormat(colHalf, 6, periodLabel, "RB", 1, "L", false, 0, "")
	y += 10

	// ── Totals section ───────────────────────────────────────────────────────
	doc.SetFillColor(240, 240, 240)
	doc.SetFont("Helvetica", "B", 8)
	doc.SetXY(marginL, y)
	doc.CellFormat(contentW, 5.5, "RESUMEN", "LRT", 1, "L", true, 0, "")
	y += 5.5

	totals := []struct {
		label string
		value decimal.Decimal
	}{
		{"Base retenciones e ingresos a cuenta", d.BaseRetenciones},
		{"Retenciones practicadas", d.RetencionesPracticadas},
		{"Ingresos del periodo anterior", d.IngresosPeriodoAnterior},
		{"Total a ingresar", d.TotalIngresar},
	}
	doc.SetFont("Helvetica", "", 9)
	for i, row := range totals {
		border := "LR"
		if i == len(totals)-1 {
			border = "LRB"
			doc.SetFont("Helvetica", "B", 9)
		}
		doc.SetXY(marginL, y)
		doc.CellFormat(contentW*0.7, 6, row.label, border, 0, "L", false, 0, "")
		doc.CellFormat(contentW*0.3, 6, money(row.value), border, 1, "R", false, 0, "")
		y += 6
	}
	y += 4

	// ── Recipients section ───────────────────────────────────────────────────
	doc.SetFillColor(240, 240, 240)
	doc.SetFont("Helvetica", "B", 8)
	doc.SetXY(marginL, y)
	doc.CellFormat(contentW, 5.5,
		fmt.Sprintf("PERCEPTORES (%d)", d.NumRecipients), "LRT", 1, "L", true, 0, "")
	y += 5.5

	doc.SetXY(marginL, y)
	doc.CellFormat(contentW*0.2, 5.5, "Subcuenta", "LB", 0, "L", false, 0, "")
	doc.CellFormat(contentW*0.4, 5.5, "Descripcion", "B", 0, "L", false, 0, "")
	doc.CellFormat(contentW*0.2, 5.5, "Base", "B", 0, "R", false, 0, "")
	doc.CellFormat(contentW*0.2, 5.5, "Retencion", "RB", 1, "R", false, 0, "")

	doc.SetFont("Helvetica", "", 9)
	for _, rec := range d.Recipients {
		doc.CellFormat(contentW*0.2, 5.5, rec.Code, "L", 0, "L", false, 0, "")
		doc.CellFormat(contentW*0.4, 5.5, rec.Description, "", 0, "L", false, 0, "")
		doc.CellFormat(contentW*0.2, 5.5, money(rec.Base), "", 0, "R", false, 0, "")
		doc.CellFormat(contentW*0.2, 5.5, money(rec.Retention), "R", 1, "R", false, 0, "")
	}
	doc.CellFormat(contentW, 0, "", "T", 1, "L", false, 0, "")

	return doc.Output(w)
}

func money(v decimal.Decimal) string {
	return v.StringFixed(2) + " EUR"
}
