package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/asesorix/modelo111/internal/adapters/pdf"
	"github.com/asesorix/modelo111/internal/domain"
	"github.com/asesorix/modelo111/internal/ports"
	"github.com/asesorix/modelo111/internal/report"
)

type Handler struct {
	repo ports.LedgerRepository
	svc  *report.Service
	enc  ports.DeclarationEncoder
}

func New(repo ports.LedgerRepository, svc *report.Service, enc ports.DeclarationEncoder) *Handler {
	return &Handler{repo: repo, svc: svc, enc: enc}
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", h.index)
	mux.HandleFunc("POST /modelo111", h.modelo111)
	return mux
}

// index renders the selection form with an empty (all-zero) report.
func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	h.renderReport(w, r, "", domain.DefaultPeriod, decimal.Zero, "")
}

// modelo111 computes the declaration for the posted parameters and then
// dispatches on the action flag: render it, download the presentation file,
// or download the PDF summary.
func (h *Handler) modelo111(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	fiscalYear := r.FormValue("fiscal_year")
	period := report.ParsePeriod(r.FormValue("period"))
	previous, err := parseAmount(r.FormValue("previous_income"))
	if err != nil {
		http.Error(w, "invalid previous-period income", 400)
		return
	}

	switch r.FormValue("action") {
	case "download":
		h.download(w, r, fiscalYear, period, previous)
	case "pdf":
		h.downloadPDF(w, r, fiscalYear, period, previous)
	default:
		h.renderReport(w, r, fiscalYear, period, previous, "")
	}
}

// renderReport always answers with the report page; a missing fiscal year
// shows zero totals plus a warning instead of failing.
func (h *Handler) renderReport(w http.ResponseWriter, r *http.Request, fiscalYear string, period domain.Period, previous decimal.Decimal, warning string) {
	d, err := h.svc.Run(r.Context(), fiscalYear, period, previous)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	years, err := h.repo.FiscalYears(r.Context())
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	if warning == "" && fiscalYear != "" && d.FiscalYear.Code == "" {
		warning = "Ejercicio no encontrado"
	}
	render(w, &viewData{
		FiscalYears:        years,
		Periods:            domain.Periods(),
		SelectedFiscalYear: fiscalYear,
		SelectedPeriod:     period,
		PreviousIncome:     previous,
		Declaration:        d,
		Warning:            warning,
	})
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request, fiscalYear string, period domain.Period, previous decimal.Decimal) {
	d, c, ok := h.declarationForExport(w, r, fiscalYear, period, previous)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := h.enc.Encode(r.Context(), d, c, &buf); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=ISO-8859-1")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, h.enc.Filename(d, c)))
	w.Write(buf.Bytes())
}

func (h *Handler) downloadPDF(w http.ResponseWriter, r *http.Request, fiscalYear string, period domain.Period, previous decimal.Decimal) {
	d, c, ok := h.declarationForExport(w, r, fiscalYear, period, previous)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := pdf.Generate(d, c, &buf); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	filename := fmt.Sprintf("modelo111_%d_%s.pdf", d.Year(), d.Period)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Write(buf.Bytes())
}

// declarationForExport runs the aggregation and resolves the company,
// refusing the export when either is impossible. The on-screen report has no
// such refusals; only file output needs a fiscal year and declarant data.
func (h *Handler) declarationForExport(w http.ResponseWriter, r *http.Request, fiscalYear string, period domain.Period, previous decimal.Decimal) (*domain.Declaration, *domain.Company, bool) {
	if fiscalYear == "" {
		http.Error(w, report.ErrNoFiscalYear.Error(), 400)
		return nil, nil, false
	}
	d, err := h.svc.Run(r.Context(), fiscalYear, period, previous)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return nil, nil, false
	}
	if d.FiscalYear.Code == "" {
		http.Error(w, report.ErrNoFiscalYear.Error(), 400)
		return nil, nil, false
	}
	c, err := h.svc.Company(r.Context(), d)
	if err != nil {
		status := 500
		if errors.Is(err, report.ErrNoFiscalYear) || errors.Is(err, report.ErrNoCompany) {
			status = 400
		}
		http.Error(w, err.Error(), status)
		return nil, nil, false
	}
	return d, c, true
}

func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
