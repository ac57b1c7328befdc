package handlers

import (
	"html/template"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/asesorix/modelo111/internal/domain"
)

// viewData feeds the single report page: the selection form plus the computed
// declaration beneath it.
type viewData struct {
	FiscalYears        []domain.FiscalYear
	Periods            []domain.PeriodInfo
	SelectedFiscalYear string
	SelectedPeriod     domain.Period
	PreviousIncome     decimal.Decimal
	Declaration        *domain.Declaration
	Warning            string
}

var pageTmpl = template.Must(template.New("page").Funcs(template.FuncMap{
	"money": func(v decimal.Decimal) string { return v.StringFixed(2) },
}).Parse(`<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Modelo 111 · Retenciones IRPF</title>
<style>
  :root {
    --ink: #0d1117;
    --paper: #f5f0e8;
    --accent: #c0392b;
    --muted: #6b5e4e;
    --rule: #b8a898;
  }
  * { box-sizing: border-box; }
  body {
    background: var(--paper);
    color: var(--ink);
    font-family: Georgia, serif;
    max-width: 880px;
    margin: 0 auto;
    padding: 2rem 1rem;
  }
  h1 { font-size: 1.4rem; border-bottom: 3px double var(--rule); padding-bottom: .4rem; }
  .mono { font-family: "Courier New", monospace; }
  form.params {
    display: flex; gap: 1rem; align-items: flex-end; flex-wrap: wrap;
    background: #fff; border: 1px solid var(--rule); padding: 1rem; margin-bottom: 1.5rem;
  }
  form.params label { display: block; font-size: .75rem; color: var(--muted); margin-bottom: .2rem; }
  form.params select, form.params input { padding: .35rem; border: 1px solid var(--rule); }
  button { padding: .45rem .9rem; border: 1px solid var(--ink); background: var(--ink); color: #fff; cursor: pointer; }
  button.secondary { background: #fff; color: var(--ink); }
  .warning { border: 2px solid var(--accent); color: var(--accent); padding: .5rem .8rem; margin-bottom: 1rem; }
  table { width: 100%; border-collapse: collapse; background: #fff; }
  th, td { border: 1px solid var(--rule); padding: .4rem .6rem; font-size: .9rem; }
  th { background: #ece4d4; text-align: left; }
  td.num, th.num { text-align: right; font-family: "Courier New", monospace; }
  .totals { margin: 1.5rem 0; }
  .totals td:first-child { width: 70%; }
  .totals tr:last-child td { font-weight: bold; }
</style>
</head>
<body>
<h1>Modelo 111 · Retenciones e ingresos a cuenta del IRPF</h1>

{{if .Warning}}<div class="warning">{{.Warning}}</div>{{end}}

<form class="params" method="post" action="/modelo111">
  <div>
    <label for="fiscal_year">Ejercicio</label>
    <select id="fiscal_year" name="fiscal_year">
      <option value="">—</option>
      {{range .FiscalYears}}
      <option value="{{.Code}}" {{if eq .Code $.SelectedFiscalYear}}selected{{end}}>{{.Name}}</option>
      {{end}}
    </select>
  </div>
  <div>
    <label for="period">Periodo</label>
    <select id="period" name="period">
      {{range .Periods}}
      <option value="{{.Code}}" {{if eq .Code $.SelectedPeriod}}selected{{end}}>{{.Label}}</option>
      {{end}}
    </select>
  </div>
  <div>
    <label for="previous_income">Ingresos periodo anterior</label>
    <input id="previous_income" name="previous_income" value="{{money .PreviousIncome}}" class="mono">
  </div>
  <button type="submit" name="action" value="view">Ver informe</button>
  <button type="submit" name="action" value="download" class="secondary">Descargar .111</button>
  <button type="submit" name="action" value="pdf" class="secondary">PDF</button>
</form>

{{with .Declaration}}
<table class="totals">
  <tr><td>Base retenciones e ingresos a cuenta</td><td class="num">{{money .BaseRetenciones}}</td></tr>
  <tr><td>Retenciones practicadas</td><td class="num">{{money .RetencionesPracticadas}}</td></tr>
  <tr><td>Ingresos del periodo anterior</td><td class="num">{{money .IngresosPeriodoAnterior}}</td></tr>
  <tr><td>Total a ingresar</td><td class="num">{{money .TotalIngresar}}</td></tr>
</table>

<h2>Perceptores ({{.NumRecipients}})</h2>
<table>
  <tr><th>Subcuenta</th><th>Descripción</th><th class="num">Base</th><th class="num">Retención</th></tr>
  {{range .Recipients}}
  <tr>
    <td class="mono">{{.Code}}</td>
    <td>{{.Description}}</td>
    <td class="num">{{money .Base}}</td>
    <td class="num">{{money .Retention}}</td>
  </tr>
  {{else}}
  <tr><td colspan="4">Sin movimientos en el periodo</td></tr>
  {{end}}
</table>
{{end}}

</body>
</html>`))

func render(w http.ResponseWriter, data *viewData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTmpl.Execute(w, data); err != nil {
		http.Error(w, err.Error(), 500)
	}
}
