package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Period identifies the reporting window of a declaration: one of the four
// quarters of the fiscal year, or the whole year.
type Period string

const (
	PeriodT1     Period = "T1"
	PeriodT2     Period = "T2"
	PeriodT3     Period = "T3"
	PeriodT4     Period = "T4"
	PeriodAnnual Period = "0A"

	// DefaultPeriod is applied when the request carries no period at all.
	DefaultPeriod = PeriodT1
)

// Periods returns the selectable periods in presentation order, each with its
// user-facing label.
func Periods() []PeriodInfo {
	return []PeriodInfo{
		{Code: PeriodT1, Label: "Primer trimestre"},
		{Code: PeriodT2, Label: "Segundo trimestre"},
		{Code: PeriodT3, Label: "Tercer trimestre"},
		{Code: PeriodT4, Label: "Cuarto trimestre"},
		{Code: PeriodAnnual, Label: "Anual"},
	}
}

type PeriodInfo struct {
	Code  Period
	Label string
}

// Company holds the declarant master data written into the file header.
type Company struct {
	ID            int64
	TaxID         string // NIF/CIF
	LegalName     string
	Phone         string
	ContactPerson string
}

// FiscalYear is an accounting exercise. Start and End bound the postable
// dates; the declaration year is taken from Start.
type FiscalYear struct {
	Code      string // e.g. "2025"
	CompanyID int64
	Name      string
	Start     time.Time
	End       time.Time
}

// Subaccount is a leaf of the chart of accounts for one fiscal year.
// SpecialCode marks membership in a special-account classification
// ("IRPFPR" groups the IRPF purchases/retentions subaccounts).
type Subaccount struct {
	ID          int64
	FiscalYear  string
	Code        string
	Description string
	SpecialCode string
}

// RetentionRule is one configured IRPF retention: a percentage plus the
// subaccount codes it posts against. Either subaccount code may be empty.
type RetentionRule struct {
	Code                  string
	Description           string
	Percentage            decimal.Decimal
	AccrualSubaccount     string // purchase-side, "retenciones soportadas"
	WithholdingSubaccount string // sales-side, "retenciones practicadas"
}

// LedgerLine is one posting row of an accounting entry. Never mutated by the
// report computation.
type LedgerLine struct {
	ID              int64
	EntryID         int64
	SubaccountID    int64
	CounterpartCode string
	Debit           decimal.Decimal
	Credit          decimal.Decimal
	TaxableBase     decimal.Decimal
}

// Recipient accumulates per-counterpart totals during aggregation.
type Recipient struct {
	Code        string
	Description string
	Base        decimal.Decimal
	Retention   decimal.Decimal
}

// Declaration is the full result of one aggregation run: the totals that fill
// the Modelo 111 boxes plus the per-recipient breakdown, recipients ordered
// by code ascending. Recomputed from scratch on every request, never
// persisted.
type Declaration struct {
	FiscalYear FiscalYear
	Period     Period
	DateStart  time.Time
	DateEnd    time.Time

	BaseRetenciones         decimal.Decimal
	RetencionesPracticadas  decimal.Decimal
	IngresosPeriodoAnterior decimal.Decimal
	TotalIngresar           decimal.Decimal

	// NumRecipients counts distinct counterparts with at least one retention
	// line. Recipients may additionally hold payroll-only counterparts, which
	// the official count excludes.
	NumRecipients int
	Recipients    []Recipient
}

// Year is the 4-digit declaration year, taken from the fiscal year start.
func (d *Declaration) Year() int { return d.FiscalYear.Start.Year() }
