// Package report computes the Modelo 111 declaration: it resolves the
// reporting period, selects the retention and payroll subaccounts, and
// aggregates the period's ledger lines into per-recipient and grand totals.
package report

import (
	"context"
	"errors"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/asesorix/modelo111/internal/domain"
	"github.com/asesorix/modelo111/internal/ports"
)

var (
	// ErrNoFiscalYear signals that file generation was requested without a
	// resolvable fiscal year. The on-screen report never raises this; it
	// renders zero totals instead.
	ErrNoFiscalYear = errors.New("no fiscal year selected")

	// ErrNoCompany signals that the fiscal year's owning company could not be
	// loaded, which makes the declarant header impossible to fill.
	ErrNoCompany = errors.New("company not found for fiscal year")
)

// Service runs aggregations against the ledger store. Stateless; one
// Declaration is built from scratch per call.
type Service struct {
	repo ports.LedgerRepository
}

func NewService(repo ports.LedgerRepository) *Service {
	return &Service{repo: repo}
}

// Run computes the declaration for one fiscal year and period. A missing or
// unknown fiscal year yields an all-zero declaration rather than an error so
// the report stays renderable before the user has finished selecting inputs.
func (s *Service) Run(ctx context.Context, fiscalYearCode string, period domain.Period, previousIncome decimal.Decimal) (*domain.Declaration, error) {
	d := &domain.Declaration{
		Period:                  period,
		BaseRetenciones:         decimal.Zero,
		RetencionesPracticadas:  decimal.Zero,
		IngresosPeriodoAnterior: previousIncome,
		TotalIngresar:           previousIncome,
	}

	if fiscalYearCode == "" {
		return d, nil
	}
	fy, err := s.repo.FiscalYear(ctx, fiscalYearCode)
	if err != nil {
		return nil, err
	}
	if fy == nil {
		return d, nil
	}
	d.FiscalYear = *fy
	d.DateStart, d.DateEnd = ResolveDates(period, fy.Start)

	sets, err := buildAccountSets(ctx, s.repo, fy.Code)
	if err != nil {
		return nil, err
	}
	if err := s.aggregate(ctx, d, sets); err != nil {
		return nil, err
	}

	d.TotalIngresar = d.RetencionesPracticadas.Add(d.IngresosPeriodoAnterior)
	return d, nil
}

// Company resolves the declarant company of an already-computed declaration.
// Used by file and PDF generation; the HTML report does not need it.
func (s *Service) Company(ctx context.Context, d *domain.Declaration) (*domain.Company, error) {
	if d.FiscalYear.Code == "" {
		return nil, ErrNoFiscalYear
	}
	c, err := s.repo.Company(ctx, d.FiscalYear.CompanyID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNoCompany
	}
	return c, nil
}

// aggregate is the single pass over the period's lines.
//
// Retention lines drive everything: each adds its credit to the running
// retention total and to its counterpart's recipient. The taxable base of an
// accounting entry, summed over ALL of the entry's lines, is attributed to
// the first retention line of that entry and then marked consumed, so an
// entry with several retention lines never double-counts its base. Payroll
// lines of the same entries then add their debits as salary base, one line at
// a time with no de-duplication.
func (s *Service) aggregate(ctx context.Context, d *domain.Declaration, sets *accountSets) error {
	recipients := newRecipientSet()

	var retentionLines []domain.LedgerLine
	if len(sets.retention) > 0 {
		lines, err := s.repo.LinesByPeriod(ctx, d.FiscalYear.Code, d.DateStart, d.DateEnd, sets.retentionIDs())
		if err != nil {
			return err
		}
		retentionLines = lines
	}

	entryIDs := distinctEntryIDs(retentionLines)

	var baseLines []domain.LedgerLine
	if len(entryIDs) > 0 && len(sets.payroll) > 0 {
		lines, err := s.repo.LinesByEntries(ctx, entryIDs, sets.payrollIDs())
		if err != nil {
			return err
		}
		baseLines = lines
	}

	bases := map[int64]decimal.Decimal{}
	if len(entryIDs) > 0 {
		loaded, err := s.repo.EntryBases(ctx, entryIDs)
		if err != nil {
			return err
		}
		bases = loaded
	}
	consumed := map[int64]bool{}

	withRetention := map[string]bool{}
	for _, line := range retentionLines {
		d.RetencionesPracticadas = d.RetencionesPracticadas.Add(line.Credit)

		var rec *domain.Recipient
		if line.CounterpartCode != "" {
			withRetention[line.CounterpartCode] = true
			rec = s.recipient(ctx, recipients, d.FiscalYear.Code, line.CounterpartCode)
			rec.Retention = rec.Retention.Add(line.Credit)
		}

		if base, ok := bases[line.EntryID]; ok && !consumed[line.EntryID] && base.IsPositive() {
			d.BaseRetenciones = d.BaseRetenciones.Add(base)
			if rec != nil {
				rec.Base = rec.Base.Add(base)
			}
			consumed[line.EntryID] = true
		}
	}

	for _, line := range baseLines {
		if line.CounterpartCode == "" {
			continue
		}
		rec := s.recipient(ctx, recipients, d.FiscalYear.Code, line.CounterpartCode)
		rec.Base = rec.Base.Add(line.Debit)
		d.BaseRetenciones = d.BaseRetenciones.Add(line.Debit)
	}

	d.NumRecipients = len(withRetention)
	d.Recipients = recipients.sorted()
	return nil
}

// recipient returns the accumulator for a counterpart, creating it on first
// sight. The description lookup happens only on creation, once per
// counterpart.
func (s *Service) recipient(ctx context.Context, recipients *recipientSet, fiscalYear, code string) *domain.Recipient {
	if rec := recipients.lookup(code); rec != nil {
		return rec
	}
	return recipients.add(code, s.describe(ctx, fiscalYear, code))
}

// describe fetches the counterpart subaccount's description, empty when the
// subaccount does not exist in this fiscal year.
func (s *Service) describe(ctx context.Context, fiscalYear, code string) string {
	sub, err := s.repo.SubaccountByCode(ctx, fiscalYear, code)
	if err != nil || sub == nil {
		return ""
	}
	return sub.Description
}

func distinctEntryIDs(lines []domain.LedgerLine) []int64 {
	seen := map[int64]bool{}
	var ids []int64
	for _, l := range lines {
		if !seen[l.EntryID] {
			seen[l.EntryID] = true
			ids = append(ids, l.EntryID)
		}
	}
	return ids
}

// recipientSet maps counterpart code to its accumulator. Descriptions are
// fixed when a recipient is added and never overwritten.
type recipientSet struct {
	byCode map[string]*domain.Recipient
}

func newRecipientSet() *recipientSet {
	return &recipientSet{byCode: map[string]*domain.Recipient{}}
}

func (r *recipientSet) lookup(code string) *domain.Recipient {
	return r.byCode[code]
}

func (r *recipientSet) add(code, description string) *domain.Recipient {
	rec := &domain.Recipient{
		Code:        code,
		Description: description,
		Base:        decimal.Zero,
		Retention:   decimal.Zero,
	}
	r.byCode[code] = rec
	return rec
}

func (r *recipientSet) sorted() []domain.Recipient {
	out := make([]domain.Recipient, 0, len(r.byCode))
	for _, rec := range r.byCode {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
