package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sqliteadapter "github.com/asesorix/modelo111/internal/adapters/sqlite"
	"github.com/asesorix/modelo111/internal/domain"
)

func newRepo(t *testing.T) *sqliteadapter.Repository {
	repo, err := sqliteadapter.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedYear(t *testing.T, repo *sqliteadapter.Repository) {
	ctx := context.Background()
	company := &domain.Company{TaxID: "B12345678", LegalName: "Demo SL"}
	require.NoError(t, repo.CreateCompany(ctx, company))
	require.NoError(t, repo.CreateFiscalYear(ctx, &domain.FiscalYear{
		Code:      "2025",
		CompanyID: company.ID,
		Name:      "2025",
		Start:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		End:       time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
	}))
}

func TestFiscalYearRoundTrip(t *testing.T) {
	repo := newRepo(t)
	seedYear(t, repo)
	ctx := context.Background()

	fy, err := repo.FiscalYear(ctx, "2025")
	require.NoError(t, err)
	require.NotNil(t, fy)
	assert.Equal(t, "2025", fy.Code)
	assert.Equal(t, 2025, fy.Start.Year())
	assert.Equal(t, time.December, fy.End.Month())

	missing, err := repo.FiscalYear(ctx, "1999")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSubaccountLookups(t *testing.T) {
	repo := newRepo(t)
	seedYear(t, repo)
	ctx := context.Background()

	for _, s := range []domain.Subaccount{
		{FiscalYear: "2025", Code: "4751000000", Description: "HP acreedora", SpecialCode: "IRPFPR"},
		{FiscalYear: "2025", Code: "6400000000", Description: "Sueldos"},
		{FiscalYear: "2025", Code: "6400000001", Description: "Pagas extra"},
	} {
		sub := s
		require.NoError(t, repo.CreateSubaccount(ctx, &sub))
	}

	special, err := repo.SubaccountsBySpecial(ctx, "2025", "IRPFPR")
	require.NoError(t, err)
	require.Len(t, special, 1)
	assert.Equal(t, "4751000000", special[0].Code)

	payroll, err := repo.SubaccountsByPrefix(ctx, "2025", "640")
	require.NoError(t, err)
	assert.Len(t, payroll, 2)

	byCode, err := repo.SubaccountByCode(ctx, "2025", "6400000000")
	require.NoError(t, err)
	require.NotNil(t, byCode)
	assert.Equal(t, "Sueldos", byCode.Description)

	missing, err := repo.SubaccountByCode(ctx, "2025", "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

// EntryBases sums the taxable base over ALL lines of each entry, exactly.
func TestEntryBases(t *testing.T) {
	repo := newRepo(t)
	seedYear(t, repo)
	ctx := context.Background()

	sub := &domain.Subaccount{FiscalYear: "2025", Code: "6230000000"}
	require.NoError(t, repo.CreateSubaccount(ctx, sub))

	e1, err := repo.CreateEntry(ctx, "2025", 1, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	for _, base := range []string{"0.10", "0.20", "1000"} {
		d, err := decimal.NewFromString(base)
		require.NoError(t, err)
		require.NoError(t, repo.CreateLine(ctx, &domain.LedgerLine{
			EntryID: e1, SubaccountID: sub.ID,
			Debit: decimal.Zero, Credit: decimal.Zero, TaxableBase: d,
		}))
	}

	bases, err := repo.EntryBases(ctx, []int64{e1})
	require.NoError(t, err)
	require.Contains(t, bases, e1)
	assert.True(t, bases[e1].Equal(decimal.RequireFromString("1000.30")),
		"got %s", bases[e1])
}

func TestLinesByPeriod_EmptySetShortCircuits(t *testing.T) {
	repo := newRepo(t)
	seedYear(t, repo)

	lines, err := repo.LinesByPeriod(context.Background(), "2025",
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC), nil)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestLinesByPeriod_DateBounds(t *testing.T) {
	repo := newRepo(t)
	seedYear(t, repo)
	ctx := context.Background()

	sub := &domain.Subaccount{FiscalYear: "2025", Code: "4751000000"}
	require.NoError(t, repo.CreateSubaccount(ctx, sub))

	addEntry := func(day time.Time) {
		id, err := repo.CreateEntry(ctx, "2025", 1, day)
		require.NoError(t, err)
		require.NoError(t, repo.CreateLine(ctx, &domain.LedgerLine{
			EntryID: id, SubaccountID: sub.ID,
			Debit: decimal.Zero, Credit: decimal.NewFromInt(1), TaxableBase: decimal.Zero,
		}))
	}
	addEntry(time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)) // last day in range
	addEntry(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))  // just outside

	lines, err := repo.LinesByPeriod(ctx, "2025",
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		[]int64{sub.ID})
	require.NoError(t, err)
	assert.Len(t, lines, 1)
}
