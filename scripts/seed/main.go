// Command seed loads a small demo data set: one company, one fiscal year, a
// slice of the chart of accounts, two retention rules, and a handful of
// entries covering professional invoices and a payroll run.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/shopspring/decimal"

	sqliteadapter "github.com/asesorix/modelo111/internal/adapters/sqlite"
	"github.com/asesorix/modelo111/internal/domain"
)

func main() {
	dsn := os.Getenv("DB_PATH")
	if dsn == "" {
		dsn = "modelo111.db"
	}
	repo, err := sqliteadapter.New(dsn)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()

	company := &domain.Company{
		TaxID:         "B12345678",
		LegalName:     "Construcciones Ibáñez SL",
		Phone:         "911234567",
		ContactPerson: "María Ibáñez",
	}
	must(repo.CreateCompany(ctx, company))

	fy := &domain.FiscalYear{
		Code:      "2025",
		CompanyID: company.ID,
		Name:      "2025",
		Start:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		End:       time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	must(repo.CreateFiscalYear(ctx, fy))

	subs := map[string]*domain.Subaccount{}
	for _, s := range []domain.Subaccount{
		{Code: "4751000000", Description: "HP acreedora retenciones", SpecialCode: "IRPFPR"},
		{Code: "4730000000", Description: "HP retenciones soportadas"},
		{Code: "6400000000", Description: "Sueldos y salarios"},
		{Code: "4100000001", Description: "Asesoría López"},
		{Code: "4100000002", Description: "Estudio García Arquitectos"},
		{Code: "6230000000", Description: "Servicios profesionales"},
		{Code: "5720000000", Description: "Banco"},
		{Code: "4650000001", Description: "Nómina Juan Pérez"},
	} {
		s.FiscalYear = fy.Code
		sub := s
		must(repo.CreateSubaccount(ctx, &sub))
		subs[sub.Code] = &sub
	}

	must(repo.CreateRetentionRule(ctx, &domain.RetentionRule{
		Code:                  "IRPF15",
		Description:           "Profesionales 15%",
		Percentage:            decimal.NewFromInt(15),
		AccrualSubaccount:     "4730000000",
		WithholdingSubaccount: "4751000000",
	}))
	must(repo.CreateRetentionRule(ctx, &domain.RetentionRule{
		Code:        "IRPF7",
		Description: "Profesionales 7% (inicio de actividad)",
		Percentage:  decimal.NewFromInt(7),
	}))

	// Professional invoice: 1000.00 base, 150.00 retention.
	entry1, err := repo.CreateEntry(ctx, fy.Code, 1, time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC))
	must(err)
	addLine(ctx, repo, entry1, subs["6230000000"].ID, "", dec("1000"), dec("0"), dec("1000"))
	addLine(ctx, repo, entry1, subs["4751000000"].ID, "4100000001", dec("0"), dec("150"), dec("0"))
	addLine(ctx, repo, entry1, subs["4100000001"].ID, "", dec("0"), dec("850"), dec("0"))

	// Second professional, second quarter.
	entry2, err := repo.CreateEntry(ctx, fy.Code, 2, time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC))
	must(err)
	addLine(ctx, repo, entry2, subs["6230000000"].ID, "", dec("2400"), dec("0"), dec("2400"))
	addLine(ctx, repo, entry2, subs["4751000000"].ID, "4100000002", dec("0"), dec("360"), dec("0"))
	addLine(ctx, repo, entry2, subs["4100000002"].ID, "", dec("0"), dec("2040"), dec("0"))

	// Payroll run: salary base travels on the 640 debit, not on the entry base.
	entry3, err := repo.CreateEntry(ctx, fy.Code, 3, time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC))
	must(err)
	addLine(ctx, repo, entry3, subs["6400000000"].ID, "4650000001", dec("1800"), dec("0"), dec("0"))
	addLine(ctx, repo, entry3, subs["4751000000"].ID, "4650000001", dec("0"), dec("270"), dec("0"))
	addLine(ctx, repo, entry3, subs["5720000000"].ID, "", dec("0"), dec("1530"), dec("0"))

	log.Printf("seeded %s: company %s, fiscal year %s", dsn, company.LegalName, fy.Code)
}

func addLine(ctx context.Context, repo *sqliteadapter.Repository, entryID, subID int64, counterpart string, debit, credit, base decimal.Decimal) {
	must(repo.CreateLine(ctx, &domain.LedgerLine{
		EntryID:         entryID,
		SubaccountID:    subID,
		CounterpartCode: counterpart,
		Debit:           debit,
		Credit:          credit,
		TaxableBase:     base,
	}))
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		log.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}
