package ports

import (
	"context"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/asesorix/modelo111/internal/domain"
)

// LedgerRepository is the query surface the report computation needs from the
// accounting store. All reads are snapshots; the core performs no writes.
type LedgerRepository interface {
	Company(ctx context.Context, id int64) (*domain.Company, error)

	FiscalYears(ctx context.Context) ([]domain.FiscalYear, error)
	FiscalYear(ctx context.Context, code string) (*domain.FiscalYear, error)

	// SubaccountsBySpecial returns the subaccounts of a fiscal year carrying
	// the given special classification code. Empty slice when the
	// classification is not configured.
	SubaccountsBySpecial(ctx context.Context, fiscalYear, specialCode string) ([]domain.Subaccount, error)

	// SubaccountByCode resolves (fiscal year, code) to a subaccount, nil when
	// not found.
	SubaccountByCode(ctx context.Context, fiscalYear, code string) (*domain.Subaccount, error)

	// SubaccountsByPrefix returns the fiscal year's subaccounts whose code
	// starts with prefix.
	SubaccountsByPrefix(ctx context.Context, fiscalYear, prefix string) ([]domain.Subaccount, error)

	RetentionRules(ctx context.Context) ([]domain.RetentionRule, error)

	// LinesByPeriod returns the ledger lines posted within [start, end] of the
	// fiscal year whose subaccount id is in subIDs.
	LinesByPeriod(ctx context.Context, fiscalYear string, start, end time.Time, subIDs []int64) ([]domain.LedgerLine, error)

	// LinesByEntries returns the lines of the given entries restricted to the
	// subaccount id set.
	LinesByEntries(ctx context.Context, entryIDs []int64, subIDs []int64) ([]domain.LedgerLine, error)

	// EntryBases returns the taxable base summed over ALL lines of each entry.
	EntryBases(ctx context.Context, entryIDs []int64) (map[int64]decimal.Decimal, error)
}

// DeclarationEncoder produces the official fixed-width file for a declaration.
type DeclarationEncoder interface {
	// Encode writes both records of the declaration file to w.
	Encode(ctx context.Context, d *domain.Declaration, c *domain.Company, w io.Writer) error

	// Filename returns the download name for the declaration file.
	Filename(d *domain.Declaration, c *domain.Company) string
}
