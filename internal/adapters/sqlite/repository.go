// Package sqlite implements the ledger/metadata store behind the report
// computation: companies, fiscal years, chart subaccounts, retention rules,
// and accounting entries with their lines.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/asesorix/modelo111/internal/domain"
)

const dateFormat = "2006-01-02"

// Monetary columns are stored as decimal strings so no precision is lost
// round-tripping through SQLite's numeric affinity.
const schema = `
CREATE TABLE IF NOT EXISTS companies (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	tax_id         TEXT NOT NULL,
	legal_name     TEXT NOT NULL,
	phone          TEXT NOT NULL DEFAULT '',
	contact_person TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS fiscal_years (
	code       TEXT PRIMARY KEY,
	company_id INTEGER NOT NULL REFERENCES companies(id),
	name       TEXT NOT NULL,
	start_date TEXT NOT NULL,
	end_date   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS subaccounts (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	fiscal_year  TEXT NOT NULL REFERENCES fiscal_years(code),
	code         TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	special_code TEXT NOT NULL DEFAULT '',
	UNIQUE (fiscal_year, code)
);

CREATE TABLE IF NOT EXISTS retention_rules (
	code                   TEXT PRIMARY KEY,
	description            TEXT NOT NULL DEFAULT '',
	percentage             TEXT NOT NULL DEFAULT '0',
	accrual_subaccount     TEXT NOT NULL DEFAULT '',
	withholding_subaccount TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS entries (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	fiscal_year TEXT NOT NULL REFERENCES fiscal_years(code),
	number      INTEGER NOT NULL,
	entry_date  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_entries_year_date ON entries(fiscal_year, entry_date);

CREATE TABLE IF NOT EXISTS entry_lines (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	entry_id         INTEGER NOT NULL REFERENCES entries(id),
	subaccount_id    INTEGER NOT NULL REFERENCES subaccounts(id),
	counterpart_code TEXT NOT NULL DEFAULT '',
	debit            TEXT NOT NULL DEFAULT '0',
	credit           TEXT NOT NULL DEFAULT '0',
	taxable_base     TEXT NOT NULL DEFAULT '0'
);
CREATE INDEX IF NOT EXISTS idx_entry_lines_entry ON entry_lines(entry_id);
`

type Repository struct {
	db *sql.DB
}

// New opens the SQLite database and applies the schema. Use ":memory:" for
// an in-memory database in tests.
func New(dsn string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dsn+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Every pooled connection to ":memory:" would open its own empty
	// database, so keep a single connection.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error { return r.db.Close() }

// ── Companies ────────────────────────────────────────────────────────────────

func (r *Repository) CreateCompany(ctx context.Context, c *domain.Company) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO companies (tax_id, legal_name, phone, contact_person)
		VALUES (?,?,?,?)`,
		c.TaxID, c.LegalName, c.Phone, c.ContactPerson)
	if err != nil {
		return err
	}
	c.ID, _ = res.LastInsertId()
	return nil
}

func (r *Repository) Company(ctx context.Context, id int64) (*domain.Company, error) {
	c := &domain.Company{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, tax_id, legal_name, phone, contact_person
		FROM companies WHERE id=?`, id).
		Scan(&c.ID, &c.TaxID, &c.LegalName, &c.Phone, &c.ContactPerson)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ── Fiscal years ─────────────────────────────────────────────────────────────

func (r *Repository) CreateFiscalYear(ctx context.Context, fy *domain.FiscalYear) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO fiscal_years (code, company_id, name, start_date, end_date)
		VALUES (?,?,?,?,?)`,
		fy.Code, fy.CompanyID, fy.Name,
		fy.Start.Format(dateFormat), fy.End.Format(dateFormat))
	return err
}

func (r *Repository) FiscalYears(ctx context.Context) ([]domain.FiscalYear, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT code, company_id, name, start_date, end_date
		FROM fiscal_years ORDER BY name DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []domain.FiscalYear
	for rows.Next() {
		fy, err := scanFiscalYear(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *fy)
	}
	return list, rows.Err()
}

func (r *Repository) FiscalYear(ctx context.Context, code string) (*domain.FiscalYear, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT code, company_id, name, start_date, end_date
		FROM fiscal_years WHERE code=?`, code)
	fy, err := scanFiscalYear(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return fy, nil
}

type scanner interface{ Scan(dest ...any) error }

func scanFiscalYear(s scanner) (*domain.FiscalYear, error) {
	fy := &domain.FiscalYear{}
	var start, end string
	if err := s.Scan(&fy.Code, &fy.CompanyID, &fy.Name, &start, &end); err != nil {
		return nil, err
	}
	var err error
	if fy.Start, err = time.Parse(dateFormat, start); err != nil {
		return nil, fmt.Errorf("fiscal year %s start date: %w", fy.Code, err)
	}
	if fy.End, err = time.Parse(dateFormat, end); err != nil {
		return nil, fmt.Errorf("fiscal year %s end date: %w", fy.Code, err)
	}
	return fy, nil
}

// ── Subaccounts ──────────────────────────────────────────────────────────────

func (r *Repository) CreateSubaccount(ctx context.Context, sub *domain.Subaccount) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO subaccounts (fiscal_year, code, description, special_code)
		VALUES (?,?,?,?)`,
		sub.FiscalYear, sub.Code, sub.Description, sub.SpecialCode)
	if err != nil {
		return err
	}
	sub.ID, _ = res.LastInsertId()
	return nil
}

func (r *Repository) SubaccountsBySpecial(ctx context.Context, fiscalYear, specialCode string) ([]domain.Subaccount, error) {
	return r.subaccounts(ctx, `
		SELECT id, fiscal_year, code, description, special_code
		FROM subaccounts WHERE fiscal_year=? AND special_code=? ORDER BY code`,
		fiscalYear, specialCode)
}

func (r *Repository) SubaccountsByPrefix(ctx context.Context, fiscalYear, prefix string) ([]domain.Subaccount, error) {
	return r.subaccounts(ctx, `
		SELECT id, fiscal_year, code, description, special_code
		FROM subaccounts WHERE fiscal_year=? AND code LIKE ? ORDER BY code`,
		fiscalYear, prefix+"%")
}

func (r *Repository) SubaccountByCode(ctx context.Context, fiscalYear, code string) (*domain.Subaccount, error) {
	sub := &domain.Subaccount{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, fiscal_year, code, description, special_code
		FROM subaccounts WHERE fiscal_year=? AND code=?`, fiscalYear, code).
		Scan(&sub.ID, &sub.FiscalYear, &sub.Code, &sub.Description, &sub.SpecialCode)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (r *Repository) subaccounts(ctx context.Context, query string, args ...any) ([]domain.Subaccount, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []domain.Subaccount
	for rows.Next() {
		var sub domain.Subaccount
		if err := rows.Scan(&sub.ID, &sub.FiscalYear, &sub.Code, &sub.Description, &sub.SpecialCode); err != nil {
			return nil, err
		}
		list = append(list, sub)
	}
	return list, rows.Err()
}

// ── Retention rules ──────────────────────────────────────────────────────────

func (r *Repository) CreateRetentionRule(ctx context.Context, rule *domain.RetentionRule) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO retention_rules (code, description, percentage, accrual_subaccount, withholding_subaccount)
		VALUES (?,?,?,?,?)`,
		rule.Code, rule.Description, rule.Percentage.String(),
		rule.AccrualSubaccount, rule.WithholdingSubaccount)
	return err
}

func (r *Repository) RetentionRules(ctx context.Context) ([]domain.RetentionRule, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT code, description, percentage, accrual_subaccount, withholding_subaccount
		FROM retention_rules ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []domain.RetentionRule
	for rows.Next() {
		var rule domain.RetentionRule
		var pct string
		if err := rows.Scan(&rule.Code, &rule.Description, &pct,
			&rule.AccrualSubaccount, &rule.WithholdingSubaccount); err != nil {
			return nil, err
		}
		if rule.Percentage, err = decimal.NewFromString(pct); err != nil {
			return nil, fmt.Errorf("retention rule %s percentage: %w", rule.Code, err)
		}
		list = append(list, rule)
	}
	return list, rows.Err()
}

// ── Entries and lines ────────────────────────────────────────────────────────

// CreateEntry inserts an accounting entry header and returns its id.
func (r *Repository) CreateEntry(ctx context.Context, fiscalYear string, number int64, entryDate time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO entries (fiscal_year, number, entry_date) VALUES (?,?,?)`,
		fiscalYear, number, entryDate.Format(dateFormat))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *Repository) CreateLine(ctx context.Context, line *domain.LedgerLine) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO entry_lines (entry_id, subaccount_id, counterpart_code, debit, credit, taxable_base)
		VALUES (?,?,?,?,?,?)`,
		line.EntryID, line.SubaccountID, line.CounterpartCode,
		line.Debit.String(), line.Credit.String(), line.TaxableBase.String())
	if err != nil {
		return err
	}
	line.ID, _ = res.LastInsertId()
	return nil
}

func (r *Repository) LinesByPeriod(ctx context.Context, fiscalYear string, start, end time.Time, subIDs []int64) ([]domain.LedgerLine, error) {
	if len(subIDs) == 0 {
		return nil, nil
	}
	args := []any{fiscalYear, start.Format(dateFormat), end.Format(dateFormat)}
	args = append(args, int64Args(subIDs)...)
	return r.lines(ctx, `
		SELECT l.id, l.entry_id, l.subaccount_id, l.counterpart_code, l.debit, l.credit, l.taxable_base
		FROM entry_lines AS l
		JOIN entries AS e ON l.entry_id = e.id
		WHERE e.fiscal_year = ?
		  AND e.entry_date BETWEEN ? AND ?
		  AND l.subaccount_id IN (`+placeholders(len(subIDs))+`)
		ORDER BY l.id`, args...)
}

func (r *Repository) LinesByEntries(ctx context.Context, entryIDs, subIDs []int64) ([]domain.LedgerLine, error) {
	if len(entryIDs) == 0 || len(subIDs) == 0 {
		return nil, nil
	}
	args := append(int64Args(entryIDs), int64Args(subIDs)...)
	return r.lines(ctx, `
		SELECT id, entry_id, subaccount_id, counterpart_code, debit, credit, taxable_base
		FROM entry_lines
		WHERE entry_id IN (`+placeholders(len(entryIDs))+`)
		  AND subaccount_id IN (`+placeholders(len(subIDs))+`)
		ORDER BY id`, args...)
}

func (r *Repository) EntryBases(ctx context.Context, entryIDs []int64) (map[int64]decimal.Decimal, error) {
	out := map[int64]decimal.Decimal{}
	if len(entryIDs) == 0 {
		return out, nil
	}
	// Summing happens in decimal space, not in SQL, so large bases keep
	// exact cents.
	rows, err := r.db.QueryContext(ctx, `
		SELECT entry_id, GROUP_CONCAT(taxable_base, '|')
		FROM entry_lines
		WHERE entry_id IN (`+placeholders(len(entryIDs))+`)
		GROUP BY entry_id`, int64Args(entryIDs)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var entryID int64
		var concat string
		if err := rows.Scan(&entryID, &concat); err != nil {
			return nil, err
		}
		sum := decimal.Zero
		for _, part := range strings.Split(concat, "|") {
			d, err := decimal.NewFromString(part)
			if err != nil {
				return nil, fmt.Errorf("entry %d taxable base %q: %w", entryID, part, err)
			}
			sum = sum.Add(d)
		}
		out[entryID] = sum
	}
	return out, rows.Err()
}

func (r *Repository) lines(ctx context.Context, query string, args ...any) ([]domain.LedgerLine, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []domain.LedgerLine
	for rows.Next() {
		var l domain.LedgerLine
		var debit, credit, base string
		if err := rows.Scan(&l.ID, &l.EntryID, &l.SubaccountID, &l.CounterpartCode, &debit, &credit, &base); err != nil {
			return nil, err
		}
		if l.Debit, err = decimal.NewFromString(debit); err != nil {
			return nil, fmt.Errorf("line %d debit: %w", l.ID, err)
		}
		if l.Credit, err = decimal.NewFromString(credit); err != nil {
			return nil, fmt.Errorf("line %d credit: %w", l.ID, err)
		}
		if l.TaxableBase, err = decimal.NewFromString(base); err != nil {
			return nil, fmt.Errorf("line %d taxable base: %w", l.ID, err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
