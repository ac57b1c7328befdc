package m111_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/asesorix/modelo111/internal/adapters/m111"
	"github.com/asesorix/modelo111/internal/adapters/m111/spec"
	"github.com/asesorix/modelo111/internal/domain"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// extract returns a 1-based inclusive substring of s (matches spec field positions).
func extract(s string, start, end int) string {
	if start < 1 || end > len(s) || start > end {
		return "<out-of-range>"
	}
	return s[start-1 : end]
}

// records splits an encoded stream into its CRLF-terminated records.
func records(t *testing.T, output []byte) []string {
	t.Helper()
	s := string(output)
	if !strings.HasSuffix(s, "\r\n") {
		t.Fatalf("output does not end with CRLF")
	}
	return strings.Split(strings.TrimSuffix(s, "\r\n"), "\r\n")
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func testDeclaration(t *testing.T) *domain.Declaration {
	return &domain.Declaration{
		FiscalYear: domain.FiscalYear{
			Code:  "2025",
			Start: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
		},
		Period:                  domain.PeriodT2,
		BaseRetenciones:         dec(t, "1234.56"),
		RetencionesPracticadas:  dec(t, "185.18"),
		IngresosPeriodoAnterior: dec(t, "0"),
		TotalIngresar:           dec(t, "185.18"),
		NumRecipients:           3,
	}
}

func testCompany() *domain.Company {
	return &domain.Company{
		TaxID:         "B12345678",
		LegalName:     "Construcciones Ibáñez SL",
		Phone:         "911234567",
		ContactPerson: "María Ibáñez",
	}
}

func encode(t *testing.T, d *domain.Declaration, c *domain.Company) []string {
	t.Helper()
	var buf bytes.Buffer
	if err := m111.New().Encode(context.Background(), d, c, &buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	recs := records(t, buf.Bytes())
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	return recs
}

// ---------------------------------------------------------------------------
// Spec structural tests: both layouts must be gapless, non-overlapping, and
// cover exactly 252 characters.
// ---------------------------------------------------------------------------

func TestSpecStructure(t *testing.T) {
	for recName, fields := range map[string][]spec.Field{
		"Record1": spec.Record1,
		"Record2": spec.Record2,
	} {
		t.Run(recName, func(t *testing.T) {
			prev := 0
			for _, f := range fields {
				if f.Start != prev+1 {
					t.Errorf("field %s starts at %d, want %d", f.Name, f.Start, prev+1)
				}
				if f.End < f.Start {
					t.Errorf("field %s ends before it starts", f.Name)
				}
				prev = f.End
			}
			if prev != spec.RecordLen {
				t.Errorf("layout covers %d chars, want %d", prev, spec.RecordLen)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Encoding
// ---------------------------------------------------------------------------

func TestEncode_RecordLengths(t *testing.T) {
	recs := encode(t, testDeclaration(t), testCompany())
	for i, r := range recs {
		if len(r) != spec.RecordLen {
			t.Errorf("record %d is %d bytes, want %d", i+1, len(r), spec.RecordLen)
		}
	}
}

func TestEncode_Record1Fields(t *testing.T) {
	recs := encode(t, testDeclaration(t), testCompany())
	r1 := recs[0]

	for _, tc := range []struct {
		name       string
		start, end int
		want       string
	}{
		{"RecordType", 1, 1, "1"},
		{"Model", 2, 4, "111"},
		{"Year", 5, 8, "2025"},
		{"TaxID", 9, 17, "B12345678"},
		{"LegalName", 18, 57, "CONSTRUCCIONES IBANEZ SL                "},
		{"SupportType", 58, 58, "T"},
		{"Phone", 59, 67, "911234567"},
		{"ContactPerson", 68, 107, "MARIA IBANEZ                            "},
		{"LegalRepTaxID", 108, 116, "         "},
		{"Period", 117, 118, "2T"},
	} {
		if got := extract(r1, tc.start, tc.end); got != tc.want {
			t.Errorf("%s = %q, want %q", tc.name, got, tc.want)
		}
	}
	if rest := extract(r1, 119, 252); rest != strings.Repeat(" ", 134) {
		t.Errorf("trailer is not blank: %q", rest)
	}
}

func TestEncode_Record2Fields(t *testing.T) {
	recs := encode(t, testDeclaration(t), testCompany())
	r2 := recs[1]

	for _, tc := range []struct {
		name       string
		start, end int
		want       string
	}{
		{"RecordType", 1, 1, "2"},
		{"Model", 2, 4, "111"},
		{"Year", 5, 8, "2025"},
		{"TaxID", 9, 17, "B12345678"},
		{"Period", 18, 19, "2T"},
		{"Subclave", 20, 21, "01"},
		{"NumRecipients", 22, 30, "000000003"},
		{"BaseRetenciones", 31, 47, "00000000000123456"},
		{"RetencionesPracticadas", 48, 64, "00000000000018518"},
		{"IngresosPeriodoAnterior", 65, 81, "00000000000000000"},
	} {
		if got := extract(r2, tc.start, tc.end); got != tc.want {
			t.Errorf("%s = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestEncode_TruncatesOverlongName(t *testing.T) {
	c := testCompany()
	c.LegalName = strings.Repeat("A", 60)
	recs := encode(t, testDeclaration(t), c)
	if got := extract(recs[0], 18, 57); got != strings.Repeat("A", 40) {
		t.Errorf("LegalName = %q, want 40 A's", got)
	}
}

// A name with a Latin-1 character outside the transliteration table must not
// shorten the record: field widths count characters, and ç travels as the
// single ISO-8859-1 byte 0xE7 (0xC7 uppercased).
func TestEncode_Latin1NameKeepsRecordWidth(t *testing.T) {
	c := testCompany()
	c.LegalName = "Barça SL"
	recs := encode(t, testDeclaration(t), c)

	if len(recs[0]) != spec.RecordLen {
		t.Fatalf("record 1 wire length = %d, want %d", len(recs[0]), spec.RecordLen)
	}
	want := "BAR\xc7A SL" + strings.Repeat(" ", 32)
	if got := extract(recs[0], 18, 57); got != want {
		t.Errorf("LegalName = %q, want %q", got, want)
	}
}

// Truncation lands exactly on a character that is multi-byte in UTF-8: the
// character must survive whole, not be split into a replacement rune.
func TestEncode_TruncationBoundaryOnMultibyteRune(t *testing.T) {
	c := testCompany()
	c.LegalName = strings.Repeat("a", 39) + "çX"
	recs := encode(t, testDeclaration(t), c)

	want := strings.Repeat("A", 39) + "\xc7"
	if got := extract(recs[0], 18, 57); got != want {
		t.Errorf("LegalName = %q, want %q", got, want)
	}
	if len(recs[0]) != spec.RecordLen {
		t.Errorf("record 1 wire length = %d, want %d", len(recs[0]), spec.RecordLen)
	}
}

// Characters ISO-8859-1 cannot represent become spaces instead of failing the
// whole encoding.
func TestEncode_NonLatin1BecomesSpace(t *testing.T) {
	c := testCompany()
	c.LegalName = "Łuka SL"
	recs := encode(t, testDeclaration(t), c)

	want := " UKA SL" + strings.Repeat(" ", 33)
	if got := extract(recs[0], 18, 57); got != want {
		t.Errorf("LegalName = %q, want %q", got, want)
	}
}

func TestEncode_RoundsHalfAwayFromZero(t *testing.T) {
	d := testDeclaration(t)
	d.BaseRetenciones = dec(t, "10.005")
	recs := encode(t, d, testCompany())
	if got := extract(recs[1], 31, 47); got != "00000000000001001" {
		t.Errorf("BaseRetenciones = %q, want 00000000000001001", got)
	}
}

func TestEncode_RefusesNegativeAmount(t *testing.T) {
	d := testDeclaration(t)
	d.RetencionesPracticadas = dec(t, "-1.00")
	var buf bytes.Buffer
	if err := m111.New().Encode(context.Background(), d, testCompany(), &buf); err == nil {
		t.Fatal("expected error for negative amount, got nil")
	}
}

func TestEncode_AnnualPeriod(t *testing.T) {
	d := testDeclaration(t)
	d.Period = domain.PeriodAnnual
	recs := encode(t, d, testCompany())
	if got := extract(recs[0], 117, 118); got != "0A" {
		t.Errorf("record 1 period = %q, want 0A", got)
	}
	if got := extract(recs[1], 18, 19); got != "0A" {
		t.Errorf("record 2 period = %q, want 0A", got)
	}
}

func TestPeriodField(t *testing.T) {
	for _, tc := range []struct {
		period domain.Period
		want   string
	}{
		{domain.PeriodT1, "1T"},
		{domain.PeriodT2, "2T"},
		{domain.PeriodT3, "3T"},
		{domain.PeriodT4, "4T"},
		{domain.PeriodAnnual, "0A"},
		{domain.Period("bogus"), "1T"},
	} {
		if got := m111.PeriodField(tc.period); got != tc.want {
			t.Errorf("PeriodField(%q) = %q, want %q", tc.period, got, tc.want)
		}
	}
}

func TestFilename(t *testing.T) {
	got := m111.New().Filename(testDeclaration(t), testCompany())
	if got != "B12345678_2025_2T.111" {
		t.Errorf("Filename = %q, want B12345678_2025_2T.111", got)
	}
}

// Round-trip of the informal decoding rule: splitting the digit string and
// inserting a decimal point two digits from the right recovers the value.
func TestEncode_AmountRoundTrip(t *testing.T) {
	d := testDeclaration(t)
	d.BaseRetenciones = dec(t, "1234.56")
	recs := encode(t, d, testCompany())
	field := extract(recs[1], 31, 47)
	back := dec(t, field[:15]+"."+field[15:])
	if !back.Equal(dec(t, "1234.56")) {
		t.Errorf("round-trip gave %s, want 1234.56", back)
	}
}
