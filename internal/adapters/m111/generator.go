// Package m111 serializes a computed declaration into the tax authority's
// fixed-width presentation file: one declarant header record and one totals
// record, 252 characters each, CRLF-terminated, ISO-8859-1 encoded.
package m111

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/asesorix/modelo111/internal/adapters/m111/spec"
	"github.com/asesorix/modelo111/internal/domain"
)

type Encoder struct{}

func New() *Encoder { return &Encoder{} }

// Encode writes the two records of the declaration file to w, each followed
// by CRLF. The output bytes are ISO-8859-1; padAlpha guarantees every
// character of the in-memory records falls inside that charset.
func (e *Encoder) Encode(ctx context.Context, d *domain.Declaration, c *domain.Company, w io.Writer) error {
	rec1, err := e.buildRecord1(d, c)
	if err != nil {
		return err
	}
	rec2, err := e.buildRecord2(d, c)
	if err != nil {
		return err
	}

	enc := transform.NewWriter(w, charmap.ISO8859_1.NewEncoder())
	for _, r := range []string{rec1, rec2} {
		if n := utf8.RuneCountInString(r); n != spec.RecordLen {
			return fmt.Errorf("record %q is %d chars (want %d)", r[:1], n, spec.RecordLen)
		}
		if _, err := io.WriteString(enc, r+"\r\n"); err != nil {
			return err
		}
	}
	return enc.Close()
}

// Filename returns the attachment name: <taxId>_<year>_<periodDigits>.111.
func (e *Encoder) Filename(d *domain.Declaration, c *domain.Company) string {
	return fmt.Sprintf("%s_%d_%s.111", strings.ToUpper(strings.TrimSpace(c.TaxID)), d.Year(), PeriodField(d.Period))
}

func (e *Encoder) buildRecord1(d *domain.Declaration, c *domain.Company) (string, error) {
	b := newBuf()
	b.put("RecordType", spec.Record1, "1")
	b.put("Model", spec.Record1, spec.ModelCode)
	b.put("Year", spec.Record1, fmt.Sprintf("%04d", d.Year()))
	b.put("TaxID", spec.Record1, padAlpha(c.TaxID, 9))
	b.put("LegalName", spec.Record1, padAlpha(c.LegalName, 40))
	b.put("SupportType", spec.Record1, spec.SupportType)
	b.put("Phone", spec.Record1, padAlpha(c.Phone, 9))
	b.put("ContactPerson", spec.Record1, padAlpha(c.ContactPerson, 40))
	// LegalRepTaxID stays blank: presentation by the declarant itself.
	b.put("Period", spec.Record1, PeriodField(d.Period))
	return b.String(), nil
}

func (e *Encoder) buildRecord2(d *domain.Declaration, c *domain.Company) (string, error) {
	base, err := amount17(d.BaseRetenciones)
	if err != nil {
		return "", fmt.Errorf("base retenciones: %w", err)
	}
	ret, err := amount17(d.RetencionesPracticadas)
	if err != nil {
		return "", fmt.Errorf("retenciones practicadas: %w", err)
	}
	prev, err := amount17(d.IngresosPeriodoAnterior)
	if err != nil {
		return "", fmt.Errorf("ingresos periodo anterior: %w", err)
	}

	b := newBuf()
	b.put("RecordType", spec.Record2, "2")
	b.put("Model", spec.Record2, spec.ModelCode)
	b.put("Year", spec.Record2, fmt.Sprintf("%04d", d.Year()))
	b.put("TaxID", spec.Record2, padAlpha(c.TaxID, 9))
	b.put("Period", spec.Record2, PeriodField(d.Period))
	b.put("Subclave", spec.Record2, spec.Subclave)
	b.put("NumRecipients", spec.Record2, fmt.Sprintf("%09d", d.NumRecipients))
	b.put("BaseRetenciones", spec.Record2, base)
	b.put("RetencionesPracticadas", spec.Record2, ret)
	b.put("IngresosPeriodoAnterior", spec.Record2, prev)
	return b.String(), nil
}

// PeriodField maps a period to its 2-character file field. Unrecognized
// values map to the first quarter, matching the form's silent default.
func PeriodField(p domain.Period) string {
	switch p {
	case domain.PeriodT1:
		return "1T"
	case domain.PeriodT2:
		return "2T"
	case domain.PeriodT3:
		return "3T"
	case domain.PeriodT4:
		return "4T"
	case domain.PeriodAnnual:
		return "0A"
	default:
		return "1T"
	}
}

// ---------------------------------------------------------------------------
// Buffer
// ---------------------------------------------------------------------------

// fixedBuf holds one record as runes so field positions stay character
// positions regardless of the UTF-8 byte width of the value.
type fixedBuf struct{ data []rune }

func newBuf() *fixedBuf {
	d := make([]rune, spec.RecordLen)
	for i := range d {
		d[i] = ' '
	}
	return &fixedBuf{data: d}
}

// put looks up fieldName in fields and writes value at its position.
// Panics on an unknown field name.
func (b *fixedBuf) put(fieldName string, fields []spec.Field, value string) {
	for _, f := range fields {
		if f.Name == fieldName {
			rs := []rune(value)
			if len(rs) > f.Len() {
				rs = rs[:f.Len()]
			}
			copy(b.data[f.Start-1:f.End], rs)
			return
		}
	}
	panic(fmt.Sprintf("m111: unknown field %q", fieldName))
}

func (b *fixedBuf) String() string { return string(b.data) }

// ---------------------------------------------------------------------------
// Formatting helpers
// ---------------------------------------------------------------------------

// translit maps the accented Latin letters legal in the source data onto the
// plain uppercase letters the file format allows.
var translit = map[rune]rune{
	'á': 'A', 'é': 'E', 'í': 'I', 'ó': 'O', 'ú': 'U',
	'Á': 'A', 'É': 'E', 'Í': 'I', 'Ó': 'O', 'Ú': 'U',
	'ñ': 'N', 'Ñ': 'N', 'ü': 'U', 'Ü': 'U',
}

// maxLatin1 is the last code point ISO-8859-1 can represent.
const maxLatin1 = '\u00ff'

// padAlpha transliterates accents, uppercases, truncates to n and right-pads
// with spaces to exactly n characters. Characters ISO-8859-1 cannot represent
// become spaces so the encoded record always stays valid. All counting is in
// runes; the result may be longer than n bytes.
func padAlpha(s string, n int) string {
	var b strings.Builder
	for _, r := range s {
		if t, ok := translit[r]; ok {
			r = t
		}
		b.WriteRune(r)
	}
	out := []rune(strings.ToUpper(b.String()))
	for i, r := range out {
		if r > maxLatin1 {
			out[i] = ' '
		}
	}
	if len(out) > n {
		out = out[:n]
	}
	return string(out) + strings.Repeat(" ", n-len(out))
}

// amount17 formats a monetary value as 15 integer + 2 implied decimal digits,
// zero left-padded: the value times 100, rounded half away from zero.
// Negative values are refused.
func amount17(v decimal.Decimal) (string, error) {
	if v.IsNegative() {
		return "", fmt.Errorf("negative amount %s cannot be encoded", v)
	}
	cents := v.Shift(2).Round(0)
	digits := cents.String()
	if len(digits) > 17 {
		return "", fmt.Errorf("amount %s exceeds 17 digits", v)
	}
	return strings.Repeat("0", 17-len(digits)) + digits, nil
}
