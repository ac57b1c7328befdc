// Package spec defines the fixed-width record layouts of the Modelo 111
// presentation file. Two record types exist: type 1 carries the declarant
// header, type 2 the period totals. Both are exactly 252 characters; fields
// are 1-based inclusive positions.
package spec

const (
	RecordLen = 252

	ModelCode   = "111"
	SupportType = "T"  // telematic presentation
	Subclave    = "01" // ordinary positive declaration
)

type Field struct {
	Name        string
	Start       int
	End         int
	Type        FieldType
	Description string
}

func (f Field) Len() int { return f.End - f.Start + 1 }

type FieldType int

const (
	Alpha  FieldType = iota // uppercased, transliterated, space right-padded
	Digits                  // integer, zero left-padded
	Amount                  // 15 integer + 2 implied decimal digits, zero-padded
	Fixed                   // literal constant
	Blank                   // must be spaces
)

// Record1 is the declarant header.
var Record1 = []Field{
	{Name: "RecordType", Start: 1, End: 1, Type: Fixed, Description: "Constant '1'"},
	{Name: "Model", Start: 2, End: 4, Type: Fixed, Description: "Constant '111'"},
	{Name: "Year", Start: 5, End: 8, Type: Digits, Description: "Declaration year, 4 digits"},
	{Name: "TaxID", Start: 9, End: 17, Type: Alpha, Description: "Declarant NIF, 9 chars"},
	{Name: "LegalName", Start: 18, End: 57, Type: Alpha, Description: "Declarant legal name, 40 chars"},
	{Name: "SupportType", Start: 58, End: 58, Type: Fixed, Description: "Constant 'T'"},
	{Name: "Phone", Start: 59, End: 67, Type: Alpha, Description: "Contact phone, 9 chars"},
	{Name: "ContactPerson", Start: 68, End: 107, Type: Alpha, Description: "Contact person, 40 chars"},
	{Name: "LegalRepTaxID", Start: 108, End: 116, Type: Blank, Description: "Legal representative NIF placeholder"},
	{Name: "Period", Start: 117, End: 118, Type: Alpha, Description: "'1T'..'4T' or '0A'"},
	{Name: "Blank119", Start: 119, End: 252, Type: Blank, Description: "Reserved"},
}

// Record2 carries the aggregated totals.
var Record2 = []Field{
	{Name: "RecordType", Start: 1, End: 1, Type: Fixed, Description: "Constant '2'"},
	{Name: "Model", Start: 2, End: 4, Type: Fixed, Description: "Constant '111'"},
	{Name: "Year", Start: 5, End: 8, Type: Digits, Description: "Declaration year, 4 digits"},
	{Name: "TaxID", Start: 9, End: 17, Type: Alpha, Description: "Declarant NIF, 9 chars"},
	{Name: "Period", Start: 18, End: 19, Type: Alpha, Description: "'1T'..'4T' or '0A'"},
	{Name: "Subclave", Start: 20, End: 21, Type: Fixed, Description: "Constant '01'"},
	{Name: "NumRecipients", Start: 22, End: 30, Type: Digits, Description: "Retention recipient count, 9 digits"},
	{Name: "BaseRetenciones", Start: 31, End: 47, Type: Amount, Description: "Accumulated taxable base"},
	{Name: "RetencionesPracticadas", Start: 48, End: 64, Type: Amount, Description: "Accumulated retention"},
	{Name: "IngresosPeriodoAnterior", Start: 65, End: 81, Type: Amount, Description: "Previous-period income"},
	{Name: "Blank82", Start: 82, End: 252, Type: Blank, Description: "Reserved"},
}
