package countytax

// ValueKind declares how the raw text located by a rule is interpreted.
type ValueKind string

const (
	KindText  ValueKind = "text"
	KindMoney ValueKind = "money"
	KindDate  ValueKind = "date"
	KindYear  ValueKind = "year"
	KindCount ValueKind = "count"
)

func validValueKind(k ValueKind) bool {
	switch k {
	case KindText, KindMoney, KindDate, KindYear, KindCount:
		return true
	}
	return false
}

// ExtractionRule is a closed set of extraction strategies. Adding a
// strategy means adding a variant here and a case to Extract, so the
// compiler flags every dispatch site.
type ExtractionRule interface {
	strategy() string
}

// LabelSibling locates a document node whose text contains the label
// (case-insensitive, whitespace-collapsed) and reads the value from
// the remainder of that node's text, or failing that from an adjacent
// sibling.
type LabelSibling struct {
	LabelContains string
	Value         ValueKind
}

func (LabelSibling) strategy() string { return "label_sibling" }

// TableRows reads (year, amount) pairs out of a table located by id,
// treating the first row as a header.
type TableRows struct {
	TableID      string
	YearColumn   int
	AmountColumn int
}

func (TableRows) strategy() string { return "table_rows" }

// FieldRule binds a logical output field name to the rule that
// extracts it. The logical name, not the physical page structure, is
// the contract surface consumed by Assemble.
type FieldRule struct {
	Field string
	Rule  ExtractionRule
}

// Logical field names understood by the assembler.
const (
	FieldTaxYear                    = "tax_year"
	FieldOwnerName                  = "owner_name"
	FieldAddress                    = "address"
	FieldCurrentYearTotalTax        = "current_year_total_tax"
	FieldInstallment1Amount         = "installment_1_amount"
	FieldInstallment1DueDate        = "installment_1_due_date"
	FieldInstallment2Amount         = "installment_2_amount"
	FieldInstallment2DueDate        = "installment_2_due_date"
	FieldDelinquentAmount           = "delinquent_amount"
	FieldDelinquentYears            = "delinquent_years"
	FieldDelinquentInstallmentCount = "delinquent_installment_count"
	FieldPenaltiesAndInterest       = "penalties_and_interest"
)
