package countytax

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{
		County:   "Brown",
		Platform: "landrecords",
		Search: SearchDescriptor{
			URL:      "https://county.example/search",
			Method:   "GET",
			Supports: []InputKind{InputParcelID},
			Fields:   map[InputKind]string{InputParcelID: "parcelNumber"},
		},
		Fields: []FieldRule{
			{Field: FieldTaxYear, Rule: LabelSibling{LabelContains: "Tax Year", Value: KindYear}},
			{Field: FieldOwnerName, Rule: LabelSibling{LabelContains: "Owner", Value: KindText}},
			{Field: FieldCurrentYearTotalTax, Rule: LabelSibling{LabelContains: "Total Tax", Value: KindMoney}},
			{Field: FieldInstallment1Amount, Rule: LabelSibling{LabelContains: "First Installment Amount", Value: KindMoney}},
			{Field: FieldInstallment1DueDate, Rule: LabelSibling{LabelContains: "First Installment Due", Value: KindDate}},
			{Field: FieldDelinquentAmount, Rule: LabelSibling{LabelContains: "Total Delinquent", Value: KindMoney}},
			{Field: FieldDelinquentYears, Rule: TableRows{TableID: "delinquentHistory", YearColumn: 0, AmountColumn: 1}},
		},
	}
}

const fullPage = `<html><body>
<table>
	<tr><td>Tax Year</td><td>2024</td></tr>
	<tr><td>Owner</td><td>SMITH JOHN</td></tr>
	<tr><td>Total Tax</td><td>$2,400.00</td></tr>
	<tr><td>First Installment Amount</td><td>$1,200.00</td></tr>
	<tr><td>First Installment Due</td><td>01/31/2025</td></tr>
	<tr><td>Total Delinquent</td><td>$800.00</td></tr>
</table>
<table id="delinquentHistory">
	<tr><th>Year</th><th>Amount</th></tr>
	<tr><td>2022</td><td>$500.00</td></tr>
	<tr><td>2023</td><td>$300.00</td></tr>
</table>
</body></html>`

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestAssembleFullPage(t *testing.T) {
	doc := parseDoc(t, fullPage)
	input := ParcelInput{ParcelID: "1-1360-1"}

	record, warnings, err := Assemble(context.Background(), testConfig(), input, doc, fixedNow)
	require.NoError(t, err)
	require.Empty(t, warnings)

	require.Equal(t, "Brown", record.County)
	require.Equal(t, "1-1360-1", record.ParcelID)
	require.Equal(t, "SMITH JOHN", record.OwnerName)
	require.Equal(t, 2024, record.TaxYear)
	require.True(t, record.CurrentYearTotalTax.Equal(decimal.RequireFromString("2400")))
	require.True(t, record.Installments[0].Amount.Equal(decimal.RequireFromString("1200")))
	require.Equal(t, 2025, record.Installments[0].DueDate.Year())
	require.Nil(t, record.Installments[1].Amount)

	require.Equal(t, StatusDelinquent, record.DelinquentStatus)
	require.True(t, record.DelinquentAmount.Equal(decimal.RequireFromString("800")))
	require.Len(t, record.DelinquentYears, 2)
}

func TestAssembleInputOwnerWins(t *testing.T) {
	doc := parseDoc(t, fullPage)
	input := ParcelInput{ParcelID: "1-1360-1", OwnerName: "DOE JANE"}

	record, _, err := Assemble(context.Background(), testConfig(), input, doc, fixedNow)
	require.NoError(t, err)
	require.Equal(t, "DOE JANE", record.OwnerName)
}

func TestAssembleStatusPaid(t *testing.T) {
	doc := parseDoc(t, `<html><body>
		<div>Tax Year: 2024</div>
		<div>Total Delinquent: $0.00</div>
	</body></html>`)

	record, _, err := Assemble(context.Background(), testConfig(), ParcelInput{ParcelID: "x"}, doc, fixedNow)
	require.NoError(t, err)
	require.Equal(t, StatusPaid, record.DelinquentStatus)
}

func TestAssembleStatusUnknown(t *testing.T) {
	doc := parseDoc(t, `<html><body><div>Tax Year: 2024</div></body></html>`)

	record, _, err := Assemble(context.Background(), testConfig(), ParcelInput{ParcelID: "x"}, doc, fixedNow)
	require.NoError(t, err)
	require.Equal(t, StatusUnknown, record.DelinquentStatus)
	require.Nil(t, record.DelinquentAmount)
}

func TestAssembleTaxYearFallback(t *testing.T) {
	doc := parseDoc(t, `<html><body><div>Total Tax: $100.00</div></body></html>`)

	record, _, err := Assemble(context.Background(), testConfig(), ParcelInput{ParcelID: "x"}, doc, fixedNow)
	require.NoError(t, err)
	require.Equal(t, 2025, record.TaxYear)
}

func TestAssembleTaxYearUndeterminable(t *testing.T) {
	doc := parseDoc(t, `<html><body><div>nothing useful</div></body></html>`)

	_, _, err := Assemble(context.Background(), testConfig(), ParcelInput{ParcelID: "x"}, doc, time.Time{})
	var failure *ExtractionFailure
	require.ErrorAs(t, err, &failure)
}

func TestAssembleUnparsableValueWarns(t *testing.T) {
	doc := parseDoc(t, `<html><body>
		<div>Tax Year: 2024</div>
		<table><tr><td>Total Tax</td><td>contact office</td></tr></table>
	</body></html>`)

	record, warnings, err := Assemble(context.Background(), testConfig(), ParcelInput{ParcelID: "x"}, doc, fixedNow)
	require.NoError(t, err)
	require.Nil(t, record.CurrentYearTotalTax)
	require.Len(t, warnings, 1)
	require.Equal(t, FieldCurrentYearTotalTax, warnings[0].Field)
}

func TestAssembleSkippedRowsWarn(t *testing.T) {
	doc := parseDoc(t, `<html><body>
<div>Tax Year: 2024</div>
<table id="delinquentHistory">
	<tr><th>Year</th><th>Amount</th></tr>
	<tr><td>2022</td></tr>
	<tr><td>2023</td><td>$300.00</td></tr>
</table>
</body></html>`)

	record, warnings, err := Assemble(context.Background(), testConfig(), ParcelInput{ParcelID: "x"}, doc, fixedNow)
	require.NoError(t, err)
	require.Len(t, record.DelinquentYears, 1)
	require.Len(t, warnings, 1)
	require.Equal(t, FieldDelinquentYears, warnings[0].Field)
}
