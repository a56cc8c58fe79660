package countytax

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func parseDoc(t *testing.T, markup string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	require.NoError(t, err)
	return doc
}

func TestLabelSiblingAdjacentCell(t *testing.T) {
	doc := parseDoc(t, `<html><body><table><tr>
		<td>Total Tax:</td><td>$1,234.56</td>
	</tr></table></body></html>`)

	value, err := Extract(LabelSibling{LabelContains: "Total Tax", Value: KindMoney}, doc)
	require.NoError(t, err)
	require.True(t, value.Found)
	require.True(t, value.Money.Equal(decimal.RequireFromString("1234.56")))
}

func TestLabelSiblingSingleNode(t *testing.T) {
	doc := parseDoc(t, `<html><body><div>Total Tax: $1,234.56</div></body></html>`)

	value, err := Extract(LabelSibling{LabelContains: "Total Tax", Value: KindMoney}, doc)
	require.NoError(t, err)
	require.True(t, value.Found)
	require.True(t, value.Money.Equal(decimal.RequireFromString("1234.56")))
}

func TestLabelSiblingMissingLabel(t *testing.T) {
	doc := parseDoc(t, `<html><body><div>Assessed Value: $90,000</div></body></html>`)

	value, err := Extract(LabelSibling{LabelContains: "Total Tax", Value: KindMoney}, doc)
	require.NoError(t, err)
	require.False(t, value.Found)
}

func TestLabelSiblingFirstMatchWins(t *testing.T) {
	doc := parseDoc(t, `<html><body>
		<div>Total Tax: $100.00</div>
		<div>Total Tax: $999.99</div>
	</body></html>`)

	value, err := Extract(LabelSibling{LabelContains: "Total Tax", Value: KindMoney}, doc)
	require.NoError(t, err)
	require.True(t, value.Found)
	require.True(t, value.Money.Equal(decimal.RequireFromString("100")))
}

func TestLabelSiblingUnparsableValue(t *testing.T) {
	doc := parseDoc(t, `<html><body><table><tr>
		<td>Total Tax:</td><td>see treasurer</td>
	</tr></table></body></html>`)

	_, err := Extract(LabelSibling{LabelContains: "Total Tax", Value: KindMoney}, doc)
	require.ErrorIs(t, err, ErrValueUnparsable)
}

func TestLabelSiblingCaseAndWhitespace(t *testing.T) {
	doc := parseDoc(t, `<html><body><table><tr>
		<td>  TOTAL   TAX  </td><td>$50.00</td>
	</tr></table></body></html>`)

	value, err := Extract(LabelSibling{LabelContains: "total tax", Value: KindMoney}, doc)
	require.NoError(t, err)
	require.True(t, value.Found)
	require.True(t, value.Money.Equal(decimal.RequireFromString("50")))
}

func TestLabelSiblingDate(t *testing.T) {
	doc := parseDoc(t, `<html><body><table><tr>
		<td>First Installment Due</td><td>01/31/2025</td>
	</tr></table></body></html>`)

	value, err := Extract(LabelSibling{LabelContains: "First Installment Due", Value: KindDate}, doc)
	require.NoError(t, err)
	require.True(t, value.Found)
	require.Equal(t, 2025, value.Date.Year())
	require.Equal(t, 31, value.Date.Day())
}

const historyTable = `<html><body>
<table id="taxHistory">
	<tr><th>Year</th><th>Amount Due</th></tr>
	<tr><td>2022</td><td>$500.00</td></tr>
	<tr><td>2023</td><td>$300.00</td></tr>
</table>
</body></html>`

func TestTableRows(t *testing.T) {
	doc := parseDoc(t, historyTable)

	value, err := Extract(TableRows{TableID: "taxHistory", YearColumn: 0, AmountColumn: 1}, doc)
	require.NoError(t, err)
	require.True(t, value.Found)
	require.Equal(t, 0, value.SkippedRows)
	require.Len(t, value.Pairs, 2)
	require.Equal(t, 2022, value.Pairs[0].Year)
	require.True(t, value.Pairs[0].Amount.Equal(decimal.RequireFromString("500")))
	require.Equal(t, 2023, value.Pairs[1].Year)
	require.True(t, value.Pairs[1].Amount.Equal(decimal.RequireFromString("300")))
}

func TestTableRowsNonAdjacentColumns(t *testing.T) {
	doc := parseDoc(t, `<html><body>
<table id="taxHistory">
	<tr><th>Year</th><th>Status</th><th>Amount Due</th></tr>
	<tr><td>2022</td><td>x</td><td>500.00</td></tr>
	<tr><td>2023</td><td>y</td><td>300.00</td></tr>
</table>
</body></html>`)

	value, err := Extract(TableRows{TableID: "taxHistory", YearColumn: 0, AmountColumn: 2}, doc)
	require.NoError(t, err)
	require.Equal(t, []YearAmount{
		{Year: 2022, Amount: decimal.RequireFromString("500.00")},
		{Year: 2023, Amount: decimal.RequireFromString("300.00")},
	}, value.Pairs)
}

func TestTableRowsMissingTable(t *testing.T) {
	doc := parseDoc(t, historyTable)

	value, err := Extract(TableRows{TableID: "nope", YearColumn: 0, AmountColumn: 1}, doc)
	require.NoError(t, err)
	require.False(t, value.Found)
}

func TestTableRowsSkipsMalformedRows(t *testing.T) {
	doc := parseDoc(t, `<html><body>
<table id="taxHistory">
	<tr><th>Year</th><th>Amount Due</th></tr>
	<tr><td>2021</td></tr>
	<tr><td>no year here</td><td>$10.00</td></tr>
	<tr><td>2023</td><td>$300.00</td></tr>
</table>
</body></html>`)

	value, err := Extract(TableRows{TableID: "taxHistory", YearColumn: 0, AmountColumn: 1}, doc)
	require.NoError(t, err)
	require.True(t, value.Found)
	require.Equal(t, 2, value.SkippedRows)
	require.Len(t, value.Pairs, 1)
	require.Equal(t, 2023, value.Pairs[0].Year)
}
