package taxrecords

import (
	"testing"
	"taxrecords-backend/lib/scrapers/countytax"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestCheckValuesClean(t *testing.T) {
	tables, _ := Normalize([]countytax.ParcelTaxRecord{delinquentRecord(t)}, extractedAt)
	require.Empty(t, CheckValues(tables))
}

func TestCheckValuesNegativeAmounts(t *testing.T) {
	record := delinquentRecord(t)
	record.CurrentYearTotalTax = money(t, "-2400.00")
	tables, _ := Normalize([]countytax.ParcelTaxRecord{record}, extractedAt)

	warnings := CheckValues(tables)
	require.NotEmpty(t, warnings)
	require.Equal(t, "tax_periods", warnings[0].Field)
}

func TestCheckValuesInstallmentSumWithinTolerance(t *testing.T) {
	record := delinquentRecord(t)
	// 1200 + 1200 = 2400 against a 2450 total: inside the 5% band
	record.CurrentYearTotalTax = money(t, "2450.00")
	tables, _ := Normalize([]countytax.ParcelTaxRecord{record}, extractedAt)

	require.Empty(t, CheckValues(tables))
}

func TestCheckValuesInstallmentSumMismatch(t *testing.T) {
	record := delinquentRecord(t)
	record.CurrentYearTotalTax = money(t, "3000.00")
	tables, _ := Normalize([]countytax.ParcelTaxRecord{record}, extractedAt)

	warnings := CheckValues(tables)
	require.Len(t, warnings, 1)
	require.Equal(t, "installments", warnings[0].Field)
}

func TestCheckValuesSingleInstallmentSkipsSumCheck(t *testing.T) {
	record := delinquentRecord(t)
	record.CurrentYearTotalTax = money(t, "3000.00")
	record.Installments[1] = countytax.Installment{}
	tables, _ := Normalize([]countytax.ParcelTaxRecord{record}, extractedAt)

	require.Empty(t, CheckValues(tables))
}

func TestCheckValuesMissingTotalSkipsSumCheck(t *testing.T) {
	record := delinquentRecord(t)
	record.CurrentYearTotalTax = nil
	tables, _ := Normalize([]countytax.ParcelTaxRecord{record}, extractedAt)

	require.Empty(t, CheckValues(tables))
}

func TestCheckValuesNegativeDelinquent(t *testing.T) {
	record := delinquentRecord(t)
	record.DelinquentYears = []countytax.YearAmount{
		{Year: 2022, Amount: decimal.RequireFromString("-500.00")},
	}
	tables, _ := Normalize([]countytax.ParcelTaxRecord{record}, extractedAt)

	warnings := CheckValues(tables)
	require.NotEmpty(t, warnings)
	require.Equal(t, "delinquent_taxes", warnings[0].Field)
}
