package taxrecords

import (
	"fmt"
	"taxrecords-backend/lib/scrapers/countytax"

	"github.com/shopspring/decimal"
)

// installmentSumTolerance allows for rounding differences between a
// displayed annual total and its two halves.
var installmentSumTolerance = decimal.NewFromFloat(0.05)

type periodKey struct {
	county   string
	parcelID string
	taxYear  int
}

// CheckValues runs cross-table sanity checks over normalized tables.
// Failures are warnings, never errors: suspect data still flows
// through, annotated.
func CheckValues(tables Tables) []countytax.Warning {
	var warnings []countytax.Warning

	warn := func(field, format string, args ...any) {
		warnings = append(warnings, countytax.Warning{
			Field:  field,
			Detail: fmt.Sprintf(format, args...),
		})
	}

	for _, row := range tables.TaxPeriods {
		if row.TotalTaxAmount != nil && row.TotalTaxAmount.IsNegative() {
			warn("tax_periods", "parcel %s year %d: negative total tax %s",
				row.ParcelID, row.TaxYear, row.TotalTaxAmount.StringFixed(2))
		}
	}
	for _, row := range tables.Installments {
		if row.Amount.IsNegative() {
			warn("installments", "parcel %s year %d installment %d: negative amount %s",
				row.ParcelID, row.TaxYear, row.InstallmentNumber, row.Amount.StringFixed(2))
		}
	}
	for _, row := range tables.DelinquentTaxes {
		if row.Amount.IsNegative() {
			warn("delinquent_taxes", "parcel %s year %d: negative delinquent amount %s",
				row.ParcelID, row.TaxYear, row.Amount.StringFixed(2))
		}
	}
	for _, row := range tables.PenaltiesInterest {
		if row.Amount.IsNegative() {
			warn("penalties_interest", "parcel %s year %d: negative amount %s",
				row.ParcelID, row.TaxYear, row.Amount.StringFixed(2))
		}
	}

	sums := map[periodKey]decimal.Decimal{}
	counts := map[periodKey]int{}
	for _, row := range tables.Installments {
		key := periodKey{row.County, row.ParcelID, row.TaxYear}
		sums[key] = sums[key].Add(row.Amount)
		counts[key]++
	}
	for _, row := range tables.TaxPeriods {
		if row.TotalTaxAmount == nil {
			continue
		}
		key := periodKey{row.County, row.ParcelID, row.TaxYear}
		if counts[key] < 2 {
			continue
		}
		sum := sums[key]
		allowed := row.TotalTaxAmount.Mul(installmentSumTolerance).Abs()
		if sum.Sub(*row.TotalTaxAmount).Abs().GreaterThan(allowed) {
			warn("installments", "parcel %s year %d: installments sum %s differs from total %s beyond tolerance",
				row.ParcelID, row.TaxYear, sum.StringFixed(2), row.TotalTaxAmount.StringFixed(2))
		}
	}

	return warnings
}
