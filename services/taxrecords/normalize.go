package taxrecords

import (
	"fmt"
	"time"
	"taxrecords-backend/lib/scrapers/countytax"

	"github.com/shopspring/decimal"
)

// The five normalized tables. Column order is fixed per table and
// identity/context is intentionally duplicated into every row: storage
// is traded for simple downstream joins.

type PropertyRow struct {
	County         string
	ParcelID       string
	OwnerName      string
	Address        string
	Platform       string
	ExtractionDate time.Time
}

type TaxPeriodRow struct {
	County          string
	ParcelID        string
	TaxYear         int
	TotalTaxAmount  *decimal.Decimal
	Status          countytax.DelinquentStatus
	ExtractionDate  time.Time
}

type InstallmentRow struct {
	County            string
	ParcelID          string
	TaxYear           int
	InstallmentNumber int
	InstallmentType   string
	Amount            decimal.Decimal
	DueDate           *time.Time
	ExtractionDate    time.Time
}

type DelinquentTaxRow struct {
	County         string
	ParcelID       string
	TaxYear        int
	Amount         decimal.Decimal
	Status         string
	ExtractionDate time.Time
}

type PenaltiesInterestRow struct {
	County         string
	ParcelID       string
	TaxYear        int
	Amount         decimal.Decimal
	ExtractionDate time.Time
}

type Tables struct {
	Properties        []PropertyRow
	TaxPeriods        []TaxPeriodRow
	Installments      []InstallmentRow
	DelinquentTaxes   []DelinquentTaxRow
	PenaltiesInterest []PenaltiesInterestRow
}

func (t *Tables) Append(other Tables) {
	t.Properties = append(t.Properties, other.Properties...)
	t.TaxPeriods = append(t.TaxPeriods, other.TaxPeriods...)
	t.Installments = append(t.Installments, other.Installments...)
	t.DelinquentTaxes = append(t.DelinquentTaxes, other.DelinquentTaxes...)
	t.PenaltiesInterest = append(t.PenaltiesInterest, other.PenaltiesInterest...)
}

var installmentTypes = [2]string{"1st_half", "2nd_half"}

// RecordWarning ties a normalization warning back to the record that
// produced it, so the batch report can attribute it to a parcel.
type RecordWarning struct {
	RecordIndex int
	Warning     countytax.Warning
}

// Normalize fans a sequence of denormalized records out into the five
// tables. It is a pure function: the same input sequence produces the
// same rows in the same order, with row order within each table
// matching the order records were supplied.
//
// For each record the properties and tax_periods pair is emitted
// before any dependent rows, so every dependent parcel_id is
// guaranteed to exist in properties from the same pass.
func Normalize(records []countytax.ParcelTaxRecord, extractedAt time.Time) (Tables, []RecordWarning) {
	var tables Tables
	var warnings []RecordWarning

	for i, record := range records {
		tables.Properties = append(tables.Properties, PropertyRow{
			County:         record.County,
			ParcelID:       record.ParcelID,
			OwnerName:      record.OwnerName,
			Address:        record.Address,
			Platform:       record.Platform,
			ExtractionDate: extractedAt,
		})
		tables.TaxPeriods = append(tables.TaxPeriods, TaxPeriodRow{
			County:         record.County,
			ParcelID:       record.ParcelID,
			TaxYear:        record.TaxYear,
			TotalTaxAmount: record.CurrentYearTotalTax,
			Status:         record.DelinquentStatus,
			ExtractionDate: extractedAt,
		})

		for slot, installment := range record.Installments {
			// a present amount is the sole gating condition; a missing
			// due date still emits a row with a null due date
			if installment.Amount == nil {
				continue
			}
			tables.Installments = append(tables.Installments, InstallmentRow{
				County:            record.County,
				ParcelID:          record.ParcelID,
				TaxYear:           record.TaxYear,
				InstallmentNumber: slot + 1,
				InstallmentType:   installmentTypes[slot],
				Amount:            *installment.Amount,
				DueDate:           installment.DueDate,
				ExtractionDate:    extractedAt,
			})
		}

		if record.DelinquentAmount != nil && len(record.DelinquentYears) == 0 {
			// an amount with no year cannot be attributed to a
			// delinquent_taxes row; flagged rather than silently dropped
			warnings = append(warnings, RecordWarning{
				RecordIndex: i,
				Warning: countytax.Warning{
					Field: "delinquent_taxes",
					Detail: fmt.Sprintf(
						"delinquent amount %s has no delinquent years, no rows emitted",
						record.DelinquentAmount.StringFixed(2),
					),
				},
			})
		}
		for _, entry := range record.DelinquentYears {
			tables.DelinquentTaxes = append(tables.DelinquentTaxes, DelinquentTaxRow{
				County:         record.County,
				ParcelID:       record.ParcelID,
				TaxYear:        entry.Year,
				Amount:         entry.Amount,
				Status:         string(countytax.StatusDelinquent),
				ExtractionDate: extractedAt,
			})
		}

		if record.PenaltiesAndInterest != nil && !record.PenaltiesAndInterest.IsZero() {
			tables.PenaltiesInterest = append(tables.PenaltiesInterest, PenaltiesInterestRow{
				County:         record.County,
				ParcelID:       record.ParcelID,
				TaxYear:        record.TaxYear,
				Amount:         *record.PenaltiesAndInterest,
				ExtractionDate: extractedAt,
			})
		}
	}

	return tables, warnings
}
