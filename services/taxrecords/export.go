package taxrecords

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	dueDateLayout        = "2006-01-02"
	extractionDateLayout = time.RFC3339
)

type sheet struct {
	name   string
	header []string
	rows   [][]string
}

func moneyString(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.StringFixed(2)
}

func (t Tables) sheets() []sheet {
	properties := sheet{
		name:   "properties",
		header: []string{"county", "parcel_id", "owner_name", "address", "platform", "extraction_date"},
	}
	for _, r := range t.Properties {
		properties.rows = append(properties.rows, []string{
			r.County, r.ParcelID, r.OwnerName, r.Address, r.Platform,
			r.ExtractionDate.Format(extractionDateLayout),
		})
	}

	taxPeriods := sheet{
		name:   "tax_periods",
		header: []string{"county", "parcel_id", "tax_year", "total_tax_amount", "status", "extraction_date"},
	}
	for _, r := range t.TaxPeriods {
		taxPeriods.rows = append(taxPeriods.rows, []string{
			r.County, r.ParcelID, fmt.Sprint(r.TaxYear), moneyString(r.TotalTaxAmount),
			string(r.Status), r.ExtractionDate.Format(extractionDateLayout),
		})
	}

	installments := sheet{
		name: "installments",
		header: []string{
			"county", "parcel_id", "tax_year", "installment_number",
			"installment_type", "amount", "due_date", "extraction_date",
		},
	}
	for _, r := range t.Installments {
		dueDate := ""
		if r.DueDate != nil {
			dueDate = r.DueDate.Format(dueDateLayout)
		}
		installments.rows = append(installments.rows, []string{
			r.County, r.ParcelID, fmt.Sprint(r.TaxYear), fmt.Sprint(r.InstallmentNumber),
			r.InstallmentType, r.Amount.StringFixed(2), dueDate,
			r.ExtractionDate.Format(extractionDateLayout),
		})
	}

	delinquent := sheet{
		name:   "delinquent_taxes",
		header: []string{"county", "parcel_id", "tax_year", "delinquent_amount", "status", "extraction_date"},
	}
	for _, r := range t.DelinquentTaxes {
		delinquent.rows = append(delinquent.rows, []string{
			r.County, r.ParcelID, fmt.Sprint(r.TaxYear), r.Amount.StringFixed(2),
			r.Status, r.ExtractionDate.Format(extractionDateLayout),
		})
	}

	penalties := sheet{
		name:   "penalties_interest",
		header: []string{"county", "parcel_id", "tax_year", "amount", "extraction_date"},
	}
	for _, r := range t.PenaltiesInterest {
		penalties.rows = append(penalties.rows, []string{
			r.County, r.ParcelID, fmt.Sprint(r.TaxYear), r.Amount.StringFixed(2),
			r.ExtractionDate.Format(extractionDateLayout),
		})
	}

	return []sheet{properties, taxPeriods, installments, delinquent, penalties}
}

// WriteCSV writes one CSV file per table into dir and returns the
// paths written.
func WriteCSV(tables Tables, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	var paths []string
	for _, s := range tables.sheets() {
		path := filepath.Join(dir, s.name+".csv")
		if err := writeCSVFile(path, s); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeCSVFile(path string, s sheet) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(s.header); err != nil {
		return err
	}
	for _, row := range s.rows {
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return file.Close()
}

// WriteWorkbook writes all five tables into one xlsx workbook, one
// sheet per table.
func WriteWorkbook(tables Tables, path string) error {
	workbook := excelize.NewFile()
	defer workbook.Close()

	for i, s := range tables.sheets() {
		if i == 0 {
			// rename the default sheet rather than leaving Sheet1 around
			if err := workbook.SetSheetName("Sheet1", s.name); err != nil {
				return err
			}
		} else if _, err := workbook.NewSheet(s.name); err != nil {
			return err
		}

		if err := writeSheetRow(workbook, s.name, 1, s.header); err != nil {
			return err
		}
		for j, row := range s.rows {
			if err := writeSheetRow(workbook, s.name, j+2, row); err != nil {
				return err
			}
		}
	}
	return workbook.SaveAs(path)
}

func writeSheetRow(workbook *excelize.File, sheetName string, rowNumber int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNumber)
	if err != nil {
		return err
	}
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return workbook.SetSheetRow(sheetName, cell, &cells)
}
