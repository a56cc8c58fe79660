package db

import (
	"context"
	"testing"
	"time"

	"taxrecords-backend/lib/scrapers/countytax"
	"taxrecords-backend/services/taxrecords"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestInsertTables(t *testing.T) {
	database, err := Open(":memory:")
	require.NoError(t, err)
	defer database.Close()

	extractedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	total := decimal.RequireFromString("2400.00")
	half := decimal.RequireFromString("1200.00")
	due := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	tables := taxrecords.Tables{
		Properties: []taxrecords.PropertyRow{{
			County: "Brown", ParcelID: "1-1360-1", OwnerName: "SMITH JOHN",
			Address: "305 E WALNUT ST", Platform: "landrecords", ExtractionDate: extractedAt,
		}},
		TaxPeriods: []taxrecords.TaxPeriodRow{{
			County: "Brown", ParcelID: "1-1360-1", TaxYear: 2024,
			TotalTaxAmount: &total, Status: countytax.StatusDelinquent, ExtractionDate: extractedAt,
		}},
		Installments: []taxrecords.InstallmentRow{{
			County: "Brown", ParcelID: "1-1360-1", TaxYear: 2024,
			InstallmentNumber: 1, InstallmentType: "1st_half",
			Amount: half, DueDate: &due, ExtractionDate: extractedAt,
		}, {
			County: "Brown", ParcelID: "1-1360-1", TaxYear: 2024,
			InstallmentNumber: 2, InstallmentType: "2nd_half",
			Amount: half, ExtractionDate: extractedAt,
		}},
		DelinquentTaxes: []taxrecords.DelinquentTaxRow{{
			County: "Brown", ParcelID: "1-1360-1", TaxYear: 2022,
			Amount: decimal.RequireFromString("500.00"), Status: "delinquent",
			ExtractionDate: extractedAt,
		}},
		PenaltiesInterest: []taxrecords.PenaltiesInterestRow{{
			County: "Brown", ParcelID: "1-1360-1", TaxYear: 2024,
			Amount: decimal.RequireFromString("42.10"), ExtractionDate: extractedAt,
		}},
	}

	require.NoError(t, InsertTables(context.Background(), database, tables))

	var count int
	require.NoError(t, database.QueryRow("SELECT COUNT(*) FROM installments").Scan(&count))
	require.Equal(t, 2, count)

	var amount string
	var dueDate *string
	row := database.QueryRow(
		"SELECT amount, due_date FROM installments WHERE installment_number = 2")
	require.NoError(t, row.Scan(&amount, &dueDate))
	require.Equal(t, "1200.00", amount)
	require.Nil(t, dueDate)

	var status string
	row = database.QueryRow("SELECT status FROM tax_periods WHERE parcel_id = '1-1360-1'")
	require.NoError(t, row.Scan(&status))
	require.Equal(t, "delinquent", status)
}
