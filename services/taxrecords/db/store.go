package db

import (
	"context"
	"database/sql"
	"time"

	"taxrecords-backend/services/taxrecords"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/taxrecords/db")

func nullableMoney(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.StringFixed(2)
}

func nullableDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format("2006-01-02")
}

// InsertTables writes all five tables in one transaction: either the
// whole batch lands or none of it does.
func InsertTables(ctx context.Context, database *sql.DB, tables taxrecords.Tables) error {
	ctx, span := tracer.Start(ctx, "InsertTables")
	defer span.End()
	span.SetAttributes(
		attribute.Int("properties", len(tables.Properties)),
		attribute.Int("tax_periods", len(tables.TaxPeriods)),
	)

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "begin tx")
		return err
	}
	defer tx.Rollback()

	for _, r := range tables.Properties {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO properties
			 (county, parcel_id, owner_name, address, platform, extraction_date)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			r.County, r.ParcelID, r.OwnerName, r.Address, r.Platform,
			r.ExtractionDate.Format(time.RFC3339))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "insert properties")
			return err
		}
	}

	for _, r := range tables.TaxPeriods {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO tax_periods
			 (county, parcel_id, tax_year, total_tax_amount, status, extraction_date)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			r.County, r.ParcelID, r.TaxYear, nullableMoney(r.TotalTaxAmount),
			string(r.Status), r.ExtractionDate.Format(time.RFC3339))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "insert tax_periods")
			return err
		}
	}

	for _, r := range tables.Installments {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO installments
			 (county, parcel_id, tax_year, installment_number, installment_type,
			  amount, due_date, extraction_date)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.County, r.ParcelID, r.TaxYear, r.InstallmentNumber, r.InstallmentType,
			r.Amount.StringFixed(2), nullableDate(r.DueDate),
			r.ExtractionDate.Format(time.RFC3339))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "insert installments")
			return err
		}
	}

	for _, r := range tables.DelinquentTaxes {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO delinquent_taxes
			 (county, parcel_id, tax_year, delinquent_amount, status, extraction_date)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			r.County, r.ParcelID, r.TaxYear, r.Amount.StringFixed(2), r.Status,
			r.ExtractionDate.Format(time.RFC3339))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "insert delinquent_taxes")
			return err
		}
	}

	for _, r := range tables.PenaltiesInterest {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO penalties_interest
			 (county, parcel_id, tax_year, amount, extraction_date)
			 VALUES (?, ?, ?, ?, ?)`,
			r.County, r.ParcelID, r.TaxYear, r.Amount.StringFixed(2),
			r.ExtractionDate.Format(time.RFC3339))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "insert penalties_interest")
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "commit")
		return err
	}
	return nil
}
