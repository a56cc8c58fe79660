package countytax

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/countytax")

// Assemble runs every declared rule in the config against the
// document and builds the denormalized tax record. Missing fields are
// fine; a tax year that cannot be determined by any means is not.
// Unparsable values and skipped table rows come back as warnings, not
// errors.
func Assemble(ctx context.Context, cfg *Config, input ParcelInput, doc *goquery.Document, now time.Time) (*ParcelTaxRecord, []Warning, error) {
	ctx, span := tracer.Start(ctx, "Assemble")
	defer span.End()
	span.SetAttributes(
		attribute.String("county", cfg.County),
		attribute.String("parcel_id", input.ParcelID),
	)

	record := &ParcelTaxRecord{
		County:    cfg.County,
		Platform:  cfg.Platform,
		ParcelID:  input.ParcelID,
		OwnerName: input.OwnerName,
		Address:   input.Address,
	}

	var warnings []Warning
	extractedYear := 0

	for _, fr := range cfg.Fields {
		value, err := Extract(fr.Rule, doc)
		if err != nil {
			if errors.Is(err, ErrValueUnparsable) {
				// found but malformed: recorded as missing, assembly
				// continues
				warnings = append(warnings, Warning{Field: fr.Field, Detail: err.Error()})
				continue
			}
			return nil, warnings, err
		}
		if value.SkippedRows > 0 {
			warnings = append(warnings, Warning{
				Field:  fr.Field,
				Detail: fmt.Sprintf("skipped %d malformed table rows", value.SkippedRows),
			})
		}
		if !value.Found {
			continue
		}

		switch fr.Field {
		case FieldTaxYear:
			extractedYear = value.Year
		case FieldOwnerName:
			if record.OwnerName == "" {
				record.OwnerName = value.Text
			}
		case FieldAddress:
			if record.Address == "" {
				record.Address = value.Text
			}
		case FieldCurrentYearTotalTax:
			record.CurrentYearTotalTax = moneyPtr(value.Money)
		case FieldInstallment1Amount:
			record.Installments[0].Amount = moneyPtr(value.Money)
		case FieldInstallment1DueDate:
			record.Installments[0].DueDate = datePtr(value.Date)
		case FieldInstallment2Amount:
			record.Installments[1].Amount = moneyPtr(value.Money)
		case FieldInstallment2DueDate:
			record.Installments[1].DueDate = datePtr(value.Date)
		case FieldDelinquentAmount:
			record.DelinquentAmount = moneyPtr(value.Money)
		case FieldDelinquentYears:
			record.DelinquentYears = value.Pairs
		case FieldDelinquentInstallmentCount:
			count := value.Count
			record.DelinquentInstallmentCount = &count
		case FieldPenaltiesAndInterest:
			record.PenaltiesAndInterest = moneyPtr(value.Money)
		default:
			warnings = append(warnings, Warning{
				Field:  fr.Field,
				Detail: "unrecognized logical field, value discarded",
			})
		}
	}

	// every other field may be absent, the tax year may not
	record.TaxYear = extractedYear
	if record.TaxYear == 0 && !now.IsZero() {
		record.TaxYear = now.Year()
	}
	if record.TaxYear == 0 {
		err := &ExtractionFailure{
			County: cfg.County,
			Reason: "tax year could not be determined",
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Reason)
		return nil, warnings, err
	}

	record.DelinquentStatus = deriveDelinquentStatus(record.DelinquentAmount)

	return record, warnings, nil
}

func moneyPtr(d decimal.Decimal) *decimal.Decimal { return &d }

func datePtr(t time.Time) *time.Time { return &t }
