package taxrecords

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"taxrecords-backend/lib/scrapers/countytax"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("services/taxrecords")

// ParcelFailure records one parcel the batch gave up on.
type ParcelFailure struct {
	County string
	Input  countytax.ParcelInput
	Err    error
}

// Report summarizes a batch run. A parcel counts as warned only when
// it succeeded but produced at least one warning.
type Report struct {
	Succeeded int
	Failed    int
	Warned    int
	Failures  []ParcelFailure
	Warnings  []countytax.Warning
}

func (r *Report) merge(other Report) {
	r.Succeeded += other.Succeeded
	r.Failed += other.Failed
	r.Warned += other.Warned
	r.Failures = append(r.Failures, other.Failures...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// CountyRequest names a configured county and the parcels to pull
// from it.
type CountyRequest struct {
	County string
	Inputs []countytax.ParcelInput
}

type Service struct {
	configs map[string]*countytax.Config
	fetcher countytax.Fetcher
	now     func() time.Time
}

func NewService(configs map[string]*countytax.Config, fetcher countytax.Fetcher) *Service {
	return &Service{
		configs: configs,
		fetcher: fetcher,
		now:     time.Now,
	}
}

// WithClock overrides the extraction timestamp source, which tests use
// to pin extraction_date.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func inputLabel(input countytax.ParcelInput) string {
	kinds := input.Kinds()
	if len(kinds) == 0 {
		return "(empty)"
	}
	return input.Value(kinds[0])
}

type parcelResult struct {
	record   *countytax.ParcelTaxRecord
	warnings []countytax.Warning
	err      error
}

// ScrapeCounty runs every input against one county's config and
// normalizes whatever succeeded. A parcel that fails at any stage is
// recorded in the report and skipped; it never aborts the batch.
func (s *Service) ScrapeCounty(ctx context.Context, county string, inputs []countytax.ParcelInput) (Tables, Report, error) {
	cfg, ok := s.configs[county]
	if !ok {
		return Tables{}, Report{}, fmt.Errorf("no config loaded for county %q", county)
	}

	ctx, span := tracer.Start(ctx, "ScrapeCounty", trace.WithAttributes(
		attribute.String("county", county),
		attribute.Int("parcels", len(inputs)),
	))
	defer span.End()

	results := make([]parcelResult, len(inputs))
	var wg sync.WaitGroup
	for i, input := range inputs {
		wg.Add(1)
		go func(i int, input countytax.ParcelInput) {
			defer wg.Done()
			results[i] = s.scrapeParcel(ctx, cfg, input)
		}(i, input)
	}
	wg.Wait()

	var report Report
	var records []countytax.ParcelTaxRecord
	var recordWarned []bool
	for i, res := range results {
		if res.err != nil {
			report.Failed++
			report.Failures = append(report.Failures, ParcelFailure{
				County: county,
				Input:  inputs[i],
				Err:    res.err,
			})
			slog.Warn("parcel scrape failed",
				"county", county,
				"input", inputLabel(inputs[i]),
				"err", res.err)
			continue
		}
		report.Succeeded++
		if len(res.warnings) > 0 {
			report.Warnings = append(report.Warnings, res.warnings...)
		}
		records = append(records, *res.record)
		recordWarned = append(recordWarned, len(res.warnings) > 0)
	}

	tables, normWarnings := Normalize(records, s.now())
	for _, rw := range normWarnings {
		report.Warnings = append(report.Warnings, rw.Warning)
		recordWarned[rw.RecordIndex] = true
	}
	for _, warned := range recordWarned {
		if warned {
			report.Warned++
		}
	}
	report.Warnings = append(report.Warnings, CheckValues(tables)...)

	span.SetAttributes(
		attribute.Int("succeeded", report.Succeeded),
		attribute.Int("failed", report.Failed),
	)
	if report.Failed > 0 {
		span.SetStatus(codes.Error, fmt.Sprintf("%d parcels failed", report.Failed))
	}
	return tables, report, nil
}

// ScrapeCounties runs several county requests and merges the output
// into one set of tables. A county without a loaded config fails all
// of its parcels but the remaining counties still run.
func (s *Service) ScrapeCounties(ctx context.Context, requests []CountyRequest) (Tables, Report) {
	ctx, span := tracer.Start(ctx, "ScrapeCounties", trace.WithAttributes(
		attribute.Int("counties", len(requests)),
	))
	defer span.End()

	var tables Tables
	var report Report
	for _, req := range requests {
		countyTables, countyReport, err := s.ScrapeCounty(ctx, req.County, req.Inputs)
		if err != nil {
			slog.Error("skipping county", "county", req.County, "err", err)
			report.Failed += len(req.Inputs)
			for _, input := range req.Inputs {
				report.Failures = append(report.Failures, ParcelFailure{
					County: req.County,
					Input:  input,
					Err:    err,
				})
			}
			continue
		}
		tables.Append(countyTables)
		report.merge(countyReport)
	}
	return tables, report
}

func (s *Service) scrapeParcel(ctx context.Context, cfg *countytax.Config, input countytax.ParcelInput) parcelResult {
	fields, err := cfg.Search.ResolveInput(input)
	if err != nil {
		return parcelResult{err: err}
	}
	doc, err := s.fetcher.Fetch(ctx, cfg.Search, fields)
	if err != nil {
		return parcelResult{err: err}
	}
	record, warnings, err := countytax.Assemble(ctx, cfg, input, doc, s.now())
	if err != nil {
		return parcelResult{err: err}
	}
	return parcelResult{record: record, warnings: warnings}
}
