package commands

import (
	"fmt"
	"os"
	"sort"
	"time"
	"taxrecords-backend/lib/restyutil"
	"taxrecords-backend/lib/scrapers/countytax"
	"taxrecords-backend/lib/serviceutil"
	"taxrecords-backend/services/taxrecords"
	"taxrecords-backend/services/taxrecords/db"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	scrapeConfigs   *string
	scrapeCounty    *string
	scrapeKind      *string
	scrapeDb        *string
	scrapeCsvDir    *string
	scrapeXlsx      *string
	scrapeArtifacts *string
)

func init() {
	scrapeConfigs = scrapeCmd.Flags().String("configs", "configs", "Directory of county config files.")
	scrapeCounty = scrapeCmd.Flags().String("county", "", "County to scrape; empty means every configured county.")
	scrapeKind = scrapeCmd.Flags().String("kind", "parcel_id", "How to interpret the arguments: parcel_id, owner_name or address.")
	scrapeDb = scrapeCmd.Flags().String("db", "", "Sqlite database to write normalized tables to.")
	scrapeCsvDir = scrapeCmd.Flags().String("out", "", "Directory to write per-table CSV files to.")
	scrapeXlsx = scrapeCmd.Flags().String("xlsx", "", "Path to write an xlsx workbook to.")
	scrapeArtifacts = scrapeCmd.Flags().String("artifacts", "", "Directory to dump fetched pages into.")
	rootCmd.AddCommand(scrapeCmd)
}

func makeInput(kind, value string) (countytax.ParcelInput, error) {
	switch countytax.InputKind(kind) {
	case countytax.InputParcelID:
		return countytax.ParcelInput{ParcelID: value}, nil
	case countytax.InputOwnerName:
		return countytax.ParcelInput{OwnerName: value}, nil
	case countytax.InputAddress:
		return countytax.ParcelInput{Address: value}, nil
	}
	return countytax.ParcelInput{}, fmt.Errorf("unknown input kind %q", kind)
}

func newFetcher() *countytax.RestyFetcher {
	opts := countytax.RestyFetcherOptions{Timeout: time.Second * 30}
	if *scrapeArtifacts != "" {
		artifacts := restyutil.NewFilesystemOutput(*scrapeArtifacts)
		opts.Artifacts = &artifacts
	}
	fetcher, err := countytax.NewRestyFetcher(opts)
	if err != nil {
		serviceutil.Fatal("failed to initialize fetcher", err)
	}
	return fetcher
}

func printReport(report taxrecords.Report) {
	summary := table.NewWriter()
	summary.SetOutputMirror(os.Stdout)
	summary.AppendHeader(table.Row{"succeeded", "failed", "warned"})
	summary.AppendRow(table.Row{report.Succeeded, report.Failed, report.Warned})
	summary.Render()

	if len(report.Failures) > 0 {
		failures := table.NewWriter()
		failures.SetOutputMirror(os.Stdout)
		failures.AppendHeader(table.Row{"county", "input", "error"})
		for _, f := range report.Failures {
			failures.AppendRow(table.Row{f.County, inputRow(f.Input), f.Err.Error()})
		}
		failures.Render()
	}
	if len(report.Warnings) > 0 {
		warnings := table.NewWriter()
		warnings.SetOutputMirror(os.Stdout)
		warnings.AppendHeader(table.Row{"field", "detail"})
		for _, w := range report.Warnings {
			warnings.AppendRow(table.Row{w.Field, w.Detail})
		}
		warnings.Render()
	}
}

func inputRow(input countytax.ParcelInput) string {
	for _, kind := range input.Kinds() {
		return fmt.Sprintf("%s=%s", kind, input.Value(kind))
	}
	return "(empty)"
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [--county <name>] [--kind parcel_id] <value>...",
	Short: "Scrapes parcels from county tax portals and writes normalized tables.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		configs, err := countytax.LoadDir(*scrapeConfigs)
		if err != nil {
			serviceutil.Fatal("failed to load county configs", err)
		}

		var inputs []countytax.ParcelInput
		for _, arg := range args {
			input, err := makeInput(*scrapeKind, arg)
			if err != nil {
				serviceutil.Fatal("bad input", err)
			}
			inputs = append(inputs, input)
		}

		var requests []taxrecords.CountyRequest
		if *scrapeCounty != "" {
			requests = append(requests, taxrecords.CountyRequest{County: *scrapeCounty, Inputs: inputs})
		} else {
			counties := make([]string, 0, len(configs))
			for county := range configs {
				counties = append(counties, county)
			}
			sort.Strings(counties)
			for _, county := range counties {
				requests = append(requests, taxrecords.CountyRequest{County: county, Inputs: inputs})
			}
		}

		service := taxrecords.NewService(configs, newFetcher())

		t1 := time.Now()
		tables, report := service.ScrapeCounties(cmd.Context(), requests)
		t2 := time.Now()

		printReport(report)

		if *scrapeDb != "" {
			database, err := db.Open(*scrapeDb)
			if err != nil {
				serviceutil.Fatal("failed to open db", err)
			}
			defer database.Close()
			if err := db.InsertTables(cmd.Context(), database, tables); err != nil {
				serviceutil.Fatal("failed to write tables", err)
			}
		}
		if *scrapeCsvDir != "" {
			if _, err := taxrecords.WriteCSV(tables, *scrapeCsvDir); err != nil {
				serviceutil.Fatal("failed to write csv", err)
			}
		}
		if *scrapeXlsx != "" {
			if err := taxrecords.WriteWorkbook(tables, *scrapeXlsx); err != nil {
				serviceutil.Fatal("failed to write workbook", err)
			}
		}

		fmt.Printf("scraped %d parcels in %.1fs\n",
			report.Succeeded+report.Failed, t2.Sub(t1).Seconds())
	},
}
