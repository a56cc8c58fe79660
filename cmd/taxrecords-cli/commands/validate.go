package commands

import (
	"fmt"
	"os"
	"sort"
	"taxrecords-backend/lib/scrapers/countytax"
	"taxrecords-backend/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var validateConfigs *string

func init() {
	validateConfigs = validateCmd.Flags().String("configs", "configs", "Directory of county config files.")
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate [--configs <dir>] [county...]",
	Short: "Fetches each county's search page and reports selectors that no longer match.",
	Run: func(cmd *cobra.Command, args []string) {
		configs, err := countytax.LoadDir(*validateConfigs)
		if err != nil {
			serviceutil.Fatal("failed to load county configs", err)
		}

		counties := args
		if len(counties) == 0 {
			for county := range configs {
				counties = append(counties, county)
			}
			sort.Strings(counties)
		}

		fetcher := newFetcher()
		report := table.NewWriter()
		report.SetOutputMirror(os.Stdout)
		report.AppendHeader(table.Row{"county", "field", "detail"})

		broken := 0
		for _, county := range counties {
			cfg, ok := configs[county]
			if !ok {
				serviceutil.Fatal("no config loaded", fmt.Errorf("county %q", county))
			}
			issues, err := countytax.CheckSelectors(cmd.Context(), fetcher, cfg)
			if err != nil {
				report.AppendRow(table.Row{county, "(fetch)", err.Error()})
				broken++
				continue
			}
			for _, issue := range issues {
				report.AppendRow(table.Row{issue.County, issue.Field, issue.Detail})
				broken++
			}
		}

		report.Render()
		if broken == 0 {
			fmt.Println("all selectors healthy")
		} else {
			os.Exit(1)
		}
	},
}
