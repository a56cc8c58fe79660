package countytax

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

const validConfig = `{
	county_name: "Brown",
	platform: "landrecords",
	search: {
		url: "https://county.example/search",
		method: "GET",
		supports: ["parcel_id", "owner_name"],
		fields: {
			parcel_id: "parcelNumber",
			owner_name: "ownerName",
		},
	},
	parsing: {
		total: {
			strategy: "label_sibling",
			label_contains: "Total Tax",
			value: "money",
		},
		delinquent_years: {
			strategy: "table_rows",
			table_id: "history",
			year_column: 0,
			amount_column: 1,
		},
	},
}`

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, "brown.json5", validConfig)

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, "Brown", cfg.County)
	require.Equal(t, "landrecords", cfg.Platform)
	require.Equal(t, "GET", cfg.Search.Method)
	require.Equal(t, "parcelNumber", cfg.Search.Fields[InputParcelID])

	// rules come out sorted by field name so runs are deterministic
	require.Len(t, cfg.Fields, 2)
	require.Equal(t, "delinquent_years", cfg.Fields[0].Field)
	require.Equal(t, "total", cfg.Fields[1].Field)
	require.IsType(t, TableRows{}, cfg.Fields[0].Rule)
	require.IsType(t, LabelSibling{}, cfg.Fields[1].Rule)
}

func TestLoadFileUnknownStrategy(t *testing.T) {
	path := writeConfig(t, "bad.json5", `{
		county_name: "Brown",
		search: {
			url: "https://county.example/search",
			supports: ["parcel_id"],
			fields: { parcel_id: "p" },
		},
		parsing: {
			total: { strategy: "xpath_query", label_contains: "Total" },
		},
	}`)

	_, err := LoadFile(path)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	require.Equal(t, "total", cfgErr.Field)
}

func TestLoadFileMissingFieldMapping(t *testing.T) {
	path := writeConfig(t, "bad.json5", `{
		county_name: "Brown",
		search: {
			url: "https://county.example/search",
			supports: ["parcel_id", "owner_name"],
			fields: { parcel_id: "p" },
		},
		parsing: {},
	}`)

	_, err := LoadFile(path)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "brown.json5"), []byte(validConfig), 0644))

	configs, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, configs, 1)
	require.NotNil(t, configs["Brown"])
}

func TestResolveInput(t *testing.T) {
	search := SearchDescriptor{
		URL:      "https://county.example/search",
		Method:   "GET",
		Supports: []InputKind{InputParcelID},
		Fields:   map[InputKind]string{InputParcelID: "parcelNumber"},
	}

	fields, err := search.ResolveInput(ParcelInput{ParcelID: "1-1360-1"})
	require.NoError(t, err)
	require.Equal(t, map[string]string{"parcelNumber": "1-1360-1"}, fields)

	_, err = search.ResolveInput(ParcelInput{OwnerName: "SMITH"})
	var failure *ExtractionFailure
	require.ErrorAs(t, err, &failure)

	_, err = search.ResolveInput(ParcelInput{})
	require.ErrorAs(t, err, &failure)
}
