package countytax

import (
	"fmt"
	"sort"
	"strings"
	"taxrecords-backend/lib/configutil"
)

// SearchDescriptor describes how to issue a parcel search against a
// county site: the endpoint, which identifying input kinds the form
// accepts, and the logical-to-physical form field mapping.
type SearchDescriptor struct {
	URL            string
	Method         string
	Supports       []InputKind
	PreferredOrder []InputKind
	Fields         map[InputKind]string
	SubmitButton   string
	SubmitValue    string
}

func (s SearchDescriptor) supportsKind(kind InputKind) bool {
	for _, k := range s.Supports {
		if k == kind {
			return true
		}
	}
	return false
}

// ResolveInput maps an input's identifying fields onto the physical
// form fields the county expects. An empty input or an input kind
// outside the county's supported set is an ExtractionFailure, raised
// before any search is issued.
func (s SearchDescriptor) ResolveInput(input ParcelInput) (map[string]string, error) {
	kinds := input.Kinds()
	if len(kinds) == 0 {
		return nil, &ExtractionFailure{
			County: input.County,
			Reason: "no identifying fields on input",
		}
	}

	fields := make(map[string]string, len(kinds))
	for _, kind := range kinds {
		if !s.supportsKind(kind) {
			return nil, &ExtractionFailure{
				County: input.County,
				Reason: fmt.Sprintf("county does not support searching by %s", kind),
			}
		}
		fields[s.Fields[kind]] = input.Value(kind)
	}
	return fields, nil
}

// Config is one county's search descriptor plus its field extraction
// rules. Immutable once loaded; one instance per county.
type Config struct {
	County   string
	Platform string
	Search   SearchDescriptor
	Fields   []FieldRule
}

type searchSpec struct {
	URL            string            `json:"url"`
	Method         string            `json:"method"`
	Supports       []string          `json:"supports"`
	PreferredOrder []string          `json:"preferred_order"`
	Fields         map[string]string `json:"fields"`
	SubmitButton   string            `json:"submit_button"`
	SubmitValue    string            `json:"submit_value"`
}

type ruleSpec struct {
	Strategy      string `json:"strategy"`
	LabelContains string `json:"label_contains"`
	Value         string `json:"value"`
	TableID       string `json:"table_id"`
	YearColumn    int    `json:"year_column"`
	AmountColumn  int    `json:"amount_column"`
}

type configSpec struct {
	CountyName string              `json:"county_name"`
	Platform   string              `json:"platform"`
	Search     searchSpec          `json:"search"`
	Parsing    map[string]ruleSpec `json:"parsing"`
}

// LoadFile reads and validates one county config. Any unknown
// strategy or malformed rule is a ConfigError, raised before any
// fetch can happen.
func LoadFile(path string) (*Config, error) {
	spec, err := configutil.ReadConfig[configSpec](path)
	if err != nil {
		return nil, err
	}
	return parseSpec(spec)
}

// LoadDir loads every county config in a directory into a registry
// keyed by county name.
func LoadDir(dir string) (map[string]*Config, error) {
	specs, err := configutil.ReadDir[configSpec](dir)
	if err != nil {
		return nil, err
	}

	configs := make(map[string]*Config, len(specs))
	for name, spec := range specs {
		cfg, err := parseSpec(spec)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		configs[cfg.County] = cfg
	}
	return configs, nil
}

func parseSpec(spec configSpec) (*Config, error) {
	county := spec.CountyName
	if county == "" {
		return nil, &ConfigError{County: "(unnamed)", Reason: "county_name is required"}
	}

	search, err := parseSearchSpec(county, spec.Search)
	if err != nil {
		return nil, err
	}

	// sorted so rule execution and selector health reports are
	// deterministic regardless of json key order
	names := make([]string, 0, len(spec.Parsing))
	for name := range spec.Parsing {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]FieldRule, 0, len(names))
	for _, name := range names {
		rule, err := parseRuleSpec(county, name, spec.Parsing[name])
		if err != nil {
			return nil, err
		}
		fields = append(fields, FieldRule{Field: name, Rule: rule})
	}

	return &Config{
		County:   county,
		Platform: spec.Platform,
		Search:   search,
		Fields:   fields,
	}, nil
}

func parseSearchSpec(county string, spec searchSpec) (SearchDescriptor, error) {
	if spec.URL == "" {
		return SearchDescriptor{}, &ConfigError{County: county, Reason: "search.url is required"}
	}

	method := strings.ToUpper(spec.Method)
	if method == "" {
		method = "GET"
	}
	if method != "GET" && method != "POST" {
		return SearchDescriptor{}, &ConfigError{
			County: county,
			Reason: fmt.Sprintf("unsupported search method %q", spec.Method),
		}
	}

	supports, err := parseKinds(county, spec.Supports)
	if err != nil {
		return SearchDescriptor{}, err
	}
	if len(supports) == 0 {
		return SearchDescriptor{}, &ConfigError{County: county, Reason: "search.supports is empty"}
	}
	preferred, err := parseKinds(county, spec.PreferredOrder)
	if err != nil {
		return SearchDescriptor{}, err
	}

	fields := make(map[InputKind]string, len(spec.Fields))
	for logical, physical := range spec.Fields {
		fields[InputKind(logical)] = physical
	}
	for _, kind := range supports {
		if fields[kind] == "" {
			return SearchDescriptor{}, &ConfigError{
				County: county,
				Reason: fmt.Sprintf("supported input %s has no physical field mapping", kind),
			}
		}
	}

	return SearchDescriptor{
		URL:            spec.URL,
		Method:         method,
		Supports:       supports,
		PreferredOrder: preferred,
		Fields:         fields,
		SubmitButton:   spec.SubmitButton,
		SubmitValue:    spec.SubmitValue,
	}, nil
}

func parseKinds(county string, raw []string) ([]InputKind, error) {
	kinds := make([]InputKind, 0, len(raw))
	for _, r := range raw {
		kind := InputKind(r)
		switch kind {
		case InputParcelID, InputOwnerName, InputAddress:
			kinds = append(kinds, kind)
		default:
			return nil, &ConfigError{
				County: county,
				Reason: fmt.Sprintf("unknown input kind %q", r),
			}
		}
	}
	return kinds, nil
}

func parseRuleSpec(county, field string, spec ruleSpec) (ExtractionRule, error) {
	switch spec.Strategy {
	case "label_sibling":
		if spec.LabelContains == "" {
			return nil, &ConfigError{County: county, Field: field, Reason: "label_contains is required"}
		}
		kind := ValueKind(spec.Value)
		if kind == "" {
			kind = KindText
		}
		if !validValueKind(kind) {
			return nil, &ConfigError{
				County: county,
				Field:  field,
				Reason: fmt.Sprintf("unknown value kind %q", spec.Value),
			}
		}
		return LabelSibling{LabelContains: spec.LabelContains, Value: kind}, nil

	case "table_rows":
		if spec.TableID == "" {
			return nil, &ConfigError{County: county, Field: field, Reason: "table_id is required"}
		}
		if spec.YearColumn < 0 || spec.AmountColumn < 0 {
			return nil, &ConfigError{County: county, Field: field, Reason: "column indexes must be >= 0"}
		}
		return TableRows{
			TableID:      spec.TableID,
			YearColumn:   spec.YearColumn,
			AmountColumn: spec.AmountColumn,
		}, nil

	default:
		return nil, &ConfigError{
			County: county,
			Field:  field,
			Reason: fmt.Sprintf("unknown strategy %q", spec.Strategy),
		}
	}
}
