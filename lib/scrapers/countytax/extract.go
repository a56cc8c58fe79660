package countytax

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"taxrecords-backend/lib/htmlutil"
	"taxrecords-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
	"golang.org/x/net/html"
)

// Value is the typed result of running one rule against a document.
// Found=false means the anchor was legitimately absent from the page,
// which is a normal result, not an error.
type Value struct {
	Found bool
	Kind  ValueKind

	Text  string
	Money decimal.Decimal
	Date  time.Time
	Year  int
	Count int

	// table_rows results
	Pairs       []YearAmount
	SkippedRows int
}

// Extract interprets one rule against a parsed document. A missing
// anchor yields Found=false with a nil error; text that was located
// but cannot be parsed as the declared kind yields an
// UnparsableValueError.
func Extract(rule ExtractionRule, doc *goquery.Document) (Value, error) {
	switch r := rule.(type) {
	case LabelSibling:
		return extractLabelSibling(r, doc)
	case TableRows:
		return extractTableRows(r, doc)
	default:
		// the rule set is closed; a new variant without a case here
		// is a programming error
		return Value{}, fmt.Errorf("unhandled extraction strategy %q", rule.strategy())
	}
}

func extractLabelSibling(rule LabelSibling, doc *goquery.Document) (Value, error) {
	label := findLabelNode(doc, rule.LabelContains)
	if label == nil {
		return Value{Found: false, Kind: rule.Value}, nil
	}

	// a value in the label's own text node ("Total Tax: $1,234.56")
	// wins over siblings, otherwise a later occurrence of the same
	// label could shadow the first match
	raw := textAfterLabel(label.Data, rule.LabelContains)
	if raw == "" {
		raw = adjacentText(label)
	}
	if raw == "" {
		return Value{Found: false, Kind: rule.Value}, nil
	}

	return parseValue(rule.Value, raw)
}

// findLabelNode walks the document depth-first and returns the first
// text node whose collapsed text contains the label. First
// document-order match wins, which keeps repeated labels
// deterministic.
func findLabelNode(doc *goquery.Document, label string) *html.Node {
	var found *html.Node
	var walk func(n *html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.TextNode && textutil.ContainsLabel(n.Data, label) {
			found = n
			return true
		}
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return false
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	for _, root := range doc.Nodes {
		if walk(root) {
			break
		}
	}
	return found
}

// adjacentText reads the first non-empty text from the label node's
// following siblings, then from its parent element's following
// siblings. The second hop covers the common
// <td>Label</td><td>Value</td> layout.
func adjacentText(label *html.Node) string {
	for sib := label.NextSibling; sib != nil; sib = sib.NextSibling {
		if t := htmlutil.CleanText(htmlutil.GetText(sib)); t != "" {
			return t
		}
	}
	if label.Parent != nil {
		for sib := label.Parent.NextSibling; sib != nil; sib = sib.NextSibling {
			if t := htmlutil.CleanText(htmlutil.GetText(sib)); t != "" {
				return t
			}
		}
	}
	return ""
}

func textAfterLabel(text, label string) string {
	clean := htmlutil.CleanText(text)
	needle := htmlutil.CleanText(label)
	idx := strings.Index(strings.ToLower(clean), strings.ToLower(needle))
	if idx < 0 {
		return ""
	}
	rest := clean[idx+len(needle):]
	// "Total Tax: $1,234.56" leaves ": $1,234.56"; a bare separator
	// means the value lives elsewhere
	rest = strings.TrimLeft(rest, ":-– \t")
	return htmlutil.CleanText(rest)
}

var digits = regexp.MustCompile(`\d+`)

func parseValue(kind ValueKind, raw string) (Value, error) {
	v := Value{Found: true, Kind: kind, Text: raw}

	switch kind {
	case KindText:
		return v, nil

	case KindMoney:
		money, err := textutil.ParseMoney(raw)
		if err != nil {
			return Value{Kind: kind}, &UnparsableValueError{Kind: kind, Text: raw}
		}
		v.Money = money
		return v, nil

	case KindDate:
		date, err := textutil.ParseDate(raw)
		if err != nil {
			return Value{Kind: kind}, &UnparsableValueError{Kind: kind, Text: raw}
		}
		v.Date = date
		return v, nil

	case KindYear:
		year, err := textutil.FindYear(raw)
		if err != nil {
			return Value{Kind: kind}, &UnparsableValueError{Kind: kind, Text: raw}
		}
		v.Year = year
		return v, nil

	case KindCount:
		match := digits.FindString(raw)
		if match == "" {
			return Value{Kind: kind}, &UnparsableValueError{Kind: kind, Text: raw}
		}
		count, err := strconv.Atoi(match)
		if err != nil {
			return Value{Kind: kind}, &UnparsableValueError{Kind: kind, Text: raw}
		}
		v.Count = count
		return v, nil
	}

	return Value{Kind: kind}, &UnparsableValueError{Kind: kind, Text: raw}
}

func findTableByID(doc *goquery.Document, id string) *goquery.Selection {
	var found *goquery.Selection
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		if table.AttrOr("id", "") == id {
			found = table
			return false
		}
		return true
	})
	return found
}

func extractTableRows(rule TableRows, doc *goquery.Document) (Value, error) {
	table := findTableByID(doc, rule.TableID)
	if table == nil {
		return Value{Found: false}, nil
	}

	need := rule.YearColumn
	if rule.AmountColumn > need {
		need = rule.AmountColumn
	}
	need++

	v := Value{Found: true}
	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			// header row
			return
		}
		cells := row.Find("th, td")
		if cells.Length() < need {
			v.SkippedRows++
			return
		}

		year, err := textutil.FindYear(htmlutil.CleanText(cells.Eq(rule.YearColumn).Text()))
		if err != nil {
			v.SkippedRows++
			return
		}
		amount, err := textutil.ParseMoney(htmlutil.CleanText(cells.Eq(rule.AmountColumn).Text()))
		if err != nil {
			v.SkippedRows++
			return
		}

		v.Pairs = append(v.Pairs, YearAmount{Year: year, Amount: amount})
	})

	return v, nil
}
