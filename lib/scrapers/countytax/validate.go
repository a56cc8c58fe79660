package countytax

import (
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

// SelectorIssue reports one rule whose anchor is missing from a
// county's page. Issues are collected per-field so one broken selector
// never masks the others.
type SelectorIssue struct {
	County string
	Field  string
	Detail string
}

func (i SelectorIssue) String() string {
	return fmt.Sprintf("%s/%s: %s", i.County, i.Field, i.Detail)
}

// CheckSelectors fetches a county's search page once and verifies
// that every declared rule's anchor (label text or table id) can still
// be located. It reads only; nothing is extracted or mutated.
func CheckSelectors(ctx context.Context, fetcher Fetcher, cfg *Config) ([]SelectorIssue, error) {
	ctx, span := tracer.Start(ctx, "CheckSelectors")
	defer span.End()

	doc, err := fetcher.Fetch(ctx, cfg.Search, nil)
	if err != nil {
		return nil, err
	}

	return CheckSelectorsAgainst(cfg, doc), nil
}

// CheckSelectorsAgainst runs the same anchor checks against an
// already-fetched document, for offline replay of dumped artifacts.
func CheckSelectorsAgainst(cfg *Config, doc *goquery.Document) []SelectorIssue {
	var issues []SelectorIssue
	for _, fr := range cfg.Fields {
		switch rule := fr.Rule.(type) {
		case LabelSibling:
			if findLabelNode(doc, rule.LabelContains) == nil {
				issues = append(issues, SelectorIssue{
					County: cfg.County,
					Field:  fr.Field,
					Detail: fmt.Sprintf("no node contains label %q", rule.LabelContains),
				})
			}
		case TableRows:
			if findTableByID(doc, rule.TableID) == nil {
				issues = append(issues, SelectorIssue{
					County: cfg.County,
					Field:  fr.Field,
					Detail: fmt.Sprintf("no table with id %q", rule.TableID),
				})
			}
		}
	}
	return issues
}
