// Package paperagents implements the medical-paper-writing workflow's
// four pipeline sub-agents and the concrete tools they expose:
// literature, stats, writer, and compliance. Tool bodies are
// deterministic stand-ins for the real PubMed/ClinicalTrials.gov/stats
// engine integrations the original medical paper service calls — that
// business logic is otherwise an opaque collaborator, so the point
// here is exercising the Tool Registry, Agent Node, and Router end to
// end, not real literature retrieval or statistical computation.
package paperagents

import (
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/walterfan/agentcore/internal/tools"
)

type searchPubMedArgs struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

var searchPubMedSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"query":       map[string]any{"type": "string", "description": "PubMed search query using MeSH terms or keywords"},
		"max_results": map[string]any{"type": "integer", "description": "maximum results to return", "default": 20},
	},
	"required": []any{"query"},
}

// reference is one search result, grounded on format_citation's expected
// reference dict shape (pmid, title, authors, journal, year).
type reference struct {
	PMID    string   `json:"pmid"`
	Title   string   `json:"title"`
	Authors []string `json:"authors"`
	Journal string   `json:"journal"`
	Year    int      `json:"year"`
}

// SearchPubMedDescriptor builds the search_pubmed tool. It never
// contacts PubMed; it deterministically synthesizes results from the
// query so repeated runs with the same input are reproducible.
func SearchPubMedDescriptor() tools.Descriptor {
	return tools.Descriptor{
		Name:        "search_pubmed",
		Description: "Search PubMed for medical literature using MeSH terms or keywords. Returns article summaries with PMIDs.",
		Schema:      searchPubMedSchema,
		Call: func(_ context.Context, args json.RawMessage) (any, error) {
			var a searchPubMedArgs
			if err := json.Unmarshal(args, &a); err != nil {
				return nil, fmt.Errorf("search_pubmed: %w", err)
			}
			if a.Query == "" {
				return nil, fmt.Errorf("search_pubmed: query is required")
			}
			if a.MaxResults <= 0 {
				a.MaxResults = 20
			}
			return synthesizeReferences(a.Query, a.MaxResults), nil
		},
	}
}

func synthesizeReferences(query string, n int) []reference {
	seed := seedFrom(query)
	out := make([]reference, 0, n)
	for i := 0; i < n; i++ {
		h := seedFrom(fmt.Sprintf("%s#%d", query, i))
		out = append(out, reference{
			PMID:    fmt.Sprintf("%08d", (seed+uint64(i))%1e8),
			Title:   fmt.Sprintf("%s: a study (%d)", query, i+1),
			Authors: []string{fmt.Sprintf("Author%d", h%97)},
			Journal: journalFor(h),
			Year:    2015 + int(h%11),
		})
	}
	return out
}

func seedFrom(s string) uint64 {
	sum := sha1.Sum([]byte(s))
	return binary.BigEndian.Uint64(sum[:8])
}

var journals = []string{"NEJM", "The Lancet", "JAMA", "BMJ", "Annals of Internal Medicine"}

func journalFor(h uint64) string {
	return journals[h%uint64(len(journals))]
}

type searchClinicalTrialsArgs struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

var searchClinicalTrialsSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"query":       map[string]any{"type": "string", "description": "search query for ClinicalTrials.gov"},
		"max_results": map[string]any{"type": "integer", "default": 10},
	},
	"required": []any{"query"},
}

type clinicalTrial struct {
	NCTID  string `json:"nct_id"`
	Title  string `json:"title"`
	Status string `json:"status"`
	Phase  string `json:"phase"`
}

// SearchClinicalTrialsDescriptor builds the search_clinicaltrials tool.
func SearchClinicalTrialsDescriptor() tools.Descriptor {
	return tools.Descriptor{
		Name:        "search_clinicaltrials",
		Description: "Search ClinicalTrials.gov for registered clinical trials.",
		Schema:      searchClinicalTrialsSchema,
		Call: func(_ context.Context, args json.RawMessage) (any, error) {
			var a searchClinicalTrialsArgs
			if err := json.Unmarshal(args, &a); err != nil {
				return nil, fmt.Errorf("search_clinicaltrials: %w", err)
			}
			if a.Query == "" {
				return nil, fmt.Errorf("search_clinicaltrials: query is required")
			}
			if a.MaxResults <= 0 {
				a.MaxResults = 10
			}
			phases := []string{"Phase 2", "Phase 3", "Phase 4"}
			statuses := []string{"Recruiting", "Completed", "Active, not recruiting"}
			out := make([]clinicalTrial, 0, a.MaxResults)
			for i := 0; i < a.MaxResults; i++ {
				h := seedFrom(fmt.Sprintf("%s#trial#%d", a.Query, i))
				out = append(out, clinicalTrial{
					NCTID:  fmt.Sprintf("NCT%08d", (h)%1e8),
					Title:  fmt.Sprintf("Trial of %s (%d)", a.Query, i+1),
					Status: statuses[h%uint64(len(statuses))],
					Phase:  phases[h%uint64(len(phases))],
				})
			}
			return out, nil
		},
	}
}

type getAbstractArgs struct {
	PMID string `json:"pmid"`
}

var getAbstractSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"pmid": map[string]any{"type": "string", "description": "PubMed ID of the article"},
	},
	"required": []any{"pmid"},
}

// GetArticleAbstractDescriptor builds the get_article_abstract tool.
func GetArticleAbstractDescriptor() tools.Descriptor {
	return tools.Descriptor{
		Name:        "get_article_abstract",
		Description: "Fetch a single article's abstract by PubMed ID (PMID).",
		Schema:      getAbstractSchema,
		Call: func(_ context.Context, args json.RawMessage) (any, error) {
			var a getAbstractArgs
			if err := json.Unmarshal(args, &a); err != nil {
				return nil, fmt.Errorf("get_article_abstract: %w", err)
			}
			if a.PMID == "" {
				return nil, fmt.Errorf("get_article_abstract: pmid is required")
			}
			return map[string]any{
				"pmid":     a.PMID,
				"abstract": fmt.Sprintf("Abstract text for PMID %s is not retrievable: literature retrieval is out of scope for this deployment.", a.PMID),
			}, nil
		},
	}
}

type formatCitationArgs struct {
	Reference map[string]any `json:"reference"`
	Style     string         `json:"style"`
}

var formatCitationSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"reference": map[string]any{"type": "object", "description": "reference dict with pmid, title, authors, journal, year"},
		"style":     map[string]any{"type": "string", "enum": []any{"vancouver", "apa", "ama"}, "default": "vancouver"},
	},
	"required": []any{"reference"},
}

// FormatCitationDescriptor builds the format_citation tool, supporting
// Vancouver, APA, and AMA styles.
func FormatCitationDescriptor() tools.Descriptor {
	return tools.Descriptor{
		Name:        "format_citation",
		Description: "Format a reference in Vancouver, APA, or AMA citation style.",
		Schema:      formatCitationSchema,
		Call: func(_ context.Context, args json.RawMessage) (any, error) {
			var a formatCitationArgs
			if err := json.Unmarshal(args, &a); err != nil {
				return nil, fmt.Errorf("format_citation: %w", err)
			}
			style := a.Style
			if style == "" {
				style = "vancouver"
			}
			title, _ := a.Reference["title"].(string)
			journal, _ := a.Reference["journal"].(string)
			year, _ := a.Reference["year"].(float64)
			authors := firstAuthor(a.Reference["authors"])
			var citation string
			switch style {
			case "apa":
				citation = fmt.Sprintf("%s (%d). %s. %s.", authors, int(year), title, journal)
			case "ama":
				citation = fmt.Sprintf("%s. %s. %s. %d.", authors, title, journal, int(year))
			default:
				citation = fmt.Sprintf("%s. %s. %s. %d.", authors, title, journal, int(year))
			}
			return map[string]any{"style": style, "citation": citation}, nil
		},
	}
}

func firstAuthor(v any) string {
	list, ok := v.([]any)
	if !ok || len(list) == 0 {
		return "Unknown"
	}
	if s, ok := list[0].(string); ok {
		if len(list) > 1 {
			return s + " et al"
		}
		return s
	}
	return "Unknown"
}
