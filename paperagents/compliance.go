package paperagents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/walterfan/agentcore/internal/tools"
)

// Checklist types, keyed by paper type, grounded on workflow.py's
// get_available_paper_types mapping.
const (
	ChecklistCONSORT = "CONSORT"
	ChecklistSTROBE  = "STROBE"
	ChecklistPRISMA  = "PRISMA"
)

// checklistForPaperType maps a paper type to its reporting checklist:
// CONSORT for randomized controlled trials, STROBE for observational
// cohort studies, PRISMA for systematic reviews/meta-analyses.
var checklistForPaperType = map[string]string{
	"rct":           ChecklistCONSORT,
	"cohort":        ChecklistSTROBE,
	"meta_analysis": ChecklistPRISMA,
}

// checklistItems is a minimal representative item set per checklist,
// standing in for the full CONSORT/STROBE/PRISMA item lists.
var checklistItems = map[string][]string{
	ChecklistCONSORT: {"title_abstract", "trial_design", "randomization", "blinding", "participant_flow", "outcomes", "harms"},
	ChecklistSTROBE:  {"title_abstract", "study_design", "setting", "participants", "variables", "statistical_methods", "confounders"},
	ChecklistPRISMA:  {"title_abstract", "eligibility_criteria", "search_strategy", "study_selection", "data_synthesis", "risk_of_bias"},
}

type getChecklistArgs struct {
	PaperType string `json:"paper_type"`
}

var getChecklistSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"paper_type": map[string]any{"type": "string", "enum": []any{"rct", "cohort", "meta_analysis"}},
	},
	"required": []any{"paper_type"},
}

// GetChecklistDescriptor builds the get_checklist tool.
func GetChecklistDescriptor() tools.Descriptor {
	return tools.Descriptor{
		Name:        "get_checklist",
		Description: "Get the appropriate reporting checklist (CONSORT/STROBE/PRISMA) for a paper type.",
		Schema:      getChecklistSchema,
		Call: func(_ context.Context, args json.RawMessage) (any, error) {
			var a getChecklistArgs
			if err := json.Unmarshal(args, &a); err != nil {
				return nil, fmt.Errorf("get_checklist: %w", err)
			}
			checklistType, ok := checklistForPaperType[a.PaperType]
			if !ok {
				return nil, fmt.Errorf("get_checklist: unknown paper_type %q", a.PaperType)
			}
			return map[string]any{
				"checklist_type": checklistType,
				"items":          checklistItems[checklistType],
			}, nil
		},
	}
}

type checkComplianceArgs struct {
	Manuscript string `json:"manuscript"`
	PaperType  string `json:"paper_type"`
}

var checkComplianceSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"manuscript": map[string]any{"type": "string"},
		"paper_type": map[string]any{"type": "string", "enum": []any{"rct", "cohort", "meta_analysis"}},
	},
	"required": []any{"manuscript", "paper_type"},
}

// CheckComplianceDescriptor builds the check_compliance tool. It checks
// each checklist item's keyword(s) against the manuscript text — a
// deterministic stand-in for the original's LLM-driven compliance
// prompt, since the compliance engine is otherwise an opaque
// collaborator.
func CheckComplianceDescriptor() tools.Descriptor {
	return tools.Descriptor{
		Name:        "check_compliance",
		Description: "Check a manuscript against the appropriate reporting checklist (CONSORT/STROBE/PRISMA) for its paper type.",
		Schema:      checkComplianceSchema,
		Call: func(_ context.Context, args json.RawMessage) (any, error) {
			var a checkComplianceArgs
			if err := json.Unmarshal(args, &a); err != nil {
				return nil, fmt.Errorf("check_compliance: %w", err)
			}
			checklistType, ok := checklistForPaperType[a.PaperType]
			if !ok {
				return nil, fmt.Errorf("check_compliance: unknown paper_type %q", a.PaperType)
			}
			items := checklistItems[checklistType]
			lower := strings.ToLower(a.Manuscript)
			results := make([]map[string]any, 0, len(items))
			for _, item := range items {
				keyword := strings.ReplaceAll(item, "_", " ")
				status := "fail"
				if strings.Contains(lower, keyword) || strings.Contains(lower, strings.Split(keyword, " ")[0]) {
					status = "pass"
				}
				results = append(results, map[string]any{
					"item_id": item,
					"status":  status,
					"finding": fmt.Sprintf("checklist item %q %s", item, map[string]string{"pass": "addressed", "fail": "not clearly addressed"}[status]),
				})
			}
			return map[string]any{"checklist_type": checklistType, "items": results}, nil
		},
	}
}

type generateComplianceReportArgs struct {
	Items         []map[string]any `json:"items"`
	ChecklistType string           `json:"checklist_type"`
}

var generateComplianceReportSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"items":          map[string]any{"type": "array", "items": map[string]any{"type": "object"}, "description": "item_id, status, finding entries"},
		"checklist_type": map[string]any{"type": "string", "enum": []any{"CONSORT", "STROBE", "PRISMA"}},
	},
	"required": []any{"items", "checklist_type"},
}

// GenerateComplianceReportDescriptor builds the generate_compliance_report
// tool: the node's primary artifact producer. Its result shape —
// needs_revision (bool) and failed_items ([]any) — matches what
// internal/revision.Check reads from State.Artifacts["compliance_report"].
func GenerateComplianceReportDescriptor() tools.Descriptor {
	return tools.Descriptor{
		Name:        "generate_compliance_report",
		Description: "Generate a structured compliance report from individual item check results.",
		Schema:      generateComplianceReportSchema,
		Call: func(_ context.Context, args json.RawMessage) (any, error) {
			var a generateComplianceReportArgs
			if err := json.Unmarshal(args, &a); err != nil {
				return nil, fmt.Errorf("generate_compliance_report: %w", err)
			}
			if len(a.Items) == 0 {
				return nil, fmt.Errorf("generate_compliance_report: items must not be empty")
			}
			var failedItems []any
			passCount := 0
			for _, item := range a.Items {
				if status, _ := item["status"].(string); status == "pass" {
					passCount++
				} else {
					failedItems = append(failedItems, item["item_id"])
				}
			}
			score := float64(passCount) / float64(len(a.Items))
			return map[string]any{
				"checklist_type": a.ChecklistType,
				"score":          score,
				"needs_revision": len(failedItems) > 0,
				"failed_items":   failedItems,
			}, nil
		},
	}
}
