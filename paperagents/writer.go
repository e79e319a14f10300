package paperagents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/walterfan/agentcore/internal/tools"
)

// SectionOrder is the fixed IMRAD section ordering merge_sections
// assembles the manuscript in, matching the original writing_tools.py's
// SECTION_ORDER.
var SectionOrder = []string{"abstract", "introduction", "methods", "results", "discussion"}

type writeSectionArgs struct {
	SectionType string         `json:"section_type"`
	Context     map[string]any `json:"context"`
	WordLimit   int            `json:"word_limit"`
}

var writeSectionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"section_type": map[string]any{"type": "string", "enum": []any{"abstract", "introduction", "methods", "results", "discussion"}},
		"context":      map[string]any{"type": "object", "description": "references, stats, study design"},
		"word_limit":   map[string]any{"type": "integer", "default": 500},
	},
	"required": []any{"section_type", "context"},
}

// WriteSectionDescriptor builds the write_section tool. It renders a
// structurally faithful section draft from context, grounded on
// writing_tools.py's write_section_prompt per-section templates — the
// original returns a prompt for the LLM to complete; here the tool
// itself produces the section body directly since section generation
// is otherwise an opaque collaborator.
func WriteSectionDescriptor() tools.Descriptor {
	return tools.Descriptor{
		Name: "write_section",
		Description: "Write a manuscript section (introduction, methods, results, discussion, or abstract) " +
			"from the supplied context (references, stats report, study design).",
		Schema: writeSectionSchema,
		Call: func(_ context.Context, args json.RawMessage) (any, error) {
			var a writeSectionArgs
			if err := json.Unmarshal(args, &a); err != nil {
				return nil, fmt.Errorf("write_section: %w", err)
			}
			if a.SectionType == "" {
				return nil, fmt.Errorf("write_section: section_type is required")
			}
			if a.WordLimit <= 0 {
				a.WordLimit = 500
			}
			content := draftSection(a.SectionType, a.Context, a.WordLimit)
			return map[string]any{"section_type": a.SectionType, "content": content}, nil
		},
	}
}

func draftSection(sectionType string, ctx map[string]any, wordLimit int) string {
	paperType, _ := ctx["paper_type"].(string)
	if paperType == "" {
		paperType = "rct"
	}
	researchQuestion, _ := ctx["research_question"].(string)
	studyDesign, _ := ctx["study_design"].(string)

	switch sectionType {
	case "introduction":
		return fmt.Sprintf("Introduction (%s, max %d words): %s Background, literature review, and the gap this study addresses.",
			paperType, wordLimit, researchQuestion)
	case "methods":
		return fmt.Sprintf("Methods (%s, max %d words): Study design %s. Participants, interventions, outcomes, and statistical plan follow.",
			paperType, wordLimit, studyDesign)
	case "results":
		return fmt.Sprintf("Results (%s, max %d words): Participant flow, baseline characteristics, primary and secondary outcomes.",
			paperType, wordLimit)
	case "discussion":
		return fmt.Sprintf("Discussion (%s, max %d words): Interpretation of %s, comparison to prior work, strengths, limitations, implications.",
			paperType, wordLimit, researchQuestion)
	case "abstract":
		return fmt.Sprintf("Abstract (%s, max %d words): Background, methods, results, conclusions for: %s",
			paperType, wordLimit, researchQuestion)
	default:
		return fmt.Sprintf("%s (max %d words)", sectionType, wordLimit)
	}
}

type reviseSectionArgs struct {
	SectionType    string `json:"section_type"`
	CurrentContent string `json:"current_content"`
	Feedback       string `json:"feedback"`
}

var reviseSectionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"section_type":    map[string]any{"type": "string"},
		"current_content": map[string]any{"type": "string"},
		"feedback":        map[string]any{"type": "string"},
	},
	"required": []any{"section_type", "current_content", "feedback"},
}

// ReviseSectionDescriptor builds the revise_section tool, invoked on the
// revision loop's feedback message.
func ReviseSectionDescriptor() tools.Descriptor {
	return tools.Descriptor{
		Name:        "revise_section",
		Description: "Revise a manuscript section based on compliance or reviewer feedback.",
		Schema:      reviseSectionSchema,
		Call: func(_ context.Context, args json.RawMessage) (any, error) {
			var a reviseSectionArgs
			if err := json.Unmarshal(args, &a); err != nil {
				return nil, fmt.Errorf("revise_section: %w", err)
			}
			if a.SectionType == "" || a.CurrentContent == "" {
				return nil, fmt.Errorf("revise_section: section_type and current_content are required")
			}
			revised := fmt.Sprintf("%s\n\n[Revised to address: %s]", a.CurrentContent, a.Feedback)
			return map[string]any{"section_type": a.SectionType, "content": revised}, nil
		},
	}
}

type mergeSectionsArgs struct {
	Sections map[string]string `json:"sections"`
}

var mergeSectionsSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"sections": map[string]any{"type": "object", "description": "map of section_type -> content"},
	},
	"required": []any{"sections"},
}

// MergeSectionsDescriptor builds the merge_sections tool: the node's
// primary artifact producer, assembling the manuscript in
// SectionOrder regardless of the map's iteration order.
func MergeSectionsDescriptor() tools.Descriptor {
	return tools.Descriptor{
		Name:        "merge_sections",
		Description: "Merge written sections into the final manuscript, in abstract/introduction/methods/results/discussion order.",
		Schema:      mergeSectionsSchema,
		Call: func(_ context.Context, args json.RawMessage) (any, error) {
			var a mergeSectionsArgs
			if err := json.Unmarshal(args, &a); err != nil {
				return nil, fmt.Errorf("merge_sections: %w", err)
			}
			if len(a.Sections) == 0 {
				return nil, fmt.Errorf("merge_sections: sections must not be empty")
			}
			var b strings.Builder
			wordCount := 0
			for _, sectionType := range SectionOrder {
				content, ok := a.Sections[sectionType]
				if !ok {
					continue
				}
				fmt.Fprintf(&b, "## %s\n\n%s\n\n", capitalize(sectionType), content)
				wordCount += len(strings.Fields(content))
			}
			return map[string]any{
				"manuscript": b.String(),
				"word_count": wordCount,
			}, nil
		},
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
