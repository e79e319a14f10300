// Package chatagents implements the chat ("secretary") workflow's three
// sub-agents and the concrete tools they expose: learning, productivity,
// and utility. Tool bodies are deterministic stand-ins for the real
// integrations the original secretary service calls — no HTTP fetch,
// translation, or weather API is reached here, matching the stated
// non-goal of externally-integrated value.
package chatagents

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/walterfan/agentcore/internal/tools"
)

// LearningRecord is one saved learning entry, grounded on
// original_source's learning_record.py model (type/content/summary/tags).
type LearningRecord struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	Summary   string    `json:"summary,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// LearningStore persists learning records for one user/session scope.
// The in-memory implementation below stands in for the original's
// SQLAlchemy-backed save_learning_tool; DB migrations for unrelated
// domain tables are out of scope, so no sqlite-backed store is added
// here.
type LearningStore struct {
	mu      sync.Mutex
	records []LearningRecord
}

// NewLearningStore builds an empty, process-local learning store.
func NewLearningStore() *LearningStore {
	return &LearningStore{}
}

func (s *LearningStore) save(rec LearningRecord) LearningRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.ID = uuid.NewString()
	rec.CreatedAt = time.Now().UTC()
	s.records = append(s.records, rec)
	return rec
}

func (s *LearningStore) list(recordType string) []LearningRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]LearningRecord, 0, len(s.records))
	for _, r := range s.records {
		if recordType == "" || r.Type == recordType {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

type saveLearningArgs struct {
	Type    string   `json:"type"`
	Content string   `json:"content"`
	Summary string   `json:"summary"`
	Tags    []string `json:"tags"`
}

// saveLearningSchema matches SaveLearningInput's field set (word,
// sentence, topic, article, question, idea are the accepted types).
var saveLearningSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"type":    map[string]any{"type": "string", "enum": []any{"word", "sentence", "topic", "article", "question", "idea"}},
		"content": map[string]any{"type": "string"},
		"summary": map[string]any{"type": "string"},
		"tags":    map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
	},
	"required": []any{"type", "content"},
}

var listLearningSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"type": map[string]any{"type": "string", "description": "optional filter: word, sentence, topic, article, question, idea"},
	},
}

// SaveLearningDescriptor builds the save_learning tool bound to store.
func SaveLearningDescriptor(store *LearningStore) tools.Descriptor {
	return tools.Descriptor{
		Name: "save_learning",
		Description: "Save a learning record when the user explicitly asks to save/remember learning " +
			"content. Input types: word, sentence, topic, article, question, idea. Only use when the " +
			"user explicitly requests to save.",
		Schema: saveLearningSchema,
		Call: func(_ context.Context, args json.RawMessage) (any, error) {
			var a saveLearningArgs
			if err := json.Unmarshal(args, &a); err != nil {
				return nil, fmt.Errorf("save_learning: %w", err)
			}
			if a.Content == "" {
				return nil, fmt.Errorf("save_learning: content is required")
			}
			rec := store.save(LearningRecord{Type: a.Type, Content: a.Content, Summary: a.Summary, Tags: a.Tags})
			return rec, nil
		},
	}
}

type listLearningArgs struct {
	Type string `json:"type"`
}

// ListLearningDescriptor builds the list_learning tool bound to store.
func ListLearningDescriptor(store *LearningStore) tools.Descriptor {
	return tools.Descriptor{
		Name:        "list_learning",
		Description: "List the user's learning records. Can filter by type (word, sentence, topic, etc.).",
		Schema:      listLearningSchema,
		Call: func(_ context.Context, args json.RawMessage) (any, error) {
			var a listLearningArgs
			if len(args) > 0 {
				if err := json.Unmarshal(args, &a); err != nil {
					return nil, fmt.Errorf("list_learning: %w", err)
				}
			}
			return store.list(a.Type), nil
		},
	}
}

type learnArticleArgs struct {
	URL string `json:"url"`
}

var learnArticleSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"url": map[string]any{"type": "string", "description": "URL of the article or PDF to learn from"},
	},
	"required": []any{"url"},
}

// LearnArticleResult is the deterministic stand-in for the original's
// fetch -> extract -> translate -> summarize -> mindmap -> render
// pipeline: every stage is named so the shape is faithful, but no
// network fetch, translation, or rendering actually runs; external
// article-ingestion integrations are out of scope.
type LearnArticleResult struct {
	URL           string   `json:"url"`
	Summary       string   `json:"summary"`
	KeyPoints     []string `json:"key_points"`
	MindmapPlantUML string `json:"mindmap_plantuml"`
}

// LearnArticleDescriptor builds the learn_article tool. It never
// performs the network fetch/translate/render pipeline the original
// implements; it returns a structurally faithful placeholder result so
// the ReAct loop and tool registry are exercised end to end.
func LearnArticleDescriptor() tools.Descriptor {
	return tools.Descriptor{
		Name: "learn_article",
		Description: "Learn from a web article or PDF. Provide a URL and the tool will: " +
			"1) fetch the page, 2) extract main content, 3) translate to bilingual text, " +
			"4) summarize with key points, 5) generate a PlantUML mindmap. " +
			"Works best with direct article HTML URLs and direct .pdf links. " +
			"Limitations: JavaScript-rendered and login-required pages may fail; suggest the " +
			"user paste the article text instead.",
		Schema: learnArticleSchema,
		Call: func(_ context.Context, args json.RawMessage) (any, error) {
			var a learnArticleArgs
			if err := json.Unmarshal(args, &a); err != nil {
				return nil, fmt.Errorf("learn_article: %w", err)
			}
			if a.URL == "" {
				return nil, fmt.Errorf("learn_article: url is required")
			}
			return LearnArticleResult{
				URL:     a.URL,
				Summary: fmt.Sprintf("Summary of %s is not available: article fetching is out of scope for this deployment.", a.URL),
				KeyPoints: []string{
					"article ingestion is a deterministic stand-in in this build",
				},
				MindmapPlantUML: "@startmindmap\n* " + a.URL + "\n@endmindmap",
			}, nil
		},
	}
}
