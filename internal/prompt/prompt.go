// Package prompt loads versioned YAML prompt templates from a
// hierarchical directory structure, with variable substitution and
// caching, grounded on the medical paper agent's prompt_loader.py
// (hierarchical get_prompt(path, name, **variables)) and cache_service.py
// (TTL/LRU cache), generalized to an on-disk fs.FS plus an optional
// shared second-tier cache for multi-process deployments.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"gopkg.in/yaml.v3"
)

// ErrPromptNotFound is returned when a named prompt is absent from its
// file.
var ErrPromptNotFound = errors.New("prompt: not found")

// ErrMissingVariable is returned when a template's declared required
// variables are not all supplied.
var ErrMissingVariable = errors.New("prompt: missing required variable")

// templateConfig is one entry under a file's top-level "prompts" map.
type templateConfig struct {
	Template  string   `yaml:"template"`
	Variables []string `yaml:"variables"`
}

type promptFile struct {
	Prompts map[string]templateConfig `yaml:"prompts"`
}

// Cache is the second-tier, byte-oriented cache abstraction Loader uses
// beyond its in-process LRU, so a shared backend (Redis) can serve many
// orchestrator processes reading the same prompt library.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
}

// DefaultLRUSize mirrors the Python loader's @lru_cache(maxsize=50).
const DefaultLRUSize = 50

// Loader loads and caches prompt template files from an fs.FS rooted at
// the prompts directory.
type Loader struct {
	root  fs.FS
	local *lru.Cache[string, promptFile]
	tier2 Cache // optional; nil disables the second tier

	mu sync.Mutex
}

// New constructs a Loader reading templates from root. tier2 may be nil.
func New(root fs.FS, tier2 Cache) (*Loader, error) {
	local, err := lru.New[string, promptFile](DefaultLRUSize)
	if err != nil {
		return nil, err
	}
	return &Loader{root: root, local: local, tier2: tier2}, nil
}

// Get loads the named prompt at relativePath and substitutes variables,
// mirroring get_prompt's Python %(var)s-style Content.format(**variables)
// semantics via {var} placeholders.
func (l *Loader) Get(ctx context.Context, relativePath, name string, variables map[string]string) (string, error) {
	pf, err := l.load(ctx, relativePath)
	if err != nil {
		return "", err
	}
	cfg, ok := pf.Prompts[name]
	if !ok {
		available := make([]string, 0, len(pf.Prompts))
		for k := range pf.Prompts {
			available = append(available, k)
		}
		return "", fmt.Errorf("%w: %q in %s (available: %v)", ErrPromptNotFound, name, relativePath, available)
	}

	for _, required := range cfg.Variables {
		if _, ok := variables[required]; !ok {
			return "", fmt.Errorf("%w: %q for prompt %q", ErrMissingVariable, required, name)
		}
	}
	return substitute(cfg.Template, variables), nil
}

// List returns the prompt names declared in relativePath's file.
func (l *Loader) List(ctx context.Context, relativePath string) ([]string, error) {
	pf, err := l.load(ctx, relativePath)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(pf.Prompts))
	for name := range pf.Prompts {
		names = append(names, name)
	}
	return names, nil
}

// Reload clears both cache tiers for relativePath, forcing the next Get
// to re-read from disk (spec's hot-reload requirement, mirroring
// reload_prompts()).
func (l *Loader) Reload(ctx context.Context, relativePath string) {
	l.mu.Lock()
	l.local.Remove(relativePath)
	l.mu.Unlock()
	if l.tier2 != nil {
		l.tier2.Set(ctx, relativePath, nil)
	}
}

func (l *Loader) load(ctx context.Context, relativePath string) (promptFile, error) {
	l.mu.Lock()
	if pf, ok := l.local.Get(relativePath); ok {
		l.mu.Unlock()
		return pf, nil
	}
	l.mu.Unlock()

	if l.tier2 != nil {
		if raw, ok := l.tier2.Get(ctx, relativePath); ok && raw != nil {
			pf, err := parsePromptFile(raw)
			if err == nil {
				l.mu.Lock()
				l.local.Add(relativePath, pf)
				l.mu.Unlock()
				return pf, nil
			}
		}
	}

	raw, err := fs.ReadFile(l.root, relativePath)
	if err != nil {
		return promptFile{}, fmt.Errorf("prompt: read %s: %w", relativePath, err)
	}
	pf, err := parsePromptFile(raw)
	if err != nil {
		return promptFile{}, fmt.Errorf("prompt: parse %s: %w", relativePath, err)
	}

	l.mu.Lock()
	l.local.Add(relativePath, pf)
	l.mu.Unlock()
	if l.tier2 != nil {
		l.tier2.Set(ctx, relativePath, raw)
	}
	return pf, nil
}

func parsePromptFile(raw []byte) (promptFile, error) {
	var pf promptFile
	if err := yaml.Unmarshal(raw, &pf); err != nil {
		return promptFile{}, err
	}
	return pf, nil
}

var placeholderPattern = regexp.MustCompile(`\{(\w+)\}`)

// substitute replaces {var} placeholders, leaving unrecognised
// placeholders untouched (required variables are validated by the
// caller before this runs).
func substitute(template string, variables map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		name := strings.TrimSuffix(strings.TrimPrefix(match, "{"), "}")
		if v, ok := variables[name]; ok {
			return v
		}
		return match
	})
}
