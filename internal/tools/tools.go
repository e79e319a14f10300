// Package tools implements the Tool Registry: a construction-time
// collection of tool descriptors consulted by the Agent Node to build
// the LLM's tool menu and to dispatch a chosen tool.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
)

// Ident is the strong type for a tool name, scoped to one agent.
type Ident string

// Callable invokes a tool's business logic with already-validated
// arguments and returns a JSON-compatible result. Callables must be
// deterministic with respect to their arguments; the registry never
// caches results.
type Callable func(ctx context.Context, args json.RawMessage) (any, error)

// Descriptor pairs a tool's name with its description, its JSON Schema
// argument shape, and the callable that executes it.
type Descriptor struct {
	Name        Ident
	Description string
	Schema      map[string]any
	Call        Callable
}

// Registry is the ordered, per-agent tool list. Insertion order is
// irrelevant to correctness but is kept stable within a task so the LLM
// sees a consistent tool menu across ReAct rounds.
type Registry struct {
	order []Ident
	byName map[Ident]Descriptor
}

// NewRegistry builds a Registry from an ordered descriptor list. Duplicate
// names are a construction-time programming error.
func NewRegistry(descriptors ...Descriptor) (*Registry, error) {
	r := &Registry{byName: make(map[Ident]Descriptor, len(descriptors))}
	for _, d := range descriptors {
		if _, dup := r.byName[d.Name]; dup {
			return nil, fmt.Errorf("tools: duplicate tool name %q", d.Name)
		}
		r.byName[d.Name] = d
		r.order = append(r.order, d.Name)
	}
	return r, nil
}

// List returns the descriptors in stable registration order.
func (r *Registry) List() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// Lookup resolves a tool by name. The second return value is false when
// the name is not registered, which the Agent Node treats as a
// TOOL_ERROR.
func (r *Registry) Lookup(name Ident) (Descriptor, bool) {
	d, ok := r.byName[name]
	return d, ok
}
