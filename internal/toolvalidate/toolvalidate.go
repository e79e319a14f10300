// Package toolvalidate validates tool call arguments against a tool's
// declared JSON Schema before the Agent Node invokes the tool's
// callable. A failing validation becomes a VALIDATION_ERROR tool
// message, never a panic or a raised error that escapes the ReAct
// loop.
package toolvalidate

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Validator compiles and validates JSON Schemas for tool arguments.
type Validator struct {
	compiler *jsonschema.Compiler
}

// New constructs a Validator with a fresh schema compiler.
func New() *Validator {
	return &Validator{compiler: jsonschema.NewCompiler()}
}

// Compiled holds a schema compiled once at tool-registration time so
// repeated validations in a ReAct loop don't re-parse the schema.
type Compiled struct {
	schema *jsonschema.Schema
}

// Compile parses a tool's argument schema (a JSON-Schema-shaped map) into
// a reusable Compiled validator.
func (v *Validator) Compile(name string, schema map[string]any) (*Compiled, error) {
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("toolvalidate: marshal schema for %q: %w", name, err)
	}
	res, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("toolvalidate: unmarshal schema for %q: %w", name, err)
	}
	resourceName := "mem://tools/" + name
	if err := v.compiler.AddResource(resourceName, res); err != nil {
		return nil, fmt.Errorf("toolvalidate: add schema resource for %q: %w", name, err)
	}
	compiled, err := v.compiler.Compile(resourceName)
	if err != nil {
		return nil, fmt.Errorf("toolvalidate: compile schema for %q: %w", name, err)
	}
	return &Compiled{schema: compiled}, nil
}

// Validate checks args (canonical JSON) against the compiled schema. The
// returned error, when non-nil, is a human-readable validation message
// suitable for feeding back to the LLM as a tool message.
func (c *Compiled) Validate(args json.RawMessage) error {
	if c == nil || c.schema == nil {
		return nil
	}
	var v any
	if len(args) == 0 {
		v = map[string]any{}
	} else if err := json.Unmarshal(args, &v); err != nil {
		return fmt.Errorf("arguments are not valid JSON: %w", err)
	}
	if err := c.schema.Validate(v); err != nil {
		return err
	}
	return nil
}
