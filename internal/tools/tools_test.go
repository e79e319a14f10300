package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func echoDescriptor(name Ident) Descriptor {
	return Descriptor{
		Name:        name,
		Description: "echoes its input",
		Schema:      map[string]any{"type": "object"},
		Call: func(ctx context.Context, args json.RawMessage) (any, error) {
			return string(args), nil
		},
	}
}

func TestRegistryPreservesInsertionOrder(t *testing.T) {
	t.Parallel()

	r, err := NewRegistry(echoDescriptor("b"), echoDescriptor("a"), echoDescriptor("c"))
	require.NoError(t, err)

	names := make([]Ident, 0, 3)
	for _, d := range r.List() {
		names = append(names, d.Name)
	}
	require.Equal(t, []Ident{"b", "a", "c"}, names)
}

func TestRegistryRejectsDuplicateNames(t *testing.T) {
	t.Parallel()

	_, err := NewRegistry(echoDescriptor("dup"), echoDescriptor("dup"))
	require.Error(t, err)
}

func TestRegistryLookupMiss(t *testing.T) {
	t.Parallel()

	r, err := NewRegistry(echoDescriptor("only"))
	require.NoError(t, err)

	_, ok := r.Lookup("missing")
	require.False(t, ok)
}
