package prompt

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

const writerYAML = `
prompts:
  write_introduction:
    template: "Write an introduction for {paper_type} about {research_question}."
    variables:
      - paper_type
      - research_question
  write_conclusion:
    template: "Summarize the findings."
`

func fixtureFS() fstest.MapFS {
	return fstest.MapFS{
		"agents/writer/introduction.v1.yaml": {Data: []byte(writerYAML)},
	}
}

func TestGetSubstitutesRequiredVariables(t *testing.T) {
	t.Parallel()

	l, err := New(fixtureFS(), nil)
	require.NoError(t, err)

	out, err := l.Get(context.Background(), "agents/writer/introduction.v1.yaml", "write_introduction", map[string]string{
		"paper_type":        "rct",
		"research_question": "Does Drug X improve outcomes?",
	})
	require.NoError(t, err)
	require.Equal(t, "Write an introduction for rct about Does Drug X improve outcomes?.", out)
}

func TestGetReturnsErrMissingVariable(t *testing.T) {
	t.Parallel()

	l, err := New(fixtureFS(), nil)
	require.NoError(t, err)

	_, err = l.Get(context.Background(), "agents/writer/introduction.v1.yaml", "write_introduction", map[string]string{
		"paper_type": "rct",
	})
	require.ErrorIs(t, err, ErrMissingVariable)
}

func TestGetReturnsErrPromptNotFound(t *testing.T) {
	t.Parallel()

	l, err := New(fixtureFS(), nil)
	require.NoError(t, err)

	_, err = l.Get(context.Background(), "agents/writer/introduction.v1.yaml", "nonexistent", nil)
	require.ErrorIs(t, err, ErrPromptNotFound)
}

func TestGetWithNoRequiredVariablesNeedsNoMap(t *testing.T) {
	t.Parallel()

	l, err := New(fixtureFS(), nil)
	require.NoError(t, err)

	out, err := l.Get(context.Background(), "agents/writer/introduction.v1.yaml", "write_conclusion", nil)
	require.NoError(t, err)
	require.Equal(t, "Summarize the findings.", out)
}

func TestListReturnsAllPromptNames(t *testing.T) {
	t.Parallel()

	l, err := New(fixtureFS(), nil)
	require.NoError(t, err)

	names, err := l.List(context.Background(), "agents/writer/introduction.v1.yaml")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"write_introduction", "write_conclusion"}, names)
}

// fakeTier2 is an in-memory stand-in for a shared Cache, used to verify
// the Loader consults and populates the second tier.
type fakeTier2 struct {
	data map[string][]byte
	gets int
	sets int
}

func newFakeTier2() *fakeTier2 { return &fakeTier2{data: make(map[string][]byte)} }

func (f *fakeTier2) Get(_ context.Context, key string) ([]byte, bool) {
	f.gets++
	v, ok := f.data[key]
	return v, ok
}

func (f *fakeTier2) Set(_ context.Context, key string, value []byte) {
	f.sets++
	if value == nil {
		delete(f.data, key)
		return
	}
	f.data[key] = value
}

func TestLoadPopulatesSecondTierCacheOnMiss(t *testing.T) {
	t.Parallel()

	tier2 := newFakeTier2()
	l, err := New(fixtureFS(), tier2)
	require.NoError(t, err)

	_, err = l.Get(context.Background(), "agents/writer/introduction.v1.yaml", "write_conclusion", nil)
	require.NoError(t, err)
	require.Equal(t, 1, tier2.sets)

	l.Reload(context.Background(), "agents/writer/introduction.v1.yaml")
	_, err = l.Get(context.Background(), "agents/writer/introduction.v1.yaml", "write_conclusion", nil)
	require.NoError(t, err)
	require.GreaterOrEqual(t, tier2.gets, 1)
}
