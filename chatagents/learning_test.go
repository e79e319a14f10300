package chatagents

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveAndListLearning(t *testing.T) {
	store := NewLearningStore()
	save := SaveLearningDescriptor(store)
	list := ListLearningDescriptor(store)

	_, err := save.Call(context.Background(), json.RawMessage(`{"type":"word","content":"ubiquitous"}`))
	require.NoError(t, err)
	_, err = save.Call(context.Background(), json.RawMessage(`{"type":"topic","content":"context windows"}`))
	require.NoError(t, err)

	all, err := list.Call(context.Background(), json.RawMessage(`{}`))
	require.NoError(t, err)
	require.Len(t, all.([]LearningRecord), 2)

	words, err := list.Call(context.Background(), json.RawMessage(`{"type":"word"}`))
	require.NoError(t, err)
	require.Len(t, words.([]LearningRecord), 1)
}

func TestSaveLearningRequiresContent(t *testing.T) {
	save := SaveLearningDescriptor(NewLearningStore())
	_, err := save.Call(context.Background(), json.RawMessage(`{"type":"word","content":""}`))
	require.Error(t, err)
}

func TestLearnArticleReturnsPlaceholder(t *testing.T) {
	tool := LearnArticleDescriptor()
	out, err := tool.Call(context.Background(), json.RawMessage(`{"url":"https://example.com/article"}`))
	require.NoError(t, err)
	result := out.(LearnArticleResult)
	require.Equal(t, "https://example.com/article", result.URL)
	require.Contains(t, result.MindmapPlantUML, "@startmindmap")
}

func TestLearnArticleRequiresURL(t *testing.T) {
	tool := LearnArticleDescriptor()
	_, err := tool.Call(context.Background(), json.RawMessage(`{"url":""}`))
	require.Error(t, err)
}
