package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// withTempWD runs fn with the process working directory set to dir,
// restoring the original directory afterward. Not parallel-safe: Load
// reads the process cwd and environment directly.
func withTempWD(t *testing.T, dir string, fn func()) {
	t.Helper()
	original, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(original) })
	fn()
}

func TestLoadAppliesDefaultsWhenUnset(t *testing.T) {
	t.Setenv("LLM_API_KEY", "test-key")
	withTempWD(t, t.TempDir(), func() {
		s, err := Load()
		require.NoError(t, err)
		require.Equal(t, "openai", s.LLMProvider)
		require.Equal(t, 8, s.NodeStepBudget)
		require.Equal(t, 40, s.ExecutorStepBudget)
		require.Equal(t, 3, s.MaxRevisions)
		require.Equal(t, 10, s.MinReferences)
		require.Equal(t, "sqlite:///./agentcore.db", s.DatabaseURL)
	})
}

func TestLoadFailsWithoutAPIKey(t *testing.T) {
	t.Setenv("LLM_API_KEY", "")
	withTempWD(t, t.TempDir(), func() {
		_, err := Load()
		require.Error(t, err)
	})
}

func TestLoadOverridesFromEnvironment(t *testing.T) {
	t.Setenv("LLM_API_KEY", "test-key")
	t.Setenv("LLM_PROVIDER", "anthropic")
	t.Setenv("MAX_REVISIONS", "5")
	t.Setenv("TRACE_DETAILED", "true")
	t.Setenv("NODE_CALL_TIMEOUT_SECONDS", "45")

	withTempWD(t, t.TempDir(), func() {
		s, err := Load()
		require.NoError(t, err)
		require.Equal(t, "anthropic", s.LLMProvider)
		require.Equal(t, 5, s.MaxRevisions)
		require.True(t, s.TraceDetailed)
		require.Equal(t, 45*time.Second, s.NodeCallTimeout)
	})
}

func TestLoadRejectsNonIntegerBudget(t *testing.T) {
	t.Setenv("LLM_API_KEY", "test-key")
	t.Setenv("MAX_REVISIONS", "not-a-number")
	withTempWD(t, t.TempDir(), func() {
		_, err := Load()
		require.Error(t, err)
	})
}

func TestLoadReadsDotEnvFileFromWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("LLM_API_KEY=from-dotenv\nLLM_MODEL=claude-3-5-sonnet\n"), 0o600))

	withTempWD(t, dir, func() {
		s, err := Load()
		require.NoError(t, err)
		require.Equal(t, "from-dotenv", s.LLMAPIKey)
		require.Equal(t, "claude-3-5-sonnet", s.LLMModel)
	})
}

func TestLoadReadsDotEnvFileFromParentDirectory(t *testing.T) {
	parent := t.TempDir()
	envFile := filepath.Join(parent, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("LLM_API_KEY=from-parent-dotenv\n"), 0o600))

	child := filepath.Join(parent, "child")
	require.NoError(t, os.Mkdir(child, 0o755))

	withTempWD(t, child, func() {
		s, err := Load()
		require.NoError(t, err)
		require.Equal(t, "from-parent-dotenv", s.LLMAPIKey)
	})
}
