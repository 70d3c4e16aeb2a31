package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"RUNTIME_DIR", "CHROMA_PERSIST_DIR", "USER_ID", "LOG_LEVEL",
		"MAX_GRAPH_ITERS", "EVAL_THRESHOLD", "MAX_TOOL_RETRIES",
		"SIMULATE_TOOL_TIMEOUT", "SIMULATE_BAD_RETRIEVAL", "FAILURE_SEED", "MYSQL_DSN",
	} {
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoad_DefaultsWhenNoOverrides(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoad_EnvOverridesWinOverDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAX_GRAPH_ITERS", "40")
	t.Setenv("EVAL_THRESHOLD", "4.0")
	t.Setenv("SIMULATE_TOOL_TIMEOUT", "true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.MaxGraphIters)
	assert.Equal(t, 4.0, cfg.EvalThreshold)
	assert.True(t, cfg.SimulateToolTimeout)
}

func TestLoad_MySQLDSNOverrideSelectsMySQLBackend(t *testing.T) {
	clearEnv(t)
	t.Setenv("MYSQL_DSN", "user:pass@tcp(localhost:3306)/tripchat?parseTime=true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "user:pass@tcp(localhost:3306)/tripchat?parseTime=true", cfg.MySQLDSN)
}

func TestLoad_MissingYAMLFileIsNotAnError(t *testing.T) {
	clearEnv(t)
	_, err := Load("/nonexistent/tripchat.yaml")
	require.NoError(t, err)
}

func TestRecursionLimit_HasMinimumOf200(t *testing.T) {
	cfg := Defaults()
	cfg.MaxGraphIters = 5
	assert.Equal(t, 200, cfg.RecursionLimit())

	cfg.MaxGraphIters = 30
	assert.Equal(t, 300, cfg.RecursionLimit())
}
