package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/taskdesk/internal/config"
)

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "taskdesk.log")
	logger, err := New(config.LoggerConfig{Level: "info", Mode: "production", Encoding: "json", OutputPath: path})
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("task added")
	_ = logger.Sync()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"msg":"task added"`)
	assert.NotContains(t, string(raw), "hidden")
}

func TestNewConsoleDevelopment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dev.log")
	logger, err := New(config.LoggerConfig{Level: "debug", Mode: "development", Encoding: "console", ColorEnabled: true, OutputPath: path})
	require.NoError(t, err)

	logger.Debug("visible")
	_ = logger.Sync()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "visible")
}

func TestNewRejectsBadConfig(t *testing.T) {
	cases := []config.LoggerConfig{
		{Level: "loud"},
		{Level: "info", Mode: "staging"},
		{Level: "info", Encoding: "xml"},
	}
	for _, cfg := range cases {
		_, err := New(cfg)
		assert.Error(t, err, "%+v", cfg)
	}
}
