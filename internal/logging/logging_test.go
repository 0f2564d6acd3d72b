package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("writes to file at configured level", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")

		logger, err := New("warn", "production", path)
		require.NoError(t, err)

		logger.Info("hidden")
		logger.Warn("visible")
		_ = logger.Sync()

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "visible")
		assert.NotContains(t, string(data), "hidden")
	})

	t.Run("rejects unknown level", func(t *testing.T) {
		_, err := New("loud", "development", "")
		assert.Error(t, err)
	})
}

func TestNewForTUI(t *testing.T) {
	logger, err := NewForTUI("debug", "development", "")
	require.NoError(t, err)
	assert.NotNil(t, logger)
	assert.False(t, logger.Core().Enabled(0))
}
