package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_WritesFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "inbox.log")

	lg, err := NewLogger(Config{Level: "info", File: file, Production: true})
	require.NoError(t, err)

	lg.Info("captured")
	_ = lg.Sync()

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "captured")
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	_, err := NewLogger(Config{Level: "loud"})
	assert.Error(t, err)
}
