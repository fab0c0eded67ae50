package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/modex/frontend/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Fallback(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := New(config.AdvancedConfig{LogLevel: "warn"}, &buf)
	require.NoError(t, err)
	defer closer.Close()

	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())
	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "header.log")
	logger, closer, err := New(config.AdvancedConfig{LogFile: path}, nil)
	require.NoError(t, err)

	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	logger.WithField("file", "a.txt").Info("file uploaded")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "file uploaded")
	assert.Contains(t, string(data), "file=a.txt")
}

func TestNew_InvalidLevel(t *testing.T) {
	_, _, err := New(config.AdvancedConfig{LogLevel: "loud"}, nil)
	assert.Error(t, err)
}
