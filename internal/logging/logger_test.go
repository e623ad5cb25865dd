package logging_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/abdidvp/harmonizer/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_QuietByDefault(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn, err := logging.New(logging.Options{Out: &buf})
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("hidden too")
	logger.Warn("shown")
	require.NoError(t, closeFn())

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_VerboseShowsDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn, err := logging.New(logging.Options{Out: &buf, Verbose: true})
	require.NoError(t, err)

	logger.Debug("phase done", zap.String("phase", "venv"))
	require.NoError(t, closeFn())

	assert.Contains(t, buf.String(), "phase done")
	assert.Contains(t, buf.String(), "venv")
}

func TestNew_WritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "harmonizer.log")
	logger, closeFn, err := logging.New(logging.Options{Out: &bytes.Buffer{}, File: path})
	require.NoError(t, err)

	logger.Debug("to file")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"to file"`)
}
