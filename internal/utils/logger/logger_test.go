package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestLogger(t *testing.T, development bool) (*Logger, *bytes.Buffer, string) {
	t.Helper()
	var console bytes.Buffer
	logFile := filepath.Join(t.TempDir(), "test.log")

	cfg := DefaultConfig()
	cfg.LogFile = logFile
	cfg.Console = &console
	cfg.Development = development

	log, err := New(cfg)
	require.NoError(t, err)
	return log, &console, logFile
}

func TestNewWritesConsoleAndFile(t *testing.T) {
	log, console, logFile := newTestLogger(t, false)

	log.WithComponent("resolver").Info("resolved", zap.Int("symbols", 3))
	require.NoError(t, log.Sync())

	assert.Contains(t, console.String(), "resolved")
	assert.Contains(t, console.String(), "resolver")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"component":"resolver"`)
	assert.Contains(t, string(data), `"symbols":3`)
}

func TestDebugLevelFollowsDevelopment(t *testing.T) {
	prod, prodConsole, _ := newTestLogger(t, false)
	prod.Debug("hidden")
	assert.NotContains(t, prodConsole.String(), "hidden")

	dev, devConsole, _ := newTestLogger(t, true)
	dev.Debug("visible")
	assert.Contains(t, devConsole.String(), "visible")
}

func TestWithAccountAndOperation(t *testing.T) {
	log, console, _ := newTestLogger(t, true)

	log.WithAccount(solana.SystemProgramID).Info("fetched")
	log.WithOperation("build_report").Info("started")

	out := console.String()
	assert.Contains(t, out, solana.SystemProgramID.String())
	assert.Contains(t, out, "correlation_id")
	assert.Contains(t, out, "build_report")
}

func TestLogError(t *testing.T) {
	log, console, _ := newTestLogger(t, false)

	log.LogError("fetch failed", errors.New("boom"), zap.String("method", "getAccountInfo"))

	out := console.String()
	assert.Contains(t, out, "fetch failed")
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, "getAccountInfo")
}

func TestTrackPerformance(t *testing.T) {
	log, console, _ := newTestLogger(t, true)

	end := log.TrackPerformance("mapping_walk")
	end()

	assert.Contains(t, console.String(), "Operation completed")
	assert.Contains(t, console.String(), "mapping_walk")
}

func TestNewWithoutLogFile(t *testing.T) {
	var console bytes.Buffer
	log, err := New(&Config{Console: &console})
	require.NoError(t, err)

	log.Info("console only")
	assert.Contains(t, console.String(), "console only")
}
