package logflags

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func parse(t *testing.T, args ...string) *Flags {
	t.Helper()
	var f Flags
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f.SetFlags(fs)
	require.NoError(t, fs.Parse(args))
	return &f
}

func TestDefaults(t *testing.T) {
	f := parse(t)
	assert.Equal(t, zapcore.InfoLevel, f.Level)
	assert.Equal(t, 100, f.MaxSize)
	assert.False(t, f.Quiet)
}

func TestBadLevel(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(&nopWriter{})
	var f Flags
	f.SetFlags(fs)
	assert.Error(t, fs.Parse([]string{"-l", "loud"}))
}

func TestQuiet(t *testing.T) {
	logger, err := parse(t, "-q").Open()
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.ErrorLevel))
}

func TestLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flowplan.log")
	logger, err := parse(t, "-l", "warn", "-log.path", path).Open()
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	logger.Info("dropped")
	logger.Warn("kept", zap.String("key", "operator.bogus"))
	require.NoError(t, logger.Sync())
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"kept"`)
	assert.Contains(t, string(b), `"key":"operator.bogus"`)
	assert.NotContains(t, string(b), "dropped")
}

func TestNegativeRotation(t *testing.T) {
	_, err := parse(t, "-log.maxsize", "-1").Open()
	assert.Error(t, err)
}

type nopWriter struct{}

func (*nopWriter) Write(b []byte) (int, error) { return len(b), nil }
