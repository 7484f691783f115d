package logger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestIsolatedLoggerRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.log")
	l := NewIsolatedLogger(path, zapcore.DebugLevel)

	l.Info("Feed", "connected", map[string]interface{}{"thread_key": "url:https://example.com/"})
	l.Warn("Feed", "closed", nil)
	l.Error("Identity", "revocation failed", map[string]interface{}{"error": "timeout"})
	require.NoError(t, l.Sync())

	all, err := l.GetLogs("", "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "revocation failed", all[0].Message)
	assert.Equal(t, "connected", all[2].Message)

	feedOnly, err := l.GetLogs("", "Feed", 1)
	require.NoError(t, err)
	require.Len(t, feedOnly, 1)
	assert.Equal(t, "closed", feedOnly[0].Message)

	errorsOnly, err := l.GetLogs("ERROR", "", 10)
	require.NoError(t, err)
	require.Len(t, errorsOnly, 1)
	assert.Equal(t, "Identity", errorsOnly[0].Module)
}

func TestReadLogsMissingFile(t *testing.T) {
	entries, err := ReadLogs(filepath.Join(t.TempDir(), "nope.log"), "", "", 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
