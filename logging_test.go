package rtaccel

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLogger_DebugSwitch(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(LogConfig{Prefix: "test", Console: true, Output: &buf})
	assert.False(t, l.DebugEnabled())

	l.Debugf("hidden %d", 1)
	l.Infof("shown %d", 2)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown 2")
	assert.Contains(t, buf.String(), "INFO")
	assert.Contains(t, buf.String(), "test")

	l.SetDebug(true)
	assert.True(t, l.DebugEnabled())
	l.Debugf("visible %d", 3)
	assert.Contains(t, buf.String(), "visible 3")

	l.Warnf("careful")
	l.Errorf("broken")
	assert.Contains(t, buf.String(), "WARN")
	assert.Contains(t, buf.String(), "ERROR")
}

func TestDefaultLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "build.log")
	l := NewLogger(LogConfig{Debug: true, File: DefaultFileConfig(path)})
	l.Debugf("written to %s", "file")
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
	assert.Contains(t, string(data), "DEBUG")
}

func TestParseLevel(t *testing.T) {
	assert.True(t, ParseLevel("debug"))
	assert.True(t, ParseLevel("DEBUG"))
	assert.False(t, ParseLevel("info"))
	assert.False(t, ParseLevel("bogus"))
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.SetDebug(true)
	assert.False(t, l.DebugEnabled())
	l.Errorf("dropped")
}
