package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebugLogRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, false)
	t.Cleanup(CloseLogger)

	DebugLog("hidden %d", 1)
	LogInfo("shown %d", 2)

	assert.NotContains(t, buf.String(), "hidden 1")
	assert.Contains(t, buf.String(), "shown 2")

	buf.Reset()
	SetOutput(&buf, true)
	DebugLog("visible %s", "now")
	assert.Contains(t, buf.String(), "visible now")
}

func TestLogImageProcessed(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, true)
	t.Cleanup(CloseLogger)

	LogImageProcessed("a.jpg", true, "")
	LogImageProcessed("b.jpg", false, "bad header")

	out := buf.String()
	assert.Contains(t, out, "path=a.jpg")
	assert.Contains(t, out, "skipped")
	assert.Contains(t, out, "bad header")
}

func TestSetupLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "curator.log")
	require.NoError(t, SetupLogger(path, false))

	LogWarning("disk %s", "full")
	CloseLogger()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "disk full")
	assert.Contains(t, string(data), "log closed")
}
