package core

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	l := getLogger()
	l.SetOutput(&buf)
	l.structured.SetOutput(&buf)
	require.NoError(t, SetLogLevel("debug"))
	t.Cleanup(func() {
		l.SetOutput(os.Stderr)
		l.structured.SetOutput(os.Stderr)
		_ = SetLogLevel("info")
	})
	return &buf
}

func TestLogCallerPointsAtCallSite(t *testing.T) {
	buf := captureLogs(t)

	LogInfo("printf %d", 1)
	assert.Contains(t, buf.String(), "logging_test.go")
	buf.Reset()

	Logger().Info("structured", "n", 2)
	out := buf.String()
	assert.Contains(t, out, "logging_test.go")
	assert.Contains(t, out, "n=2")
}

func TestSetLogLevelAppliesToStructuredLogger(t *testing.T) {
	buf := captureLogs(t)

	require.NoError(t, SetLogLevel("error"))
	Logger().Info("hidden")
	LogWarn("hidden too")
	assert.Empty(t, buf.String())

	assert.Error(t, SetLogLevel("loud"))
}
