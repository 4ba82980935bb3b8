package jsonlog

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type logEntry struct {
	Level      string            `json:"level"`
	Time       string            `json:"time"`
	Message    string            `json:"message"`
	Properties map[string]string `json:"properties"`
	Trace      string            `json:"trace"`
}

func TestLoggerMinLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelError)

	l.PrintInfo("should be dropped", nil)
	assert.Zero(t, buf.Len())

	l.PrintError(errors.New("boom"), nil)
	assert.NotZero(t, buf.Len())
}

func TestLoggerInfoEntry(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelInfo)

	l.PrintInfo("starting server", map[string]string{
		"addr": ":4000",
		"env":  "development",
	})

	var entry logEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "INFO", entry.Level)
	assert.Equal(t, "starting server", entry.Message)
	assert.Equal(t, ":4000", entry.Properties["addr"])
	assert.Empty(t, entry.Trace)
}

func TestLoggerErrorIncludesTrace(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelInfo)

	l.PrintError(errors.New("database gone"), nil)

	var entry logEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry.Level)
	assert.Equal(t, "database gone", entry.Message)
	assert.NotEmpty(t, entry.Trace)
}

func TestLoggerWrite(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelInfo)

	_, err := l.Write([]byte("http: proxy error"))
	require.NoError(t, err)

	var entry logEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry.Level)
	assert.Equal(t, "http: proxy error", entry.Message)
}
