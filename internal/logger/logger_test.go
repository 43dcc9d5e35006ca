package logger

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handsomefox/moodflix/internal/env"
)

func TestProductionLogsJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, env.Production, slog.LevelInfo)
	log.Info("hello", Error(errors.New("boom")))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "boom", line["err"])
}

func TestLocalLogsText(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, env.Local, slog.LevelWarn)
	log.Info("dropped")
	log.Warn("kept", Error(nil))

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "msg=kept")
	assert.Contains(t, out, "err=nil")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG", slog.LevelInfo))
	assert.Equal(t, slog.LevelWarn, ParseLevel(" warning ", slog.LevelInfo))
	assert.Equal(t, slog.LevelError, ParseLevel("error", slog.LevelInfo))
	assert.Equal(t, slog.LevelInfo, ParseLevel("loud", slog.LevelInfo))
}

func TestEnvParse(t *testing.T) {
	assert.Equal(t, env.Production, env.Parse("production"))
	assert.Equal(t, env.Local, env.Parse("staging"))
	assert.Equal(t, env.Local, env.Parse(""))
}
