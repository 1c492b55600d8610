package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(Options{Level: "debug", Format: "json", Output: &buf})
	require.NoError(t, err)

	logger.WithField("match", "m1").WithFields(map[string]interface{}{"round": 2}).Info("bid %s", "3 x fours")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "bid 3 x fours", line["msg"])
	assert.Equal(t, "m1", line["match"])
	assert.EqualValues(t, 2, line["round"])
	assert.Equal(t, "info", line["level"])
}

func TestNewLoggerLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(Options{Level: "warn", Output: &buf})
	require.NoError(t, err)

	logger.Info("hidden")
	assert.Zero(t, buf.Len())
	logger.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewLoggerRejectsBadOptions(t *testing.T) {
	_, err := NewLogger(Options{Level: "loud"})
	assert.Error(t, err)
	_, err = NewLogger(Options{Format: "xml"})
	assert.Error(t, err)
}

func TestFieldsAreCopied(t *testing.T) {
	logger, err := NewLogger(Options{Output: &bytes.Buffer{}})
	require.NoError(t, err)

	child := logger.WithField("k", "v")
	fields := child.Fields()
	fields["k"] = "changed"
	assert.Equal(t, "v", child.Fields()["k"])
	assert.Empty(t, logger.Fields())
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Info("ignored %d", 1)
	assert.Empty(t, l.WithField("a", 1).Fields())
}
