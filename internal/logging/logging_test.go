package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_TextFormatIncludesComponent(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "info", "text")
	require.NoError(t, err)

	l.Infof("http", "listening on %s", ":8080")

	out := buf.String()
	assert.Contains(t, out, "component=http")
	assert.Contains(t, out, `msg="listening on :8080"`)
	assert.Contains(t, out, "level=info")
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "debug", "json")
	require.NoError(t, err)

	l.Errorf("static", "read failed: %v", "boom")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "static", entry["component"])
	assert.Equal(t, "read failed: boom", entry["msg"])
	assert.Equal(t, "error", entry["level"])
}

func TestNew_LevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "info", "")
	require.NoError(t, err)

	l.Debugf("http", "hidden")
	assert.Empty(t, buf.String())

	buf.Reset()
	l, err = New(&buf, "debug", "")
	require.NoError(t, err)
	l.Debugf("http", "shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestInfow_WritesFields(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "info", "json")
	require.NoError(t, err)

	l.Infow("access", "request", map[string]interface{}{"status": 404, "path": "/missing"})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "access", entry["component"])
	assert.Equal(t, "/missing", entry["path"])
	assert.EqualValues(t, 404, entry["status"])
}

func TestNew_RejectsUnknownSettings(t *testing.T) {
	_, err := New(&bytes.Buffer{}, "loud", "text")
	assert.Error(t, err)

	_, err = New(&bytes.Buffer{}, "info", "xml")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "xml"))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want logrus.Level
	}{
		{"", logrus.InfoLevel},
		{"DEBUG", logrus.DebugLevel},
		{" warn ", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestNoopLogger(t *testing.T) {
	var l Logger = NoopLogger{}
	assert.NotPanics(t, func() {
		l.Debugf("x", "y")
		l.Infof("x", "y")
		l.Errorf("x", "y")
	})
}
