package logger_adapter

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/Maureenhddi/sergic-app/internal/core/port"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type post struct {
	tag  string
	data port.Fields
}

type fakeFluent struct {
	posts  []post
	closed bool
}

func (f *fakeFluent) Post(tag string, message interface{}) error {
	f.posts = append(f.posts, post{tag: tag, data: message.(port.Fields)})
	return errors.New("fluent bit unreachable")
}

func (f *fakeFluent) Close() error {
	f.closed = true
	return nil
}

func TestFluentLoggerAdapter(t *testing.T) {
	_, err := NewFluentLoggerAdapter(nil, nil)
	assert.Error(t, err)

	client := &fakeFluent{}
	base, err := NewFluentLoggerAdapter(client, slog.LevelInfo)
	require.NoError(t, err)

	logger := base.WithFields(port.Fields{"service_name": "listings-service"})
	logger.Debug("dropped", nil)
	logger.Info("cached", port.Fields{"count": 3})
	logger.Error("write failed", errors.New("disk full"), port.Fields{"key": "sergic_favorites"})

	require.Len(t, client.posts, 2)

	info := client.posts[0]
	assert.Equal(t, "info", info.tag)
	assert.Equal(t, "cached", info.data["message"])
	assert.Equal(t, "listings-service", info.data["service_name"])
	assert.Equal(t, 3, info.data["count"])
	assert.NotEmpty(t, info.data["timestamp"])

	failure := client.posts[1]
	assert.Equal(t, "error", failure.tag)
	assert.Equal(t, "disk full", failure.data["error"])
	assert.Equal(t, "sergic_favorites", failure.data["key"])

	_, leaked := base.fields["service_name"]
	assert.False(t, leaked)

	require.NoError(t, base.Close())
	assert.True(t, client.closed)
}

func TestSlogAdapterJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogAdapter(SlogConfig{Writer: &buf, Level: slog.LevelDebug, IsJSON: true})

	logger.WithFields(port.Fields{"component": "OfflineCache"}).
		Error("Failed to write cache.", errors.New("quota"), port.Fields{"key": "sergic_cache_achat"})

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "ERROR", record["level"])
	assert.Equal(t, "Failed to write cache.", record["msg"])
	assert.Equal(t, "OfflineCache", record["component"])
	assert.Equal(t, "sergic_cache_achat", record["key"])
	assert.Equal(t, "quota", record["error"])
}

func TestSlogAdapterLevelAndOrder(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogAdapter(SlogConfig{Writer: &buf})

	logger.Debug("hidden", nil)
	assert.Zero(t, buf.Len())

	logger.Warn("visible", port.Fields{"b": 2, "a": 1})
	line := buf.String()
	assert.Contains(t, line, "visible")
	assert.Less(t, strings.Index(line, "a=1"), strings.Index(line, "b=2"))
}

func TestSlogAdapterColor(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogAdapter(SlogConfig{Writer: &buf, UseColor: true})
	logger.Info("colored", port.Fields{"offline": true})
	assert.Contains(t, buf.String(), "colored")
}

type countingLogger struct {
	counts map[string]int
	fields port.Fields
}

func (c *countingLogger) Info(string, port.Fields)         { c.counts["info"]++ }
func (c *countingLogger) Warn(string, port.Fields)         { c.counts["warn"]++ }
func (c *countingLogger) Error(string, error, port.Fields) { c.counts["error"]++ }
func (c *countingLogger) Debug(string, port.Fields)        { c.counts["debug"]++ }
func (c *countingLogger) WithFields(fields port.Fields) port.LoggerPort {
	return &countingLogger{counts: c.counts, fields: fields}
}

func TestMultiLoggerAdapter(t *testing.T) {
	_, err := NewMultiLoggerAdapter()
	assert.Error(t, err)
	_, err = NewMultiLoggerAdapter(nil, nil)
	assert.Error(t, err)

	a := &countingLogger{counts: map[string]int{}}
	b := &countingLogger{counts: map[string]int{}}
	multi, err := NewMultiLoggerAdapter(a, nil, b)
	require.NoError(t, err)

	child := multi.WithFields(port.Fields{"trace_id": "t"})
	child.Info("x", nil)
	child.Warn("x", nil)
	child.Error("x", nil, nil)
	multi.Debug("x", nil)

	for _, l := range []*countingLogger{a, b} {
		assert.Equal(t, map[string]int{"info": 1, "warn": 1, "error": 1, "debug": 1}, l.counts)
	}
}
