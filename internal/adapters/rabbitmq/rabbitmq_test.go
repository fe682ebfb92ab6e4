package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/Maureenhddi/sergic-app/internal/adapters/connectivity"
	"github.com/Maureenhddi/sergic-app/internal/contextkeys"
	"github.com/Maureenhddi/sergic-app/internal/core/domain"
	"github.com/Maureenhddi/sergic-app/internal/core/port"
	"github.com/Maureenhddi/sergic-app/pkg/rabbitmq/rabbitmq_common"
	"github.com/Maureenhddi/sergic-app/pkg/rabbitmq/rabbitmq_consumer"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type logEntry struct {
	level  string
	msg    string
	err    error
	fields port.Fields
}

type recordingLogger struct {
	mu      *sync.Mutex
	entries *[]logEntry
	base    port.Fields
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{mu: &sync.Mutex{}, entries: &[]logEntry{}}
}

func (l *recordingLogger) add(level, msg string, err error, fields port.Fields) {
	merged := port.Fields{}
	for k, v := range l.base {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	l.mu.Lock()
	*l.entries = append(*l.entries, logEntry{level: level, msg: msg, err: err, fields: merged})
	l.mu.Unlock()
}

func (l *recordingLogger) Info(msg string, fields port.Fields)  { l.add("info", msg, nil, fields) }
func (l *recordingLogger) Warn(msg string, fields port.Fields)  { l.add("warn", msg, nil, fields) }
func (l *recordingLogger) Debug(msg string, fields port.Fields) { l.add("debug", msg, nil, fields) }
func (l *recordingLogger) Error(msg string, err error, fields port.Fields) {
	l.add("error", msg, err, fields)
}

func (l *recordingLogger) WithFields(fields port.Fields) port.LoggerPort {
	merged := port.Fields{}
	for k, v := range l.base {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &recordingLogger{mu: l.mu, entries: l.entries, base: merged}
}

func (l *recordingLogger) all() []logEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]logEntry(nil), *l.entries...)
}

type published struct {
	routingKey string
	msg        amqp.Publishing
}

type fakePublisher struct {
	sent []published
	err  error
}

func (p *fakePublisher) Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("publish without deadline")
	}
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, published{routingKey: routingKey, msg: msg})
	return nil
}

func TestNewDeviceBridgePublisherRequiresProducer(t *testing.T) {
	_, err := NewDeviceBridgePublisher(nil)
	assert.Error(t, err)
}

func TestDeviceBridgeShare(t *testing.T) {
	producer := &fakePublisher{}
	bridge, err := NewDeviceBridgePublisher(producer)
	require.NoError(t, err)

	ctx := contextkeys.ContextWithTraceID(context.Background(), "trace-1")
	payload := domain.SharePayload{Title: "T3 Lyon", Text: "Découvrez", URL: "https://sergic.app/l/t3"}
	require.NoError(t, bridge.Share(ctx, payload))

	require.Len(t, producer.sent, 1)
	sent := producer.sent[0]
	assert.Equal(t, RoutingKeyShare, sent.routingKey)
	assert.Equal(t, "application/json", sent.msg.ContentType)
	assert.Equal(t, "trace-1", sent.msg.Headers["x-trace-id"])
	assert.JSONEq(t, `{"title":"T3 Lyon","text":"Découvrez","url":"https://sergic.app/l/t3"}`, string(sent.msg.Body))
}

func TestDeviceBridgeHaptic(t *testing.T) {
	producer := &fakePublisher{}
	bridge, err := NewDeviceBridgePublisher(producer)
	require.NoError(t, err)

	require.NoError(t, bridge.Haptic(context.Background(), domain.HapticLight))

	require.Len(t, producer.sent, 1)
	assert.Equal(t, RoutingKeyHaptic, producer.sent[0].routingKey)
	assert.JSONEq(t, `{"style":"light"}`, string(producer.sent[0].msg.Body))
	_, hasTrace := producer.sent[0].msg.Headers["x-trace-id"]
	assert.False(t, hasTrace)
}

func TestDeviceBridgePublishFailure(t *testing.T) {
	brokerDown := errors.New("channel closed")
	bridge, err := NewDeviceBridgePublisher(&fakePublisher{err: brokerDown})
	require.NoError(t, err)

	err = bridge.Haptic(context.Background(), domain.HapticHeavy)
	assert.ErrorIs(t, err, brokerDown)
}

type fakeSwitch struct {
	calls []string
}

func (s *fakeSwitch) SetOnline()  { s.calls = append(s.calls, "online") }
func (s *fakeSwitch) SetOffline() { s.calls = append(s.calls, "offline") }

func TestHandleDelivery(t *testing.T) {
	tests := []struct {
		name       string
		routingKey string
		body       string
		want       string
		wantErr    bool
	}{
		{name: "online", routingKey: RoutingKeyNetworkOnline, want: "online"},
		{name: "offline", routingKey: RoutingKeyNetworkOffline, want: "offline"},
		{name: "body overrides key", routingKey: RoutingKeyNetworkOnline, body: `{"connected":false}`, want: "offline"},
		{name: "body without state", routingKey: RoutingKeyNetworkOffline, body: `{"connection_type":"wifi"}`, want: "offline"},
		{name: "other key with state", routingKey: "network.status", body: `{"connected":true}`, want: "online"},
		{name: "other key without body", routingKey: "network.status", wantErr: true},
		{name: "other key without state", routingKey: "network.status", body: `{}`, wantErr: true},
		{name: "malformed body", routingKey: RoutingKeyNetworkOnline, body: `{`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sw := &fakeSwitch{}
			handler := NewNetworkEventsHandler(sw, contextkeys.NoopLogger())

			d := amqp.Delivery{RoutingKey: tt.routingKey}
			if tt.body != "" {
				d.Body = []byte(tt.body)
			}
			err := handler.HandleDelivery(context.Background(), d)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Empty(t, sw.calls)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []string{tt.want}, sw.calls)
		})
	}
}

func TestAlternatingEventsLastOneWins(t *testing.T) {
	monitor := connectivity.NewMonitor("sergic.app", false, contextkeys.NoopLogger())
	handler := NewNetworkEventsHandler(monitor, contextkeys.NoopLogger())

	keys := []string{
		RoutingKeyNetworkOffline, RoutingKeyNetworkOnline,
		RoutingKeyNetworkOffline, RoutingKeyNetworkOnline,
		RoutingKeyNetworkOffline,
	}
	for i, key := range keys {
		require.NoError(t, handler.HandleDelivery(context.Background(), amqp.Delivery{DeliveryTag: uint64(i), RoutingKey: key}))
	}
	assert.True(t, monitor.IsOffline())

	require.NoError(t, handler.HandleDelivery(context.Background(), amqp.Delivery{RoutingKey: RoutingKeyNetworkOnline}))
	assert.False(t, monitor.IsOffline())
}

func TestNetworkConsumerConfigIsOrdered(t *testing.T) {
	cfg := networkConsumerConfig(rabbitmq_consumer.ConsumerConfig{
		Config:        rabbitmq_common.Config{URL: "amqp://localhost:5672/"},
		QueueName:     "sergic.network",
		PrefetchCount: 20,
	}, contextkeys.NoopLogger())

	assert.True(t, cfg.Ordered)
	assert.Equal(t, 1, cfg.PrefetchCount)
	assert.Equal(t, []string{RoutingKeyNetworkOnline, RoutingKeyNetworkOffline}, cfg.RoutingKeysForBind)
	assert.NotNil(t, cfg.Logger)

	custom := networkConsumerConfig(rabbitmq_consumer.ConsumerConfig{RoutingKeysForBind: []string{"network.#"}}, contextkeys.NoopLogger())
	assert.Equal(t, []string{"network.#"}, custom.RoutingKeysForBind)
	assert.True(t, custom.Ordered)
}

func TestHandleDeliveryKeepsTraceID(t *testing.T) {
	logger := newRecordingLogger()
	handler := NewNetworkEventsHandler(&fakeSwitch{}, logger)

	d := amqp.Delivery{
		RoutingKey: RoutingKeyNetworkOffline,
		Headers:    amqp.Table{"x-trace-id": "abc"},
	}
	require.NoError(t, handler.HandleDelivery(context.Background(), d))

	entries := logger.all()
	require.NotEmpty(t, entries)
	last := entries[len(entries)-1]
	assert.Equal(t, "Network event applied.", last.msg)
	assert.Equal(t, "abc", last.fields["trace_id"])
	assert.Equal(t, true, last.fields["offline"])
}

func TestHandlerWithoutBroker(t *testing.T) {
	handler := NewNetworkEventsHandler(&fakeSwitch{}, contextkeys.NoopLogger())
	assert.Error(t, handler.Start(context.Background()))
	assert.NoError(t, handler.Close())
}

func TestPkgLoggerBridge(t *testing.T) {
	logger := newRecordingLogger()
	bridge := NewPkgLoggerBridge(logger)

	bridge.Info("connected", "url", "amqp://localhost", "attempt", 2)
	bridge.Warn("dangling", "key")
	bridge.Debug("plain")
	boom := errors.New("boom")
	bridge.Error(boom, "failed", 42, "numeric key")

	entries := logger.all()
	require.Len(t, entries, 4)

	assert.Equal(t, "info", entries[0].level)
	assert.Equal(t, "amqp://localhost", entries[0].fields["url"])
	assert.Equal(t, 2, entries[0].fields["attempt"])

	value, ok := entries[1].fields["key"]
	assert.True(t, ok)
	assert.Nil(t, value)

	assert.Empty(t, entries[2].fields)

	assert.Equal(t, "error", entries[3].level)
	assert.ErrorIs(t, entries[3].err, boom)
	assert.Equal(t, "numeric key", entries[3].fields["42"])
}

func TestCommandBodies(t *testing.T) {
	raw, err := json.Marshal(newShareCommand(domain.SharePayload{Title: "a", Text: "b", URL: "c"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"a","text":"b","url":"c"}`, string(raw))
}
