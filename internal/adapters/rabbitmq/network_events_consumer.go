package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Maureenhddi/sergic-app/internal/contextkeys"
	"github.com/Maureenhddi/sergic-app/internal/core/port"
	"github.com/Maureenhddi/sergic-app/pkg/rabbitmq/rabbitmq_common"
	"github.com/Maureenhddi/sergic-app/pkg/rabbitmq/rabbitmq_consumer"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// ConnectivitySwitch receives the transitions reported by the host.
type ConnectivitySwitch interface {
	SetOnline()
	SetOffline()
}

// NetworkEventsConsumer applies network.online / network.offline events from the native shell.
type NetworkEventsConsumer struct {
	consumer *rabbitmq_consumer.Consumer
	monitor  ConnectivitySwitch
	logger   port.LoggerPort
}

func NewNetworkEventsConsumer(
	cfg rabbitmq_consumer.ConsumerConfig,
	monitor ConnectivitySwitch,
	logger port.LoggerPort,
	connManager *rabbitmq_common.ConnectionManager,
) (*NetworkEventsConsumer, error) {
	a := &NetworkEventsConsumer{monitor: monitor, logger: logger}

	consumer, err := rabbitmq_consumer.NewConsumer(networkConsumerConfig(cfg, logger), a.HandleDelivery, connManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create network events consumer: %w", err)
	}
	a.consumer = consumer
	return a, nil
}

// networkConsumerConfig applies the settings network events need. Transitions are state flips where
// the last one wins, so they are handled one at a time in arrival order.
func networkConsumerConfig(cfg rabbitmq_consumer.ConsumerConfig, logger port.LoggerPort) rabbitmq_consumer.ConsumerConfig {
	cfg.Logger = NewPkgLoggerBridge(logger.WithFields(port.Fields{
		"component": "rabbitmq_consumer",
		"queue":     cfg.QueueName,
	}))
	if len(cfg.RoutingKeysForBind) == 0 {
		cfg.RoutingKeysForBind = []string{RoutingKeyNetworkOnline, RoutingKeyNetworkOffline}
	}
	cfg.Ordered = true
	cfg.PrefetchCount = 1
	return cfg
}

// NewNetworkEventsHandler builds the adapter without a broker, for feeding deliveries directly.
func NewNetworkEventsHandler(monitor ConnectivitySwitch, logger port.LoggerPort) *NetworkEventsConsumer {
	return &NetworkEventsConsumer{monitor: monitor, logger: logger}
}

func (a *NetworkEventsConsumer) Start(ctx context.Context) error {
	if a.consumer == nil {
		return fmt.Errorf("network events consumer has no broker connection")
	}
	return a.consumer.StartConsuming(ctx)
}

func (a *NetworkEventsConsumer) Close() error {
	if a.consumer == nil {
		return nil
	}
	return a.consumer.Close()
}

// HandleDelivery applies one event. Unknown events are rejected.
func (a *NetworkEventsConsumer) HandleDelivery(ctx context.Context, d amqp.Delivery) error {
	traceID, ok := d.Headers["x-trace-id"].(string)
	if !ok || traceID == "" {
		traceID = uuid.New().String()
	}
	msgLogger := a.logger.WithFields(port.Fields{
		"trace_id":    traceID,
		"routing_key": d.RoutingKey,
	})
	ctx = contextkeys.ContextWithLogger(ctx, msgLogger)
	ctx = contextkeys.ContextWithTraceID(ctx, traceID)

	offline, err := decodeNetworkEvent(d)
	if err != nil {
		msgLogger.Error("Rejecting network event", err, nil)
		return err
	}

	if offline {
		a.monitor.SetOffline()
	} else {
		a.monitor.SetOnline()
	}
	contextkeys.LoggerFromContext(ctx).Info("Network event applied.", port.Fields{"offline": offline})
	return nil
}

func decodeNetworkEvent(d amqp.Delivery) (offline bool, err error) {
	switch d.RoutingKey {
	case RoutingKeyNetworkOnline:
		offline = false
	case RoutingKeyNetworkOffline:
		offline = true
	default:
		if len(d.Body) == 0 {
			return false, fmt.Errorf("unknown network event %q", d.RoutingKey)
		}
	}

	if len(d.Body) == 0 {
		return offline, nil
	}
	var event networkEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		return false, fmt.Errorf("malformed network event body: %w", err)
	}
	if event.Connected != nil {
		return !*event.Connected, nil
	}
	if d.RoutingKey != RoutingKeyNetworkOnline && d.RoutingKey != RoutingKeyNetworkOffline {
		return false, fmt.Errorf("network event %q carries no state", d.RoutingKey)
	}
	return offline, nil
}
