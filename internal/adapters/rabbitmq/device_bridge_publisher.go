package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Maureenhddi/sergic-app/internal/contextkeys"
	"github.com/Maureenhddi/sergic-app/internal/core/domain"
	"github.com/Maureenhddi/sergic-app/internal/core/port"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 10 * time.Second

// Publisher is satisfied by *rabbitmq_producer.Publisher.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error
}

// DeviceBridgePublisher sends share and haptic commands to the native shell over the device exchange.
type DeviceBridgePublisher struct {
	producer Publisher
}

func NewDeviceBridgePublisher(producer Publisher) (*DeviceBridgePublisher, error) {
	if producer == nil {
		return nil, fmt.Errorf("rabbitmq adapter: producer cannot be nil")
	}
	return &DeviceBridgePublisher{producer: producer}, nil
}

func (a *DeviceBridgePublisher) Share(ctx context.Context, payload domain.SharePayload) error {
	return a.publish(ctx, RoutingKeyShare, newShareCommand(payload))
}

func (a *DeviceBridgePublisher) Haptic(ctx context.Context, style domain.HapticStyle) error {
	return a.publish(ctx, RoutingKeyHaptic, hapticCommand{Style: string(style)})
}

func (a *DeviceBridgePublisher) publish(ctx context.Context, routingKey string, command any) error {
	adapterLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":   "DeviceBridgePublisher",
		"routing_key": routingKey,
	})

	body, err := json.Marshal(command)
	if err != nil {
		adapterLogger.Error("Failed to marshal device command", err, nil)
		return fmt.Errorf("rabbitmq adapter: failed to marshal %s command: %w", routingKey, err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Transient,
		Timestamp:    time.Now(),
		Headers:      amqp.Table{},
	}
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		msg.Headers["x-trace-id"] = traceID
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := a.producer.Publish(publishCtx, routingKey, msg); err != nil {
		adapterLogger.Error("Failed to publish device command", err, nil)
		return fmt.Errorf("rabbitmq adapter: failed to publish %s: %w", routingKey, err)
	}
	adapterLogger.Debug("Device command published.", nil)
	return nil
}
