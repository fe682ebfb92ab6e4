package rabbitmq_consumer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Maureenhddi/sergic-app/pkg/rabbitmq/rabbitmq_common"

	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageHandler processes one delivery. nil acks it, an error nacks it without requeue.
type MessageHandler func(ctx context.Context, delivery amqp.Delivery) error

type ConsumerConfig struct {
	rabbitmq_common.Config

	// QueueName may be empty when DeclareQueue is set: the broker then names the queue.
	QueueName       string
	DeclareQueue    bool
	DurableQueue    bool
	ExclusiveQueue  bool
	AutoDeleteQueue bool
	QueueArgs       amqp.Table

	// ExchangeNameForBind empty means no binding.
	ExchangeNameForBind    string
	DeclareExchangeForBind bool
	ExchangeTypeForBind    string
	DurableExchangeForBind bool
	// RoutingKeysForBind - one binding per key.
	RoutingKeysForBind []string

	PrefetchCount int
	ConsumerTag   string

	// Ordered handles deliveries one at a time in arrival order instead of one goroutine each.
	Ordered bool

	Logger rabbitmq_common.Logger
}

func (c ConsumerConfig) validate() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if !c.DeclareQueue && c.QueueName == "" {
		return errors.New("consumer: queue name is required if DeclareQueue is false")
	}
	if c.DeclareExchangeForBind && c.ExchangeNameForBind != "" && c.ExchangeTypeForBind == "" {
		return errors.New("consumer: exchange type is required when declaring the bind exchange")
	}
	return nil
}

// Consumer dispatches deliveries to its handler, one goroutine each unless Ordered is set.
type Consumer struct {
	config     ConsumerConfig
	connection *amqp.Connection
	channel    *amqp.Channel
	queueName  string
	handler    MessageHandler
	wg         sync.WaitGroup

	// stop and done are set by StartConsuming; done is closed when dispatch returns.
	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}

	Logger rabbitmq_common.Logger
}

func NewConsumer(cfg ConsumerConfig, handler MessageHandler, connManager *rabbitmq_common.ConnectionManager) (*Consumer, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid consumer config: %w", err)
	}
	if handler == nil {
		return nil, errors.New("consumer: message handler is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = rabbitmq_common.NewNoopLogger()
	}

	conn, ch, err := connManager.GetChannel()
	if err != nil {
		return nil, fmt.Errorf("consumer: failed to get channel: %w", err)
	}

	c := &Consumer{
		config:     cfg,
		connection: conn,
		channel:    ch,
		handler:    handler,
		Logger:     logger,
	}
	if err := c.setup(); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("consumer: setup failed: %w", err)
	}
	return c, nil
}

// setup applies QoS, then declares and binds the queue.
func (c *Consumer) setup() error {
	if c.config.PrefetchCount > 0 {
		if err := c.channel.Qos(c.config.PrefetchCount, 0, false); err != nil {
			return fmt.Errorf("failed to set QoS: %w", err)
		}
	}

	c.queueName = c.config.QueueName
	if c.config.DeclareQueue {
		q, err := c.channel.QueueDeclare(
			c.config.QueueName,
			c.config.DurableQueue,
			c.config.AutoDeleteQueue,
			c.config.ExclusiveQueue,
			false, // no-wait
			c.config.QueueArgs,
		)
		if err != nil {
			return fmt.Errorf("failed to declare queue '%s': %w", c.config.QueueName, err)
		}
		c.queueName = q.Name
	}

	if c.config.ExchangeNameForBind == "" {
		return nil
	}
	if c.config.DeclareExchangeForBind {
		err := c.channel.ExchangeDeclare(
			c.config.ExchangeNameForBind,
			c.config.ExchangeTypeForBind,
			c.config.DurableExchangeForBind,
			false, false, false, nil,
		)
		if err != nil {
			return fmt.Errorf("failed to declare exchange '%s': %w", c.config.ExchangeNameForBind, err)
		}
	}

	keys := c.config.RoutingKeysForBind
	if len(keys) == 0 {
		keys = []string{""}
	}
	for _, key := range keys {
		c.Logger.Debug("Binding queue", "queue", c.queueName, "exchange", c.config.ExchangeNameForBind, "routing_key", key)
		if err := c.channel.QueueBind(c.queueName, key, c.config.ExchangeNameForBind, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue '%s' with key '%s': %w", c.queueName, key, err)
		}
	}
	return nil
}

// StartConsuming blocks until ctx is cancelled (returns nil) or the connection drops (returns the broker error).
func (c *Consumer) StartConsuming(ctx context.Context) error {
	if c.channel == nil || c.connection == nil || c.connection.IsClosed() {
		return errors.New("consumer: not connected")
	}

	deliveries, err := c.channel.Consume(c.queueName, c.config.ConsumerTag, false, c.config.ExclusiveQueue, false, false, nil)
	if err != nil {
		return fmt.Errorf("consumer: failed to consume from '%s': %w", c.queueName, err)
	}
	c.Logger.Info("Waiting for messages", "queue", c.queueName)

	stop, done := make(chan struct{}), make(chan struct{})
	c.mu.Lock()
	c.stop, c.done = stop, done
	c.mu.Unlock()
	go c.dispatch(ctx, deliveries, stop, done)

	notifyClose := c.connection.NotifyClose(make(chan *amqp.Error, 1))
	select {
	case <-ctx.Done():
		c.Logger.Info("Context cancelled, consumer stopping", "queue", c.queueName)
		return nil
	case amqpErr := <-notifyClose:
		if amqpErr == nil {
			return nil
		}
		c.Logger.Error(amqpErr, "Connection closed under consumer", "queue", c.queueName)
		return amqpErr
	}
}

func (c *Consumer) dispatch(ctx context.Context, deliveries <-chan amqp.Delivery, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case d, ok := <-deliveries:
			if !ok {
				c.Logger.Info("Deliveries channel closed", "queue", c.queueName)
				return
			}
			if c.config.Ordered {
				c.handle(ctx, d)
				continue
			}
			c.wg.Add(1)
			go func(d amqp.Delivery) {
				defer c.wg.Done()
				c.handle(ctx, d)
			}(d)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	if err := c.handler(ctx, d); err != nil {
		c.Logger.Error(err, "Handler failed, message dropped", "delivery_tag", d.DeliveryTag, "routing_key", d.RoutingKey)
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}

// Close stops dispatching, waits for running handlers and closes the channel.
func (c *Consumer) Close() error {
	c.mu.Lock()
	stop, done := c.stop, c.done
	c.stop = nil
	c.mu.Unlock()
	if stop != nil {
		close(stop)
		<-done
	}
	c.wg.Wait()
	if c.channel == nil {
		return nil
	}
	err := c.channel.Close()
	c.channel = nil
	if err != nil {
		c.Logger.Error(err, "Error closing consumer channel")
		return err
	}
	c.Logger.Info("Consumer closed", "queue", c.queueName)
	return nil
}
