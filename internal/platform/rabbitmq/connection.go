package rabbitmq

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ExchangeKind is the type of exchange events are published on. The topic is
// used as routing key.
const ExchangeKind = "topic"

// Connection owns the AMQP connection and reopens it when a channel is
// requested after the broker dropped it.
type Connection struct {
	url      string
	exchange string
	logger   *slog.Logger

	mu   sync.Mutex
	conn *amqp.Connection
}

// Dial connects to the broker and declares the durable exchange.
func Dial(url, exchange string, log *slog.Logger) (*Connection, error) {
	if exchange == "" {
		return nil, errors.New("exchange cannot be empty")
	}
	if log == nil {
		log = slog.Default()
	}

	c := &Connection{
		url:      url,
		exchange: exchange,
		logger:   log.With(slog.String("component", "rabbitmq")),
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.connectLocked(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Connection) connectLocked() error {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("failed to connect to broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.ExchangeDeclare(c.exchange, ExchangeKind, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to declare exchange %q: %w", c.exchange, err)
	}

	c.conn = conn
	c.logger.Info("connected to broker", slog.String("exchange", c.exchange))
	return nil
}

// Channel opens a new channel, redialing first if the connection is gone.
// It satisfies ChannelProvider.
func (c *Connection) Channel() (ConfirmableChannel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil || c.conn.IsClosed() {
		c.logger.Warn("broker connection lost, reconnecting")
		if err := c.connectLocked(); err != nil {
			return nil, err
		}
	}

	ch, err := c.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	return ch, nil
}

// Close closes the connection.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil || c.conn.IsClosed() {
		return nil
	}
	return c.conn.Close()
}
