package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/benjamin-api/internal/config"
	"github.com/phrazzld/benjamin-api/internal/outbox"
	"github.com/phrazzld/benjamin-api/internal/platform/logger"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sony/gobreaker/v2"
)

var (
	// ErrPublishNacked is returned when the broker rejects a message.
	ErrPublishNacked = errors.New("message was nacked by broker")
	// ErrConfirmTimeout is returned when no confirm arrives in time.
	ErrConfirmTimeout = errors.New("timed out waiting for publish confirm")
	// ErrPublisherClosed is returned when the channel closed before the
	// confirm arrived or after Close.
	ErrPublisherClosed = errors.New("publisher channel is closed")
	// ErrBrokerUnavailable is returned while the circuit breaker is open.
	ErrBrokerUnavailable = errors.New("broker unavailable")
)

// ConfirmableChannel is the subset of *amqp.Channel used for publishing with
// confirms.
type ConfirmableChannel interface {
	Confirm(noWait bool) error
	NotifyPublish(confirm chan amqp.Confirmation) chan amqp.Confirmation
	NotifyClose(c chan *amqp.Error) chan *amqp.Error
	PublishWithContext(
		ctx context.Context,
		exchange, key string,
		mandatory, immediate bool,
		msg amqp.Publishing,
	) error
	Close() error
}

// ChannelProvider opens a fresh channel. It is called lazily on first publish
// and again after a channel was invalidated.
type ChannelProvider func() (ConfirmableChannel, error)

// Publisher publishes outbox messages on a topic exchange and waits for the
// broker confirm of each one. Publishes are serialized so that confirms arrive
// in publish order.
type Publisher struct {
	provider       ChannelProvider
	exchange       string
	confirmTimeout time.Duration
	breaker        *gobreaker.CircuitBreaker[struct{}]
	logger         *slog.Logger

	mu       sync.Mutex
	ch       ConfirmableChannel
	confirms chan amqp.Confirmation
	closed   chan *amqp.Error
	shutdown bool
}

// Ensure Publisher implements outbox.Broker
var _ outbox.Broker = (*Publisher)(nil)

// NewPublisher creates a Publisher. No channel is opened until the first publish.
func NewPublisher(provider ChannelProvider, cfg config.BrokerConfig, log *slog.Logger) (*Publisher, error) {
	if provider == nil {
		return nil, errors.New("channel provider cannot be nil")
	}
	if cfg.Exchange == "" {
		return nil, errors.New("exchange cannot be empty")
	}
	if cfg.ConfirmTimeout <= 0 {
		return nil, fmt.Errorf("invalid confirm timeout %s", cfg.ConfirmTimeout)
	}
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "rabbitmq_publisher"))

	maxFailures := cfg.BreakerMaxFailures
	if maxFailures <= 0 {
		maxFailures = 5
	}

	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "rabbitmq:" + cfg.Exchange,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return int(counts.ConsecutiveFailures) >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})

	return &Publisher{
		provider:       provider,
		exchange:       cfg.Exchange,
		confirmTimeout: cfg.ConfirmTimeout,
		breaker:        breaker,
		logger:         log,
	}, nil
}

// Publish implements outbox.Broker. It returns nil only after a positive
// confirm for msg.
func (p *Publisher) Publish(ctx context.Context, msg outbox.Message) error {
	_, err := p.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, p.publishAndConfirm(ctx, msg)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", ErrBrokerUnavailable, err)
	}
	return err
}

func (p *Publisher) publishAndConfirm(ctx context.Context, msg outbox.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.shutdown {
		return ErrPublisherClosed
	}
	if err := p.ensureChannelLocked(); err != nil {
		return err
	}

	publishing := amqp.Publishing{
		Headers:      amqp.Table{"key": msg.Key},
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.Key,
		Timestamp:    time.Now().UTC(),
		Type:         msg.Type,
		Body:         msg.Value,
	}

	if err := p.ch.PublishWithContext(ctx, p.exchange, msg.Topic, false, false, publishing); err != nil {
		p.invalidateLocked()
		return fmt.Errorf("publish: %w", err)
	}

	err := waitForConfirm(ctx, p.confirms, p.closed, p.confirmTimeout)
	if err != nil && !errors.Is(err, ErrPublishNacked) {
		// A confirm that arrives late would be read by the next publish.
		p.invalidateLocked()
	}
	return err
}

func (p *Publisher) ensureChannelLocked() error {
	if p.ch != nil {
		return nil
	}

	ch, err := p.provider()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		return fmt.Errorf("failed to enable publisher confirms: %w", err)
	}

	p.ch = ch
	p.confirms = ch.NotifyPublish(make(chan amqp.Confirmation, 1))
	p.closed = ch.NotifyClose(make(chan *amqp.Error, 1))
	p.logger.Debug("publisher channel opened", slog.String("exchange", p.exchange))
	return nil
}

func (p *Publisher) invalidateLocked() {
	if p.ch == nil {
		return
	}
	if err := p.ch.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		p.logger.Debug("error closing publisher channel", slog.String("error", err.Error()))
	}
	p.ch = nil
	p.confirms = nil
	p.closed = nil
}

func waitForConfirm(
	ctx context.Context,
	confirms <-chan amqp.Confirmation,
	closed <-chan *amqp.Error,
	confirmTimeout time.Duration,
) error {
	timeout := time.NewTimer(confirmTimeout)
	defer timeout.Stop()

	select {
	case confirmed, ok := <-confirms:
		if !ok {
			return ErrPublisherClosed
		}
		if !confirmed.Ack {
			return fmt.Errorf("%w: delivery_tag=%d", ErrPublishNacked, confirmed.DeliveryTag)
		}
		return nil

	case amqpErr, ok := <-closed:
		if ok && amqpErr != nil {
			return fmt.Errorf("%w: %s", ErrPublisherClosed, amqpErr.Error())
		}
		return ErrPublisherClosed

	case <-timeout.C:
		return ErrConfirmTimeout

	case <-ctx.Done():
		return fmt.Errorf("context cancelled: %w", ctx.Err())
	}
}

// HealthCheck reports broker availability from the circuit breaker state
// without touching the network.
func (p *Publisher) HealthCheck(_ context.Context) error {
	switch state := p.breaker.State(); state {
	case gobreaker.StateClosed:
		return nil
	case gobreaker.StateHalfOpen:
		return fmt.Errorf("broker: degraded (circuit breaker half-open)")
	case gobreaker.StateOpen:
		return fmt.Errorf("broker: failing (circuit breaker open)")
	default:
		return fmt.Errorf("broker: unknown circuit breaker state %v", state)
	}
}

// Close closes the current channel. Later publishes fail with ErrPublisherClosed.
func (p *Publisher) Close(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.shutdown = true
	p.invalidateLocked()
	logger.FromContextOrDefault(ctx, p.logger).Info("rabbitmq publisher closed")
	return nil
}
