package outbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/benjamin-api/internal/domain"
	"github.com/phrazzld/benjamin-api/internal/platform/logger"
	"github.com/phrazzld/benjamin-api/internal/platform/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// ErrCycleInProgress is returned by RunCycle when another cycle is running in
// this process.
var ErrCycleInProgress = errors.New("outbox cycle already in progress")

// Config holds the publisher settings.
type Config struct {
	// Interval between cycle starts.
	Interval time.Duration
	// BatchSize caps the number of events fetched per cycle.
	BatchSize int
	// Topic every event is published to.
	Topic string
	// PublishTimeout bounds a single publish including the ack wait.
	PublishTimeout time.Duration
	// LockKey names the cross-process lock. Ignored without a Locker.
	LockKey string
}

// CycleResult summarizes one cycle.
type CycleResult struct {
	Fetched       int
	Published     int
	DeleteFailed  int
	DeliveryError error
	// Skipped is set when another process held the lock.
	Skipped bool
}

// Publisher drains the outbox table into the broker on a fixed interval.
type Publisher struct {
	store   Store
	broker  Broker
	locker  Locker
	config  Config
	logger  *slog.Logger
	metrics *telemetry.Metrics
	tracer  trace.Tracer

	cycleMu sync.Mutex

	runMu      sync.Mutex
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithLocker adds cross-process single flight.
func WithLocker(locker Locker) Option {
	return func(p *Publisher) { p.locker = locker }
}

// WithMetrics records cycle metrics on m.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(p *Publisher) { p.metrics = m }
}

// NewPublisher creates a Publisher. A nil logger uses slog.Default().
func NewPublisher(store Store, broker Broker, config Config, log *slog.Logger, opts ...Option) (*Publisher, error) {
	if store == nil {
		return nil, errors.New("outbox store cannot be nil")
	}
	if broker == nil {
		return nil, errors.New("outbox broker cannot be nil")
	}
	if config.Interval <= 0 {
		return nil, fmt.Errorf("invalid outbox interval %s", config.Interval)
	}
	if config.BatchSize <= 0 {
		return nil, fmt.Errorf("invalid outbox batch size %d", config.BatchSize)
	}
	if config.Topic == "" {
		return nil, errors.New("outbox topic cannot be empty")
	}
	if log == nil {
		log = slog.Default()
	}

	p := &Publisher{
		store:  store,
		broker: broker,
		config: config,
		logger: log.With(slog.String("component", "outbox_publisher")),
		tracer: otel.Tracer(telemetry.InstrumentationName),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Start launches the ticker loop. Calling Start on a running publisher is a no-op.
func (p *Publisher) Start() {
	p.runMu.Lock()
	defer p.runMu.Unlock()
	if p.cancelFunc != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	ctx = logger.WithLogger(ctx, p.logger)
	p.cancelFunc = cancel

	p.wg.Add(1)
	go p.loop(ctx)

	p.logger.Info("outbox publisher started",
		slog.Duration("interval", p.config.Interval),
		slog.Int("batch_size", p.config.BatchSize),
		slog.String("topic", p.config.Topic))
}

// Stop cancels the loop and waits for an in-flight cycle to return. An
// interrupted publish leaves its event in place for the next run.
func (p *Publisher) Stop() {
	p.runMu.Lock()
	cancel := p.cancelFunc
	p.cancelFunc = nil
	p.runMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	p.wg.Wait()
	p.logger.Info("outbox publisher stopped")
}

func (p *Publisher) loop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := p.RunCycle(ctx); err != nil && !errors.Is(err, ErrCycleInProgress) {
				if ctx.Err() != nil {
					return
				}
				p.logger.Error("outbox cycle failed", slog.String("error", err.Error()))
			}
		}
	}
}

// RunCycle publishes one batch of pending events in insertion order. Each
// event is deleted only after the broker acknowledged it. The first delivery
// failure ends the batch; that event and the rest are retried next cycle.
// Delivery failures are reported in the result, not as an error.
func (p *Publisher) RunCycle(ctx context.Context) (CycleResult, error) {
	var result CycleResult

	if !p.cycleMu.TryLock() {
		return result, ErrCycleInProgress
	}
	defer p.cycleMu.Unlock()

	start := time.Now()
	ctx, span := p.tracer.Start(ctx, "outbox.cycle")
	defer span.End()
	defer func() {
		if p.metrics != nil {
			p.metrics.OutboxCycleDuration.Record(ctx, time.Since(start).Seconds())
		}
	}()

	log := logger.FromContextOrDefault(ctx, p.logger)

	if p.locker != nil {
		lock, ok, err := p.locker.TryLock(ctx, p.config.LockKey)
		if err != nil {
			span.SetStatus(codes.Error, "lock failed")
			return result, fmt.Errorf("failed to acquire outbox lock: %w", err)
		}
		if !ok {
			log.Debug("outbox lock held elsewhere, skipping cycle")
			result.Skipped = true
			return result, nil
		}
		defer func() {
			// The lock may outlive a cancelled cycle context.
			unlockCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if err := lock.Unlock(unlockCtx); err != nil {
				log.Warn("failed to release outbox lock", slog.String("error", err.Error()))
			}
		}()
	}

	events, err := p.store.ListPending(ctx, p.config.BatchSize)
	if err != nil {
		span.SetStatus(codes.Error, "list pending failed")
		return result, fmt.Errorf("failed to list pending outbox events: %w", err)
	}
	result.Fetched = len(events)
	span.SetAttributes(attribute.Int("outbox.fetched", len(events)))

	for _, event := range events {
		if ctx.Err() != nil {
			break
		}
		if err := p.deliver(ctx, event); err != nil {
			result.DeliveryError = err
			log.Warn("outbox delivery failed, will retry",
				slog.String("event_id", event.ID.String()),
				slog.String("event_type", event.Type),
				slog.String("error", err.Error()))
			p.count(ctx, p.deliveryFailedCounter(), event.Type)
			break
		}
		result.Published++
		p.count(ctx, p.publishedCounter(), event.Type)
		log.Info(fmt.Sprintf("%s is sent", event.ID),
			slog.String("event_id", event.ID.String()),
			slog.String("topic", p.config.Topic))

		// A failed delete means the event is published again later.
		if err := p.store.Delete(ctx, event.ID); err != nil {
			result.DeleteFailed++
			p.count(ctx, p.deleteFailedCounter(), event.Type)
			log.Error("failed to delete published outbox event",
				slog.String("event_id", event.ID.String()),
				slog.String("error", err.Error()))
		}
	}

	span.SetAttributes(attribute.Int("outbox.published", result.Published))
	return result, nil
}

func (p *Publisher) deliver(ctx context.Context, event domain.OutboxEvent) error {
	msg, err := NewMessage(event, p.config.Topic)
	if err != nil {
		return err
	}

	publishCtx := ctx
	if p.config.PublishTimeout > 0 {
		var cancel context.CancelFunc
		publishCtx, cancel = context.WithTimeout(ctx, p.config.PublishTimeout)
		defer cancel()
	}
	return p.broker.Publish(publishCtx, msg)
}

func (p *Publisher) count(ctx context.Context, counter metric.Int64Counter, eventType string) {
	if counter == nil {
		return
	}
	counter.Add(ctx, 1, metric.WithAttributes(
		telemetry.AttrEventType.String(eventType),
		telemetry.AttrTopic.String(p.config.Topic),
	))
}

func (p *Publisher) publishedCounter() metric.Int64Counter {
	if p.metrics == nil {
		return nil
	}
	return p.metrics.OutboxPublished
}

func (p *Publisher) deliveryFailedCounter() metric.Int64Counter {
	if p.metrics == nil {
		return nil
	}
	return p.metrics.OutboxDeliveryFailed
}

func (p *Publisher) deleteFailedCounter() metric.Int64Counter {
	if p.metrics == nil {
		return nil
	}
	return p.metrics.OutboxDeleteFailed
}
