package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/phrazzld/benjamin-api/internal/config"
	"github.com/phrazzld/benjamin-api/internal/outbox"
	"github.com/phrazzld/benjamin-api/internal/platform/logger"
	goredislib "github.com/redis/go-redis/v9"
)

var (
	// ErrEmptyLockKey is returned when TryLock is called without a key.
	ErrEmptyLockKey = errors.New("lock key cannot be empty")
	// ErrLockNotHeld is returned when a lock expired before it was released.
	ErrLockNotHeld = errors.New("lock was not held or already expired")
)

// Locker hands out single-attempt distributed locks using the redsync
// algorithm on one Redis node.
type Locker struct {
	client  *goredislib.Client
	redsync *redsync.Redsync
	expiry  time.Duration
	logger  *slog.Logger
}

// Ensure Locker implements outbox.Locker
var _ outbox.Locker = (*Locker)(nil)

// NewClient creates a go-redis client from cfg and verifies connectivity.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*goredislib.Client, error) {
	client := goredislib.NewClient(&goredislib.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// NewLocker creates a Locker. Locks expire after expiry unless released.
func NewLocker(client *goredislib.Client, expiry time.Duration, log *slog.Logger) (*Locker, error) {
	if client == nil {
		return nil, errors.New("redis client cannot be nil")
	}
	if expiry <= 0 {
		return nil, fmt.Errorf("invalid lock expiry %s", expiry)
	}
	if log == nil {
		log = slog.Default()
	}

	return &Locker{
		client:  client,
		redsync: redsync.New(goredis.NewPool(client)),
		expiry:  expiry,
		logger:  log.With(slog.String("component", "redis_lock")),
	}, nil
}

// TryLock makes one attempt to take key. Contention returns ok=false and no
// error; connection failures are returned.
func (l *Locker) TryLock(ctx context.Context, key string) (outbox.Lock, bool, error) {
	if strings.TrimSpace(key) == "" {
		return nil, false, ErrEmptyLockKey
	}
	log := logger.FromContextOrDefault(ctx, l.logger)

	mutex := l.redsync.NewMutex(key,
		redsync.WithExpiry(l.expiry),
		redsync.WithTries(1),
	)

	if err := mutex.LockContext(ctx); err != nil {
		if isLockContention(err) {
			log.Debug("lock already held by another process", slog.String("lock_key", key))
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to attempt lock acquisition for %s: %w", key, err)
	}

	log.Debug("lock acquired", slog.String("lock_key", key))
	return &lockHandle{mutex: mutex, logger: log}, true, nil
}

// Ping checks the Redis connection.
func (l *Locker) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

func isLockContention(err error) bool {
	var taken *redsync.ErrTaken
	return errors.Is(err, redsync.ErrFailed) || errors.As(err, &taken)
}

type lockHandle struct {
	mutex  *redsync.Mutex
	logger *slog.Logger
}

// Unlock releases the lock.
func (h *lockHandle) Unlock(ctx context.Context) error {
	ok, err := h.mutex.UnlockContext(ctx)
	if err != nil {
		return fmt.Errorf("distributed lock: unlock: %w", err)
	}
	if !ok {
		h.logger.Warn("lock was not held or already expired", slog.String("lock_key", h.mutex.Name()))
		return ErrLockNotHeld
	}
	return nil
}
