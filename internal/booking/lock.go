package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/restaurant-table-booking/internal/logger"
)

// SlotLocker serializes booking attempts for the same (table, instant) ahead
// of the storage transaction. It narrows contention on the table row; the
// transaction and the unique index remain the authority on conflicts.
type SlotLocker interface {
	// Acquire blocks until the slot is held or ctx is done. The returned
	// release func must be called exactly once.
	Acquire(ctx context.Context, tableID uint64, at time.Time) (release func(), err error)
}

func slotKey(tableID uint64, at time.Time) string {
	return fmt.Sprintf("%d:%d", tableID, at.Unix())
}

// NopLocker never blocks.
type NopLocker struct{}

func (NopLocker) Acquire(context.Context, uint64, time.Time) (func(), error) {
	return func() {}, nil
}

// LocalLocker is an in-process mutex keyed by slot. Entries are reference
// counted and dropped once no goroutine holds or waits for them.
type LocalLocker struct {
	mu    sync.Mutex
	slots map[string]*slotEntry
}

type slotEntry struct {
	ch   chan struct{}
	refs int
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{slots: make(map[string]*slotEntry)}
}

func (l *LocalLocker) Acquire(ctx context.Context, tableID uint64, at time.Time) (func(), error) {
	key := slotKey(tableID, at)

	l.mu.Lock()
	e, ok := l.slots[key]
	if !ok {
		e = &slotEntry{ch: make(chan struct{}, 1)}
		l.slots[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		l.unref(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			l.unref(key, e)
		})
	}, nil
}

func (l *LocalLocker) unref(key string, e *slotEntry) {
	l.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(l.slots, key)
	}
	l.mu.Unlock()
}

// size reports the number of tracked slots.
func (l *LocalLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}

// releaseScript deletes the key only if it still carries our token, so an
// expired lock taken over by another holder is left alone.
var releaseScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

// RedisLocker holds slots across processes using SET NX PX.
type RedisLocker struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
	retry  time.Duration
	log    *logger.Logger
}

func NewRedisLocker(rdb redis.UniversalClient, prefix string, ttl time.Duration, log *logger.Logger) *RedisLocker {
	if prefix == "" {
		prefix = "tb:slot"
	}
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}
	return &RedisLocker{rdb: rdb, prefix: prefix, ttl: ttl, retry: 25 * time.Millisecond, log: log}
}

func (l *RedisLocker) Acquire(ctx context.Context, tableID uint64, at time.Time) (func(), error) {
	key := l.prefix + ":" + slotKey(tableID, at)
	token := uuid.NewString()

	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("acquire slot lock %s: %w", key, err)
		}
		if ok {
			break
		}

		t := time.NewTimer(l.retry)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// Release must run even when the request context is already done.
			rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := releaseScript.Run(rctx, l.rdb, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
				// the key expires on its own after ttl
				l.log.Warn("release slot lock failed", "key", key, "error", err)
			}
		})
	}, nil
}
