// Package cache provides a generic single-flight memoizing cache with TTL
// and capacity eviction. The loader for a key runs at most once per live
// entry; concurrent callers share its outcome. A terminal loader failure is
// replaced by a fallback value so readers inside the TTL window do not
// hammer a broken upstream.
package cache

import (
	"context"
	"sync"
	"time"

	"astrodeck/internal/common/logger"
	"astrodeck/internal/common/metrics"
)

type Memo[T any] struct {
	name     string
	maxSize  int
	ttl      time.Duration
	fallback func() T
	log      logger.Logger

	now func() time.Time // injectable for tests

	mu      sync.Mutex
	seq     uint64
	entries map[string]*entry[T]
}

type entry[T any] struct {
	done      chan struct{}
	value     T
	writtenAt time.Time
	seq       uint64
}

// NewMemo creates a cache namespace. fallback is invoked to produce the
// value stored when a loader fails terminally; it must never be nil.
func NewMemo[T any](name string, maxSize int, ttl time.Duration, fallback func() T, log logger.Logger) *Memo[T] {
	return &Memo[T]{
		name:     name,
		maxSize:  maxSize,
		ttl:      ttl,
		fallback: fallback,
		log:      log,
		now:      time.Now,
		entries:  make(map[string]*entry[T]),
	}
}

// GetOrLoad returns the cached value for key, starting load on a miss.
// All callers racing on the same key share one loader invocation and
// observe the identical outcome. The returned error is only the waiting
// caller's context error; loader failures are absorbed into the fallback.
func (m *Memo[T]) GetOrLoad(ctx context.Context, key string, load func(context.Context) (T, error)) (T, error) {
	m.mu.Lock()
	if e, ok := m.entries[key]; ok && !m.expiredLocked(e) {
		m.mu.Unlock()
		metrics.CacheHits.WithLabelValues(m.name).Inc()
		return m.await(ctx, e)
	}

	e := &entry[T]{
		done:      make(chan struct{}),
		writtenAt: m.now(),
	}
	m.seq++
	e.seq = m.seq
	m.entries[key] = e
	m.evictLocked()
	m.mu.Unlock()

	metrics.CacheMisses.WithLabelValues(m.name).Inc()
	// The computation must outlive any individual waiter, so it runs
	// detached from the triggering caller's cancellation.
	go m.run(context.WithoutCancel(ctx), key, e, load)
	return m.await(ctx, e)
}

// Len reports the number of entries currently held, including expired ones
// not yet reclaimed.
func (m *Memo[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memo[T]) run(ctx context.Context, key string, e *entry[T], load func(context.Context) (T, error)) {
	value, err := load(ctx)
	if err != nil {
		metrics.CacheLoadFailures.WithLabelValues(m.name).Inc()
		m.log.Warn("cache loader failed, storing fallback", map[string]interface{}{
			"cache": m.name,
			"key":   key,
			"error": err.Error(),
		})
		value = m.fallback()
	}
	e.value = value
	close(e.done)
}

func (m *Memo[T]) await(ctx context.Context, e *entry[T]) (T, error) {
	select {
	case <-e.done:
		return e.value, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func (m *Memo[T]) expiredLocked(e *entry[T]) bool {
	return m.ttl > 0 && m.now().Sub(e.writtenAt) >= m.ttl
}

// evictLocked drops oldest-write-first entries until the map fits maxSize.
// Linear scan; namespaces top out at a few thousand entries.
func (m *Memo[T]) evictLocked() {
	if m.maxSize <= 0 {
		return
	}
	for len(m.entries) > m.maxSize {
		var oldestKey string
		var oldest *entry[T]
		for k, e := range m.entries {
			if oldest == nil || e.seq < oldest.seq {
				oldestKey, oldest = k, e
			}
		}
		delete(m.entries, oldestKey)
		metrics.CacheEvictions.WithLabelValues(m.name).Inc()
	}
}
