// Package batcher provides a generic buffered batch processor with rate limiting.
package batcher

import (
	"context"
	"sync"
	"time"

	"go.uber.org/ratelimit"
	"go.uber.org/zap"
)

// Batcher buffers items and flushes them once the buffer reaches flushSize or
// the flush interval elapses, whichever comes first. Flushes are rate limited.
type Batcher[T any] struct {
	logger        *zap.Logger
	flush         func(context.Context, []T) error
	flushSize     int
	flushInterval time.Duration
	limiter       ratelimit.Limiter

	items chan T
	stop  chan struct{}
	wg    sync.WaitGroup
}

// New constructs a Batcher. flush is invoked from a single background
// goroutine, so it does not need to be safe for concurrent use.
func New[T any](
	logger *zap.Logger,
	flush func(context.Context, []T) error,
	flushSize int,
	flushInterval time.Duration,
	flushesPerSecond int,
) *Batcher[T] {
	return &Batcher[T]{
		logger:        logger,
		flush:         flush,
		flushSize:     flushSize,
		flushInterval: flushInterval,
		limiter:       ratelimit.New(flushesPerSecond),
		items:         make(chan T, flushSize*2),
		stop:          make(chan struct{}),
	}
}

// Start begins the background flushing loop.
func (b *Batcher[T]) Start(ctx context.Context) {
	b.wg.Add(1)
	go b.run(ctx)
}

// Stop drains the pending buffer and stops the background loop.
func (b *Batcher[T]) Stop() {
	close(b.stop)
	b.wg.Wait()
}

// Add queues an item for the next flush, respecting context cancellation.
func (b *Batcher[T]) Add(ctx context.Context, item T) error {
	select {
	case <-b.stop:
		return context.Canceled
	default:
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case b.items <- item:
		return nil
	}
}

func (b *Batcher[T]) run(ctx context.Context) {
	defer b.wg.Done()

	ticker := time.NewTicker(b.flushInterval)
	defer ticker.Stop()

	buf := make([]T, 0, b.flushSize)

	doFlush := func() {
		if len(buf) == 0 {
			return
		}
		b.limiter.Take()
		if err := b.flush(ctx, buf); err != nil {
			b.logger.Error("batch not flushed", zap.Int("size", len(buf)), zap.Error(err))
		} else {
			b.logger.Debug("batch flushed", zap.Int("size", len(buf)))
		}
		buf = buf[:0]
	}

	drain := func() {
		for {
			select {
			case item := <-b.items:
				buf = append(buf, item)
				if len(buf) >= b.flushSize {
					doFlush()
				}
			default:
				doFlush()
				return
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			drain()
			return

		case <-b.stop:
			drain()
			return

		case item := <-b.items:
			buf = append(buf, item)
			if len(buf) >= b.flushSize {
				doFlush()
			}

		case <-ticker.C:
			doFlush()
		}
	}
}
