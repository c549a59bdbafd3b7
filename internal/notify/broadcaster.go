package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Broadcaster is the Sink used by the services. Each event is delivered on
// its own goroutine with a context detached from the request, so a client
// disconnect cannot cancel delivery of an already-committed order.
type Broadcaster struct {
	notifier Notifier
	timeout  time.Duration
	logger   zerolog.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewBroadcaster creates a broadcaster delivering through notifier.
func NewBroadcaster(notifier Notifier, timeout time.Duration, logger zerolog.Logger) *Broadcaster {
	return &Broadcaster{
		notifier: notifier,
		timeout:  timeout,
		logger:   logger.With().Str("component", "broadcaster").Logger(),
	}
}

// Publish schedules delivery of evt and returns immediately.
func (b *Broadcaster) Publish(ctx context.Context, evt Event) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		b.logger.Warn().
			Str("event_type", evt.Type).
			Str("order_id", evt.CorrelationID).
			Msg("broadcaster closed, dropping event")
		return
	}
	b.wg.Add(1)
	b.mu.Unlock()

	go func() {
		defer b.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				b.logger.Error().
					Interface("panic", r).
					Str("event_type", evt.Type).
					Str("order_id", evt.CorrelationID).
					Msg("notifier panicked")
			}
		}()

		deliverCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.timeout)
		defer cancel()

		start := time.Now()
		if err := b.notifier.Notify(deliverCtx, evt); err != nil {
			b.logger.Error().
				Err(err).
				Str("event_id", evt.ID.String()).
				Str("event_type", evt.Type).
				Str("order_id", evt.CorrelationID).
				Msg("failed to deliver event")
			return
		}

		b.logger.Debug().
			Str("event_type", evt.Type).
			Str("order_id", evt.CorrelationID).
			Dur("duration", time.Since(start)).
			Msg("event delivered")
	}()
}

// Close stops accepting events and waits for in-flight deliveries until ctx
// expires.
func (b *Broadcaster) Close(ctx context.Context) error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("timed out waiting for event delivery: %w", ctx.Err())
	}
}
