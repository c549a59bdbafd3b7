package notify

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Fanout delivers each event to every notifier concurrently. One failing
// notifier does not stop the others; their errors are joined.
type Fanout []Notifier

// Notify implements Notifier.
func (f Fanout) Notify(ctx context.Context, evt Event) error {
	errs := make([]error, len(f))

	var g errgroup.Group
	for i, n := range f {
		i, n := i, n
		g.Go(func() error {
			errs[i] = n.Notify(ctx, evt)
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}

// LogNotifier writes events to the application log.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a log-only notifier.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With().Str("component", "log-notifier").Logger()}
}

// Notify implements Notifier.
func (n *LogNotifier) Notify(ctx context.Context, evt Event) error {
	n.logger.Info().
		Str("event_id", evt.ID.String()).
		Str("event_type", evt.Type).
		Str("order_id", evt.CorrelationID).
		RawJSON("payload", evt.Payload).
		Msg("order event")
	return nil
}
