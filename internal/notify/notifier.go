package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// Notifier delivers an order summary to the merchant.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// LogNotifier only logs summaries. Useful when no channel is configured.
type LogNotifier struct {
	Logger zerolog.Logger
}

// Notify implements Notifier.
func (n LogNotifier) Notify(_ context.Context, text string) error {
	n.Logger.Info().Int("length", len(text)).Str("summary", text).Msg("order_summary")
	return nil
}

// Multi sends to every notifier and joins their failures.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(ctx context.Context, text string) error {
	var joined error
	for i, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, text); err != nil {
			joined = errors.Join(joined, fmt.Errorf("notifier %d: %w", i, err))
		}
	}
	return joined
}
