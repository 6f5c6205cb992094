package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/noah-isme/pizzeria-storefront/internal/events"
	"github.com/noah-isme/pizzeria-storefront/internal/obs"
)

// EventPayload is the shape order events carry for the relay.
type EventPayload struct {
	Reference string `json:"reference"`
	Manual    bool   `json:"manual"`
	Summary   string `json:"summary"`
	Link      string `json:"link,omitempty"`
}

// EventRelay forwards order events to a Notifier as formatted summaries.
type EventRelay struct {
	Target Notifier
	Topics []string
	Logger *zerolog.Logger
}

func (r *EventRelay) handles(topic string) bool {
	if len(r.Topics) == 0 {
		return true
	}
	for _, t := range r.Topics {
		if t == topic {
			return true
		}
	}
	return false
}

// Notify implements events.Notifier.
func (r *EventRelay) Notify(ctx context.Context, ev events.Event) error {
	if r == nil || r.Target == nil || !r.handles(ev.Topic) {
		return nil
	}
	var payload EventPayload
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		obs.CountNotification("invalid")
		return fmt.Errorf("notify: decode %s payload: %w", ev.Topic, err)
	}
	if payload.Summary == "" {
		obs.CountNotification("skipped")
		return nil
	}
	if err := r.Target.Notify(ctx, payload.Summary); err != nil {
		obs.CountNotification("failed")
		if r.Logger != nil {
			r.Logger.Warn().Err(err).Str("event_id", ev.ID).Str("reference", payload.Reference).Msg("order notification failed")
		}
		return err
	}
	obs.CountNotification("sent")
	return nil
}
