package events

// Topic constants for order events emitted by the storefront.
const (
	TopicOrderSubmitted      = "order.submitted"
	TopicOrderManualFallback = "order.manual_fallback"
)

// OrderTopics returns the topics that carry an order summary.
func OrderTopics() []string {
	return []string{TopicOrderSubmitted, TopicOrderManualFallback}
}
