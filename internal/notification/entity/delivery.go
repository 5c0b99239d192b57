package entity

import "time"

// ScheduledDelivery is one obligation to notify one user at one instant.
// It lives only in the delivery queue: created by the fan-out expander (or
// the deadline-reminder producer), removed by the processor once its side
// effects are committed. It is never updated in place.
type ScheduledDelivery struct {
	// Key uniquely identifies the delivery in the queue and doubles as the
	// idempotency key for history inserts.
	Key              string           `json:"key"`
	UserID           int64            `json:"user_id"`
	Title            string           `json:"title"`
	Message          string           `json:"message"`
	ScheduledFor     time.Time        `json:"scheduled_for"`
	ItemID           int64            `json:"item_id,omitempty"`
	ItemType         string           `json:"item_type,omitempty"`
	NotificationType NotificationType `json:"notification_type"`
}
