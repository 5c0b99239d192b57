package entity

import "time"

// HistoryRecord is an immutable inbox/audit row written once per processed
// delivery. Read and click timestamps are the only mutable fields.
type HistoryRecord struct {
	ID               int64
	UserID           int64
	DeliveryKey      string
	Title            string
	Message          string
	NotificationType NotificationType
	ItemID           int64
	ItemType         string
	CreatedAt        time.Time
	ReadAt           *time.Time
	ClickedAt        *time.Time
}

type CreateHistory struct {
	ID               int64
	UserID           int64
	DeliveryKey      string
	Title            string
	Message          string
	NotificationType NotificationType
	ItemID           int64
	ItemType         string
}
