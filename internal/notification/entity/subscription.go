package entity

import (
	"errors"
	"time"
)

// ErrSubscriptionGone indicates the push service no longer knows the
// endpoint. The subscription is dead and will never deliver again.
var ErrSubscriptionGone = errors.New("push subscription gone")

// PushSubscription is one registered browser/device endpoint for the Web
// Push transport. The transport may invalidate it at any time; the engine
// reports dead endpoints but does not delete them.
type PushSubscription struct {
	ID         int64
	UserID     int64
	Endpoint   string
	AuthSecret string
	PublicKey  string
	CreatedAt  time.Time
}
