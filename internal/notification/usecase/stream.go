package usecase

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/mxn2020/task-flow-sub000/internal/notification/entity"
)

// StreamEvent represents a delivered notification pushed over SSE.
type StreamEvent struct {
	ID               int64                   `json:"id"`
	UserID           int64                   `json:"user_id"`
	Title            string                  `json:"title"`
	Message          string                  `json:"message"`
	NotificationType entity.NotificationType `json:"notification_type"`
	ItemID           int64                   `json:"item_id,omitempty"`
	ItemType         string                  `json:"item_type,omitempty"`
	CreatedAt        time.Time               `json:"created_at"`
}

type subscriber struct {
	ch     chan StreamEvent
	closed atomic.Bool
}

// StreamNotifications registers a stream for a user and closes it when ctx is done.
func (s *Usecase) StreamNotifications(ctx context.Context, userID int64) <-chan StreamEvent {
	sub := &subscriber{ch: make(chan StreamEvent, 10)}

	s.streamMu.Lock()
	if s.streams[userID] == nil {
		s.streams[userID] = make(map[*subscriber]struct{})
	}
	s.streams[userID][sub] = struct{}{}
	s.streamMu.Unlock()

	go func() {
		<-ctx.Done()
		s.streamMu.Lock()
		if subs := s.streams[userID]; subs != nil {
			delete(subs, sub)
			if len(subs) == 0 {
				delete(s.streams, userID)
			}
		}
		// The channel must close under the write lock so no publisher holding
		// the read lock can be mid-send.
		sub.closed.Store(true)
		close(sub.ch)
		s.streamMu.Unlock()
	}()

	return sub.ch
}

func (s *Usecase) publishNotification(evt StreamEvent) {
	s.streamMu.RLock()
	defer s.streamMu.RUnlock()

	for sub := range s.streams[evt.UserID] {
		if sub.closed.Load() {
			continue
		}

		select {
		case sub.ch <- evt:
		default:
		}
	}
}

func (s *Usecase) buildStreamEvent(h entity.CreateHistory) StreamEvent {
	return StreamEvent{
		ID:               h.ID,
		UserID:           h.UserID,
		Title:            h.Title,
		Message:          h.Message,
		NotificationType: h.NotificationType,
		ItemID:           h.ItemID,
		ItemType:         h.ItemType,
		CreatedAt:        s.clock.Now(),
	}
}
