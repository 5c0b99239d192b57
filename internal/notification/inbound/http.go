package inbound

import (
	"net/http"

	"github.com/mxn2020/task-flow-sub000/internal/pkg/router"
)

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/internal/v1/notifications/expand", end.ExpandRules)
	r.POST("/internal/v1/notifications/process", end.ProcessDue)

	r.GET("/api/v1/notifications", end.ListInbox)
	r.GET("/api/v1/notifications/unread-count", end.CountUnread)
	r.PATCH("/api/v1/notifications/:id/read", end.MarkInboxRead)
	r.PATCH("/api/v1/notifications/:id/clicked", end.MarkInboxClicked)

	r.GET("/api/v1/notifications/settings", end.GetSettings)
	r.PUT("/api/v1/notifications/settings", end.UpdateSettings)

	r.POST("/api/v1/notifications/subscriptions", end.SubscriptionRegister)
	r.DELETE("/api/v1/notifications/subscriptions", end.SubscriptionRemove)

	r.GETRaw("/api/v1/notifications/stream", http.HandlerFunc(end.StreamNotifications))

	r.POST("/api/v1/admin/notification-rules", end.CreateRule)
	r.GET("/api/v1/admin/notification-rules", end.ListRules)
	r.PATCH("/api/v1/admin/notification-rules/:id", end.UpdateRule)
	r.DELETE("/api/v1/admin/notification-rules/:id", end.DeleteRule)
}
