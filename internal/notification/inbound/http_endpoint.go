package inbound

import (
	"github.com/mxn2020/task-flow-sub000/internal/notification/usecase"
	"github.com/mxn2020/task-flow-sub000/internal/pkg/router"
)

// headerSignature carries the HMAC of the request body on signature-gated
// endpoints.
const headerSignature = "X-TaskFlow-Signature"

type HTTPEndpoint struct {
	uc uc
}

// ExpandRules fans active rules out into queued deliveries.
// @Summary Expand notification rules
// @Description Expands every active rule into per-user queued deliveries. Signature-gated.
// @Tags Engine
// @Accept json
// @Produce json
// @Param X-TaskFlow-Signature header string true "HMAC of the request body"
// @Success 200 {object} router.successResponse{data=ExpandRulesResponse} "Expansion summary"
// @Failure 401 {object} router.errorResponse "Invalid signature"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /internal/v1/notifications/expand [post]
func (h *HTTPEndpoint) ExpandRules(r *router.Request) (any, error) {
	payload, err := r.ReadBody()
	if err != nil {
		return nil, err
	}

	out, err := h.uc.ExpandRules(r.Context(), usecase.ExpandRulesInput{
		Payload:   payload,
		Signature: r.Header.Get(headerSignature),
	})
	if err != nil {
		return nil, err
	}

	return ExpandRulesResponse{
		Rules:      out.Rules,
		Recipients: out.Recipients,
		Enqueued:   out.Enqueued,
	}, nil
}

// ProcessDue settles all deliveries that are due.
// @Summary Process due deliveries
// @Description Claims and settles every queued delivery whose instant has passed. Signature-gated.
// @Tags Engine
// @Accept json
// @Produce json
// @Param X-TaskFlow-Signature header string true "HMAC of the request body"
// @Success 200 {object} router.successResponse{data=ProcessDueResponse} "Processing summary"
// @Failure 401 {object} router.errorResponse "Invalid signature"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /internal/v1/notifications/process [post]
func (h *HTTPEndpoint) ProcessDue(r *router.Request) (any, error) {
	payload, err := r.ReadBody()
	if err != nil {
		return nil, err
	}

	out, err := h.uc.ProcessDue(r.Context(), usecase.ProcessDueInput{
		Payload:   payload,
		Signature: r.Header.Get(headerSignature),
	})
	if err != nil {
		return nil, err
	}

	return ProcessDueResponse{
		Due:       out.Due,
		Delivered: out.Delivered,
		Skipped:   out.Skipped,
	}, nil
}

// ListInbox returns the user's notification history.
// @Summary List notifications
// @Description Returns notifications for the authenticated user, most recent first.
// @Tags Notification
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Pagination limit"
// @Param offset query int false "Pagination offset"
// @Success 200 {object} router.successResponse{data=NotificationsResponse} "Notification list"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notifications [get]
func (h *HTTPEndpoint) ListInbox(r *router.Request) (any, error) {
	limit, err := r.GetQueryInt32("limit")
	if err != nil {
		return nil, err
	}
	offset, err := r.GetQueryInt32("offset")
	if err != nil {
		return nil, err
	}

	items, err := h.uc.ListInbox(r.Context(), usecase.ListInboxInput{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}

	resp := make([]NotificationResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, NotificationResponse{
			ID:               item.ID,
			Title:            item.Title,
			Message:          item.Message,
			NotificationType: item.NotificationType.String(),
			ItemID:           item.ItemID,
			ItemType:         item.ItemType,
			ReadAt:           item.ReadAt,
			ClickedAt:        item.ClickedAt,
			CreatedAt:        item.CreatedAt,
		})
	}

	return NotificationsResponse{Notifications: resp}, nil
}

// CountUnread returns the unread notification count.
// @Summary Count unread notifications
// @Description Returns how many notifications the authenticated user has not read.
// @Tags Notification
// @Security BearerAuth
// @Produce json
// @Success 200 {object} router.successResponse{data=UnreadCountResponse} "Unread count"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notifications/unread-count [get]
func (h *HTTPEndpoint) CountUnread(r *router.Request) (any, error) {
	count, err := h.uc.CountUnread(r.Context())
	if err != nil {
		return nil, err
	}

	return UnreadCountResponse{Count: count}, nil
}

// MarkInboxRead marks a notification as read.
// @Summary Mark notification read
// @Description Marks a notification as read for the authenticated user.
// @Tags Notification
// @Security BearerAuth
// @Param id path int true "Notification ID"
// @Success 204 "No Content"
// @Failure 400 {object} router.errorResponse "Invalid notification id"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 404 {object} router.errorResponse "Notification not found"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notifications/{id}/read [patch]
func (h *HTTPEndpoint) MarkInboxRead(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	return nil, h.uc.MarkInboxRead(r.Context(), usecase.MarkInboxReadInput{ID: id})
}

// MarkInboxClicked records a notification click.
// @Summary Mark notification clicked
// @Description Records that the authenticated user clicked a notification.
// @Tags Notification
// @Security BearerAuth
// @Param id path int true "Notification ID"
// @Success 204 "No Content"
// @Failure 400 {object} router.errorResponse "Invalid notification id"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 404 {object} router.errorResponse "Notification not found"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notifications/{id}/clicked [patch]
func (h *HTTPEndpoint) MarkInboxClicked(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	return nil, h.uc.MarkInboxClicked(r.Context(), usecase.MarkInboxClickedInput{ID: id})
}

// GetSettings returns the user's notification settings.
// @Summary Get notification settings
// @Description Returns notification settings for the authenticated user, defaults included.
// @Tags Notification
// @Security BearerAuth
// @Produce json
// @Success 200 {object} router.successResponse{data=SettingsResponse} "Settings"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notifications/settings [get]
func (h *HTTPEndpoint) GetSettings(r *router.Request) (any, error) {
	settings, err := h.uc.GetSettings(r.Context())
	if err != nil {
		return nil, err
	}

	return SettingsResponse{
		NotificationsEnabled:  settings.NotificationsEnabled,
		SoundEnabled:          settings.SoundEnabled,
		PushEnabled:           settings.PushEnabled,
		BrowserEnabled:        settings.BrowserEnabled,
		FirstReminderMinutes:  settings.FirstReminderMinutes,
		SecondReminderMinutes: settings.SecondReminderMinutes,
		Timezone:              settings.Timezone,
	}, nil
}

// UpdateSettings replaces the user's notification settings.
// @Summary Update notification settings
// @Description Replaces notification settings for the authenticated user.
// @Tags Notification
// @Security BearerAuth
// @Accept json
// @Param request body SettingsUpdateRequest true "Settings payload"
// @Success 204 "No Content"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notifications/settings [put]
func (h *HTTPEndpoint) UpdateSettings(r *router.Request) (any, error) {
	var req SettingsUpdateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	return nil, h.uc.UpdateSettings(r.Context(), usecase.UpdateSettingsInput{
		NotificationsEnabled:  req.NotificationsEnabled,
		SoundEnabled:          req.SoundEnabled,
		PushEnabled:           req.PushEnabled,
		BrowserEnabled:        req.BrowserEnabled,
		FirstReminderMinutes:  req.FirstReminderMinutes,
		SecondReminderMinutes: req.SecondReminderMinutes,
		Timezone:              req.Timezone,
	})
}

// SubscriptionRegister stores a Web Push subscription.
// @Summary Register push subscription
// @Description Stores a browser push subscription for the authenticated user.
// @Tags Notification
// @Security BearerAuth
// @Accept json
// @Param request body SubscriptionRegisterRequest true "Subscription payload"
// @Success 204 "No Content"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notifications/subscriptions [post]
func (h *HTTPEndpoint) SubscriptionRegister(r *router.Request) (any, error) {
	var req SubscriptionRegisterRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	return nil, h.uc.SubscriptionRegister(r.Context(), usecase.SubscriptionRegisterInput{
		Endpoint:   req.Endpoint,
		AuthSecret: req.Keys.Auth,
		PublicKey:  req.Keys.P256dh,
	})
}

// SubscriptionRemove deletes a Web Push subscription.
// @Summary Remove push subscription
// @Description Deletes a browser push subscription for the authenticated user.
// @Tags Notification
// @Security BearerAuth
// @Accept json
// @Param request body SubscriptionRemoveRequest true "Subscription payload"
// @Success 204 "No Content"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 404 {object} router.errorResponse "Subscription not found"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notifications/subscriptions [delete]
func (h *HTTPEndpoint) SubscriptionRemove(r *router.Request) (any, error) {
	var req SubscriptionRemoveRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	return nil, h.uc.SubscriptionRemove(r.Context(), usecase.SubscriptionRemoveInput{Endpoint: req.Endpoint})
}

// CreateRule creates a notification rule.
// @Summary Create notification rule
// @Description Creates a recurrence rule. Admin only.
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Param request body RuleCreateRequest true "Rule payload"
// @Success 204 "No Content"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Admin access required"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/admin/notification-rules [post]
func (h *HTTPEndpoint) CreateRule(r *router.Request) (any, error) {
	var req RuleCreateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	return nil, h.uc.CreateRule(r.Context(), usecase.CreateRuleInput{
		Title:           req.Title,
		MessageTemplate: req.MessageTemplate,
		ScheduleType:    req.ScheduleType,
		ScheduleTime:    req.ScheduleTime,
		ScheduleDay:     req.ScheduleDay,
		IsActive:        req.IsActive,
	})
}

// ListRules returns all notification rules.
// @Summary List notification rules
// @Description Returns every rule, active or not. Admin only.
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} router.successResponse{data=RulesResponse} "Rule list"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Admin access required"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/admin/notification-rules [get]
func (h *HTTPEndpoint) ListRules(r *router.Request) (any, error) {
	rules, err := h.uc.ListRules(r.Context())
	if err != nil {
		return nil, err
	}

	resp := make([]RuleResponse, 0, len(rules))
	for _, rule := range rules {
		resp = append(resp, RuleResponse{
			ID:              rule.ID,
			Title:           rule.Title,
			MessageTemplate: rule.MessageTemplate,
			ScheduleType:    rule.ScheduleType.String(),
			ScheduleTime:    rule.ScheduleTime,
			ScheduleDay:     rule.ScheduleDay,
			IsActive:        rule.IsActive,
			CreatedBy:       rule.CreatedBy,
			CreatedAt:       rule.CreatedAt,
			UpdatedAt:       rule.UpdatedAt,
		})
	}

	return RulesResponse{Rules: resp}, nil
}

// UpdateRule partially updates a notification rule.
// @Summary Update notification rule
// @Description Updates the provided fields of a rule. Admin only.
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Param id path int true "Rule ID"
// @Param request body RuleUpdateRequest true "Rule payload"
// @Success 204 "No Content"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Admin access required"
// @Failure 404 {object} router.errorResponse "Rule not found"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/admin/notification-rules/{id} [patch]
func (h *HTTPEndpoint) UpdateRule(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	var req RuleUpdateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	return nil, h.uc.UpdateRule(r.Context(), usecase.UpdateRuleInput{
		ID:              id,
		Title:           req.Title,
		MessageTemplate: req.MessageTemplate,
		ScheduleType:    req.ScheduleType,
		ScheduleTime:    req.ScheduleTime,
		ScheduleDay:     req.ScheduleDay,
		IsActive:        req.IsActive,
	})
}

// DeleteRule soft deletes a notification rule.
// @Summary Delete notification rule
// @Description Soft deletes a rule so it stops expanding. Admin only.
// @Tags Admin
// @Security BearerAuth
// @Param id path int true "Rule ID"
// @Success 204 "No Content"
// @Failure 400 {object} router.errorResponse "Invalid rule id"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Admin access required"
// @Failure 404 {object} router.errorResponse "Rule not found"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/admin/notification-rules/{id} [delete]
func (h *HTTPEndpoint) DeleteRule(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	return nil, h.uc.DeleteRule(r.Context(), usecase.DeleteRuleInput{ID: id})
}
