package inbound

import "time"

type ExpandRulesResponse struct {
	Rules      int   `json:"rules"`
	Recipients int   `json:"recipients"`
	Enqueued   int64 `json:"enqueued"`
}

type ProcessDueResponse struct {
	Due       int   `json:"due"`
	Delivered int64 `json:"delivered"`
	Skipped   int64 `json:"skipped"`
}

type NotificationResponse struct {
	ID               int64      `json:"id"`
	Title            string     `json:"title"`
	Message          string     `json:"message"`
	NotificationType string     `json:"notification_type"`
	ItemID           int64      `json:"item_id,omitempty"`
	ItemType         string     `json:"item_type,omitempty"`
	ReadAt           *time.Time `json:"read_at,omitempty"`
	ClickedAt        *time.Time `json:"clicked_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

type NotificationsResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
}

type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

type SettingsResponse struct {
	NotificationsEnabled  bool   `json:"notifications_enabled"`
	SoundEnabled          bool   `json:"sound_enabled"`
	PushEnabled           bool   `json:"push_enabled"`
	BrowserEnabled        bool   `json:"browser_enabled"`
	FirstReminderMinutes  int32  `json:"first_reminder_minutes"`
	SecondReminderMinutes int32  `json:"second_reminder_minutes"`
	Timezone              string `json:"timezone"`
}

type SettingsUpdateRequest struct {
	NotificationsEnabled  bool   `json:"notifications_enabled"`
	SoundEnabled          bool   `json:"sound_enabled"`
	PushEnabled           bool   `json:"push_enabled"`
	BrowserEnabled        bool   `json:"browser_enabled"`
	FirstReminderMinutes  int32  `json:"first_reminder_minutes"`
	SecondReminderMinutes int32  `json:"second_reminder_minutes"`
	Timezone              string `json:"timezone"`
}

type SubscriptionRegisterRequest struct {
	Endpoint string           `json:"endpoint"`
	Keys     SubscriptionKeys `json:"keys"`
}

type SubscriptionKeys struct {
	Auth   string `json:"auth"`
	P256dh string `json:"p256dh"`
}

type SubscriptionRemoveRequest struct {
	Endpoint string `json:"endpoint"`
}

type RuleCreateRequest struct {
	Title           string `json:"title"`
	MessageTemplate string `json:"message_template"`
	ScheduleType    string `json:"schedule_type"`
	ScheduleTime    string `json:"schedule_time"`
	ScheduleDay     int16  `json:"schedule_day"`
	IsActive        bool   `json:"is_active"`
}

type RuleUpdateRequest struct {
	Title           *string `json:"title"`
	MessageTemplate *string `json:"message_template"`
	ScheduleType    *string `json:"schedule_type"`
	ScheduleTime    *string `json:"schedule_time"`
	ScheduleDay     *int16  `json:"schedule_day"`
	IsActive        *bool   `json:"is_active"`
}

type RuleResponse struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	MessageTemplate string    `json:"message_template"`
	ScheduleType    string    `json:"schedule_type"`
	ScheduleTime    string    `json:"schedule_time"`
	ScheduleDay     int16     `json:"schedule_day"`
	IsActive        bool      `json:"is_active"`
	CreatedBy       int64     `json:"created_by"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type RulesResponse struct {
	Rules []RuleResponse `json:"rules"`
}
