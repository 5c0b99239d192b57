package entity

import "time"

// Rule is an administrator-defined recurrence definition. The engine only
// ever reads active rules; lifecycle management happens on the admin surface.
type Rule struct {
	ID              int64
	Title           string
	MessageTemplate string
	ScheduleType    ScheduleType
	// ScheduleTime is the local time-of-day in "HH:MM" form. It is
	// interpreted in each target user's timezone, never the server's.
	ScheduleTime string
	// ScheduleDay is the weekday (1-7, Monday first) for weekly rules or the
	// day-of-month (1-31) for monthly rules. Zero for daily rules.
	ScheduleDay int16
	IsActive    bool
	CreatedBy   int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type CreateRule struct {
	ID              int64
	Title           string
	MessageTemplate string
	ScheduleType    ScheduleType
	ScheduleTime    string
	ScheduleDay     int16
	IsActive        bool
	CreatedBy       int64
}

type UpdateRule struct {
	ID              int64
	Title           *string
	MessageTemplate *string
	ScheduleType    *ScheduleType
	ScheduleTime    *string
	ScheduleDay     *int16
	IsActive        *bool
}
