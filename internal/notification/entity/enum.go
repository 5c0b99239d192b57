package entity

import "strings"

type ScheduleType int16

const (
	ScheduleTypeUnknown ScheduleType = 0
	ScheduleTypeDaily   ScheduleType = 1
	ScheduleTypeWeekly  ScheduleType = 2
	ScheduleTypeMonthly ScheduleType = 3
)

func ScheduleTypeFromString(raw string) ScheduleType {
	switch strings.TrimSpace(raw) {
	case "daily":
		return ScheduleTypeDaily
	case "weekly":
		return ScheduleTypeWeekly
	case "monthly":
		return ScheduleTypeMonthly
	default:
		return ScheduleTypeUnknown
	}
}

func (t ScheduleType) String() string {
	switch t {
	case ScheduleTypeDaily:
		return "daily"
	case ScheduleTypeWeekly:
		return "weekly"
	case ScheduleTypeMonthly:
		return "monthly"
	default:
		return "unknown"
	}
}

// NotificationType tags a delivery with its origin so clients can route
// deep links and users can tell reminders apart in the inbox.
type NotificationType string

const (
	NotificationTypeScheduled      NotificationType = "scheduled"
	NotificationTypeDeadlineFirst  NotificationType = "deadline_first"
	NotificationTypeDeadlineSecond NotificationType = "deadline_second"
)

func (nt NotificationType) String() string {
	return string(nt)
}
