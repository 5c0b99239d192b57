package usecase

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mxn2020/task-flow-sub000/internal/notification/entity"
)

// NextOccurrence resolves the next instant a rule fires, strictly after now,
// evaluated in the given location. Weekly days are Monday-first (1..7).
// Monthly days past the end of a month clamp to its last day, so a rule on
// day 31 fires on Feb 28 (29 in leap years), Apr 30 and so on.
func NextOccurrence(rule entity.Rule, now time.Time, loc *time.Location) (time.Time, error) {
	hour, minute, err := parseClockTime(rule.ScheduleTime)
	if err != nil {
		return time.Time{}, err
	}

	local := now.In(loc)

	switch rule.ScheduleType {
	case entity.ScheduleTypeDaily:
		at := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
		if !at.After(now) {
			at = at.AddDate(0, 0, 1)
		}
		return at, nil

	case entity.ScheduleTypeWeekly:
		if rule.ScheduleDay < 1 || rule.ScheduleDay > 7 {
			return time.Time{}, fmt.Errorf("weekly rule %d has invalid day %d", rule.ID, rule.ScheduleDay)
		}

		current := mondayFirstWeekday(local.Weekday())
		ahead := (int(rule.ScheduleDay) - current + 7) % 7
		at := time.Date(local.Year(), local.Month(), local.Day()+ahead, hour, minute, 0, 0, loc)
		if !at.After(now) {
			at = at.AddDate(0, 0, 7)
		}
		return at, nil

	case entity.ScheduleTypeMonthly:
		if rule.ScheduleDay < 1 || rule.ScheduleDay > 31 {
			return time.Time{}, fmt.Errorf("monthly rule %d has invalid day %d", rule.ID, rule.ScheduleDay)
		}

		at := monthlyOccurrence(local.Year(), local.Month(), int(rule.ScheduleDay), hour, minute, loc)
		if !at.After(now) {
			at = monthlyOccurrence(local.Year(), local.Month()+1, int(rule.ScheduleDay), hour, minute, loc)
		}
		return at, nil

	default:
		return time.Time{}, fmt.Errorf("rule %d has unknown schedule type %d", rule.ID, rule.ScheduleType)
	}
}

// monthlyOccurrence builds the instant for a monthly rule in the given month,
// clamping the day to the month's length.
func monthlyOccurrence(year int, month time.Month, day, hour, minute int, loc *time.Location) time.Time {
	if last := lastDayOfMonth(year, month, loc); day > last {
		day = last
	}
	return time.Date(year, month, day, hour, minute, 0, 0, loc)
}

func lastDayOfMonth(year int, month time.Month, loc *time.Location) int {
	// Day zero of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// mondayFirstWeekday maps Go's Sunday-first weekday onto 1=Monday..7=Sunday.
func mondayFirstWeekday(d time.Weekday) int {
	return (int(d)+6)%7 + 1
}

// parseClockTime parses "HH:MM" in 24-hour form.
func parseClockTime(v string) (hour, minute int, err error) {
	parts := strings.Split(v, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid schedule time %q", v)
	}

	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid schedule time %q", v)
	}

	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid schedule time %q", v)
	}

	return hour, minute, nil
}
