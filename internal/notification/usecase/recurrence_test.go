package usecase

import (
	"testing"
	"time"

	"github.com/mxn2020/task-flow-sub000/internal/notification/entity"
)

func TestNextOccurrence(t *testing.T) {

	t.Run("DailyBeforeTime", func(t *testing.T) {

		// Arrange
		rule := entity.Rule{ID: 1, ScheduleType: entity.ScheduleTypeDaily, ScheduleTime: "09:00"}
		now := time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC)

		// Act
		at, err := NextOccurrence(rule, now, time.UTC)

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
		if !at.Equal(want) {
			t.Fatalf("expected %v, got %v", want, at)
		}
	})

	t.Run("DailyAfterTimeRollsToTomorrow", func(t *testing.T) {

		// Arrange
		rule := entity.Rule{ID: 1, ScheduleType: entity.ScheduleTypeDaily, ScheduleTime: "09:00"}
		now := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)

		// Act
		at, err := NextOccurrence(rule, now, time.UTC)

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC)
		if !at.Equal(want) {
			t.Fatalf("expected %v, got %v", want, at)
		}
	})

	t.Run("DailyInUserTimezone", func(t *testing.T) {

		// Arrange
		jakarta, err := time.LoadLocation("Asia/Jakarta")
		if err != nil {
			t.Fatalf("load location: %v", err)
		}
		rule := entity.Rule{ID: 1, ScheduleType: entity.ScheduleTypeDaily, ScheduleTime: "09:00"}
		// 01:00 UTC is 08:00 in Jakarta, so today's 09:00 local is still ahead.
		now := time.Date(2024, 1, 2, 1, 0, 0, 0, time.UTC)

		// Act
		at, err := NextOccurrence(rule, now, jakarta)

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := time.Date(2024, 1, 2, 9, 0, 0, 0, jakarta)
		if !at.Equal(want) {
			t.Fatalf("expected %v, got %v", want, at)
		}
	})

	t.Run("WeeklyNextWednesday", func(t *testing.T) {

		// Arrange
		// 2024-01-01 is a Monday; day 3 is Wednesday.
		rule := entity.Rule{ID: 2, ScheduleType: entity.ScheduleTypeWeekly, ScheduleTime: "10:30", ScheduleDay: 3}
		now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

		// Act
		at, err := NextOccurrence(rule, now, time.UTC)

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := time.Date(2024, 1, 3, 10, 30, 0, 0, time.UTC)
		if !at.Equal(want) {
			t.Fatalf("expected %v, got %v", want, at)
		}
	})

	t.Run("WeeklySameDayPastTimeRollsAWeek", func(t *testing.T) {

		// Arrange
		// 2024-01-01 is a Monday; rule fires Mondays at 08:00, already past.
		rule := entity.Rule{ID: 2, ScheduleType: entity.ScheduleTypeWeekly, ScheduleTime: "08:00", ScheduleDay: 1}
		now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

		// Act
		at, err := NextOccurrence(rule, now, time.UTC)

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := time.Date(2024, 1, 8, 8, 0, 0, 0, time.UTC)
		if !at.Equal(want) {
			t.Fatalf("expected %v, got %v", want, at)
		}
	})

	t.Run("WeeklySundayAsSeven", func(t *testing.T) {

		// Arrange
		rule := entity.Rule{ID: 2, ScheduleType: entity.ScheduleTypeWeekly, ScheduleTime: "09:00", ScheduleDay: 7}
		now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

		// Act
		at, err := NextOccurrence(rule, now, time.UTC)

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := time.Date(2024, 1, 7, 9, 0, 0, 0, time.UTC)
		if !at.Equal(want) {
			t.Fatalf("expected %v, got %v", want, at)
		}
	})

	t.Run("MonthlyClampsToLeapFebruary", func(t *testing.T) {

		// Arrange
		rule := entity.Rule{ID: 3, ScheduleType: entity.ScheduleTypeMonthly, ScheduleTime: "09:00", ScheduleDay: 31}
		now := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

		// Act
		at, err := NextOccurrence(rule, now, time.UTC)

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := time.Date(2024, 2, 29, 9, 0, 0, 0, time.UTC)
		if !at.Equal(want) {
			t.Fatalf("expected %v, got %v", want, at)
		}
	})

	t.Run("MonthlyClampsToShortFebruary", func(t *testing.T) {

		// Arrange
		rule := entity.Rule{ID: 3, ScheduleType: entity.ScheduleTypeMonthly, ScheduleTime: "09:00", ScheduleDay: 31}
		now := time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)

		// Act
		at, err := NextOccurrence(rule, now, time.UTC)

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := time.Date(2023, 2, 28, 9, 0, 0, 0, time.UTC)
		if !at.Equal(want) {
			t.Fatalf("expected %v, got %v", want, at)
		}
	})

	t.Run("MonthlyPastDayRollsToNextMonth", func(t *testing.T) {

		// Arrange
		rule := entity.Rule{ID: 3, ScheduleType: entity.ScheduleTypeMonthly, ScheduleTime: "09:00", ScheduleDay: 15}
		now := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)

		// Act
		at, err := NextOccurrence(rule, now, time.UTC)

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := time.Date(2024, 2, 15, 9, 0, 0, 0, time.UTC)
		if !at.Equal(want) {
			t.Fatalf("expected %v, got %v", want, at)
		}
	})

	t.Run("MonthlyDecemberRollsToJanuary", func(t *testing.T) {

		// Arrange
		rule := entity.Rule{ID: 3, ScheduleType: entity.ScheduleTypeMonthly, ScheduleTime: "09:00", ScheduleDay: 5}
		now := time.Date(2024, 12, 10, 0, 0, 0, 0, time.UTC)

		// Act
		at, err := NextOccurrence(rule, now, time.UTC)

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := time.Date(2025, 1, 5, 9, 0, 0, 0, time.UTC)
		if !at.Equal(want) {
			t.Fatalf("expected %v, got %v", want, at)
		}
	})

	t.Run("KeepsWallClockAcrossDST", func(t *testing.T) {

		// Arrange
		york, err := time.LoadLocation("America/New_York")
		if err != nil {
			t.Fatalf("load location: %v", err)
		}
		rule := entity.Rule{ID: 1, ScheduleType: entity.ScheduleTypeDaily, ScheduleTime: "09:00"}
		// 2024-03-10 is the US spring-forward date.
		now := time.Date(2024, 3, 9, 10, 0, 0, 0, york)

		// Act
		at, err := NextOccurrence(rule, now, york)

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if at.Hour() != 9 || at.Minute() != 0 {
			t.Fatalf("expected 09:00 wall clock, got %02d:%02d", at.Hour(), at.Minute())
		}
	})

	t.Run("RejectsBadScheduleTime", func(t *testing.T) {

		// Arrange
		rule := entity.Rule{ID: 1, ScheduleType: entity.ScheduleTypeDaily, ScheduleTime: "25:00"}

		// Act
		_, err := NextOccurrence(rule, time.Now(), time.UTC)

		// Assert
		if err == nil {
			t.Fatalf("expected error for invalid schedule time")
		}
	})

	t.Run("RejectsBadWeeklyDay", func(t *testing.T) {

		// Arrange
		rule := entity.Rule{ID: 2, ScheduleType: entity.ScheduleTypeWeekly, ScheduleTime: "09:00", ScheduleDay: 8}

		// Act
		_, err := NextOccurrence(rule, time.Now(), time.UTC)

		// Assert
		if err == nil {
			t.Fatalf("expected error for invalid weekly day")
		}
	})

	t.Run("RejectsUnknownScheduleType", func(t *testing.T) {

		// Arrange
		rule := entity.Rule{ID: 4, ScheduleType: entity.ScheduleTypeUnknown, ScheduleTime: "09:00"}

		// Act
		_, err := NextOccurrence(rule, time.Now(), time.UTC)

		// Assert
		if err == nil {
			t.Fatalf("expected error for unknown schedule type")
		}
	})
}
