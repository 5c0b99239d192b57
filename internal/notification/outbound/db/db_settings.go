package db

import (
	"context"

	"github.com/mxn2020/task-flow-sub000/internal/notification/entity"
)

func (s *DB) GetSettings(ctx context.Context, userID int64) (_ *entity.Settings, err error) {
	ctx, span := s.startSpan(ctx, "GetSettings")
	defer func() { s.endSpan(span, err) }()

	var st entity.Settings
	err = s.conn.QueryRow(ctx, `
		SELECT user_id, notifications_enabled, sound_enabled, push_enabled, browser_enabled,
		       first_reminder_minutes, second_reminder_minutes, timezone
		FROM notification_settings
		WHERE user_id = $1`, userID).Scan(
		&st.UserID,
		&st.NotificationsEnabled,
		&st.SoundEnabled,
		&st.PushEnabled,
		&st.BrowserEnabled,
		&st.FirstReminderMinutes,
		&st.SecondReminderMinutes,
		&st.Timezone,
	)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &st, nil
}

func (s *DB) UpsertSettings(ctx context.Context, in entity.Settings) (err error) {
	ctx, span := s.startSpan(ctx, "UpsertSettings")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		INSERT INTO notification_settings
			(user_id, notifications_enabled, sound_enabled, push_enabled, browser_enabled,
			 first_reminder_minutes, second_reminder_minutes, timezone)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			notifications_enabled   = EXCLUDED.notifications_enabled,
			sound_enabled           = EXCLUDED.sound_enabled,
			push_enabled            = EXCLUDED.push_enabled,
			browser_enabled         = EXCLUDED.browser_enabled,
			first_reminder_minutes  = EXCLUDED.first_reminder_minutes,
			second_reminder_minutes = EXCLUDED.second_reminder_minutes,
			timezone                = EXCLUDED.timezone`,
		in.UserID, in.NotificationsEnabled, in.SoundEnabled, in.PushEnabled, in.BrowserEnabled,
		in.FirstReminderMinutes, in.SecondReminderMinutes, in.Timezone)
	return s.mapError(err)
}

// ListRecipients returns every user eligible for rule fan-out: active users
// whose settings do not turn notifications off. Users without a settings row
// fall back to the defaults, which keep notifications on.
func (s *DB) ListRecipients(ctx context.Context) (_ []entity.Recipient, err error) {
	ctx, span := s.startSpan(ctx, "ListRecipients")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, `
		SELECT u.id, COALESCE(ns.timezone, 'UTC')
		FROM users u
		LEFT JOIN notification_settings ns ON ns.user_id = u.id
		WHERE u.deleted_at IS NULL
		  AND COALESCE(ns.notifications_enabled, TRUE)
		ORDER BY u.id`)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	var items []entity.Recipient
	for rows.Next() {
		var r entity.Recipient
		if scanErr := rows.Scan(&r.UserID, &r.Timezone); scanErr != nil {
			return nil, s.mapError(scanErr)
		}
		items = append(items, r)
	}

	return items, s.mapError(rows.Err())
}
