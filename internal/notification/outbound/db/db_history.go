package db

import (
	"context"

	"github.com/mxn2020/task-flow-sub000/internal/notification/entity"
)

// CreateHistory inserts the inbox record for a processed delivery. The
// delivery key carries a unique constraint, so a retried delivery inserts
// nothing; the return value reports whether a row was actually written.
func (s *DB) CreateHistory(ctx context.Context, in entity.CreateHistory) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "CreateHistory")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `
		INSERT INTO notification_history
			(id, user_id, delivery_key, title, message, notification_type, item_id, item_type)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7::bigint, 0), NULLIF($8, ''))
		ON CONFLICT (delivery_key) DO NOTHING`,
		in.ID, in.UserID, in.DeliveryKey, in.Title, in.Message, in.NotificationType.String(), in.ItemID, in.ItemType)
	if err != nil {
		return false, s.mapError(err)
	}

	return tag.RowsAffected() > 0, nil
}

func (s *DB) ListHistory(ctx context.Context, userID int64, limit, offset int32) (_ []entity.HistoryRecord, err error) {
	ctx, span := s.startSpan(ctx, "ListHistory")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, `
		SELECT id, user_id, delivery_key, title, message, notification_type,
		       COALESCE(item_id, 0), COALESCE(item_type, ''), created_at, read_at, clicked_at
		FROM notification_history
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	var items []entity.HistoryRecord
	for rows.Next() {
		var (
			r                entity.HistoryRecord
			notificationType string
		)
		if scanErr := rows.Scan(
			&r.ID,
			&r.UserID,
			&r.DeliveryKey,
			&r.Title,
			&r.Message,
			&notificationType,
			&r.ItemID,
			&r.ItemType,
			&r.CreatedAt,
			&r.ReadAt,
			&r.ClickedAt,
		); scanErr != nil {
			return nil, s.mapError(scanErr)
		}
		r.NotificationType = entity.NotificationType(notificationType)
		items = append(items, r)
	}

	return items, s.mapError(rows.Err())
}

func (s *DB) CountUnreadHistory(ctx context.Context, userID int64) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "CountUnreadHistory")
	defer func() { s.endSpan(span, err) }()

	var count int64
	err = s.conn.QueryRow(ctx, `
		SELECT COUNT(*) FROM notification_history
		WHERE user_id = $1 AND read_at IS NULL`, userID).Scan(&count)
	return count, s.mapError(err)
}

// MarkHistoryRead stamps read_at once; re-reading keeps the first timestamp.
func (s *DB) MarkHistoryRead(ctx context.Context, userID, historyID int64) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "MarkHistoryRead")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `
		UPDATE notification_history
		SET read_at = NOW()
		WHERE id = $1 AND user_id = $2 AND read_at IS NULL`, historyID, userID)
	if err != nil {
		return false, s.mapError(err)
	}

	return tag.RowsAffected() > 0, nil
}

// MarkHistoryClicked stamps clicked_at, and read_at too when the click is the
// first interaction.
func (s *DB) MarkHistoryClicked(ctx context.Context, userID, historyID int64) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "MarkHistoryClicked")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `
		UPDATE notification_history
		SET clicked_at = COALESCE(clicked_at, NOW()), read_at = COALESCE(read_at, NOW())
		WHERE id = $1 AND user_id = $2`, historyID, userID)
	if err != nil {
		return false, s.mapError(err)
	}

	return tag.RowsAffected() > 0, nil
}
