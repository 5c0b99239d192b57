package db

import (
	"context"

	"github.com/mxn2020/task-flow-sub000/internal/notification/entity"
)

func (s *DB) ListSubscriptions(ctx context.Context, userID int64) (_ []entity.PushSubscription, err error) {
	ctx, span := s.startSpan(ctx, "ListSubscriptions")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, `
		SELECT id, user_id, endpoint, auth_secret, public_key, created_at
		FROM push_subscriptions
		WHERE user_id = $1
		ORDER BY id`, userID)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	var items []entity.PushSubscription
	for rows.Next() {
		var sub entity.PushSubscription
		if scanErr := rows.Scan(&sub.ID, &sub.UserID, &sub.Endpoint, &sub.AuthSecret, &sub.PublicKey, &sub.CreatedAt); scanErr != nil {
			return nil, s.mapError(scanErr)
		}
		items = append(items, sub)
	}

	return items, s.mapError(rows.Err())
}

// CreateSubscription registers an endpoint. A re-registered endpoint moves to
// the registering user and refreshes its keys instead of conflicting.
func (s *DB) CreateSubscription(ctx context.Context, id int64, userID int64, endpoint, authSecret, publicKey string) (err error) {
	ctx, span := s.startSpan(ctx, "CreateSubscription")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		INSERT INTO push_subscriptions (id, user_id, endpoint, auth_secret, public_key)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (endpoint) DO UPDATE SET
			user_id     = EXCLUDED.user_id,
			auth_secret = EXCLUDED.auth_secret,
			public_key  = EXCLUDED.public_key`,
		id, userID, endpoint, authSecret, publicKey)
	return s.mapError(err)
}

func (s *DB) DeleteSubscription(ctx context.Context, userID int64, endpoint string) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "DeleteSubscription")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `
		DELETE FROM push_subscriptions
		WHERE user_id = $1 AND endpoint = $2`, userID, endpoint)
	if err != nil {
		return false, s.mapError(err)
	}

	return tag.RowsAffected() > 0, nil
}
