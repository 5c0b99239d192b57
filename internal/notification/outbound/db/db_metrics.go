package db

import "context"

// The metrics queries back the template-variable registry. Each is a live,
// point-in-time, per-user count; the expander calls them once per recognized
// token per user.

func (s *DB) CountPendingTodos(ctx context.Context, userID int64) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "CountPendingTodos")
	defer func() { s.endSpan(span, err) }()

	var count int64
	err = s.conn.QueryRow(ctx, `
		SELECT COUNT(*) FROM todos
		WHERE user_id = $1 AND completed_at IS NULL AND deleted_at IS NULL`, userID).Scan(&count)
	return count, s.mapError(err)
}

func (s *DB) CountIdeas(ctx context.Context, userID int64) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "CountIdeas")
	defer func() { s.endSpan(span, err) }()

	var count int64
	err = s.conn.QueryRow(ctx, `
		SELECT COUNT(*) FROM ideas
		WHERE user_id = $1 AND deleted_at IS NULL`, userID).Scan(&count)
	return count, s.mapError(err)
}

func (s *DB) CountNotes(ctx context.Context, userID int64) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "CountNotes")
	defer func() { s.endSpan(span, err) }()

	var count int64
	err = s.conn.QueryRow(ctx, `
		SELECT COUNT(*) FROM notes
		WHERE user_id = $1 AND deleted_at IS NULL`, userID).Scan(&count)
	return count, s.mapError(err)
}
