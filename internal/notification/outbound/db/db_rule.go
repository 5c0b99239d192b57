package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/mxn2020/task-flow-sub000/internal/notification/entity"
)

const ruleColumns = `id, title, message_template, schedule_type, schedule_time, COALESCE(schedule_day, 0), is_active, created_by, created_at, updated_at`

func scanRule(row pgx.Row) (entity.Rule, error) {
	var (
		r            entity.Rule
		scheduleType string
	)
	err := row.Scan(
		&r.ID,
		&r.Title,
		&r.MessageTemplate,
		&scheduleType,
		&r.ScheduleTime,
		&r.ScheduleDay,
		&r.IsActive,
		&r.CreatedBy,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return entity.Rule{}, err
	}

	r.ScheduleType = entity.ScheduleTypeFromString(scheduleType)
	return r, nil
}

// ListActiveRules returns every rule the fan-out expander should consider.
// Soft-removed and inactive rules are excluded here, not downstream.
func (s *DB) ListActiveRules(ctx context.Context) (_ []entity.Rule, err error) {
	ctx, span := s.startSpan(ctx, "ListActiveRules")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, `
		SELECT `+ruleColumns+`
		FROM notification_rules
		WHERE is_active = TRUE AND deleted_at IS NULL
		ORDER BY id`)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	var items []entity.Rule
	for rows.Next() {
		r, scanErr := scanRule(rows)
		if scanErr != nil {
			return nil, s.mapError(scanErr)
		}
		items = append(items, r)
	}

	return items, s.mapError(rows.Err())
}

func (s *DB) ListRules(ctx context.Context) (_ []entity.Rule, err error) {
	ctx, span := s.startSpan(ctx, "ListRules")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, `
		SELECT `+ruleColumns+`
		FROM notification_rules
		WHERE deleted_at IS NULL
		ORDER BY id`)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	var items []entity.Rule
	for rows.Next() {
		r, scanErr := scanRule(rows)
		if scanErr != nil {
			return nil, s.mapError(scanErr)
		}
		items = append(items, r)
	}

	return items, s.mapError(rows.Err())
}

func (s *DB) CreateRule(ctx context.Context, in entity.CreateRule) (err error) {
	ctx, span := s.startSpan(ctx, "CreateRule")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		INSERT INTO notification_rules
			(id, title, message_template, schedule_type, schedule_time, schedule_day, is_active, created_by)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6::smallint, 0), $7, $8)`,
		in.ID, in.Title, in.MessageTemplate, in.ScheduleType.String(), in.ScheduleTime, in.ScheduleDay, in.IsActive, in.CreatedBy)
	return s.mapError(err)
}

// UpdateRule applies the non-nil fields and reports whether a row changed.
func (s *DB) UpdateRule(ctx context.Context, in entity.UpdateRule) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "UpdateRule")
	defer func() { s.endSpan(span, err) }()

	var scheduleType *string
	if in.ScheduleType != nil {
		v := in.ScheduleType.String()
		scheduleType = &v
	}

	tag, err := s.conn.Exec(ctx, `
		UPDATE notification_rules SET
			title            = COALESCE($2, title),
			message_template = COALESCE($3, message_template),
			schedule_type    = COALESCE($4, schedule_type),
			schedule_time    = COALESCE($5, schedule_time),
			schedule_day     = COALESCE(NULLIF($6::smallint, 0), schedule_day),
			is_active        = COALESCE($7, is_active),
			updated_at       = NOW()
		WHERE id = $1 AND deleted_at IS NULL`,
		in.ID, in.Title, in.MessageTemplate, scheduleType, in.ScheduleTime, in.ScheduleDay, in.IsActive)
	if err != nil {
		return false, s.mapError(err)
	}

	return tag.RowsAffected() > 0, nil
}

func (s *DB) SoftDeleteRule(ctx context.Context, id int64) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "SoftDeleteRule")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `
		UPDATE notification_rules
		SET deleted_at = NOW(), is_active = FALSE, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return false, s.mapError(err)
	}

	return tag.RowsAffected() > 0, nil
}
