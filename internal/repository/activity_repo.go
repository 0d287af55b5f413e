package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/flowcanvas/backend/internal/model"
)

// ActivityRepository provides data access for the per-workflow activity trail.
type ActivityRepository struct {
	db *sql.DB
}

// NewActivityRepository creates a new ActivityRepository.
func NewActivityRepository(db *sql.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Insert appends an activity record.
func (r *ActivityRepository) Insert(ctx context.Context, rec *model.ActivityRecord) error {
	query := `
		INSERT INTO activities (workflow_id, user_id, username, activity, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	res, err := r.db.ExecContext(ctx, query,
		rec.WorkflowID,
		rec.UserID,
		rec.Username,
		rec.Activity,
		rec.Message,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert activity: %w", err)
	}

	if id, err := res.LastInsertId(); err == nil {
		rec.ID = id
	}
	return nil
}

// ListByWorkflow returns the most recent activity records for a workflow,
// newest first, up to limit.
func (r *ActivityRepository) ListByWorkflow(ctx context.Context, workflowID string, limit int) ([]*model.ActivityRecord, error) {
	query := `
		SELECT id, workflow_id, user_id, username, activity, message, created_at
		FROM activities
		WHERE workflow_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, workflowID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	var records []*model.ActivityRecord
	for rows.Next() {
		rec := &model.ActivityRecord{}
		var message sql.NullString

		err := rows.Scan(
			&rec.ID,
			&rec.WorkflowID,
			&rec.UserID,
			&rec.Username,
			&rec.Activity,
			&message,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}

		if message.Valid {
			rec.Message = message.String
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activities: %w", err)
	}

	return records, nil
}

// CountByWorkflow returns the number of activity records for a workflow.
func (r *ActivityRepository) CountByWorkflow(ctx context.Context, workflowID string) (int, error) {
	query := `SELECT COUNT(*) FROM activities WHERE workflow_id = ?`

	var count int
	err := r.db.QueryRowContext(ctx, query, workflowID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count activities: %w", err)
	}

	return count, nil
}

// DeleteOlderThan prunes activity records created before the cutoff and
// returns the number of rows removed.
func (r *ActivityRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM activities WHERE created_at < ?`

	res, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune activities: %w", err)
	}

	return res.RowsAffected()
}
