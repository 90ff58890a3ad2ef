package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dealroom/internal/model"
)

type PgTaskRepository struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) *PgTaskRepository {
	return &PgTaskRepository{db: db}
}

const taskColumns = `id, project_id, milestone_id, assignee_id, title, status,
	estimated_hours, actual_hours, created_at, updated_at`

func scanTask(row pgx.Row) (*model.Task, error) {
	var t model.Task
	err := row.Scan(&t.ID, &t.ProjectID, &t.MilestoneID, &t.AssigneeID, &t.Title, &t.Status,
		&t.EstimatedHours, &t.ActualHours, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *PgTaskRepository) Get(ctx context.Context, id string) (*model.Task, error) {
	return scanTask(r.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
}

func (r *PgTaskRepository) ListByAssignee(ctx context.Context, assigneeID string) ([]model.Task, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE assignee_id = $1 ORDER BY created_at DESC`, assigneeID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// Update changes only the fields present in patch.
func (r *PgTaskRepository) Update(ctx context.Context, id string, patch model.TaskPatch) (*model.Task, error) {
	query := `
		UPDATE tasks
		SET status = COALESCE($2, status),
		    actual_hours = COALESCE($3, actual_hours),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + taskColumns
	return scanTask(r.db.QueryRow(ctx, query, id, patch.Status, patch.ActualHours))
}

func (r *PgTaskRepository) IsAssigneeOnProject(ctx context.Context, projectID, userID string) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM tasks WHERE project_id = $1 AND assignee_id = $2)
	`, projectID, userID).Scan(&ok)
	return ok, translate(err)
}
