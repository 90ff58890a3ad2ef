package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"dealroom/internal/model"
)

type PgMilestoneRepository struct {
	db *pgxpool.Pool
}

func NewMilestoneRepository(db *pgxpool.Pool) *PgMilestoneRepository {
	return &PgMilestoneRepository{db: db}
}

// ListByProject returns milestones by start date, each with its tasks.
func (r *PgMilestoneRepository) ListByProject(ctx context.Context, projectID string) ([]model.Milestone, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, project_id, title, start_date, end_date
		FROM milestones
		WHERE project_id = $1
		ORDER BY start_date ASC NULLS LAST, created_at ASC
	`, projectID)
	if err != nil {
		return nil, translate(err)
	}

	milestones := make([]model.Milestone, 0)
	index := make(map[string]int)
	for rows.Next() {
		var m model.Milestone
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.Title, &m.StartDate, &m.EndDate); err != nil {
			rows.Close()
			return nil, err
		}
		m.Tasks = make([]model.Task, 0)
		index[m.ID] = len(milestones)
		milestones = append(milestones, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(milestones) == 0 {
		return milestones, nil
	}

	taskRows, err := r.db.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE project_id = $1 AND milestone_id IS NOT NULL
		ORDER BY created_at ASC
	`, projectID)
	if err != nil {
		return nil, translate(err)
	}
	defer taskRows.Close()

	for taskRows.Next() {
		t, err := scanTask(taskRows)
		if err != nil {
			return nil, err
		}
		if i, ok := index[*t.MilestoneID]; ok {
			milestones[i].Tasks = append(milestones[i].Tasks, *t)
		}
	}
	return milestones, taskRows.Err()
}
