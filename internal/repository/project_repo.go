package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dealroom/internal/model"
)

type PgProjectRepository struct {
	db *pgxpool.Pool
}

func NewProjectRepository(db *pgxpool.Pool) *PgProjectRepository {
	return &PgProjectRepository{db: db}
}

const projectColumns = `id, owner_id, title, summary, problem, solution, target_market, visibility,
	success_score, ai_plan_json, ai_budget_json, ai_roadmap_json, created_at, updated_at`

func scanProject(row pgx.Row) (*model.Project, error) {
	var p model.Project
	err := row.Scan(
		&p.ID, &p.OwnerID, &p.Title, &p.Summary, &p.Problem, &p.Solution, &p.TargetMarket, &p.Visibility,
		&p.SuccessScore, &p.Plan, &p.Budget, &p.Roadmap, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *PgProjectRepository) Create(ctx context.Context, p *model.Project) error {
	query := `
		INSERT INTO projects (id, owner_id, title, summary, problem, solution, target_market, visibility)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		p.ID, p.OwnerID, p.Title, p.Summary, p.Problem, p.Solution, p.TargetMarket, p.Visibility,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	return translate(err)
}

func (r *PgProjectRepository) Get(ctx context.Context, id string) (*model.Project, error) {
	return scanProject(r.db.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
}

func (r *PgProjectRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Project, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	projects := make([]model.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

func (r *PgProjectRepository) UpdateVisibility(ctx context.Context, id, visibility string) (*model.Project, error) {
	query := `
		UPDATE projects SET visibility = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + projectColumns
	return scanProject(r.db.QueryRow(ctx, query, id, visibility))
}

func (r *PgProjectRepository) UpdateAIOutput(ctx context.Context, id string, out AIOutput) (*model.Project, error) {
	query := `
		UPDATE projects
		SET ai_plan_json = $2, ai_budget_json = $3, ai_roadmap_json = $4, success_score = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + projectColumns
	return scanProject(r.db.QueryRow(ctx, query, id, jsonArg(out.Plan), jsonArg(out.Budget), jsonArg(out.Roadmap), out.SuccessScore))
}

func (r *PgProjectRepository) ListOpenByDefault(ctx context.Context, threshold float64) ([]model.ProjectSummary, error) {
	query := `
		SELECT id, title, summary, success_score, visibility
		FROM projects
		WHERE visibility = $1 OR COALESCE(success_score, 0) >= $2
		ORDER BY updated_at DESC
	`
	rows, err := r.db.Query(ctx, query, model.VisibilityInvestorPreview, threshold)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	out := make([]model.ProjectSummary, 0)
	for rows.Next() {
		var s model.ProjectSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.Summary, &s.SuccessScore, &s.Visibility); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// jsonArg sends an empty document as SQL NULL rather than invalid jsonb.
func jsonArg(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
