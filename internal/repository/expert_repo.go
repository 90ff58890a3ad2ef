package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dealroom/internal/model"
	"dealroom/pkg/outbox"
)

type PgExpertRepository struct {
	db *pgxpool.Pool
}

func NewExpertRepository(db *pgxpool.Pool) *PgExpertRepository {
	return &PgExpertRepository{db: db}
}

const expertColumns = `id, user_id, categories, skills, location, portfolio_links, availability,
	performance_score, created_at, updated_at`

func scanExpert(row pgx.Row) (*model.Expert, error) {
	var e model.Expert
	err := row.Scan(&e.ID, &e.UserID, &e.Categories, &e.Skills, &e.Location, &e.PortfolioLinks,
		&e.Availability, &e.PerformanceScore, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

func (r *PgExpertRepository) Get(ctx context.Context, id string) (*model.Expert, error) {
	return scanExpert(r.db.QueryRow(ctx, `SELECT `+expertColumns+` FROM experts WHERE id = $1`, id))
}

func (r *PgExpertRepository) FindByUserID(ctx context.Context, userID string) (*model.Expert, error) {
	return scanExpert(r.db.QueryRow(ctx, `SELECT `+expertColumns+` FROM experts WHERE user_id = $1`, userID))
}

// Upsert writes the profile keyed by user id. A new row starts with the default performance score.
func (r *PgExpertRepository) Upsert(ctx context.Context, e *model.Expert) (*model.Expert, error) {
	return scanExpert(r.db.QueryRow(ctx, `
		INSERT INTO experts (id, user_id, categories, skills, location, portfolio_links, availability)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE
		SET categories = EXCLUDED.categories,
		    skills = EXCLUDED.skills,
		    location = EXCLUDED.location,
		    portfolio_links = EXCLUDED.portfolio_links,
		    availability = EXCLUDED.availability,
		    updated_at = NOW()
		RETURNING `+expertColumns,
		e.ID, e.UserID, e.Categories, e.Skills, e.Location, e.PortfolioLinks, e.Availability))
}

type PgInvestorProfileRepository struct {
	db *pgxpool.Pool
}

func NewInvestorProfileRepository(db *pgxpool.Pool) *PgInvestorProfileRepository {
	return &PgInvestorProfileRepository{db: db}
}

const investorProfileColumns = `id, user_id, focus_areas, stage_focus, geographic_focus, created_at, updated_at`

func scanInvestorProfile(row pgx.Row) (*model.InvestorProfile, error) {
	var p model.InvestorProfile
	err := row.Scan(&p.ID, &p.UserID, &p.FocusAreas, &p.StageFocus, &p.GeographicFocus, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *PgInvestorProfileRepository) FindByUserID(ctx context.Context, userID string) (*model.InvestorProfile, error) {
	return scanInvestorProfile(r.db.QueryRow(ctx,
		`SELECT `+investorProfileColumns+` FROM investors WHERE user_id = $1`, userID))
}

func (r *PgInvestorProfileRepository) Upsert(ctx context.Context, p *model.InvestorProfile) (*model.InvestorProfile, error) {
	return scanInvestorProfile(r.db.QueryRow(ctx, `
		INSERT INTO investors (id, user_id, focus_areas, stage_focus, geographic_focus)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET focus_areas = EXCLUDED.focus_areas,
		    stage_focus = EXCLUDED.stage_focus,
		    geographic_focus = EXCLUDED.geographic_focus,
		    updated_at = NOW()
		RETURNING `+investorProfileColumns,
		p.ID, p.UserID, p.FocusAreas, p.StageFocus, p.GeographicFocus))
}

type PgShortlistRepository struct {
	db     *pgxpool.Pool
	outbox outbox.Inserter
}

func NewShortlistRepository(db *pgxpool.Pool, ob outbox.Inserter) *PgShortlistRepository {
	return &PgShortlistRepository{db: db, outbox: ob}
}

const shortlistColumns = `sl.id, sl.project_id, sl.expert_id, sl.reason, sl.status, sl.created_at, sl.updated_at`

func scanShortlist(row pgx.Row, extra ...any) (*model.Shortlist, error) {
	var s model.Shortlist
	dest := append([]any{&s.ID, &s.ProjectID, &s.ExpertID, &s.Reason, &s.Status, &s.CreatedAt, &s.UpdatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

// Create inserts the invite and its outbox event together. An unknown expert reads as ErrNotFound.
func (r *PgShortlistRepository) Create(ctx context.Context, s *model.Shortlist, evt *OutboxEvent) error {
	return withTx(ctx, r.db, r.outbox, evt, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO project_expert_shortlists (id, project_id, expert_id, reason, status)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING created_at, updated_at
		`, s.ID, s.ProjectID, s.ExpertID, s.Reason, s.Status).Scan(&s.CreatedAt, &s.UpdatedAt)
		return translate(err)
	})
}

func (r *PgShortlistRepository) Get(ctx context.Context, id string) (*model.Shortlist, error) {
	return scanShortlist(r.db.QueryRow(ctx,
		`SELECT `+shortlistColumns+` FROM project_expert_shortlists sl WHERE sl.id = $1`, id))
}

func (r *PgShortlistRepository) UpdateStatus(ctx context.Context, id, status string) (*model.Shortlist, error) {
	return scanShortlist(r.db.QueryRow(ctx, `
		UPDATE project_expert_shortlists sl
		SET status = $2, updated_at = NOW()
		WHERE sl.id = $1
		RETURNING `+shortlistColumns, id, status))
}

// ListByExpert includes each project summary, newest invite first.
func (r *PgShortlistRepository) ListByExpert(ctx context.Context, expertID string) ([]model.Shortlist, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+shortlistColumns+`, p.id, p.title, p.summary, p.success_score, p.visibility
		FROM project_expert_shortlists sl
		JOIN projects p ON p.id = sl.project_id
		WHERE sl.expert_id = $1
		ORDER BY sl.created_at DESC
	`, expertID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	out := make([]model.Shortlist, 0)
	for rows.Next() {
		var p model.ProjectSummary
		s, err := scanShortlist(rows, &p.ID, &p.Title, &p.Summary, &p.SuccessScore, &p.Visibility)
		if err != nil {
			return nil, err
		}
		s.Project = &p
		out = append(out, *s)
	}
	return out, translate(rows.Err())
}
