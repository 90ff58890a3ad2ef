package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dealroom/internal/model"
	"dealroom/pkg/outbox"
)

type PgAccessRequestRepository struct {
	db     *pgxpool.Pool
	outbox outbox.Inserter
}

func NewAccessRequestRepository(db *pgxpool.Pool, ob outbox.Inserter) *PgAccessRequestRepository {
	return &PgAccessRequestRepository{db: db, outbox: ob}
}

const accessRequestColumns = `r.id, r.project_id, r.investor_id, r.status, r.granted_at, r.created_at, r.updated_at`

func scanAccessRequest(row pgx.Row, extra ...any) (*model.AccessRequest, error) {
	var ar model.AccessRequest
	dest := append([]any{&ar.ID, &ar.ProjectID, &ar.InvestorID, &ar.Status, &ar.GrantedAt, &ar.CreatedAt, &ar.UpdatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, translate(err)
	}
	return &ar, nil
}

func (r *PgAccessRequestRepository) Get(ctx context.Context, id string) (*model.AccessRequest, error) {
	query := `SELECT ` + accessRequestColumns + ` FROM investor_access_requests r WHERE r.id = $1`
	return scanAccessRequest(r.db.QueryRow(ctx, query, id))
}

func (r *PgAccessRequestRepository) FindByPair(ctx context.Context, projectID, investorID string) (*model.AccessRequest, error) {
	query := `
		SELECT ` + accessRequestColumns + `
		FROM investor_access_requests r
		WHERE r.project_id = $1 AND r.investor_id = $2
	`
	return scanAccessRequest(r.db.QueryRow(ctx, query, projectID, investorID))
}

func (r *PgAccessRequestRepository) CreateIfAbsent(ctx context.Context, req *model.AccessRequest, evt *OutboxEvent) (bool, error) {
	created := false
	err := withTx(ctx, r.db, r.outbox, nil, func(tx pgx.Tx) error {
		insert := `
			INSERT INTO investor_access_requests (id, project_id, investor_id, status)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (project_id, investor_id) DO NOTHING
			RETURNING created_at, updated_at
		`
		err := tx.QueryRow(ctx, insert, req.ID, req.ProjectID, req.InvestorID, req.Status).
			Scan(&req.CreatedAt, &req.UpdatedAt)
		if err == nil {
			created = true
			if evt != nil {
				return outbox.InsertEventInTx(ctx, tx, r.outbox, evt.AggregateType, evt.AggregateID, evt.RoutingKey, evt.Payload)
			}
			return nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return translate(err)
		}

		// lost the race against a concurrent request for the same pair
		existing, err := scanAccessRequest(tx.QueryRow(ctx, `
			SELECT `+accessRequestColumns+`
			FROM investor_access_requests r
			WHERE r.project_id = $1 AND r.investor_id = $2
		`, req.ProjectID, req.InvestorID))
		if err != nil {
			return err
		}
		*req = *existing
		return nil
	})
	return created, err
}

func (r *PgAccessRequestRepository) UpdateStatus(ctx context.Context, id, status string, grantedAt *time.Time, evt *OutboxEvent) (*model.AccessRequest, error) {
	var updated *model.AccessRequest
	err := withTx(ctx, r.db, r.outbox, evt, func(tx pgx.Tx) error {
		query := `
			UPDATE investor_access_requests r
			SET status = $2, granted_at = COALESCE($3, r.granted_at), updated_at = NOW()
			WHERE r.id = $1
			RETURNING ` + accessRequestColumns
		var err error
		updated, err = scanAccessRequest(tx.QueryRow(ctx, query, id, status, grantedAt))
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *PgAccessRequestRepository) ListByInvestor(ctx context.Context, investorID string) ([]model.AccessRequest, error) {
	query := `
		SELECT ` + accessRequestColumns + `,
		       p.id, p.title, p.summary, p.success_score, p.visibility
		FROM investor_access_requests r
		JOIN projects p ON p.id = r.project_id
		WHERE r.investor_id = $1
		ORDER BY r.granted_at DESC NULLS LAST, r.created_at DESC
	`
	rows, err := r.db.Query(ctx, query, investorID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	out := make([]model.AccessRequest, 0)
	for rows.Next() {
		var p model.ProjectSummary
		ar, err := scanAccessRequest(rows, &p.ID, &p.Title, &p.Summary, &p.SuccessScore, &p.Visibility)
		if err != nil {
			return nil, err
		}
		ar.Project = &p
		out = append(out, *ar)
	}
	return out, rows.Err()
}

func (r *PgAccessRequestRepository) ListByStatus(ctx context.Context, status string) ([]model.AccessRequest, error) {
	query := `
		SELECT ` + accessRequestColumns + `,
		       p.id, p.title, p.success_score, p.visibility,
		       u.id, u.email, u.name, u.role
		FROM investor_access_requests r
		JOIN projects p ON p.id = r.project_id
		JOIN users u ON u.id = r.investor_id
		WHERE ($1 = '' OR r.status = $1)
		ORDER BY r.granted_at DESC NULLS LAST, r.created_at DESC
	`
	rows, err := r.db.Query(ctx, query, status)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	out := make([]model.AccessRequest, 0)
	for rows.Next() {
		var p model.ProjectSummary
		var u model.UserSummary
		ar, err := scanAccessRequest(rows,
			&p.ID, &p.Title, &p.SuccessScore, &p.Visibility,
			&u.ID, &u.Email, &u.Name, &u.Role,
		)
		if err != nil {
			return nil, err
		}
		ar.Project = &p
		ar.Investor = &u
		out = append(out, *ar)
	}
	return out, rows.Err()
}

func (r *PgAccessRequestRepository) HasApproved(ctx context.Context, projectID, investorID string) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM investor_access_requests
			WHERE project_id = $1 AND investor_id = $2 AND status = 'approved'
		)`, projectID, investorID).Scan(&ok)
	return ok, translate(err)
}
