package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dealroom/internal/model"
	"dealroom/pkg/outbox"
)

type PgMessageRepository struct {
	db     *pgxpool.Pool
	outbox outbox.Inserter
}

func NewMessageRepository(db *pgxpool.Pool, ob outbox.Inserter) *PgMessageRepository {
	return &PgMessageRepository{db: db, outbox: ob}
}

const messageSelect = `
	SELECT m.id, m.project_id, m.sender_id, m.body, m.attachments, m.created_at,
	       u.id, u.email, u.name, u.role
	FROM messages m
	JOIN users u ON u.id = m.sender_id
`

func scanMessage(row pgx.Row) (*model.Message, error) {
	var m model.Message
	var s model.UserSummary
	err := row.Scan(&m.ID, &m.ProjectID, &m.SenderID, &m.Body, &m.Attachments, &m.CreatedAt,
		&s.ID, &s.Email, &s.Name, &s.Role)
	if err != nil {
		return nil, translate(err)
	}
	if m.Attachments == nil {
		m.Attachments = []string{}
	}
	m.Sender = &s
	return &m, nil
}

// Create persists m with its outbox event and reloads it with the sender summary.
func (r *PgMessageRepository) Create(ctx context.Context, m *model.Message, evt *OutboxEvent) error {
	err := withTx(ctx, r.db, r.outbox, evt, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO messages (id, project_id, sender_id, body, attachments, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, m.ID, m.ProjectID, m.SenderID, m.Body, m.Attachments, m.CreatedAt)
		return translate(err)
	})
	if err != nil {
		return err
	}

	stored, err := scanMessage(r.db.QueryRow(ctx, messageSelect+` WHERE m.id = $1`, m.ID))
	if err != nil {
		return fmt.Errorf("reload message: %w", err)
	}
	*m = *stored
	return nil
}

func (r *PgMessageRepository) ListByProject(ctx context.Context, projectID string) ([]model.Message, error) {
	return r.query(ctx, messageSelect+` WHERE m.project_id = $1 ORDER BY m.created_at ASC`, projectID)
}

// Search applies f and returns newest first.
func (r *PgMessageRepository) Search(ctx context.Context, f model.MessageFilter) ([]model.Message, error) {
	where := []string{"m.project_id = $1"}
	args := []any{f.ProjectID}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Query != "" {
		where = append(where, "m.body ILIKE "+arg("%"+escapeLike(f.Query)+"%"))
	}
	if f.HasAttachments {
		where = append(where, "cardinality(m.attachments) > 0")
	}
	if f.From != nil {
		where = append(where, "m.created_at >= "+arg(*f.From))
	}
	if f.To != nil {
		where = append(where, "m.created_at <= "+arg(*f.To))
	}

	query := messageSelect +
		" WHERE " + strings.Join(where, " AND ") +
		" ORDER BY m.created_at DESC" +
		" LIMIT " + arg(f.Limit) + " OFFSET " + arg(f.Offset)

	return r.query(ctx, query, args...)
}

func (r *PgMessageRepository) query(ctx context.Context, query string, args ...any) ([]model.Message, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	out := make([]model.Message, 0)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, translate(rows.Err())
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
