package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"dealroom/internal/model"
)

type PgNotificationRepository struct {
	db *pgxpool.Pool
}

func NewNotificationRepository(db *pgxpool.Pool) *PgNotificationRepository {
	return &PgNotificationRepository{db: db}
}

func (r *PgNotificationRepository) Create(ctx context.Context, n *model.Notification) (bool, error) {
	var eventID *string
	if n.EventID != "" {
		eventID = &n.EventID
	}
	tag, err := r.db.Exec(ctx, `
		INSERT INTO notifications (id, user_id, type, content, event_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (event_id) DO NOTHING
	`, n.ID, n.UserID, n.Type, n.Content, eventID)
	if err != nil {
		return false, translate(err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PgNotificationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]model.Notification, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, type, content, COALESCE(event_id, ''), is_read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	out := make([]model.Notification, 0)
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Content, &n.EventID, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
