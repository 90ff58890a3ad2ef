package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dealroom/internal/model"
)

type PgSupplierRepository struct {
	db *pgxpool.Pool
}

func NewSupplierRepository(db *pgxpool.Pool) *PgSupplierRepository {
	return &PgSupplierRepository{db: db}
}

const supplierColumns = `s.id, s.company_name, s.category, s.location, s.rating, s.lead_time_days, s.contact_email, s.created_at`

func supplierDest(s *model.Supplier) []any {
	return []any{&s.ID, &s.CompanyName, &s.Category, &s.Location, &s.Rating, &s.LeadTimeDays, &s.ContactEmail, &s.CreatedAt}
}

// Search returns suppliers best rated first.
func (r *PgSupplierRepository) Search(ctx context.Context, f model.SupplierFilter) ([]model.Supplier, error) {
	var where []string
	var args []any
	arg := func(v string) string {
		args = append(args, "%"+escapeLike(v)+"%")
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Category != "" {
		where = append(where, "s.category ILIKE "+arg(f.Category))
	}
	if f.Location != "" {
		where = append(where, "s.location ILIKE "+arg(f.Location))
	}
	if f.Query != "" {
		p := arg(f.Query)
		where = append(where, "(s.company_name ILIKE "+p+" OR s.category ILIKE "+p+" OR s.location ILIKE "+p+")")
	}

	query := `SELECT ` + supplierColumns + ` FROM suppliers s`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY s.rating DESC, s.company_name ASC"
	return r.list(ctx, query, args...)
}

// Suggest returns the top rated suppliers, quickest lead time breaking ties.
func (r *PgSupplierRepository) Suggest(ctx context.Context, category string, limit int) ([]model.Supplier, error) {
	query := `
		SELECT ` + supplierColumns + `
		FROM suppliers s
		WHERE $1 = '' OR s.category ILIKE '%' || $1 || '%'
		ORDER BY s.rating DESC, s.lead_time_days ASC NULLS LAST
		LIMIT $2
	`
	return r.list(ctx, query, escapeLike(category), limit)
}

func (r *PgSupplierRepository) list(ctx context.Context, query string, args ...any) ([]model.Supplier, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	out := make([]model.Supplier, 0)
	for rows.Next() {
		var s model.Supplier
		if err := rows.Scan(supplierDest(&s)...); err != nil {
			return nil, translate(err)
		}
		out = append(out, s)
	}
	return out, translate(rows.Err())
}

type PgQuoteRepository struct {
	db *pgxpool.Pool
}

func NewQuoteRepository(db *pgxpool.Pool) *PgQuoteRepository {
	return &PgQuoteRepository{db: db}
}

const quoteColumns = `q.id, q.project_id, q.supplier_id, q.rfq_json, q.quote_json, q.status,
	q.attachment_urls, q.created_at, q.updated_at`

func scanQuote(row pgx.Row, extra ...any) (*model.Quote, error) {
	var q model.Quote
	var offer []byte
	dest := append([]any{&q.ID, &q.ProjectID, &q.SupplierID, &q.RFQ, &offer, &q.Status,
		&q.AttachmentURLs, &q.CreatedAt, &q.UpdatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, translate(err)
	}
	if offer != nil {
		q.Offer = json.RawMessage(offer)
	}
	if q.AttachmentURLs == nil {
		q.AttachmentURLs = []string{}
	}
	return &q, nil
}

// CreateBatch inserts one quote per supplier atomically. An unknown supplier fails the whole batch.
func (r *PgQuoteRepository) CreateBatch(ctx context.Context, quotes []*model.Quote) error {
	return withTx(ctx, r.db, nil, nil, func(tx pgx.Tx) error {
		for _, q := range quotes {
			err := tx.QueryRow(ctx, `
				INSERT INTO supplier_quotes (id, project_id, supplier_id, rfq_json, status, attachment_urls)
				VALUES ($1, $2, $3, $4, $5, '{}')
				RETURNING created_at, updated_at
			`, q.ID, q.ProjectID, q.SupplierID, q.RFQ, q.Status).Scan(&q.CreatedAt, &q.UpdatedAt)
			if err != nil {
				return translate(err)
			}
			if q.AttachmentURLs == nil {
				q.AttachmentURLs = []string{}
			}
		}
		return nil
	})
}

func (r *PgQuoteRepository) Get(ctx context.Context, id string) (*model.Quote, error) {
	return scanQuote(r.db.QueryRow(ctx, `SELECT `+quoteColumns+` FROM supplier_quotes q WHERE q.id = $1`, id))
}

// ListByProject includes each supplier, ordered by status then newest first.
func (r *PgQuoteRepository) ListByProject(ctx context.Context, projectID string) ([]model.Quote, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+quoteColumns+`, `+supplierColumns+`
		FROM supplier_quotes q
		JOIN suppliers s ON s.id = q.supplier_id
		WHERE q.project_id = $1
		ORDER BY q.status ASC, q.created_at DESC
	`, projectID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	out := make([]model.Quote, 0)
	for rows.Next() {
		var s model.Supplier
		q, err := scanQuote(rows, supplierDest(&s)...)
		if err != nil {
			return nil, err
		}
		q.Supplier = &s
		out = append(out, *q)
	}
	return out, translate(rows.Err())
}

// Submit stores the supplier's offer and marks the quote received.
func (r *PgQuoteRepository) Submit(ctx context.Context, id string, offer json.RawMessage) (*model.Quote, error) {
	return scanQuote(r.db.QueryRow(ctx, `
		UPDATE supplier_quotes q
		SET quote_json = $2, status = 'received', updated_at = NOW()
		WHERE q.id = $1
		RETURNING `+quoteColumns, id, offer))
}

func (r *PgQuoteRepository) UpdateStatus(ctx context.Context, id, status string) (*model.Quote, error) {
	return scanQuote(r.db.QueryRow(ctx, `
		UPDATE supplier_quotes q
		SET status = $2, updated_at = NOW()
		WHERE q.id = $1
		RETURNING `+quoteColumns, id, status))
}
