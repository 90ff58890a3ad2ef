package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestTranslate(t *testing.T) {
	other := errors.New("connection reset")

	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", pgx.ErrNoRows, ErrNotFound},
		{"wrapped no rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), ErrNotFound},
		{"unique violation", &pgconn.PgError{Code: pgUniqueViolation}, ErrDuplicate},
		{"malformed uuid", &pgconn.PgError{Code: pgInvalidTextRepr}, ErrNotFound},
		{"foreign key", &pgconn.PgError{Code: pgForeignKeyViolation}, ErrNotFound},
		{"other pg error", &pgconn.PgError{Code: "40001"}, nil},
		{"passthrough", other, other},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translate(tt.in)
			if tt.name == "other pg error" {
				assert.Same(t, tt.in, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
			if tt.want == nil {
				assert.NoError(t, got)
			}
		})
	}
}
