package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique constraint rejects an insert
	ErrDuplicate = errors.New("already exists")
)

const (
	pgUniqueViolation     = "23505"
	pgInvalidTextRepr     = "22P02"
	pgForeignKeyViolation = "23503"
)

// translate maps driver errors onto the package sentinels.
// A malformed uuid is reported as not found, matching how a lookup by an unknown id behaves.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return ErrDuplicate
		case pgInvalidTextRepr, pgForeignKeyViolation:
			return ErrNotFound
		}
	}
	return err
}
