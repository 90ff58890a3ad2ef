package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgSettingsRepository stores numeric settings as {"value": n} documents in system_settings.
type PgSettingsRepository struct {
	db *pgxpool.Pool
}

func NewSettingsRepository(db *pgxpool.Pool) *PgSettingsRepository {
	return &PgSettingsRepository{db: db}
}

type numberSetting struct {
	Value *float64 `json:"value"`
}

func (r *PgSettingsRepository) GetNumber(ctx context.Context, key string) (float64, bool, error) {
	var raw []byte
	err := r.db.QueryRow(ctx, `SELECT json FROM system_settings WHERE key = $1`, key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	var s numberSetting
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false, fmt.Errorf("decode setting %s: %w", key, err)
	}
	if s.Value == nil {
		return 0, false, nil
	}
	return *s.Value, true, nil
}

func (r *PgSettingsRepository) SetNumber(ctx context.Context, key string, value float64) error {
	doc, err := json.Marshal(numberSetting{Value: &value})
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO system_settings (key, json, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET json = EXCLUDED.json, updated_at = NOW()
	`, key, string(doc))
	return err
}
