package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/templui/fliptrack/internal/model"
)

var (
	ErrPreferenceNotFound = errors.New("preference not found")
)

// PreferenceRepository is the small durable key-value store for client hints.
type PreferenceRepository interface {
	Get(ctx context.Context, key string) (*model.Preference, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type preferenceRepository struct {
	db *sqlx.DB
}

func NewPreferenceRepository(db *sqlx.DB) PreferenceRepository {
	return &preferenceRepository{db: db}
}

func (r *preferenceRepository) Get(ctx context.Context, key string) (*model.Preference, error) {
	var pref model.Preference
	err := r.db.GetContext(ctx, &pref, `SELECT key, value, updated_at FROM preferences WHERE key = $1`, key)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPreferenceNotFound
	}
	if err != nil {
		return nil, err
	}

	return &pref, nil
}

func (r *preferenceRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO preferences (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now().UTC())

	return err
}

func (r *preferenceRepository) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM preferences WHERE key = $1`, key)
	return err
}
