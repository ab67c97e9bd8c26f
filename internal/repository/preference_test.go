package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templui/fliptrack/internal/db"
	"github.com/templui/fliptrack/internal/model"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	conn, err := db.Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "prefs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(conn) })

	require.NoError(t, db.RunMigrations(context.Background(), conn.DB, "sqlite"))
	return conn
}

func TestPreferenceRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewPreferenceRepository(newTestDB(t))

	_, err := repo.Get(ctx, model.PreferenceLastSelectedProject)
	assert.ErrorIs(t, err, ErrPreferenceNotFound)

	require.NoError(t, repo.Set(ctx, model.PreferenceLastSelectedProject, "2"))
	require.NoError(t, repo.Set(ctx, model.PreferenceLastSelectedProject, "3"))

	pref, err := repo.Get(ctx, model.PreferenceLastSelectedProject)
	require.NoError(t, err)
	assert.Equal(t, "3", pref.Value)
	assert.False(t, pref.UpdatedAt.IsZero())

	require.NoError(t, repo.Delete(ctx, model.PreferenceLastSelectedProject))
	_, err = repo.Get(ctx, model.PreferenceLastSelectedProject)
	assert.ErrorIs(t, err, ErrPreferenceNotFound)
}
