package history

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optibridge/service/internal/db"
)

func testRepository(t *testing.T) *Repository {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	require.NoError(t, db.Migrate(url))

	pool, err := pgxpool.New(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(context.Background(), `TRUNCATE uploads`)
	require.NoError(t, err)
	return NewRepository(pool)
}

func TestRepositoryListNewestFirst(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()

	older := Record{ID: uuid.NewString(), Provider: "r2", OriginalName: "image.webp", URL: "https://cdn/a.webp", CreatedAt: 100}
	newer := Record{ID: uuid.NewString(), Provider: "cloudinary", OriginalName: "image.webp", URL: "https://res/b.webp", CreatedAt: 200, ThumbnailBase64: "UklGRg=="}
	require.NoError(t, repo.Insert(ctx, older))
	require.NoError(t, repo.Insert(ctx, newer))

	got, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, newer, got[0])
	assert.Equal(t, older, got[1])
}

func TestRepositoryDelete(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()

	rec := Record{ID: uuid.NewString(), Provider: "r2", OriginalName: "image.webp", URL: "https://cdn/a.webp", CreatedAt: 1}
	require.NoError(t, repo.Insert(ctx, rec))

	require.NoError(t, repo.Delete(ctx, rec.ID))
	assert.ErrorIs(t, repo.Delete(ctx, rec.ID), ErrNotFound)

	got, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}
