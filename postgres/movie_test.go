package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"moviecatalog/errs"
	"moviecatalog/movie"
	"moviecatalog/postgres"
	"moviecatalog/sqlite"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := sqlite.NewConnection(":memory:", nil)
	require.NoError(t, err)
	return db
}

func seedMovie(t *testing.T, repo *postgres.MovieRepository, m movie.Movie) movie.Movie {
	t.Helper()

	m.SearchTerms = movie.SearchTerms(m)
	created, err := repo.Create(context.Background(), m)
	require.NoError(t, err)
	// created_at drives result order; keep rows strictly increasing.
	time.Sleep(2 * time.Millisecond)
	return created
}

func seedCatalog(t *testing.T, repo *postgres.MovieRepository) {
	t.Helper()

	seedMovie(t, repo, movie.Movie{IMDbID: "tt0114709", Title: "Toy Story", Year: "1995", Type: movie.TypeMovie, Director: "John Lasseter", Actors: "Tom Hanks, Tim Allen", Genre: "Animation"})
	seedMovie(t, repo, movie.Movie{IMDbID: "tt0120363", Title: "Toy Story 2", Year: "1999", Type: movie.TypeMovie, Director: "John Lasseter", Actors: "Tom Hanks", Genre: "Animation"})
	seedMovie(t, repo, movie.Movie{IMDbID: "tt0903747", Title: "Breaking Bad", Year: "2008", Type: movie.TypeSeries, Director: "Vince Gilligan", Actors: "Bryan Cranston", Genre: "Drama"})
	seedMovie(t, repo, movie.Movie{IMDbID: "tt0109830", Title: "Forrest Gump", Year: "1994", Type: movie.TypeMovie, Director: "Robert Zemeckis", Actors: "Tom Hanks", Genre: "Drama"})
}

func TestMovieRepository_Search(t *testing.T) {
	db := newTestDB(t)
	repo := postgres.NewMovieRepository(db)
	seedCatalog(t, repo)
	ctx := context.Background()

	t.Run("should match title case-insensitively", func(t *testing.T) {
		movies, total, err := repo.Search(ctx, movie.Filter{Term: "TOY", Limit: 10})

		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, movies, 2)
		assert.Equal(t, "Toy Story", movies[0].Title)
		assert.Equal(t, "Toy Story 2", movies[1].Title)
	})

	t.Run("should match indexed fields", func(t *testing.T) {
		movies, total, err := repo.Search(ctx, movie.Filter{Term: "hanks", Limit: 10})

		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, movies, 3)
	})

	t.Run("should filter by type", func(t *testing.T) {
		movies, total, err := repo.Search(ctx, movie.Filter{Term: "drama", Type: movie.TypeSeries, Limit: 10})

		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, "Breaking Bad", movies[0].Title)
	})

	t.Run("should page with stable order and full total", func(t *testing.T) {
		movies, total, err := repo.Search(ctx, movie.Filter{Term: "hanks", Limit: 2, Offset: 2})

		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, movies, 1)
		assert.Equal(t, "Forrest Gump", movies[0].Title)
	})

	t.Run("should treat wildcards literally", func(t *testing.T) {
		movies, total, err := repo.Search(ctx, movie.Filter{Term: "%", Limit: 10})

		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, movies)
	})

	t.Run("should list everything for an empty term", func(t *testing.T) {
		_, total, err := repo.Search(ctx, movie.Filter{Limit: 10})

		require.NoError(t, err)
		assert.Equal(t, int64(4), total)
	})
}

func TestMovieRepository_Get(t *testing.T) {
	db := newTestDB(t)
	repo := postgres.NewMovieRepository(db)
	created := seedMovie(t, repo, movie.Movie{IMDbID: "tt0114709", Title: "Toy Story"})
	ctx := context.Background()

	t.Run("should get by id", func(t *testing.T) {
		got, err := repo.GetByID(ctx, created.ID)

		require.NoError(t, err)
		assert.Equal(t, "tt0114709", got.IMDbID)
		assert.Equal(t, "toy story tt0114709", got.SearchTerms)
		assert.False(t, got.CreatedAt.IsZero())
	})

	t.Run("should get by imdb id", func(t *testing.T) {
		got, err := repo.GetByIMDbID(ctx, "tt0114709")

		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
	})

	t.Run("should report not found", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "missing")
		assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))

		_, err = repo.GetByIMDbID(ctx, "tt9999999")
		assert.ErrorIs(t, err, movie.ErrMovieNotFound)
	})
}

func TestMovieRepository_ExistsByIMDbID(t *testing.T) {
	db := newTestDB(t)
	repo := postgres.NewMovieRepository(db)
	created := seedMovie(t, repo, movie.Movie{IMDbID: "tt0114709", Title: "Toy Story"})
	ctx := context.Background()

	exists, err := repo.ExistsByIMDbID(ctx, "tt0114709", "")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByIMDbID(ctx, "tt0114709", created.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.ExistsByIMDbID(ctx, "tt0000001", "")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMovieRepository_Create(t *testing.T) {
	db := newTestDB(t)
	repo := postgres.NewMovieRepository(db)
	ctx := context.Background()

	t.Run("should assign a uuid", func(t *testing.T) {
		created, err := repo.Create(ctx, movie.Movie{ID: "ignored", IMDbID: "tt0114709", Title: "Toy Story"})

		require.NoError(t, err)
		assert.Len(t, created.ID, 36)
		assert.NotEqual(t, "ignored", created.ID)
	})

	t.Run("should map unique violation to conflict", func(t *testing.T) {
		_, err := repo.Create(ctx, movie.Movie{IMDbID: "tt0114709", Title: "Toy Story again"})

		assert.Equal(t, errs.ECONFLICT, errs.ErrorCode(err))
	})
}

func TestMovieRepository_Update(t *testing.T) {
	db := newTestDB(t)
	repo := postgres.NewMovieRepository(db)
	created := seedMovie(t, repo, movie.Movie{IMDbID: "tt0114709", Title: "Toy Story", Plot: "Toys."})
	seedMovie(t, repo, movie.Movie{IMDbID: "tt0120363", Title: "Toy Story 2"})
	ctx := context.Background()

	t.Run("should change only patched columns", func(t *testing.T) {
		title := "Toy Story (1995)"
		terms := "toy story (1995) tt0114709"

		updated, err := repo.Update(ctx, created.ID, movie.Patch{Title: &title, SearchTerms: &terms})

		require.NoError(t, err)
		assert.Equal(t, title, updated.Title)
		assert.Equal(t, terms, updated.SearchTerms)
		assert.Equal(t, "Toys.", updated.Plot)
		assert.True(t, !updated.UpdatedAt.Before(created.UpdatedAt))
	})

	t.Run("should return current record for an empty patch", func(t *testing.T) {
		got, err := repo.Update(ctx, created.ID, movie.Patch{})

		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
	})

	t.Run("should report not found", func(t *testing.T) {
		plot := "x"
		_, err := repo.Update(ctx, "missing", movie.Patch{Plot: &plot})

		assert.ErrorIs(t, err, movie.ErrMovieNotFound)
	})

	t.Run("should map duplicate imdb id to conflict", func(t *testing.T) {
		imdbID := "tt0120363"
		_, err := repo.Update(ctx, created.ID, movie.Patch{IMDbID: &imdbID})

		assert.Equal(t, errs.ECONFLICT, errs.ErrorCode(err))
	})
}

func TestMovieRepository_Delete(t *testing.T) {
	db := newTestDB(t)
	repo := postgres.NewMovieRepository(db)
	created := seedMovie(t, repo, movie.Movie{IMDbID: "tt0114709", Title: "Toy Story"})
	ctx := context.Background()

	require.NoError(t, repo.Delete(ctx, created.ID))

	_, err := repo.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, movie.ErrMovieNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, created.ID), movie.ErrMovieNotFound)
}

func TestMovieRepository_Postgres(t *testing.T) {
	if testing.Short() {
		t.Skip("requires docker")
	}

	db := CreateConnection(t, "movies_repo", "movies", "123456")
	MigrateTestDatabase(t, db, "../migrations")
	repo := postgres.NewMovieRepository(db)
	seedCatalog(t, repo)
	ctx := context.Background()

	movies, total, err := repo.Search(ctx, movie.Filter{Term: "toy", Type: movie.TypeMovie, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, "Toy Story", movies[0].Title)

	_, err = repo.Create(ctx, movie.Movie{IMDbID: "tt0114709", Title: "Dup"})
	assert.Equal(t, errs.ECONFLICT, errs.ErrorCode(err))
}
