package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"moviecatalog/movie"
	"moviecatalog/pkg/config"
)

const batch = `{"movies": [
	{"imdbID": "tt0114709", "Title": "Toy Story", "Year": "1995", "Type": "movie"},
	{"imdbID": "tt0114709", "Title": "Toy Story"},
	{"Title": "No id"}
]}`

func writeFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "batch.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func sqliteConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := &config.Config{}
	cfg.DB.Driver = config.DriverSQLite
	cfg.DB.SQLitePath = filepath.Join(t.TempDir(), "movies.db")
	return cfg
}

func TestParseBatch(t *testing.T) {
	t.Run("should accept a bare array", func(t *testing.T) {
		movies, err := parseBatch([]byte(` [{"imdbID":"tt1","Title":"A"}] `))

		require.NoError(t, err)
		assert.Equal(t, []movie.Movie{{IMDbID: "tt1", Title: "A"}}, movies)
	})

	t.Run("should accept a wrapped array", func(t *testing.T) {
		movies, err := parseBatch([]byte(batch))

		require.NoError(t, err)
		assert.Len(t, movies, 3)
	})

	t.Run("should reject empty or malformed input", func(t *testing.T) {
		for _, in := range []string{"", "  ", "{", `{"items": []}`, `[1]`} {
			_, err := parseBatch([]byte(in))
			assert.Error(t, err, in)
		}
	})
}

func TestRunImport(t *testing.T) {
	movies, err := parseBatch([]byte(batch))
	require.NoError(t, err)

	t.Run("should print one result per movie in order", func(t *testing.T) {
		var out bytes.Buffer

		err := runImport(context.Background(), &out, sqliteConfig(t), zap.NewNop(), movies, false)

		require.NoError(t, err)
		var results []movie.ImportResult
		scanner := bufio.NewScanner(&out)
		for scanner.Scan() {
			var r movie.ImportResult
			require.NoError(t, json.Unmarshal(scanner.Bytes(), &r))
			results = append(results, r)
		}
		require.Len(t, results, 3)
		assert.True(t, results[0].Success)
		assert.Equal(t, "Movie already exists", results[1].Message)
		assert.Equal(t, "unknown", results[2].IMDbID)
	})

	t.Run("should fail in strict mode when anything failed", func(t *testing.T) {
		err := runImport(context.Background(), &bytes.Buffer{}, sqliteConfig(t), zap.NewNop(), movies, true)

		assert.ErrorIs(t, err, errImportIncomplete)
	})
}

func TestCommands(t *testing.T) {
	t.Run("run imports through the configured store", func(t *testing.T) {
		t.Setenv("DB_DRIVER", config.DriverSQLite)
		t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "movies.db"))
		t.Setenv("APP_ENV", "test")
		var out bytes.Buffer
		cmd := newRootCmd()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"run", writeFile(t, batch)})

		require.NoError(t, cmd.Execute())
		assert.Contains(t, out.String(), `"success":true`)
	})

	t.Run("check reports invalid movies", func(t *testing.T) {
		var out bytes.Buffer
		cmd := newRootCmd()
		cmd.SetOut(&out)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"check", writeFile(t, `[{"imdbID":"bad","Title":"X"},{"imdbID":"tt1","Title":"Y"}]`)})

		err := cmd.Execute()

		assert.Error(t, err)
		assert.Contains(t, out.String(), "Invalid IMDb ID.")
		assert.Contains(t, out.String(), "2 movies, 1 invalid")
	})

	t.Run("run requires a file argument", func(t *testing.T) {
		cmd := newRootCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"run"})

		assert.Error(t, cmd.Execute())
	})
}
