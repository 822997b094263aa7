package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"moviecatalog/errs"

	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *errs.Error
		expected string
	}{
		{
			name:     "validation error",
			err:      &errs.Error{Code: errs.EINVALID, Message: "Title is required"},
			expected: "application error: code=invalid message=Title is required",
		},
		{
			name:     "conflict error",
			err:      &errs.Error{Code: errs.ECONFLICT, Message: "Movie with imdbID tt0114709 already exists"},
			expected: "application error: code=conflict message=Movie with imdbID tt0114709 already exists",
		},
		{
			name:     "empty message",
			err:      &errs.Error{Code: errs.EINTERNAL},
			expected: "application error: code=internal message=",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil error returns empty string", err: nil, expected: ""},
		{name: "invalid", err: errs.Errorf(errs.EINVALID, "bad"), expected: errs.EINVALID},
		{name: "not found", err: errs.Errorf(errs.ENOTFOUND, "missing"), expected: errs.ENOTFOUND},
		{name: "conflict", err: errs.Errorf(errs.ECONFLICT, "dup"), expected: errs.ECONFLICT},
		{name: "unauthorized", err: errs.Errorf(errs.EUNAUTHORIZED, "no key"), expected: errs.EUNAUTHORIZED},
		{name: "not implemented", err: errs.Errorf(errs.ENOTIMPLEMENTED, "later"), expected: errs.ENOTIMPLEMENTED},
		{name: "non-application error returns EINTERNAL", err: errors.New("disk full"), expected: errs.EINTERNAL},
		{
			name:     "wrapped application error",
			err:      fmt.Errorf("update movie: %w", errs.Errorf(errs.ENOTFOUND, "movie not found")),
			expected: errs.ENOTFOUND,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, errs.ErrorCode(tt.err))
		})
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil error returns empty string", err: nil, expected: ""},
		{name: "application error returns its message", err: errs.Errorf(errs.EINVALID, "Invalid IMDb ID."), expected: "Invalid IMDb ID."},
		{name: "non-application error is hidden", err: errors.New("connection reset"), expected: "Internal error."},
		{
			name:     "joined application error",
			err:      errors.Join(&errs.Error{Code: errs.ENOTFOUND, Message: "Movie not found!"}),
			expected: "Movie not found!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, errs.ErrorMessage(tt.err))
		})
	}
}

func TestErrorf(t *testing.T) {
	err := errs.Errorf(errs.ECONFLICT, "Movie with imdbID %s already exists", "tt0113189")

	assert.Equal(t, errs.ECONFLICT, err.Code)
	assert.Equal(t, "Movie with imdbID tt0113189 already exists", err.Message)
	assert.Equal(t, "application error: code=conflict message=Movie with imdbID tt0113189 already exists", err.Error())
}

func TestIs(t *testing.T) {
	assert.True(t, errs.Is(errs.Errorf(errs.ENOTFOUND, "x"), errs.ENOTFOUND))
	assert.False(t, errs.Is(errs.Errorf(errs.EINVALID, "x"), errs.ENOTFOUND))
	assert.False(t, errs.Is(nil, errs.EINTERNAL))
	assert.True(t, errs.Is(errors.New("boom"), errs.EINTERNAL))
}

func TestErrorCodes(t *testing.T) {
	assert.Equal(t, "conflict", errs.ECONFLICT)
	assert.Equal(t, "internal", errs.EINTERNAL)
	assert.Equal(t, "invalid", errs.EINVALID)
	assert.Equal(t, "not_found", errs.ENOTFOUND)
	assert.Equal(t, "not_implemented", errs.ENOTIMPLEMENTED)
	assert.Equal(t, "unauthorized", errs.EUNAUTHORIZED)
}
