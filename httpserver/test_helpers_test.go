package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"moviecatalog/httpserver"
	"moviecatalog/movie"
	"moviecatalog/pkg/config"
)

const testAPIKey = "test-key-123"

func testConfig() *config.Config {
	return &config.Config{APIKeys: testAPIKey + ", other-key"}
}

type MockMovieService struct {
	mock.Mock
}

func (m *MockMovieService) Search(ctx context.Context, q movie.SearchQuery) (movie.SearchResult, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(movie.SearchResult), args.Error(1)
}

func (m *MockMovieService) LookupByIMDbID(ctx context.Context, imdbID string) (movie.Movie, error) {
	args := m.Called(ctx, imdbID)
	return args.Get(0).(movie.Movie), args.Error(1)
}

func (m *MockMovieService) Create(ctx context.Context, mv movie.Movie) (movie.Movie, error) {
	args := m.Called(ctx, mv)
	return args.Get(0).(movie.Movie), args.Error(1)
}

func (m *MockMovieService) Update(ctx context.Context, id string, p movie.Patch) (movie.Movie, error) {
	args := m.Called(ctx, id, p)
	return args.Get(0).(movie.Movie), args.Error(1)
}

func (m *MockMovieService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMovieService) Get(ctx context.Context, id string) (movie.Movie, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(movie.Movie), args.Error(1)
}

func (m *MockMovieService) List(ctx context.Context, q movie.ListQuery) ([]movie.Movie, int64, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]movie.Movie), args.Get(1).(int64), args.Error(2)
}

func (m *MockMovieService) BatchImport(ctx context.Context, movies []movie.Movie) []movie.ImportResult {
	args := m.Called(ctx, movies)
	return args.Get(0).([]movie.ImportResult)
}

// newTestServer builds a fresh server per case so the in-memory rate
// limiter never trips inside a test.
func newTestServer(t *testing.T) (*httpserver.Server, *MockMovieService) {
	t.Helper()

	server := httpserver.Default(testConfig())
	svc := new(MockMovieService)
	server.MovieService = svc
	t.Cleanup(func() { svc.AssertExpectations(t) })
	return server, svc
}

type apiResponse struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

func decodeAPIResponse(t *testing.T, rec *httptest.ResponseRecorder) apiResponse {
	t.Helper()

	var resp apiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func decodeAPIResult(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) apiResponse {
	t.Helper()

	resp := decodeAPIResponse(t, rec)
	require.NoError(t, json.Unmarshal(resp.Result, out))
	return resp
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func serve(server *httpserver.Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	server.Router.ServeHTTP(rec, req)
	return rec
}

func adminRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()

	req := jsonRequest(t, method, path, body)
	req.Header.Set("x-api-key", testAPIKey)
	return req
}

func jsonRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func strPtr(s string) *string {
	return &s
}
