package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"moviecatalog/errs"
	"moviecatalog/movie"
	"moviecatalog/pkg/sentry"
)

func (s *Server) RegisterAdminMovieRoutes(g *echo.Group) {
	g.GET("/movies", s.handleListMovies)
	g.POST("/movies", s.handleCreateMovie)
	g.POST("/movies/import", s.handleImportMovies)
	g.GET("/movies/:id", s.handleGetMovie)
	g.PATCH("/movies/:id", s.handleUpdateMovie)
	g.DELETE("/movies/:id", s.handleDeleteMovie)
}

func (s *Server) movieService() (movie.Service, error) {
	if s.MovieService == nil {
		return nil, errs.Errorf(errs.ENOTIMPLEMENTED, "movie service not configured")
	}
	return s.MovieService, nil
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errs.Errorf(errs.EINVALID, "invalid request body")
	}
	return c.Validate(req)
}

// handleListMovies godoc
// @Summary List movies
// @Tags admin
// @Security ApiKeyAuth
// @Produce json
// @Param search query string false "Substring of title or indexed fields"
// @Param top query int false "Page size, default 50, max 1000"
// @Param skip query int false "Offset"
// @Success 200 {object} APIResponse
// @Failure 401 {object} APIResponse
// @Router /admin/movies [get]
func (s *Server) handleListMovies(c echo.Context) error {
	svc, err := s.movieService()
	if err != nil {
		return err
	}

	var req ListMoviesRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	movies, total, err := svc.List(c.Request().Context(), movie.ListQuery{
		Search: req.Search,
		Limit:  req.Top,
		Offset: req.Skip,
	})
	if err != nil {
		return err
	}
	return writePagedList(c, http.StatusOK, movies, total, req.Top, req.Skip)
}

// handleGetMovie godoc
// @Summary Get a movie by its record id
// @Tags admin
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Record id"
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /admin/movies/{id} [get]
func (s *Server) handleGetMovie(c echo.Context) error {
	svc, err := s.movieService()
	if err != nil {
		return err
	}

	m, err := svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return writeSuccess(c, http.StatusOK, m)
}

// handleCreateMovie godoc
// @Summary Create a movie
// @Tags admin
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param movie body MovieRequest true "Movie"
// @Success 201 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Failure 409 {object} APIResponse
// @Router /admin/movies [post]
func (s *Server) handleCreateMovie(c echo.Context) error {
	svc, err := s.movieService()
	if err != nil {
		return err
	}

	var req MovieRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	created, err := svc.Create(c.Request().Context(), req.ToMovie())
	if err != nil {
		return err
	}
	return writeSuccess(c, http.StatusCreated, created)
}

// handleUpdateMovie godoc
// @Summary Partially update a movie
// @Tags admin
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path string true "Record id"
// @Param movie body UpdateMovieRequest true "Fields to change"
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Failure 409 {object} APIResponse
// @Router /admin/movies/{id} [patch]
func (s *Server) handleUpdateMovie(c echo.Context) error {
	svc, err := s.movieService()
	if err != nil {
		return err
	}

	var req UpdateMovieRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	updated, err := svc.Update(c.Request().Context(), c.Param("id"), req.ToPatch())
	if err != nil {
		return err
	}
	return writeSuccess(c, http.StatusOK, updated)
}

// handleDeleteMovie godoc
// @Summary Delete a movie
// @Tags admin
// @Security ApiKeyAuth
// @Param id path string true "Record id"
// @Success 204
// @Failure 404 {object} APIResponse
// @Router /admin/movies/{id} [delete]
func (s *Server) handleDeleteMovie(c echo.Context) error {
	svc, err := s.movieService()
	if err != nil {
		return err
	}

	if err := svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// handleImportMovies godoc
// @Summary Import a batch of movies
// @Description Items are imported in order. Each item gets its own result and failures never stop the batch.
// @Tags admin
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param body body ImportMoviesRequest true "Movies to import"
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Router /admin/movies/import [post]
func (s *Server) handleImportMovies(c echo.Context) error {
	svc, err := s.movieService()
	if err != nil {
		return err
	}

	var req ImportMoviesRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	results := svc.BatchImport(c.Request().Context(), req.ToMovies())

	imported := 0
	for _, r := range results {
		if r.Success {
			imported++
		}
	}
	s.logger().Info("batch import finished",
		zap.Int("total", len(results)),
		zap.Int("imported", imported),
		zap.Int("failed", len(results)-imported),
	)
	if failed := len(results) - imported; failed > 0 {
		sentry.WithContext(c).
			WithExtras(map[string]interface{}{"total": len(results), "imported": imported}).
			Warningf("batch import: %d of %d movies rejected", failed, len(results))
	}

	return writeList(c, http.StatusOK, results)
}
