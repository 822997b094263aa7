package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"moviecatalog/errs"
	"moviecatalog/movie"
)

// OMDB compatible bodies. Field names and the string typed totalResults
// follow what OMDB clients expect.
type omdbSearchItem struct {
	Title  string `json:"Title"`
	Year   string `json:"Year"`
	IMDbID string `json:"imdbID"`
	Type   string `json:"Type"`
	Poster string `json:"Poster"`
}

type omdbSearchResponse struct {
	Search       []omdbSearchItem `json:"Search"`
	TotalResults string           `json:"totalResults"`
	Response     string           `json:"Response"`
}

type omdbMovieResponse struct {
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Rated      string `json:"Rated"`
	Released   string `json:"Released"`
	Runtime    string `json:"Runtime"`
	Genre      string `json:"Genre"`
	Director   string `json:"Director"`
	Actors     string `json:"Actors"`
	Plot       string `json:"Plot"`
	Poster     string `json:"Poster"`
	IMDbRating string `json:"imdbRating"`
	IMDbID     string `json:"imdbID"`
	Type       string `json:"Type"`
	Response   string `json:"Response"`
}

type omdbErrorResponse struct {
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

func (s *Server) RegisterPublicMovieRoutes(g *echo.Group) {
	g.GET("/movies", s.handleOMDB)
}

// handleOMDB godoc
// @Summary Search or look up movies
// @Description OMDB compatible endpoint. "i" looks up one movie and takes precedence over "s".
// @Tags movies
// @Produce json
// @Param s query string false "Search term"
// @Param i query string false "IMDb ID, e.g. tt0114709"
// @Param type query string false "movie, series or episode"
// @Param page query int false "Page number, 10 results per page"
// @Success 200 {object} omdbSearchResponse
// @Failure 400 {object} omdbErrorResponse
// @Failure 404 {object} omdbErrorResponse
// @Router /api/movies [get]
func (s *Server) handleOMDB(c echo.Context) error {
	if s.MovieService == nil {
		return errs.Errorf(errs.ENOTIMPLEMENTED, "movie service not configured")
	}

	if raw := c.QueryParam("i"); raw != "" {
		return s.lookupMovie(c, strings.TrimSpace(raw))
	}
	return s.searchMovies(c)
}

func (s *Server) lookupMovie(c echo.Context, imdbID string) error {
	m, err := s.MovieService.LookupByIMDbID(c.Request().Context(), imdbID)
	if err != nil {
		return writeOMDBError(c, err)
	}

	return c.JSON(http.StatusOK, omdbMovieResponse{
		Title:      m.Title,
		Year:       m.Year,
		Rated:      m.Rated,
		Released:   m.Released,
		Runtime:    m.Runtime,
		Genre:      m.Genre,
		Director:   m.Director,
		Actors:     m.Actors,
		Plot:       m.Plot,
		Poster:     m.Poster,
		IMDbRating: m.IMDbRating,
		IMDbID:     m.IMDbID,
		Type:       string(m.Type),
		Response:   "True",
	})
}

func (s *Server) searchMovies(c echo.Context) error {
	result, err := s.MovieService.Search(c.Request().Context(), movie.SearchQuery{
		Term: c.QueryParam("s"),
		Type: movie.Type(strings.TrimSpace(c.QueryParam("type"))),
		Page: parsePage(c.QueryParam("page")),
	})
	if errors.Is(err, movie.ErrMovieNotFound) {
		// An empty search is a normal answer, not a missing resource.
		return c.JSON(http.StatusOK, omdbErrorResponse{Response: "False", Error: errs.ErrorMessage(err)})
	}
	if err != nil {
		return writeOMDBError(c, err)
	}

	items := make([]omdbSearchItem, len(result.Movies))
	for i, m := range result.Movies {
		items[i] = omdbSearchItem{
			Title:  m.Title,
			Year:   m.Year,
			IMDbID: m.IMDbID,
			Type:   string(m.Type),
			Poster: m.Poster,
		}
	}

	return c.JSON(http.StatusOK, omdbSearchResponse{
		Search:       items,
		TotalResults: strconv.FormatInt(result.Total, 10),
		Response:     "True",
	})
}

// writeOMDBError answers client errors in the OMDB shape and leaves
// everything else to the server error handler.
func writeOMDBError(c echo.Context, err error) error {
	switch errs.ErrorCode(err) {
	case errs.EINVALID:
		return c.JSON(http.StatusBadRequest, omdbErrorResponse{Response: "False", Error: errs.ErrorMessage(err)})
	case errs.ENOTFOUND:
		return c.JSON(http.StatusNotFound, omdbErrorResponse{Response: "False", Error: errs.ErrorMessage(err)})
	default:
		return err
	}
}

func parsePage(raw string) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
