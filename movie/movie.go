package movie

import (
	"math"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"moviecatalog/errs"
)

const (
	MaxIMDbIDLength      = 20
	MaxTitleLength       = 200
	MaxYearLength        = 4
	MaxPosterLength      = 500
	MaxIMDbRatingLength  = 5
	MaxSearchTermsLength = 1000
)

var (
	ErrIMDbIDRequired      = errs.Errorf(errs.EINVALID, "imdbID is required")
	ErrTitleRequired       = errs.Errorf(errs.EINVALID, "Title is required")
	ErrInvalidIMDbID       = errs.Errorf(errs.EINVALID, "Invalid IMDb ID.")
	ErrInvalidType         = errs.Errorf(errs.EINVALID, "Invalid type parameter.")
	ErrSearchTermRequired  = errs.Errorf(errs.EINVALID, "Parameter 's' is required.")
	ErrMovieNotFound       = errs.Errorf(errs.ENOTFOUND, "Movie not found!")
	ErrImportFieldsMissing = errs.Errorf(errs.EINVALID, "imdbID and Title are required")
	ErrImportDuplicate     = errs.Errorf(errs.ECONFLICT, "Movie already exists")
)

var imdbIDPattern = regexp.MustCompile(`^tt\d+$`)

type Type string

const (
	TypeMovie   Type = "movie"
	TypeSeries  Type = "series"
	TypeEpisode Type = "episode"
)

func (t Type) Valid() bool {
	switch t {
	case TypeMovie, TypeSeries, TypeEpisode:
		return true
	}
	return false
}

type Movie struct {
	ID          string    `json:"ID"`
	IMDbID      string    `json:"imdbID"`
	Title       string    `json:"Title"`
	Year        string    `json:"Year"`
	Type        Type      `json:"Type"`
	Poster      string    `json:"Poster"`
	Plot        string    `json:"Plot"`
	Director    string    `json:"Director"`
	Actors      string    `json:"Actors"`
	Genre       string    `json:"Genre"`
	Runtime     string    `json:"Runtime"`
	Rated       string    `json:"Rated"`
	Released    string    `json:"Released"`
	IMDbRating  string    `json:"imdbRating"`
	SearchTerms string    `json:"searchTerms"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"modifiedAt"`
}

// Validate checks required fields first, then field formats.
func (m Movie) Validate() error {
	if strings.TrimSpace(m.IMDbID) == "" {
		return ErrIMDbIDRequired
	}
	if strings.TrimSpace(m.Title) == "" {
		return ErrTitleRequired
	}
	return m.validateFormat()
}

func (m Movie) validateFormat() error {
	if err := ValidateIMDbID(m.IMDbID); err != nil {
		return err
	}
	if utf8.RuneCountInString(m.Title) > MaxTitleLength {
		return errs.Errorf(errs.EINVALID, "Title must be at most %d characters", MaxTitleLength)
	}
	if utf8.RuneCountInString(m.Year) > MaxYearLength {
		return errs.Errorf(errs.EINVALID, "Year must be at most %d characters", MaxYearLength)
	}
	if m.Type != "" && !m.Type.Valid() {
		return errs.Errorf(errs.EINVALID, "Type must be one of movie, series, episode")
	}
	if utf8.RuneCountInString(m.Poster) > MaxPosterLength {
		return errs.Errorf(errs.EINVALID, "Poster must be at most %d characters", MaxPosterLength)
	}
	if utf8.RuneCountInString(m.IMDbRating) > MaxIMDbRatingLength {
		return errs.Errorf(errs.EINVALID, "imdbRating must be at most %d characters", MaxIMDbRatingLength)
	}
	return nil
}

// ValidateIMDbID reports ErrInvalidIMDbID unless id looks like "tt0114709".
func ValidateIMDbID(id string) error {
	if len(id) > MaxIMDbIDLength || !imdbIDPattern.MatchString(id) {
		return ErrInvalidIMDbID
	}
	return nil
}

// SearchTerms derives the lowercase search index of a movie. Empty fields
// are skipped so the result never carries placeholder tokens or double
// spaces.
func SearchTerms(m Movie) string {
	fields := []string{m.Title, m.Director, m.Actors, m.Genre, m.Year, m.IMDbID}
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != "" {
			terms = append(terms, f)
		}
	}

	index := strings.ToLower(strings.Join(terms, " "))
	if utf8.RuneCountInString(index) > MaxSearchTermsLength {
		index = string([]rune(index)[:MaxSearchTermsLength])
	}
	return index
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	IMDbID     *string
	Title      *string
	Year       *string
	Type       *Type
	Poster     *string
	Plot       *string
	Director   *string
	Actors     *string
	Genre      *string
	Runtime    *string
	Rated      *string
	Released   *string
	IMDbRating *string

	// SearchTerms is set by the usecase, never by callers.
	SearchTerms *string
}

// TouchesIndex reports whether the patch changes any field SearchTerms is
// derived from.
func (p Patch) TouchesIndex() bool {
	return p.Title != nil || p.Director != nil || p.Actors != nil ||
		p.Genre != nil || p.Year != nil || p.IMDbID != nil
}

func (p Patch) IsEmpty() bool {
	return !p.TouchesIndex() && p.Type == nil && p.Poster == nil && p.Plot == nil &&
		p.Runtime == nil && p.Rated == nil && p.Released == nil &&
		p.IMDbRating == nil && p.SearchTerms == nil
}

// Apply returns m with every non-nil field of p merged over it.
func (p Patch) Apply(m Movie) Movie {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&m.IMDbID, p.IMDbID)
	set(&m.Title, p.Title)
	set(&m.Year, p.Year)
	set(&m.Poster, p.Poster)
	set(&m.Plot, p.Plot)
	set(&m.Director, p.Director)
	set(&m.Actors, p.Actors)
	set(&m.Genre, p.Genre)
	set(&m.Runtime, p.Runtime)
	set(&m.Rated, p.Rated)
	set(&m.Released, p.Released)
	set(&m.IMDbRating, p.IMDbRating)
	set(&m.SearchTerms, p.SearchTerms)
	if p.Type != nil {
		m.Type = *p.Type
	}
	return m
}

func (p Patch) validate() error {
	if p.IMDbID != nil && strings.TrimSpace(*p.IMDbID) == "" {
		return ErrIMDbIDRequired
	}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return ErrTitleRequired
	}

	// Unset fields take a value that always passes the format checks.
	probe := p.Apply(Movie{IMDbID: "tt0", Title: "-"})
	return probe.validateFormat()
}

const DefaultPageSize = 10

// MaxPage keeps the page offset, and offset plus page size, within an int.
const MaxPage = math.MaxInt / DefaultPageSize

type SearchQuery struct {
	Term string
	Type Type
	Page int
}

// SearchResult is one page of matches plus the total number of matches.
type SearchResult struct {
	Movies []Movie
	Total  int64
	Page   int
}

type ListQuery struct {
	Search string
	Limit  int
	Offset int
}

// Filter is what a repository needs to run a substring search.
type Filter struct {
	Term   string
	Type   Type
	Limit  int
	Offset int
}

type ImportResult struct {
	IMDbID  string `json:"imdbID"`
	Success bool   `json:"success"`
	Message string `json:"message"`
}

const ImportSucceeded = "Movie imported successfully"
