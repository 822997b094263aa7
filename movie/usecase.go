package movie

import (
	"context"
	"strings"

	"moviecatalog/errs"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 1000
)

type Service interface {
	Search(ctx context.Context, q SearchQuery) (SearchResult, error)
	LookupByIMDbID(ctx context.Context, imdbID string) (Movie, error)
	Create(ctx context.Context, m Movie) (Movie, error)
	Update(ctx context.Context, id string, p Patch) (Movie, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (Movie, error)
	List(ctx context.Context, q ListQuery) ([]Movie, int64, error)
	BatchImport(ctx context.Context, movies []Movie) []ImportResult
}

type Repository interface {
	// Search returns one page of movies matching f and the total match count.
	Search(ctx context.Context, f Filter) ([]Movie, int64, error)
	GetByID(ctx context.Context, id string) (Movie, error)
	GetByIMDbID(ctx context.Context, imdbID string) (Movie, error)
	// ExistsByIMDbID ignores the record whose id equals excludeID.
	ExistsByIMDbID(ctx context.Context, imdbID, excludeID string) (bool, error)
	Create(ctx context.Context, m Movie) (Movie, error)
	Update(ctx context.Context, id string, p Patch) (Movie, error)
	Delete(ctx context.Context, id string) error
}

type Usecase struct {
	r Repository
}

func NewUsecase(r Repository) *Usecase {
	return &Usecase{r: r}
}

func (uc *Usecase) Search(ctx context.Context, q SearchQuery) (SearchResult, error) {
	if q.Type != "" && !q.Type.Valid() {
		return SearchResult{}, ErrInvalidType
	}

	term := strings.TrimSpace(q.Term)
	if term == "" {
		return SearchResult{}, ErrSearchTermRequired
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}

	movies, total, err := uc.r.Search(ctx, Filter{
		Term:   term,
		Type:   q.Type,
		Limit:  DefaultPageSize,
		Offset: (page - 1) * DefaultPageSize,
	})
	if err != nil {
		return SearchResult{}, err
	}
	if total == 0 {
		return SearchResult{}, ErrMovieNotFound
	}

	if movies == nil {
		movies = []Movie{}
	}
	return SearchResult{Movies: movies, Total: total, Page: page}, nil
}

func (uc *Usecase) LookupByIMDbID(ctx context.Context, imdbID string) (Movie, error) {
	if err := ValidateIMDbID(imdbID); err != nil {
		return Movie{}, err
	}
	return uc.r.GetByIMDbID(ctx, imdbID)
}

func (uc *Usecase) Create(ctx context.Context, m Movie) (Movie, error) {
	if err := m.Validate(); err != nil {
		return Movie{}, err
	}

	exists, err := uc.r.ExistsByIMDbID(ctx, m.IMDbID, "")
	if err != nil {
		return Movie{}, err
	}
	if exists {
		return Movie{}, errs.Errorf(errs.ECONFLICT, "Movie with imdbID %s already exists", m.IMDbID)
	}

	return uc.insert(ctx, m)
}

func (uc *Usecase) Update(ctx context.Context, id string, p Patch) (Movie, error) {
	if strings.TrimSpace(id) == "" {
		return Movie{}, ErrMovieNotFound
	}
	if err := p.validate(); err != nil {
		return Movie{}, err
	}
	p.SearchTerms = nil

	if p.IMDbID != nil {
		exists, err := uc.r.ExistsByIMDbID(ctx, *p.IMDbID, id)
		if err != nil {
			return Movie{}, err
		}
		if exists {
			return Movie{}, errs.Errorf(errs.ECONFLICT, "Movie with imdbID %s already exists", *p.IMDbID)
		}
	}

	if p.TouchesIndex() {
		current, err := uc.r.GetByID(ctx, id)
		if err != nil {
			return Movie{}, err
		}
		terms := SearchTerms(p.Apply(current))
		p.SearchTerms = &terms
	}

	return uc.r.Update(ctx, id, p)
}

func (uc *Usecase) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrMovieNotFound
	}
	return uc.r.Delete(ctx, id)
}

func (uc *Usecase) Get(ctx context.Context, id string) (Movie, error) {
	if strings.TrimSpace(id) == "" {
		return Movie{}, ErrMovieNotFound
	}
	return uc.r.GetByID(ctx, id)
}

func (uc *Usecase) List(ctx context.Context, q ListQuery) ([]Movie, int64, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	return uc.r.Search(ctx, Filter{
		Term:   strings.TrimSpace(q.Search),
		Limit:  limit,
		Offset: offset,
	})
}

// BatchImport imports movies one by one in input order. A failing item is
// reported in its result and never stops the remaining items.
func (uc *Usecase) BatchImport(ctx context.Context, movies []Movie) []ImportResult {
	results := make([]ImportResult, 0, len(movies))
	for _, m := range movies {
		results = append(results, uc.importOne(ctx, m))
	}
	return results
}

func (uc *Usecase) importOne(ctx context.Context, m Movie) ImportResult {
	if strings.TrimSpace(m.IMDbID) == "" || strings.TrimSpace(m.Title) == "" {
		id := m.IMDbID
		if id == "" {
			id = "unknown"
		}
		return ImportResult{IMDbID: id, Message: ErrImportFieldsMissing.Message}
	}

	exists, err := uc.r.ExistsByIMDbID(ctx, m.IMDbID, "")
	if err != nil {
		return importFailure(m.IMDbID, err)
	}
	if exists {
		return ImportResult{IMDbID: m.IMDbID, Message: ErrImportDuplicate.Message}
	}

	if err := m.Validate(); err != nil {
		return importFailure(m.IMDbID, err)
	}
	if _, err := uc.insert(ctx, m); err != nil {
		return importFailure(m.IMDbID, err)
	}

	return ImportResult{IMDbID: m.IMDbID, Success: true, Message: ImportSucceeded}
}

func (uc *Usecase) insert(ctx context.Context, m Movie) (Movie, error) {
	m.ID = ""
	m.SearchTerms = SearchTerms(m)
	return uc.r.Create(ctx, m)
}

func importFailure(imdbID string, err error) ImportResult {
	msg := err.Error()
	if errs.ErrorCode(err) != errs.EINTERNAL {
		msg = errs.ErrorMessage(err)
	}
	return ImportResult{IMDbID: imdbID, Message: msg}
}
