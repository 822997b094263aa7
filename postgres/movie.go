package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"moviecatalog/movie"
)

// MovieModel is the row layout of the movies table. It is shared by the
// Postgres migrations and the SQLite AutoMigrate path.
type MovieModel struct {
	ID          string `gorm:"primaryKey;type:varchar(36)"`
	IMDbID      string `gorm:"column:imdb_id;type:varchar(20);not null;uniqueIndex:idx_movies_imdb_id"`
	Title       string `gorm:"type:varchar(200);not null"`
	Year        string `gorm:"type:varchar(4);not null;default:''"`
	Type        string `gorm:"type:varchar(10);not null;default:''"`
	Poster      string `gorm:"type:varchar(500);not null;default:''"`
	Plot        string `gorm:"not null;default:''"`
	Director    string `gorm:"not null;default:''"`
	Actors      string `gorm:"not null;default:''"`
	Genre       string `gorm:"not null;default:''"`
	Runtime     string `gorm:"not null;default:''"`
	Rated       string `gorm:"not null;default:''"`
	Released    string `gorm:"not null;default:''"`
	IMDbRating  string `gorm:"column:imdb_rating;type:varchar(5);not null;default:''"`
	SearchTerms string `gorm:"column:search_terms;type:varchar(1000);not null;default:''"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (MovieModel) TableName() string {
	return "movies"
}

func toModel(m movie.Movie) MovieModel {
	return MovieModel{
		ID:          m.ID,
		IMDbID:      m.IMDbID,
		Title:       m.Title,
		Year:        m.Year,
		Type:        string(m.Type),
		Poster:      m.Poster,
		Plot:        m.Plot,
		Director:    m.Director,
		Actors:      m.Actors,
		Genre:       m.Genre,
		Runtime:     m.Runtime,
		Rated:       m.Rated,
		Released:    m.Released,
		IMDbRating:  m.IMDbRating,
		SearchTerms: m.SearchTerms,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func (m MovieModel) toDomain() movie.Movie {
	return movie.Movie{
		ID:          m.ID,
		IMDbID:      m.IMDbID,
		Title:       m.Title,
		Year:        m.Year,
		Type:        movie.Type(m.Type),
		Poster:      m.Poster,
		Plot:        m.Plot,
		Director:    m.Director,
		Actors:      m.Actors,
		Genre:       m.Genre,
		Runtime:     m.Runtime,
		Rated:       m.Rated,
		Released:    m.Released,
		IMDbRating:  m.IMDbRating,
		SearchTerms: m.SearchTerms,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// MovieRepository implements movie.Repository on top of gorm. The queries
// avoid dialect specific operators so the same code serves Postgres and
// SQLite.
type MovieRepository struct {
	db *gorm.DB
}

func NewMovieRepository(db *gorm.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}

func (r *MovieRepository) Search(ctx context.Context, f movie.Filter) ([]movie.Movie, int64, error) {
	query := r.db.WithContext(ctx).Model(&MovieModel{})
	if term := strings.TrimSpace(f.Term); term != "" {
		pattern := containsPattern(term)
		query = query.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR search_terms LIKE ? ESCAPE '\')`, pattern, pattern)
	}
	if f.Type != "" {
		query = query.Where("type = ?", string(f.Type))
	}
	// Count and Find each branch off the filtered statement.
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []movie.Movie{}, 0, nil
	}

	var models []MovieModel
	err := query.
		Order("created_at ASC").
		Order("id ASC").
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	movies := make([]movie.Movie, len(models))
	for i, m := range models {
		movies[i] = m.toDomain()
	}
	return movies, total, nil
}

func (r *MovieRepository) GetByID(ctx context.Context, id string) (movie.Movie, error) {
	var m MovieModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return movie.Movie{}, translateError(err)
	}
	return m.toDomain(), nil
}

func (r *MovieRepository) GetByIMDbID(ctx context.Context, imdbID string) (movie.Movie, error) {
	var m MovieModel
	if err := r.db.WithContext(ctx).Where("imdb_id = ?", imdbID).First(&m).Error; err != nil {
		return movie.Movie{}, translateError(err)
	}
	return m.toDomain(), nil
}

func (r *MovieRepository) ExistsByIMDbID(ctx context.Context, imdbID, excludeID string) (bool, error) {
	query := r.db.WithContext(ctx).Model(&MovieModel{}).Where("imdb_id = ?", imdbID)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *MovieRepository) Create(ctx context.Context, m movie.Movie) (movie.Movie, error) {
	model := toModel(m)
	model.ID = uuid.NewString()

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return movie.Movie{}, translateError(err)
	}
	return model.toDomain(), nil
}

func (r *MovieRepository) Update(ctx context.Context, id string, p movie.Patch) (movie.Movie, error) {
	columns := patchColumns(p)
	if len(columns) == 0 {
		return r.GetByID(ctx, id)
	}
	columns["updated_at"] = time.Now().UTC()

	result := r.db.WithContext(ctx).Model(&MovieModel{}).Where("id = ?", id).Updates(columns)
	if result.Error != nil {
		return movie.Movie{}, translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return movie.Movie{}, movie.ErrMovieNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *MovieRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&MovieModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return movie.ErrMovieNotFound
	}
	return nil
}

func patchColumns(p movie.Patch) map[string]interface{} {
	columns := map[string]interface{}{}
	set := func(column string, v *string) {
		if v != nil {
			columns[column] = *v
		}
	}
	set("imdb_id", p.IMDbID)
	set("title", p.Title)
	set("year", p.Year)
	set("poster", p.Poster)
	set("plot", p.Plot)
	set("director", p.Director)
	set("actors", p.Actors)
	set("genre", p.Genre)
	set("runtime", p.Runtime)
	set("rated", p.Rated)
	set("released", p.Released)
	set("imdb_rating", p.IMDbRating)
	set("search_terms", p.SearchTerms)
	if p.Type != nil {
		columns["type"] = string(*p.Type)
	}
	return columns
}

func translateError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return movie.ErrMovieNotFound
	}
	if isUniqueViolation(err) {
		return movie.ErrImportDuplicate
	}
	return err
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
