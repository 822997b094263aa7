package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"moviecatalog/movie"
)

// API is the part of *dynamodb.Client the movie repository uses.
type API interface {
	dynamodb.ScanAPIClient
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// MovieRepository stores movies in a table keyed by "id". Search and the
// imdbID lookups are filtered scans, which is fine for catalog sized tables.
type MovieRepository struct {
	client API
	table  string
	now    func() time.Time
}

type movieItem struct {
	ID          string    `dynamodbav:"id"`
	IMDbID      string    `dynamodbav:"imdb_id"`
	Title       string    `dynamodbav:"title"`
	Year        string    `dynamodbav:"year,omitempty"`
	Type        string    `dynamodbav:"type,omitempty"`
	Poster      string    `dynamodbav:"poster,omitempty"`
	Plot        string    `dynamodbav:"plot,omitempty"`
	Director    string    `dynamodbav:"director,omitempty"`
	Actors      string    `dynamodbav:"actors,omitempty"`
	Genre       string    `dynamodbav:"genre,omitempty"`
	Runtime     string    `dynamodbav:"runtime,omitempty"`
	Rated       string    `dynamodbav:"rated,omitempty"`
	Released    string    `dynamodbav:"released,omitempty"`
	IMDbRating  string    `dynamodbav:"imdb_rating,omitempty"`
	SearchTerms string    `dynamodbav:"search_terms"`
	CreatedAt   time.Time `dynamodbav:"created_at"`
	UpdatedAt   time.Time `dynamodbav:"updated_at"`
}

func NewMovieRepository(client API, table string) *MovieRepository {
	return &MovieRepository{
		client: client,
		table:  table,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func itemFromMovie(m movie.Movie) movieItem {
	return movieItem{
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

func (i movieItem) toMovie() movie.Movie {
	return movie.Movie{
		ID:          i.ID,
		IMDbID:      i.IMDbID,
		Title:       i.Title,
		Year:        i.Year,
		Type:        movie.Type(i.Type),
		Poster:      i.Poster,
		Plot:        i.Plot,
		Director:    i.Director,
		Actors:      i.Actors,
		Genre:       i.Genre,
		Runtime:     i.Runtime,
		Rated:       i.Rated,
		Released:    i.Released,
		IMDbRating:  i.IMDbRating,
		SearchTerms: i.SearchTerms,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

func (r *MovieRepository) Search(ctx context.Context, f movie.Filter) ([]movie.Movie, int64, error) {
	var filters []string
	values := map[string]types.AttributeValue{}
	names := map[string]string{}

	if term := strings.ToLower(strings.TrimSpace(f.Term)); term != "" {
		filters = append(filters, "contains(search_terms, :term)")
		values[":term"] = &types.AttributeValueMemberS{Value: term}
	}
	if f.Type != "" {
		filters = append(filters, "#type = :type")
		names["#type"] = "type"
		values[":type"] = &types.AttributeValueMemberS{Value: string(f.Type)}
	}

	input := &dynamodb.ScanInput{TableName: &r.table}
	if len(filters) > 0 {
		input.FilterExpression = aws.String(strings.Join(filters, " AND "))
		input.ExpressionAttributeValues = values
	}
	if len(names) > 0 {
		input.ExpressionAttributeNames = names
	}

	items, err := r.scan(ctx, input)
	if err != nil {
		return nil, 0, err
	}

	sortItems(items)
	total := int64(len(items))
	page := pageItems(items, f.Offset, f.Limit)

	movies := make([]movie.Movie, len(page))
	for i, item := range page {
		movies[i] = item.toMovie()
	}
	return movies, total, nil
}

func (r *MovieRepository) GetByID(ctx context.Context, id string) (movie.Movie, error) {
	item, err := r.getItem(ctx, id)
	if err != nil {
		return movie.Movie{}, err
	}
	return item.toMovie(), nil
}

func (r *MovieRepository) GetByIMDbID(ctx context.Context, imdbID string) (movie.Movie, error) {
	items, err := r.scanByIMDbID(ctx, imdbID)
	if err != nil {
		return movie.Movie{}, err
	}
	if len(items) == 0 {
		return movie.Movie{}, movie.ErrMovieNotFound
	}
	sortItems(items)
	return items[0].toMovie(), nil
}

func (r *MovieRepository) ExistsByIMDbID(ctx context.Context, imdbID, excludeID string) (bool, error) {
	items, err := r.scanByIMDbID(ctx, imdbID)
	if err != nil {
		return false, err
	}
	for _, item := range items {
		if item.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *MovieRepository) Create(ctx context.Context, m movie.Movie) (movie.Movie, error) {
	now := r.now()
	item := itemFromMovie(m)
	item.ID = uuid.NewString()
	item.CreatedAt = now
	item.UpdatedAt = now

	if err := r.putItem(ctx, item, "attribute_not_exists(id)"); err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return movie.Movie{}, movie.ErrImportDuplicate
		}
		return movie.Movie{}, err
	}
	return item.toMovie(), nil
}

func (r *MovieRepository) Update(ctx context.Context, id string, p movie.Patch) (movie.Movie, error) {
	current, err := r.getItem(ctx, id)
	if err != nil {
		return movie.Movie{}, err
	}
	if p.IsEmpty() {
		return current.toMovie(), nil
	}

	item := itemFromMovie(p.Apply(current.toMovie()))
	item.UpdatedAt = r.now()

	if err := r.putItem(ctx, item, "attribute_exists(id)"); err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return movie.Movie{}, movie.ErrMovieNotFound
		}
		return movie.Movie{}, err
	}
	return item.toMovie(), nil
}

func (r *MovieRepository) Delete(ctx context.Context, id string) error {
	if err := validateTable(r.table); err != nil {
		return err
	}

	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           &r.table,
		Key:                 movieKey(id),
		ConditionExpression: aws.String("attribute_exists(id)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return movie.ErrMovieNotFound
		}
		return fmt.Errorf("dynamodb: delete movie: %w", err)
	}
	return nil
}

func (r *MovieRepository) getItem(ctx context.Context, id string) (movieItem, error) {
	if err := validateTable(r.table); err != nil {
		return movieItem{}, err
	}

	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      &r.table,
		Key:            movieKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return movieItem{}, fmt.Errorf("dynamodb: get movie: %w", err)
	}
	if len(out.Item) == 0 {
		return movieItem{}, movie.ErrMovieNotFound
	}

	var item movieItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return movieItem{}, fmt.Errorf("dynamodb: unmarshal movie: %w", err)
	}
	return item, nil
}

func (r *MovieRepository) putItem(ctx context.Context, item movieItem, condition string) error {
	if err := validateTable(r.table); err != nil {
		return err
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("dynamodb: marshal movie: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           &r.table,
		Item:                av,
		ConditionExpression: aws.String(condition),
	})
	if err != nil {
		return fmt.Errorf("dynamodb: put movie: %w", err)
	}
	return nil
}

func (r *MovieRepository) scanByIMDbID(ctx context.Context, imdbID string) ([]movieItem, error) {
	return r.scan(ctx, &dynamodb.ScanInput{
		TableName:        &r.table,
		FilterExpression: aws.String("imdb_id = :imdb_id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":imdb_id": &types.AttributeValueMemberS{Value: imdbID},
		},
	})
}

func (r *MovieRepository) scan(ctx context.Context, input *dynamodb.ScanInput) ([]movieItem, error) {
	if err := validateTable(r.table); err != nil {
		return nil, err
	}

	var items []movieItem
	paginator := dynamodb.NewScanPaginator(r.client, input)
	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("dynamodb: scan movies: %w", err)
		}

		var page []movieItem
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("dynamodb: unmarshal movies: %w", err)
		}
		items = append(items, page...)
	}
	return items, nil
}

func movieKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id},
	}
}

// sortItems orders by creation time, then id, matching the SQL repository.
func sortItems(items []movieItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].ID < items[j].ID
	})
}

func pageItems(items []movieItem, offset, limit int) []movieItem {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
