package httpserver

import (
	"moviecatalog/movie"
)

type MovieRequest struct {
	IMDbID     string `json:"imdbID"`
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Type       string `json:"Type"`
	Poster     string `json:"Poster"`
	Plot       string `json:"Plot"`
	Director   string `json:"Director"`
	Actors     string `json:"Actors"`
	Genre      string `json:"Genre"`
	Runtime    string `json:"Runtime"`
	Rated      string `json:"Rated"`
	Released   string `json:"Released"`
	IMDbRating string `json:"imdbRating"`
}

func (r MovieRequest) ToMovie() movie.Movie {
	return movie.Movie{
		IMDbID:     r.IMDbID,
		Title:      r.Title,
		Year:       r.Year,
		Type:       movie.Type(r.Type),
		Poster:     r.Poster,
		Plot:       r.Plot,
		Director:   r.Director,
		Actors:     r.Actors,
		Genre:      r.Genre,
		Runtime:    r.Runtime,
		Rated:      r.Rated,
		Released:   r.Released,
		IMDbRating: r.IMDbRating,
	}
}

// UpdateMovieRequest distinguishes absent fields (nil) from empty ones.
type UpdateMovieRequest struct {
	IMDbID     *string `json:"imdbID"`
	Title      *string `json:"Title"`
	Year       *string `json:"Year"`
	Type       *string `json:"Type"`
	Poster     *string `json:"Poster"`
	Plot       *string `json:"Plot"`
	Director   *string `json:"Director"`
	Actors     *string `json:"Actors"`
	Genre      *string `json:"Genre"`
	Runtime    *string `json:"Runtime"`
	Rated      *string `json:"Rated"`
	Released   *string `json:"Released"`
	IMDbRating *string `json:"imdbRating"`
}

func (r UpdateMovieRequest) ToPatch() movie.Patch {
	p := movie.Patch{
		IMDbID:     r.IMDbID,
		Title:      r.Title,
		Year:       r.Year,
		Poster:     r.Poster,
		Plot:       r.Plot,
		Director:   r.Director,
		Actors:     r.Actors,
		Genre:      r.Genre,
		Runtime:    r.Runtime,
		Rated:      r.Rated,
		Released:   r.Released,
		IMDbRating: r.IMDbRating,
	}
	if r.Type != nil {
		t := movie.Type(*r.Type)
		p.Type = &t
	}
	return p
}

type ImportMoviesRequest struct {
	Movies []MovieRequest `json:"movies" validate:"required,max=1000"`
}

func (r ImportMoviesRequest) ToMovies() []movie.Movie {
	movies := make([]movie.Movie, len(r.Movies))
	for i, m := range r.Movies {
		movies[i] = m.ToMovie()
	}
	return movies
}

type ListMoviesRequest struct {
	Search string `query:"search" validate:"max=200"`
	Top    int    `query:"top" validate:"min=0"`
	Skip   int    `query:"skip" validate:"min=0"`
}
