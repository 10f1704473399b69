// Package repository turns remote data source calls into streams of results.
package repository

import (
	"context"
	"log/slog"

	"moviebrowser/models"
	"moviebrowser/result"
)

// MovieSource is the remote data source the repository wraps.
// TMDBService satisfies it.
type MovieSource interface {
	SearchMovies(ctx context.Context, apiKey, query string) (*models.MovieResponse, error)
	GetPopularMovies(ctx context.Context, apiKey string) (*models.MovieResponse, error)
	GetTopRatedMovies(ctx context.Context, apiKey string) (*models.MovieResponse, error)
	GetMovieDetails(ctx context.Context, movieID int, apiKey string) (*models.MovieDetail, error)
}

// MovieRepository exposes the data source as cold result streams
type MovieRepository struct {
	source MovieSource
	apiKey string
}

// NewMovieRepository creates a new movie repository. apiKey is passed to
// every data source call for the lifetime of the repository.
func NewMovieRepository(source MovieSource, apiKey string) *MovieRepository {
	return &MovieRepository{source: source, apiKey: apiKey}
}

// SearchMovies streams the first page of search results for query
func (r *MovieRepository) SearchMovies(query string) Stream[[]models.Movie] {
	return newStream("search", func(ctx context.Context) ([]models.Movie, error) {
		resp, err := r.source.SearchMovies(ctx, r.apiKey, query)
		if err != nil {
			return nil, err
		}
		return resp.Results, nil
	})
}

// GetPopularMovies streams the first page of popular movies
func (r *MovieRepository) GetPopularMovies() Stream[[]models.Movie] {
	return newStream("popular", func(ctx context.Context) ([]models.Movie, error) {
		resp, err := r.source.GetPopularMovies(ctx, r.apiKey)
		if err != nil {
			return nil, err
		}
		return resp.Results, nil
	})
}

// GetTopRatedMovies streams the first page of top-rated movies
func (r *MovieRepository) GetTopRatedMovies() Stream[[]models.Movie] {
	return newStream("top_rated", func(ctx context.Context) ([]models.Movie, error) {
		resp, err := r.source.GetTopRatedMovies(ctx, r.apiKey)
		if err != nil {
			return nil, err
		}
		return resp.Results, nil
	})
}

// GetMovieDetails streams the full record of one movie
func (r *MovieRepository) GetMovieDetails(movieID int) Stream[*models.MovieDetail] {
	return newStream("details", func(ctx context.Context) (*models.MovieDetail, error) {
		return r.source.GetMovieDetails(ctx, movieID, r.apiKey)
	})
}

// Stream is a cold sequence of results for one logical fetch. Nothing
// happens until it is collected, and every collection performs a fresh
// call. A collection emits Loading followed by exactly one Success or
// Error, unless its context is cancelled first, in which case it stops
// without a terminal value.
type Stream[T any] struct {
	name  string
	fetch func(ctx context.Context) (T, error)
}

func newStream[T any](name string, fetch func(ctx context.Context) (T, error)) Stream[T] {
	return Stream[T]{name: name, fetch: fetch}
}

// Collect runs the fetch on the calling goroutine and hands every result to emit
func (s Stream[T]) Collect(ctx context.Context, emit func(result.Result[T])) {
	emit(result.Loading[T]())

	data, err := s.fetch(ctx)
	if ctx.Err() != nil {
		slog.Debug("Fetch abandoned", "stream", s.name, "reason", ctx.Err())
		return
	}
	if err != nil {
		slog.Info("Fetch failed", "stream", s.name, "error", err)
		emit(result.Error[T](err.Error()))
		return
	}
	emit(result.Success(data))
}

// Chan collects the stream on a new goroutine. The returned channel is
// buffered for the whole sequence and closed once the stream completes.
func (s Stream[T]) Chan(ctx context.Context) <-chan result.Result[T] {
	ch := make(chan result.Result[T], 2)
	go func() {
		defer close(ch)
		s.Collect(ctx, func(r result.Result[T]) {
			ch <- r
		})
	}()
	return ch
}

// Await collects the stream and returns its terminal result. If ctx is
// cancelled before one arrives, the returned result is Loading.
func (s Stream[T]) Await(ctx context.Context) result.Result[T] {
	last := result.Loading[T]()
	s.Collect(ctx, func(r result.Result[T]) {
		last = r
	})
	return last
}
