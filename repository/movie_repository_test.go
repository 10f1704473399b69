package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"moviebrowser/models"
	"moviebrowser/result"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource records calls and answers with canned data
type fakeSource struct {
	mu      sync.Mutex
	calls   []string
	apiKeys []string
	movies  []models.Movie
	detail  *models.MovieDetail
	err     error
	block   chan struct{} // when set, calls wait for it or for ctx
}

func (f *fakeSource) record(call, apiKey string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	f.apiKeys = append(f.apiKeys, apiKey)
}

func (f *fakeSource) wait(ctx context.Context) error {
	if f.block == nil {
		return nil
	}
	select {
	case <-f.block:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeSource) list(ctx context.Context) (*models.MovieResponse, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return &models.MovieResponse{Page: 1, Results: f.movies, TotalPages: 1, TotalResults: len(f.movies)}, nil
}

func (f *fakeSource) SearchMovies(ctx context.Context, apiKey, query string) (*models.MovieResponse, error) {
	f.record("search:"+query, apiKey)
	return f.list(ctx)
}

func (f *fakeSource) GetPopularMovies(ctx context.Context, apiKey string) (*models.MovieResponse, error) {
	f.record("popular", apiKey)
	return f.list(ctx)
}

func (f *fakeSource) GetTopRatedMovies(ctx context.Context, apiKey string) (*models.MovieResponse, error) {
	f.record("top_rated", apiKey)
	return f.list(ctx)
}

func (f *fakeSource) GetMovieDetails(ctx context.Context, movieID int, apiKey string) (*models.MovieDetail, error) {
	f.record("details", apiKey)
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.detail, nil
}

func collectAll[T any](s Stream[T]) []result.Result[T] {
	var out []result.Result[T]
	s.Collect(context.Background(), func(r result.Result[T]) {
		out = append(out, r)
	})
	return out
}

func TestMovieRepository_SearchMovies_Success(t *testing.T) {
	source := &fakeSource{movies: []models.Movie{{ID: 1, Title: "Heat"}, {ID: 2, Title: "Ronin"}}}
	repo := NewMovieRepository(source, "key-123")

	results := collectAll(repo.SearchMovies("heat"))

	require.Len(t, results, 2)
	assert.True(t, results[0].IsLoading())
	movies, ok := results[1].Data()
	require.True(t, ok)
	assert.Equal(t, []string{"Heat", "Ronin"}, []string{movies[0].Title, movies[1].Title})
	assert.Equal(t, []string{"search:heat"}, source.calls)
	assert.Equal(t, []string{"key-123"}, source.apiKeys)
}

func TestMovieRepository_ListOperations(t *testing.T) {
	source := &fakeSource{movies: []models.Movie{{ID: 7}}}
	repo := NewMovieRepository(source, "key")

	popular := collectAll(repo.GetPopularMovies())
	topRated := collectAll(repo.GetTopRatedMovies())

	for _, results := range [][]result.Result[[]models.Movie]{popular, topRated} {
		require.Len(t, results, 2)
		assert.Equal(t, result.KindLoading, results[0].Kind())
		assert.Equal(t, result.KindSuccess, results[1].Kind())
	}
	assert.Equal(t, []string{"popular", "top_rated"}, source.calls)
}

func TestMovieRepository_GetMovieDetails(t *testing.T) {
	source := &fakeSource{detail: &models.MovieDetail{ID: 42, Title: "The Answer"}}
	repo := NewMovieRepository(source, "key")

	results := collectAll(repo.GetMovieDetails(42))

	require.Len(t, results, 2)
	detail, ok := results[1].Data()
	require.True(t, ok)
	assert.Equal(t, 42, detail.ID)
}

func TestMovieRepository_FaultBecomesError(t *testing.T) {
	source := &fakeSource{err: errors.New("timeout")}
	repo := NewMovieRepository(source, "key")

	results := collectAll(repo.GetPopularMovies())

	require.Len(t, results, 2)
	assert.True(t, results[0].IsLoading())
	msg, ok := results[1].Message()
	require.True(t, ok)
	assert.Equal(t, "timeout", msg)
}

func TestMovieRepository_FaultWithoutMessage(t *testing.T) {
	source := &fakeSource{err: errors.New("")}
	repo := NewMovieRepository(source, "key")

	results := collectAll(repo.GetMovieDetails(1))

	require.Len(t, results, 2)
	msg, ok := results[1].Message()
	require.True(t, ok)
	assert.Equal(t, "An error occurred", msg)
}

func TestStream_IsCold(t *testing.T) {
	source := &fakeSource{}
	repo := NewMovieRepository(source, "key")

	stream := repo.GetPopularMovies()
	assert.Empty(t, source.calls, "creating a stream must not call the source")

	collectAll(stream)
	collectAll(stream)
	assert.Equal(t, []string{"popular", "popular"}, source.calls)
}

func TestStream_Chan(t *testing.T) {
	source := &fakeSource{movies: []models.Movie{{ID: 1}}}
	repo := NewMovieRepository(source, "key")

	var kinds []result.Kind
	for r := range repo.SearchMovies("x").Chan(context.Background()) {
		kinds = append(kinds, r.Kind())
	}
	assert.Equal(t, []result.Kind{result.KindLoading, result.KindSuccess}, kinds)
}

func TestStream_CancelledSkipsTerminal(t *testing.T) {
	source := &fakeSource{block: make(chan struct{})}
	repo := NewMovieRepository(source, "key")

	ctx, cancel := context.WithCancel(context.Background())
	ch := repo.GetPopularMovies().Chan(ctx)

	first := <-ch
	assert.True(t, first.IsLoading())
	cancel()

	_, open := <-ch
	assert.False(t, open, "no terminal result after cancellation")
}

func TestStream_Await(t *testing.T) {
	source := &fakeSource{err: errors.New("offline")}
	repo := NewMovieRepository(source, "key")

	r := repo.GetTopRatedMovies().Await(context.Background())
	msg, ok := r.Message()
	require.True(t, ok)
	assert.Equal(t, "offline", msg)
}
