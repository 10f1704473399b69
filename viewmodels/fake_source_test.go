package viewmodels

import (
	"context"
	"fmt"
	"sync"

	"moviebrowser/models"
	"moviebrowser/repository"
)

// fakeSource is a scripted remote data source. Calls whose name has a gate
// block until the gate is closed or their context ends.
type fakeSource struct {
	mu       sync.Mutex
	calls    []string
	popular  []models.Movie
	topRated []models.Movie
	search   map[string][]models.Movie
	details  map[int]*models.MovieDetail
	errs     map[string]error
	gates    map[string]chan struct{}
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		popular:  []models.Movie{{ID: 1, Title: "Popular One"}, {ID: 2, Title: "Popular Two"}},
		topRated: []models.Movie{{ID: 3, Title: "Top Rated"}},
		search:   map[string][]models.Movie{},
		details:  map[int]*models.MovieDetail{},
		errs:     map[string]error{},
		gates:    map[string]chan struct{}{},
	}
}

func (f *fakeSource) setErr(call string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.errs, call)
		return
	}
	f.errs[call] = err
}

func (f *fakeSource) gate(call string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[call] = ch
	return ch
}

func (f *fakeSource) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeSource) enter(ctx context.Context, call string) error {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	gate := f.gates[call]
	err := f.errs[call]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (f *fakeSource) page(movies []models.Movie) *models.MovieResponse {
	return &models.MovieResponse{Page: 1, Results: movies, TotalPages: 1, TotalResults: len(movies)}
}

func (f *fakeSource) SearchMovies(ctx context.Context, apiKey, query string) (*models.MovieResponse, error) {
	if err := f.enter(ctx, "search:"+query); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.page(f.search[query]), nil
}

func (f *fakeSource) GetPopularMovies(ctx context.Context, apiKey string) (*models.MovieResponse, error) {
	if err := f.enter(ctx, "popular"); err != nil {
		return nil, err
	}
	return f.page(f.popular), nil
}

func (f *fakeSource) GetTopRatedMovies(ctx context.Context, apiKey string) (*models.MovieResponse, error) {
	if err := f.enter(ctx, "top_rated"); err != nil {
		return nil, err
	}
	return f.page(f.topRated), nil
}

func (f *fakeSource) GetMovieDetails(ctx context.Context, movieID int, apiKey string) (*models.MovieDetail, error) {
	if err := f.enter(ctx, fmt.Sprintf("details:%d", movieID)); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if d, ok := f.details[movieID]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("movie %d not found", movieID)
}

func newTestRepo(source *fakeSource) *repository.MovieRepository {
	return repository.NewMovieRepository(source, "test-key")
}

// drain reads every snapshot already queued on ch
func drain[S any](ch <-chan S) []S {
	var out []S
	for {
		select {
		case s, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, s)
		default:
			return out
		}
	}
}
