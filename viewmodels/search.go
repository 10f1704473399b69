package viewmodels

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"moviebrowser/jobs"
	"moviebrowser/models"
	"moviebrowser/repository"
	"moviebrowser/result"
)

// SearchViewModel backs the search/listing screen. It loads the popular
// list on construction; every later operation supersedes the one before it.
type SearchViewModel struct {
	repo  MovieStreams
	jobs  *jobs.JobManager
	store *store[SearchUiState]

	launchMu   sync.Mutex
	cancelPrev context.CancelFunc
}

// NewSearchViewModel creates the holder and immediately starts loading popular movies
func NewSearchViewModel(repo MovieStreams) *SearchViewModel {
	vm := &SearchViewModel{
		repo:  repo,
		jobs:  jobs.NewJobManager("search"),
		store: newStore(SearchUiState{Movies: []models.Movie{}}),
	}
	vm.jobs.Start()
	vm.LoadPopularMovies()
	return vm
}

// State returns the current snapshot
func (vm *SearchViewModel) State() SearchUiState {
	return vm.store.get()
}

// SearchMovies searches by title. A blank query reloads the popular list.
// The query stays in the state after the search completes or fails.
func (vm *SearchViewModel) SearchMovies(query string) {
	if strings.TrimSpace(query) == "" {
		vm.LoadPopularMovies()
		return
	}

	setQuery := func(s SearchUiState) SearchUiState {
		s.SearchQuery = query
		return s
	}
	vm.launch("search", vm.repo.SearchMovies(query), setQuery, nil)
}

// LoadPopularMovies replaces the list with popular movies and clears the query on success
func (vm *SearchViewModel) LoadPopularMovies() {
	vm.launch("popular", vm.repo.GetPopularMovies(), nil, clearQuery)
}

// LoadTopRatedMovies replaces the list with top-rated movies and clears the query on success
func (vm *SearchViewModel) LoadTopRatedMovies() {
	vm.launch("top_rated", vm.repo.GetTopRatedMovies(), nil, clearQuery)
}

// ClearSearch resets the query and reloads the popular list
func (vm *SearchViewModel) ClearSearch() {
	resetQuery := func(s SearchUiState) SearchUiState {
		clearQuery(&s)
		return s
	}
	vm.launch("popular", vm.repo.GetPopularMovies(), resetQuery, clearQuery)
}

// Subscribe returns the current snapshot and a channel receiving every later one
func (vm *SearchViewModel) Subscribe(id string) (SearchUiState, <-chan SearchUiState, error) {
	return vm.store.subscribe(id)
}

// Unsubscribe stops delivery to id and closes its channel
func (vm *SearchViewModel) Unsubscribe(id string) error {
	return vm.store.unsubscribe(id)
}

// Close cancels pending fetches, waits for them and closes every subscription
func (vm *SearchViewModel) Close() {
	vm.jobs.Stop()
	vm.store.close()
}

func clearQuery(s *SearchUiState) {
	s.SearchQuery = ""
}

// launch starts a new generation: the previous fetch is cancelled and any
// result it still delivers is ignored. prepare, if set, is applied to the
// snapshot when the generation starts; onSuccess when it succeeds.
func (vm *SearchViewModel) launch(op string, stream repository.Stream[[]models.Movie],
	prepare func(SearchUiState) SearchUiState, onSuccess func(*SearchUiState)) {
	vm.launchMu.Lock()
	defer vm.launchMu.Unlock()

	if vm.cancelPrev != nil {
		vm.cancelPrev()
	}
	seq := vm.store.begin(prepare)

	cancel, ok := vm.jobs.LaunchCancellable(func(ctx context.Context) {
		stream.Collect(ctx, func(r result.Result[[]models.Movie]) {
			if !vm.store.updateFor(seq, foldMovies(r, onSuccess)) {
				slog.Debug("Dropped superseded result", "op", op, "seq", seq, "kind", r.Kind())
			}
		})
	})
	if !ok {
		slog.Warn("Search view model is closed, ignoring operation", "op", op)
	}
	vm.cancelPrev = cancel
}

func foldMovies(r result.Result[[]models.Movie], onSuccess func(*SearchUiState)) func(SearchUiState) SearchUiState {
	return func(prev SearchUiState) SearchUiState {
		return result.Match(r, result.Handlers[[]models.Movie, SearchUiState]{
			Loading: func() SearchUiState {
				next := prev
				next.IsLoading = true
				next.Error = nil
				return next
			},
			Success: func(movies []models.Movie) SearchUiState {
				next := prev
				next.Movies = movies
				if next.Movies == nil {
					next.Movies = []models.Movie{}
				}
				next.IsLoading = false
				next.Error = nil
				if onSuccess != nil {
					onSuccess(&next)
				}
				return next
			},
			// previously loaded movies stay in place
			Error: func(message string) SearchUiState {
				next := prev
				next.IsLoading = false
				next.Error = &message
				return next
			},
		})
	}
}
