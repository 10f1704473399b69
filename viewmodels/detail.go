package viewmodels

import (
	"context"
	"log/slog"
	"strconv"

	"moviebrowser/jobs"
	"moviebrowser/models"
	"moviebrowser/result"
)

// RouteParamMovieID is the route parameter naming the movie to show
const RouteParamMovieID = "movieId"

// DetailViewModel backs the detail screen of a single movie
type DetailViewModel struct {
	repo    MovieStreams
	jobs    *jobs.JobManager
	store   *store[DetailUiState]
	movieID int
	hasID   bool
}

// NewDetailViewModel reads the movie id from the route parameters and, if
// it is present and numeric, starts loading its details. Otherwise the
// holder stays in its initial empty state.
func NewDetailViewModel(repo MovieStreams, params map[string]string) *DetailViewModel {
	vm := &DetailViewModel{
		repo:  repo,
		jobs:  jobs.NewJobManager("detail"),
		store: newStore(DetailUiState{}),
	}
	vm.jobs.Start()

	raw, ok := params[RouteParamMovieID]
	if !ok {
		return vm
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		slog.Debug("Ignoring non-numeric movie id", "movie_id", raw)
		return vm
	}

	vm.movieID, vm.hasID = id, true
	vm.loadMovieDetails(id)
	return vm
}

// MovieID returns the parsed route id and whether one was present
func (vm *DetailViewModel) MovieID() (int, bool) {
	return vm.movieID, vm.hasID
}

// State returns the current snapshot
func (vm *DetailViewModel) State() DetailUiState {
	return vm.store.get()
}

// Subscribe returns the current snapshot and a channel receiving every later one
func (vm *DetailViewModel) Subscribe(id string) (DetailUiState, <-chan DetailUiState, error) {
	return vm.store.subscribe(id)
}

// Unsubscribe stops delivery to id and closes its channel
func (vm *DetailViewModel) Unsubscribe(id string) error {
	return vm.store.unsubscribe(id)
}

// AwaitIdle blocks until the detail fetch has finished or ctx ends, then
// returns the current snapshot.
func (vm *DetailViewModel) AwaitIdle(ctx context.Context) (DetailUiState, error) {
	err := awaitIdle(ctx, vm.jobs.Wait)
	return vm.State(), err
}

// Close cancels a pending fetch and closes every subscription
func (vm *DetailViewModel) Close() {
	vm.jobs.Stop()
	vm.store.close()
}

func (vm *DetailViewModel) loadMovieDetails(movieID int) {
	seq := vm.store.begin(nil)
	stream := vm.repo.GetMovieDetails(movieID)

	vm.jobs.Launch(func(ctx context.Context) {
		stream.Collect(ctx, func(r result.Result[*models.MovieDetail]) {
			vm.store.updateFor(seq, foldDetail(r))
		})
	})
}

func foldDetail(r result.Result[*models.MovieDetail]) func(DetailUiState) DetailUiState {
	return func(prev DetailUiState) DetailUiState {
		return result.Match(r, result.Handlers[*models.MovieDetail, DetailUiState]{
			Loading: func() DetailUiState {
				next := prev
				next.IsLoading = true
				next.Error = nil
				return next
			},
			Success: func(movie *models.MovieDetail) DetailUiState {
				next := prev
				next.Movie = movie
				next.IsLoading = false
				next.Error = nil
				return next
			},
			Error: func(message string) DetailUiState {
				next := prev
				next.IsLoading = false
				next.Error = &message
				return next
			},
		})
	}
}
