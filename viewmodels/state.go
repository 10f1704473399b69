// Package viewmodels holds the view-state holders that fold repository
// results into immutable UI snapshots.
package viewmodels

import (
	"context"
	"sync"

	"moviebrowser/broadcast"
	"moviebrowser/models"
	"moviebrowser/repository"
)

// subscriberBuffer is the channel depth handed to every state subscriber
const subscriberBuffer = 8

// MovieStreams is the part of the repository the holders consume.
// *repository.MovieRepository satisfies it.
type MovieStreams interface {
	SearchMovies(query string) repository.Stream[[]models.Movie]
	GetPopularMovies() repository.Stream[[]models.Movie]
	GetTopRatedMovies() repository.Stream[[]models.Movie]
	GetMovieDetails(movieID int) repository.Stream[*models.MovieDetail]
}

// SearchUiState is the snapshot rendered by the search/listing screen
type SearchUiState struct {
	Movies      []models.Movie `json:"movies"`
	IsLoading   bool           `json:"is_loading"`
	Error       *string        `json:"error"`
	SearchQuery string         `json:"search_query"`
}

// DetailUiState is the snapshot rendered by the detail screen
type DetailUiState struct {
	Movie     *models.MovieDetail `json:"movie"`
	IsLoading bool                `json:"is_loading"`
	Error     *string             `json:"error"`
}

// store owns one snapshot. Snapshots are replaced wholesale under the lock
// and every replacement is published in order.
type store[S any] struct {
	mu    sync.RWMutex
	state S
	seq   uint64
	bus   *broadcast.Bus[S]
}

func newStore[S any](initial S) *store[S] {
	return &store[S]{state: initial, bus: broadcast.New[S]()}
}

func (s *store[S]) get() S {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// begin starts a new request generation and returns its sequence number.
// A non-nil prepare is applied to the snapshot in the same step.
func (s *store[S]) begin(prepare func(S) S) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	if prepare != nil {
		s.state = prepare(s.state)
		s.bus.Publish(s.state)
	}
	return s.seq
}

// updateFor replaces the snapshot only if seq is still the latest
// generation. It reports whether the update was applied.
func (s *store[S]) updateFor(seq uint64, fn func(S) S) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		return false
	}
	s.state = fn(s.state)
	s.bus.Publish(s.state)
	return true
}

// subscribe returns the current snapshot together with a channel of every
// later one, with no gap between the two.
func (s *store[S]) subscribe(id string) (S, <-chan S, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ch, err := s.bus.Subscribe(id, subscriberBuffer)
	return s.state, ch, err
}

func (s *store[S]) unsubscribe(id string) error {
	return s.bus.Unsubscribe(id)
}

func (s *store[S]) close() {
	_ = s.bus.Close()
}

// awaitIdle waits for wait to return or ctx to end
func awaitIdle(ctx context.Context, wait func()) error {
	done := make(chan struct{})
	go func() {
		wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
