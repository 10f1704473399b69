// Package sessions keeps the search holders that belong to connected clients.
package sessions

import (
	"errors"
	"log/slog"
	"sync"

	"moviebrowser/viewmodels"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for an unknown or already closed session id
var ErrSessionNotFound = errors.New("session not found")

// Registry maps session ids to search holders
type Registry struct {
	mu       sync.RWMutex
	repo     viewmodels.MovieStreams
	sessions map[string]*viewmodels.SearchViewModel
}

// NewRegistry creates an empty registry whose holders read from repo
func NewRegistry(repo viewmodels.MovieStreams) *Registry {
	return &Registry{
		repo:     repo,
		sessions: make(map[string]*viewmodels.SearchViewModel),
	}
}

// Create starts a new search holder under a fresh id
func (r *Registry) Create() (string, *viewmodels.SearchViewModel) {
	id := uuid.NewString()
	vm := viewmodels.NewSearchViewModel(r.repo)

	r.mu.Lock()
	r.sessions[id] = vm
	r.mu.Unlock()

	slog.Info("Session created", "session", id)
	return id, vm
}

// Get looks up a session
func (r *Registry) Get(id string) (*viewmodels.SearchViewModel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	vm, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return vm, nil
}

// Delete removes a session and closes its holder
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	vm, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	vm.Close()
	slog.Info("Session closed", "session", id)
	return nil
}

// Len returns the number of open sessions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// CloseAll closes every holder. Used on shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	open := r.sessions
	r.sessions = make(map[string]*viewmodels.SearchViewModel)
	r.mu.Unlock()

	for id, vm := range open {
		vm.Close()
		slog.Debug("Session closed on shutdown", "session", id)
	}
}
