// Package main provides the HTTP entry point for the movie browser.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"moviebrowser/config"
	"moviebrowser/logging"
	"moviebrowser/repository"
	"moviebrowser/services"
	"moviebrowser/sessions"
	"moviebrowser/viewmodels"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const appName = "moviebrowser"

// shutdownTimeout bounds graceful shutdown of the HTTP server
const shutdownTimeout = 10 * time.Second

// defaultDetailWait is used when no detail wait is configured
const defaultDetailWait = 20 * time.Second

// App represents the application with its dependencies
type App struct {
	repo       viewmodels.MovieStreams
	sessions   *sessions.Registry
	detailWait time.Duration
}

// NewApp wires the holders to repo
func NewApp(repo viewmodels.MovieStreams, detailWait time.Duration) *App {
	if detailWait <= 0 {
		detailWait = defaultDetailWait
	}
	return &App{
		repo:       repo,
		sessions:   sessions.NewRegistry(repo),
		detailWait: detailWait,
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(appName, cfg.Log.Level, cfg.Log.Format, os.Stdout)
	slog.Info("Configuration loaded",
		"tmdb_base_url", cfg.TMDB.BaseURL,
		"tmdb_api_key", logging.MaskToken(cfg.TMDB.APIKey),
		"tmdb_qps", cfg.TMDB.QPS,
		"addr", cfg.Server.Addr)

	tmdbService := services.NewTMDBService(cfg.TMDB.BaseURL, cfg.TMDB.QPS, cfg.TMDB.Timeout)
	movieRepo := repository.NewMovieRepository(tmdbService, cfg.TMDB.APIKey)
	app := NewApp(movieRepo, cfg.Server.DetailWait)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      app.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "addr", cfg.Server.Addr)
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
		}
	case <-ctx.Done():
		slog.Info("Shutting down")
	}

	// Close sessions first so open event streams end
	app.sessions.CloseAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}

// Router builds the HTTP routes
func (app *App) Router() *mux.Router {
	r := mux.NewRouter()

	// Health check endpoint
	r.HandleFunc("/health", healthHandler).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()

	// Search sessions
	api.HandleFunc("/sessions", app.createSessionHandler).Methods("POST")
	api.HandleFunc("/sessions/{id}", app.getSessionHandler).Methods("GET")
	api.HandleFunc("/sessions/{id}", app.deleteSessionHandler).Methods("DELETE")
	api.HandleFunc("/sessions/{id}/search", app.searchHandler).Methods("POST")
	api.HandleFunc("/sessions/{id}/popular", app.popularHandler).Methods("POST")
	api.HandleFunc("/sessions/{id}/top-rated", app.topRatedHandler).Methods("POST")
	api.HandleFunc("/sessions/{id}/clear", app.clearHandler).Methods("POST")
	api.HandleFunc("/sessions/{id}/events", app.eventsHandler).Methods("GET")

	// Movie detail
	api.HandleFunc("/movies/{"+viewmodels.RouteParamMovieID+"}", app.movieDetailHandler).Methods("GET")

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// session resolves the {id} route variable, writing a 404 when it is unknown
func (app *App) session(w http.ResponseWriter, r *http.Request) (*viewmodels.SearchViewModel, bool) {
	id := mux.Vars(r)["id"]
	vm, err := app.sessions.Get(id)
	if err != nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return nil, false
	}
	return vm, true
}

func (app *App) createSessionHandler(w http.ResponseWriter, _ *http.Request) {
	id, vm := app.sessions.Create()
	writeJSON(w, http.StatusCreated, sessionView{ID: id, State: newSearchStateView(vm.State())})
}

func (app *App) getSessionHandler(w http.ResponseWriter, r *http.Request) {
	vm, ok := app.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newSearchStateView(vm.State()))
}

func (app *App) deleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.sessions.Delete(mux.Vars(r)["id"]); err != nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type searchRequest struct {
	Query string `json:"query"`
}

func (app *App) searchHandler(w http.ResponseWriter, r *http.Request) {
	vm, ok := app.session(w, r)
	if !ok {
		return
	}

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	vm.SearchMovies(req.Query)
	writeJSON(w, http.StatusAccepted, newSearchStateView(vm.State()))
}

func (app *App) popularHandler(w http.ResponseWriter, r *http.Request) {
	vm, ok := app.session(w, r)
	if !ok {
		return
	}
	vm.LoadPopularMovies()
	writeJSON(w, http.StatusAccepted, newSearchStateView(vm.State()))
}

func (app *App) topRatedHandler(w http.ResponseWriter, r *http.Request) {
	vm, ok := app.session(w, r)
	if !ok {
		return
	}
	vm.LoadTopRatedMovies()
	writeJSON(w, http.StatusAccepted, newSearchStateView(vm.State()))
}

func (app *App) clearHandler(w http.ResponseWriter, r *http.Request) {
	vm, ok := app.session(w, r)
	if !ok {
		return
	}
	vm.ClearSearch()
	writeJSON(w, http.StatusAccepted, newSearchStateView(vm.State()))
}

// eventsHandler streams every snapshot of a session as newline-delimited
// JSON, starting with the current one, until the client goes away or the
// session is closed.
func (app *App) eventsHandler(w http.ResponseWriter, r *http.Request) {
	vm, ok := app.session(w, r)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	subID := uuid.NewString()
	current, updates, err := vm.Subscribe(subID)
	if err != nil {
		http.Error(w, "Session closed", http.StatusGone)
		return
	}
	defer func() {
		// already gone if the session was closed first
		_ = vm.Unsubscribe(subID)
	}()

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	enc := json.NewEncoder(w)
	if err := enc.Encode(newSearchStateView(current)); err != nil {
		slog.Debug("Event stream write failed", "subscriber", subID, "error", err)
		return
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case state, open := <-updates:
			if !open {
				return
			}
			if err := enc.Encode(newSearchStateView(state)); err != nil {
				slog.Debug("Event stream write failed", "subscriber", subID, "error", err)
				return
			}
			flusher.Flush()
		}
	}
}

// movieDetailHandler builds a detail holder from the route and waits for its
// fetch to settle. A non-numeric id yields the empty initial state.
func (app *App) movieDetailHandler(w http.ResponseWriter, r *http.Request) {
	vm := viewmodels.NewDetailViewModel(app.repo, mux.Vars(r))
	defer vm.Close()

	ctx, cancel := context.WithTimeout(r.Context(), app.detailWait)
	defer cancel()

	state, err := vm.AwaitIdle(ctx)
	if err != nil {
		slog.Warn("Detail fetch did not settle", "movie_id", mux.Vars(r)[viewmodels.RouteParamMovieID], "error", err)
		writeJSON(w, http.StatusGatewayTimeout, newDetailStateView(state))
		return
	}
	writeJSON(w, http.StatusOK, newDetailStateView(state))
}
