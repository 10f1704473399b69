// Package services provides external service integrations.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"moviebrowser/logging"
	"moviebrowser/models"
)

// Defaults for the TMDB client
const (
	DefaultTMDBBaseURL = "https://api.themoviedb.org/3"
	DefaultTMDBTimeout = 30 * time.Second
)

// HTTPStatusError is returned when TMDB answers with a non-2xx status
type HTTPStatusError struct {
	Endpoint   string
	StatusCode int
	Message    string // status_message from the TMDB error body, if any
}

func (e *HTTPStatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("TMDB API returned status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("TMDB API returned status %d", e.StatusCode)
}

// tmdbErrorBody is the JSON error envelope TMDB sends with 4xx/5xx responses
type tmdbErrorBody struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
}

// TMDBService handles interactions with The Movie Database API.
// The API key is supplied per call by the caller.
type TMDBService struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// NewTMDBService creates a new TMDB service instance.
// qps <= 0 disables request throttling.
func NewTMDBService(baseURL string, qps int, timeout time.Duration) *TMDBService {
	if baseURL == "" {
		baseURL = DefaultTMDBBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTMDBTimeout
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if qps > 0 {
		limiter = rate.NewLimiter(rate.Limit(qps), qps)
	}

	return &TMDBService{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		limiter: limiter,
	}
}

// SearchMovies searches movies by title; only the first page is requested
func (t *TMDBService) SearchMovies(ctx context.Context, apiKey, query string) (*models.MovieResponse, error) {
	params := url.Values{}
	params.Set("query", query)

	var resp models.MovieResponse
	if err := t.get(ctx, "/search/movie", apiKey, params, &resp); err != nil {
		return nil, fmt.Errorf("failed to search movies: %w", err)
	}
	return &resp, nil
}

// GetPopularMovies fetches the first page of popular movies
func (t *TMDBService) GetPopularMovies(ctx context.Context, apiKey string) (*models.MovieResponse, error) {
	var resp models.MovieResponse
	if err := t.get(ctx, "/movie/popular", apiKey, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch popular movies: %w", err)
	}
	return &resp, nil
}

// GetTopRatedMovies fetches the first page of top-rated movies
func (t *TMDBService) GetTopRatedMovies(ctx context.Context, apiKey string) (*models.MovieResponse, error) {
	var resp models.MovieResponse
	if err := t.get(ctx, "/movie/top_rated", apiKey, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch top rated movies: %w", err)
	}
	return &resp, nil
}

// GetMovieDetails fetches the full record of a movie by its TMDB ID
func (t *TMDBService) GetMovieDetails(ctx context.Context, movieID int, apiKey string) (*models.MovieDetail, error) {
	var detail models.MovieDetail
	if err := t.get(ctx, fmt.Sprintf("/movie/%d", movieID), apiKey, nil, &detail); err != nil {
		return nil, fmt.Errorf("failed to fetch movie %d: %w", movieID, err)
	}
	return &detail, nil
}

func (t *TMDBService) get(ctx context.Context, endpoint, apiKey string, params url.Values, out interface{}) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", apiKey)

	reqURL := fmt.Sprintf("%s%s?%s", t.baseURL, endpoint, params.Encode())
	slog.Debug("TMDB request", "url", logging.RedactURL(reqURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		// url.Error embeds the full request URL, api key included
		return fmt.Errorf("request to %s failed: %w", endpoint, unwrapURLError(err))
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Warn("Failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &HTTPStatusError{Endpoint: endpoint, StatusCode: resp.StatusCode}
		var body tmdbErrorBody
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
			statusErr.Message = body.StatusMessage
		}
		slog.Warn("TMDB request failed", "endpoint", endpoint, "status", resp.StatusCode)
		return statusErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode TMDB response: %w", err)
	}
	return nil
}

func unwrapURLError(err error) error {
	if urlErr, ok := err.(*url.Error); ok {
		return urlErr.Err
	}
	return err
}
