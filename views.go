package main

import (
	"moviebrowser/models"
	"moviebrowser/viewmodels"
)

// topGenreCount is how many genres the detail view lists
const topGenreCount = 3

// movieView is a list entry as the screens render it
type movieView struct {
	models.Movie
	PosterURL   *string `json:"poster_url"`
	BackdropURL *string `json:"backdrop_url"`
	ReleaseYear string  `json:"release_year"`
	Rating      string  `json:"rating"`
}

type movieDetailView struct {
	models.MovieDetail
	PosterURL   *string        `json:"poster_url"`
	BackdropURL *string        `json:"backdrop_url"`
	ReleaseYear string         `json:"release_year"`
	Rating      string         `json:"rating"`
	RuntimeText string         `json:"runtime_text"`
	StatusText  string         `json:"status_text"`
	IsReleased  bool           `json:"is_released"`
	BudgetText  *string        `json:"budget_text"`
	RevenueText *string        `json:"revenue_text"`
	TopGenres   []models.Genre `json:"top_genres"`
}

type searchStateView struct {
	Movies      []movieView `json:"movies"`
	IsLoading   bool        `json:"is_loading"`
	Error       *string     `json:"error"`
	SearchQuery string      `json:"search_query"`
}

type detailStateView struct {
	Movie     *movieDetailView `json:"movie"`
	IsLoading bool             `json:"is_loading"`
	Error     *string          `json:"error"`
}

type sessionView struct {
	ID    string          `json:"id"`
	State searchStateView `json:"state"`
}

func newMovieView(m models.Movie) movieView {
	return movieView{
		Movie:       m,
		PosterURL:   m.PosterURL(),
		BackdropURL: m.BackdropURL(),
		ReleaseYear: m.ReleaseYear(),
		Rating:      m.RatingLabel(),
	}
}

func newSearchStateView(s viewmodels.SearchUiState) searchStateView {
	movies := make([]movieView, 0, len(s.Movies))
	for _, m := range s.Movies {
		movies = append(movies, newMovieView(m))
	}
	return searchStateView{
		Movies:      movies,
		IsLoading:   s.IsLoading,
		Error:       s.Error,
		SearchQuery: s.SearchQuery,
	}
}

func newDetailStateView(s viewmodels.DetailUiState) detailStateView {
	view := detailStateView{IsLoading: s.IsLoading, Error: s.Error}
	if d := s.Movie; d != nil {
		view.Movie = &movieDetailView{
			MovieDetail: *d,
			PosterURL:   d.PosterURL(),
			BackdropURL: d.BackdropURL(),
			ReleaseYear: d.ReleaseYear(),
			Rating:      d.RatingLabel(),
			RuntimeText: d.RuntimeLabel(),
			StatusText:  d.StatusLabel(),
			IsReleased:  d.IsReleased(),
			BudgetText:  d.BudgetLabel(),
			RevenueText: d.RevenueLabel(),
			TopGenres:   d.TopGenres(topGenreCount),
		}
	}
	return view
}
