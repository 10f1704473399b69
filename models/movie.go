// Package models defines the data structures used throughout the application.
package models

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Image base URLs for derived poster and backdrop links
const (
	PosterBaseURL   = "https://image.tmdb.org/t/p/w500"
	BackdropBaseURL = "https://image.tmdb.org/t/p/w1280"
)

// StatusReleased is the release status the presentation layer highlights
const StatusReleased = "Released"

// Movie represents a movie summary as returned by list and search endpoints
type Movie struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	Overview         string  `json:"overview"`
	PosterPath       *string `json:"poster_path"`
	BackdropPath     *string `json:"backdrop_path"`
	ReleaseDate      string  `json:"release_date"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	Popularity       float64 `json:"popularity"`
	Adult            bool    `json:"adult"`
	GenreIDs         []int   `json:"genre_ids"`
	OriginalLanguage string  `json:"original_language"`
	OriginalTitle    string  `json:"original_title"`
	Video            bool    `json:"video"`
}

// MovieResponse is the paged envelope around list and search results
type MovieResponse struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// MovieDetail represents the full record for a single movie
type MovieDetail struct {
	ID                  int                 `json:"id"`
	Title               string              `json:"title"`
	Overview            string              `json:"overview"`
	PosterPath          *string             `json:"poster_path"`
	BackdropPath        *string             `json:"backdrop_path"`
	ReleaseDate         string              `json:"release_date"`
	VoteAverage         float64             `json:"vote_average"`
	VoteCount           int                 `json:"vote_count"`
	Runtime             *int                `json:"runtime"` // in minutes
	Budget              int64               `json:"budget"`  // 0 means unreported
	Revenue             int64               `json:"revenue"`
	Tagline             *string             `json:"tagline"`
	Genres              []Genre             `json:"genres"`
	ProductionCompanies []ProductionCompany `json:"production_companies"`
	Status              string              `json:"status"`
	Homepage            *string             `json:"homepage"`
}

// Genre is an (id, name) pair
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ProductionCompany is embedded in MovieDetail only
type ProductionCompany struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	LogoPath      *string `json:"logo_path"`
	OriginCountry string  `json:"origin_country"`
}

// PosterURL returns the w500 poster link, or nil when the movie has no poster
func (m Movie) PosterURL() *string {
	return imageURL(PosterBaseURL, m.PosterPath)
}

// BackdropURL returns the w1280 backdrop link, or nil when the movie has no backdrop
func (m Movie) BackdropURL() *string {
	return imageURL(BackdropBaseURL, m.BackdropPath)
}

// ReleaseYear returns the year part of the release date
func (m Movie) ReleaseYear() string {
	return releaseYear(m.ReleaseDate)
}

// RatingLabel formats the average vote with one decimal
func (m Movie) RatingLabel() string {
	return ratingLabel(m.VoteAverage)
}

// PosterURL returns the w500 poster link, or nil when the movie has no poster
func (d MovieDetail) PosterURL() *string {
	return imageURL(PosterBaseURL, d.PosterPath)
}

// BackdropURL returns the w1280 backdrop link, or nil when the movie has no backdrop
func (d MovieDetail) BackdropURL() *string {
	return imageURL(BackdropBaseURL, d.BackdropPath)
}

// ReleaseYear returns the year part of the release date
func (d MovieDetail) ReleaseYear() string {
	return releaseYear(d.ReleaseDate)
}

// RatingLabel formats the average vote with one decimal
func (d MovieDetail) RatingLabel() string {
	return ratingLabel(d.VoteAverage)
}

// RuntimeLabel renders the runtime as "<minutes>m", empty when unknown
func (d MovieDetail) RuntimeLabel() string {
	if d.Runtime == nil {
		return ""
	}
	return fmt.Sprintf("%dm", *d.Runtime)
}

// IsReleased reports whether the movie has the "Released" status
func (d MovieDetail) IsReleased() bool {
	return d.Status == StatusReleased
}

// StatusLabel renders the release status banner text
func (d MovieDetail) StatusLabel() string {
	return "STATUS: " + strings.ToUpper(d.Status)
}

// BudgetLabel renders the budget as a dollar amount, nil when unreported
func (d MovieDetail) BudgetLabel() *string {
	return moneyLabel(d.Budget)
}

// RevenueLabel renders the revenue as a dollar amount, nil when unreported
func (d MovieDetail) RevenueLabel() *string {
	return moneyLabel(d.Revenue)
}

// TopGenres returns at most n genres in their original order
func (d MovieDetail) TopGenres(n int) []Genre {
	if n < 0 {
		n = 0
	}
	if len(d.Genres) <= n {
		return d.Genres
	}
	return d.Genres[:n]
}

func imageURL(base string, path *string) *string {
	if path == nil {
		return nil
	}
	u := base + *path
	return &u
}

func releaseYear(date string) string {
	if len(date) < 4 {
		return date
	}
	return date[:4]
}

func ratingLabel(avg float64) string {
	return fmt.Sprintf("%.1f", avg)
}

var moneyPrinter = message.NewPrinter(language.English)

func moneyLabel(amount int64) *string {
	if amount <= 0 {
		return nil
	}
	s := "$" + moneyPrinter.Sprintf("%d", amount)
	return &s
}
