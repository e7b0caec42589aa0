package handlers

import (
	"time"

	"github.com/serroba/url-shortener/internal/shortener"
)

// ShortenRequest is the request body for creating a short link.
type ShortenRequest struct {
	Body struct {
		LongURL string `doc:"The URL to shorten, must start with http:// or https://" example:"https://www.example.com" json:"longUrl"`
	}
}

// ShortenResponse is the response for a successfully created short link.
type ShortenResponse struct {
	Body struct {
		ShortURL    string `doc:"The full short URL" example:"http://localhost:8888/Ab3dE9" json:"shortUrl"`
		OriginalURL string `doc:"The original URL"   example:"https://www.example.com"      json:"originalUrl"`
		ShortCode   string `doc:"The short code"     example:"Ab3dE9"                       json:"shortCode"`
	}
}

// RedirectRequest is the request for redirecting a short code.
type RedirectRequest struct {
	ShortCode string `doc:"The short code" example:"Ab3dE9" path:"shortCode"`
}

// RedirectResponse redirects the visitor to the original URL.
type RedirectResponse struct {
	Status  int
	Headers struct {
		Location string `doc:"The original URL" header:"Location"`
	}
}

// AnalyticsRequest is the request for retrieving click analytics.
type AnalyticsRequest struct {
	ShortCode string `doc:"The short code" example:"Ab3dE9" path:"shortCode"`
}

// AnalyticsResponse is the click history snapshot for a short code.
type AnalyticsResponse struct {
	Body struct {
		ShortCode    string            `json:"shortCode"`
		OriginalURL  string            `json:"originalUrl"`
		TotalClicks  int64             `json:"totalClicks"`
		CreatedAt    time.Time         `json:"createdAt"`
		RecentClicks []shortener.Click `json:"recentClicks"`
		Active       bool              `json:"active"`
	}
}
