package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// RegisterRoutes registers the URL shortener routes.
func RegisterRoutes(api huma.API, urlHandler *URLHandler) {
	huma.Register(api, huma.Operation{
		Method:        http.MethodPost,
		Path:          "/api/shorten",
		Summary:       "Shorten a URL",
		Description:   "Creates a short URL, reusing the existing code when the URL is already mapped.",
		Tags:          []string{"URLs"},
		DefaultStatus: http.StatusCreated,
	}, urlHandler.Shorten)

	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/{shortCode}",
		Summary:     "Redirect to original URL",
		Description: "Redirects to the original URL and records the click.",
		Tags:        []string{"URLs"},
	}, urlHandler.Redirect)

	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/api/analytics/{shortCode}",
		Summary:     "Get URL analytics",
		Description: "Returns the click history and counters for a short code.",
		Tags:        []string{"Analytics"},
	}, urlHandler.Analytics)
}
