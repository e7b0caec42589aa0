package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/url-shortener/internal/analytics"
	"github.com/serroba/url-shortener/internal/messaging"
	"github.com/serroba/url-shortener/internal/shortener"
	"go.uber.org/zap"
)

// URLHandler exposes the shortening service over HTTP.
type URLHandler struct {
	service            *shortener.Service
	publishLinkCreated messaging.Publish[analytics.LinkCreatedEvent]
	publishLinkClicked messaging.Publish[analytics.LinkClickedEvent]
	logger             *zap.Logger
}

// NewURLHandler creates a new URL handler.
func NewURLHandler(
	service *shortener.Service,
	publishLinkCreated messaging.Publish[analytics.LinkCreatedEvent],
	publishLinkClicked messaging.Publish[analytics.LinkClickedEvent],
	logger *zap.Logger,
) *URLHandler {
	return &URLHandler{
		service:            service,
		publishLinkCreated: publishLinkCreated,
		publishLinkClicked: publishLinkClicked,
		logger:             logger,
	}
}

type requestMetaKey struct{}

// RequestMeta holds HTTP request metadata recorded with tracked clicks.
type RequestMeta struct {
	ClientIP  string
	UserAgent string
	Referrer  string
}

// ContextWithRequestMeta adds request metadata to context.
func ContextWithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// RequestMetaFromContext extracts request metadata from context.
func RequestMetaFromContext(ctx context.Context) RequestMeta {
	if v, ok := ctx.Value(requestMetaKey{}).(RequestMeta); ok {
		return v
	}

	return RequestMeta{}
}

// Shorten creates a short link, reusing the existing code for an already
// mapped active URL.
func (h *URLHandler) Shorten(ctx context.Context, req *ShortenRequest) (*ShortenResponse, error) {
	longURL := req.Body.LongURL
	if !validURL(longURL) {
		return nil, huma.Error400BadRequest("longUrl must start with http:// or https://")
	}

	link, err := h.service.CreateShortLink(ctx, longURL)
	if err != nil {
		h.logger.Error("failed to create short link", zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to create short link")
	}

	meta := RequestMetaFromContext(ctx)
	event := &analytics.LinkCreatedEvent{
		Code:        link.ShortCode,
		OriginalURL: link.OriginalURL,
		CreatedAt:   time.Now(),
		ClientIP:    meta.ClientIP,
		UserAgent:   meta.UserAgent,
	}

	if err := h.publishLinkCreated(event); err != nil {
		h.logger.Error("failed to publish link created event",
			zap.String("code", event.Code),
			zap.Error(err),
		)
	}

	resp := &ShortenResponse{}
	resp.Body.ShortURL = link.ShortURL
	resp.Body.OriginalURL = link.OriginalURL
	resp.Body.ShortCode = link.ShortCode

	return resp, nil
}

// Redirect resolves a short code, records the click, and redirects to the
// original URL.
func (h *URLHandler) Redirect(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	meta := RequestMetaFromContext(ctx)

	originalURL, err := h.service.ResolveAndTrack(ctx, req.ShortCode, meta.UserAgent, meta.ClientIP)
	if err != nil {
		if errors.Is(err, shortener.ErrNotFound) {
			return nil, huma.Error404NotFound("short url not found")
		}

		h.logger.Error("failed to resolve short code",
			zap.String("code", req.ShortCode),
			zap.Error(err),
		)

		return nil, huma.Error500InternalServerError("failed to resolve short code")
	}

	event := &analytics.LinkClickedEvent{
		Code:        req.ShortCode,
		OriginalURL: originalURL,
		ClickedAt:   time.Now(),
		ClientIP:    meta.ClientIP,
		UserAgent:   meta.UserAgent,
		Referrer:    meta.Referrer,
	}

	if err := h.publishLinkClicked(event); err != nil {
		h.logger.Error("failed to publish link clicked event",
			zap.String("code", event.Code),
			zap.Error(err),
		)
	}

	resp := &RedirectResponse{
		Status: http.StatusFound,
	}
	resp.Headers.Location = originalURL

	return resp, nil
}

// Analytics returns the click history for a short code, including inactive
// mappings.
func (h *URLHandler) Analytics(ctx context.Context, req *AnalyticsRequest) (*AnalyticsResponse, error) {
	snapshot, err := h.service.Analytics(ctx, req.ShortCode)
	if err != nil {
		if errors.Is(err, shortener.ErrNotFound) {
			return nil, huma.Error404NotFound("short url not found")
		}

		h.logger.Error("failed to load analytics",
			zap.String("code", req.ShortCode),
			zap.Error(err),
		)

		return nil, huma.Error500InternalServerError("failed to load analytics")
	}

	resp := &AnalyticsResponse{}
	resp.Body.ShortCode = snapshot.ShortCode
	resp.Body.OriginalURL = snapshot.OriginalURL
	resp.Body.TotalClicks = snapshot.TotalClicks
	resp.Body.CreatedAt = snapshot.CreatedAt
	resp.Body.RecentClicks = snapshot.Clicks
	resp.Body.Active = snapshot.Active

	return resp, nil
}

func validURL(raw string) bool {
	return strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://")
}
