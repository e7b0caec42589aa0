package shortener

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ShortLink is the result of a create-or-reuse shortening operation.
type ShortLink struct {
	ShortURL    string
	OriginalURL string
	ShortCode   string
}

// Analytics is a read-only snapshot of a mapping's click history. Its Clicks
// slice never aliases the store's internal state.
type Analytics struct {
	ShortCode   string
	OriginalURL string
	TotalClicks int64
	CreatedAt   time.Time
	Clicks      []Click
	Active      bool
}

// Service orchestrates short link creation, redirect tracking, and analytics
// over a Repository. It holds no state of its own; every operation runs
// synchronously to completion within the caller's context.
type Service struct {
	repo    Repository
	codes   *CodeAllocator
	baseURL string
	logger  *zap.Logger
}

// NewService creates a shortening service.
func NewService(repo Repository, codes *CodeAllocator, baseURL string, logger *zap.Logger) *Service {
	return &Service{
		repo:    repo,
		codes:   codes,
		baseURL: baseURL,
		logger:  logger,
	}
}

// CreateShortLink returns a short link for the URL, reusing the existing code
// when an active mapping for the same original URL already exists. The URL is
// assumed to be boundary-validated absolute http(s).
func (s *Service) CreateShortLink(ctx context.Context, originalURL string) (*ShortLink, error) {
	existing, err := s.repo.FindByOriginalURL(ctx, originalURL)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("lookup original url: %w", err)
	}

	if existing != nil && existing.Active {
		s.logger.Info("url already mapped, reusing short code",
			zap.String("code", existing.ShortCode),
		)

		return s.shortLink(existing), nil
	}

	code, err := s.codes.Allocate(ctx)
	if err != nil {
		return nil, err
	}

	mapping := NewMapping(code, originalURL)

	if err := s.repo.Save(ctx, mapping); err != nil {
		return nil, fmt.Errorf("save mapping: %w", err)
	}

	s.logger.Info("created url mapping",
		zap.String("code", code),
		zap.String("originalUrl", originalURL),
	)

	return s.shortLink(mapping), nil
}

// ResolveAndTrack resolves a short code to its original URL and records the
// click. The click append and counter increment happen in a single atomic
// store update, so concurrent redirects never lose a click. Returns
// ErrNotFound for unknown or inactive codes, with no side effects.
func (s *Service) ResolveAndTrack(ctx context.Context, code, userAgent, ipAddress string) (string, error) {
	click := Click{
		Timestamp: time.Now(),
		UserAgent: userAgent,
		IPAddress: ipAddress,
	}

	mapping, err := s.repo.TrackClick(ctx, code, click)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.Warn("short code not found or inactive", zap.String("code", code))

			return "", ErrNotFound
		}

		return "", fmt.Errorf("track click: %w", err)
	}

	s.logger.Info("redirecting",
		zap.String("code", code),
		zap.String("originalUrl", mapping.OriginalURL),
		zap.Int64("totalClicks", mapping.ClickCount),
	)

	return mapping.OriginalURL, nil
}

// Analytics returns the click history snapshot for a code. Unlike redirects,
// inactive mappings remain visible here.
func (s *Service) Analytics(ctx context.Context, code string) (*Analytics, error) {
	mapping, err := s.repo.FindByShortCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.Warn("analytics requested for unknown short code", zap.String("code", code))

			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("lookup short code: %w", err)
	}

	return &Analytics{
		ShortCode:   mapping.ShortCode,
		OriginalURL: mapping.OriginalURL,
		TotalClicks: mapping.ClickCount,
		CreatedAt:   mapping.CreatedAt,
		Clicks:      mapping.ClicksSnapshot(),
		Active:      mapping.Active,
	}, nil
}

func (s *Service) shortLink(m *Mapping) *ShortLink {
	return &ShortLink{
		ShortURL:    fmt.Sprintf("%s/%s", s.baseURL, m.ShortCode),
		OriginalURL: m.OriginalURL,
		ShortCode:   m.ShortCode,
	}
}
