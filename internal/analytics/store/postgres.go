package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/url-shortener/internal/analytics"
)

// Postgres archives analytics events into the link_events table:
//
//	CREATE TABLE link_events (
//	    id          BIGSERIAL PRIMARY KEY,
//	    event_type  TEXT        NOT NULL,
//	    code        TEXT        NOT NULL,
//	    original_url TEXT       NOT NULL,
//	    occurred_at TIMESTAMPTZ NOT NULL,
//	    client_ip   TEXT,
//	    user_agent  TEXT,
//	    referrer    TEXT
//	);
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a Postgres-backed analytics event archive.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const insertEvent = `
	INSERT INTO link_events (event_type, code, original_url, occurred_at, client_ip, user_agent, referrer)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
`

func (p *Postgres) SaveLinkCreated(ctx context.Context, event *analytics.LinkCreatedEvent) error {
	_, err := p.pool.Exec(ctx, insertEvent,
		"created",
		event.Code,
		event.OriginalURL,
		event.CreatedAt,
		nullable(event.ClientIP),
		nullable(event.UserAgent),
		nil,
	)
	if err != nil {
		return fmt.Errorf("insert link created event: %w", err)
	}

	return nil
}

func (p *Postgres) SaveLinkClicked(ctx context.Context, event *analytics.LinkClickedEvent) error {
	_, err := p.pool.Exec(ctx, insertEvent,
		"clicked",
		event.Code,
		event.OriginalURL,
		event.ClickedAt,
		nullable(event.ClientIP),
		nullable(event.UserAgent),
		nullable(event.Referrer),
	)
	if err != nil {
		return fmt.Errorf("insert link clicked event: %w", err)
	}

	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

// Compile-time check.
var _ analytics.Store = (*Postgres)(nil)
