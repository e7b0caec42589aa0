package analytics

import "time"

// Topic names for analytics events.
const (
	TopicLinkCreated = "link.created"
	TopicLinkClicked = "link.clicked"
)

// LinkCreatedEvent is emitted when a short link is created.
type LinkCreatedEvent struct {
	Code        string    `json:"code"`
	OriginalURL string    `json:"originalUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	ClientIP    string    `json:"clientIp,omitempty"`
	UserAgent   string    `json:"userAgent,omitempty"`
}

// LinkClickedEvent is emitted when a tracked redirect is served. The
// authoritative click record is the synchronous store write; this event only
// feeds the side archive.
type LinkClickedEvent struct {
	Code        string    `json:"code"`
	OriginalURL string    `json:"originalUrl"`
	ClickedAt   time.Time `json:"clickedAt"`
	ClientIP    string    `json:"clientIp,omitempty"`
	UserAgent   string    `json:"userAgent,omitempty"`
	Referrer    string    `json:"referrer,omitempty"`
}
