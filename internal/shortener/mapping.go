package shortener

import "time"

// Click records a single tracked redirect. UserAgent and IPAddress are empty
// when the client did not supply them.
type Click struct {
	Timestamp time.Time `bson:"timestamp"             json:"timestamp"`
	UserAgent string    `bson:"user_agent,omitempty"  json:"userAgent,omitempty"`
	IPAddress string    `bson:"ip_address,omitempty"  json:"ipAddress,omitempty"`
}

// Mapping is the persistent association between a short code and its original
// URL, together with the click history recorded against it.
//
// Invariant: ClickCount equals len(Clicks) after every successful tracked
// redirect; the two are only ever updated together (see Repository.TrackClick).
type Mapping struct {
	ID          string     `bson:"_id,omitempty"        json:"-"`
	ShortCode   string     `bson:"short_code"           json:"shortCode"`
	OriginalURL string     `bson:"original_url"         json:"originalUrl"`
	CreatedAt   time.Time  `bson:"created_at"           json:"createdAt"`
	ExpiresAt   *time.Time `bson:"expires_at,omitempty" json:"expiresAt,omitempty"` // present in the schema, not enforced anywhere
	ClickCount  int64      `bson:"click_count"          json:"clickCount"`
	Clicks      []Click    `bson:"clicks"               json:"clicks"`
	Active      bool       `bson:"active"               json:"active"`
}

// NewMapping creates a fresh active mapping with an empty click history.
func NewMapping(shortCode, originalURL string) *Mapping {
	return &Mapping{
		ShortCode:   shortCode,
		OriginalURL: originalURL,
		CreatedAt:   time.Now(),
		ClickCount:  0,
		Clicks:      []Click{},
		Active:      true,
	}
}

// ClicksSnapshot returns a copy of the click history. Callers never receive a
// reference into live state.
func (m *Mapping) ClicksSnapshot() []Click {
	snapshot := make([]Click, len(m.Clicks))
	copy(snapshot, m.Clicks)

	return snapshot
}

// Clone returns a deep copy of the mapping.
func (m *Mapping) Clone() *Mapping {
	clone := *m
	clone.Clicks = m.ClicksSnapshot()

	if m.ExpiresAt != nil {
		expiresAt := *m.ExpiresAt
		clone.ExpiresAt = &expiresAt
	}

	return &clone
}
