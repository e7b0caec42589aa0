package shortener

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no mapping exists for a lookup key, or when a
// tracked redirect targets an inactive mapping.
var ErrNotFound = errors.New("mapping not found")

// Repository defines the storage contract for URL mappings.
type Repository interface {
	// FindByShortCode returns the mapping for a code regardless of its active
	// flag, or ErrNotFound.
	FindByShortCode(ctx context.Context, code string) (*Mapping, error)

	// FindByOriginalURL returns the canonical mapping for an original URL, or
	// ErrNotFound.
	FindByOriginalURL(ctx context.Context, originalURL string) (*Mapping, error)

	// ExistsByShortCode reports whether any mapping, active or not, holds the
	// code.
	ExistsByShortCode(ctx context.Context, code string) (bool, error)

	// Save persists the mapping. Inserting a mapping whose code is already
	// taken must fail with the store's uniqueness violation, never overwrite
	// the existing holder.
	Save(ctx context.Context, mapping *Mapping) error

	// TrackClick atomically appends the click and increments the click counter
	// of the active mapping holding the code, returning the updated mapping.
	// Concurrent calls must all be reflected in the counter: implementations
	// use a field-level atomic update, not read-modify-write of the entity.
	// Returns ErrNotFound if the code is unknown or the mapping is inactive,
	// without side effects.
	TrackClick(ctx context.Context, code string, click Click) (*Mapping, error)
}
