package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/serroba/url-shortener/internal/shortener"
)

// MemoryStore is an in-memory implementation of shortener.Repository, used by
// tests and local development. Mappings are copied on the way in and out so
// callers never share state with the store.
type MemoryStore struct {
	mu       sync.RWMutex
	byCode   map[string]*shortener.Mapping
	codeByID map[string]string
}

// NewMemoryStore creates an empty in-memory mapping store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byCode:   make(map[string]*shortener.Mapping),
		codeByID: make(map[string]string),
	}
}

func (m *MemoryStore) FindByShortCode(_ context.Context, code string) (*shortener.Mapping, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	mapping, ok := m.byCode[code]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	return mapping.Clone(), nil
}

func (m *MemoryStore) FindByOriginalURL(_ context.Context, originalURL string) (*shortener.Mapping, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Prefer the active mapping when an inactive one exists for the same URL.
	var inactive *shortener.Mapping

	for _, mapping := range m.byCode {
		if mapping.OriginalURL != originalURL {
			continue
		}

		if mapping.Active {
			return mapping.Clone(), nil
		}

		inactive = mapping
	}

	if inactive != nil {
		return inactive.Clone(), nil
	}

	return nil, shortener.ErrNotFound
}

func (m *MemoryStore) ExistsByShortCode(_ context.Context, code string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.byCode[code]

	return ok, nil
}

func (m *MemoryStore) Save(_ context.Context, mapping *shortener.Mapping) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if mapping.ID == "" {
		if _, taken := m.byCode[mapping.ShortCode]; taken {
			return fmt.Errorf("short code %q already taken", mapping.ShortCode)
		}

		mapping.ID = uuid.NewString()
	} else if previousCode, ok := m.codeByID[mapping.ID]; ok && previousCode != mapping.ShortCode {
		delete(m.byCode, previousCode)
	}

	m.byCode[mapping.ShortCode] = mapping.Clone()
	m.codeByID[mapping.ID] = mapping.ShortCode

	return nil
}

func (m *MemoryStore) TrackClick(_ context.Context, code string, click shortener.Click) (*shortener.Mapping, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mapping, ok := m.byCode[code]
	if !ok || !mapping.Active {
		return nil, shortener.ErrNotFound
	}

	mapping.Clicks = append(mapping.Clicks, click)
	mapping.ClickCount++

	return mapping.Clone(), nil
}

// Compile-time check.
var _ shortener.Repository = (*MemoryStore)(nil)
