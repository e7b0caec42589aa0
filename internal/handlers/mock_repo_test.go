package handlers_test

import (
	"context"
	"errors"

	"github.com/serroba/url-shortener/internal/shortener"
)

var errMock = errors.New("mock error")

const testURL = "https://www.example.com"

// mockRepo is a Repository test double that can be configured to fail.
type mockRepo struct {
	findByCodeErr error
	findByURLErr  error
	existsErr     error
	saveErr       error
	trackErr      error
}

func (m *mockRepo) FindByShortCode(context.Context, string) (*shortener.Mapping, error) {
	if m.findByCodeErr != nil {
		return nil, m.findByCodeErr
	}

	return nil, shortener.ErrNotFound
}

func (m *mockRepo) FindByOriginalURL(context.Context, string) (*shortener.Mapping, error) {
	if m.findByURLErr != nil {
		return nil, m.findByURLErr
	}

	return nil, shortener.ErrNotFound
}

func (m *mockRepo) ExistsByShortCode(context.Context, string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}

	return false, nil
}

func (m *mockRepo) Save(context.Context, *shortener.Mapping) error {
	return m.saveErr
}

func (m *mockRepo) TrackClick(context.Context, string, shortener.Click) (*shortener.Mapping, error) {
	if m.trackErr != nil {
		return nil, m.trackErr
	}

	return nil, shortener.ErrNotFound
}
