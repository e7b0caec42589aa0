package shortener_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/serroba/url-shortener/internal/shortener"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCodeGenerator(t *testing.T) {
	t.Run("generates codes of the requested length", func(t *testing.T) {
		generate, err := shortener.NewCodeGenerator(6)
		require.NoError(t, err)

		for range 100 {
			assert.Len(t, generate(), 6)
		}
	})

	t.Run("only uses alphanumeric characters", func(t *testing.T) {
		generate, err := shortener.NewCodeGenerator(12)
		require.NoError(t, err)

		for range 100 {
			for _, r := range generate() {
				assert.Contains(t, shortener.Alphabet, string(r))
			}
		}
	})

	t.Run("codes are not repeated across calls", func(t *testing.T) {
		generate, err := shortener.NewCodeGenerator(12)
		require.NoError(t, err)

		seen := make(map[string]bool)

		for range 1000 {
			code := generate()
			assert.False(t, seen[code], "generated duplicate code %q", code)
			seen[code] = true
		}
	})

	t.Run("defaults the length when non-positive", func(t *testing.T) {
		generate, err := shortener.NewCodeGenerator(0)
		require.NoError(t, err)

		assert.Len(t, generate(), shortener.DefaultCodeLength)
	})
}

func TestCodeAllocator_Allocate(t *testing.T) {
	t.Run("returns the first unused candidate", func(t *testing.T) {
		codes := []string{"taken1", "taken2", "free33"}
		idx := 0
		generate := func() string {
			code := codes[idx]
			idx++

			return code
		}

		repo := &existsRepo{taken: map[string]bool{"taken1": true, "taken2": true}}
		allocator := shortener.NewCodeAllocator(generate, repo)

		code, err := allocator.Allocate(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "free33", code)
		assert.Equal(t, 3, repo.checks)
	})

	t.Run("propagates existence check errors", func(t *testing.T) {
		generate := func() string { return "anycode" }
		repo := &existsRepo{existsErr: errors.New("store unreachable")}
		allocator := shortener.NewCodeAllocator(generate, repo)

		code, err := allocator.Allocate(context.Background())

		assert.Empty(t, code)
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "store unreachable"))
	})
}

// existsRepo is a minimal Repository stub for allocator tests.
type existsRepo struct {
	taken     map[string]bool
	checks    int
	existsErr error
}

func (r *existsRepo) ExistsByShortCode(_ context.Context, code string) (bool, error) {
	r.checks++

	if r.existsErr != nil {
		return false, r.existsErr
	}

	return r.taken[code], nil
}

func (r *existsRepo) FindByShortCode(context.Context, string) (*shortener.Mapping, error) {
	return nil, shortener.ErrNotFound
}

func (r *existsRepo) FindByOriginalURL(context.Context, string) (*shortener.Mapping, error) {
	return nil, shortener.ErrNotFound
}

func (r *existsRepo) Save(context.Context, *shortener.Mapping) error { return nil }

func (r *existsRepo) TrackClick(context.Context, string, shortener.Click) (*shortener.Mapping, error) {
	return nil, shortener.ErrNotFound
}
