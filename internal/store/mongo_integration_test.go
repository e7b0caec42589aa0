//go:build integration

package store_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/serroba/url-shortener/internal/shortener"
	"github.com/serroba/url-shortener/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

func getMongoURI() string {
	if uri := os.Getenv("MONGO_URI"); uri != "" {
		return uri
	}
	return "mongodb://localhost:27017"
}

func TestMongoStoreIntegration(t *testing.T) {
	ctx := context.Background()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(getMongoURI()))
	require.NoError(t, err)

	defer func() { _ = client.Disconnect(ctx) }()

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		t.Skipf("MongoDB not available: %v", err)
	}

	db := client.Database("shortener_test")
	t.Cleanup(func() { _ = db.Drop(ctx) })

	s := store.NewMongoStore(db)
	require.NoError(t, s.EnsureIndexes(ctx))

	t.Run("save and find mapping", func(t *testing.T) {
		mapping := shortener.NewMapping("itg001", "https://www.example.com/itg001")

		require.NoError(t, s.Save(ctx, mapping))
		assert.NotEmpty(t, mapping.ID)

		stored, err := s.FindByShortCode(ctx, "itg001")
		require.NoError(t, err)
		assert.Equal(t, "https://www.example.com/itg001", stored.OriginalURL)
		assert.True(t, stored.Active)

		byURL, err := s.FindByOriginalURL(ctx, "https://www.example.com/itg001")
		require.NoError(t, err)
		assert.Equal(t, "itg001", byURL.ShortCode)
	})

	t.Run("unique index rejects duplicate codes", func(t *testing.T) {
		require.NoError(t, s.Save(ctx, shortener.NewMapping("itg002", "https://one.example.com")))

		err := s.Save(ctx, shortener.NewMapping("itg002", "https://two.example.com"))

		require.Error(t, err)

		stored, findErr := s.FindByShortCode(ctx, "itg002")
		require.NoError(t, findErr)
		assert.Equal(t, "https://one.example.com", stored.OriginalURL)
	})

	t.Run("exists by short code", func(t *testing.T) {
		require.NoError(t, s.Save(ctx, shortener.NewMapping("itg003", "https://www.example.com/itg003")))

		exists, err := s.ExistsByShortCode(ctx, "itg003")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = s.ExistsByShortCode(ctx, "nope00")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("track click updates counter and history atomically", func(t *testing.T) {
		require.NoError(t, s.Save(ctx, shortener.NewMapping("itg004", "https://www.example.com/itg004")))

		updated, err := s.TrackClick(ctx, "itg004", shortener.Click{
			Timestamp: time.Now(),
			UserAgent: "TestAgent/1.0",
			IPAddress: "192.168.1.1",
		})

		require.NoError(t, err)
		assert.Equal(t, int64(1), updated.ClickCount)
		require.Len(t, updated.Clicks, 1)
		assert.Equal(t, "TestAgent/1.0", updated.Clicks[0].UserAgent)
	})

	t.Run("concurrent clicks lose no updates", func(t *testing.T) {
		require.NoError(t, s.Save(ctx, shortener.NewMapping("itg005", "https://www.example.com/itg005")))

		const clicks = 50

		var wg sync.WaitGroup

		for range clicks {
			wg.Add(1)

			go func() {
				defer wg.Done()

				_, err := s.TrackClick(ctx, "itg005", shortener.Click{Timestamp: time.Now()})
				assert.NoError(t, err)
			}()
		}

		wg.Wait()

		stored, err := s.FindByShortCode(ctx, "itg005")
		require.NoError(t, err)
		assert.Equal(t, int64(clicks), stored.ClickCount)
		assert.Len(t, stored.Clicks, clicks)
	})

	t.Run("track click on inactive mapping returns ErrNotFound", func(t *testing.T) {
		mapping := shortener.NewMapping("itg006", "https://www.example.com/itg006")
		mapping.Active = false
		require.NoError(t, s.Save(ctx, mapping))

		updated, err := s.TrackClick(ctx, "itg006", shortener.Click{Timestamp: time.Now()})

		assert.Nil(t, updated)
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("find by original url prefers the active mapping", func(t *testing.T) {
		inactive := shortener.NewMapping("itg007", "https://dup.example.com")
		inactive.Active = false
		require.NoError(t, s.Save(ctx, inactive))
		require.NoError(t, s.Save(ctx, shortener.NewMapping("itg008", "https://dup.example.com")))

		stored, err := s.FindByOriginalURL(ctx, "https://dup.example.com")
		require.NoError(t, err)
		assert.Equal(t, "itg008", stored.ShortCode)
	})
}
