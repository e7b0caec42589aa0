package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/serroba/url-shortener/internal/shortener"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mappingsCollection = "url_mappings"

// MongoStore is the MongoDB implementation of shortener.Repository. The
// url_mappings collection carries a unique index on short_code, which is the
// backstop for the duplicate-code race: a losing insert fails with a
// duplicate-key error instead of overwriting the winner.
type MongoStore struct {
	collection *mongo.Collection
}

// NewMongoStore creates a Mongo-backed mapping store.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{collection: db.Collection(mappingsCollection)}
}

// EnsureIndexes creates the unique short_code index and the original_url
// lookup index.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "short_code", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "original_url", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}

	return nil
}

func (s *MongoStore) FindByShortCode(ctx context.Context, code string) (*shortener.Mapping, error) {
	return s.findOne(ctx, bson.M{"short_code": code})
}

func (s *MongoStore) FindByOriginalURL(ctx context.Context, originalURL string) (*shortener.Mapping, error) {
	// Prefer the active mapping; fall back to the latest inactive one.
	mapping, err := s.findOne(ctx, bson.M{"original_url": originalURL, "active": true})
	if err == nil || !errors.Is(err, shortener.ErrNotFound) {
		return mapping, err
	}

	return s.findOne(ctx, bson.M{"original_url": originalURL})
}

func (s *MongoStore) ExistsByShortCode(ctx context.Context, code string) (bool, error) {
	count, err := s.collection.CountDocuments(ctx,
		bson.M{"short_code": code},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return false, fmt.Errorf("count short code: %w", err)
	}

	return count > 0, nil
}

func (s *MongoStore) Save(ctx context.Context, mapping *shortener.Mapping) error {
	if mapping.ID == "" {
		mapping.ID = primitive.NewObjectID().Hex()

		if _, err := s.collection.InsertOne(ctx, mapping); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return fmt.Errorf("short code %q already taken: %w", mapping.ShortCode, err)
			}

			return fmt.Errorf("insert mapping: %w", err)
		}

		return nil
	}

	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": mapping.ID}, mapping)
	if err != nil {
		return fmt.Errorf("replace mapping: %w", err)
	}

	return nil
}

// TrackClick increments click_count and appends the click in a single
// FindOneAndUpdate, so concurrent redirects against the same code never lose
// an update. The filter only matches active mappings; an unknown or inactive
// code leaves the store untouched.
func (s *MongoStore) TrackClick(ctx context.Context, code string, click shortener.Click) (*shortener.Mapping, error) {
	filter := bson.M{"short_code": code, "active": true}
	update := bson.M{
		"$inc":  bson.M{"click_count": 1},
		"$push": bson.M{"clicks": click},
	}

	var mapping shortener.Mapping

	err := s.collection.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&mapping)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, shortener.ErrNotFound
		}

		return nil, fmt.Errorf("track click: %w", err)
	}

	return &mapping, nil
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.M) (*shortener.Mapping, error) {
	var mapping shortener.Mapping

	err := s.collection.FindOne(ctx, filter).Decode(&mapping)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, shortener.ErrNotFound
		}

		return nil, fmt.Errorf("find mapping: %w", err)
	}

	return &mapping, nil
}

// Compile-time check.
var _ shortener.Repository = (*MongoStore)(nil)
