package container

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/url-shortener/internal/analytics"
	analyticsstore "github.com/serroba/url-shortener/internal/analytics/store"
	"github.com/serroba/url-shortener/internal/handlers"
	"github.com/serroba/url-shortener/internal/health"
	"github.com/serroba/url-shortener/internal/messaging"
	"github.com/serroba/url-shortener/internal/middleware"
	"github.com/serroba/url-shortener/internal/shortener"
	"github.com/serroba/url-shortener/internal/store"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	mongooptions "go.mongodb.org/mongo-driver/mongo/options"
)

// Options holds the service configuration, populated by humacli from flags
// and environment variables.
type Options struct {
	Port          int    `default:"8888"                      help:"Port to listen on"                                    short:"p"`
	BaseURL       string `default:""                          help:"Base URL for short links (default http://localhost:<port>)"`
	CodeLength    int    `default:"6"                         help:"Length of generated short codes"                      short:"c"`
	MongoURI      string `default:"mongodb://localhost:27017" help:"MongoDB connection URI"`
	MongoDatabase string `default:"shortener"                 help:"MongoDB database name"`
	RedisAddr     string `default:"localhost:6379"            help:"Redis server address"                                 short:"r"`
	CacheTTL      int    `default:"300"                       help:"Mapping cache TTL in seconds"`
	PostgresDSN   string `default:""                          help:"Postgres DSN for the analytics event archive (consumer)"`
	LogFormat     string `default:"console"                   help:"Log format: console or json"`
}

// LoggerPackage provides the zap logger.
func LoggerPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*zap.Logger, error) {
		opts := do.MustInvoke[*Options](i)

		if opts.LogFormat == "json" {
			return zap.NewProduction()
		}

		return zap.NewDevelopment()
	})
}

// RedisPackage provides the Redis client.
func RedisPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*redis.Client, error) {
		opts := do.MustInvoke[*Options](i)

		return redis.NewClient(&redis.Options{
			Addr: opts.RedisAddr,
		}), nil
	})
}

// MongoPackage provides the MongoDB client and database.
func MongoPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*mongo.Client, error) {
		opts := do.MustInvoke[*Options](i)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		client, err := mongo.Connect(ctx, mongooptions.Client().ApplyURI(opts.MongoURI))
		if err != nil {
			return nil, fmt.Errorf("connect to mongodb: %w", err)
		}

		return client, nil
	})

	do.Provide(injector, func(i *do.Injector) (*mongo.Database, error) {
		opts := do.MustInvoke[*Options](i)
		client := do.MustInvoke[*mongo.Client](i)

		return client.Database(opts.MongoDatabase), nil
	})
}

// RepositoryPackage provides the mapping repository: the Mongo store wrapped
// in the Redis read-through cache.
func RepositoryPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (shortener.Repository, error) {
		opts := do.MustInvoke[*Options](i)
		db := do.MustInvoke[*mongo.Database](i)
		redisClient := do.MustInvoke[*redis.Client](i)

		mongoStore := store.NewMongoStore(db)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := mongoStore.EnsureIndexes(ctx); err != nil {
			return nil, err
		}

		ttl := time.Duration(opts.CacheTTL) * time.Second

		return store.NewRedisCacheRepository(mongoStore, redisClient, ttl), nil
	})
}

// ShortenerPackage provides the code generator, allocator, and service.
func ShortenerPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*shortener.Service, error) {
		opts := do.MustInvoke[*Options](i)
		repo := do.MustInvoke[shortener.Repository](i)
		logger := do.MustInvoke[*zap.Logger](i)

		generate, err := shortener.NewCodeGenerator(opts.CodeLength)
		if err != nil {
			return nil, err
		}

		baseURL := opts.BaseURL
		if baseURL == "" {
			baseURL = fmt.Sprintf("http://localhost:%d", opts.Port)
		}

		allocator := shortener.NewCodeAllocator(generate, repo)

		return shortener.NewService(repo, allocator, baseURL, logger), nil
	})
}

// PublisherGroupPackage provides the Redis Streams publisher and the typed
// publish functions for analytics events.
func PublisherGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		redisClient := do.MustInvoke[*redis.Client](i)

		publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
			Client: redisClient,
		}, watermill.NopLogger{})
		if err != nil {
			return nil, fmt.Errorf("create redis stream publisher: %w", err)
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(injector, func(i *do.Injector) (messaging.Publish[analytics.LinkCreatedEvent], error) {
		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return messaging.NewPublishFunc[analytics.LinkCreatedEvent](group.Publisher(), analytics.TopicLinkCreated), nil
	})

	do.Provide(injector, func(i *do.Injector) (messaging.Publish[analytics.LinkClickedEvent], error) {
		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return messaging.NewPublishFunc[analytics.LinkClickedEvent](group.Publisher(), analytics.TopicLinkClicked), nil
	})
}

// ConsumerGroupPackage provides the analytics event store and the consumer
// group that archives published events.
func ConsumerGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (analytics.Store, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		if opts.PostgresDSN == "" {
			return analyticsstore.NewNoop(logger), nil
		}

		pool, err := pgxpool.New(context.Background(), opts.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}

		return analyticsstore.NewPostgres(pool), nil
	})

	do.Provide(injector, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		redisClient := do.MustInvoke[*redis.Client](i)
		logger := do.MustInvoke[*zap.Logger](i)
		eventStore := do.MustInvoke[analytics.Store](i)

		subscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
			Client:        redisClient,
			ConsumerGroup: "analytics",
		}, watermill.NopLogger{})
		if err != nil {
			return nil, fmt.Errorf("create redis stream subscriber: %w", err)
		}

		group := messaging.NewConsumerGroup(subscriber, logger)
		group.Add(messaging.NewConsumer(subscriber, analytics.TopicLinkCreated, eventStore.SaveLinkCreated, logger))
		group.Add(messaging.NewConsumer(subscriber, analytics.TopicLinkClicked, eventStore.SaveLinkClicked, logger))

		return group, nil
	})
}

// HTTPPackage provides the router, the huma API, and the registered routes.
func HTTPPackage(injector *do.Injector) {
	do.Provide(injector, func(_ *do.Injector) (*chi.Mux, error) {
		return chi.NewMux(), nil
	})

	do.Provide(injector, func(i *do.Injector) (huma.API, error) {
		router := do.MustInvoke[*chi.Mux](i)
		service := do.MustInvoke[*shortener.Service](i)
		logger := do.MustInvoke[*zap.Logger](i)
		redisClient := do.MustInvoke[*redis.Client](i)
		mongoClient := do.MustInvoke[*mongo.Client](i)
		publishCreated := do.MustInvoke[messaging.Publish[analytics.LinkCreatedEvent]](i)
		publishClicked := do.MustInvoke[messaging.Publish[analytics.LinkClickedEvent]](i)

		api := humachi.New(router, huma.DefaultConfig("URL Shortener", "1.0.0"))
		api.UseMiddleware(middleware.RequestMeta(api))

		urlHandler := handlers.NewURLHandler(service, publishCreated, publishClicked, logger)
		handlers.RegisterRoutes(api, urlHandler)

		healthHandler := health.NewHandler(
			health.NewMongoChecker(mongoClient),
			health.NewRedisChecker(redisClient),
		)
		health.RegisterRoutes(api, healthHandler)

		return api, nil
	})
}
