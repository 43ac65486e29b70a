package container

import (
	"context"
	"fmt"
	"net/url"
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
	"github.com/streampulse/analytics/internal/handlers"
	"github.com/streampulse/analytics/internal/ingest"
	"github.com/streampulse/analytics/internal/messaging"
	"github.com/streampulse/analytics/internal/middleware"
	"github.com/streampulse/analytics/internal/ratelimit"
	"github.com/streampulse/analytics/internal/stats"
	"github.com/streampulse/analytics/internal/store"
	"go.uber.org/zap"
)

// Options holds process configuration. Every field is settable via CLI
// flag or the corresponding SERVICE_* environment variable.
type Options struct {
	Port             int    `default:"4000"                 help:"Port to listen on"                    short:"p"`
	PostgresHost     string `default:"localhost"            help:"PostgreSQL host"`
	PostgresPort     int    `default:"5433"                 help:"PostgreSQL port"`
	PostgresDB       string `default:"streampulse"          help:"PostgreSQL database name"`
	PostgresUser     string `default:"streampulse"          help:"PostgreSQL user"`
	PostgresPassword string `default:"streampulse"          help:"PostgreSQL password"`
	RedisAddr        string `default:"localhost:6379"       help:"Redis server address"                 short:"r"`
	ClickTopic       string `default:"click-events"         help:"Topic click events are published on"`
	ConsumerGroup    string `default:"streampulse-consumer" help:"Consumer group for click events"`
	LogFormat        string `default:"console"              help:"Log format: console or json"`
}

func (o *Options) postgresURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		url.QueryEscape(o.PostgresUser),
		url.QueryEscape(o.PostgresPassword),
		o.PostgresHost,
		o.PostgresPort,
		o.PostgresDB,
	)
}

// defaultLimits applies to stats endpoints that declare no custom limits.
var defaultLimits = []ratelimit.Limit{
	{Window: time.Minute, Max: 600},
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

// RedisPackage provides the shared Redis client used by the event
// transport and the rate limit store.
func RedisPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*redis.Client, error) {
		opts := do.MustInvoke[*Options](i)

		return redis.NewClient(&redis.Options{Addr: opts.RedisAddr}), nil
	})
}

// PostgresPackage provides the pgx connection pool.
func PostgresPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*pgxpool.Pool, error) {
		opts := do.MustInvoke[*Options](i)

		cfg, err := pgxpool.ParseConfig(opts.postgresURL())
		if err != nil {
			return nil, err
		}

		cfg.ConnConfig.ConnectTimeout = 5 * time.Second

		return pgxpool.NewWithConfig(context.Background(), cfg)
	})
}

// StorePackage provides the PostgreSQL store and binds it to the ports
// the rest of the application consumes.
func StorePackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*store.PostgresStore, error) {
		return store.NewPostgresStore(do.MustInvoke[*pgxpool.Pool](i)), nil
	})
	do.Provide(injector, func(i *do.Injector) (stats.Repository, error) {
		return do.MustInvoke[*store.PostgresStore](i), nil
	})
	do.Provide(injector, func(i *do.Injector) (ingest.Recorder, error) {
		return do.MustInvoke[*store.PostgresStore](i), nil
	})
}

// StatsPackage provides the stats service and its HTTP handler.
func StatsPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*stats.Service, error) {
		return stats.NewService(
			do.MustInvoke[stats.Repository](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(injector, func(i *do.Injector) (*handlers.StatsHandler, error) {
		return handlers.NewStatsHandler(
			do.MustInvoke[*stats.Service](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
}

// RateLimitPackage provides the Redis-backed sliding window limiter.
func RateLimitPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (ratelimit.Limiter, error) {
		limitStore := store.NewRateLimitRedisStore(do.MustInvoke[*redis.Client](i))

		return ratelimit.NewSlidingWindowLimiter(limitStore), nil
	})
}

// PublisherPackage provides the click event publisher over Redis Streams.
func PublisherPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{
				Client:     do.MustInvoke[*redis.Client](i),
				Marshaller: redisstream.DefaultMarshallerUnmarshaller{},
			},
			watermill.NewStdLogger(false, false),
		)
		if err != nil {
			return nil, err
		}

		return messaging.NewPublisherGroup(publisher), nil
	})
}

// ConsumerGroupPackage provides the ingestion consumer group: one typed
// consumer feeding click events into the recorder.
func ConsumerGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		subscriber, err := redisstream.NewSubscriber(
			redisstream.SubscriberConfig{
				Client:        do.MustInvoke[*redis.Client](i),
				Unmarshaller:  redisstream.DefaultMarshallerUnmarshaller{},
				ConsumerGroup: opts.ConsumerGroup,
			},
			watermill.NewStdLogger(false, false),
		)
		if err != nil {
			return nil, err
		}

		handler := ingest.NewHandler(do.MustInvoke[ingest.Recorder](i), logger)

		group := messaging.NewConsumerGroup(subscriber, logger)
		group.Add(messaging.NewConsumer(subscriber, opts.ClickTopic, handler.Handle, logger))

		return group, nil
	})
}

// HTTPPackage provides the router and the huma API with all stats routes
// and middleware registered.
func HTTPPackage(injector *do.Injector) {
	do.Provide(injector, func(_ *do.Injector) (*chi.Mux, error) {
		return chi.NewMux(), nil
	})
	do.Provide(injector, func(i *do.Injector) (huma.API, error) {
		router := do.MustInvoke[*chi.Mux](i)
		logger := do.MustInvoke[*zap.Logger](i)

		api := humachi.New(router, huma.DefaultConfig("StreamPulse Analytics", "1.0.0"))

		api.UseMiddleware(middleware.RateLimiter(
			api,
			do.MustInvoke[ratelimit.Limiter](i),
			defaultLimits,
			logger,
		))

		handlers.RegisterRoutes(api, do.MustInvoke[*handlers.StatsHandler](i))

		return api, nil
	})
}
