package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/samber/do"
	"github.com/streampulse/analytics/internal/container"
	"github.com/streampulse/analytics/internal/messaging"
	"github.com/streampulse/analytics/internal/store"
	"go.uber.org/zap"
)

func main() {
	opts := &container.Options{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnvInt("POSTGRES_PORT", 5433),
		PostgresDB:       getEnv("POSTGRES_DB", "streampulse"),
		PostgresUser:     getEnv("POSTGRES_USER", "streampulse"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "streampulse"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		ClickTopic:       getEnv("CLICK_TOPIC", "click-events"),
		ConsumerGroup:    getEnv("CONSUMER_GROUP", "streampulse-consumer"),
		LogFormat:        getEnv("LOG_FORMAT", "console"),
	}

	injector := do.New()
	do.ProvideValue(injector, opts)
	container.LoggerPackage(injector)
	container.RedisPackage(injector)
	container.PostgresPackage(injector)
	container.StorePackage(injector)
	container.ConsumerGroupPackage(injector)

	logger := do.MustInvoke[*zap.Logger](injector)

	ctx, cancel := context.WithCancel(context.Background())

	pgStore := do.MustInvoke[*store.PostgresStore](injector)
	if err := pgStore.EnsureSchema(ctx); err != nil {
		logger.Fatal("failed to ensure schema", zap.Error(err))
	}

	group := do.MustInvoke[*messaging.ConsumerGroup](injector)
	if err := group.Start(ctx); err != nil {
		logger.Fatal("failed to start consumer group", zap.Error(err))
	}

	logger.Info("ingestion consumer running",
		zap.String("topic", opts.ClickTopic),
		zap.String("group", opts.ConsumerGroup),
	)

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")
	cancel()

	if err := injector.Shutdown(); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}

	logger.Info("shutdown complete")
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}

	return defaultValue
}
