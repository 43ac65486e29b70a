// Command producer publishes randomized click events for local
// development, standing in for the redirect edge.
package main

import (
	"math/rand"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jaevor/go-nanoid"
	"github.com/samber/do"
	"github.com/streampulse/analytics/internal/container"
	"github.com/streampulse/analytics/internal/ingest"
	"github.com/streampulse/analytics/internal/messaging"
	"go.uber.org/zap"
)

const publishInterval = 200 * time.Millisecond

var referrers = []string{
	"https://news.ycombinator.com/",
	"https://twitter.com/streampulse",
	"https://www.reddit.com/r/golang/",
	"https://lobste.rs/",
	"", // direct visit, no referrer
}

var userAgents = []string{
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
	"Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/119.0",
	"curl/8.4.0",
}

func main() {
	opts := &container.Options{
		RedisAddr:  getEnv("REDIS_ADDR", "localhost:6379"),
		ClickTopic: getEnv("CLICK_TOPIC", "click-events"),
		LogFormat:  getEnv("LOG_FORMAT", "console"),
	}

	injector := do.New()
	do.ProvideValue(injector, opts)
	container.LoggerPackage(injector)
	container.RedisPackage(injector)
	container.PublisherPackage(injector)

	logger := do.MustInvoke[*zap.Logger](injector)
	group := do.MustInvoke[*messaging.PublisherGroup](injector)

	publish := messaging.NewPublishFunc[ingest.ClickEvent](group.Publisher(), opts.ClickTopic)

	gen, err := nanoid.Standard(6)
	if err != nil {
		logger.Fatal("failed to create code generator", zap.Error(err))
	}

	codes := make([]string, 3)
	for i := range codes {
		codes[i] = gen()
	}

	logger.Info("producing click events",
		zap.Strings("codes", codes),
		zap.String("topic", opts.ClickTopic),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(publishInterval)
	defer ticker.Stop()

	for {
		select {
		case <-sigChan:
			logger.Info("shutting down")

			if err := injector.Shutdown(); err != nil {
				logger.Error("shutdown error", zap.Error(err))
			}

			return
		case <-ticker.C:
			event := randomEvent(codes)
			if err := publish(event); err != nil {
				logger.Error("failed to publish click event", zap.Error(err))

				continue
			}

			logger.Debug("published click event",
				zap.String("shortCode", event.ShortCode),
			)
		}
	}
}

func randomEvent(codes []string) *ingest.ClickEvent {
	return &ingest.ClickEvent{
		ShortCode: codes[rand.Intn(len(codes))],
		UserID:    int64(rand.Intn(10) + 1),
		Timestamp: time.Now().UTC(),
		Referrer:  referrers[rand.Intn(len(referrers))],
		UserAgent: userAgents[rand.Intn(len(userAgents))],
		IP:        randomIP(),
	}
}

func randomIP() string {
	return net.IPv4(
		byte(rand.Intn(223)+1),
		byte(rand.Intn(256)),
		byte(rand.Intn(256)),
		byte(rand.Intn(254)+1),
	).String()
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return defaultValue
}
