package middleware_test

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/streampulse/analytics/internal/middleware"
	"github.com/streampulse/analytics/internal/ratelimit"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

var errMultipartNotSupported = errors.New("multipart not supported in mock")

func newTestAPI() huma.API {
	return humachi.New(chi.NewMux(), huma.DefaultConfig("Test", "1.0.0"))
}

type mockLimiter struct {
	allowed bool
	err     error
	keys    []string
	limits  [][]ratelimit.Limit
}

func (m *mockLimiter) Allow(_ context.Context, key string, limits []ratelimit.Limit) (bool, error) {
	m.keys = append(m.keys, key)
	m.limits = append(m.limits, limits)

	return m.allowed, m.err
}

// mockHumaContext implements huma.Context for testing.
type mockHumaContext struct {
	headers    map[string]string
	host       string
	statusCode int
	written    []byte
	operation  *huma.Operation
}

func newMockHumaContext() *mockHumaContext {
	return &mockHumaContext{
		headers: map[string]string{"User-Agent": "TestAgent/1.0"},
		host:    "192.168.1.1:12345",
	}
}

func (m *mockHumaContext) Operation() *huma.Operation            { return m.operation }
func (m *mockHumaContext) Context() context.Context              { return context.Background() }
func (m *mockHumaContext) TLS() *tls.ConnectionState             { return nil }
func (m *mockHumaContext) Version() huma.ProtoVersion            { return huma.ProtoVersion{} }
func (m *mockHumaContext) Method() string                        { return http.MethodGet }
func (m *mockHumaContext) Host() string                          { return m.host }
func (m *mockHumaContext) RemoteAddr() string                    { return m.host }
func (m *mockHumaContext) URL() url.URL                          { return url.URL{} }
func (m *mockHumaContext) Param(_ string) string                 { return "" }
func (m *mockHumaContext) Query(_ string) string                 { return "" }
func (m *mockHumaContext) Header(name string) string             { return m.headers[name] }
func (m *mockHumaContext) EachHeader(_ func(name, value string)) {}
func (m *mockHumaContext) BodyReader() io.Reader                 { return nil }
func (m *mockHumaContext) GetMultipartForm() (*multipart.Form, error) {
	return nil, errMultipartNotSupported
}
func (m *mockHumaContext) SetReadDeadline(_ time.Time) error { return nil }
func (m *mockHumaContext) SetStatus(code int)                { m.statusCode = code }
func (m *mockHumaContext) Status() int                       { return m.statusCode }
func (m *mockHumaContext) AppendHeader(_, _ string)          {}
func (m *mockHumaContext) SetHeader(_, _ string)             {}
func (m *mockHumaContext) BodyWriter() io.Writer             { return &mockBodyWriter{ctx: m} }

type mockBodyWriter struct {
	ctx *mockHumaContext
}

func (w *mockBodyWriter) Write(p []byte) (int, error) {
	w.ctx.written = append(w.ctx.written, p...)

	return len(p), nil
}

func withEndpointConfig(cfg ratelimit.EndpointConfig) *huma.Operation {
	return &huma.Operation{
		Metadata: map[string]any{ratelimit.MetadataKey: cfg},
	}
}

var defaultLimits = []ratelimit.Limit{{Window: time.Minute, Max: 10}}

func TestRateLimiter(t *testing.T) {
	t.Run("allows requests under the limit", func(t *testing.T) {
		limiter := &mockLimiter{allowed: true}
		mw := middleware.RateLimiter(newTestAPI(), limiter, defaultLimits, zap.NewNop())

		nextCalled := false
		mw(newMockHumaContext(), func(_ huma.Context) { nextCalled = true })

		assert.True(t, nextCalled)
		assert.Len(t, limiter.keys, 1)
	})

	t.Run("rejects requests over the limit with 429", func(t *testing.T) {
		limiter := &mockLimiter{allowed: false}
		mw := middleware.RateLimiter(newTestAPI(), limiter, defaultLimits, zap.NewNop())

		ctx := newMockHumaContext()
		nextCalled := false
		mw(ctx, func(_ huma.Context) { nextCalled = true })

		assert.False(t, nextCalled)
		assert.Equal(t, http.StatusTooManyRequests, ctx.statusCode)
	})

	t.Run("fails open when the limit store errors", func(t *testing.T) {
		limiter := &mockLimiter{err: errors.New("redis down")}
		mw := middleware.RateLimiter(newTestAPI(), limiter, defaultLimits, zap.NewNop())

		nextCalled := false
		mw(newMockHumaContext(), func(_ huma.Context) { nextCalled = true })

		assert.True(t, nextCalled)
	})

	t.Run("skips disabled endpoints entirely", func(t *testing.T) {
		limiter := &mockLimiter{allowed: false}
		mw := middleware.RateLimiter(newTestAPI(), limiter, defaultLimits, zap.NewNop())

		ctx := newMockHumaContext()
		ctx.operation = withEndpointConfig(ratelimit.EndpointConfig{Disabled: true})

		nextCalled := false
		mw(ctx, func(_ huma.Context) { nextCalled = true })

		assert.True(t, nextCalled)
		assert.Empty(t, limiter.keys)
	})

	t.Run("endpoint limits override the defaults", func(t *testing.T) {
		limiter := &mockLimiter{allowed: true}
		mw := middleware.RateLimiter(newTestAPI(), limiter, defaultLimits, zap.NewNop())

		custom := []ratelimit.Limit{{Window: time.Minute, Max: 1000}}

		ctx := newMockHumaContext()
		ctx.operation = withEndpointConfig(ratelimit.EndpointConfig{Limits: custom})

		mw(ctx, func(_ huma.Context) {})

		assert.Len(t, limiter.limits, 1)
		assert.Equal(t, custom, limiter.limits[0])
	})

	t.Run("distinct client IPs get distinct keys", func(t *testing.T) {
		limiter := &mockLimiter{allowed: true}
		mw := middleware.RateLimiter(newTestAPI(), limiter, defaultLimits, zap.NewNop())

		first := newMockHumaContext()
		first.headers["X-Real-IP"] = "10.0.0.1"

		second := newMockHumaContext()
		second.headers["X-Real-IP"] = "10.0.0.2"

		mw(first, func(_ huma.Context) {})
		mw(second, func(_ huma.Context) {})

		assert.Len(t, limiter.keys, 2)
		assert.NotEqual(t, limiter.keys[0], limiter.keys[1])
	})

	t.Run("forwarded-for chain resolves to the first hop", func(t *testing.T) {
		limiter := &mockLimiter{allowed: true}
		mw := middleware.RateLimiter(newTestAPI(), limiter, defaultLimits, zap.NewNop())

		forwarded := newMockHumaContext()
		forwarded.headers["X-Forwarded-For"] = "10.0.0.1, 172.16.0.1"

		direct := newMockHumaContext()
		direct.headers["X-Real-IP"] = "10.0.0.1"

		mw(forwarded, func(_ huma.Context) {})
		mw(direct, func(_ huma.Context) {})

		assert.Len(t, limiter.keys, 2)
		assert.Equal(t, limiter.keys[0], limiter.keys[1])
	})
}
