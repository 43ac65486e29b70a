package ratelimit

import "github.com/danielgtaylor/huma/v2"

// MetadataKey is the operation metadata key endpoints use to customize
// their rate limits.
const MetadataKey = "rateLimit"

// EndpointConfig is attached to huma operations via the Metadata field.
// Empty Limits means the middleware's defaults apply.
type EndpointConfig struct {
	Limits   []Limit
	Disabled bool
}

// EndpointConfigFrom reads the current operation's rate limit
// configuration, or nil when the endpoint declares none.
func EndpointConfigFrom(ctx huma.Context) *EndpointConfig {
	op := ctx.Operation()
	if op == nil || op.Metadata == nil {
		return nil
	}

	if cfg, ok := op.Metadata[MetadataKey].(EndpointConfig); ok {
		return &cfg
	}

	return nil
}
