package video

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

type route struct {
	generator  Generator
	credential *CredentialError // template for the needs-token failure, nil when no token is required
	hasToken   bool
}

// Router selects the provider adapter for a requested model identifier and
// applies precondition checks before invoking it. An unknown or empty model
// routes to the default adapter.
type Router struct {
	defaultModel string
	defaultRoute route
	routes       map[string]route
	logger       zerolog.Logger
}

// NewRouter builds a router with defaultGen answering every model identifier
// that has no explicit registration.
func NewRouter(defaultModel string, defaultGen Generator, logger zerolog.Logger) *Router {
	return &Router{
		defaultModel: defaultModel,
		defaultRoute: route{generator: defaultGen, hasToken: true},
		routes:       make(map[string]route),
		logger:       logger,
	}
}

// Register adds a token-gated adapter for one model identifier. hasToken is
// evaluated once at wiring time; credentials are immutable for the process
// lifetime.
func (r *Router) Register(model string, gen Generator, hasToken bool, envVar, tokenURL string) {
	r.routes[model] = route{
		generator: gen,
		credential: &CredentialError{
			Model:    model,
			EnvVar:   envVar,
			TokenURL: tokenURL,
		},
		hasToken: hasToken,
	}
}

// Generate validates the request, resolves the adapter for req.Model, checks
// its credential precondition, and invokes it. The credential check runs here
// so the caller gets a structured needs-token signal instead of a provider
// failure.
func (r *Router) Generate(ctx context.Context, req GenerateRequest) (*Result, error) {
	req.Normalize()
	if req.Prompt == "" {
		return nil, ErrEmptyPrompt
	}

	model := req.Model
	rt, ok := r.routes[model]
	if !ok {
		model = r.defaultModel
		rt = r.defaultRoute
	}
	req.Model = model

	if rt.credential != nil && !rt.hasToken {
		return nil, rt.credential
	}
	if rt.generator == nil {
		return nil, fmt.Errorf("video: no adapter registered for model %s", model)
	}

	r.logger.Info().
		Str("model", model).
		Int("duration", req.Duration).
		Str("ratio", req.AspectRatio).
		Str("request_id", req.RequestID).
		Msg("video: dispatching generation")

	return rt.generator.Generate(ctx, req)
}
