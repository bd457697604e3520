package video

import (
	"context"
	"strings"
)

// Model identifiers accepted by the API. Anything else falls back to ModelVeo3Fast.
const (
	ModelVeo3Fast  = "veo-3-fast"
	ModelVeo31Fast = "veo-3.1-fast"
	ModelSora2     = "sora-2"
)

const (
	DefaultDuration    = 8
	DefaultAspectRatio = "16:9"
)

var (
	allowedDurations = map[int]struct{}{5: {}, 8: {}, 10: {}}
	allowedRatios    = map[string]struct{}{"16:9": {}, "9:16": {}, "1:1": {}, "4:3": {}}
)

// GenerateRequest carries one normalized generation order through the router
// into a provider adapter.
type GenerateRequest struct {
	Model       string
	Prompt      string
	Duration    int
	AspectRatio string
	Audio       bool
	RequestID   string
}

// Normalize trims the prompt and replaces out-of-range fields with defaults.
// The front-end only offers the allowed sets, so unknown values are treated as
// "unset" rather than rejected.
func (r *GenerateRequest) Normalize() {
	r.Prompt = strings.TrimSpace(r.Prompt)
	if _, ok := allowedDurations[r.Duration]; !ok {
		r.Duration = DefaultDuration
	}
	r.AspectRatio = strings.TrimSpace(r.AspectRatio)
	if _, ok := allowedRatios[r.AspectRatio]; !ok {
		r.AspectRatio = DefaultAspectRatio
	}
}

// Result is the uniform adapter output returned to the HTTP boundary.
// Filename is set only when the provider stored the payload locally.
type Result struct {
	Success     bool   `json:"success"`
	VideoURL    string `json:"videoUrl"`
	Model       string `json:"model"`
	Prompt      string `json:"prompt"`
	Duration    int    `json:"duration"`
	AspectRatio string `json:"ratio"`
	Provider    string `json:"provider"`
	Filename    string `json:"filename,omitempty"`
}

// Generator translates the uniform generation contract into one external
// provider's protocol.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (*Result, error)
}

// GeneratorFunc adapts a plain function to the Generator interface.
type GeneratorFunc func(ctx context.Context, req GenerateRequest) (*Result, error)

func (f GeneratorFunc) Generate(ctx context.Context, req GenerateRequest) (*Result, error) {
	return f(ctx, req)
}
