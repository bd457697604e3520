package video

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across provider adapters so callers can classify
// failures with errors.Is without depending on provider packages.
var (
	// ErrEmptyPrompt indicates invalid caller input, mapped to HTTP 400.
	ErrEmptyPrompt = errors.New("prompt is required")

	// ErrTaskCreation indicates the remote task-submission call did not
	// return a usable task identifier.
	ErrTaskCreation = errors.New("failed to create video task")

	// ErrGenerationFailed indicates the remote task reached a failure
	// terminal status.
	ErrGenerationFailed = errors.New("video generation failed")

	// ErrPollTimeout indicates the polling budget was exhausted without a
	// terminal status.
	ErrPollTimeout = errors.New("video generation timed out")

	// ErrUnauthorized indicates the configured credential was rejected.
	ErrUnauthorized = errors.New("provider rejected credentials")

	// ErrRateLimited indicates the provider throttled the request.
	ErrRateLimited = errors.New("provider rate limit exceeded")

	// ErrModelUnavailable indicates the upstream model is missing or not
	// currently serving requests.
	ErrModelUnavailable = errors.New("model unavailable")
)

// CredentialError reports a missing provider credential. The router raises it
// before any network call so the handler can answer with a structured
// needs-token response instead of a generic failure.
type CredentialError struct {
	Model    string
	EnvVar   string
	TokenURL string
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("%s requires a Hugging Face API token. Please add %s to the environment or use %s (no token needed).",
		e.Model, e.EnvVar, ModelVeo3Fast)
}

// AsCredentialError unwraps err into a CredentialError if one is in the chain.
func AsCredentialError(err error) (*CredentialError, bool) {
	var ce *CredentialError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
