package hfvideo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jensin-hash/video-gen/internal/providers/video"
	"github.com/jensin-hash/video-gen/internal/storage"
)

// TokenSettingsURL is where users create Hugging Face access tokens. It is
// surfaced in needs-token responses as a remediation hint.
const TokenSettingsURL = "https://huggingface.co/settings/tokens"

// subProvider is the downstream inference provider the router forwards to.
const subProvider = "fal-ai"

const defaultBaseURL = "https://router.huggingface.co"

// ModelConfig is the only thing that differs between the two Hugging Face
// adapters; the control flow is shared.
type ModelConfig struct {
	// Name is the model identifier exposed on the API surface.
	Name string
	// ModelID is the upstream Hugging Face model.
	ModelID string
	// FilePrefix namespaces stored video filenames.
	FilePrefix string
	// ProviderTag labels results from this adapter.
	ProviderTag string
	// EnvVar names the environment variable holding the token, for error text.
	EnvVar string
}

// Veo31 and Sora2 are the two models served through Hugging Face.
var (
	Veo31 = ModelConfig{
		Name:        video.ModelVeo31Fast,
		ModelID:     "akhaliq/veo3.1-fast",
		FilePrefix:  "veo31",
		ProviderTag: "huggingface-veo31",
		EnvVar:      "HF_TOKEN_VEO31",
	}
	Sora2 = ModelConfig{
		Name:        video.ModelSora2,
		ModelID:     "akhaliq/sora-2",
		FilePrefix:  "sora2",
		ProviderTag: "huggingface-sora2",
		EnvVar:      "HF_TOKEN_SORA2",
	}
)

// Options configures a Hugging Face text-to-video client.
type Options struct {
	Model      ModelConfig
	Token      string
	BaseURL    string
	VideoDir   string
	HTTPClient *http.Client
	Logger     *zerolog.Logger
}

// Client performs a single synchronous text-to-video call and stores the
// returned binary payload under the local serving directory.
type Client struct {
	model      ModelConfig
	token      string
	baseURL    string
	store      *storage.FileStore
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		// Generation is synchronous upstream; allow it several minutes.
		httpClient = &http.Client{Timeout: 5 * time.Minute}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	videoDir := opts.VideoDir
	if videoDir == "" {
		videoDir = filepath.Join("public", "videos")
	}
	var logger zerolog.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	} else {
		logger = zerolog.New(io.Discard)
	}
	return &Client{
		model:      opts.Model,
		token:      strings.TrimSpace(opts.Token),
		baseURL:    baseURL,
		store:      storage.NewFileStore(videoDir),
		httpClient: httpClient,
		logger:     logger,
	}
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.token != ""
}

type generationRequest struct {
	Inputs     string           `json:"inputs"`
	Parameters generationParams `json:"parameters"`
	Provider   string           `json:"provider"`
}

type generationParams struct {
	Duration    int    `json:"duration"`
	AspectRatio string `json:"aspect_ratio"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Generate performs the remote call and writes the resulting video under the
// serving directory. All failures carry guidance text pointing at the
// always-available veo-3-fast model.
func (c *Client) Generate(ctx context.Context, req video.GenerateRequest) (*video.Result, error) {
	if !c.HasCredentials() {
		return nil, &video.CredentialError{
			Model:    c.model.Name,
			EnvVar:   c.model.EnvVar,
			TokenURL: TokenSettingsURL,
		}
	}

	payload := generationRequest{
		Inputs: req.Prompt,
		Parameters: generationParams{
			Duration:    req.Duration,
			AspectRatio: req.AspectRatio,
		},
		Provider: subProvider,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("hfvideo: encode request: %w", err)
	}

	endpoint := c.baseURL + "/" + subProvider + "/" + c.model.ModelID
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("hfvideo: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, c.wrapFailure(fmt.Errorf("http request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, c.mapStatusError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.wrapFailure(fmt.Errorf("read video payload: %w", err))
	}
	if len(data) == 0 {
		return nil, c.wrapFailure(fmt.Errorf("empty video payload: %w", video.ErrModelUnavailable))
	}

	filename, err := c.storeVideo(data)
	if err != nil {
		return nil, err
	}
	videoURL := "/videos/" + filename
	c.logger.Info().
		Str("model", c.model.Name).
		Str("file", filename).
		Int("bytes", len(data)).
		Msg("hfvideo: video stored")

	return &video.Result{
		Success:     true,
		VideoURL:    videoURL,
		Model:       c.model.Name,
		Prompt:      req.Prompt,
		Duration:    req.Duration,
		AspectRatio: req.AspectRatio,
		Provider:    c.model.ProviderTag,
		Filename:    filename,
	}, nil
}

// storeVideo writes the payload under a freshly generated, collision-free
// filename and returns the bare filename. The serving directory is created on
// demand by the store.
func (c *Client) storeVideo(data []byte) (string, error) {
	filename := fmt.Sprintf("%s_%d_%s.mp4", c.model.FilePrefix, time.Now().UnixMilli(), uuid.NewString()[:8])
	name, err := c.store.Write(filename, data)
	if err != nil {
		return "", fmt.Errorf("hfvideo: store video: %w", err)
	}
	return name, nil
}

// mapStatusError classifies an upstream non-2xx response into the shared
// error taxonomy.
func (c *Client) mapStatusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	detail, malformed := upstreamDetail(raw)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || strings.Contains(strings.ToLower(detail), "unauthorized"):
		return fmt.Errorf("hfvideo: invalid Hugging Face token for %s, check %s: %w",
			c.model.Name, c.model.EnvVar, video.ErrUnauthorized)
	case resp.StatusCode == http.StatusTooManyRequests || strings.Contains(strings.ToLower(detail), "rate limit"):
		return fmt.Errorf("hfvideo: Hugging Face rate limit exceeded, try %s instead or wait a few minutes: %w",
			video.ModelVeo3Fast, video.ErrRateLimited)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("hfvideo: %s not found on Hugging Face, use %s which is always available: %w",
			c.model.Name, video.ModelVeo3Fast, video.ErrModelUnavailable)
	case malformed:
		// HTML or plain-text error pages mean the model endpoint is not
		// currently serving.
		return fmt.Errorf("hfvideo: %s is currently unavailable or not accessible, use %s instead or try again later: %w",
			c.model.Name, video.ModelVeo3Fast, video.ErrModelUnavailable)
	default:
		if detail == "" {
			detail = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return c.wrapFailure(fmt.Errorf("%s", detail))
	}
}

// upstreamDetail extracts the error message from a JSON error body. malformed
// reports a non-empty body that is not valid JSON.
func upstreamDetail(raw []byte) (detail string, malformed bool) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return "", false
	}
	var decoded errorResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", true
	}
	return strings.TrimSpace(decoded.Error), false
}

// wrapFailure tags a generic provider failure with fallback guidance.
func (c *Client) wrapFailure(err error) error {
	return fmt.Errorf("hfvideo: %s error: %w. Try using %s which is always available",
		c.model.Name, err, video.ModelVeo3Fast)
}

var _ video.Generator = (*Client)(nil)
