package nekolabs

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jensin-hash/video-gen/internal/providers/video"
)

// ProviderTag identifies results produced by this adapter.
const ProviderTag = "nekolabs"

// Model is the only model served by the nekolabs API. It needs no credential.
const Model = video.ModelVeo3Fast

const (
	defaultBaseURL     = "https://api.nekolabs.my.id"
	defaultPollTimeout = 10 * time.Second

	// A success status without an output URL is tolerated this many polls
	// ("not yet populated") before it becomes a hard failure.
	missingOutputGrace = 30
)

// Options configures the nekolabs client.
type Options struct {
	BaseURL         string
	HTTPClient      *http.Client
	Logger          *zerolog.Logger
	PollInterval    time.Duration
	MaxPollAttempts int
	// InsecureTLS skips certificate verification. The upstream host serves a
	// certificate that does not validate against common roots.
	InsecureTLS bool
}

// Client drives the nekolabs task API: one creation call followed by a
// bounded status-polling loop.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	logger       zerolog.Logger
	pollInterval time.Duration
	maxAttempts  int
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		transport := http.DefaultTransport
		if opts.InsecureTLS {
			transport = &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			}
		}
		httpClient = &http.Client{Transport: transport, Timeout: defaultPollTimeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	pollInterval := opts.PollInterval
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	maxAttempts := opts.MaxPollAttempts
	if maxAttempts <= 0 {
		maxAttempts = 180
	}
	var logger zerolog.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	} else {
		logger = zerolog.New(io.Discard)
	}
	return &Client{
		baseURL:      baseURL,
		httpClient:   httpClient,
		logger:       logger,
		pollInterval: pollInterval,
		maxAttempts:  maxAttempts,
	}
}

type taskResult struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  string `json:"error"`

	// The upstream API has shipped the output URL under several names over
	// time; all candidates are probed in priority order.
	Output    string `json:"output"`
	VideoURL  string `json:"videoUrl"`
	URL       string `json:"url"`
	Video     string `json:"video"`
	OutputURL string `json:"outputUrl"`
}

type taskResponse struct {
	Success bool        `json:"success"`
	Result  *taskResult `json:"result"`
}

func (r *taskResult) outputURL() string {
	for _, candidate := range []string{r.Output, r.VideoURL, r.URL, r.Video, r.OutputURL} {
		if u := strings.TrimSpace(candidate); u != "" {
			return u
		}
	}
	return ""
}

// Generate submits the prompt as a generation task and polls until a terminal
// status, a fatal upstream error, cancellation, or exhaustion of the attempt
// budget. The returned URL points at the upstream-hosted asset; nothing is
// written locally.
func (c *Client) Generate(ctx context.Context, req video.GenerateRequest) (*video.Result, error) {
	taskID, err := c.createTask(ctx, req)
	if err != nil {
		return nil, err
	}
	c.logger.Info().Str("task_id", taskID).Msg("nekolabs: task created, polling for completion")

	videoURL, err := c.pollTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	return &video.Result{
		Success:     true,
		VideoURL:    videoURL,
		Model:       Model,
		Prompt:      req.Prompt,
		Duration:    req.Duration,
		AspectRatio: req.AspectRatio,
		Provider:    ProviderTag,
	}, nil
}

func (c *Client) createTask(ctx context.Context, req video.GenerateRequest) (string, error) {
	q := url.Values{}
	q.Set("prompt", req.Prompt)
	q.Set("ratio", req.AspectRatio)
	q.Set("duration", strconv.Itoa(req.Duration))
	q.Set("audio", "true")
	endpoint := c.baseURL + "/ai/veo-3-fast/create?" + q.Encode()

	var decoded taskResponse
	if _, err := c.getJSON(ctx, endpoint, &decoded); err != nil {
		return "", fmt.Errorf("nekolabs: create task: %w", err)
	}
	if !decoded.Success || decoded.Result == nil || strings.TrimSpace(decoded.Result.ID) == "" {
		return "", fmt.Errorf("nekolabs: %w", video.ErrTaskCreation)
	}
	return decoded.Result.ID, nil
}

func (c *Client) pollTask(ctx context.Context, taskID string) (string, error) {
	endpoint := c.baseURL + "/ai/veo-3-fast/get?id=" + url.QueryEscape(taskID)

	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("nekolabs: poll aborted: %w", ctx.Err())
		case <-time.After(c.pollInterval):
		}

		var decoded taskResponse
		status, err := c.getJSON(ctx, endpoint, &decoded)
		if err != nil {
			if isTransient(status, err) {
				c.logger.Warn().Int("status", status).Err(err).Msg("nekolabs: transient poll error, retrying")
				continue
			}
			return "", fmt.Errorf("nekolabs: poll task: %w", err)
		}
		if !decoded.Success || decoded.Result == nil {
			continue
		}

		switch decoded.Result.Status {
		case "succeeded", "completed":
			if u := decoded.Result.outputURL(); u != "" {
				c.logger.Info().Str("task_id", taskID).Str("url", u).Msg("nekolabs: generation succeeded")
				return u, nil
			}
			// Terminal status can land before the output URL is populated.
			if attempt > missingOutputGrace {
				return "", fmt.Errorf("nekolabs: video succeeded but no output URL after %s",
					time.Duration(missingOutputGrace)*c.pollInterval)
			}
		case "failed", "error":
			msg := strings.TrimSpace(decoded.Result.Error)
			if msg == "" {
				msg = "video generation failed"
			}
			return "", fmt.Errorf("nekolabs: %s: %w", msg, video.ErrGenerationFailed)
		default:
			if attempt > 0 && attempt%5 == 0 {
				c.logger.Debug().
					Str("task_id", taskID).
					Str("status", decoded.Result.Status).
					Dur("elapsed", time.Duration(attempt)*c.pollInterval).
					Msg("nekolabs: still processing")
			}
		}
	}

	return "", fmt.Errorf("nekolabs: no terminal status after %d attempts: %w", c.maxAttempts, video.ErrPollTimeout)
}

// getJSON performs one GET and decodes the body. It returns the HTTP status
// code alongside any error so the poll loop can classify 5xx as transient.
func (c *Client) getJSON(ctx context.Context, endpoint string, out any) (int, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, nil
}

// isTransient reports whether a poll failure should consume an attempt and
// continue rather than abort: upstream 5xx and request timeouts.
func isTransient(status int, err error) bool {
	if status >= 500 {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}

var _ video.Generator = (*Client)(nil)
