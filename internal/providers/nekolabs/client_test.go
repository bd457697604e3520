package nekolabs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jensin-hash/video-gen/internal/providers/video"
)

type stubUpstream struct {
	mu      sync.Mutex
	creates int
	polls   int
	// onPoll returns the response for the nth poll (1-based).
	onPoll func(n int, w http.ResponseWriter)
}

func (s *stubUpstream) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		switch {
		case strings.HasSuffix(r.URL.Path, "/create"):
			s.creates++
			writeJSON(w, map[string]any{
				"success": true,
				"result":  map[string]any{"id": "task-123"},
			})
		case strings.HasSuffix(r.URL.Path, "/get"):
			s.polls++
			s.onPoll(s.polls, w)
		default:
			http.NotFound(w, r)
		}
	})
}

func (s *stubUpstream) counts() (creates, polls int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creates, s.polls
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

func writeStatus(w http.ResponseWriter, status, url string) {
	result := map[string]any{"id": "task-123", "status": status}
	if url != "" {
		result["output"] = url
	}
	writeJSON(w, map[string]any{"success": true, "result": result})
}

func newTestClient(t *testing.T, upstream *stubUpstream, maxAttempts int) *Client {
	t.Helper()
	srv := httptest.NewServer(upstream.handler())
	t.Cleanup(srv.Close)
	return NewClient(Options{
		BaseURL:         srv.URL,
		HTTPClient:      srv.Client(),
		PollInterval:    time.Millisecond,
		MaxPollAttempts: maxAttempts,
	})
}

func TestGenerateSucceedsOnNthPoll(t *testing.T) {
	const succeedAt = 3
	upstream := &stubUpstream{onPoll: func(n int, w http.ResponseWriter) {
		if n < succeedAt {
			writeStatus(w, "processing", "")
			return
		}
		writeStatus(w, "succeeded", "https://cdn.nekolabs.my.id/out.mp4")
	}}
	client := newTestClient(t, upstream, 180)

	result, err := client.Generate(context.Background(), video.GenerateRequest{
		Prompt:      "a cat playing",
		Duration:    8,
		AspectRatio: "16:9",
	})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if result.VideoURL != "https://cdn.nekolabs.my.id/out.mp4" {
		t.Fatalf("VideoURL = %q", result.VideoURL)
	}
	if result.Provider != ProviderTag {
		t.Fatalf("Provider = %q, want %q", result.Provider, ProviderTag)
	}
	if result.Model != video.ModelVeo3Fast {
		t.Fatalf("Model = %q", result.Model)
	}
	creates, polls := upstream.counts()
	if creates != 1 {
		t.Fatalf("creates = %d, want 1", creates)
	}
	if polls != succeedAt {
		t.Fatalf("polls = %d, want %d", polls, succeedAt)
	}
}

func TestGenerateTimesOutAfterMaxAttempts(t *testing.T) {
	const maxAttempts = 7
	upstream := &stubUpstream{onPoll: func(n int, w http.ResponseWriter) {
		writeStatus(w, "pending", "")
	}}
	client := newTestClient(t, upstream, maxAttempts)

	_, err := client.Generate(context.Background(), video.GenerateRequest{Prompt: "p", Duration: 8, AspectRatio: "16:9"})
	if !errors.Is(err, video.ErrPollTimeout) {
		t.Fatalf("err = %v, want ErrPollTimeout", err)
	}
	_, polls := upstream.counts()
	if polls != maxAttempts {
		t.Fatalf("polls = %d, want exactly %d", polls, maxAttempts)
	}
}

func TestGenerateRetriesTransientServerErrors(t *testing.T) {
	upstream := &stubUpstream{onPoll: func(n int, w http.ResponseWriter) {
		if n <= 2 {
			http.Error(w, "upstream exploded", http.StatusInternalServerError)
			return
		}
		writeStatus(w, "succeeded", "https://cdn.nekolabs.my.id/out.mp4")
	}}
	client := newTestClient(t, upstream, 180)

	result, err := client.Generate(context.Background(), video.GenerateRequest{Prompt: "p", Duration: 8, AspectRatio: "16:9"})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if result.VideoURL == "" {
		t.Fatalf("expected video url after transient errors")
	}
	_, polls := upstream.counts()
	if polls != 3 {
		t.Fatalf("polls = %d, want 3", polls)
	}
}

func TestGenerateAbortsOnNonTransientHTTPError(t *testing.T) {
	upstream := &stubUpstream{onPoll: func(n int, w http.ResponseWriter) {
		http.Error(w, "gone", http.StatusGone)
	}}
	client := newTestClient(t, upstream, 180)

	_, err := client.Generate(context.Background(), video.GenerateRequest{Prompt: "p", Duration: 8, AspectRatio: "16:9"})
	if err == nil {
		t.Fatalf("expected error for 4xx poll response")
	}
	_, polls := upstream.counts()
	if polls != 1 {
		t.Fatalf("polls = %d, want 1 (abort immediately)", polls)
	}
}

func TestGenerateFailsOnFailedStatus(t *testing.T) {
	upstream := &stubUpstream{onPoll: func(n int, w http.ResponseWriter) {
		writeJSON(w, map[string]any{
			"success": true,
			"result":  map[string]any{"id": "task-123", "status": "failed", "error": "nsfw prompt rejected"},
		})
	}}
	client := newTestClient(t, upstream, 180)

	_, err := client.Generate(context.Background(), video.GenerateRequest{Prompt: "p", Duration: 8, AspectRatio: "16:9"})
	if !errors.Is(err, video.ErrGenerationFailed) {
		t.Fatalf("err = %v, want ErrGenerationFailed", err)
	}
	if !strings.Contains(err.Error(), "nsfw prompt rejected") {
		t.Fatalf("err should carry upstream message, got %v", err)
	}
	_, polls := upstream.counts()
	if polls != 1 {
		t.Fatalf("polls = %d, want 1", polls)
	}
}

func TestGenerateToleratesMissingOutputWithinGrace(t *testing.T) {
	upstream := &stubUpstream{onPoll: func(n int, w http.ResponseWriter) {
		if n < 3 {
			writeStatus(w, "succeeded", "")
			return
		}
		writeStatus(w, "succeeded", "https://cdn.nekolabs.my.id/late.mp4")
	}}
	client := newTestClient(t, upstream, 180)

	result, err := client.Generate(context.Background(), video.GenerateRequest{Prompt: "p", Duration: 8, AspectRatio: "16:9"})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if result.VideoURL != "https://cdn.nekolabs.my.id/late.mp4" {
		t.Fatalf("VideoURL = %q", result.VideoURL)
	}
}

func TestGenerateFailsWhenOutputNeverPopulated(t *testing.T) {
	upstream := &stubUpstream{onPoll: func(n int, w http.ResponseWriter) {
		writeStatus(w, "succeeded", "")
	}}
	client := newTestClient(t, upstream, 180)

	_, err := client.Generate(context.Background(), video.GenerateRequest{Prompt: "p", Duration: 8, AspectRatio: "16:9"})
	if err == nil || !strings.Contains(err.Error(), "no output URL") {
		t.Fatalf("err = %v, want missing-output failure", err)
	}
	_, polls := upstream.counts()
	if polls > missingOutputGrace+2 {
		t.Fatalf("polls = %d, should stop shortly after the grace window", polls)
	}
}

func TestGenerateFailsFastWhenTaskCreationRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"success": false})
	}))
	defer srv.Close()
	client := NewClient(Options{BaseURL: srv.URL, HTTPClient: srv.Client(), PollInterval: time.Millisecond})

	_, err := client.Generate(context.Background(), video.GenerateRequest{Prompt: "p", Duration: 8, AspectRatio: "16:9"})
	if !errors.Is(err, video.ErrTaskCreation) {
		t.Fatalf("err = %v, want ErrTaskCreation", err)
	}
}

func TestGenerateStopsWhenContextCanceled(t *testing.T) {
	upstream := &stubUpstream{onPoll: func(n int, w http.ResponseWriter) {
		writeStatus(w, "pending", "")
	}}
	client := newTestClient(t, upstream, 180)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := client.Generate(ctx, video.GenerateRequest{Prompt: "p", Duration: 8, AspectRatio: "16:9"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
