package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/jensin-hash/video-gen/internal/middleware"
	"github.com/jensin-hash/video-gen/internal/providers/video"
)

// flexInt decodes both 8 and "8"; the stock front-end submits form values as
// strings.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(bytes.TrimSpace(b), `"`)
	if len(b) == 0 || string(b) == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(string(b))
	if err != nil {
		// Leave zero so the router applies the default.
		*f = 0
		return nil
	}
	*f = flexInt(n)
	return nil
}

type generateRequest struct {
	Model    string  `json:"model"`
	Prompt   string  `json:"prompt"`
	Duration flexInt `json:"duration"`
	Ratio    string  `json:"ratio"`
}

// Generate handles POST /api/generate: validate, dispatch to a provider
// adapter, and map the outcome onto the wire contract. The request context is
// threaded into the adapter, so a client disconnect cancels the generation.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.json(w, http.StatusBadRequest, map[string]any{"error": "Invalid request body"})
		return
	}

	result, err := a.Videos.Generate(r.Context(), video.GenerateRequest{
		Model:       req.Model,
		Prompt:      req.Prompt,
		Duration:    int(req.Duration),
		AspectRatio: req.Ratio,
		Audio:       true,
		RequestID:   middleware.RequestIDFromContext(r.Context()),
	})
	if err != nil {
		a.writeGenerateError(w, r, err)
		return
	}

	a.Logger.Info().
		Str("provider", result.Provider).
		Str("video_url", result.VideoURL).
		Msg("video generated")
	a.json(w, http.StatusOK, map[string]any{"success": true, "data": result})
}

func (a *App) writeGenerateError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, video.ErrEmptyPrompt) {
		a.json(w, http.StatusBadRequest, map[string]any{"error": "Prompt is required"})
		return
	}
	if ce, ok := video.AsCredentialError(err); ok {
		a.json(w, http.StatusBadRequest, map[string]any{
			"error":      ce.Error(),
			"needsToken": true,
			"tokenUrl":   ce.TokenURL,
		})
		return
	}
	a.Logger.Error().
		Err(err).
		Str("request_id", middleware.RequestIDFromContext(r.Context())).
		Msg("failed to generate video")
	a.json(w, http.StatusInternalServerError, map[string]any{
		"error":   err.Error(),
		"success": false,
	})
}
