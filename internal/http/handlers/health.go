package handlers

import (
	"net/http"

	"github.com/jensin-hash/video-gen/internal/providers/hfvideo"
	"github.com/jensin-hash/video-gen/internal/providers/nekolabs"
	"github.com/jensin-hash/video-gen/internal/providers/video"
)

// Health reports per-provider availability and model readiness. The report is
// static for the process lifetime since credentials load once at startup.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"message": "Server is running",
		"apis": map[string]any{
			"nekolabs": map[string]any{
				"status":        "available",
				"model":         video.ModelVeo3Fast,
				"requiresToken": false,
			},
			"huggingface_veo31": map[string]any{
				"status":          tokenStatus(a.HasVeo31Token),
				"model":           video.ModelVeo31Fast,
				"requiresToken":   true,
				"tokenConfigured": a.HasVeo31Token,
				"tokenUrl":        hfvideo.TokenSettingsURL,
			},
			"huggingface_sora2": map[string]any{
				"status":          tokenStatus(a.HasSora2Token),
				"model":           video.ModelSora2,
				"requiresToken":   true,
				"tokenConfigured": a.HasSora2Token,
				"tokenUrl":        hfvideo.TokenSettingsURL,
			},
		},
		"models": []map[string]any{
			{
				"id":            video.ModelVeo3Fast,
				"provider":      nekolabs.ProviderTag,
				"requiresToken": false,
				"status":        "available",
			},
			{
				"id":            video.ModelVeo31Fast,
				"provider":      "huggingface",
				"requiresToken": true,
				"status":        modelStatus(a.HasVeo31Token),
			},
			{
				"id":            video.ModelSora2,
				"provider":      "huggingface",
				"requiresToken": true,
				"status":        modelStatus(a.HasSora2Token),
			},
		},
		"version": Version,
	})
}

func tokenStatus(configured bool) string {
	if configured {
		return "available"
	}
	return "token_required"
}

func modelStatus(configured bool) string {
	if configured {
		return "available"
	}
	return "needs_token"
}
