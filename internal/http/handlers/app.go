package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/jensin-hash/video-gen/internal/providers/video"
)

// Version reported by the health endpoint.
const Version = "3.2.0"

// App is the handler container: the dispatch router plus the static
// capability flags the health endpoint reports.
type App struct {
	Videos *video.Router
	Logger zerolog.Logger

	HasVeo31Token bool
	HasSora2Token bool
}

func NewApp(videos *video.Router, hasVeo31, hasSora2 bool, logger zerolog.Logger) *App {
	return &App{
		Videos:        videos,
		Logger:        logger,
		HasVeo31Token: hasVeo31,
		HasSora2Token: hasSora2,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
