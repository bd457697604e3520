package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/jensin-hash/video-gen/internal/http/handlers"
	"github.com/jensin-hash/video-gen/internal/middleware"
)

// Options carries the directories served as passive static assets.
type Options struct {
	StaticDir string
	VideoDir  string
}

// NewRouter assembles the chi router: API endpoints plus static serving for
// the front-end and the locally-stored video files.
func NewRouter(app *handlers.App, logger zerolog.Logger, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(logger),
		middleware.CORS,
	)

	r.Post("/api/generate", app.Generate)
	r.Get("/api/health", app.Health)

	// Generated videos live in their own directory so the sweeper can treat
	// every file in it as disposable.
	if opts.VideoDir != "" {
		r.Handle("/videos/*", http.StripPrefix("/videos/", http.FileServer(http.Dir(opts.VideoDir))))
	}
	if opts.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(opts.StaticDir)))
	}

	return r
}
