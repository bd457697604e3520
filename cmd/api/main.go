package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/jensin-hash/video-gen/internal/http/handlers"
	"github.com/jensin-hash/video-gen/internal/http/httpapi"
	"github.com/jensin-hash/video-gen/internal/infra"
	"github.com/jensin-hash/video-gen/internal/providers/hfvideo"
	"github.com/jensin-hash/video-gen/internal/providers/nekolabs"
	"github.com/jensin-hash/video-gen/internal/providers/video"
	"github.com/jensin-hash/video-gen/internal/sweeper"
)

func main() {
	// .env is optional.
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	// Provider clients are built once and shared across requests; their
	// credentials are immutable for the process lifetime.
	neko := nekolabs.NewClient(nekolabs.Options{
		BaseURL:         cfg.NekolabsBaseURL,
		Logger:          &logger,
		PollInterval:    cfg.PollInterval,
		MaxPollAttempts: cfg.PollMaxAttempts,
		InsecureTLS:     cfg.NekolabsInsecureTLS,
	})
	veo31 := hfvideo.NewClient(hfvideo.Options{
		Model:    hfvideo.Veo31,
		Token:    cfg.HFTokenVeo31,
		BaseURL:  cfg.HFRouterBaseURL,
		VideoDir: cfg.VideoDir,
		Logger:   &logger,
	})
	sora2 := hfvideo.NewClient(hfvideo.Options{
		Model:    hfvideo.Sora2,
		Token:    cfg.HFTokenSora2,
		BaseURL:  cfg.HFRouterBaseURL,
		VideoDir: cfg.VideoDir,
		Logger:   &logger,
	})

	videos := video.NewRouter(video.ModelVeo3Fast, neko, logger)
	videos.Register(video.ModelVeo31Fast, veo31, cfg.HasVeo31Token(), hfvideo.Veo31.EnvVar, hfvideo.TokenSettingsURL)
	videos.Register(video.ModelSora2, sora2, cfg.HasSora2Token(), hfvideo.Sora2.EnvVar, hfvideo.TokenSettingsURL)

	app := handlers.NewApp(videos, cfg.HasVeo31Token(), cfg.HasSora2Token(), logger)
	router := httpapi.NewRouter(app, logger, httpapi.Options{
		StaticDir: cfg.StaticDir,
		VideoDir:  cfg.VideoDir,
	})
	server := infra.NewHTTPServer(cfg, router)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Hourly retention sweep over the locally-stored videos.
	sw := sweeper.New(cfg.VideoDir, cfg.VideoMaxAge, cfg.SweepInterval, logger)
	go sw.Run(ctx)

	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Bool("veo31_token", cfg.HasVeo31Token()).
			Bool("sora2_token", cfg.HasSora2Token()).
			Msg("video generator API listening")
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
