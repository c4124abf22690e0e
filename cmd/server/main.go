package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shouni/product-scene-studio/internal/config"
	"github.com/shouni/product-scene-studio/internal/handler"
	"github.com/shouni/product-scene-studio/internal/metrics"
	"github.com/shouni/product-scene-studio/pkg/generator"
	"github.com/shouni/product-scene-studio/pkg/state"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config error", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}))
	slog.SetDefault(logger)

	aiClient, err := generator.NewGenAIModel(ctx, cfg.Gemini.APIKey)
	if err != nil {
		slog.Error("genai client error", "error", err)
		os.Exit(1)
	}

	imageClient, err := generator.NewGeminiImageClient(aiClient, cfg.Gemini.Model, generator.ClientOptions{
		AspectRatio:  cfg.Gemini.AspectRatio,
		SystemPrompt: cfg.Gemini.SystemPrompt,
	})
	if err != nil {
		slog.Error("image client error", "error", err)
		os.Exit(1)
	}

	controller, err := state.NewController(imageClient, state.WithRecorder(metrics.GenerationRecorder{}))
	if err != nil {
		slog.Error("controller error", "error", err)
		os.Exit(1)
	}

	studio := handler.NewStudioHandler(controller, cfg.Server.MaxUploadBytes)

	r := chi.NewRouter()
	r.Use([]func(http.Handler) http.Handler{
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		metrics.Middleware,
	}...)

	r.Mount("/api", studio.Routes())
	r.Get("/healthz", handler.Health)
	r.Handle("/metrics", promhttp.Handler())

	srv := newServer(":"+cfg.Server.Port, r)

	go func() {
		slog.Info("server started", "port", cfg.Server.Port, "model", cfg.Gemini.Model)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("listen error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	// 実行中の生成は中断できないため、終わるまで待つ
	controller.Wait()
	slog.Info("server stopped")
}

// newServer は Shutdown の開始時に実行中リクエストのコンテキストをキャンセルする http.Server を返します。
func newServer(addr string, h http.Handler) *http.Server {
	baseCtx, cancel := context.WithCancel(context.Background())
	srv := &http.Server{
		Addr:        addr,
		Handler:     h,
		BaseContext: func(net.Listener) context.Context { return baseCtx },
	}
	srv.RegisterOnShutdown(cancel)
	return srv
}
