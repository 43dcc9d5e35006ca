package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"

	"github.com/handsomefox/moodflix/internal/handlers"
	"github.com/handsomefox/moodflix/internal/logger"
	"github.com/handsomefox/moodflix/internal/metrics"
	"github.com/handsomefox/moodflix/internal/tmdb"
	"github.com/handsomefox/moodflix/internal/web"

	_ "github.com/joho/godotenv/autoload"
)

const defaultPort = "8080"

type config struct {
	apiKey      string
	readToken   string
	tmdbBaseURL string
	port        string
	corsOrigins []string
}

func main() {
	slog.SetDefault(logger.New(logger.ParseLevel(os.Getenv("LOG_LEVEL"), slog.LevelInfo)))
	if err := run(); err != nil {
		slog.Error("Server exited", logger.Error(err))
		os.Exit(1)
	}
}

func loadConfig() (*config, error) {
	cfg := &config{
		apiKey:      strings.TrimSpace(os.Getenv("TMDB_API_KEY")),
		readToken:   strings.TrimSpace(os.Getenv("TMDB_API_READ_TOKEN")),
		tmdbBaseURL: envOr("TMDB_BASE_URL", tmdb.DefaultBaseURL),
		port:        envOr("PORT", defaultPort),
		corsOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
	}
	if cfg.apiKey == "" {
		return nil, errors.New("TMDB_API_KEY is required")
	}
	return cfg, nil
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	app, err := handlers.New(&handlers.Config{
		TMDB: tmdb.New(cfg.apiKey, cfg.readToken, tmdb.WithBaseURL(cfg.tmdbBaseURL)),
	})
	if err != nil {
		return fmt.Errorf("failed to init handlers: %w", err)
	}

	spa, err := handlers.SPA(web.Dist())
	if err != nil {
		return fmt.Errorf("failed to init frontend: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := ":" + cfg.port
	server := &http.Server{
		Addr:              addr,
		Handler:           newRouter(slog.Default(), app, spa, cfg.corsOrigins),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Listening", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

func newRouter(log *slog.Logger, app *handlers.Handler, spa http.Handler, origins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(log, &httplog.Options{
		Level:         slog.LevelInfo,
		Schema:        httplog.SchemaECS,
		RecoverPanics: true,
		Skip: func(req *http.Request, _ int) bool {
			return req.URL.Path == "/healthz" || req.URL.Path == "/metrics"
		},
	}))
	r.Use(handlers.MiddlewareMetrics)

	r.Get("/healthz", handlers.Health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		if len(origins) > 0 {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins: origins,
				AllowedMethods: []string{http.MethodGet, http.MethodOptions},
				AllowedHeaders: []string{"Accept", "Content-Type"},
				MaxAge:         300,
			}))
		}
		app.RegisterRoutes(r)
	})

	r.Handle("/*", spa)
	return r
}

func envOr(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for part := range strings.SplitSeq(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
