// Command moodflix is a terminal client for the MoodFlix API. Favorites
// are kept in a local SQLite file.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/handsomefox/moodflix/internal/apiclient"
	"github.com/handsomefox/moodflix/internal/favorites"
	"github.com/handsomefox/moodflix/internal/logger"
	"github.com/handsomefox/moodflix/internal/results"
	"github.com/handsomefox/moodflix/internal/store"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	slog.SetDefault(logger.New(logger.ParseLevel(os.Getenv("LOG_LEVEL"), slog.LevelWarn)))
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err.Error())
		os.Exit(1)
	}
}

func run() error {
	apiURL := flag.String("api", envOr("MOODFLIX_API", "http://localhost:8080"), "MoodFlix server base URL")
	dbPath := flag.String("db", envOr("MOODFLIX_DB", defaultDBPath()), "favorites database path")
	flag.Parse()

	st, err := store.Open(*dbPath)
	if err != nil {
		return fmt.Errorf("failed to open favorites db: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			slog.Error("Failed to close DB", logger.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	api := apiclient.New(*apiURL, nil)
	s := newSession(api, results.New(api), favorites.Open(ctx, st), os.Stdin, os.Stdout)
	return s.run(ctx)
}

func defaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "moodflix.db"
	}
	return filepath.Join(dir, "moodflix", "favorites.db")
}

func envOr(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
