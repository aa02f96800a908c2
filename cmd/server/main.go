/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the practice engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (config.yaml + PRACTICE_* environment)
  2. Configure the structured logger
  3. Initialize SQLite store
  4. Wire bank service, commitment engine, reminder planner
  5. Start background sweeper
  6. Start HTTP server with graceful shutdown

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the sweeper
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with file database
  PRACTICE_DATABASE_PATH="./data/practice.db" ./server

  # Run with in-memory database
  PRACTICE_DATABASE_PATH=":memory:" ./server

  # Run on a different port with debug logging
  PRACTICE_SERVER_PORT=3000 PRACTICE_SERVER_LOG_LEVEL=debug ./server

SEE ALSO:
  - config/config.go: Configuration loading
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/practice-engine/api"
	"github.com/warp/practice-engine/bank"
	"github.com/warp/practice-engine/commitment"
	"github.com/warp/practice-engine/config"
	"github.com/warp/practice-engine/notify"
	"github.com/warp/practice-engine/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	config.SetupLogger(cfg.Server.LogLevel)

	// Initialize store
	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		slog.Error("failed to initialize database", "error", err, "path", cfg.Database.Path)
		os.Exit(1)
	}
	defer store.Close()

	// Wire services
	bankSvc := bank.NewService(store)
	engine := commitment.NewEngine(store, bankSvc)
	planner := notify.NewPlanner(&notify.LogScheduler{})
	handler := api.NewHandler(bankSvc, engine, store, planner)

	// Background settlement
	sweeper := api.NewSweeper(engine, planner)
	sweeper.CheckInterval = cfg.Sweep.Interval
	sweeper.Start()
	defer sweeper.Stop()

	// Create server
	router := api.NewRouter(handler)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("server starting",
			"addr", fmt.Sprintf("http://localhost:%d", cfg.Server.Port),
			"db", cfg.Database.Path)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
