/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the sales ledger server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env, environment, then flags)
  2. Build the zap logger
  3. Open the SQLite key/value store
  4. Load the ledger and the access guard from it
  5. Configure HTTP router and start the server

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: HTTP_PORT or 8080)
  -db      SQLite database path (default: DB_PATH or sales.db)
           Use ":memory:" for an in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (SHUTDOWN_TIMEOUT_SECONDS)
  3. Close database connection
  4. Exit

ENVIRONMENT:
  See config/config.go. A .env file in the working directory is loaded
  when present.
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/sales-ledger/access"
	"github.com/warp/sales-ledger/api"
	"github.com/warp/sales-ledger/config"
	"github.com/warp/sales-ledger/ledger"
	"github.com/warp/sales-ledger/logging"
	"github.com/warp/sales-ledger/store/sqlite"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	// Flags
	port := flag.Int("port", cfg.Server.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.Store.DBPath, "SQLite database path")
	flag.Parse()

	logger, err := logging.New(cfg.Logger, cfg.IsDevelopment())
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.String("db", *dbPath), zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()

	l, err := ledger.New(ctx, store, ledger.WithLogger(logger.Named("ledger")))
	if err != nil {
		logger.Fatal("failed to load ledger", zap.Error(err))
	}
	guard, err := access.New(ctx, store, access.WithLogger(logger.Named("access")))
	if err != nil {
		logger.Fatal("failed to load access guard", zap.Error(err))
	}

	handler := api.NewHandler(l, guard, logger.Named("api"))
	router := api.NewRouter(handler, cfg.Server.AllowedOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server starting", zap.Int("port", *port), zap.String("db", *dbPath))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
		return
	}

	logger.Info("server stopped")
}
