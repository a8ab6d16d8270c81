package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mwilkes/arcadia/internal/database"
	"github.com/mwilkes/arcadia/internal/logging"
	"github.com/mwilkes/arcadia/internal/server"
)

func main() {
	port := os.Getenv("ARCADIA_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("ARCADIA_DB_PATH")
	if dbPath == "" {
		dbPath = "arcadia.db"
	}

	logger := logging.Setup(os.Getenv("ARCADIA_LOG_LEVEL"))

	csrfSecret := os.Getenv("ARCADIA_CSRF_SECRET")
	if csrfSecret == "" {
		// Random per-process secret; tokens stop validating across
		// restarts, which only re-prompts in-flight forms.
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			log.Fatalf("generate csrf secret: %v", err)
		}
		csrfSecret = hex.EncodeToString(buf)
	}

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	srv := server.New(db, server.Config{CSRFSecret: csrfSecret}, logger)

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Hourly session cleanup
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if n, err := srv.SessionStore().DeleteExpired(); err != nil {
				logger.Warn("session cleanup", "error", err)
			} else if n > 0 {
				logger.Info("session cleanup", "deleted", n)
			}
			srv.RateLimiter().Cleanup()
		}
	}()

	go func() {
		fmt.Printf("Arcadia running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
