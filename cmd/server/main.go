/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the settlement engine server: configuration,
  dependency wiring, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (optional) and parse command-line flags
  2. Open the SQLite store
  3. Load the rate schedule (JSON file or defaults)
  4. Build the API handler and router
  5. Serve with graceful shutdown

CONFIGURATION:
  -port   HTTP server port          (env PORT, default 8080)
  -db     SQLite database path      (env DATABASE_PATH, default settlement.db;
                                     ":memory:" for in-memory)
  -rates  Rate schedule JSON path   (env RATES_PATH, empty = built-in defaults)
  -seed   Reference data JSON path  (env SEED_PATH, empty = no seeding)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM: stop accepting connections, drain active requests
  (30s timeout), close the database, exit.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/kedu/settlement-engine/api"
	"github.com/kedu/settlement-engine/engine"
	"github.com/kedu/settlement-engine/factory"
	"github.com/kedu/settlement-engine/store/sqlite"
)

func main() {
	// .env is optional; flags override it.
	_ = godotenv.Load()

	port := flag.Int("port", envInt("PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", envStr("DATABASE_PATH", "settlement.db"), "SQLite database path")
	ratesPath := flag.String("rates", envStr("RATES_PATH", ""), "rate schedule JSON path (empty = defaults)")
	seedPath := flag.String("seed", envStr("SEED_PATH", ""), "reference data JSON path to load at startup")
	flag.Parse()

	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	if *seedPath != "" {
		if err := loadSeed(context.Background(), store, *seedPath); err != nil {
			log.Fatalf("Failed to seed reference data: %v", err)
		}
		log.Printf("Seeded reference data from %s", *seedPath)
	}

	rates := engine.DefaultRateConfig()
	if *ratesPath != "" {
		doc, err := os.ReadFile(*ratesPath)
		if err != nil {
			log.Fatalf("Failed to read rate schedule: %v", err)
		}
		if rates, err = factory.ParseRateConfig(doc); err != nil {
			log.Fatalf("Failed to parse rate schedule: %v", err)
		}
	}

	handler := api.NewHandler(store, rates)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Settlement engine listening on http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
