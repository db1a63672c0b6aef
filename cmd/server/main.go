/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the fleet billing engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Initialize SQLite store
  3. Wire domain services (registry, assignments, schedule, charges)
  4. Configure HTTP router and statement scheduler
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port      HTTP server port (default: 8080)
  -db        SQLite database path (default: billing.db)
             Use ":memory:" for an in-memory database
  -precompute  Statement precompute interval (default: 1h, 0 disables)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the scheduler and close the database
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/fleet.db"

  # Run with in-memory database
  ./server -db=":memory:"

  # Run on different port
  ./server -port=3000

ENVIRONMENT:
  No environment variables currently. All config via flags.

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
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
	"syscall"
	"time"

	"github.com/cabfleet/billing-engine/api"
	"github.com/cabfleet/billing-engine/billing"
	"github.com/cabfleet/billing-engine/fleet"
	"github.com/cabfleet/billing-engine/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "billing.db", "SQLite database path")
	precompute := flag.Duration("precompute", time.Hour, "statement precompute interval (0 disables)")
	flag.Parse()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Wire domain services
	registry := billing.NewRegistry(store)
	assignments := billing.NewAssignmentService(store, store)
	schedule := billing.NewScheduleService(store, store)

	directory := &fleet.Directory{Store: store}
	calculator := billing.NewChargeCalculator(store, store, store, directory)
	resolver := billing.NewScopeResolver(directory, directory, directory, store)
	runs := fleet.NewChargeRun(resolver, calculator)

	handler := api.NewHandler(api.Deps{
		Types:       registry,
		Assignments: assignments,
		Schedule:    schedule,
		Charges:     calculator,
		Resolver:    resolver,
		Runs:        runs,
		Fleet:       store,
		Resetter:    store,
	})

	// Statement scheduler
	scheduler := api.NewStatementScheduler(handler)
	if *precompute <= 0 {
		scheduler.Enabled = false
	} else {
		scheduler.Interval = *precompute
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Create router
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost:%d", *port)
		log.Printf("API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
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
