package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tendant/simple-share/pkg/simpleshare/api"
	"github.com/tendant/simple-share/pkg/simpleshare/config"
)

func main() {
	// Load configuration from environment
	serverConfig, err := config.Load(config.WithEnv())
	if err != nil {
		log.Fatalf("Failed to load server configuration: %v", err)
	}

	// Build services from configuration
	content, adminService, err := serverConfig.Build(context.Background())
	if err != nil {
		log.Fatalf("Failed to build service: %v", err)
	}

	// Create HTTP server instance
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", serverConfig.Port),
		Handler: api.NewRouter(content, adminService, serverConfig.AdminPassword),
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Simple Share Server starting on port %s (env: %s)", serverConfig.Port, serverConfig.Environment)
		log.Printf("Metadata store: %s", serverConfig.MetadataURL)
		log.Printf("Blob store: %s", serverConfig.StorageURL)
		if serverConfig.AdminPassword == "" {
			log.Printf("ADMIN_PASSWORD not set; admin routes are disabled")
		}

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Create a deadline to wait for
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown server gracefully
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
