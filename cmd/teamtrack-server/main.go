package main

import (
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/intermernet/teamtrack/internal/api"
	"github.com/intermernet/teamtrack/internal/config"
	"github.com/intermernet/teamtrack/internal/database"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
)

// main is the entry point for the TeamTrack backend server.
func main() {
	// --- 1. Load Configuration ---
	// Configuration comes from a .env file during development and from real
	// environment variables in production.
	if err := godotenv.Load(); err != nil {
		log.Println("INFO: No .env file found, using environment variables from the system.")
	}

	cfg, err := config.New()
	if err != nil {
		// A valid configuration is required to run. In particular there is
		// no default cleanup secret to fall back to.
		log.Fatalf("FATAL: Failed to load application configuration: %v", err)
	}

	// --- 2. Ensure Required Directories Exist ---
	if err := os.MkdirAll(cfg.DbPath, 0755); err != nil {
		log.Fatalf("FATAL: Failed to create database directory at %s: %v", cfg.DbPath, err)
	}

	log.Println("INFO: Application directories verified.")

	// --- 3. Initialize Database Service ---
	dbService, err := database.NewService(filepath.Join(cfg.DbPath, "tracker.db"))
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize database service: %v", err)
	}
	defer dbService.Close()

	log.Println("INFO: Database service initialized successfully.")

	// --- 4. Initialize Database Schema ---
	// Creates the events, teams and location_updates tables if they do not
	// already exist. Runs once before any traffic is accepted; idempotent on
	// every startup.
	if err := dbService.InitSchema(); err != nil {
		log.Fatalf("FATAL: Failed to initialize database schema: %v", err)
	}

	log.Println("INFO: Database schema verified.")

	// --- 5. Set Up API Server and Routes ---
	serverAPI := api.NewServer(cfg, dbService)

	router := chi.NewRouter()
	serverAPI.RegisterRoutes(router)

	log.Println("INFO: API routes registered.")

	// --- 6. Start the HTTP Server ---
	log.Printf("INFO: TeamTrack server starting on %s", cfg.ServerAddr)

	if err := http.ListenAndServe(cfg.ServerAddr, router); err != nil {
		log.Fatalf("FATAL: Failed to start server: %v", err)
	}
}
