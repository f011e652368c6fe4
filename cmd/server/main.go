package main

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"underwriter/internal/config"
	underwritehandlers "underwriter/internal/handlers/underwrite"
	"underwriter/internal/version"
)

var cfg *config.Config

func main() {
	// Load configuration
	cfg = config.Load()

	info := version.Get()
	log.Printf("Starting Underwriting Service (%s) on %s", info, cfg.ListenAddr)
	if warn := info.Check(); warn != "" {
		log.Print(warn)
	}

	underwritehandlers.Initialize(cfg)

	r := newRouter()

	// Start server
	log.Printf("Server starting on %s", cfg.ListenAddr)
	log.Fatal(http.ListenAndServe(cfg.ListenAddr, r))
}

func newRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	underwritehandlers.RegisterRoutes(r)

	// API routes
	r.Get("/api/health", handleHealth)

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"version": version.Get(),
	})
}
