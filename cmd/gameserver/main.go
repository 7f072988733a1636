// Package main runs the card duel REST API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/cardduel/cardduel/internal/api"
	"github.com/cardduel/cardduel/internal/clients"
	"github.com/cardduel/cardduel/internal/config"
	"github.com/cardduel/cardduel/internal/engine"
	"github.com/cardduel/cardduel/internal/events"
	"github.com/cardduel/cardduel/internal/storage"
	"github.com/cardduel/cardduel/internal/storage/repository"
	"github.com/cardduel/cardduel/internal/version"
)

var (
	configPath = flag.String("config", "config.toml", "Path to the TOML config file")
	port       = flag.Int("port", 0, "Override the configured listen port")
	dbPath     = flag.String("db-path", "", "Override the configured database path")
)

func main() {
	flag.Parse()

	fmt.Printf("Card Duel Server %s\n", version.GetVersion())

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	if dir := filepath.Dir(cfg.Database.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("Failed to create database directory: %v", err)
		}
	}

	dbConfig := storage.DefaultConfig(cfg.Database.Path)
	dbConfig.AutoMigrate = cfg.Database.AutoMigrate
	db, err := storage.Open(dbConfig)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	// Outbound clients
	authConfig := clients.DefaultAuthConfig(cfg.Auth.BaseURL)
	authConfig.Timeout, authConfig.BaseDelay = cfg.AuthTimeouts()
	if cfg.Auth.MaxAttempts > 0 {
		authConfig.MaxAttempts = cfg.Auth.MaxAttempts
	}
	authClient := clients.NewAuthClient(authConfig)

	playersConfig := clients.DefaultPlayersConfig(cfg.Players.BaseURL)
	playersConfig.APIKey = cfg.Players.APIKey
	playersConfig.Timeout, playersConfig.BaseDelay, playersConfig.MaxDelay = cfg.PlayersTimeouts()
	if cfg.Players.MaxAttempts > 0 {
		playersConfig.MaxAttempts = cfg.Players.MaxAttempts
	}
	playersClient := clients.NewPlayersClient(playersConfig)

	// Engine and event wiring
	dispatcher := events.NewDispatcher()
	repo := repository.NewMatchRepository(db.Conn())
	eng := engine.New(repo, dispatcher,
		engine.WithHandSize(cfg.Game.HandSize),
		engine.WithMaxRounds(cfg.Game.MaxRounds),
	)

	requestTimeout, _ := cfg.GetRequestTimeout()
	server := api.NewServer(&api.Config{
		Port:           cfg.Server.Port,
		RequestTimeout: requestTimeout,
		RateLimit:      cfg.Server.RateLimit,
		RateBurst:      cfg.Server.RateBurst,
	}, eng, authClient)

	dispatcher.Register(events.NewFinalizeObserver(playersClient))
	dispatcher.Register(server.NewWebSocketObserver())

	if err := server.Start(); err != nil {
		log.Fatalf("Failed to start API server: %v", err)
	}

	fmt.Printf("Listening on http://localhost:%d\n", cfg.Server.Port)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	fmt.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	fmt.Println("Server stopped.")
}
