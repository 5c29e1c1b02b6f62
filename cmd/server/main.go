// Package main is the entry point for the marketplace API server.
//
// Its job is deliberately small: read configuration from the environment,
// set up logging, and hand off to internal/server. All application logic
// lives in the internal packages.
package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mkarim/marketplace/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Prices serialize as JSON numbers, not strings, which is what the
	// frontend parses.
	decimal.MarshalJSONWithoutQuotes = true

	port := 5000
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	// STORE selects the backend: "memory" (default) or "sqlite".
	store := os.Getenv("STORE")

	dbPath := "data/marketplace.db"
	if envDB := os.Getenv("DB_PATH"); envDB != "" {
		dbPath = envDB
	}
	if store == "sqlite" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", filepath.Dir(dbPath)),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	// SESSION_TTL is a Go duration ("24h", "30m"). Unset or zero means
	// sessions live until logout.
	var sessionTTL time.Duration
	if ttlStr := os.Getenv("SESSION_TTL"); ttlStr != "" {
		var err error
		sessionTTL, err = time.ParseDuration(ttlStr)
		if err != nil {
			logger.Error("invalid SESSION_TTL value", slog.String("value", ttlStr))
			os.Exit(1)
		}
	}

	srv, err := server.New(server.Config{
		Port:       port,
		Store:      store,
		DBPath:     dbPath,
		SessionTTL: sessionTTL,
	}, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until SIGINT/SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
