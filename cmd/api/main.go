// Command api serves the read-only sentiment lookup API over the tables
// produced by the ETL pipeline.
package main

import (
	"fmt"
	"os"

	"reviews-etl/api"
	"reviews-etl/config"
	"reviews-etl/storage"
	"reviews-etl/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger := utils.NewLogger(utils.ParseLevel(cfg.LogLevel))

	if cfg.APIKey == "" {
		logger.Error("API_KEY is not set; refusing to serve the sentiment endpoint")
		os.Exit(1)
	}

	if cfg.StorageBackend == config.BackendSQLite {
		if _, err := os.Stat(cfg.SQLitePath); os.IsNotExist(err) {
			logger.Error("Database not found at %s. Run the ETL pipeline first.", cfg.SQLitePath)
			os.Exit(1)
		}
	}

	store, err := openStore(cfg, logger)
	if err != nil {
		logger.Error("Failed to open storage: %v", err)
		os.Exit(1)
	}
	defer store.Close()

	server := api.NewServer(cfg, store, logger)
	if err := server.Run(); err != nil {
		logger.Error("API server failed: %v", err)
		os.Exit(1)
	}
}

func openStore(cfg *config.Config, logger *utils.Logger) (storage.Store, error) {
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		return storage.NewPostgresStore(cfg.DSN(), logger)
	default:
		return storage.NewSQLiteStore(cfg.SQLitePath)
	}
}
