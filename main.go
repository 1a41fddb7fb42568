package main

import (
	"fmt"
	"os"

	"reviews-etl/config"
	"reviews-etl/extract"
	"reviews-etl/services"
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

	logger.Info("=== Review Sentiment ETL starting ===")
	logger.Info("Config — input: %s | backend: %s | window: %d",
		cfg.CSVInputPath, cfg.StorageBackend, cfg.RollingWindow)

	store, err := openStore(cfg, logger)
	if err != nil {
		logger.Error("Failed to open storage: %v", err)
		os.Exit(1)
	}
	defer store.Close()

	scorer := services.NewScorer(logger)
	if cfg.SentimentLexiconPath != "" {
		if err := scorer.LoadLexicon(cfg.SentimentLexiconPath); err != nil {
			logger.Error("Failed to load sentiment lexicon: %v", err)
			os.Exit(1)
		}
	}

	pipeline := services.NewPipeline(
		logger,
		extract.New(logger),
		services.NewAssessor(logger),
		services.NewCleaner(logger),
		scorer,
		services.NewRollingAggregator(logger, cfg.RollingWindow),
		services.NewLoader(logger, store),
	)

	result, err := pipeline.Run(cfg.CSVInputPath)
	if err != nil {
		logger.Error("Pipeline failed: %v", err)
		os.Exit(1)
	}

	if cfg.CSVExportPath != "" {
		if err := exportCleanCSV(cfg, logger, result); err != nil {
			logger.Error("CSV export failed: %v", err)
		}
	}

	logger.Info("=== Review Sentiment ETL complete ===")
	fmt.Printf("\n  Done. %d raw rows → %d clean rows (%d dropped). "+
		"Tables: reviews=%d, product_rolling_sentiment=%d\n\n",
		result.RawRows, result.CleanRows, result.Dropped,
		result.Load.VerifiedReviewRows, result.Load.VerifiedSentimentRows)

	if result.Load.CountMismatch {
		logger.Warn("Run completed with a row-count verification mismatch; inspect storage")
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

func exportCleanCSV(cfg *config.Config, logger *utils.Logger, result *services.Result) error {
	w, err := storage.NewCSVWriter(cfg.CSVExportPath)
	if err != nil {
		return err
	}
	defer w.Close()

	// Re-read is not needed: the pipeline result carries the loaded set.
	if err := w.WriteReviews(result.Loaded); err != nil {
		return err
	}
	logger.Info("Clean reviews exported to %s", cfg.CSVExportPath)
	return nil
}
