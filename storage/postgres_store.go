package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"reviews-etl/models"
	"reviews-etl/utils"
)

const insertBatchSize = 100

// PostgresStore persists the two output tables in PostgreSQL. Table
// replaces run as delete-then-insert inside one transaction per table.
type PostgresStore struct {
	db     *sql.DB
	logger *utils.Logger
}

// NewPostgresStore opens a connection to PostgreSQL, waits for it to accept
// pings, runs schema migrations, and returns a ready-to-use store.
func NewPostgresStore(dsn string, logger *utils.Logger) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	retry := &utils.RetryConfig{
		MaxAttempts: 10,
		BaseDelay:   2 * time.Second,
		MaxDelay:    10 * time.Second,
		Logger:      logger,
	}
	if err := retry.Do("postgres ping", db.Ping); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	ps := &PostgresStore{db: db, logger: logger}
	if err := ps.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return ps, nil
}

func (ps *PostgresStore) migrate() error {
	_, err := ps.db.Exec(`
		CREATE TABLE IF NOT EXISTS reviews (
			review_id        TEXT,
			product_id       TEXT,
			product_name     TEXT,
			customer_id      TEXT,
			customer_name    TEXT,
			customer_email   TEXT,
			customer_age     INTEGER NOT NULL DEFAULT 0,
			customer_country TEXT,
			customer_city    TEXT,
			brand            TEXT,
			category         TEXT,
			price            NUMERIC(12,2) NOT NULL DEFAULT 0,
			rating           NUMERIC(6,2)  NOT NULL DEFAULT 0,
			helpful_votes    INTEGER NOT NULL DEFAULT 0,
			review_date      TEXT,
			review_text      TEXT,
			sentiment_score  DOUBLE PRECISION NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS product_rolling_sentiment (
			product_id                TEXT,
			product_name              TEXT,
			rating                    NUMERIC(6,2) NOT NULL DEFAULT 0,
			rolling_average_sentiment DOUBLE PRECISION NOT NULL DEFAULT 0,
			date                      TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_reviews_product ON reviews(product_id);
		CREATE INDEX IF NOT EXISTS idx_prs_product_date ON product_rolling_sentiment(product_id, date);
	`)
	return err
}

// ReplaceReviews replaces the reviews table wholesale with the given set.
func (ps *PostgresStore) ReplaceReviews(reviews []*models.CleanReview) error {
	tx, err := ps.db.Begin()
	if err != nil {
		return fmt.Errorf("postgres: begin reviews replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM reviews`); err != nil {
		return fmt.Errorf("postgres: clear reviews: %w", err)
	}

	for i := 0; i < len(reviews); i += insertBatchSize {
		end := i + insertBatchSize
		if end > len(reviews) {
			end = len(reviews)
		}
		if err := insertReviewBatch(tx, reviews[i:end]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit reviews replace: %w", err)
	}
	return nil
}

func insertReviewBatch(tx *sql.Tx, batch []*models.CleanReview) error {
	const cols = 17
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*cols)

	for idx, r := range batch {
		base := idx * cols
		ph := make([]string, cols)
		for j := 0; j < cols; j++ {
			ph[j] = fmt.Sprintf("$%d", base+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(ph, ",")+")")
		valueArgs = append(valueArgs,
			r.ReviewID, r.ProductID, r.ProductName, r.CustomerID, r.CustomerName,
			r.CustomerEmail, r.CustomerAge, r.CustomerCountry, r.CustomerCity,
			r.Brand, r.Category, r.Price, r.Rating, r.HelpfulVotes,
			r.ReviewDate.ISO(), r.ReviewText, r.SentimentScore)
	}

	query := `
		INSERT INTO reviews (
			review_id, product_id, product_name, customer_id, customer_name,
			customer_email, customer_age, customer_country, customer_city,
			brand, category, price, rating, helpful_votes, review_date,
			review_text, sentiment_score
		) VALUES ` + strings.Join(valueStrings, ",")

	if _, err := tx.Exec(query, valueArgs...); err != nil {
		return fmt.Errorf("postgres: insert reviews batch: %w", err)
	}
	return nil
}

// ReplaceRollingSentiment replaces the product_rolling_sentiment table
// wholesale with the given projection rows.
func (ps *PostgresStore) ReplaceRollingSentiment(rows []*models.ProductRollingSentiment) error {
	tx, err := ps.db.Begin()
	if err != nil {
		return fmt.Errorf("postgres: begin sentiment replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM product_rolling_sentiment`); err != nil {
		return fmt.Errorf("postgres: clear product_rolling_sentiment: %w", err)
	}

	for i := 0; i < len(rows); i += insertBatchSize {
		end := i + insertBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := insertSentimentBatch(tx, rows[i:end]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit sentiment replace: %w", err)
	}
	return nil
}

func insertSentimentBatch(tx *sql.Tx, batch []*models.ProductRollingSentiment) error {
	const cols = 5
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*cols)

	for idx, r := range batch {
		base := idx * cols
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,$%d,$%d,$%d)", base+1, base+2, base+3, base+4, base+5))
		valueArgs = append(valueArgs,
			r.ProductID, r.ProductName, r.Rating, r.RollingAverageSentiment, r.Date.ISO())
	}

	query := `
		INSERT INTO product_rolling_sentiment (
			product_id, product_name, rating, rolling_average_sentiment, date
		) VALUES ` + strings.Join(valueStrings, ",")

	if _, err := tx.Exec(query, valueArgs...); err != nil {
		return fmt.Errorf("postgres: insert sentiment batch: %w", err)
	}
	return nil
}

// Count returns the row count of one of the two output tables.
func (ps *PostgresStore) Count(table string) (int, error) {
	if table != TableReviews && table != TableRollingSentiment {
		return 0, fmt.Errorf("postgres: unknown table %q", table)
	}
	var n int
	if err := ps.db.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: count %s: %w", table, err)
	}
	return n, nil
}

// LatestSentiment returns the rolling-sentiment row with the maximum date
// for the product.
func (ps *PostgresStore) LatestSentiment(productID string) (*models.ProductSentimentSummary, error) {
	row := ps.db.QueryRow(`
		SELECT product_id, product_name, rating, rolling_average_sentiment
		FROM product_rolling_sentiment
		WHERE product_id = $1
		ORDER BY date DESC
		LIMIT 1
	`, productID)

	var out models.ProductSentimentSummary
	err := row.Scan(&out.ProductID, &out.ProductName,
		&out.LatestSentimentScore, &out.RollingAverageSentiment)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, productID)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: latest sentiment for %s: %w", productID, err)
	}
	return &out, nil
}

// Ping verifies the database connection is alive.
func (ps *PostgresStore) Ping() error {
	return ps.db.Ping()
}

// Close releases the database connection.
func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}
