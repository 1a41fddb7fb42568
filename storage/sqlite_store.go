package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"reviews-etl/models"
)

// SQLiteStore persists the two output tables in a SQLite database file.
// Each table replace runs inside its own transaction, which is the atomic
// unit of recovery: a crash between the two table writes leaves the store
// schema-consistent but referentially stale until the next successful run.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the SQLite database at path.
// Intermediate directories are created automatically.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("sqlite: create output dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping %q: %w", path, err)
	}

	return &SQLiteStore{db: db}, nil
}

// ReplaceReviews replaces the reviews table wholesale with the given set.
func (s *SQLiteStore) ReplaceReviews(reviews []*models.CleanReview) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("sqlite: begin reviews replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DROP TABLE IF EXISTS reviews`); err != nil {
		return fmt.Errorf("sqlite: drop reviews: %w", err)
	}
	if _, err := tx.Exec(`
		CREATE TABLE reviews (
			review_id        TEXT,
			product_id       TEXT,
			product_name     TEXT,
			customer_id      TEXT,
			customer_name    TEXT,
			customer_email   TEXT,
			customer_age     INTEGER,
			customer_country TEXT,
			customer_city    TEXT,
			brand            TEXT,
			category         TEXT,
			price            REAL,
			rating           REAL,
			helpful_votes    INTEGER,
			review_date      TEXT,
			review_text      TEXT,
			sentiment_score  REAL
		)
	`); err != nil {
		return fmt.Errorf("sqlite: create reviews: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO reviews (
			review_id, product_id, product_name, customer_id, customer_name,
			customer_email, customer_age, customer_country, customer_city,
			brand, category, price, rating, helpful_votes, review_date,
			review_text, sentiment_score
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
	`)
	if err != nil {
		return fmt.Errorf("sqlite: prepare reviews insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range reviews {
		if _, err := stmt.Exec(
			r.ReviewID, r.ProductID, r.ProductName, r.CustomerID, r.CustomerName,
			r.CustomerEmail, r.CustomerAge, r.CustomerCountry, r.CustomerCity,
			r.Brand, r.Category, r.Price, r.Rating, r.HelpfulVotes,
			r.ReviewDate.ISO(), r.ReviewText, r.SentimentScore,
		); err != nil {
			return fmt.Errorf("sqlite: insert review %s: %w", r.ReviewID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit reviews replace: %w", err)
	}
	return nil
}

// ReplaceRollingSentiment replaces the product_rolling_sentiment table
// wholesale with the given projection rows.
func (s *SQLiteStore) ReplaceRollingSentiment(rows []*models.ProductRollingSentiment) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("sqlite: begin sentiment replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DROP TABLE IF EXISTS product_rolling_sentiment`); err != nil {
		return fmt.Errorf("sqlite: drop product_rolling_sentiment: %w", err)
	}
	if _, err := tx.Exec(`
		CREATE TABLE product_rolling_sentiment (
			product_id                TEXT,
			product_name              TEXT,
			rating                    REAL,
			rolling_average_sentiment REAL,
			date                      TEXT
		)
	`); err != nil {
		return fmt.Errorf("sqlite: create product_rolling_sentiment: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO product_rolling_sentiment (
			product_id, product_name, rating, rolling_average_sentiment, date
		) VALUES (?,?,?,?,?)
	`)
	if err != nil {
		return fmt.Errorf("sqlite: prepare sentiment insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.Exec(
			r.ProductID, r.ProductName, r.Rating, r.RollingAverageSentiment, r.Date.ISO(),
		); err != nil {
			return fmt.Errorf("sqlite: insert sentiment row %s: %w", r.ProductID, err)
		}
	}

	if _, err := tx.Exec(`
		CREATE INDEX idx_prs_product_date ON product_rolling_sentiment(product_id, date)
	`); err != nil {
		return fmt.Errorf("sqlite: index product_rolling_sentiment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit sentiment replace: %w", err)
	}
	return nil
}

// Count returns the row count of one of the two output tables.
func (s *SQLiteStore) Count(table string) (int, error) {
	if table != TableReviews && table != TableRollingSentiment {
		return 0, fmt.Errorf("sqlite: unknown table %q", table)
	}
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: count %s: %w", table, err)
	}
	return n, nil
}

// LatestSentiment returns the rolling-sentiment row with the maximum date
// for the product, surfacing the row's rating as the latest sentiment score.
func (s *SQLiteStore) LatestSentiment(productID string) (*models.ProductSentimentSummary, error) {
	row := s.db.QueryRow(`
		SELECT product_id, product_name, rating, rolling_average_sentiment
		FROM product_rolling_sentiment
		WHERE product_id = ?
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
		return nil, fmt.Errorf("sqlite: latest sentiment for %s: %w", productID, err)
	}
	return &out, nil
}

// Ping verifies the database handle is alive.
func (s *SQLiteStore) Ping() error {
	return s.db.Ping()
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
