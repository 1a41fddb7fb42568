package storage

import (
	"errors"

	"reviews-etl/models"
)

// Table names of the fixed output schema. The downstream read service
// consumes these verbatim; names and column types must not drift.
const (
	TableReviews          = "reviews"
	TableRollingSentiment = "product_rolling_sentiment"
)

// ErrNotFound is returned when no rolling-sentiment row exists for a product.
var ErrNotFound = errors.New("no rows for product")

// Store is the interface any relational backend must satisfy. Each Replace
// call is a full-table replace: prior contents are discarded and the new set
// written to completion, atomic per table.
type Store interface {
	ReplaceReviews(reviews []*models.CleanReview) error
	ReplaceRollingSentiment(rows []*models.ProductRollingSentiment) error

	// Count re-reads the row count of one of the two output tables,
	// used by the loader's post-write verification.
	Count(table string) (int, error)

	// LatestSentiment returns the most recent rolling-sentiment row for a
	// product, or ErrNotFound.
	LatestSentiment(productID string) (*models.ProductSentimentSummary, error)

	Ping() error
	Close() error
}
