package services

import (
	"fmt"

	"reviews-etl/models"
	"reviews-etl/storage"
	"reviews-etl/utils"
)

// LoadResult summarizes a load step, including the post-write verification
// counts re-read from the store.
type LoadResult struct {
	ReviewRows    int
	SentimentRows int

	VerifiedReviewRows    int
	VerifiedSentimentRows int

	// CountMismatch is set when a verified count differs from the number of
	// rows handed to the store. It is a reportable anomaly, not a failure.
	CountMismatch bool
}

// Loader performs the full-replace write of the two output tables and
// verifies them by re-reading row counts. Writes are atomic per table; a
// failure between the two tables leaves the store at the prior run's state
// for the unwritten table.
type Loader struct {
	logger *utils.Logger
	store  storage.Store
}

// NewLoader creates a Loader over the given store.
func NewLoader(logger *utils.Logger, store storage.Store) *Loader {
	return &Loader{logger: logger, store: store}
}

// Load writes the post-aggregation review set and its rolling-sentiment
// projection, in the order the aggregator emitted them.
func (l *Loader) Load(reviews []*models.CleanReview) (*LoadResult, error) {
	rolling := ProjectRollingSentiment(reviews)

	if err := l.store.ReplaceReviews(reviews); err != nil {
		return nil, fmt.Errorf("storage failure writing reviews: %w", err)
	}
	l.logger.Info("[load] 'reviews' table: %d rows written", len(reviews))

	if err := l.store.ReplaceRollingSentiment(rolling); err != nil {
		return nil, fmt.Errorf("storage failure writing product_rolling_sentiment: %w", err)
	}
	l.logger.Info("[load] 'product_rolling_sentiment' table: %d rows written", len(rolling))

	result := &LoadResult{
		ReviewRows:    len(reviews),
		SentimentRows: len(rolling),
	}

	reviewCount, err := l.store.Count(storage.TableReviews)
	if err != nil {
		return nil, fmt.Errorf("storage failure verifying reviews: %w", err)
	}
	sentimentCount, err := l.store.Count(storage.TableRollingSentiment)
	if err != nil {
		return nil, fmt.Errorf("storage failure verifying product_rolling_sentiment: %w", err)
	}

	result.VerifiedReviewRows = reviewCount
	result.VerifiedSentimentRows = sentimentCount

	if reviewCount != len(reviews) || sentimentCount != len(rolling) {
		result.CountMismatch = true
		l.logger.Warn("[load] Row count mismatch after write: reviews %d/%d, product_rolling_sentiment %d/%d",
			reviewCount, len(reviews), sentimentCount, len(rolling))
	} else {
		l.logger.Info("[load] Verified: reviews=%d product_rolling_sentiment=%d",
			reviewCount, sentimentCount)
	}

	return result, nil
}

// ProjectRollingSentiment builds the product_rolling_sentiment projection:
// one row per clean review, rating carried verbatim (the downstream reader
// surfaces it as latest_sentiment_score), the review's date as both event
// timestamp and most-recent-wins key.
func ProjectRollingSentiment(reviews []*models.CleanReview) []*models.ProductRollingSentiment {
	rows := make([]*models.ProductRollingSentiment, 0, len(reviews))
	for _, r := range reviews {
		rows = append(rows, &models.ProductRollingSentiment{
			ProductID:               r.ProductID,
			ProductName:             r.ProductName,
			Rating:                  r.Rating,
			RollingAverageSentiment: r.RollingAvgSentiment,
			Date:                    r.ReviewDate,
		})
	}
	return rows
}
