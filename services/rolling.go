package services

import (
	"sort"

	"reviews-etl/models"
	"reviews-etl/utils"
)

// DefaultRollingWindow is the trailing window size used when none is
// configured.
const DefaultRollingWindow = 3

// RollingAggregator computes a per-product trailing moving average of
// sentiment scores, ordered by review date. The grouping is an explicit
// product -> ordered rows structure so the tie-break and minimum-sample
// rules stay auditable.
type RollingAggregator struct {
	logger *utils.Logger
	window int
}

// NewRollingAggregator creates an aggregator with the given window size.
func NewRollingAggregator(logger *utils.Logger, window int) *RollingAggregator {
	if window < 1 {
		window = DefaultRollingWindow
	}
	return &RollingAggregator{logger: logger, window: window}
}

// Aggregate partitions reviews by product_id, orders each partition
// ascending by review date, and attaches the trailing mean of the last
// `window` sentiment scores to every row. The window grows from one sample,
// so every row gets a value.
//
// The returned slice is the partition-and-sort order: partitions ascending
// by product_id, rows within a partition ascending by date with tombstoned
// dates first and ties kept in pre-sort relative order. That order is what
// the loader persists.
func (a *RollingAggregator) Aggregate(reviews []*models.CleanReview) []*models.CleanReview {
	partitions := make(map[string][]*models.CleanReview)
	var productIDs []string
	for _, r := range reviews {
		if _, seen := partitions[r.ProductID]; !seen {
			productIDs = append(productIDs, r.ProductID)
		}
		partitions[r.ProductID] = append(partitions[r.ProductID], r)
	}
	sort.Strings(productIDs)

	out := make([]*models.CleanReview, 0, len(reviews))
	for _, pid := range productIDs {
		rows := partitions[pid]
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].ReviewDate.Before(rows[j].ReviewDate)
		})

		for i, r := range rows {
			start := i - a.window + 1
			if start < 0 {
				start = 0
			}
			var sum float64
			for _, prev := range rows[start : i+1] {
				sum += prev.SentimentScore
			}
			r.RollingAvgSentiment = sum / float64(i+1-start)
		}
		out = append(out, rows...)
	}

	a.logger.Info("[rolling] Aggregated %d reviews across %d products (window=%d)",
		len(reviews), len(productIDs), a.window)
	return out
}

// Window returns the configured trailing window size.
func (a *RollingAggregator) Window() int {
	return a.window
}
