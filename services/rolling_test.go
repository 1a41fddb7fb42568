package services

import (
	"math"
	"testing"
	"time"

	"reviews-etl/models"
)

func reviewAt(id, productID string, date string, score float64) *models.CleanReview {
	r := &models.CleanReview{
		ReviewID:       id,
		ProductID:      productID,
		ProductName:    "Widget",
		SentimentScore: score,
	}
	if date != "" {
		t, err := time.Parse("2006-01-02", date)
		if err != nil {
			panic(err)
		}
		r.ReviewDate = models.NewReviewDate(t)
	}
	return r
}

func TestRollingAverageWindow(t *testing.T) {
	agg := NewRollingAggregator(newTestLogger(), 3)

	rows := []*models.CleanReview{
		reviewAt("r1", "p1", "2024-01-01", 0.2),
		reviewAt("r2", "p1", "2024-01-02", -0.4),
		reviewAt("r3", "p1", "2024-01-03", 0.6),
		reviewAt("r4", "p1", "2024-01-04", 0.8),
	}

	got := agg.Aggregate(rows)

	want := []float64{
		0.2,                    // first sample alone
		(0.2 - 0.4) / 2,        // window still growing
		(0.2 - 0.4 + 0.6) / 3,  // full window
		(-0.4 + 0.6 + 0.8) / 3, // window slides, r1 falls out
	}
	for i, w := range want {
		if math.Abs(got[i].RollingAvgSentiment-w) > 1e-9 {
			t.Errorf("row %d rolling average = %v, want %v", i, got[i].RollingAvgSentiment, w)
		}
	}
}

func TestRollingDateOrderingNotInputOrder(t *testing.T) {
	agg := NewRollingAggregator(newTestLogger(), 3)

	// Input deliberately out of date order.
	rows := []*models.CleanReview{
		reviewAt("r3", "p1", "2024-01-03", 0.6),
		reviewAt("r1", "p1", "2024-01-01", 0.2),
		reviewAt("r2", "p1", "2024-01-02", -0.4),
	}

	got := agg.Aggregate(rows)

	wantIDs := []string{"r1", "r2", "r3"}
	for i, id := range wantIDs {
		if got[i].ReviewID != id {
			t.Fatalf("position %d = %s, want %s (date order)", i, got[i].ReviewID, id)
		}
	}
	if math.Abs(got[0].RollingAvgSentiment-0.2) > 1e-9 {
		t.Errorf("earliest review average = %v, want its own score", got[0].RollingAvgSentiment)
	}
}

func TestRollingTieBreakStable(t *testing.T) {
	agg := NewRollingAggregator(newTestLogger(), 2)

	// Two reviews share a date; their relative input order must survive.
	rows := []*models.CleanReview{
		reviewAt("rA", "p1", "2024-01-05", 0.5),
		reviewAt("rB", "p1", "2024-01-05", -0.5),
	}

	got := agg.Aggregate(rows)
	if got[0].ReviewID != "rA" || got[1].ReviewID != "rB" {
		t.Fatalf("equal dates must keep relative order, got %s,%s", got[0].ReviewID, got[1].ReviewID)
	}
	if got[0].RollingAvgSentiment != 0.5 {
		t.Errorf("first of tie = %v, want 0.5", got[0].RollingAvgSentiment)
	}
	if got[1].RollingAvgSentiment != 0.0 {
		t.Errorf("second of tie = %v, want mean 0.0", got[1].RollingAvgSentiment)
	}
}

func TestRollingTombstonesSortFirst(t *testing.T) {
	agg := NewRollingAggregator(newTestLogger(), 3)

	rows := []*models.CleanReview{
		reviewAt("dated", "p1", "2024-01-01", 0.4),
		reviewAt("undated", "p1", "", -0.2),
	}

	got := agg.Aggregate(rows)
	if got[0].ReviewID != "undated" {
		t.Fatalf("tombstoned date must sort before valid dates, got %s first", got[0].ReviewID)
	}
	if got[0].RollingAvgSentiment != -0.2 {
		t.Errorf("tombstoned row average = %v, want -0.2", got[0].RollingAvgSentiment)
	}
	if math.Abs(got[1].RollingAvgSentiment-0.1) > 1e-9 {
		t.Errorf("dated row average = %v, want 0.1", got[1].RollingAvgSentiment)
	}
}

func TestRollingPartitionsIndependent(t *testing.T) {
	agg := NewRollingAggregator(newTestLogger(), 3)

	rows := []*models.CleanReview{
		reviewAt("b1", "p2", "2024-01-01", 1.0),
		reviewAt("a1", "p1", "2024-01-02", -1.0),
		reviewAt("b2", "p2", "2024-01-03", 0.0),
	}

	got := agg.Aggregate(rows)

	// Partitions come back ascending by product_id.
	wantIDs := []string{"a1", "b1", "b2"}
	for i, id := range wantIDs {
		if got[i].ReviewID != id {
			t.Fatalf("position %d = %s, want %s", i, got[i].ReviewID, id)
		}
	}

	// p1's single review must not see p2's scores.
	if got[0].RollingAvgSentiment != -1.0 {
		t.Errorf("p1 average = %v, want -1.0", got[0].RollingAvgSentiment)
	}
	if got[2].RollingAvgSentiment != 0.5 {
		t.Errorf("p2 second average = %v, want 0.5", got[2].RollingAvgSentiment)
	}
}

func TestRollingWindowOne(t *testing.T) {
	agg := NewRollingAggregator(newTestLogger(), 1)

	rows := []*models.CleanReview{
		reviewAt("r1", "p1", "2024-01-01", 0.3),
		reviewAt("r2", "p1", "2024-01-02", -0.9),
	}

	got := agg.Aggregate(rows)
	for i, r := range got {
		if r.RollingAvgSentiment != r.SentimentScore {
			t.Errorf("row %d: window 1 average = %v, want score %v", i, r.RollingAvgSentiment, r.SentimentScore)
		}
	}
}

func TestRollingInvalidWindowFallsBack(t *testing.T) {
	agg := NewRollingAggregator(newTestLogger(), 0)
	if agg.Window() != DefaultRollingWindow {
		t.Errorf("Window() = %d, want default %d", agg.Window(), DefaultRollingWindow)
	}
}

func TestRollingEmptyInput(t *testing.T) {
	agg := NewRollingAggregator(newTestLogger(), 3)
	if got := agg.Aggregate(nil); len(got) != 0 {
		t.Errorf("empty input produced %d rows", len(got))
	}
}
