package services

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"reviews-etl/extract"
	"reviews-etl/models"
	"reviews-etl/storage"
)

const csvHeader = "review_id,product_id,product_name,customer_id,customer_name," +
	"customer_email,customer_age,customer_country,customer_city,brand,category," +
	"price,rating,helpful_votes,review_date,review_text"

func newTestPipeline(t *testing.T, store storage.Store) *Pipeline {
	t.Helper()
	logger := newTestLogger()
	return NewPipeline(
		logger,
		extract.New(logger),
		NewAssessor(logger),
		NewCleaner(logger),
		NewScorer(logger),
		NewRollingAggregator(logger, 3),
		NewLoader(logger, store),
	)
}

func writePipelineCSV(t *testing.T, rows ...string) string {
	t.Helper()
	content := csvHeader + "\n"
	for _, r := range rows {
		content += r + "\n"
	}
	path := filepath.Join(t.TempDir(), "input.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func csvRow(id, productID, rating, date, text string) string {
	return fmt.Sprintf("%s,%s,Widget,c1,jane doe,j@e.com,30,US,NYC,Acme,Electronics,19.99,%s,2,%s,%s",
		id, productID, rating, date, text)
}

func TestPipelineEndToEnd(t *testing.T) {
	store := &fakeStore{}
	p := newTestPipeline(t, store)

	path := writePipelineCSV(t,
		csvRow("r1", "p1", "4.5", "2024-01-01", "excellent product"),
		csvRow("r2", "p1", "2.0", "2024-01-02", "terrible quality"),
		csvRow("r2", "p1", "2.0", "2024-01-02", "terrible quality"), // full duplicate
		csvRow("r3", "p2", "3.0", "2024-01-03", "works fine"),
	)

	result, err := p.Run(path)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.RawRows != 4 {
		t.Errorf("RawRows = %d, want 4", result.RawRows)
	}
	if result.CleanRows != 3 {
		t.Errorf("CleanRows = %d, want 3 (duplicate dropped)", result.CleanRows)
	}
	if result.Dropped != 1 {
		t.Errorf("Dropped = %d, want 1", result.Dropped)
	}
	if result.Quality.FullRowDuplicates != 1 {
		t.Errorf("quality report FullRowDuplicates = %d, want 1", result.Quality.FullRowDuplicates)
	}

	if len(store.reviews) != 3 || len(store.rolling) != 3 {
		t.Fatalf("store holds %d/%d rows, want 3/3", len(store.reviews), len(store.rolling))
	}

	// Load order is partition order: p1's rows by date, then p2's.
	wantIDs := []string{"r1", "r2", "r3"}
	for i, id := range wantIDs {
		if store.reviews[i].ReviewID != id {
			t.Errorf("stored row %d = %s, want %s", i, store.reviews[i].ReviewID, id)
		}
	}

	// Scores flow into the rolling projection.
	r1 := store.reviews[0]
	if r1.SentimentScore <= 0 {
		t.Errorf("r1 sentiment = %v, want positive", r1.SentimentScore)
	}
	if store.rolling[0].RollingAverageSentiment != r1.RollingAvgSentiment {
		t.Error("projection rolling average diverges from the review row")
	}
}

func TestPipelineDeterministic(t *testing.T) {
	rows := []string{
		csvRow("r1", "p2", "4.5", "2024-01-05", "great value"),
		csvRow("r2", "p1", "1.0", "2024-01-01", "broken on arrival"),
		csvRow("r3", "p1", "3.0", "bad-date", "okay I guess"),
	}

	run := func() []*models.CleanReview {
		store := &fakeStore{}
		p := newTestPipeline(t, store)
		if _, err := p.Run(writePipelineCSV(t, rows...)); err != nil {
			t.Fatalf("Run: %v", err)
		}
		return store.reviews
	}

	a, b := run(), run()
	if !reflect.DeepEqual(a, b) {
		t.Error("two runs over the same input must persist identical rows")
	}
}

func TestPipelineSecondRunReplacesFirst(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "reviews.db")
	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	p := newTestPipeline(t, store)

	first := writePipelineCSV(t,
		csvRow("r1", "p1", "4.0", "2024-01-01", "good"),
		csvRow("r2", "p1", "4.0", "2024-01-02", "good"),
	)
	if _, err := p.Run(first); err != nil {
		t.Fatal(err)
	}

	second := writePipelineCSV(t, csvRow("r9", "p9", "1.0", "2024-02-01", "bad"))
	result, err := p.Run(second)
	if err != nil {
		t.Fatal(err)
	}

	if result.Load.VerifiedReviewRows != 1 {
		t.Errorf("verified review rows = %d, want 1 (full replace, no accumulation)",
			result.Load.VerifiedReviewRows)
	}
	if result.Load.CountMismatch {
		t.Error("unexpected count mismatch")
	}

	got, err := store.LatestSentiment("p9")
	if err != nil {
		t.Fatalf("LatestSentiment: %v", err)
	}
	if got.ProductID != "p9" {
		t.Errorf("ProductID = %q, want p9", got.ProductID)
	}
	if _, err := store.LatestSentiment("p1"); err == nil {
		t.Error("p1 should be gone after the replacing run")
	}
}

func TestPipelineEmptyInputTable(t *testing.T) {
	store := &fakeStore{}
	p := newTestPipeline(t, store)

	result, err := p.Run(writePipelineCSV(t))
	if err != nil {
		t.Fatalf("Run on header-only input: %v", err)
	}
	if result.RawRows != 0 || result.CleanRows != 0 {
		t.Errorf("result = %+v, want zero rows end to end", result)
	}
	if result.Load.CountMismatch {
		t.Error("empty run must still verify cleanly")
	}
}

func TestPipelineMissingInputIsFatal(t *testing.T) {
	p := newTestPipeline(t, &fakeStore{})

	_, err := p.Run(filepath.Join(t.TempDir(), "absent.csv"))
	if err == nil {
		t.Fatal("missing input must abort the run")
	}
}
