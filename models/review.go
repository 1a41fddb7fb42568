package models

import "time"

// Columns lists the expected input header names, in canonical order.
// The extractor fails with a structural error when any of these is absent.
var Columns = []string{
	"review_id",
	"product_id",
	"product_name",
	"customer_id",
	"customer_name",
	"customer_email",
	"customer_age",
	"customer_country",
	"customer_city",
	"brand",
	"category",
	"price",
	"rating",
	"helpful_votes",
	"review_date",
	"review_text",
}

// NumericColumns are the columns checked for numeric coercion failures and
// repaired to zero by the cleaner.
var NumericColumns = []string{"customer_age", "price", "rating", "helpful_votes"}

// TitleColumns are the text columns that get title-cased during cleaning.
var TitleColumns = []string{
	"product_name", "brand", "customer_name",
	"customer_country", "customer_city", "category",
}

// RawReview holds one unprocessed input row exactly as read from the CSV.
// Every field is an untrusted string; any of them may be empty, malformed
// or duplicated. The struct is comparable, which is what full-row duplicate
// detection relies on.
type RawReview struct {
	ReviewID        string
	ProductID       string
	ProductName     string
	CustomerID      string
	CustomerName    string
	CustomerEmail   string
	CustomerAge     string
	CustomerCountry string
	CustomerCity    string
	Brand           string
	Category        string
	Price           string
	Rating          string
	HelpfulVotes    string
	ReviewDate      string
	ReviewText      string
}

// Field returns the raw value for a canonical column name.
func (r *RawReview) Field(col string) string {
	switch col {
	case "review_id":
		return r.ReviewID
	case "product_id":
		return r.ProductID
	case "product_name":
		return r.ProductName
	case "customer_id":
		return r.CustomerID
	case "customer_name":
		return r.CustomerName
	case "customer_email":
		return r.CustomerEmail
	case "customer_age":
		return r.CustomerAge
	case "customer_country":
		return r.CustomerCountry
	case "customer_city":
		return r.CustomerCity
	case "brand":
		return r.Brand
	case "category":
		return r.Category
	case "price":
		return r.Price
	case "rating":
		return r.Rating
	case "helpful_votes":
		return r.HelpfulVotes
	case "review_date":
		return r.ReviewDate
	case "review_text":
		return r.ReviewText
	}
	return ""
}

// ReviewDate is a calendar date that may be a tombstone: a value that was
// present in the input but could not be parsed. Tombstones survive cleaning
// and sort before every valid date.
type ReviewDate struct {
	Time  time.Time
	Valid bool
}

// NewReviewDate wraps a parsed calendar date.
func NewReviewDate(t time.Time) ReviewDate {
	return ReviewDate{Time: t, Valid: true}
}

// ISO renders the date as an ISO calendar date string, or the empty string
// for a tombstone. This is the exact representation persisted to storage.
func (d ReviewDate) ISO() string {
	if !d.Valid {
		return ""
	}
	return d.Time.Format("2006-01-02")
}

// Before reports whether d orders strictly before other. Tombstones order
// before all valid dates; two tombstones are equal.
func (d ReviewDate) Before(other ReviewDate) bool {
	if !d.Valid {
		return other.Valid
	}
	if !other.Valid {
		return false
	}
	return d.Time.Before(other.Time)
}

// CleanReview is the cleaned, typed record produced by the cleaner.
// Text fields are NFC-normalized and trimmed, never null markers; numeric
// fields are zero when absent or uncoercible; ReviewID is unique across a
// cleaned set.
type CleanReview struct {
	ReviewID        string
	ProductID       string
	ProductName     string
	CustomerID      string
	CustomerName    string
	CustomerEmail   string
	CustomerAge     int
	CustomerCountry string
	CustomerCity    string
	Brand           string
	Category        string
	Price           float64
	Rating          float64
	HelpfulVotes    int
	ReviewDate      ReviewDate
	ReviewText      string

	// SentimentScore is attached by the scorer, in [-1.0, 1.0].
	SentimentScore float64
	// RollingAvgSentiment is attached by the rolling aggregator.
	RollingAvgSentiment float64
}

// ProductRollingSentiment is the per-review projection persisted to the
// product_rolling_sentiment table. One row per clean review, not one per
// product; the downstream reader selects the most recent row per product.
type ProductRollingSentiment struct {
	ProductID               string
	ProductName             string
	Rating                  float64
	RollingAverageSentiment float64
	Date                    ReviewDate
}

// ProductSentimentSummary is the read API response shape: the most recent
// rolling-sentiment row for a product, with rating surfaced as the latest
// sentiment score.
type ProductSentimentSummary struct {
	ProductID               string  `json:"product_id"`
	ProductName             string  `json:"product_name"`
	LatestSentimentScore    float64 `json:"latest_sentiment_score"`
	RollingAverageSentiment float64 `json:"rolling_average_sentiment"`
}
