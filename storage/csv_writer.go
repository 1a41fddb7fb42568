package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"reviews-etl/models"
)

// csvHeader mirrors the reviews table columns, in order.
var csvHeader = []string{
	"review_id", "product_id", "product_name", "customer_id", "customer_name",
	"customer_email", "customer_age", "customer_country", "customer_city",
	"brand", "category", "price", "rating", "helpful_votes", "review_date",
	"review_text", "sentiment_score",
}

// CSVWriter exports the cleaned review set to a CSV file, one column per
// reviews-table column. The export is an operator-facing artifact; the
// relational store remains the contract surface.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// WriteReviews appends every cleaned review as one CSV row.
func (c *CSVWriter) WriteReviews(reviews []*models.CleanReview) error {
	for _, r := range reviews {
		row := []string{
			r.ReviewID,
			r.ProductID,
			r.ProductName,
			r.CustomerID,
			r.CustomerName,
			r.CustomerEmail,
			strconv.Itoa(r.CustomerAge),
			r.CustomerCountry,
			r.CustomerCity,
			r.Brand,
			r.Category,
			strconv.FormatFloat(r.Price, 'f', -1, 64),
			strconv.FormatFloat(r.Rating, 'f', -1, 64),
			strconv.Itoa(r.HelpfulVotes),
			r.ReviewDate.ISO(),
			r.ReviewText,
			strconv.FormatFloat(r.SentimentScore, 'f', -1, 64),
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}
