// Package extract loads the raw review table from a CSV file.
package extract

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"reviews-etl/models"
	"reviews-etl/utils"
)

// Extraction errors. All are fatal to a pipeline run and carry the
// original cause; none are retried.
var (
	// ErrInputMissing means the input file does not exist.
	ErrInputMissing = errors.New("input file not found")
	// ErrInputMalformed means the CSV parser could not tokenize the table.
	ErrInputMalformed = errors.New("input file is not parseable CSV")
	// ErrMissingColumn means an expected column is absent from the header.
	// This is a structural failure, not a data-quality issue.
	ErrMissingColumn = errors.New("expected column missing from input")
)

// Extractor reads raw reviews from a CSV file.
type Extractor struct {
	logger *utils.Logger
}

// New creates an Extractor with the given logger.
func New(logger *utils.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Read loads every row from the CSV at path. The header row drives column
// mapping, so column order in the file is arbitrary. All expected columns
// must be present; extra columns are ignored.
func (e *Extractor) Read(path string) ([]*models.RawReview, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s: %v", ErrInputMissing, path, err)
		}
		return nil, fmt.Errorf("unexpected error opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)

	header, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: %s: file is empty", ErrInputMalformed, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInputMalformed, path, err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	for _, col := range models.Columns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: %q (%s)", ErrMissingColumn, col, path)
		}
	}

	var reviews []*models.RawReview
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return nil, fmt.Errorf("%w: %s: %v", ErrInputMalformed, path, err)
		}
		if err != nil {
			return nil, fmt.Errorf("unexpected error reading %s: %w", path, err)
		}

		field := func(col string) string { return record[index[col]] }
		reviews = append(reviews, &models.RawReview{
			ReviewID:        field("review_id"),
			ProductID:       field("product_id"),
			ProductName:     field("product_name"),
			CustomerID:      field("customer_id"),
			CustomerName:    field("customer_name"),
			CustomerEmail:   field("customer_email"),
			CustomerAge:     field("customer_age"),
			CustomerCountry: field("customer_country"),
			CustomerCity:    field("customer_city"),
			Brand:           field("brand"),
			Category:        field("category"),
			Price:           field("price"),
			Rating:          field("rating"),
			HelpfulVotes:    field("helpful_votes"),
			ReviewDate:      field("review_date"),
			ReviewText:      field("review_text"),
		})
	}

	e.logger.Info("[extract] Loaded %d rows, %d columns from %s",
		len(reviews), len(models.Columns), path)
	return reviews, nil
}
