package services

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"reviews-etl/models"
	"reviews-etl/utils"
)

// dateLayouts are tried in order when parsing review_date. A value matching
// none of them becomes a tombstone, never a default date.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"January 2, 2006",
	"Jan 2, 2006",
	"02.01.2006",
}

// Cleaner transforms RawReviews into clean, typed CleanReviews. Cleaning is
// deterministic: the same input always yields byte-identical output. Bad
// data is repaired or tombstoned, never rejected; the cleaner itself cannot
// fail on data content.
type Cleaner struct {
	logger *utils.Logger
	titler cases.Caser
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{
		logger: logger,
		titler: cases.Title(language.English),
	}
}

// Clean processes raw reviews in four ordered steps: missing-value policy,
// text normalization, date parsing, deduplication. Later steps depend on the
// invariants of earlier ones, so the order is fixed.
func (c *Cleaner) Clean(raw []*models.RawReview) []*models.CleanReview {
	cleaned := make([]*models.CleanReview, 0, len(raw))
	for _, r := range raw {
		cleaned = append(cleaned, c.cleanRow(r))
	}

	// Drop rows identical across every field, then keep only the first
	// occurrence of each review_id, both by original input order.
	seenRow := make(map[models.CleanReview]struct{}, len(cleaned))
	seenID := make(map[string]struct{}, len(cleaned))
	result := make([]*models.CleanReview, 0, len(cleaned))

	for _, cr := range cleaned {
		if _, dup := seenRow[*cr]; dup {
			c.logger.Debug("[cleaner] Full-row duplicate dropped: review_id=%s", cr.ReviewID)
			continue
		}
		seenRow[*cr] = struct{}{}

		if _, dup := seenID[cr.ReviewID]; dup {
			c.logger.Debug("[cleaner] Duplicate review_id skipped: %s", cr.ReviewID)
			continue
		}
		seenID[cr.ReviewID] = struct{}{}

		result = append(result, cr)
	}

	c.logger.Info("[cleaner] Cleaned %d → %d reviews (dropped %d)",
		len(raw), len(result), len(raw)-len(result))
	return result
}

// cleanRow applies the missing-value policy, text normalization and date
// parsing to a single row.
func (c *Cleaner) cleanRow(r *models.RawReview) *models.CleanReview {
	return &models.CleanReview{
		ReviewID:        c.normalizeText(r.ReviewID),
		ProductID:       c.normalizeText(r.ProductID),
		ProductName:     c.titleCase(r.ProductName),
		CustomerID:      c.normalizeText(r.CustomerID),
		CustomerName:    c.titleCase(r.CustomerName),
		CustomerEmail:   strings.ToLower(c.normalizeText(r.CustomerEmail)),
		CustomerAge:     c.parseInt(r.CustomerAge),
		CustomerCountry: c.titleCase(r.CustomerCountry),
		CustomerCity:    c.titleCase(r.CustomerCity),
		Brand:           c.titleCase(r.Brand),
		Category:        c.titleCase(r.Category),
		Price:           c.parseFloat(r.Price),
		Rating:          c.parseFloat(r.Rating),
		HelpfulVotes:    c.parseInt(r.HelpfulVotes),
		ReviewDate:      c.parseDate(r.ReviewDate),
		ReviewText:      c.normalizeText(r.ReviewText),
	}
}

// normalizeText applies Unicode canonical composition and trims edge
// whitespace. Missing values come through as the empty string, never a null
// marker.
func (c *Cleaner) normalizeText(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

// titleCase normalizes and capitalizes each word.
func (c *Cleaner) titleCase(s string) string {
	return c.titler.String(c.normalizeText(s))
}

// parseFloat coerces a raw numeric field. Missing or uncoercible values are
// repaired to zero, consistent with the missing-value policy.
func (c *Cleaner) parseFloat(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return val
}

// parseInt coerces integer-typed fields, accepting float spellings like "34.0".
func (c *Cleaner) parseInt(raw string) int {
	return int(c.parseFloat(raw))
}

// parseDate parses review_date against the known layouts. Values that match
// none become an explicit tombstone; the row is retained.
func (c *Cleaner) parseDate(raw string) models.ReviewDate {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return models.ReviewDate{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return models.NewReviewDate(t)
		}
	}
	return models.ReviewDate{}
}
