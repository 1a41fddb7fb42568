package models

// QualityReport holds the findings of the read-only quality assessment pass
// over a raw review set. Counts are always populated, including when zero
// issues exist.
type QualityReport struct {
	TotalRows    int
	TotalColumns int

	// NullCounts maps column name to the number of null (empty) values.
	NullCounts map[string]int
	TotalNulls int

	// FullRowDuplicates counts rows identical across every field, beyond
	// the first occurrence.
	FullRowDuplicates int
	// DuplicateIDRows counts rows whose review_id appears more than once,
	// beyond the first occurrence of each id.
	DuplicateIDRows int
	// OffendingRows holds every row participating in a review_id collision,
	// ordered by review_id, for inspection.
	OffendingRows []*RawReview

	// TypeMismatches maps column name to the count of values that are
	// non-null but fail coercion: numeric coercion for the numeric columns,
	// date coercion for review_date.
	TypeMismatches map[string]int
}

// HasIssues reports whether the assessment found anything at all.
func (q *QualityReport) HasIssues() bool {
	if q.TotalNulls > 0 || q.FullRowDuplicates > 0 || q.DuplicateIDRows > 0 {
		return true
	}
	for _, n := range q.TypeMismatches {
		if n > 0 {
			return true
		}
	}
	return false
}
