package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"reviews-etl/models"
	"reviews-etl/utils"
)

// Assessor runs the read-only data quality pass over a raw review set.
// It never mutates its input and never fails on what it finds; the report
// is purely diagnostic.
type Assessor struct {
	logger *utils.Logger
}

// NewAssessor creates an Assessor with the given logger.
func NewAssessor(logger *utils.Logger) *Assessor {
	return &Assessor{logger: logger}
}

// Assess computes null counts, duplicate counts and type-mismatch counts
// over the raw rows. Each check runs independently and to completion, even
// when zero issues exist.
func (a *Assessor) Assess(raw []*models.RawReview) *models.QualityReport {
	report := &models.QualityReport{
		TotalRows:      len(raw),
		TotalColumns:   len(models.Columns),
		NullCounts:     make(map[string]int, len(models.Columns)),
		TypeMismatches: make(map[string]int, len(models.NumericColumns)+1),
	}

	for _, col := range models.Columns {
		report.NullCounts[col] = 0
	}
	for _, r := range raw {
		for _, col := range models.Columns {
			if isNull(r.Field(col)) {
				report.NullCounts[col]++
				report.TotalNulls++
			}
		}
	}

	seenRow := make(map[models.RawReview]struct{}, len(raw))
	idCount := make(map[string]int, len(raw))
	for _, r := range raw {
		if _, dup := seenRow[*r]; dup {
			report.FullRowDuplicates++
		} else {
			seenRow[*r] = struct{}{}
		}
		idCount[r.ReviewID]++
	}
	for _, r := range raw {
		if idCount[r.ReviewID] > 1 {
			report.OffendingRows = append(report.OffendingRows, r)
		}
	}
	sort.SliceStable(report.OffendingRows, func(i, j int) bool {
		return report.OffendingRows[i].ReviewID < report.OffendingRows[j].ReviewID
	})
	for _, n := range idCount {
		if n > 1 {
			report.DuplicateIDRows += n - 1
		}
	}

	for _, col := range models.NumericColumns {
		report.TypeMismatches[col] = 0
	}
	report.TypeMismatches["review_date"] = 0
	for _, r := range raw {
		for _, col := range models.NumericColumns {
			v := r.Field(col)
			if !isNull(v) && !coercesNumeric(v) {
				report.TypeMismatches[col]++
			}
		}
		if v := r.ReviewDate; !isNull(v) && !coercesDate(v) {
			report.TypeMismatches["review_date"]++
		}
	}

	a.logger.Info("[quality] Assessed %d rows: %d nulls, %d full duplicates, %d duplicate ids",
		report.TotalRows, report.TotalNulls, report.FullRowDuplicates, report.DuplicateIDRows)
	return report
}

func isNull(v string) bool {
	return strings.TrimSpace(v) == ""
}

func coercesNumeric(v string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	return err == nil
}

func coercesDate(v string) bool {
	v = strings.TrimSpace(v)
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, v); err == nil {
			return true
		}
	}
	return false
}

// Render produces the human-readable assessment report. Sections with no
// findings say so explicitly rather than staying silent.
func (a *Assessor) Render(r *models.QualityReport) string {
	var b strings.Builder
	sep := strings.Repeat("=", 60)

	fmt.Fprintf(&b, "%s\nDATA QUALITY ASSESSMENT\n%s\n", sep, sep)
	fmt.Fprintf(&b, "Rows: %d | Columns: %d\n", r.TotalRows, r.TotalColumns)

	fmt.Fprintf(&b, "\n[1] NULL VALUES — Total: %d\n", r.TotalNulls)
	if r.TotalNulls == 0 {
		b.WriteString("    No null values found.\n")
	} else {
		rows := [][]string{{"column", "nulls"}}
		for _, col := range models.Columns {
			if r.NullCounts[col] > 0 {
				rows = append(rows, []string{col, strconv.Itoa(r.NullCounts[col])})
			}
		}
		b.WriteString(renderTable(rows))
	}

	fmt.Fprintf(&b, "\n[2] DUPLICATES — Full rows: %d, Duplicate review_ids: %d\n",
		r.FullRowDuplicates, r.DuplicateIDRows)
	if len(r.OffendingRows) == 0 {
		b.WriteString("    No duplicate review_ids found.\n")
	} else {
		rows := [][]string{{"review_id", "product_id", "customer_id", "rating", "review_date"}}
		for _, o := range r.OffendingRows {
			rows = append(rows, []string{o.ReviewID, o.ProductID, o.CustomerID, o.Rating, o.ReviewDate})
		}
		b.WriteString(renderTable(rows))
	}

	b.WriteString("\n[3] TYPE MISMATCHES\n")
	if !hasMismatches(r) {
		b.WriteString("    No type mismatches found.\n")
	} else {
		rows := [][]string{{"column", "invalid values"}}
		for _, col := range append(append([]string{}, models.NumericColumns...), "review_date") {
			if r.TypeMismatches[col] > 0 {
				rows = append(rows, []string{col, strconv.Itoa(r.TypeMismatches[col])})
			}
		}
		b.WriteString(renderTable(rows))
	}

	b.WriteString(sep + "\n")
	return b.String()
}

// Print writes the rendered report to stdout.
func (a *Assessor) Print(r *models.QualityReport) {
	fmt.Print(a.Render(r))
}

func hasMismatches(r *models.QualityReport) bool {
	for _, n := range r.TypeMismatches {
		if n > 0 {
			return true
		}
	}
	return false
}

// renderTable formats rows as a markdown table with cells padded to their
// column's display width.
func renderTable(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	colCount := len(rows[0])
	widths := make([]int, colCount)
	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for i := range widths {
		if widths[i] < 3 {
			widths[i] = 3
		}
	}

	var b strings.Builder
	for rIdx, row := range rows {
		b.WriteString("    |")
		for i, cell := range row {
			pad := widths[i] - runewidth.StringWidth(cell)
			b.WriteString(" " + cell + strings.Repeat(" ", pad) + " |")
		}
		b.WriteString("\n")

		if rIdx == 0 {
			b.WriteString("    |")
			for i := range row {
				b.WriteString(" " + strings.Repeat("-", widths[i]) + " |")
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}
