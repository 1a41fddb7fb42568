// Package services holds the transform pipeline stages: quality assessment,
// cleaning, sentiment scoring, rolling aggregation and the load step.
package services

import (
	"fmt"

	"reviews-etl/extract"
	"reviews-etl/models"
	"reviews-etl/utils"
)

// Result summarizes one pipeline run.
type Result struct {
	RawRows   int
	CleanRows int
	Dropped   int
	Quality   *models.QualityReport
	Load      *LoadResult
	// Loaded is the review set as persisted, in load order.
	Loaded []*models.CleanReview
}

// Pipeline sequences the stages of one batch run: extract, assess, clean,
// score, aggregate, load. It is strictly single-pass: no stage starts before
// the prior stage's full output is available. The first fatal error aborts
// the run; per-row data-quality defects never do.
type Pipeline struct {
	logger     *utils.Logger
	extractor  *extract.Extractor
	assessor   *Assessor
	cleaner    *Cleaner
	scorer     *Scorer
	aggregator *RollingAggregator
	loader     *Loader
}

// NewPipeline wires the pipeline stages together.
func NewPipeline(
	logger *utils.Logger,
	extractor *extract.Extractor,
	assessor *Assessor,
	cleaner *Cleaner,
	scorer *Scorer,
	aggregator *RollingAggregator,
	loader *Loader,
) *Pipeline {
	return &Pipeline{
		logger:     logger,
		extractor:  extractor,
		assessor:   assessor,
		cleaner:    cleaner,
		scorer:     scorer,
		aggregator: aggregator,
		loader:     loader,
	}
}

// Run executes the full pipeline against the input at path.
func (p *Pipeline) Run(path string) (*Result, error) {
	raw, err := p.extractor.Read(path)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}

	report := p.assessor.Assess(raw)
	p.assessor.Print(report)

	clean := p.cleaner.Clean(raw)
	p.scorer.ScoreAll(clean)
	ordered := p.aggregator.Aggregate(clean)

	loadResult, err := p.loader.Load(ordered)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}

	return &Result{
		RawRows:   len(raw),
		CleanRows: len(ordered),
		Dropped:   len(raw) - len(ordered),
		Quality:   report,
		Load:      loadResult,
		Loaded:    ordered,
	}, nil
}
