package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/FACorreiaa/finance-intelligence/internal/domain/dataset"
	"github.com/FACorreiaa/finance-intelligence/internal/domain/import/analyzer"
	"github.com/FACorreiaa/finance-intelligence/internal/domain/import/cleaning"
	"github.com/FACorreiaa/finance-intelligence/internal/domain/import/loader"
	"github.com/FACorreiaa/finance-intelligence/internal/domain/import/mapping"
	"github.com/FACorreiaa/finance-intelligence/pkg/observability"
)

// Statistics summarizes data quality across the whole dataset.
type Statistics struct {
	TotalNulls        int     `json:"total_nulls"`
	MissingPercentage float64 `json:"missing_percentage"`
	DuplicateRows     int     `json:"duplicate_rows"`
}

// Analysis is the best-effort reading of a dataset that a caller reviews before importing.
type Analysis struct {
	Label       analyzer.Label           `json:"label"`
	Mapping     mapping.FieldMapping     `json:"mapping"`
	Confidence  float64                  `json:"confidence"`
	NeedsReview bool                     `json:"needs_review"`
	RowCount    int                      `json:"row_count"`
	ColumnCount int                      `json:"column_count"`
	Columns     []analyzer.ColumnProfile `json:"column_profiles"`
	Suggestions []cleaning.Suggestion    `json:"cleaning_suggestions"`
	Statistics  Statistics               `json:"statistics"`
	Fingerprint string                   `json:"fingerprint"`
}

// FileAnalysis pairs an analysis with what the loader detected about the file.
type FileAnalysis struct {
	File     *loader.File `json:"file"`
	Analysis *Analysis    `json:"analysis"`
}

// Analyze profiles, classifies and maps a dataset and suggests cleaning steps.
// It never fails on poorly structured input; only an empty dataset is an error.
func (s *Service) Analyze(ctx context.Context, ds *dataset.Dataset) (*Analysis, error) {
	if ds == nil || ds.IsEmpty() {
		return nil, dataset.ErrEmptyDataset
	}

	fingerprint := ds.Fingerprint()
	if s.cache != nil {
		if cached, ok := s.cache.Get(fingerprint); ok {
			s.countCacheLookup("hit")
			s.logger.Debug("analysis served from cache", "fingerprint", fingerprint)
			return cached, nil
		}
		s.countCacheLookup("miss")
	}

	ctx, span := observability.StartSpan(ctx, s.tracer, "intel.Analyze",
		attribute.Int("row_count", ds.RowCount()),
		attribute.Int("column_count", ds.ColumnCount()),
	)
	defer span.End()
	start := time.Now()

	structure := s.structure.Analyze(ds)
	label := s.classifier.Classify(structure.Columns)
	proposed := s.mapper.Propose(label, ds)
	suggestions := cleaning.Advise(ds, structure.Columns)

	analysis := &Analysis{
		Label:       label,
		Mapping:     proposed,
		Confidence:  proposed.Confidence,
		NeedsReview: proposed.Confidence < s.cfg.ConfidenceThreshold,
		RowCount:    structure.RowCount,
		ColumnCount: structure.ColumnCount,
		Columns:     structure.Columns,
		Suggestions: suggestions,
		Statistics:  statistics(ds, structure),
		Fingerprint: fingerprint,
	}

	span.SetAttributes(
		attribute.String("label", string(label)),
		attribute.Float64("confidence", proposed.Confidence),
	)
	s.metrics.ObserveStage("analyze", start)
	if s.metrics != nil {
		s.metrics.AnalysesTotal.WithLabelValues(string(label)).Inc()
		s.metrics.MappingConfidence.Observe(proposed.Confidence)
	}
	if s.cache != nil {
		s.cache.Set(fingerprint, analysis)
	}

	s.logger.InfoContext(ctx, "dataset analyzed",
		"label", label,
		"confidence", proposed.Confidence,
		"needs_review", analysis.NeedsReview,
		"row_count", structure.RowCount,
		"column_count", structure.ColumnCount,
		"suggestions", len(suggestions),
	)
	return analysis, nil
}

// AnalyzeFile loads an upload and analyzes it.
func (s *Service) AnalyzeFile(ctx context.Context, name string, r io.Reader) (*FileAnalysis, error) {
	file, err := s.LoadFile(ctx, name, r)
	if err != nil {
		return nil, err
	}
	analysis, err := s.Analyze(ctx, file.Dataset)
	if err != nil {
		return nil, err
	}
	return &FileAnalysis{File: file, Analysis: analysis}, nil
}

// LoadFile reads an upload into a dataset.
func (s *Service) LoadFile(ctx context.Context, name string, r io.Reader) (*loader.File, error) {
	_, span := observability.StartSpan(ctx, s.tracer, "intel.LoadFile", attribute.String("file", name))
	start := time.Now()

	file, err := s.loader.Load(name, r)
	observability.EndSpan(span, err)
	s.metrics.ObserveStage("load", start)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", name, err)
	}
	return file, nil
}

func statistics(ds *dataset.Dataset, structure analyzer.Structure) Statistics {
	var nulls int
	for _, col := range structure.Columns {
		nulls += col.NullCount
	}
	stats := Statistics{
		TotalNulls:    nulls,
		DuplicateRows: cleaning.CountDuplicates(ds),
	}
	if cells := ds.RowCount() * ds.ColumnCount(); cells > 0 {
		stats.MissingPercentage = float64(nulls) / float64(cells) * 100
	}
	return stats
}

func (s *Service) countCacheLookup(result string) {
	if s.metrics != nil {
		s.metrics.CacheLookups.WithLabelValues(result).Inc()
	}
}
