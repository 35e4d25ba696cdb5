package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/FACorreiaa/finance-intelligence/internal/domain/dataset"
	"github.com/FACorreiaa/finance-intelligence/internal/domain/import/cleaning"
	"github.com/FACorreiaa/finance-intelligence/internal/domain/import/converter"
	"github.com/FACorreiaa/finance-intelligence/internal/domain/import/mapping"
	"github.com/FACorreiaa/finance-intelligence/internal/domain/transaction"
	"github.com/FACorreiaa/finance-intelligence/pkg/observability"
)

// MappingSource tells where the mapping used by an import came from.
type MappingSource string

const (
	MappingFromCaller   MappingSource = "caller"
	MappingFromSaved    MappingSource = "saved"
	MappingFromProposal MappingSource = "proposed"
)

// ImportRequest describes one import.
type ImportRequest struct {
	Dataset *dataset.Dataset
	// Mapping is keyed by canonical field name. When empty, the owner's saved
	// mapping for the file layout is used, then the proposed one.
	Mapping map[string]string
	// Cleaning left at its zero value selects cleaning.DefaultConfig().
	Cleaning cleaning.Config
	OwnerID  uuid.UUID
	// Persist hands a valid batch to the transaction store.
	Persist bool
}

// ImportResult is the outcome of an import. Records are returned even when the
// batch is invalid so that the caller can review them, but only a valid batch
// is ever persisted.
type ImportResult struct {
	Records       []transaction.Transaction `json:"records"`
	Validation    converter.Validation      `json:"validation"`
	Mapping       mapping.FieldMapping      `json:"mapping"`
	MappingSource MappingSource             `json:"mapping_source"`
	Cleaning      *cleaning.Result          `json:"cleaning"`
	Summary       *transaction.Summary      `json:"summary,omitempty"`
	Persisted     bool                      `json:"persisted"`
}

// Import cleans, converts and validates a dataset. The batch is all or nothing:
// any row error marks it invalid and nothing is persisted.
func (s *Service) Import(ctx context.Context, req ImportRequest) (*ImportResult, error) {
	ds := req.Dataset
	if ds == nil || ds.IsEmpty() {
		return nil, dataset.ErrEmptyDataset
	}
	if req.Persist && s.store == nil {
		return nil, ErrNoStore
	}

	ctx, span := observability.StartSpan(ctx, s.tracer, "intel.Import",
		attribute.String("owner_id", req.OwnerID.String()),
		attribute.Int("row_count", ds.RowCount()),
	)
	result, err := s.runImport(ctx, req)
	observability.EndSpan(span, err)
	if err != nil {
		s.countBatch("failed")
		return nil, err
	}
	return result, nil
}

func (s *Service) runImport(ctx context.Context, req ImportRequest) (*ImportResult, error) {
	ds := req.Dataset

	m, source, err := s.resolveMapping(ctx, req)
	if err != nil {
		return nil, err
	}

	cleanCfg := req.Cleaning
	if cleanCfg == (cleaning.Config{}) {
		cleanCfg = cleaning.DefaultConfig()
	}

	start := time.Now()
	cleaned, err := cleaning.Clean(ds, cleanCfg)
	s.metrics.ObserveStage("clean", start)
	if err != nil {
		return nil, err
	}

	start = time.Now()
	cands := s.converter.Convert(cleaned.Dataset, m, req.OwnerID)
	validation := converter.Validate(cands)
	s.metrics.ObserveStage("convert", start)

	result := &ImportResult{
		Records:       converter.Transactions(cands),
		Validation:    validation,
		Mapping:       m,
		MappingSource: source,
		Cleaning:      cleaned,
	}
	s.countRows(validation)

	if !validation.Valid {
		s.countBatch("invalid")
		s.logger.WarnContext(ctx, "import batch rejected",
			"owner_id", req.OwnerID,
			"total_count", validation.TotalCount,
			"valid_count", validation.ValidCount,
			"errors", len(validation.Errors),
		)
		return result, nil
	}

	if req.Persist {
		start = time.Now()
		summary, err := s.store.SaveTransactions(ctx, req.OwnerID, result.Records)
		s.metrics.ObserveStage("persist", start)
		if err != nil {
			return nil, fmt.Errorf("failed to persist transactions: %w", err)
		}
		result.Summary = summary
		result.Persisted = true
		s.rememberMapping(ctx, req.OwnerID, ds, m)
	} else {
		summary := transaction.Summarize(result.Records, s.cfg.Currency)
		result.Summary = &summary
	}

	s.countBatch("valid")
	s.logger.InfoContext(ctx, "import batch accepted",
		"owner_id", req.OwnerID,
		"records", len(result.Records),
		"duplicates_removed", cleaned.DuplicatesRemoved,
		"null_rows_dropped", cleaned.NullRowsDropped,
		"mapping_source", source,
		"persisted", result.Persisted,
	)
	return result, nil
}

// resolveMapping picks the caller's mapping, then a saved one, then the proposal.
func (s *Service) resolveMapping(ctx context.Context, req ImportRequest) (mapping.FieldMapping, MappingSource, error) {
	ds := req.Dataset

	if len(req.Mapping) > 0 {
		m, err := mapping.Resolve(req.Mapping, ds)
		if err != nil {
			return mapping.FieldMapping{}, "", err
		}
		return m, MappingFromCaller, nil
	}

	if s.mappings != nil && req.OwnerID != uuid.Nil {
		saved, err := s.mappings.GetMapping(ctx, req.OwnerID, ds.LayoutFingerprint())
		if err != nil {
			s.logger.WarnContext(ctx, "failed to load saved mapping", "owner_id", req.OwnerID, "error", err)
		} else if saved != nil {
			m, err := mapping.Resolve(toRaw(saved.Mapping), ds)
			if err == nil {
				return m, MappingFromSaved, nil
			}
			s.logger.WarnContext(ctx, "saved mapping no longer fits dataset", "owner_id", req.OwnerID, "error", err)
		}
	}

	analysis, err := s.Analyze(ctx, ds)
	if err != nil {
		return mapping.FieldMapping{}, "", err
	}
	return analysis.Mapping, MappingFromProposal, nil
}

// rememberMapping is best effort: a failure never fails an import that was persisted.
func (s *Service) rememberMapping(ctx context.Context, ownerID uuid.UUID, ds *dataset.Dataset, m mapping.FieldMapping) {
	if s.mappings == nil || ownerID == uuid.Nil || m.Len() == 0 {
		return
	}
	if err := s.mappings.SaveMapping(ctx, ownerID, ds.LayoutFingerprint(), m); err != nil {
		s.logger.WarnContext(ctx, "failed to save mapping", "owner_id", ownerID, "error", err)
	}
}

func toRaw(m mapping.FieldMapping) map[string]string {
	raw := make(map[string]string, len(m.Columns))
	for f, col := range m.Columns {
		raw[string(f)] = col
	}
	return raw
}

func (s *Service) countBatch(verdict string) {
	if s.metrics != nil {
		s.metrics.ImportBatches.WithLabelValues(verdict).Inc()
	}
}

func (s *Service) countRows(v converter.Validation) {
	if s.metrics == nil {
		return
	}
	s.metrics.ImportRows.WithLabelValues("valid").Add(float64(v.ValidCount))
	s.metrics.ImportRows.WithLabelValues("invalid").Add(float64(v.TotalCount - v.ValidCount))
}
