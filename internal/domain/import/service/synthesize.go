package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/FACorreiaa/finance-intelligence/internal/domain/dataset"
	"github.com/FACorreiaa/finance-intelligence/internal/domain/synthetic"
	"github.com/FACorreiaa/finance-intelligence/internal/domain/transaction"
	"github.com/FACorreiaa/finance-intelligence/pkg/observability"
)

// ProfileSource tells which input a synthesis profile was built from.
type ProfileSource string

const (
	ProfileFromCaller  ProfileSource = "profile"
	ProfileFromHistory ProfileSource = "history"
	ProfileFromStore   ProfileSource = "stored_history"
	ProfileDefault     ProfileSource = "default"
)

// SynthesizeRequest describes one synthesis call. Profile wins over History;
// with neither, the owner's stored history is used when a history store is set.
// IgnorePatterns selects the built-in distributions and rejects a Profile or
// History, which would otherwise be dropped without notice.
type SynthesizeRequest struct {
	Count          int
	OwnerID        uuid.UUID
	IgnorePatterns bool
	// Seed makes the call reproducible; 0 picks a random seed.
	Seed    int64
	Profile *synthetic.Profile
	History []transaction.Transaction
}

// ErrPatternsIgnored is returned when a profile or history accompanies a request
// that ignores patterns.
var ErrPatternsIgnored = errors.New("profile or history supplied while patterns are ignored")

// SynthesizeResult holds the generated records and the profile that steered them.
type SynthesizeResult struct {
	Records       []transaction.Transaction `json:"records"`
	Profile       *synthetic.Profile        `json:"profile"`
	ProfileSource ProfileSource             `json:"profile_source"`
}

// Synthesize generates Count synthetic records for an owner.
func (s *Service) Synthesize(ctx context.Context, req SynthesizeRequest) (*SynthesizeResult, error) {
	ctx, span := observability.StartSpan(ctx, s.tracer, "intel.Synthesize",
		attribute.Int("count", req.Count),
		attribute.Bool("ignore_patterns", req.IgnorePatterns),
	)
	result, err := s.synthesize(ctx, req)
	observability.EndSpan(span, err)
	return result, err
}

func (s *Service) synthesize(ctx context.Context, req SynthesizeRequest) (*SynthesizeResult, error) {
	profile, source, err := s.profileFor(ctx, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	gen := s.newGenerator(req.Seed)
	records, err := gen.Generate(profile, synthetic.Request{
		Count:          req.Count,
		OwnerID:        req.OwnerID,
		IgnorePatterns: req.IgnorePatterns,
	})
	s.metrics.ObserveStage("synthesize", start)
	if err != nil {
		return nil, err
	}

	label := "patterns"
	if source == ProfileDefault {
		label = "default"
	}
	if s.metrics != nil {
		s.metrics.SyntheticRecords.WithLabelValues(label).Add(float64(len(records)))
	}

	s.logger.InfoContext(ctx, "synthetic records generated",
		"owner_id", req.OwnerID,
		"count", len(records),
		"profile_source", source,
		"ignore_patterns", req.IgnorePatterns,
	)
	return &SynthesizeResult{Records: records, Profile: profile, ProfileSource: source}, nil
}

// SIOGSample generates a dataset in the SIOG export layout.
func (s *Service) SIOGSample(ctx context.Context, count int, seed int64) (*dataset.Dataset, error) {
	_, span := observability.StartSpan(ctx, s.tracer, "intel.SIOGSample", attribute.Int("count", count))
	ds, err := s.newGenerator(seed).GenerateSIOG(count)
	observability.EndSpan(span, err)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.SyntheticRecords.WithLabelValues("siog").Add(float64(ds.RowCount()))
	}
	return ds, nil
}

func (s *Service) profileFor(ctx context.Context, req SynthesizeRequest) (*synthetic.Profile, ProfileSource, error) {
	switch {
	case req.IgnorePatterns && (req.Profile != nil || req.History != nil):
		return nil, "", ErrPatternsIgnored
	case req.IgnorePatterns:
		return synthetic.DefaultProfile(), ProfileDefault, nil
	case req.Profile != nil:
		return req.Profile, ProfileFromCaller, nil
	case req.History != nil:
		return s.extractor.Extract(req.History), ProfileFromHistory, nil
	case s.history != nil && req.OwnerID != uuid.Nil:
		txs, err := s.history.ListTransactions(ctx, req.OwnerID, s.cfg.HistoryLimit)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load history: %w", err)
		}
		if len(txs) == 0 {
			return synthetic.DefaultProfile(), ProfileDefault, nil
		}
		return s.extractor.Extract(txs), ProfileFromStore, nil
	default:
		return synthetic.DefaultProfile(), ProfileDefault, nil
	}
}

// newGenerator returns a generator owned by a single call.
func (s *Service) newGenerator(seed int64) *synthetic.Generator {
	return synthetic.NewGenerator(seed, s.templates,
		synthetic.WithClock(s.now),
		synthetic.WithMaxCount(s.cfg.MaxSynthetic),
	)
}
