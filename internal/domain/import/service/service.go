// Package service orchestrates the analysis, import and synthesis pipelines.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/finance-intelligence/internal/domain/import/analyzer"
	"github.com/FACorreiaa/finance-intelligence/internal/domain/import/converter"
	"github.com/FACorreiaa/finance-intelligence/internal/domain/import/loader"
	"github.com/FACorreiaa/finance-intelligence/internal/domain/import/mapping"
	"github.com/FACorreiaa/finance-intelligence/internal/domain/import/repository"
	"github.com/FACorreiaa/finance-intelligence/internal/domain/synthetic"
	"github.com/FACorreiaa/finance-intelligence/internal/domain/transaction"
	"github.com/FACorreiaa/finance-intelligence/pkg/cache"
	"github.com/FACorreiaa/finance-intelligence/pkg/money"
	"github.com/FACorreiaa/finance-intelligence/pkg/observability"
)

// ErrNoStore is returned when a persisted import is requested without a store.
var ErrNoStore = errors.New("no transaction store configured")

// TransactionStore persists validated batches.
type TransactionStore interface {
	SaveTransactions(ctx context.Context, ownerID uuid.UUID, txs []transaction.Transaction) (*transaction.Summary, error)
}

// HistoryStore loads an owner's existing transactions.
type HistoryStore interface {
	ListTransactions(ctx context.Context, ownerID uuid.UUID, limit int) ([]transaction.Transaction, error)
}

// MappingStore remembers the mapping an owner used for a file layout.
type MappingStore interface {
	SaveMapping(ctx context.Context, ownerID uuid.UUID, fingerprint string, m mapping.FieldMapping) error
	GetMapping(ctx context.Context, ownerID uuid.UUID, fingerprint string) (*repository.SavedMapping, error)
}

// Config tunes the service.
type Config struct {
	// ConfidenceThreshold marks analyses below it as needing review.
	ConfidenceThreshold float64
	SampleSize          int
	TopCategories       int
	HistoryLimit        int
	MaxSynthetic        int
	Currency            string
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		ConfidenceThreshold: 0.80,
		SampleSize:          analyzer.DefaultSampleSize,
		TopCategories:       synthetic.DefaultTopCategories,
		HistoryLimit:        5000,
		MaxSynthetic:        synthetic.DefaultMaxCount,
		Currency:            money.BRL,
	}
}

// Service runs the pipelines. Every stage works on values owned by the call, so a
// Service may be shared between goroutines.
type Service struct {
	cfg        Config
	logger     *slog.Logger
	loader     *loader.Loader
	structure  *analyzer.StructuralAnalyzer
	classifier *analyzer.Classifier
	mapper     *mapping.Mapper
	converter  *converter.Converter
	extractor  *synthetic.Extractor
	templates  *synthetic.TemplateIndex

	// Optional collaborators; nil disables the feature they back.
	cache    *cache.TTL[string, *Analysis]
	metrics  *observability.Metrics
	tracer   trace.Tracer
	store    TransactionStore
	history  HistoryStore
	mappings MappingStore
	now      func() time.Time
}

// NewService creates a service. templates may be nil, in which case synthetic
// descriptions use the generic template.
func NewService(cfg Config, templates *synthetic.TemplateIndex, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:        cfg,
		logger:     logger,
		loader:     loader.New(logger),
		structure:  analyzer.NewStructuralAnalyzer(cfg.SampleSize),
		classifier: analyzer.NewClassifier(),
		mapper:     mapping.NewMapper(),
		converter:  converter.NewConverter(nil).WithCurrency(cfg.Currency),
		extractor:  synthetic.NewExtractor(cfg.TopCategories),
		templates:  templates,
		tracer:     observability.Tracer(nil, "intel/service"),
		now:        time.Now,
	}
}

// WithCache caches analyses by dataset fingerprint
func (s *Service) WithCache(c *cache.TTL[string, *Analysis]) *Service {
	s.cache = c
	return s
}

// WithMetrics records pipeline metrics
func (s *Service) WithMetrics(m *observability.Metrics) *Service {
	s.metrics = m
	return s
}

// WithTracer replaces the global tracer
func (s *Service) WithTracer(t trace.Tracer) *Service {
	s.tracer = observability.Tracer(t, "intel/service")
	return s
}

// WithStore enables persisted imports
func (s *Service) WithStore(store TransactionStore) *Service {
	s.store = store
	return s
}

// WithHistory lets Synthesize load an owner's history
func (s *Service) WithHistory(h HistoryStore) *Service {
	s.history = h
	return s
}

// WithMappings enables saved mappings per file layout
func (s *Service) WithMappings(m MappingStore) *Service {
	s.mappings = m
	return s
}

// WithClock overrides the clock used for synthetic dates
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}
