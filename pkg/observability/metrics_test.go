package observability

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestNewMetrics_IndependentRegistries(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()

	a.AnalysesTotal.WithLabelValues("siog").Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.AnalysesTotal.WithLabelValues("siog")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.AnalysesTotal.WithLabelValues("siog")))
}

func TestObserveStage(t *testing.T) {
	m := NewMetrics()
	m.ObserveStage("clean", time.Now().Add(-time.Second))

	assert.Equal(t, 1, testutil.CollectAndCount(m.StageDuration, "intel_stage_duration_seconds"))

	var nilMetrics *Metrics
	assert.NotPanics(t, func() { nilMetrics.ObserveStage("clean", time.Now()) })
}

func TestHandler_ExposesCollectors(t *testing.T) {
	m := NewMetrics()
	m.ImportBatches.WithLabelValues("valid").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `intel_import_batches_total{verdict="valid"} 1`)
}

func TestSpanHelpers(t *testing.T) {
	tracer := Tracer(noop.NewTracerProvider().Tracer("test"), "unused")

	_, span := StartSpan(context.Background(), tracer, "stage")
	assert.NotPanics(t, func() { EndSpan(span, errors.New("boom")) })

	assert.NotNil(t, Tracer(nil, "intel"))
}
