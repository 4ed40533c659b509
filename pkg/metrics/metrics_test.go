package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
)

func TestRecorderCounts(t *testing.T) {
	m := New()

	m.StrategyRun("table", "ok", 120*time.Millisecond)
	m.StrategyRun("table", "ok", 80*time.Millisecond)
	m.StrategyRun("ocr", "timeout", 30*time.Second)
	m.RecordsRejected("table", 4)
	m.Extraction(statement.QualityGood, time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.strategyRuns.WithLabelValues("table", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.strategyRuns.WithLabelValues("ocr", "timeout")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.rejected.WithLabelValues("table")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.extractions.WithLabelValues("good")))
}

func TestHandlerServesMetrics(t *testing.T) {
	m := New()
	m.Extraction(statement.QualityPoor, time.Second)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `statement_extractions_total{quality="poor"} 1`)
}
