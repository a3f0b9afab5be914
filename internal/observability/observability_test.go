package observability

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-engine/internal/domain/audit"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"Error":   slog.LevelError,
		"":        slog.LevelInfo,
		"xyzzy":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), "parseLevel(%q)", in)
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, LogConfig{Level: "warn", Format: "json"})
	l.Info("dropped")
	l.Warn("kept", "loan_id", "abc")

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, `"msg":"kept"`)
	assert.Contains(t, out, `"loan_id":"abc"`)
}

func TestNewLogger_TextDefault(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, LogConfig{})
	l.Info("hello", "k", "v")
	assert.Contains(t, buf.String(), "msg=hello")
	assert.Contains(t, buf.String(), "k=v")
}

func TestMetrics_PublishCountsActivities(t *testing.T) {
	m := NewMetrics()
	err := m.Publish(context.Background(),
		audit.Activity{Action: audit.ActionPayment, Amount: decimal.NewNullDecimal(decimal.RequireFromString("100.5"))},
		audit.Activity{Action: audit.ActionPayment, Amount: decimal.NewNullDecimal(decimal.RequireFromString("50"))},
		audit.Activity{Action: audit.ActionFlagged},
	)
	require.NoError(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Activities.WithLabelValues("payment_recorded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Activities.WithLabelValues("npl_flagged")))
	assert.Equal(t, 150.5, testutil.ToFloat64(m.PaymentAmount))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SweepFlagged))

	m.SweepDone("ok")
	m.SweepDone("skipped")
	m.SweepDone("ok")
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SweepRuns.WithLabelValues("ok")))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.Activities.WithLabelValues("approved").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `loan_engine_activities_total{action="approved"} 1`), body)
}
