package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder_Counters(t *testing.T) {
	r := New()

	r.ObserveValidation("REDIS", "")
	r.ObserveValidation("REDIS", "timeout")
	r.ObserveValidation("REDIS", "timeout")
	r.ObserveOperation("deploy", nil)
	r.ObserveOperation("deploy", errors.New("boom"))
	r.ObserveSignal("log", nil)

	if got := testutil.ToFloat64(r.validations.WithLabelValues("REDIS", "valid")); got != 1 {
		t.Errorf("valid validations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.validations.WithLabelValues("REDIS", "timeout")); got != 2 {
		t.Errorf("timeout validations = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.operations.WithLabelValues("deploy", OutcomeFailure)); got != 1 {
		t.Errorf("failed deploys = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.signals.WithLabelValues("log", OutcomeSuccess)); got != 1 {
		t.Errorf("signals = %v, want 1", got)
	}
}

func TestRecorder_Nil(t *testing.T) {
	var r *Recorder
	r.ObserveValidation("REDIS", "")
	r.ObserveOperation("deploy", nil)
	r.ObserveSignal("log", nil)
	if r.Registry() != nil {
		t.Error("nil recorder should have no registry")
	}
}

func TestRecorder_Handler(t *testing.T) {
	r := New()
	r.ObserveOperation("stop", nil)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	if !strings.Contains(body, `conductor_pipeline_operations_total{operation="stop",outcome="success"} 1`) {
		t.Errorf("metrics output missing operation counter:\n%s", body)
	}
}
