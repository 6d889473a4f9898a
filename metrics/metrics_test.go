package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

func histogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	h, ok := o.(prometheus.Histogram)
	if !ok {
		t.Fatalf("observer is not a histogram: %T", o)
	}
	var m dto.Metric
	if err := h.Write(&m); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

func TestRecordRequest(t *testing.T) {
	tests := []struct {
		name       string
		success    bool
		wantStatus string
	}{
		{"successful request", true, "success"},
		{"failed request", false, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool := "test_request_" + tt.wantStatus
			before := counterValue(t, RequestsTotal.WithLabelValues(tool, tt.wantStatus))

			RecordRequest(tool, 0.5, tt.success)

			if got := counterValue(t, RequestsTotal.WithLabelValues(tool, tt.wantStatus)); got != before+1 {
				t.Errorf("requests_total = %v, want %v", got, before+1)
			}
			if histogramCount(t, RequestDuration.WithLabelValues(tool)) == 0 {
				t.Error("expected duration to be observed")
			}
		})
	}
}

func TestRecordAPICall(t *testing.T) {
	tests := []struct {
		name       string
		action     string
		errorKind  string
		wantStatus string
	}{
		{"success", "get_wikis", "", "success"},
		{"not found", "get_page", "wiki_page_not_found", "error"},
		{"api error", "get_work_items", "api", "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := counterValue(t, APIRequestsTotal.WithLabelValues("wiki", tt.action, tt.wantStatus))

			RecordAPICall("wiki", tt.action, 0.1, tt.errorKind)

			if got := counterValue(t, APIRequestsTotal.WithLabelValues("wiki", tt.action, tt.wantStatus)); got != before+1 {
				t.Errorf("api_requests_total = %v, want %v", got, before+1)
			}
			if tt.errorKind != "" {
				if counterValue(t, APIErrors.WithLabelValues("wiki", tt.action, tt.errorKind)) < 1 {
					t.Error("expected api_errors_total to be incremented")
				}
			}
		})
	}
}

func TestRecordHandshake(t *testing.T) {
	beforeOK := counterValue(t, Handshakes.WithLabelValues("success"))
	beforeErr := counterValue(t, Handshakes.WithLabelValues("error"))

	RecordHandshake(0.2, true)
	RecordHandshake(0.3, false)

	if got := counterValue(t, Handshakes.WithLabelValues("success")); got != beforeOK+1 {
		t.Errorf("success handshakes = %v, want %v", got, beforeOK+1)
	}
	if got := counterValue(t, Handshakes.WithLabelValues("error")); got != beforeErr+1 {
		t.Errorf("error handshakes = %v, want %v", got, beforeErr+1)
	}
}

func TestRecordCacheAccess(t *testing.T) {
	beforeHits := counterValue(t, CacheHits.WithLabelValues("session"))
	beforeMisses := counterValue(t, CacheMisses.WithLabelValues("session"))

	RecordCacheAccess("session", true)
	RecordCacheAccess("session", false)
	RecordCacheAccess("session", false)

	if got := counterValue(t, CacheHits.WithLabelValues("session")); got != beforeHits+1 {
		t.Errorf("cache hits = %v, want %v", got, beforeHits+1)
	}
	if got := counterValue(t, CacheMisses.WithLabelValues("session")); got != beforeMisses+2 {
		t.Errorf("cache misses = %v, want %v", got, beforeMisses+2)
	}
}

func TestRecordEdit(t *testing.T) {
	before := counterValue(t, EditOperations.WithLabelValues("update_page", "success"))
	beforeSizes := histogramCount(t, ContentSize.WithLabelValues("update_page"))

	RecordEdit("update_page", 2048, true)
	RecordEdit("update_page", 0, false)

	if got := counterValue(t, EditOperations.WithLabelValues("update_page", "success")); got != before+1 {
		t.Errorf("edit operations = %v, want %v", got, before+1)
	}
	if got := histogramCount(t, ContentSize.WithLabelValues("update_page")); got != beforeSizes+1 {
		t.Errorf("content size samples = %d, want %d (failed edits are not sized)", got, beforeSizes+1)
	}
}

func TestGaugeInFlight(t *testing.T) {
	g := RequestInFlight.WithLabelValues("gauge_test")
	g.Inc()
	g.Inc()
	g.Dec()

	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if m.GetGauge().GetValue() != 1 {
		t.Errorf("in flight = %v, want 1", m.GetGauge().GetValue())
	}
}
