package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

// counterValue reads one counter value out of a gathered registry.
func counterValue(t *testing.T, reg *prometheus.Registry, name, labelName, labelValue string) (float64, bool) {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == labelName && lp.GetValue() == labelValue {
					return m.GetCounter().GetValue(), true
				}
			}
		}
	}
	return 0, false
}

func Test_Metrics_EndpointReturns200(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, srv.URL+"/metrics", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("want 200, got %d", resp.StatusCode)
	}
	ct := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("want text/plain content-type, got %q", ct)
	}
}

func Test_Metrics_AskOutcomeCounted(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	fa := &fakeAnswerer{err: assertableErr}
	s := newTestServerWithRegistry(t, &fakeIngestor{}, fa, reg)

	doJSON(t, s, http.MethodPost, "/api/ask", `{"guid":"g","key":"goals"}`)

	v, found := counterValue(t, reg, "planextract_ask_requests_total", "outcome", outcomeError)
	if !found {
		t.Fatal("planextract_ask_requests_total{outcome=\"error\"} not found")
	}
	if v != 1 {
		t.Errorf("want counter=1, got %v", v)
	}
}

func Test_Metrics_IngestOutcomeCounted(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	s := newTestServerWithRegistry(t, &fakeIngestor{}, &fakeAnswerer{}, reg)

	// Missing guid → bad_request outcome.
	doJSON(t, s, http.MethodPost, "/api/documents", `{"text":"no guid"}`)

	v, found := counterValue(t, reg, "planextract_ingest_requests_total", "outcome", outcomeBadRequest)
	if !found {
		t.Fatal("planextract_ingest_requests_total{outcome=\"bad_request\"} not found")
	}
	if v != 1 {
		t.Errorf("want counter=1, got %v", v)
	}
}

func Test_Metrics_HTTPRequestsPartitionedByPattern(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	s := newTestServerWithRegistry(t, &fakeIngestor{}, &fakeAnswerer{}, reg)

	doJSON(t, s, http.MethodGet, "/api/health", "")

	v, found := counterValue(t, reg, "planextract_http_requests_total", labelHandler, "GET /api/health")
	if !found {
		t.Fatal("planextract_http_requests_total for GET /api/health not found")
	}
	if v != 1 {
		t.Errorf("want counter=1, got %v", v)
	}
}
