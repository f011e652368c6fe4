package main

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"underwriter/internal/config"
	underwritehandlers "underwriter/internal/handlers/underwrite"
	"underwriter/internal/testutil"
)

func setupTestServer(t *testing.T) *testutil.TestServer {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.ListenAddr = ":0"
	cfg.DefaultSimulations = 100
	underwritehandlers.Initialize(cfg)

	ts := testutil.NewTestServer(t, newRouter())
	t.Cleanup(ts.Close)
	return ts
}

// TestHealthEndpoint tests the /api/health endpoint
func TestHealthEndpoint(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.GET("/api/health")
	testutil.AssertResponse(t, resp).StatusOK().ContentTypeJSON().
		ContainsAll(`"status":"ok"`, `"version"`)

	resp = ts.GET("/api/health")
	var health struct {
		Status  string          `json:"status"`
		Version json.RawMessage `json:"version"`
	}
	testutil.DecodeJSON(t, resp, &health)
	if health.Status != "ok" {
		t.Errorf("status = %q, want ok", health.Status)
	}
	if len(health.Version) == 0 {
		t.Error("expected version info in the health payload")
	}
}

// TestRouterMountsUnderwriting verifies the calculation endpoints are served
func TestRouterMountsUnderwriting(t *testing.T) {
	ts := setupTestServer(t)

	deal := `{"property_type":"sfr","sfr":{"monthly_rent":2000},"purchase_price":200000,
		"new_loan":{"principal":160000,"annual_rate":0.065,"term_months":360},"down_payment":40000}`
	resp := ts.POST("/underwrite/validate", "application/json", strings.NewReader(deal))
	testutil.AssertResponse(t, resp).StatusOK().ContentTypeJSON().Contains(`"is_valid":true`)
}

// TestUnknownRoute verifies unmatched paths 404
func TestUnknownRoute(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.GET("/dashboard")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET /dashboard = %d, want 404", resp.StatusCode)
	}
	if body := testutil.ReadBody(t, resp); !strings.Contains(body, "404") {
		t.Errorf("unexpected not-found body: %s", body)
	}
}
