// Package testutil provides testing utilities for the underwriting service.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
)

// TestServer wraps httptest.Server with convenience methods
type TestServer struct {
	Server  *httptest.Server
	BaseURL string
	t       *testing.T
}

// TestConfig returns environment values suitable for testing
func TestConfig() map[string]string {
	return map[string]string{
		"UNDERWRITE_DEBUG":               "true",
		"UNDERWRITE_LISTEN_ADDR":         ":0", // Random port
		"UNDERWRITE_DEFAULT_SIMULATIONS": "500",
		"UNDERWRITE_MAX_SIMULATIONS":     "5000",
	}
}

// SetTestEnv sets environment variables for testing and returns a cleanup function
func SetTestEnv(t *testing.T) func() {
	t.Helper()

	cfg := TestConfig()
	oldValues := make(map[string]string)

	for k, v := range cfg {
		oldValues[k] = os.Getenv(k)
		os.Setenv(k, v)
	}

	return func() {
		for k, v := range oldValues {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}
}

// NewTestServer creates a new test server using the application's router.
func NewTestServer(t *testing.T, router http.Handler) *TestServer {
	t.Helper()

	server := httptest.NewServer(router)

	return &TestServer{
		Server:  server,
		BaseURL: server.URL,
		t:       t,
	}
}

// GET performs a GET request to the given path
func (ts *TestServer) GET(path string) *http.Response {
	ts.t.Helper()

	resp, err := http.Get(ts.BaseURL + path)
	if err != nil {
		ts.t.Fatalf("GET %s failed: %v", path, err)
	}
	return resp
}

// POST performs a POST request to the given path
func (ts *TestServer) POST(path string, contentType string, body io.Reader) *http.Response {
	ts.t.Helper()

	resp, err := http.Post(ts.BaseURL+path, contentType, body)
	if err != nil {
		ts.t.Fatalf("POST %s failed: %v", path, err)
	}
	return resp
}

// POSTJSON marshals v and posts it as application/json
func (ts *TestServer) POSTJSON(path string, v any) *http.Response {
	ts.t.Helper()

	data, err := json.Marshal(v)
	if err != nil {
		ts.t.Fatalf("Failed to marshal request body for %s: %v", path, err)
	}
	return ts.POST(path, "application/json", bytes.NewReader(data))
}

// Close shuts down the test server
func (ts *TestServer) Close() {
	ts.Server.Close()
}

// ReadBody reads and returns the response body as a string
func ReadBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	return string(body)
}

// DecodeJSON decodes the response body into v
func DecodeJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode response body: %v", err)
	}
}
