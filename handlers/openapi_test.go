package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOpenAPIHandler(t *testing.T) {
	h := OpenAPIHandler()
	req := httptest.NewRequest(http.MethodGet, "/openapi.json", nil)
	rec := httptest.NewRecorder()

	h(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Header().Get("Content-Type"); !strings.Contains(got, "application/json") {
		t.Fatalf("content-type = %q, want application/json", got)
	}

	body := rec.Body.String()
	for _, path := range []string{`"/healthz"`, `"/seasons"`, `"/seasons/{id}/recompute"`, `"/teams/{id}/verify"`} {
		if !strings.Contains(body, path) {
			t.Errorf("body missing %s path", path)
		}
	}
}

func TestOperationsHaveSummaries(t *testing.T) {
	seen := make(map[string]bool)
	for _, op := range operations() {
		key := op.method + " " + op.path
		if seen[key] {
			t.Errorf("duplicate operation %s", key)
		}
		seen[key] = true
		if op.summary == "" {
			t.Errorf("%s has no summary", key)
		}
		if len(op.responses) == 0 {
			t.Errorf("%s documents no responses", key)
		}
	}
}
