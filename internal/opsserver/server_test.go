package opsserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/plcops/twincat-mcp/internal/gate"
	"github.com/plcops/twincat-mcp/internal/testutil/testlog"
)

func newTestServer(t *testing.T) (*Server, *gate.Gate) {
	t.Helper()
	testlog.Start(t)
	g := gate.New(5*time.Minute, nil)
	return New("127.0.0.1:0", nil, g, "test"), g
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthAndReady(t *testing.T) {
	s, _ := newTestServer(t)

	for _, path := range []string{"/healthz", "/ready"} {
		if rec := get(t, s, path); rec.Code != http.StatusOK {
			t.Fatalf("%s returned %d", path, rec.Code)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics returned %d", rec.Code)
	}
}

func TestArmedEndpointReflectsGate(t *testing.T) {
	s, g := newTestServer(t)

	rec := get(t, s, "/armed")
	if rec.Code != http.StatusOK {
		t.Fatalf("armed returned %d", rec.Code)
	}
	var body struct {
		Armed            bool   `json:"armed"`
		Reason           string `json:"reason"`
		RemainingSeconds int    `json:"remaining_seconds"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Armed {
		t.Fatalf("expected disarmed at startup")
	}

	if err := g.Arm("ops check"); err != nil {
		t.Fatalf("arm: %v", err)
	}
	rec = get(t, s, "/armed")
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Armed || body.Reason != "ops check" || body.RemainingSeconds <= 0 {
		t.Fatalf("unexpected armed status: %+v", body)
	}
}
