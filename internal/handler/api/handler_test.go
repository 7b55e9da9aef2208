package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ctrlaltdad/TakeStock/internal/service/keystore"
	"github.com/ctrlaltdad/TakeStock/pkg/logger"

	"github.com/labstack/echo/v4"
)

func newTestHandler(t *testing.T) (*Handler, *echo.Echo) {
	t.Helper()
	keys, err := keystore.New(filepath.Join(t.TempDir(), "keys.json"), nil)
	if err != nil {
		t.Fatalf("keystore: %v", err)
	}
	h := New(nil, keys, logger.Nop())
	e := echo.New()
	h.RegisterRoutes(e)
	return h, e
}

func doJSON(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestGetStockRejectsBadSymbol(t *testing.T) {
	_, e := newTestHandler(t)
	rec := doJSON(e, http.MethodGet, "/api/stocks/not%20a%20symbol", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRunSimulation(t *testing.T) {
	_, e := newTestHandler(t)
	rec := doJSON(e, http.MethodPost, "/api/simulation",
		`{"sector":"unknown","adjustments":[20,-10,0,10,0]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Data SimulationResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.TotalImpact != 4.5 || envelope.Data.Display != "+4.5%" {
		t.Fatalf("simulation = %+v", envelope.Data)
	}
}

func TestRunSimulationRejectsOutOfRange(t *testing.T) {
	_, e := newTestHandler(t)
	rec := doJSON(e, http.MethodPost, "/api/simulation",
		`{"sector":"default","adjustments":[80,0,0,0,0]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRunSimulationRejectsLengthMismatch(t *testing.T) {
	_, e := newTestHandler(t)
	rec := doJSON(e, http.MethodPost, "/api/simulation",
		`{"sector":"Technology","adjustments":[10,10]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetLeversFallback(t *testing.T) {
	_, e := newTestHandler(t)
	rec := doJSON(e, http.MethodGet, "/api/levers/Unknown%20Sector", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var envelope struct {
		Data LeversResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !envelope.Data.Fallback || envelope.Data.Sector != "default" {
		t.Fatalf("levers = %+v", envelope.Data)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	_, e := newTestHandler(t)

	rec := doJSON(e, http.MethodPut, "/api/settings/keys",
		`{"finnhub":"abc123xyz9"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("put status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(e, http.MethodGet, "/api/settings/keys", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var envelope struct {
		Data map[string]keystore.KeyStatus `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	fh := envelope.Data["finnhub"]
	if !fh.Configured {
		t.Fatalf("finnhub should be configured: %+v", envelope.Data)
	}
	if strings.Contains(fh.Masked, "abc123") || !strings.HasSuffix(fh.Masked, "xyz9") {
		t.Fatalf("key not masked: %q", fh.Masked)
	}

	rec = doJSON(e, http.MethodDelete, "/api/settings/keys", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = doJSON(e, http.MethodGet, "/api/settings/keys", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data["finnhub"].Configured {
		t.Fatalf("keys should be cleared")
	}
}

func TestHealth(t *testing.T) {
	_, e := newTestHandler(t)
	rec := doJSON(e, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
