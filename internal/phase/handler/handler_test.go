package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	phaseservice "precato/internal/phase/service"
	phasestore "precato/internal/phase/store"
	precatoriostore "precato/internal/precatorio/store"
)

func newPhaseRouter() chi.Router {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := phaseservice.New(phasestore.NewInMemory(), phasestore.NewFeePhaseInMemory(),
		precatoriostore.NewInMemory(), phaseservice.WithLogger(logger))

	router := chi.NewRouter()
	New(svc, logger).Register(router)
	return router
}

func postJSON(t *testing.T, router chi.Router, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreatePhaseViaHandler(t *testing.T) {
	router := newPhaseRouter()

	rec := postJSON(t, router, "/phases", map[string]any{
		"name": "Aguardando Depósito", "usage_scope": "alvara",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating phase, got %d: %s", rec.Code, rec.Body.String())
	}

	var phase struct {
		ID     uuid.UUID `json:"id"`
		Color  string    `json:"color"`
		Active bool      `json:"active"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&phase); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if phase.ID == uuid.Nil {
		t.Fatalf("expected phase id in response")
	}
	if phase.Color != "#6c757d" || !phase.Active {
		t.Fatalf("expected defaults applied, got color=%s active=%v", phase.Color, phase.Active)
	}
}

func TestDuplicatePhaseNameReturnsConflict(t *testing.T) {
	router := newPhaseRouter()

	payload := map[string]any{"name": "Finalizado", "usage_scope": "alvara"}
	if rec := postJSON(t, router, "/phases", payload); rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if rec := postJSON(t, router, "/phases", payload); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate, got %d", rec.Code)
	}

	// Same name in another scope is fine.
	other := map[string]any{"name": "Finalizado", "usage_scope": "requerimento"}
	if rec := postJSON(t, router, "/phases", other); rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 for other scope, got %d", rec.Code)
	}
}

func TestValidationErrorsReturn400(t *testing.T) {
	router := newPhaseRouter()

	if rec := postJSON(t, router, "/phases", map[string]any{"name": "  "}); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank name, got %d", rec.Code)
	}
	if rec := postJSON(t, router, "/phases", map[string]any{"name": "X", "color": "red"}); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad color, got %d", rec.Code)
	}
}

func TestTogglePhaseViaHandler(t *testing.T) {
	router := newPhaseRouter()

	rec := postJSON(t, router, "/phases", map[string]any{"name": "Alternável"})
	var phase struct {
		ID uuid.UUID `json:"id"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&phase); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	toggleRec := postJSON(t, router, "/phases/"+phase.ID.String()+"/toggle", nil)
	if toggleRec.Code != http.StatusOK {
		t.Fatalf("expected 200 toggling, got %d", toggleRec.Code)
	}

	var result struct {
		Activated bool `json:"activated"`
	}
	if err := json.NewDecoder(toggleRec.Body).Decode(&result); err != nil {
		t.Fatalf("decode toggle response: %v", err)
	}
	if result.Activated {
		t.Fatalf("expected first toggle to deactivate")
	}
}

func TestDeleteUnknownPhaseReturns404(t *testing.T) {
	router := newPhaseRouter()

	req := httptest.NewRequest(http.MethodDelete, "/phases/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestPhasesForUsageFiltering(t *testing.T) {
	router := newPhaseRouter()

	for _, p := range []map[string]any{
		{"name": "Só Alvará", "usage_scope": "alvara"},
		{"name": "Só Requerimento", "usage_scope": "requerimento"},
		{"name": "Ambos", "usage_scope": "both"},
	} {
		if rec := postJSON(t, router, "/phases", p); rec.Code != http.StatusCreated {
			t.Fatalf("seed phase failed: %d", rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/phases/for/alvara", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var phases []json.RawMessage
	if err := json.NewDecoder(rec.Body).Decode(&phases); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(phases) != 2 {
		t.Fatalf("expected 2 phases for alvara usage, got %d", len(phases))
	}

	badReq := httptest.NewRequest(http.MethodGet, "/phases/for/contrato", nil)
	badRec := httptest.NewRecorder()
	router.ServeHTTP(badRec, badReq)
	if badRec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown usage, got %d", badRec.Code)
	}
}

func TestFeePhaseRoutes(t *testing.T) {
	router := newPhaseRouter()

	rec := postJSON(t, router, "/fee-phases", map[string]any{"name": "Recebido"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var phase struct {
		ID    uuid.UUID `json:"id"`
		Color string    `json:"color"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&phase); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if phase.Color != "#28a745" {
		t.Fatalf("expected fee default color, got %s", phase.Color)
	}

	delReq := httptest.NewRequest(http.MethodDelete, "/fee-phases/"+phase.ID.String(), nil)
	delRec := httptest.NewRecorder()
	router.ServeHTTP(delRec, delReq)
	if delRec.Code != http.StatusOK {
		t.Fatalf("expected 200 deleting, got %d", delRec.Code)
	}
}
