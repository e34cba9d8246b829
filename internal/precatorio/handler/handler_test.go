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

	phaseservice "precato/internal/phase/service"
	phasestore "precato/internal/phase/store"
	precatorioservice "precato/internal/precatorio/service"
	"precato/internal/precatorio/store"
)

const (
	testCNJ = "1234567-89.2023.8.26.0100"
	testCPF = "111.444.777-35"
)

func newRouter() chi.Router {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	records := store.NewInMemory()
	phases := phaseservice.New(phasestore.NewInMemory(), phasestore.NewFeePhaseInMemory(), records)
	svc := precatorioservice.New(records, phases, precatorioservice.WithLogger(logger))

	router := chi.NewRouter()
	New(svc, logger).Register(router)
	return router
}

func doJSON(t *testing.T, router chi.Router, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func seedLinked(t *testing.T, router chi.Router) {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/precatorios", map[string]any{
		"cnj": testCNJ, "orcamento": 2023, "origem": "7654321-12.2020.8.26.0053",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("seed precatorio: %d: %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, router, http.MethodPost, "/clientes", map[string]any{
		"cpf": testCPF, "nome": "Maria da Silva",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("seed cliente: %d: %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, router, http.MethodPost, "/precatorios/"+testCNJ+"/clientes/11144477735", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("seed link: %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCreatePrecatorioValidation(t *testing.T) {
	router := newRouter()

	rec := doJSON(t, router, http.MethodPost, "/precatorios", map[string]any{
		"cnj": "not-a-cnj", "orcamento": 2023, "origem": "7654321-12.2020.8.26.0053",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed cnj, got %d", rec.Code)
	}
}

func TestRegisterClienteChecksum(t *testing.T) {
	router := newRouter()

	rec := doJSON(t, router, http.MethodPost, "/clientes", map[string]any{
		"cpf": "111.444.777-36", "nome": "Fulano",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad check digits, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/clientes", map[string]any{
		"cpf": testCPF, "nome": "Maria da Silva",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var cliente struct {
		CPF string `json:"cpf"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&cliente); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if cliente.CPF != "11144477735" {
		t.Fatalf("expected normalized document, got %q", cliente.CPF)
	}
}

func TestAlvaraRequiresLinkedCliente(t *testing.T) {
	router := newRouter()
	seedLinked(t, router)

	// Unlink first, then the alvará must be rejected.
	rec := doJSON(t, router, http.MethodDelete, "/precatorios/"+testCNJ+"/clientes/11144477735", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("unlink: %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/alvaras", map[string]any{
		"precatorio_cnj": testCNJ, "cliente_cpf": testCPF,
		"tipo": "acordo", "valor_principal": 1000,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unlinked cliente, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestDeletePrecatorioBlockedByClientes(t *testing.T) {
	router := newRouter()
	seedLinked(t, router)

	rec := doJSON(t, router, http.MethodDelete, "/precatorios/"+testCNJ, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 while cliente linked, got %d", rec.Code)
	}

	var body struct {
		Error struct {
			Code       string `json:"code"`
			Dependents string `json:"dependents"`
			Count      int    `json:"count"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body.Error.Code != "in_use" || body.Error.Dependents != "clientes" || body.Error.Count != 1 {
		t.Fatalf("unexpected error detail: %+v", body.Error)
	}

	// Unlink, then deletion goes through.
	if rec := doJSON(t, router, http.MethodDelete, "/precatorios/"+testCNJ+"/clientes/11144477735", nil); rec.Code != http.StatusNoContent {
		t.Fatalf("unlink: %d", rec.Code)
	}
	if rec := doJSON(t, router, http.MethodDelete, "/precatorios/"+testCNJ, nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 deleting, got %d", rec.Code)
	}
	if rec := doJSON(t, router, http.MethodDelete, "/precatorios/"+testCNJ, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", rec.Code)
	}
}

func TestRequerimentoDeferidoFilter(t *testing.T) {
	router := newRouter()
	seedLinked(t, router)

	rec := doJSON(t, router, http.MethodPost, "/requerimentos", map[string]any{
		"precatorio_cnj": testCNJ, "cliente_cpf": testCPF,
		"valor": 1000, "pedido": "prioridade idade",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create requerimento: %d: %s", rec.Code, rec.Body.String())
	}

	listRec := doJSON(t, router, http.MethodGet, "/requerimentos?deferido=false", nil)
	if listRec.Code != http.StatusOK {
		t.Fatalf("list: %d", listRec.Code)
	}
	var pending []json.RawMessage
	if err := json.NewDecoder(listRec.Body).Decode(&pending); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending requerimento, got %d", len(pending))
	}

	badRec := doJSON(t, router, http.MethodGet, "/requerimentos?deferido=maybe", nil)
	if badRec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad filter, got %d", badRec.Code)
	}
}

func TestTotalsEndpoint(t *testing.T) {
	router := newRouter()
	seedLinked(t, router)

	rec := doJSON(t, router, http.MethodGet, "/totals", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("totals: %d", rec.Code)
	}

	var totals struct {
		Precatorios int `json:"precatorios"`
		Clientes    int `json:"clientes"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&totals); err != nil {
		t.Fatalf("decode totals: %v", err)
	}
	if totals.Precatorios != 1 || totals.Clientes != 1 {
		t.Fatalf("unexpected totals: %+v", totals)
	}
}
