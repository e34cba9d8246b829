// Package handler exposes precatórios, clientes, alvarás and requerimentos
// over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"precato/internal/platform/middleware"
	"precato/internal/precatorio/models"
	"precato/internal/precatorio/service"
	"precato/internal/transport/http/shared"
	dErrors "precato/pkg/domain-errors"
)

// Service is the precatório surface the handler depends on.
type Service interface {
	CreatePrecatorio(ctx context.Context, input service.PrecatorioInput) (*models.Precatorio, error)
	GetPrecatorio(ctx context.Context, cnj string) (*models.Precatorio, error)
	DeletePrecatorio(ctx context.Context, cnj string) (*models.Precatorio, error)

	RegisterCliente(ctx context.Context, input service.ClienteInput) (*models.Cliente, error)
	GetCliente(ctx context.Context, doc string) (*models.Cliente, error)
	DeleteCliente(ctx context.Context, doc string) (*models.Cliente, error)
	LinkCliente(ctx context.Context, cnj, doc string) error
	UnlinkCliente(ctx context.Context, cnj, doc string) error

	CreateAlvara(ctx context.Context, input service.AlvaraInput) (*models.Alvara, error)
	GetAlvara(ctx context.Context, id uuid.UUID) (*models.Alvara, error)
	DeleteAlvara(ctx context.Context, id uuid.UUID) error

	CreateRequerimento(ctx context.Context, input service.RequerimentoInput) (*models.Requerimento, error)
	GetRequerimento(ctx context.Context, id uuid.UUID) (*models.Requerimento, error)
	ListRequerimentos(ctx context.Context, deferido *bool) ([]*models.Requerimento, error)
	DeleteRequerimento(ctx context.Context, id uuid.UUID) error

	GetTotals(ctx context.Context) (*service.Totals, error)
}

// Handler serves the precatório family routes.
type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: svc}
}

// Register mounts the routes with the standard middleware chain. CNJ numbers
// contain dots and dashes but no slashes, so they ride in path segments.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(router chi.Router) {
		router.Use(middleware.Recovery(h.logger))
		router.Use(middleware.RequestID)
		router.Use(middleware.Logger(h.logger))
		router.Use(middleware.Timeout(30 * time.Second))
		router.Use(middleware.ContentTypeJSON)

		router.Route("/precatorios", func(r chi.Router) {
			r.Post("/", h.handleCreatePrecatorio)
			r.Get("/{cnj}", h.handleGetPrecatorio)
			r.Delete("/{cnj}", h.handleDeletePrecatorio)
			r.Post("/{cnj}/clientes/{doc}", h.handleLinkCliente)
			r.Delete("/{cnj}/clientes/{doc}", h.handleUnlinkCliente)
		})

		router.Route("/clientes", func(r chi.Router) {
			r.Post("/", h.handleRegisterCliente)
			r.Get("/{doc}", h.handleGetCliente)
			r.Delete("/{doc}", h.handleDeleteCliente)
		})

		router.Route("/alvaras", func(r chi.Router) {
			r.Post("/", h.handleCreateAlvara)
			r.Get("/{id}", h.handleGetAlvara)
			r.Delete("/{id}", h.handleDeleteAlvara)
		})

		router.Route("/requerimentos", func(r chi.Router) {
			r.Post("/", h.handleCreateRequerimento)
			r.Get("/", h.handleListRequerimentos)
			r.Get("/{id}", h.handleGetRequerimento)
			r.Delete("/{id}", h.handleDeleteRequerimento)
		})

		router.Get("/totals", h.handleTotals)
	})
}

func (h *Handler) handleCreatePrecatorio(w http.ResponseWriter, r *http.Request) {
	var input service.PrecatorioInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}
	p, err := h.service.CreatePrecatorio(r.Context(), input)
	if err != nil {
		h.writeServiceError(w, r, "create precatorio", err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) handleGetPrecatorio(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetPrecatorio(r.Context(), chi.URLParam(r, "cnj"))
	if err != nil {
		h.writeServiceError(w, r, "get precatorio", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) handleDeletePrecatorio(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.DeletePrecatorio(r.Context(), chi.URLParam(r, "cnj"))
	if err != nil {
		h.writeServiceError(w, r, "delete precatorio", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) handleRegisterCliente(w http.ResponseWriter, r *http.Request) {
	var input service.ClienteInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}
	c, err := h.service.RegisterCliente(r.Context(), input)
	if err != nil {
		h.writeServiceError(w, r, "register cliente", err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) handleGetCliente(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.GetCliente(r.Context(), chi.URLParam(r, "doc"))
	if err != nil {
		h.writeServiceError(w, r, "get cliente", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) handleDeleteCliente(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.DeleteCliente(r.Context(), chi.URLParam(r, "doc"))
	if err != nil {
		h.writeServiceError(w, r, "delete cliente", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) handleLinkCliente(w http.ResponseWriter, r *http.Request) {
	err := h.service.LinkCliente(r.Context(), chi.URLParam(r, "cnj"), chi.URLParam(r, "doc"))
	if err != nil {
		h.writeServiceError(w, r, "link cliente", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleUnlinkCliente(w http.ResponseWriter, r *http.Request) {
	err := h.service.UnlinkCliente(r.Context(), chi.URLParam(r, "cnj"), chi.URLParam(r, "doc"))
	if err != nil {
		h.writeServiceError(w, r, "unlink cliente", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCreateAlvara(w http.ResponseWriter, r *http.Request) {
	var input service.AlvaraInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}
	a, err := h.service.CreateAlvara(r.Context(), input)
	if err != nil {
		h.writeServiceError(w, r, "create alvara", err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, a)
}

func (h *Handler) handleGetAlvara(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	a, err := h.service.GetAlvara(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, "get alvara", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) handleDeleteAlvara(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteAlvara(r.Context(), id); err != nil {
		h.writeServiceError(w, r, "delete alvara", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCreateRequerimento(w http.ResponseWriter, r *http.Request) {
	var input service.RequerimentoInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}
	req, err := h.service.CreateRequerimento(r.Context(), input)
	if err != nil {
		h.writeServiceError(w, r, "create requerimento", err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, req)
}

// handleListRequerimentos lists requerimentos; ?deferido=true|false filters
// by whether a phase has been assigned.
func (h *Handler) handleListRequerimentos(w http.ResponseWriter, r *http.Request) {
	var deferido *bool
	switch r.URL.Query().Get("deferido") {
	case "true":
		v := true
		deferido = &v
	case "false":
		v := false
		deferido = &v
	case "":
	default:
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "deferido must be true or false"))
		return
	}

	reqs, err := h.service.ListRequerimentos(r.Context(), deferido)
	if err != nil {
		h.writeServiceError(w, r, "list requerimentos", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, reqs)
}

func (h *Handler) handleGetRequerimento(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	req, err := h.service.GetRequerimento(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, "get requerimento", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, req)
}

func (h *Handler) handleDeleteRequerimento(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteRequerimento(r.Context(), id); err != nil {
		h.writeServiceError(w, r, "delete requerimento", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleTotals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.service.GetTotals(r.Context())
	if err != nil {
		h.writeServiceError(w, r, "totals", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, totals)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "id must be a uuid"))
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal || dErrors.CodeOf(err) == dErrors.CodeUnavailable {
		h.logger.ErrorContext(r.Context(), "precatorio operation failed",
			"request_id", middleware.GetRequestID(r.Context()),
			"op", op,
			"error", err.Error(),
		)
	}
	shared.WriteError(w, err)
}
