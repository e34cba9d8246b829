// Package handler exposes the phase registry over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"precato/internal/phase/models"
	"precato/internal/phase/service"
	"precato/internal/platform/middleware"
	"precato/internal/transport/http/shared"
	dErrors "precato/pkg/domain-errors"
)

// Service is the phase registry surface the handler depends on.
type Service interface {
	CreatePhase(ctx context.Context, input service.PhaseInput) (*models.Phase, error)
	UpdatePhase(ctx context.Context, id uuid.UUID, input service.PhaseInput) (*models.Phase, error)
	TogglePhase(ctx context.Context, id uuid.UUID) (*service.ToggleResult, error)
	GetPhase(ctx context.Context, id uuid.UUID) (*models.Phase, error)
	ListPhases(ctx context.Context) ([]*models.Phase, error)
	PhasesFor(ctx context.Context, usage models.Usage) ([]*models.Phase, error)
	AssignablePhasesFor(ctx context.Context, usage models.Usage) ([]*models.Phase, error)
	PhaseStats(ctx context.Context) (models.PhaseStats, error)
	DeletePhase(ctx context.Context, id uuid.UUID) (*models.Phase, error)

	CreateFeePhase(ctx context.Context, input service.FeePhaseInput) (*models.FeePhase, error)
	UpdateFeePhase(ctx context.Context, id uuid.UUID, input service.FeePhaseInput) (*models.FeePhase, error)
	ToggleFeePhase(ctx context.Context, id uuid.UUID) (*service.FeeToggleResult, error)
	GetFeePhase(ctx context.Context, id uuid.UUID) (*models.FeePhase, error)
	ListFeePhases(ctx context.Context) ([]*models.FeePhase, error)
	AssignableFeePhases(ctx context.Context) ([]*models.FeePhase, error)
	DeleteFeePhase(ctx context.Context, id uuid.UUID) (*models.FeePhase, error)
}

// Handler serves the /phases and /fee-phases routes.
type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: svc}
}

// Register mounts the phase routes with the standard middleware chain.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(router chi.Router) {
		router.Use(middleware.Recovery(h.logger))
		router.Use(middleware.RequestID)
		router.Use(middleware.Logger(h.logger))
		router.Use(middleware.Timeout(30 * time.Second))
		router.Use(middleware.ContentTypeJSON)

		router.Route("/phases", func(r chi.Router) {
			r.Post("/", h.handleCreatePhase)
			r.Get("/", h.handleListPhases)
			r.Get("/stats", h.handlePhaseStats)
			r.Get("/for/{usage}", h.handlePhasesFor)
			r.Get("/{id}", h.handleGetPhase)
			r.Put("/{id}", h.handleUpdatePhase)
			r.Post("/{id}/toggle", h.handleTogglePhase)
			r.Delete("/{id}", h.handleDeletePhase)
		})

		router.Route("/fee-phases", func(r chi.Router) {
			r.Post("/", h.handleCreateFeePhase)
			r.Get("/", h.handleListFeePhases)
			r.Get("/{id}", h.handleGetFeePhase)
			r.Put("/{id}", h.handleUpdateFeePhase)
			r.Post("/{id}/toggle", h.handleToggleFeePhase)
			r.Delete("/{id}", h.handleDeleteFeePhase)
		})
	})
}

func (h *Handler) handleCreatePhase(w http.ResponseWriter, r *http.Request) {
	var input service.PhaseInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}
	phase, err := h.service.CreatePhase(r.Context(), input)
	if err != nil {
		h.writeServiceError(w, r, "create phase", err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, phase)
}

func (h *Handler) handleUpdatePhase(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var input service.PhaseInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}
	phase, err := h.service.UpdatePhase(r.Context(), id, input)
	if err != nil {
		h.writeServiceError(w, r, "update phase", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, phase)
}

func (h *Handler) handleTogglePhase(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	result, err := h.service.TogglePhase(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, "toggle phase", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleGetPhase(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	phase, err := h.service.GetPhase(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, "get phase", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, phase)
}

func (h *Handler) handleListPhases(w http.ResponseWriter, r *http.Request) {
	phases, err := h.service.ListPhases(r.Context())
	if err != nil {
		h.writeServiceError(w, r, "list phases", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, phases)
}

// handlePhasesFor lists phases attachable to one usage. ?assignable=true
// narrows to active phases only.
func (h *Handler) handlePhasesFor(w http.ResponseWriter, r *http.Request) {
	usage := models.Usage(chi.URLParam(r, "usage"))

	var phases []*models.Phase
	var err error
	if r.URL.Query().Get("assignable") == "true" {
		phases, err = h.service.AssignablePhasesFor(r.Context(), usage)
	} else {
		phases, err = h.service.PhasesFor(r.Context(), usage)
	}
	if err != nil {
		h.writeServiceError(w, r, "list phases for usage", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, phases)
}

func (h *Handler) handlePhaseStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.PhaseStats(r.Context())
	if err != nil {
		h.writeServiceError(w, r, "phase stats", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleDeletePhase(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	phase, err := h.service.DeletePhase(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, "delete phase", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, phase)
}

func (h *Handler) handleCreateFeePhase(w http.ResponseWriter, r *http.Request) {
	var input service.FeePhaseInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}
	phase, err := h.service.CreateFeePhase(r.Context(), input)
	if err != nil {
		h.writeServiceError(w, r, "create fee phase", err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, phase)
}

func (h *Handler) handleUpdateFeePhase(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var input service.FeePhaseInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}
	phase, err := h.service.UpdateFeePhase(r.Context(), id, input)
	if err != nil {
		h.writeServiceError(w, r, "update fee phase", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, phase)
}

func (h *Handler) handleToggleFeePhase(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	result, err := h.service.ToggleFeePhase(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, "toggle fee phase", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleGetFeePhase(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	phase, err := h.service.GetFeePhase(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, "get fee phase", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, phase)
}

func (h *Handler) handleListFeePhases(w http.ResponseWriter, r *http.Request) {
	var phases []*models.FeePhase
	var err error
	if r.URL.Query().Get("assignable") == "true" {
		phases, err = h.service.AssignableFeePhases(r.Context())
	} else {
		phases, err = h.service.ListFeePhases(r.Context())
	}
	if err != nil {
		h.writeServiceError(w, r, "list fee phases", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, phases)
}

func (h *Handler) handleDeleteFeePhase(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	phase, err := h.service.DeleteFeePhase(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, "delete fee phase", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, phase)
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
		h.logger.ErrorContext(r.Context(), "phase operation failed",
			"request_id", middleware.GetRequestID(r.Context()),
			"op", op,
			"error", err.Error(),
		)
	}
	shared.WriteError(w, err)
}
