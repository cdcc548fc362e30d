// Package handler exposes the waiting queues over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"visuplant/internal/waitlist/models"
	"visuplant/internal/waitlist/service"
	"visuplant/pkg/cpf"
	dErrors "visuplant/pkg/domain-errors"
	"visuplant/pkg/platform/httputil"
	"visuplant/pkg/requestcontext"
)

var validate = validator.New()

// Service defines the waitlist operations the handlers need.
type Service interface {
	Join(ctx context.Context, unitCode string, input service.JoinInput) (service.Placement, error)
	ListForUnit(ctx context.Context, unitCode string) ([]models.Entry, error)
	SizeForUnit(ctx context.Context, unitCode string) (int, error)
	FindEntry(ctx context.Context, unitCode, taxID string) (*service.Placement, error)
	ListAll(ctx context.Context) ([]models.Entry, error)
}

// Handler wires waitlist endpoints to the service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a waitlist handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the public waitlist endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/units/{code}/waitlist", h.HandleJoin)
	r.Get("/api/units/{code}/waitlist", h.HandleList)
	r.Get("/api/units/{code}/waitlist/size", h.HandleSize)
	r.Get("/api/units/{code}/waitlist/{cpf}", h.HandleFind)
}

// RegisterAdmin mounts the admin-only waitlist endpoints.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/waitlists", h.HandleListAll)
}

// JoinRequest is the HTTP request body for POST /api/units/{code}/waitlist.
type JoinRequest struct {
	Name      string `json:"name" validate:"required"`
	Phone     string `json:"phone" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	CPF       string `json:"cpf" validate:"required"`
	AgentName string `json:"agent_name"`
}

// PlacementResponse reports a buyer's spot in a queue.
type PlacementResponse struct {
	UnitCode string `json:"unit_code"`
	Position int    `json:"position"`
}

// EntryResponse is the JSON shape of one queue entry.
type EntryResponse struct {
	UnitCode  string    `json:"unit_code"`
	Position  int       `json:"position"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	CPF       string    `json:"cpf"`
	AgentName string    `json:"agent_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// QueueResponse wraps a list of entries.
type QueueResponse struct {
	Entries []EntryResponse `json:"entries"`
}

// SizeResponse is the body of GET /api/units/{code}/waitlist/size.
type SizeResponse struct {
	UnitCode string `json:"unit_code"`
	Size     int    `json:"size"`
}

// FindResponse reports whether a buyer is queued, and where.
type FindResponse struct {
	Queued   bool `json:"queued"`
	Position int  `json:"position,omitempty"`
}

// HandleJoin handles POST /api/units/{code}/waitlist.
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	code := chi.URLParam(r, "code")

	var req JoinRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request: "+err.Error()))
		return
	}

	placement, err := h.service.Join(ctx, code, service.JoinInput{
		Name:      req.Name,
		Phone:     req.Phone,
		Email:     req.Email,
		TaxID:     req.CPF,
		AgentName: req.AgentName,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "waitlist join",
		"request_id", requestcontext.RequestID(ctx),
		"unit_code", code,
		"position", placement.Position,
	)
	httputil.WriteJSON(w, http.StatusCreated, PlacementResponse{
		UnitCode: placement.UnitCode,
		Position: placement.Position,
	})
}

// HandleList handles GET /api/units/{code}/waitlist.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.ListForUnit(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromEntries(entries))
}

// HandleSize handles GET /api/units/{code}/waitlist/size.
func (h *Handler) HandleSize(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	size, err := h.service.SizeForUnit(r.Context(), code)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, SizeResponse{UnitCode: code, Size: size})
}

// HandleFind handles GET /api/units/{code}/waitlist/{cpf}. Absence is a
// 200 with queued=false, not a 404.
func (h *Handler) HandleFind(w http.ResponseWriter, r *http.Request) {
	placement, err := h.service.FindEntry(r.Context(), chi.URLParam(r, "code"), chi.URLParam(r, "cpf"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if placement == nil {
		httputil.WriteJSON(w, http.StatusOK, FindResponse{Queued: false})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FindResponse{Queued: true, Position: placement.Position})
}

// HandleListAll handles GET /admin/waitlists.
func (h *Handler) HandleListAll(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.ListAll(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromEntries(entries))
}

func fromEntries(entries []models.Entry) QueueResponse {
	resp := QueueResponse{Entries: make([]EntryResponse, 0, len(entries))}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, EntryResponse{
			UnitCode:  e.UnitCode,
			Position:  e.Position,
			Name:      e.Name,
			Phone:     e.Phone,
			Email:     e.Email,
			CPF:       cpf.Format(e.TaxID),
			AgentName: e.AgentName,
			CreatedAt: e.CreatedAt,
		})
	}
	return resp
}
