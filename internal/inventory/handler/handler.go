// Package handler exposes the unit registry over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"visuplant/internal/inventory/models"
	"visuplant/internal/inventory/service"
	"visuplant/internal/notify"
	"visuplant/pkg/platform/httputil"
	"visuplant/pkg/requestcontext"
)

// Service defines the unit registry operations the handlers need.
type Service interface {
	ListUnits(ctx context.Context) ([]models.Unit, error)
	GetUnit(ctx context.Context, code string) (*models.Unit, error)
	Reserve(ctx context.Context, code string) (notify.EventType, error)
	ReserveMany(ctx context.Context, codes []string) ([]service.ReserveOutcome, error)
	ConfirmSale(ctx context.Context, code string, input service.SaleInput) (notify.EventType, error)
	Release(ctx context.Context, code string) (notify.EventType, error)
	FastTrackSale(ctx context.Context, code string) (notify.EventType, error)
	RestockAvailable(ctx context.Context, codes []string) (int, error)
}

// Emitter broadcasts a unit status change after a successful transition.
type Emitter interface {
	Emit(ctx context.Context, eventType notify.EventType, unitCode string)
}

// Handler wires unit registry endpoints to the service.
type Handler struct {
	service Service
	emitter Emitter
	logger  *slog.Logger
}

// New constructs an inventory handler with its dependencies.
func New(service Service, emitter Emitter, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		emitter: emitter,
		logger:  logger,
	}
}

// Register mounts the public unit endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/units", h.HandleList)
	r.Get("/api/units/{code}", h.HandleGet)
	r.Post("/api/units/reserve-batch", h.HandleReserveBatch)
	r.Post("/api/units/{code}/reserve", h.HandleReserve)
	r.Post("/api/units/{code}/confirm-sale", h.HandleConfirmSale)
	r.Post("/api/units/{code}/release", h.HandleRelease)
}

// RegisterAdmin mounts the admin-only unit endpoints.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/admin/units/{code}/fast-track", h.HandleFastTrack)
	r.Post("/admin/units/restock", h.HandleRestock)
}

// HandleList handles GET /api/units.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	units, err := h.service.ListUnits(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromUnits(units))
}

// HandleGet handles GET /api/units/{code}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	unit, err := h.service.GetUnit(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromUnit(*unit))
}

// HandleReserve handles POST /api/units/{code}/reserve.
func (h *Handler) HandleReserve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "reserve", h.service.Reserve)
}

// HandleRelease handles POST /api/units/{code}/release.
func (h *Handler) HandleRelease(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "release", h.service.Release)
}

// HandleFastTrack handles POST /admin/units/{code}/fast-track.
func (h *Handler) HandleFastTrack(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "fast-track", h.service.FastTrackSale)
}

// transition runs a body-less status change and replies with the updated
// unit snapshot.
func (h *Handler) transition(w http.ResponseWriter, r *http.Request, op string, apply func(context.Context, string) (notify.EventType, error)) {
	ctx := r.Context()
	code := chi.URLParam(r, "code")
	start := time.Now()

	event, err := apply(ctx, code)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.emitter.Emit(ctx, event, code)

	h.logger.InfoContext(ctx, "unit transition",
		"request_id", requestcontext.RequestID(ctx),
		"operation", op,
		"unit_code", code,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	h.writeSnapshot(w, r, code)
}

// HandleReserveBatch handles POST /api/units/reserve-batch.
func (h *Handler) HandleReserveBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req BatchReserveRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if err := checkStruct(req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	outcomes, err := h.service.ReserveMany(ctx, req.Codes)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	for _, o := range outcomes {
		if o.Reserved {
			h.emitter.Emit(ctx, notify.EventUnitReserved, o.Code)
		}
	}
	httputil.WriteJSON(w, http.StatusOK, fromOutcomes(outcomes))
}

// HandleConfirmSale handles POST /api/units/{code}/confirm-sale.
func (h *Handler) HandleConfirmSale(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	code := chi.URLParam(r, "code")

	var req SaleRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if err := checkStruct(req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	event, err := h.service.ConfirmSale(ctx, code, service.SaleInput{
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
	h.emitter.Emit(ctx, event, code)

	h.logger.InfoContext(ctx, "sale confirmed",
		"request_id", requestcontext.RequestID(ctx),
		"unit_code", code,
		"agent", req.AgentName,
	)
	h.writeSnapshot(w, r, code)
}

// HandleRestock handles POST /admin/units/restock.
func (h *Handler) HandleRestock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RestockRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if err := checkStruct(req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	n, err := h.service.RestockAvailable(ctx, req.Codes)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "units restocked",
		"request_id", requestcontext.RequestID(ctx),
		"count", n,
	)
	httputil.WriteJSON(w, http.StatusOK, RestockResponse{Restocked: n})
}

func (h *Handler) writeSnapshot(w http.ResponseWriter, r *http.Request, code string) {
	unit, err := h.service.GetUnit(r.Context(), code)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromUnit(*unit))
}
