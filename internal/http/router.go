// Package httpapi assembles the service's HTTP surface: public unit and
// waitlist endpoints, the token-gated admin surface, health and metrics.
package httpapi

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	inventoryhandler "visuplant/internal/inventory/handler"
	"visuplant/internal/platform/middleware"
	waitlisthandler "visuplant/internal/waitlist/handler"
	"visuplant/pkg/platform/httputil"
)

// Deps carries everything the router mounts.
type Deps struct {
	Inventory  *inventoryhandler.Handler
	Waitlist   *waitlisthandler.Handler
	DB         *sql.DB
	AdminToken string
	Logger     *slog.Logger
}

// NewRouter wires all endpoints. Admin routes live behind the shared-token
// middleware; an empty token keeps the whole admin surface closed.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestMeta)

	deps.Inventory.Register(r)
	deps.Waitlist.Register(r)

	r.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireAdminToken(deps.AdminToken, deps.Logger))
		deps.Inventory.RegisterAdmin(admin)
		deps.Waitlist.RegisterAdmin(admin)
	})

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if deps.DB != nil {
			if err := deps.DB.PingContext(req.Context()); err != nil {
				deps.Logger.ErrorContext(req.Context(), "health check failed", "error", err)
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}
