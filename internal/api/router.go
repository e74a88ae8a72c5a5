package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/designsystemsinternational/react-admin-github/internal/authn"
	"github.com/designsystemsinternational/react-admin-github/internal/resource"
)

// NewRouter creates a chi router with all proxy routes mounted. The /api
// endpoint sits behind the bearer-credential gate; /auth and /preview are
// reachable without it (preview access is granted by its own token).
func NewRouter(svc *resource.Service, auth *authn.Service, secret []byte) chi.Router {
	h := NewHandler(svc, auth)

	r := chi.NewRouter()

	r.Post("/auth", h.Login)
	r.Get("/preview", h.Preview)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(secret))
		r.HandleFunc("/api", h.Proxy)
	})

	return r
}

// Healthz responds to liveness and readiness probes.
func Healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
