package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewServer creates an HTTP router serving mcp at /mcp. authMiddleware, when
// non-nil, guards /mcp but not /health.
func NewServer(mcp http.Handler, authMiddleware func(http.Handler) http.Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)

	r.Group(func(r chi.Router) {
		if authMiddleware != nil {
			r.Use(authMiddleware)
		}
		r.Handle("/mcp", mcp)
		r.Handle("/mcp/*", mcp)
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
