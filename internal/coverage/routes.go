package coverage

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// SetupRoutes mounts the coverage endpoints. admin guards the cache
// invalidation surface.
func SetupRoutes(rc *Reconciler, admin func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	h := Handlers{Reconciler: rc}

	r.Get("/{zip}", h.GetCoverage)

	r.Group(func(r chi.Router) {
		if admin != nil {
			r.Use(admin)
		}
		r.Delete("/cache", h.ClearCache)
		r.Delete("/cache/{zip}", h.InvalidateZip)
	})

	return r
}
