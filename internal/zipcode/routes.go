package zipcode

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mountly/coverage-backend/internal/httputil"
)

type lookupResponse struct {
	Zipcode   string  `json:"zipcode"`
	Formatted string  `json:"formatted"`
	Place     *Record `json:"place"`
}

// SetupRoutes serves GET /{zip}: the normalized ZIP, its display form, and
// the cached place (null when unknown). When admin is non-nil it also mounts
// DELETE /{zip} behind it, which drops the cached place so the next lookup
// asks upstream again.
func SetupRoutes(l *Lookup, admin func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/{zip}", func(w http.ResponseWriter, r *http.Request) {
		raw := chi.URLParam(r, "zip")
		zip, ok := Normalize(raw)
		if !ok {
			http.Error(w, "zip must be 5 digits", http.StatusBadRequest)
			return
		}
		httputil.WriteJSON(w, lookupResponse{
			Zipcode:   zip,
			Formatted: Format(raw),
			Place:     l.Lookup(r.Context(), zip),
		})
	})

	if admin != nil {
		r.With(admin).Delete("/{zip}", func(w http.ResponseWriter, r *http.Request) {
			zip, ok := Normalize(chi.URLParam(r, "zip"))
			if !ok {
				http.Error(w, "zip must be 5 digits", http.StatusBadRequest)
				return
			}
			l.Forget(zip)
			httputil.WriteJSON(w, map[string]string{"status": "forgotten", "zipcode": zip})
		})
	}

	return r
}
