package availability

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func SetupRoutes(f *Finder) http.Handler {
	r := chi.NewRouter()
	h := NewHandlers(f)

	r.Get("/", h.GetAvailability)
	r.Get("/slots", h.GetSlots)

	return r
}
