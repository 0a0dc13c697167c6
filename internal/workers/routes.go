package workers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// SetupRoutes mounts worker management. Every route sits behind admin.
func SetupRoutes(store Store, admin func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	h := NewHandlers(store)

	if admin != nil {
		r.Use(admin)
	}

	r.Get("/", h.ListWorkers)
	r.Post("/", h.CreateWorker)
	r.Get("/{id}/zipcodes", h.ListZipcodes)
	r.Post("/{id}/zipcodes", h.AddZipcode)
	r.Delete("/{id}/zipcodes/{zip}", h.RemoveZipcode)
	r.Post("/{id}/areas", h.SaveArea)
	r.Delete("/{id}/areas/{areaID}", h.DeleteArea)

	return r
}
