package zcta

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func SetupRoutes(svc *Service, v *Validator) http.Handler {
	r := chi.NewRouter()
	h := Handlers{Service: svc, Validator: v}

	r.Get("/{zip}", h.GetBoundary)
	r.Get("/{zip}/validate", h.Validate)
	r.Get("/{zip}/nearby", h.Nearby)

	return r
}
