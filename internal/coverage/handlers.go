package coverage

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mountly/coverage-backend/internal/httputil"
	"github.com/mountly/coverage-backend/internal/zipcode"
)

type cacheResponse struct {
	Status  string `json:"status"`
	Zipcode string `json:"zipcode,omitempty"`
}

// Handlers exposes a Reconciler over HTTP.
type Handlers struct {
	Reconciler *Reconciler
}

// GetCoverage always answers 200; a malformed ZIP yields a "none" verdict.
func (h Handlers) GetCoverage(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	res := h.Reconciler.GetZctaServiceCoverage(r.Context(), chi.URLParam(r, "zip"))
	httputil.AddServerTiming(w, map[string]time.Duration{"coverage": time.Since(start)})
	httputil.WriteJSON(w, res)
}

func (h Handlers) ClearCache(w http.ResponseWriter, r *http.Request) {
	h.Reconciler.ClearCache()
	httputil.WriteJSON(w, cacheResponse{Status: "cleared"})
}

func (h Handlers) InvalidateZip(w http.ResponseWriter, r *http.Request) {
	zip, ok := zipcode.Normalize(chi.URLParam(r, "zip"))
	if !ok {
		http.Error(w, "zip must be 5 digits", http.StatusBadRequest)
		return
	}
	h.Reconciler.InvalidateZip(zip)
	httputil.WriteJSON(w, cacheResponse{Status: "invalidated", Zipcode: zip})
}
