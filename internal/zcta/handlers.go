package zcta

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/mountly/coverage-backend/internal/httputil"
	"github.com/mountly/coverage-backend/internal/logging"
)

// DefaultNearbyRadiusMiles is used when ?radius is absent.
const DefaultNearbyRadiusMiles = 10.0

type nearbyResponse struct {
	Zipcode     string      `json:"zipcode"`
	RadiusMiles float64     `json:"radius_miles"`
	Results     []NearbyZip `json:"results"`
}

type Handlers struct {
	Service   *Service
	Validator *Validator
}

func (h Handlers) GetBoundary(w http.ResponseWriter, r *http.Request) {
	f, err := h.Service.Boundary(r.Context(), chi.URLParam(r, "zip"))
	if err != nil {
		logging.LogError("zcta", "boundary", err)
		http.Error(w, "Boundary data unavailable", http.StatusServiceUnavailable)
		return
	}
	if f == nil {
		http.Error(w, "No ZCTA for zip", http.StatusNotFound)
		return
	}
	httputil.WriteJSON(w, f.Summarize())
}

func (h Handlers) Validate(w http.ResponseWriter, r *http.Request) {
	v, err := h.Validator.ValidateZctaCode(r.Context(), chi.URLParam(r, "zip"))
	if errors.Is(err, ErrInvalidZip) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		logging.LogError("zcta", "validate", err)
		http.Error(w, "Boundary data unavailable", http.StatusServiceUnavailable)
		return
	}
	httputil.WriteJSON(w, v)
}

func (h Handlers) Nearby(w http.ResponseWriter, r *http.Request) {
	radius := DefaultNearbyRadiusMiles
	if s := r.URL.Query().Get("radius"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v < 0 {
			http.Error(w, "radius must be a non-negative number of miles", http.StatusBadRequest)
			return
		}
		radius = min(v, MaxNearbyRadiusMiles)
	}

	zip := chi.URLParam(r, "zip")
	out, err := h.Service.Nearby(r.Context(), zip, radius)
	if errors.Is(err, ErrUnknownZip) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		logging.LogError("zcta", "nearby", err)
		http.Error(w, "Boundary data unavailable", http.StatusServiceUnavailable)
		return
	}
	httputil.WriteJSON(w, nearbyResponse{Zipcode: out[0].Zipcode, RadiusMiles: radius, Results: out})
}
