package workers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/mountly/coverage-backend/internal/httputil"
	"github.com/mountly/coverage-backend/internal/logging"
	"github.com/mountly/coverage-backend/internal/zipcode"
	"github.com/paulmach/orb"
)

// Store is the part of *Repository the HTTP handlers use.
type Store interface {
	CreateWorker(ctx context.Context, w *Worker) error
	ListWorkers(ctx context.Context) ([]Worker, error)
	ListZipcodes(ctx context.Context, workerID uuid.UUID) ([]ServiceZipcode, error)
	AddZipcode(ctx context.Context, workerID uuid.UUID, zip string) (string, error)
	RemoveZipcode(ctx context.Context, workerID uuid.UUID, zip string) error
	SaveArea(ctx context.Context, workerID uuid.UUID, name string, geom orb.Geometry) (*ServiceArea, []string, error)
	DeleteArea(ctx context.Context, workerID, areaID uuid.UUID) error
}

type createWorkerRequest struct {
	Name            string   `json:"name" validate:"required,max=120"`
	Email           string   `json:"email" validate:"omitempty,email"`
	ServiceArea     *string  `json:"service_area"`
	AvgResponseTime *int     `json:"avg_response_time" validate:"omitempty,min=0"`
	Specializations []string `json:"specializations" validate:"dive,required"`
	WorkStart       string   `json:"work_start" validate:"omitempty,hhmm"`
	WorkEnd         string   `json:"work_end" validate:"omitempty,hhmm"`
}

type addZipcodeRequest struct {
	Zipcode string `json:"zipcode" validate:"required,zipcode"`
}

type saveAreaRequest struct {
	Name     string          `json:"name" validate:"required,max=120"`
	Geometry json.RawMessage `json:"geometry" validate:"required"`
}

type saveAreaResponse struct {
	Area     *ServiceArea `json:"area"`
	Zipcodes []string     `json:"zipcodes"`
}

type Handlers struct {
	store    Store
	validate *validator.Validate
}

func NewHandlers(store Store) *Handlers {
	return &Handlers{store: store, validate: zipcode.NewValidator()}
}

func workerIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid worker id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func writeStoreError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrWorkerNotFound), errors.Is(err, ErrAreaNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrInvalidZip), errors.Is(err, ErrEmptyArea):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		logging.LogError("workers", op, err)
		http.Error(w, "Failed to "+op, http.StatusInternalServerError)
	}
}

func (h *Handlers) ListWorkers(w http.ResponseWriter, r *http.Request) {
	out, err := h.store.ListWorkers(r.Context())
	if err != nil {
		writeStoreError(w, "list workers", err)
		return
	}
	httputil.WriteJSON(w, out)
}

func (h *Handlers) CreateWorker(w http.ResponseWriter, r *http.Request) {
	var req createWorkerRequest
	if err := httputil.DecodeAndValidate(r, h.validate, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	worker := Worker{
		Name:            req.Name,
		Email:           req.Email,
		IsActive:        true,
		ServiceArea:     req.ServiceArea,
		AvgResponseTime: req.AvgResponseTime,
		Specializations: pq.StringArray(req.Specializations),
		WorkStart:       req.WorkStart,
		WorkEnd:         req.WorkEnd,
	}
	if worker.WorkStart == "" {
		worker.WorkStart = "08:00"
	}
	if worker.WorkEnd == "" {
		worker.WorkEnd = "18:00"
	}
	if worker.WorkEnd <= worker.WorkStart {
		http.Error(w, "work_end must be after work_start", http.StatusBadRequest)
		return
	}

	if err := h.store.CreateWorker(r.Context(), &worker); err != nil {
		writeStoreError(w, "create worker", err)
		return
	}
	httputil.WriteJSONStatus(w, http.StatusCreated, worker)
}

func (h *Handlers) ListZipcodes(w http.ResponseWriter, r *http.Request) {
	id, ok := workerIDParam(w, r)
	if !ok {
		return
	}
	out, err := h.store.ListZipcodes(r.Context(), id)
	if err != nil {
		writeStoreError(w, "list zipcodes", err)
		return
	}
	httputil.WriteJSON(w, out)
}

func (h *Handlers) AddZipcode(w http.ResponseWriter, r *http.Request) {
	id, ok := workerIDParam(w, r)
	if !ok {
		return
	}
	var req addZipcodeRequest
	if err := httputil.DecodeAndValidate(r, h.validate, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	zip, err := h.store.AddZipcode(r.Context(), id, req.Zipcode)
	if err != nil {
		writeStoreError(w, "add zipcode", err)
		return
	}
	httputil.WriteJSONStatus(w, http.StatusCreated, map[string]string{"worker_id": id.String(), "zipcode": zip})
}

func (h *Handlers) RemoveZipcode(w http.ResponseWriter, r *http.Request) {
	id, ok := workerIDParam(w, r)
	if !ok {
		return
	}
	if err := h.store.RemoveZipcode(r.Context(), id, chi.URLParam(r, "zip")); err != nil {
		writeStoreError(w, "remove zipcode", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) SaveArea(w http.ResponseWriter, r *http.Request) {
	id, ok := workerIDParam(w, r)
	if !ok {
		return
	}
	var req saveAreaRequest
	if err := httputil.DecodeAndValidate(r, h.validate, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	geom, err := parseArea(string(req.Geometry))
	if err != nil {
		http.Error(w, "geometry must be a GeoJSON Polygon or MultiPolygon", http.StatusBadRequest)
		return
	}

	area, zips, err := h.store.SaveArea(r.Context(), id, req.Name, geom)
	if err != nil {
		writeStoreError(w, "save service area", err)
		return
	}
	httputil.WriteJSONStatus(w, http.StatusCreated, saveAreaResponse{Area: area, Zipcodes: zips})
}

func (h *Handlers) DeleteArea(w http.ResponseWriter, r *http.Request) {
	id, ok := workerIDParam(w, r)
	if !ok {
		return
	}
	areaID, err := uuid.Parse(chi.URLParam(r, "areaID"))
	if err != nil {
		http.Error(w, "Invalid area id", http.StatusBadRequest)
		return
	}
	if err := h.store.DeleteArea(r.Context(), id, areaID); err != nil {
		writeStoreError(w, "delete service area", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
