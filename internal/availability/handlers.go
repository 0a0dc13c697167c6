package availability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mountly/coverage-backend/internal/httputil"
	"github.com/mountly/coverage-backend/internal/zipcode"
)

type availabilityQuery struct {
	Zip      string `validate:"required,zipcode"`
	Date     string `validate:"required,isodate"`
	Time     string `validate:"required,hhmm"`
	Duration int    `validate:"required,min=1,max=480"`
}

type slotsQuery struct {
	Zip      string `validate:"required,zipcode"`
	Date     string `validate:"required,isodate"`
	Duration int    `validate:"required,min=1,max=480"`
}

type Handlers struct {
	finder   *Finder
	validate *validator.Validate
}

func NewHandlers(f *Finder) *Handlers {
	return &Handlers{finder: f, validate: zipcode.NewValidator()}
}

func durationParam(r *http.Request) int {
	n, _ := strconv.Atoi(r.URL.Query().Get("duration"))
	return n
}

// GetAvailability answers 400 for malformed parameters; otherwise 200 with a
// possibly empty list.
func (h *Handlers) GetAvailability(w http.ResponseWriter, r *http.Request) {
	q := availabilityQuery{
		Zip:      r.URL.Query().Get("zip"),
		Date:     r.URL.Query().Get("date"),
		Time:     r.URL.Query().Get("time"),
		Duration: durationParam(r),
	}
	if err := h.validate.Struct(q); err != nil {
		http.Error(w, "Invalid query: "+err.Error(), http.StatusBadRequest)
		return
	}

	start := time.Now()
	out := h.finder.FindAvailableWorkers(r.Context(), q.Zip, q.Date, q.Time, q.Duration)
	httputil.AddServerTiming(w, map[string]time.Duration{"availability": time.Since(start)})
	httputil.WriteJSON(w, out)
}

func (h *Handlers) GetSlots(w http.ResponseWriter, r *http.Request) {
	q := slotsQuery{
		Zip:      r.URL.Query().Get("zip"),
		Date:     r.URL.Query().Get("date"),
		Duration: durationParam(r),
	}
	if err := h.validate.Struct(q); err != nil {
		http.Error(w, "Invalid query: "+err.Error(), http.StatusBadRequest)
		return
	}

	start := time.Now()
	out := h.finder.Slots(r.Context(), q.Zip, q.Date, q.Duration)
	httputil.AddServerTiming(w, map[string]time.Duration{"slots": time.Since(start)})
	httputil.WriteJSON(w, out)
}
