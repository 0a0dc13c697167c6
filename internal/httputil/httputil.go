package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

func WriteJSON(w http.ResponseWriter, v any) {
	WriteJSONStatus(w, http.StatusOK, v)
}

func WriteJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// AddServerTiming appends one Server-Timing metric per name/duration pair.
func AddServerTiming(w http.ResponseWriter, metrics map[string]time.Duration) {
	if len(metrics) == 0 {
		return
	}
	parts := make([]string, 0, len(metrics))
	for name, d := range metrics {
		parts = append(parts, fmt.Sprintf("%s;dur=%.1f", name, float64(d.Microseconds())/1000))
	}
	// Additive header (can call multiple times)
	w.Header().Add("Server-Timing", strings.Join(parts, ", "))
}
