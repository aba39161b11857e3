package handlers

import (
	"net/http"
)

// HealthHandler provides a minimal liveness check endpoint. It also tells
// clients whether addresses can be resolved or travel_time is mandatory.
type HealthHandler struct {
	ProviderConfigured bool
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	travelTimes := "inline_only"
	if h.ProviderConfigured {
		travelTimes = "provider"
	}

	res := map[string]string{"status": "ok", "travel_times": travelTimes}
	writeJSON(w, r, http.StatusOK, res)
}
