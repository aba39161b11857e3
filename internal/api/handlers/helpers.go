package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"itinerary-route-service/internal/platform/obs"
)

var errTrailingData = errors.New("body must contain only one JSON object")

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode failed: req_id=%s method=%s path=%s err=%v",
			obs.RequestID(r.Context()), r.Method, r.URL.Path, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// decodeStrict reads exactly one JSON object and rejects unknown fields.
func decodeStrict(body io.Reader, v any) error {
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errTrailingData
	}
	return nil
}

// writeDecodeError maps a decodeStrict failure to a 400 response.
func writeDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errTrailingData) {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	writeError(w, r, http.StatusBadRequest, "invalid json body: "+err.Error())
}
