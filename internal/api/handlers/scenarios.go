package handlers

import (
	"bytes"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"itinerary-route-service/internal/api/dto"
	"itinerary-route-service/internal/domain"
	"itinerary-route-service/internal/ports"
)

const maxScenarioBytes = 1 << 20

// ScenarioHandler stores and lists named plan requests.
type ScenarioHandler struct {
	Repo ports.ScenarioRepository
}

func (h *ScenarioHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	scenarios, err := h.Repo.ListScenarios(r.Context())
	if err != nil {
		log.Printf("list scenarios failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListScenariosResponse{
		Scenarios: make([]dto.ScenarioSummaryResponse, 0, len(scenarios)),
	}
	for _, sc := range scenarios {
		res.Scenarios = append(res.Scenarios, dto.ScenarioSummaryResponse{
			Name:      sc.Name,
			UpdatedAt: sc.UpdatedAt,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}

// Item serves GET and PUT on /scenarios/{name}.
func (h *ScenarioHandler) Item(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, "/scenarios/"))
	if name == "" || strings.Contains(name, "/") {
		writeError(w, r, http.StatusNotFound, "scenario not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, name)
	case http.MethodPut:
		h.put(w, r, name)
	default:
		w.Header().Set("Allow", http.MethodGet+", "+http.MethodPut)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *ScenarioHandler) get(w http.ResponseWriter, r *http.Request, name string) {
	sc, err := h.Repo.GetScenario(r.Context(), name)
	if errors.Is(err, ports.ErrScenarioNotFound) {
		writeError(w, r, http.StatusNotFound, "scenario not found")
		return
	}
	if err != nil {
		log.Printf("get scenario failed: name=%q err=%v", name, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ScenarioResponse{
		Name:      sc.Name,
		Request:   sc.Payload,
		UpdatedAt: sc.UpdatedAt,
	})
}

// put stores the body verbatim once it parses as a self-contained plan request.
func (h *ScenarioHandler) put(w http.ResponseWriter, r *http.Request, name string) {
	defer r.Body.Close()
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxScenarioBytes))
	if err != nil {
		writeError(w, r, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}

	var req dto.PlanRequest
	if err := decodeStrict(bytes.NewReader(body), &req); err != nil {
		writeDecodeError(w, r, err)
		return
	}
	if req.Scenario != "" {
		writeFieldError(w, r, "scenario", "a saved scenario cannot refer to another scenario")
		return
	}
	if _, err := req.ToProblemInput(); err != nil {
		var fe *dto.FieldError
		if errors.As(err, &fe) {
			writeFieldError(w, r, fe.Field, fe.Reason)
			return
		}
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Repo.SaveScenario(r.Context(), domain.Scenario{Name: name, Payload: body}); err != nil {
		log.Printf("save scenario failed: name=%q err=%v", name, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	h.get(w, r, name)
}
