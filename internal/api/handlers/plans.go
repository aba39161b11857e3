package handlers

import (
	"bytes"
	"errors"
	"log"
	"net/http"
	"time"

	"itinerary-route-service/internal/api/dto"
	"itinerary-route-service/internal/domain"
	"itinerary-route-service/internal/ports"
	"itinerary-route-service/internal/services"
)

type PlanHandler struct {
	// Provider may be nil; requests must then carry travel_time.
	Provider       ports.DistanceProvider
	Scenarios      ports.ScenarioRepository
	Solve          services.SolveOptions
	PenaltyMinutes int
	// MaxTimeBudget caps time_budget_ms. Zero means no cap.
	MaxTimeBudget time.Duration
}

// Plan validates a structured problem, solves it and returns the itinerary.
// A request may name a saved scenario instead of carrying the problem inline.
func (h *PlanHandler) Plan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.PlanRequest
	defer r.Body.Close()
	if err := decodeStrict(r.Body, &req); err != nil {
		writeDecodeError(w, r, err)
		return
	}

	if req.Scenario != "" {
		saved, ok := h.loadScenario(w, r, req)
		if !ok {
			return
		}
		req = saved
	}

	if req.TimeBudgetMS < 0 {
		writeFieldError(w, r, "time_budget_ms", "must not be negative")
		return
	}

	in, err := req.ToProblemInput()
	if err != nil {
		var fe *dto.FieldError
		if errors.As(err, &fe) {
			writeFieldError(w, r, fe.Field, fe.Reason)
			return
		}
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	res, err := services.PlanItinerary(r.Context(), services.PlanItineraryRequest{
		Input:          in,
		Solve:          h.solveOptions(req.TimeBudgetMS),
		PenaltyMinutes: h.PenaltyMinutes,
	}, h.Provider)
	if err != nil {
		h.writePlanError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, toPlanResponse(res))
}

// loadScenario replaces req with the saved request it names. Only
// time_budget_ms may accompany a scenario name and it overrides the saved one.
func (h *PlanHandler) loadScenario(w http.ResponseWriter, r *http.Request, req dto.PlanRequest) (dto.PlanRequest, bool) {
	if hasInlineProblem(req) {
		writeFieldError(w, r, "scenario", "cannot be combined with an inline problem")
		return req, false
	}
	if h.Scenarios == nil {
		writeError(w, r, http.StatusNotFound, "scenario not found")
		return req, false
	}

	sc, err := h.Scenarios.GetScenario(r.Context(), req.Scenario)
	if errors.Is(err, ports.ErrScenarioNotFound) {
		writeError(w, r, http.StatusNotFound, "scenario not found")
		return req, false
	}
	if err != nil {
		log.Printf("get scenario failed: name=%q err=%v", req.Scenario, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return req, false
	}

	var saved dto.PlanRequest
	if err := decodeStrict(bytes.NewReader(sc.Payload), &saved); err != nil || saved.Scenario != "" {
		log.Printf("saved scenario unusable: name=%q err=%v", sc.Name, err)
		writeError(w, r, http.StatusInternalServerError, "saved scenario is not a valid plan request")
		return req, false
	}
	if req.TimeBudgetMS != 0 {
		saved.TimeBudgetMS = req.TimeBudgetMS
	}
	return saved, true
}

func (h *PlanHandler) solveOptions(budgetMS int) services.SolveOptions {
	opts := h.Solve
	if budgetMS > 0 {
		opts.TimeBudget = time.Duration(budgetMS) * time.Millisecond
	}
	if h.MaxTimeBudget > 0 && (opts.TimeBudget <= 0 || opts.TimeBudget > h.MaxTimeBudget) {
		opts.TimeBudget = h.MaxTimeBudget
	}
	return opts
}

func (h *PlanHandler) writePlanError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		defErr *domain.DefinitionError
		noSol  *services.NoSolutionError
	)

	switch {
	case errors.As(err, &defErr):
		writeFieldError(w, r, defErr.Field, defErr.Reason)
	case errors.As(err, &noSol):
		res := dto.NoSolutionResponse{Error: "no feasible route", Reason: string(noSol.Reason)}
		if noSol.Violation != nil {
			res.Violation = noSol.Violation.String()
		}
		writeJSON(w, r, http.StatusUnprocessableEntity, res)
	case errors.Is(err, services.ErrMatrixUnavailable):
		log.Printf("plan itinerary failed: %v", err)
		writeError(w, r, http.StatusBadGateway, "travel times are unavailable")
	default:
		log.Printf("plan itinerary failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

func writeFieldError(w http.ResponseWriter, r *http.Request, field, reason string) {
	writeJSON(w, r, http.StatusBadRequest, dto.FieldErrorResponse{
		Error:  "invalid problem",
		Field:  field,
		Reason: reason,
	})
}

func hasInlineProblem(req dto.PlanRequest) bool {
	return len(req.LocationNames) > 0 || len(req.LocationAddresses) > 0 ||
		len(req.LocationDurations) > 0 || len(req.TimeWindows) > 0 ||
		req.Depot != nil || req.NumVehicles != nil || req.CustomEndIndex != nil ||
		req.DepotTimeWindow != nil || req.DepotDepartureWindow != nil || req.DepotReturnWindow != nil ||
		len(req.PrecedenceConstraints) > 0 || req.TravelTime != nil || req.TravelDistance != nil
}

func toPlanResponse(res *services.PlanItineraryResult) dto.PlanResponse {
	it := res.Itinerary

	out := dto.PlanResponse{
		Order:                []int(it.Order),
		Stops:                make([]dto.StopResponse, 0, len(it.Stops)),
		Legs:                 make([]dto.LegResponse, 0, len(it.Legs)),
		ArrivalDepartureInfo: make([]dto.ArrivalDepartureResponse, 0, len(it.Timeline)),
		RouteText:            it.RouteText,
		Warnings:             it.Warnings,
		TripSummary: dto.TripSummaryResponse{
			TotalStops:          it.Summary.StopCount,
			TotalDistanceMeters: it.Summary.TotalDistanceMeters,
			TotalTravelMinutes:  it.Summary.TotalTravelMinutes,
			TotalStopMinutes:    it.Summary.TotalServiceMinutes,
			TotalWaitMinutes:    it.Summary.TotalWaitMinutes,
			StartTime:           domain.FormatClock(it.Summary.StartTime),
			EndTime:             domain.FormatClock(it.Summary.EndTime),
			ElapsedMinutes:      it.Summary.ElapsedMinutes,
			ReturnToStart:       it.Summary.ReturnToStart,
		},
		Search: dto.SearchResponse{
			Passes:         res.Stats.Passes,
			Improvements:   res.Stats.Improvements,
			RepairMoves:    res.Stats.RepairMoves,
			UsedExhaustive: res.Stats.UsedExhaustive,
			TimedOut:       res.Stats.TimedOut,
			DurationMS:     res.Stats.Duration.Milliseconds(),
		},
	}

	for _, s := range it.Stops {
		out.Stops = append(out.Stops, dto.StopResponse{
			Index:          s.Index,
			Name:           s.Name,
			Address:        s.Address,
			Arrival:        domain.FormatClock(s.Arrival),
			Departure:      domain.FormatClock(s.Departure),
			ArrivalMinute:  s.Arrival,
			DepartMinute:   s.Departure,
			ServiceMinutes: s.ServiceMinutes,
		})
	}
	for _, l := range it.Legs {
		out.Legs = append(out.Legs, dto.LegResponse{
			From:           l.From,
			To:             l.To,
			DepartAt:       domain.FormatClock(l.DepartAt),
			TravelMinutes:  l.TravelMinutes,
			DistanceMeters: l.DistanceMeters,
			WaitMinutes:    l.WaitMinutes,
			ArriveAt:       domain.FormatClock(l.ArriveAt),
			DwellMinutes:   l.DwellMinutes,
			Unreachable:    l.Unreachable,
		})
	}
	for _, ad := range it.Timeline {
		out.ArrivalDepartureInfo = append(out.ArrivalDepartureInfo, dto.ArrivalDepartureResponse{
			Node:      ad.Node,
			Arrival:   ad.Arrival,
			Departure: ad.Departure,
		})
	}

	return out
}
