package dto

import (
	"fmt"
	"strings"

	"itinerary-route-service/internal/domain"
)

// PlanRequest is the structured problem handed over by the instruction
// parser. Windows are [open, close] pairs in minutes since midnight.
type PlanRequest struct {
	Scenario string `json:"scenario,omitempty"`

	LocationNames     []string `json:"location_names,omitempty"`
	LocationAddresses []string `json:"location_addresses,omitempty"`
	LocationDurations []int    `json:"location_durations,omitempty"`
	TimeWindows       [][]int  `json:"time_windows,omitempty"`

	Depot                *int  `json:"depot,omitempty"`
	NumVehicles          *int  `json:"num_vehicles,omitempty"`
	DepotTimeWindow      []int `json:"depot_time_window,omitempty"`
	DepotDepartureWindow []int `json:"depot_departure_window,omitempty"`
	DepotReturnWindow    []int `json:"depot_return_window,omitempty"`
	CustomEndIndex       *int  `json:"custom_end_index,omitempty"`

	PrecedenceConstraints [][]string `json:"precedence_constraints,omitempty"`

	TravelTime     [][]int `json:"travel_time,omitempty"`
	TravelDistance [][]int `json:"travel_distance,omitempty"`

	TimeBudgetMS int `json:"time_budget_ms,omitempty"`
}

// FieldError reports a request that cannot be turned into a problem input.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Reason }

func fieldErrorf(field, format string, args ...any) *FieldError {
	return &FieldError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ToProblemInput checks the request's shape and converts it. Semantic
// checks (window order, matrix contents, precedence names) are left to
// domain.NewProblem.
func (r *PlanRequest) ToProblemInput() (domain.ProblemInput, error) {
	var in domain.ProblemInput

	if r.Depot != nil && *r.Depot != domain.DepotIndex {
		return in, fieldErrorf("depot", "the depot must be the first location (index 0), got %d", *r.Depot)
	}
	if r.NumVehicles != nil && *r.NumVehicles != 1 {
		return in, fieldErrorf("num_vehicles", "only a single vehicle is supported, got %d", *r.NumVehicles)
	}

	n := len(r.LocationAddresses)
	if n == 0 {
		n = len(r.LocationNames)
	}
	if n == 0 {
		return in, fieldErrorf("location_addresses", "at least one location is required")
	}

	lists := []struct {
		field string
		size  int
	}{
		{"location_names", len(r.LocationNames)},
		{"location_addresses", len(r.LocationAddresses)},
		{"location_durations", len(r.LocationDurations)},
		{"time_windows", len(r.TimeWindows)},
	}
	for _, l := range lists {
		if l.size != 0 && l.size != n {
			return in, fieldErrorf(l.field, "expected %d entries, got %d", n, l.size)
		}
	}

	in.Locations = make([]domain.Location, n)
	for i := range in.Locations {
		loc := domain.Location{Window: domain.FullDay}
		if len(r.LocationNames) > 0 {
			loc.Name = r.LocationNames[i]
		}
		if len(r.LocationAddresses) > 0 {
			loc.Address = strings.TrimSpace(r.LocationAddresses[i])
		}
		if len(r.LocationDurations) > 0 {
			loc.ServiceMinutes = r.LocationDurations[i]
		}
		if len(r.TimeWindows) > 0 {
			field := fmt.Sprintf("time_windows[%d]", i)
			w, err := toWindow(field, r.TimeWindows[i])
			if err != nil {
				return in, err
			}
			if w == nil {
				return in, fieldErrorf(field, "expected an [open, close] pair")
			}
			loc.Window = *w
		}
		in.Locations[i] = loc
	}

	var err error
	if in.DepotWindow, err = toWindow("depot_time_window", r.DepotTimeWindow); err != nil {
		return in, err
	}
	if in.DepartureWindow, err = toWindow("depot_departure_window", r.DepotDepartureWindow); err != nil {
		return in, err
	}
	if in.ReturnWindow, err = toWindow("depot_return_window", r.DepotReturnWindow); err != nil {
		return in, err
	}

	if r.CustomEndIndex != nil {
		end := *r.CustomEndIndex
		in.CustomEnd = &end
	}

	for i, pair := range r.PrecedenceConstraints {
		if len(pair) != 2 {
			return in, fieldErrorf(fmt.Sprintf("precedence_constraints[%d]", i), "expected a [before, after] pair of stop names")
		}
		in.Precedences = append(in.Precedences, domain.PrecedenceRule{Before: pair[0], After: pair[1]})
	}

	if r.TravelTime == nil && r.TravelDistance != nil {
		return in, fieldErrorf("travel_time", "required when travel_distance is given")
	}
	if r.TravelTime == nil {
		for i, loc := range in.Locations {
			if loc.Address == "" {
				return in, fieldErrorf(fmt.Sprintf("location_addresses[%d]", i), "an address is required when travel_time is not given")
			}
		}
	}
	in.TravelMinutes = r.TravelTime
	in.DistanceMeters = r.TravelDistance

	return in, nil
}

func toWindow(field string, pair []int) (*domain.TimeWindow, error) {
	if pair == nil {
		return nil, nil
	}
	if len(pair) != 2 {
		return nil, fieldErrorf(field, "expected an [open, close] pair, got %d values", len(pair))
	}
	return &domain.TimeWindow{Open: pair[0], Close: pair[1]}, nil
}

type StopResponse struct {
	Index          int    `json:"index"`
	Name           string `json:"name"`
	Address        string `json:"address"`
	Arrival        string `json:"arrival"`
	Departure      string `json:"departure"`
	ArrivalMinute  int    `json:"arrival_minute"`
	DepartMinute   int    `json:"departure_minute"`
	ServiceMinutes int    `json:"service_minutes"`
}

type LegResponse struct {
	From           int    `json:"from"`
	To             int    `json:"to"`
	DepartAt       string `json:"depart_at"`
	TravelMinutes  int    `json:"travel_minutes"`
	DistanceMeters int    `json:"distance_meters"`
	WaitMinutes    int    `json:"wait_minutes"`
	ArriveAt       string `json:"arrive_at"`
	DwellMinutes   int    `json:"dwell_minutes"`
	Unreachable    bool   `json:"unreachable,omitempty"`
}

// ArrivalDepartureResponse is the per-node lookup for map rendering.
type ArrivalDepartureResponse struct {
	Node      int    `json:"node"`
	Arrival   string `json:"arrival"`
	Departure string `json:"departure"`
}

type TripSummaryResponse struct {
	TotalStops          int    `json:"total_stops"`
	TotalDistanceMeters int    `json:"total_distance"`
	TotalTravelMinutes  int    `json:"total_travel_time"`
	TotalStopMinutes    int    `json:"total_stop_time"`
	TotalWaitMinutes    int    `json:"total_wait_time"`
	StartTime           string `json:"start_time"`
	EndTime             string `json:"end_time"`
	ElapsedMinutes      int    `json:"elapsed_minutes"`
	ReturnToStart       bool   `json:"return_to_start"`
}

type SearchResponse struct {
	Passes         int   `json:"passes"`
	Improvements   int   `json:"improvements"`
	RepairMoves    int   `json:"repair_moves"`
	UsedExhaustive bool  `json:"used_exhaustive"`
	TimedOut       bool  `json:"timed_out"`
	DurationMS     int64 `json:"duration_ms"`
}

type PlanResponse struct {
	Order                []int                      `json:"order"`
	Stops                []StopResponse             `json:"stops"`
	Legs                 []LegResponse              `json:"legs"`
	ArrivalDepartureInfo []ArrivalDepartureResponse `json:"arrival_departure_info"`
	TripSummary          TripSummaryResponse        `json:"trip_summary"`
	RouteText            string                     `json:"route_text"`
	Warnings             []string                   `json:"warnings,omitempty"`
	Search               SearchResponse             `json:"search"`
}

// NoSolutionResponse is sent with 422 when no order satisfies the constraints.
type NoSolutionResponse struct {
	Error     string `json:"error"`
	Reason    string `json:"reason"`
	Violation string `json:"violation,omitempty"`
}

type FieldErrorResponse struct {
	Error  string `json:"error"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}
