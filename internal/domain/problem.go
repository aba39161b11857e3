package domain

import (
	"fmt"
	"strings"
)

// DepotIndex is the origin of every route.
const DepotIndex = 0

// PrecedenceRule requires the stop named Before to be fully serviced
// before the vehicle arrives at the stop named After.
type PrecedenceRule struct {
	Before string `json:"before"`
	After  string `json:"after"`
}

// Precedence is a resolved PrecedenceRule expressed as location indices.
type Precedence struct {
	Before int
	After  int
}

// ProblemInput carries the raw, unvalidated data of a routing instance.
//
// DistanceMeters may be nil, in which case every distance is zero.
//
// DepotWindow is the legacy single shared window: it stands in for whichever
// of DepartureWindow and ReturnWindow is missing. When it is missing too the
// depot location's own window is used.
type ProblemInput struct {
	Locations       []Location
	TravelMinutes   [][]int
	DistanceMeters  [][]int
	Unreachable     [][]bool
	DepotWindow     *TimeWindow
	DepartureWindow *TimeWindow
	ReturnWindow    *TimeWindow
	CustomEnd       *int
	Precedences     []PrecedenceRule
}

// Problem is a validated, immutable routing instance.
// Build it with NewProblem; the zero value is not usable.
type Problem struct {
	locations   []Location
	travel      [][]int
	distance    [][]int
	unreachable [][]bool
	departure   TimeWindow
	ret         TimeWindow
	customEnd   int
	precedences []Precedence
}

// NewProblem validates in and returns the immutable instance.
// All failures are *DefinitionError values.
func NewProblem(in ProblemInput) (*Problem, error) {
	n := len(in.Locations)
	if n == 0 {
		return nil, definitionErrorf("locations", "at least the depot is required")
	}

	locations := make([]Location, n)
	for i, loc := range in.Locations {
		if err := loc.Window.validate(); err != nil {
			return nil, definitionErrorf(fmt.Sprintf("locations[%d].window", i), "%v", err)
		}
		if loc.ServiceMinutes < 0 {
			return nil, definitionErrorf(fmt.Sprintf("locations[%d].service_minutes", i), "must be non-negative, got %d", loc.ServiceMinutes)
		}
		loc.Name = strings.TrimSpace(loc.Name)
		if loc.Name == "" {
			loc.Name = fmt.Sprintf("Stop %d", i)
		}
		locations[i] = loc
	}

	travel, err := copyMatrix("travel_minutes", in.TravelMinutes, n)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		if travel[i][i] != 0 {
			return nil, definitionErrorf("travel_minutes", "diagonal entry [%d][%d] must be 0, got %d", i, i, travel[i][i])
		}
	}

	distance := zeroMatrix(n)
	if in.DistanceMeters != nil {
		if distance, err = copyMatrix("distance_meters", in.DistanceMeters, n); err != nil {
			return nil, err
		}
	}

	unreachable := make([][]bool, n)
	for i := range unreachable {
		unreachable[i] = make([]bool, n)
	}
	if in.Unreachable != nil {
		if len(in.Unreachable) != n {
			return nil, definitionErrorf("unreachable", "expected %d rows, got %d", n, len(in.Unreachable))
		}
		for i, row := range in.Unreachable {
			if len(row) != n {
				return nil, definitionErrorf("unreachable", "row %d: expected %d columns, got %d", i, n, len(row))
			}
			copy(unreachable[i], row)
		}
	}

	depotWindow := locations[DepotIndex].Window
	if in.DepotWindow != nil {
		if err := in.DepotWindow.validate(); err != nil {
			return nil, definitionErrorf("depot_time_window", "%v", err)
		}
		depotWindow = *in.DepotWindow
	}

	departure := depotWindow
	if in.DepartureWindow != nil {
		departure = *in.DepartureWindow
	}
	if err := departure.validate(); err != nil {
		return nil, definitionErrorf("depot_departure_window", "%v", err)
	}

	ret := depotWindow
	if in.ReturnWindow != nil {
		ret = *in.ReturnWindow
	}
	if err := ret.validate(); err != nil {
		return nil, definitionErrorf("depot_return_window", "%v", err)
	}

	customEnd := DepotIndex
	if in.CustomEnd != nil {
		if *in.CustomEnd < 0 || *in.CustomEnd >= n {
			return nil, definitionErrorf("custom_end_index", "%d is out of range [0, %d)", *in.CustomEnd, n)
		}
		customEnd = *in.CustomEnd
	}

	precedences, err := resolvePrecedences(locations, in.Precedences)
	if err != nil {
		return nil, err
	}

	return &Problem{
		locations:   locations,
		travel:      travel,
		distance:    distance,
		unreachable: unreachable,
		departure:   departure,
		ret:         ret,
		customEnd:   customEnd,
		precedences: precedences,
	}, nil
}

func zeroMatrix(n int) [][]int {
	m := make([][]int, n)
	for i := range m {
		m[i] = make([]int, n)
	}
	return m
}

func copyMatrix(field string, m [][]int, n int) ([][]int, error) {
	if len(m) != n {
		return nil, definitionErrorf(field, "expected %d rows, got %d", n, len(m))
	}

	out := make([][]int, n)
	for i, row := range m {
		if len(row) != n {
			return nil, definitionErrorf(field, "row %d: expected %d columns, got %d", i, n, len(row))
		}
		for j, v := range row {
			if v < 0 {
				return nil, definitionErrorf(field, "entry [%d][%d] must be non-negative, got %d", i, j, v)
			}
		}
		out[i] = append([]int(nil), row...)
	}
	return out, nil
}

// Size returns the number of locations, depot included.
func (p *Problem) Size() int { return len(p.locations) }

func (p *Problem) Location(i int) Location { return p.locations[i] }

// Travel returns the travel time in minutes from i to j. Matrices may be asymmetric.
func (p *Problem) Travel(i, j int) int { return p.travel[i][j] }

func (p *Problem) Distance(i, j int) int { return p.distance[i][j] }

// Unreachable reports whether the travel time from i to j is a penalty value
// standing in for a leg the mapping service could not route.
func (p *Problem) Unreachable(i, j int) bool { return p.unreachable[i][j] }

// Service returns the on-site duration at i. The depot has none.
func (p *Problem) Service(i int) int {
	if i == DepotIndex {
		return 0
	}
	return p.locations[i].ServiceMinutes
}

func (p *Problem) Window(i int) TimeWindow { return p.locations[i].Window }

func (p *Problem) DepartureWindow() TimeWindow { return p.departure }

func (p *Problem) ReturnWindow() TimeWindow { return p.ret }

// EndNode is the location every visit order terminates at.
func (p *Problem) EndNode() int { return p.customEnd }

func (p *Problem) ReturnsToDepot() bool { return p.customEnd == DepotIndex }

// Precedences returns a copy of the resolved precedence pairs.
func (p *Problem) Precedences() []Precedence {
	return append([]Precedence(nil), p.precedences...)
}

// OrderLength is the number of positions in any complete visit order.
func (p *Problem) OrderLength() int {
	if p.ReturnsToDepot() {
		return p.Size() + 1
	}
	return p.Size()
}
