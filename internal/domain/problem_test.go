package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func squareInput(names ...string) ProblemInput {
	n := len(names)
	locs := make([]Location, n)
	travel := make([][]int, n)
	dist := make([][]int, n)
	for i, name := range names {
		locs[i] = Location{Name: name, Window: FullDay, ServiceMinutes: 10}
		travel[i] = make([]int, n)
		dist[i] = make([]int, n)
		for j := range travel[i] {
			if i != j {
				travel[i][j] = 15
				dist[i][j] = 1000
			}
		}
	}
	return ProblemInput{Locations: locs, TravelMinutes: travel, DistanceMeters: dist}
}

func windowPtr(open, close int) *TimeWindow { return &TimeWindow{Open: open, Close: close} }

func intPtr(v int) *int { return &v }

func TestNewProblemDefaultsDepotWindows(t *testing.T) {
	in := squareInput("Home", "Bakery")
	in.DepotWindow = windowPtr(480, 1200)

	p, err := NewProblem(in)
	require.NoError(t, err)
	assert.Equal(t, TimeWindow{Open: 480, Close: 1200}, p.DepartureWindow())
	assert.Equal(t, TimeWindow{Open: 480, Close: 1200}, p.ReturnWindow())

	in.DepartureWindow = windowPtr(540, 540)
	p, err = NewProblem(in)
	require.NoError(t, err)
	assert.Equal(t, TimeWindow{Open: 540, Close: 540}, p.DepartureWindow())
	assert.Equal(t, TimeWindow{Open: 480, Close: 1200}, p.ReturnWindow())
}

func TestNewProblemFallsBackToDepotLocationWindow(t *testing.T) {
	in := squareInput("Home", "Bakery")
	in.Locations[0].Window = TimeWindow{Open: 360, Close: 1320}

	p, err := NewProblem(in)
	require.NoError(t, err)
	assert.Equal(t, in.Locations[0].Window, p.DepartureWindow())
	assert.Equal(t, in.Locations[0].Window, p.ReturnWindow())
	assert.True(t, p.ReturnsToDepot())
	assert.Equal(t, 3, p.OrderLength())
}

func TestNewProblemDepotHasNoService(t *testing.T) {
	in := squareInput("Home", "Bakery")
	p, err := NewProblem(in)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Service(0))
	assert.Equal(t, 10, p.Service(1))
}

func TestNewProblemCustomEnd(t *testing.T) {
	in := squareInput("Home", "Bakery", "Office")
	in.CustomEnd = intPtr(2)

	p, err := NewProblem(in)
	require.NoError(t, err)
	assert.Equal(t, 2, p.EndNode())
	assert.False(t, p.ReturnsToDepot())
	assert.Equal(t, 3, p.OrderLength())

	in.CustomEnd = intPtr(0)
	p, err = NewProblem(in)
	require.NoError(t, err)
	assert.True(t, p.ReturnsToDepot())
}

func TestNewProblemIsImmutable(t *testing.T) {
	in := squareInput("Home", "Bakery")
	p, err := NewProblem(in)
	require.NoError(t, err)

	in.TravelMinutes[0][1] = 999
	in.Locations[1].Name = "Changed"
	assert.Equal(t, 15, p.Travel(0, 1))
	assert.Equal(t, "Bakery", p.Location(1).Name)
}

func TestNewProblemResolvesPrecedenceNames(t *testing.T) {
	in := squareInput("Home", "Bank", "Shop")
	in.Precedences = []PrecedenceRule{
		{Before: "bank", After: " Shop "},
		{Before: "Bank", After: "Shop"},
	}

	p, err := NewProblem(in)
	require.NoError(t, err)
	assert.Equal(t, []Precedence{{Before: 1, After: 2}}, p.Precedences())
}

func TestNewProblemRejectsDefinitionErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *ProblemInput)
		field  string
	}{
		{
			name:   "no locations",
			mutate: func(in *ProblemInput) { in.Locations = nil },
			field:  "locations",
		},
		{
			name:   "window open after close",
			mutate: func(in *ProblemInput) { in.Locations[1].Window = TimeWindow{Open: 600, Close: 500} },
			field:  "locations[1].window",
		},
		{
			name:   "negative service",
			mutate: func(in *ProblemInput) { in.Locations[2].ServiceMinutes = -5 },
			field:  "locations[2].service_minutes",
		},
		{
			name:   "travel matrix not square",
			mutate: func(in *ProblemInput) { in.TravelMinutes[1] = []int{1, 0} },
			field:  "travel_minutes",
		},
		{
			name:   "travel matrix wrong size",
			mutate: func(in *ProblemInput) { in.TravelMinutes = in.TravelMinutes[:2] },
			field:  "travel_minutes",
		},
		{
			name:   "non-zero diagonal",
			mutate: func(in *ProblemInput) { in.TravelMinutes[2][2] = 3 },
			field:  "travel_minutes",
		},
		{
			name:   "negative distance",
			mutate: func(in *ProblemInput) { in.DistanceMeters[0][1] = -1 },
			field:  "distance_meters",
		},
		{
			name:   "departure window end before start",
			mutate: func(in *ProblemInput) { in.DepartureWindow = windowPtr(600, 540) },
			field:  "depot_departure_window",
		},
		{
			name:   "return window end before start",
			mutate: func(in *ProblemInput) { in.ReturnWindow = windowPtr(900, 100) },
			field:  "depot_return_window",
		},
		{
			name:   "custom end out of range",
			mutate: func(in *ProblemInput) { in.CustomEnd = intPtr(3) },
			field:  "custom_end_index",
		},
		{
			name:   "unknown precedence stop",
			mutate: func(in *ProblemInput) { in.Precedences = []PrecedenceRule{{Before: "Bank", After: "Moon"}} },
			field:  "precedence_constraints[0]",
		},
		{
			name:   "depot in precedence",
			mutate: func(in *ProblemInput) { in.Precedences = []PrecedenceRule{{Before: "Home", After: "Shop"}} },
			field:  "precedence_constraints[0]",
		},
		{
			name:   "self precedence",
			mutate: func(in *ProblemInput) { in.Precedences = []PrecedenceRule{{Before: "Shop", After: "Shop"}} },
			field:  "precedence_constraints[0]",
		},
		{
			name: "cyclic precedence",
			mutate: func(in *ProblemInput) {
				in.Precedences = []PrecedenceRule{{Before: "Bank", After: "Shop"}, {Before: "Shop", After: "Bank"}}
			},
			field: "precedence_constraints",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := squareInput("Home", "Bank", "Shop")
			tt.mutate(&in)

			_, err := NewProblem(in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidProblem))

			var defErr *DefinitionError
			require.True(t, errors.As(err, &defErr))
			assert.Equal(t, tt.field, defErr.Field)
		})
	}
}

func TestNewProblemRejectsAmbiguousPrecedenceName(t *testing.T) {
	in := squareInput("Home", "Shop", "Shop", "Bank")
	in.Precedences = []PrecedenceRule{{Before: "Bank", After: "Shop"}}

	_, err := NewProblem(in)
	require.ErrorIs(t, err, ErrInvalidProblem)
	assert.Contains(t, err.Error(), "ambiguous")
}

func TestFindCycleReportsPath(t *testing.T) {
	pairs := []Precedence{{Before: 1, After: 2}, {Before: 2, After: 3}, {Before: 3, After: 1}}
	assert.Equal(t, []int{1, 2, 3, 1}, findCycle(4, pairs))

	assert.Nil(t, findCycle(4, []Precedence{{Before: 1, After: 2}, {Before: 1, After: 3}, {Before: 3, After: 2}}))
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "09:20", FormatClock(560))
	assert.Equal(t, "00:00", FormatClock(0))
	assert.Equal(t, "25:05", FormatClock(1505))
	assert.Equal(t, "1 hours and 12 minutes", FormatDuration(72))
}
