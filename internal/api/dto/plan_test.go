package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itinerary-route-service/internal/domain"
)

func TestToProblemInput(t *testing.T) {
	var req PlanRequest
	require.NoError(t, json.Unmarshal([]byte(`{
		"location_names": ["Home", "Post office", "Gym"],
		"location_addresses": [" 1 Main St ", "2 Oak Ave", "3 Elm Rd"],
		"location_durations": [0, 15, 60],
		"time_windows": [[0, 1439], [540, 1020], [360, 1320]],
		"depot": 0,
		"num_vehicles": 1,
		"depot_time_window": [480, 1200],
		"custom_end_index": 2,
		"precedence_constraints": [["Post office", "Gym"]]
	}`), &req))

	in, err := req.ToProblemInput()
	require.NoError(t, err)

	assert.Equal(t, []domain.Location{
		{Name: "Home", Address: "1 Main St", Window: domain.FullDay},
		{Name: "Post office", Address: "2 Oak Ave", ServiceMinutes: 15, Window: domain.TimeWindow{Open: 540, Close: 1020}},
		{Name: "Gym", Address: "3 Elm Rd", ServiceMinutes: 60, Window: domain.TimeWindow{Open: 360, Close: 1320}},
	}, in.Locations)
	assert.Equal(t, &domain.TimeWindow{Open: 480, Close: 1200}, in.DepotWindow)
	assert.Nil(t, in.DepartureWindow)
	assert.Nil(t, in.ReturnWindow)
	require.NotNil(t, in.CustomEnd)
	assert.Equal(t, 2, *in.CustomEnd)
	assert.Equal(t, []domain.PrecedenceRule{{Before: "Post office", After: "Gym"}}, in.Precedences)
	assert.Nil(t, in.TravelMinutes)
}

func TestToProblemInputDefaults(t *testing.T) {
	req := PlanRequest{
		LocationNames: []string{"Home", "Shop"},
		TravelTime:    [][]int{{0, 5}, {5, 0}},
	}

	in, err := req.ToProblemInput()
	require.NoError(t, err)
	assert.Equal(t, domain.FullDay, in.Locations[1].Window)
	assert.Zero(t, in.Locations[1].ServiceMinutes)
	assert.Nil(t, in.DistanceMeters)
}

func TestToProblemInputFieldErrors(t *testing.T) {
	depot := 1
	cases := map[string]struct {
		req   PlanRequest
		field string
	}{
		"empty":           {PlanRequest{}, "location_addresses"},
		"depot not first": {PlanRequest{LocationNames: []string{"a", "b"}, Depot: &depot}, "depot"},
		"distance only": {
			PlanRequest{LocationNames: []string{"a"}, TravelDistance: [][]int{{0}}},
			"travel_time",
		},
		"bad pair": {
			PlanRequest{LocationNames: []string{"a"}, TravelTime: [][]int{{0}}, PrecedenceConstraints: [][]string{{"a"}}},
			"precedence_constraints[0]",
		},
		"return window": {
			PlanRequest{LocationNames: []string{"a"}, TravelTime: [][]int{{0}}, DepotReturnWindow: []int{1, 2, 3}},
			"depot_return_window",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := tc.req.ToProblemInput()
			var fe *FieldError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tc.field, fe.Field)
		})
	}
}
