package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itinerary-route-service/internal/adapters/distance"
	"itinerary-route-service/internal/domain"
	"itinerary-route-service/internal/ports"
)

// pairOnly hides GetDistances so the per-pair path is used.
type pairOnly struct{ ports.DistanceProvider }

type failingProvider struct{}

func (failingProvider) GetDistance(context.Context, string, string) (ports.DistanceResult, error) {
	return ports.DistanceResult{}, errors.New("quota exceeded")
}

func testPairs() []distance.MockPair {
	return []distance.MockPair{
		{From: "HUB", To: "A", Meters: 1000, Seconds: 300},
		{From: "HUB", To: "B", Meters: 2000, Seconds: 659},
		{From: "A", To: "B", Meters: 800, Seconds: 240},
	}
}

func TestBuildMatricesFromMatrixProvider(t *testing.T) {
	provider := distance.NewSymmetricMockDistanceProvider(testPairs())

	m, err := BuildMatrices(context.Background(), provider, []string{"HUB", " A ", "B"}, 0)
	require.NoError(t, err)

	assert.Equal(t, [][]int{
		{0, 5, 10},
		{5, 0, 4},
		{10, 4, 0},
	}, m.TravelMinutes)
	assert.Equal(t, [][]int{
		{0, 1000, 2000},
		{1000, 0, 800},
		{2000, 800, 0},
	}, m.DistanceMeters)
	for _, row := range m.Unreachable {
		for _, u := range row {
			assert.False(t, u)
		}
	}
}

func TestBuildMatricesPenalizesMissingRoutes(t *testing.T) {
	pairs := testPairs()
	pairs[2].Unreachable = true

	for name, provider := range map[string]ports.DistanceProvider{
		"matrix":   distance.NewSymmetricMockDistanceProvider(pairs),
		"pairwise": pairOnly{distance.NewSymmetricMockDistanceProvider(pairs)},
	} {
		t.Run(name, func(t *testing.T) {
			m, err := BuildMatrices(context.Background(), provider, []string{"HUB", "A", "B"}, 0)
			require.NoError(t, err)
			assert.Equal(t, DefaultPenaltyMinutes, m.TravelMinutes[1][2])
			assert.Equal(t, DefaultPenaltyMinutes, m.TravelMinutes[2][1])
			assert.True(t, m.Unreachable[1][2])
			assert.True(t, m.Unreachable[2][1])
			assert.False(t, m.Unreachable[0][1])
			assert.Equal(t, 5, m.TravelMinutes[0][1])
		})
	}
}

func TestBuildMatricesSameAddressIsFree(t *testing.T) {
	provider := distance.NewSymmetricMockDistanceProvider(testPairs())

	m, err := BuildMatrices(context.Background(), provider, []string{"HUB", "A", "HUB"}, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, m.TravelMinutes[0][2])
	assert.Equal(t, 0, m.TravelMinutes[2][0])
	assert.Equal(t, 5, m.TravelMinutes[2][1])
}

func TestBuildMatricesProviderFailure(t *testing.T) {
	_, err := BuildMatrices(context.Background(), failingProvider{}, []string{"HUB", "A"}, 0)
	require.ErrorIs(t, err, ErrMatrixUnavailable)

	_, err = BuildMatrices(context.Background(), nil, []string{"HUB", "A"}, 0)
	require.ErrorIs(t, err, ErrMatrixUnavailable)
}

func TestPlanItineraryFetchesMatrices(t *testing.T) {
	provider := distance.NewSymmetricMockDistanceProvider(testPairs())

	res, err := PlanItinerary(context.Background(), PlanItineraryRequest{
		Input: domain.ProblemInput{
			Locations: []domain.Location{
				{Name: "Hub", Address: "HUB", Window: domain.FullDay},
				{Name: "Alpha", Address: "A", Window: domain.FullDay, ServiceMinutes: 10},
				{Name: "Bravo", Address: "B", Window: domain.FullDay, ServiceMinutes: 10},
			},
			DepartureWindow: window(480, 480),
		},
	}, provider)
	require.NoError(t, err)

	it := res.Itinerary
	assert.Equal(t, 19, it.Summary.TotalTravelMinutes)
	assert.Equal(t, 3800, it.Summary.TotalDistanceMeters)
	assert.Equal(t, 480, it.Summary.StartTime)
	assert.Equal(t, 519, it.Summary.EndTime)
	assert.Empty(t, it.Warnings)
}

func TestPlanItineraryKeepsErrorKinds(t *testing.T) {
	_, err := PlanItinerary(context.Background(), PlanItineraryRequest{
		Input: domain.ProblemInput{},
	}, nil)
	require.ErrorIs(t, err, domain.ErrInvalidProblem)

	_, err = PlanItinerary(context.Background(), PlanItineraryRequest{
		Input: domain.ProblemInput{Locations: []domain.Location{{Address: "HUB"}, {Address: "A"}}},
	}, failingProvider{})
	require.ErrorIs(t, err, ErrMatrixUnavailable)
}
