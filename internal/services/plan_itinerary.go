package services

import (
	"context"
	"fmt"

	"itinerary-route-service/internal/domain"
	"itinerary-route-service/internal/ports"
)

type PlanItineraryRequest struct {
	Input          domain.ProblemInput
	Solve          SolveOptions
	PenaltyMinutes int
}

type PlanItineraryResult struct {
	Itinerary *domain.Itinerary
	Stats     SearchStats
}

// PlanItinerary builds the problem, solves it and extracts the itinerary.
//
// When the input carries no travel matrix, travel times and distances are
// fetched from provider using the location addresses. Errors keep their
// kind: definition errors match domain.ErrInvalidProblem, provider failures
// ErrMatrixUnavailable and empty searches ErrInfeasible.
func PlanItinerary(
	ctx context.Context,
	req PlanItineraryRequest,
	provider ports.DistanceProvider,
) (*PlanItineraryResult, error) {
	in := req.Input

	if in.TravelMinutes == nil && len(in.Locations) > 0 {
		addresses := make([]string, len(in.Locations))
		for i, loc := range in.Locations {
			addresses[i] = loc.Address
		}

		m, err := BuildMatrices(ctx, provider, addresses, req.PenaltyMinutes)
		if err != nil {
			return nil, fmt.Errorf("plan itinerary: %w", err)
		}
		in.TravelMinutes = m.TravelMinutes
		in.DistanceMeters = m.DistanceMeters
		in.Unreachable = m.Unreachable
	}

	p, err := domain.NewProblem(in)
	if err != nil {
		return nil, fmt.Errorf("plan itinerary: %w", err)
	}

	sol, err := Solve(ctx, p, req.Solve)
	if err != nil {
		return nil, fmt.Errorf("plan itinerary: %w", err)
	}

	return &PlanItineraryResult{
		Itinerary: Extract(p, sol),
		Stats:     sol.Stats,
	}, nil
}
