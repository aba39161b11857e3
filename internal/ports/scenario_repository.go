package ports

import (
	"context"
	"errors"

	"itinerary-route-service/internal/domain"
)

var ErrScenarioNotFound = errors.New("scenario not found")

// Port: a boundary for saved, named plan requests.
type ScenarioRepository interface {
	// List every saved scenario ordered by name.
	ListScenarios(ctx context.Context) ([]domain.Scenario, error)
	// Return one scenario or ErrScenarioNotFound.
	GetScenario(ctx context.Context, name string) (domain.Scenario, error)
	// Insert or replace a scenario by name.
	SaveScenario(ctx context.Context, s domain.Scenario) error
}
