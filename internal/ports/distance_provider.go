package ports

import (
	"context"
	"errors"
)

// ErrNoRoute reports that a provider knows both places but found no route
// between them.
var ErrNoRoute = errors.New("no route between locations")

// Distance and travel duration between two locations.
// Unreachable is set when the provider answered but had no route; the
// numeric fields are then meaningless.
type DistanceResult struct {
	DistanceMeters  int
	DurationSeconds int
	Unreachable     bool
}

// Contract for retrieving travel distance and duration between locations.
type DistanceProvider interface {
	// Return travel distance and estimated duration between two locations.
	GetDistance(ctx context.Context, origin string, destination string) (DistanceResult, error)
}
