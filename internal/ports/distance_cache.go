package ports

import (
	"context"

	"itinerary-route-service/internal/domain"
)

// DistanceCache stores matrix results keyed by normalized origin and destination.
type DistanceCache interface {
	// GetMany returns the cached results found for origin; misses are absent from the map.
	GetMany(ctx context.Context, origin string, destinations []string) (map[string]DistanceResult, error)
	PutMany(ctx context.Context, origin string, results map[string]DistanceResult) error
}

// GeocodeCache stores resolved coordinates keyed by normalized address.
type GeocodeCache interface {
	GetMany(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error)
	PutMany(ctx context.Context, coords map[string]domain.Coordinates) error
}
