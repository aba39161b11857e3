package ports

import "context"

// Optional extension of DistanceProvider that supports batched lookups.
// Matrix construction prefers it and fetches one origin row per call.
type DistanceMatrixProvider interface {
	DistanceProvider
	// Return distances from one origin to many destinations. Destinations
	// without a route are reported with Unreachable set.
	GetDistances(ctx context.Context, origin string, destinations []string) (map[string]DistanceResult, error)
}
