package distance

import (
	"context"
	"fmt"

	"itinerary-route-service/internal/ports"
)

// MockPair is one directed entry of a MockDistanceProvider.
type MockPair struct {
	From, To    string
	Meters      int
	Seconds     int
	Unreachable bool
}

// MockDistanceProvider serves a fixed table of directed pairs. Pairs that are
// missing or marked unreachable report ports.ErrNoRoute.
type MockDistanceProvider struct {
	m map[string]ports.DistanceResult
}

func NewMockDistanceProvider(pairs []MockPair) *MockDistanceProvider {
	m := make(map[string]ports.DistanceResult, len(pairs))
	for _, p := range pairs {
		m[p.From+"|"+p.To] = ports.DistanceResult{
			DistanceMeters:  p.Meters,
			DurationSeconds: p.Seconds,
			Unreachable:     p.Unreachable,
		}
	}
	return &MockDistanceProvider{m: m}
}

// NewSymmetricMockDistanceProvider registers every pair in both directions.
func NewSymmetricMockDistanceProvider(pairs []MockPair) *MockDistanceProvider {
	both := make([]MockPair, 0, 2*len(pairs))
	for _, p := range pairs {
		both = append(both, p)
		p.From, p.To = p.To, p.From
		both = append(both, p)
	}
	return NewMockDistanceProvider(both)
}

func (p *MockDistanceProvider) GetDistance(ctx context.Context, origin, destination string) (ports.DistanceResult, error) {
	r, ok := p.m[origin+"|"+destination]
	if !ok || r.Unreachable {
		return ports.DistanceResult{}, fmt.Errorf("missing pair %q -> %q: %w", origin, destination, ports.ErrNoRoute)
	}

	return r, nil
}

// GetDistances answers a whole row; missing pairs come back flagged unreachable.
func (p *MockDistanceProvider) GetDistances(ctx context.Context, origin string, destinations []string) (map[string]ports.DistanceResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make(map[string]ports.DistanceResult, len(destinations))
	for _, d := range destinations {
		r, ok := p.m[origin+"|"+d]
		if !ok {
			r = ports.DistanceResult{Unreachable: true}
		}
		out[d] = r
	}
	return out, nil
}
