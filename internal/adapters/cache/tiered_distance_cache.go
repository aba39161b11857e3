package cache

import (
	"context"
	"fmt"
	"log"

	"itinerary-route-service/internal/ports"
)

// TieredDistanceCache consults its layers in order, fastest first. Hits
// from a slower layer are copied into the faster ones.
type TieredDistanceCache struct {
	layers []ports.DistanceCache
}

// NewTieredDistanceCache skips nil layers.
func NewTieredDistanceCache(layers ...ports.DistanceCache) *TieredDistanceCache {
	t := &TieredDistanceCache{}
	for _, l := range layers {
		if l != nil {
			t.layers = append(t.layers, l)
		}
	}
	return t
}

func (t *TieredDistanceCache) GetMany(
	ctx context.Context,
	origin string,
	destinations []string,
) (map[string]ports.DistanceResult, error) {
	out := make(map[string]ports.DistanceResult, len(destinations))
	missing := uniqueKeys(destinations)

	for i, layer := range t.layers {
		if len(missing) == 0 {
			break
		}

		hits, err := layer.GetMany(ctx, origin, missing)
		if err != nil {
			return nil, fmt.Errorf("tiered cache layer %d: %w", i, err)
		}
		if len(hits) == 0 {
			continue
		}

		for _, faster := range t.layers[:i] {
			if err := faster.PutMany(ctx, origin, hits); err != nil {
				log.Printf("tiered cache backfill failed: %v", err)
			}
		}

		next := missing[:0]
		for _, d := range missing {
			if r, ok := hits[d]; ok {
				out[d] = r
				continue
			}
			next = append(next, d)
		}
		missing = next
	}
	return out, nil
}

func (t *TieredDistanceCache) PutMany(
	ctx context.Context,
	origin string,
	results map[string]ports.DistanceResult,
) error {
	for i, layer := range t.layers {
		if err := layer.PutMany(ctx, origin, results); err != nil {
			return fmt.Errorf("tiered cache layer %d: %w", i, err)
		}
	}
	return nil
}
