package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"golang.org/x/sync/errgroup"

	"itinerary-route-service/internal/platform/obs"
	"itinerary-route-service/internal/ports"
)

// DefaultPenaltyMinutes stands in for the travel time of a pair with no route.
const DefaultPenaltyMinutes = 99999

// maxConcurrentRows bounds in-flight provider calls while building a matrix.
const maxConcurrentRows = 5

// ErrMatrixUnavailable is returned when the distance provider fails outright.
var ErrMatrixUnavailable = errors.New("travel matrix unavailable")

// Matrices are square travel tables indexed like the address list they were
// built from.
type Matrices struct {
	TravelMinutes  [][]int
	DistanceMeters [][]int
	Unreachable    [][]bool
}

func newMatrices(n int) *Matrices {
	m := &Matrices{
		TravelMinutes:  make([][]int, n),
		DistanceMeters: make([][]int, n),
		Unreachable:    make([][]bool, n),
	}
	for i := 0; i < n; i++ {
		m.TravelMinutes[i] = make([]int, n)
		m.DistanceMeters[i] = make([]int, n)
		m.Unreachable[i] = make([]bool, n)
	}
	return m
}

// normalizeAddress collapses whitespace so equal addresses share a key.
func normalizeAddress(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// BuildMatrices fetches travel time and distance between every pair of
// addresses, one origin row per goroutine. Durations are floored to whole
// minutes. Pairs the provider has no route for get penaltyMinutes and are
// flagged unreachable; any other provider failure fails the whole build.
// Identical addresses are zero apart.
func BuildMatrices(
	ctx context.Context,
	provider ports.DistanceProvider,
	addresses []string,
	penaltyMinutes int,
) (_ *Matrices, err error) {
	defer obs.Time(ctx, "matrix.Build")(&err)

	if provider == nil {
		return nil, fmt.Errorf("build matrices: %w: no distance provider configured", ErrMatrixUnavailable)
	}
	if penaltyMinutes <= 0 {
		penaltyMinutes = DefaultPenaltyMinutes
	}

	norm := make([]string, len(addresses))
	for i, a := range addresses {
		norm[i] = normalizeAddress(a)
		if norm[i] == "" {
			return nil, fmt.Errorf("build matrices: address %d is empty", i)
		}
	}

	n := len(norm)
	m := newMatrices(n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentRows)

	for i := 0; i < n; i++ {
		origin := norm[i]
		targets := make([]string, 0, n-1)
		seen := make(map[string]struct{}, n)
		for j := 0; j < n; j++ {
			if norm[j] == origin {
				continue
			}
			if _, ok := seen[norm[j]]; ok {
				continue
			}
			seen[norm[j]] = struct{}{}
			targets = append(targets, norm[j])
		}

		g.Go(func() error {
			row, err := fetchRow(gctx, provider, origin, targets)
			if err != nil {
				return fmt.Errorf("build matrices: row %d %q: %w: %w", i, origin, ErrMatrixUnavailable, err)
			}

			// Each goroutine writes only row i.
			for j := 0; j < n; j++ {
				if norm[j] == origin {
					continue
				}
				r, ok := row[norm[j]]
				if !ok || r.Unreachable {
					m.TravelMinutes[i][j] = penaltyMinutes
					m.Unreachable[i][j] = true
					continue
				}
				m.TravelMinutes[i][j] = r.DurationSeconds / 60
				m.DistanceMeters[i][j] = r.DistanceMeters
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	unreachable := 0
	for i := range m.Unreachable {
		for _, u := range m.Unreachable[i] {
			if u {
				unreachable++
			}
		}
	}
	if unreachable > 0 {
		log.Printf("matrix: built size=%d unreachable_pairs=%d penalty=%d", n, unreachable, penaltyMinutes)
	}
	return m, nil
}

// fetchRow prefers a batched lookup when the provider supports it.
func fetchRow(
	ctx context.Context,
	provider ports.DistanceProvider,
	origin string,
	targets []string,
) (map[string]ports.DistanceResult, error) {
	if len(targets) == 0 {
		return map[string]ports.DistanceResult{}, nil
	}

	if mp, ok := provider.(ports.DistanceMatrixProvider); ok {
		return mp.GetDistances(ctx, origin, targets)
	}

	out := make(map[string]ports.DistanceResult, len(targets))
	for _, t := range targets {
		r, err := provider.GetDistance(ctx, origin, t)
		if errors.Is(err, ports.ErrNoRoute) {
			out[t] = ports.DistanceResult{Unreachable: true}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get distance %q -> %q: %w", origin, t, err)
		}
		out[t] = r
	}
	return out, nil
}
