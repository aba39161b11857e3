package distance

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"itinerary-route-service/internal/domain"
	"itinerary-route-service/internal/platform/obs"
	"itinerary-route-service/internal/ports"
)

// ORSDistanceProvider resolves itinerary travel times through OpenRouteService.
// Addresses are geocoded once and kept in the geocode cache; each origin row
// is read from the distance cache first and only the misses go to the matrix
// endpoint. Pairs ORS cannot route come back flagged Unreachable and are
// never cached. Safe for concurrent use.
type ORSDistanceProvider struct {
	session       *http.Client
	apiKey        string
	baseURL       string
	profile       string
	country       string
	matrixChunk   int
	distanceCache ports.DistanceCache
	geocodeCache  ports.GeocodeCache
}

type ORSOption func(*ORSDistanceProvider)

// WithBaseURL points the provider at another ORS deployment.
func WithBaseURL(u string) ORSOption {
	return func(o *ORSDistanceProvider) { o.baseURL = strings.TrimRight(u, "/") }
}

func WithProfile(profile string) ORSOption {
	return func(o *ORSDistanceProvider) { o.profile = profile }
}

// WithMatrixChunk caps the destinations sent per matrix request.
func WithMatrixChunk(n int) ORSOption {
	return func(o *ORSDistanceProvider) { o.matrixChunk = n }
}

// WithCountry restricts geocoding to one ISO country code; empty searches worldwide.
func WithCountry(code string) ORSOption {
	return func(o *ORSDistanceProvider) { o.country = code }
}

// NewORSDistanceProvider defaults to the public API, driving-car and US
// geocoding. Either cache may be nil.
func NewORSDistanceProvider(
	apiKey string,
	distanceCache ports.DistanceCache,
	geocodeCache ports.GeocodeCache,
	opts ...ORSOption,
) (*ORSDistanceProvider, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	provider := &ORSDistanceProvider{
		session:       &http.Client{Timeout: 10 * time.Second},
		apiKey:        apiKey,
		baseURL:       "https://api.openrouteservice.org",
		profile:       "driving-car",
		country:       "US",
		matrixChunk:   defaultMatrixChunk,
		distanceCache: distanceCache,
		geocodeCache:  geocodeCache,
	}
	for _, opt := range opts {
		opt(provider)
	}

	return provider, nil
}

// normalize collapses whitespace so equal addresses share cache keys.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// GetDistance is the single-pair form of GetDistances. A pair without a
// route fails with ports.ErrNoRoute.
func (o *ORSDistanceProvider) GetDistance(
	ctx context.Context,
	origin string,
	destination string,
) (ports.DistanceResult, error) {
	from, to := normalize(origin), normalize(destination)
	if from == "" || to == "" {
		return ports.DistanceResult{}, errors.New("ors distance: origin and destination must be non-empty")
	}
	if from == to {
		return ports.DistanceResult{}, nil
	}

	results, err := o.GetDistances(ctx, from, []string{to})
	if err != nil {
		return ports.DistanceResult{}, fmt.Errorf("ors distance %q -> %q: %w", from, to, err)
	}

	result := results[to]
	if result.Unreachable {
		return ports.DistanceResult{}, fmt.Errorf("ors distance %q -> %q: %w", from, to, ports.ErrNoRoute)
	}
	return result, nil
}

// GetDistances returns one itinerary matrix row: travel from origin to each
// distinct destination. Blank destinations and the origin itself are skipped.
func (o *ORSDistanceProvider) GetDistances(
	ctx context.Context,
	origin string,
	destinations []string,
) (_ map[string]ports.DistanceResult, err error) {
	defer obs.Time(ctx, "ors.GetDistances")(&err)

	from := normalize(origin)
	if from == "" {
		return nil, errors.New("ors distances: origin must be non-empty")
	}

	row := make(map[string]ports.DistanceResult, len(destinations))
	dests := rowDestinations(from, destinations)
	if len(dests) == 0 {
		return row, nil
	}

	if o.distanceCache != nil {
		hits, err := o.distanceCache.GetMany(ctx, from, dests)
		if err != nil {
			return nil, fmt.Errorf("ors distances: read distance cache: %w", err)
		}
		for d, r := range hits {
			row[d] = r
		}
	}

	misses := make([]string, 0, len(dests))
	for _, d := range dests {
		if _, ok := row[d]; !ok {
			misses = append(misses, d)
		}
	}
	if len(misses) == 0 {
		return row, nil
	}

	coords, err := o.coordinates(ctx, append([]string{from}, misses...))
	if err != nil {
		return nil, fmt.Errorf("ors distances: %w", err)
	}
	missCoords := make([]domain.Coordinates, len(misses))
	for i, d := range misses {
		missCoords[i] = coords[d]
	}

	fetched, err := o.fetchMatrixRow(ctx, coords[from], misses, missCoords)
	if err != nil {
		return nil, fmt.Errorf("ors distances: fetch matrix row from %q: %w", from, err)
	}
	for _, d := range misses {
		if _, ok := fetched[d]; !ok {
			return nil, fmt.Errorf("ors distances: matrix row from %q is missing %q", from, d)
		}
	}

	if o.distanceCache != nil {
		if err := o.distanceCache.PutMany(ctx, from, fetched); err != nil {
			log.Printf("distance cache write failed: origin=%q err=%v", from, err)
		}
	}

	for d, r := range fetched {
		row[d] = r
	}
	return row, nil
}

// rowDestinations normalizes and dedupes destinations, dropping the origin.
func rowDestinations(origin string, destinations []string) []string {
	seen := make(map[string]struct{}, len(destinations))
	out := make([]string, 0, len(destinations))
	for _, d := range destinations {
		d = normalize(d)
		if d == "" || d == origin {
			continue
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	return out
}

// coordinates resolves every address, geocoding only cache misses and
// writing fresh results back. Every returned map holds all of addresses.
func (o *ORSDistanceProvider) coordinates(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error) {
	coords := make(map[string]domain.Coordinates, len(addresses))
	if o.geocodeCache != nil {
		hits, err := o.geocodeCache.GetMany(ctx, addresses)
		if err != nil {
			return nil, fmt.Errorf("read geocode cache: %w", err)
		}
		for a, c := range hits {
			coords[a] = c
		}
	}

	var misses []string
	for _, a := range addresses {
		if _, ok := coords[a]; !ok {
			misses = append(misses, a)
		}
	}
	if len(misses) == 0 {
		return coords, nil
	}

	fresh, err := o.geocodeMany(ctx, misses)
	if err != nil {
		return nil, fmt.Errorf("geocode: %w", err)
	}
	for _, a := range misses {
		c, ok := fresh[a]
		if !ok {
			return nil, fmt.Errorf("geocode: no coordinates for %q", a)
		}
		coords[a] = c
	}

	if o.geocodeCache != nil {
		if err := o.geocodeCache.PutMany(ctx, fresh); err != nil {
			log.Printf("geocode cache write failed: err=%v", err)
		}
	}
	return coords, nil
}
