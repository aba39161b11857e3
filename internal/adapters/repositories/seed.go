package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"itinerary-route-service/internal/domain"
	"itinerary-route-service/internal/ports"
)

// ScenarioSeed is one entry of a scenario seed file. Request is stored
// verbatim as the scenario payload.
type ScenarioSeed struct {
	Name    string          `json:"name"`
	Request json.RawMessage `json:"request"`
}

// Populate the repository with named plan requests from a JSON file.
// Existing scenarios with the same name are replaced.
func SeedFromJSON(ctx context.Context, repo ports.ScenarioRepository, jsonPath string) (int, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return 0, fmt.Errorf("seed scenarios: read %q: %w", jsonPath, err)
	}

	var data []ScenarioSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return 0, fmt.Errorf("seed scenarios: parse json: %w", err)
	}

	seen := make(map[string]struct{}, len(data))
	rows := make([]domain.Scenario, 0, len(data))
	for i, item := range data {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			return 0, fmt.Errorf("seed scenarios: item at index %d: name cannot be empty", i+1)
		}
		if _, ok := seen[name]; ok {
			return 0, fmt.Errorf("seed scenarios: duplicate name %q", name)
		}
		seen[name] = struct{}{}

		if len(item.Request) == 0 || !json.Valid(item.Request) {
			return 0, fmt.Errorf("seed scenarios: %q: request must be a JSON object", name)
		}
		rows = append(rows, domain.Scenario{Name: name, Payload: item.Request})
	}

	for _, sc := range rows {
		if err := repo.SaveScenario(ctx, sc); err != nil {
			return 0, fmt.Errorf("seed scenarios: %w", err)
		}
	}

	return len(rows), nil
}
