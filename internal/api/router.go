package api

import (
	"net/http"
	"time"

	"itinerary-route-service/internal/api/handlers"
	"itinerary-route-service/internal/ports"
	"itinerary-route-service/internal/services"
)

// Options carries the solver settings the HTTP layer applies to every plan.
type Options struct {
	Solve          services.SolveOptions
	PenaltyMinutes int
	MaxTimeBudget  time.Duration
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
// provider may be nil, in which case plans must carry their own travel matrix.
func NewRouter(scenarios ports.ScenarioRepository, provider ports.DistanceProvider, opts Options) http.Handler {
	mux := http.NewServeMux()

	healthHandler := &handlers.HealthHandler{ProviderConfigured: provider != nil}
	scenarioHandler := &handlers.ScenarioHandler{Repo: scenarios}
	planHandler := &handlers.PlanHandler{
		Provider:       provider,
		Scenarios:      scenarios,
		Solve:          opts.Solve,
		PenaltyMinutes: opts.PenaltyMinutes,
		MaxTimeBudget:  opts.MaxTimeBudget,
	}

	mux.HandleFunc("/health", healthHandler.Health)
	mux.HandleFunc("/scenarios", scenarioHandler.List)
	mux.HandleFunc("/scenarios/", scenarioHandler.Item)
	mux.HandleFunc("/plans", planHandler.Plan)

	return requestIDMiddleware(loggingMiddleware(mux))
}
