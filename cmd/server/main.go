package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"itinerary-route-service/internal/adapters/cache"
	"itinerary-route-service/internal/adapters/distance"
	"itinerary-route-service/internal/adapters/repositories"
	"itinerary-route-service/internal/api"
	"itinerary-route-service/internal/config"
	"itinerary-route-service/internal/platform/db"
	"itinerary-route-service/internal/ports"
	"itinerary-route-service/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (SQL, Redis, ORS) behind ports and starts the HTTP server.
func main() {
	config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	conn, err := openDB(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	scenarios := repositories.NewSQLScenarioRepository(conn, cfg.DBDriver)

	// Initialize schema and seed demo scenarios on startup for local runs.
	if err := initAndSeed(conn, scenarios, cfg.SeedPath); err != nil {
		log.Fatal(err)
	}

	provider, closeCache, err := newProvider(cfg, conn)
	if err != nil {
		log.Fatal(err)
	}
	defer closeCache()

	router := api.NewRouter(scenarios, provider, api.Options{
		Solve: services.SolveOptions{
			TimeBudget: cfg.SolveTimeBudget,
			ExactLimit: cfg.ExactLimit,
		},
		PenaltyMinutes: cfg.PenaltyMinutes,
		MaxTimeBudget:  cfg.MaxTimeBudget,
	})

	// Timeouts are tuned for cold-cache matrix fetches plus the solver budget.
	log.Printf("Server listening addr=:%s db=%s", cfg.Port, cfg.DBDriver)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

func openDB(cfg *config.Config) (*sql.DB, error) {
	if cfg.DBDriver == db.Postgres {
		return db.Open(cfg.DatabaseURL)
	}
	return db.OpenSQLite(cfg.DBPath)
}

func initAndSeed(conn *sql.DB, repo ports.ScenarioRepository, seedPath string) error {
	ctx := context.Background()

	if err := repositories.InitSchema(ctx, conn); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if _, err := os.Stat(seedPath); errors.Is(err, os.ErrNotExist) {
		log.Printf("No seed file at %s (skipping scenario seed)", seedPath)
		return nil
	}

	n, err := repositories.SeedFromJSON(ctx, repo, seedPath)
	if err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}
	log.Printf("Seeded scenarios count=%d path=%s", n, seedPath)

	return nil
}

// newProvider returns a nil provider when no ORS key is configured; plans
// must then carry their own travel matrix.
func newProvider(cfg *config.Config, conn *sql.DB) (ports.DistanceProvider, func(), error) {
	noop := func() {}
	if cfg.ORSAPIKey == "" {
		log.Println("ORS_API_KEY not set (plans must include travel_time)")
		return nil, noop, nil
	}

	// Redis in front of the SQL cache when enabled; the SQL cache alone otherwise.
	layers := []ports.DistanceCache{}
	closeCache := noop
	if cfg.RedisEnabled {
		rc, err := cache.NewRedisDistanceCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL)
		if err != nil {
			return nil, noop, err
		}
		layers = append(layers, rc)
		closeCache = func() { rc.Close() }
	}
	layers = append(layers, cache.NewSQLDistanceCache(conn, cfg.DBDriver, cfg.CacheTTL))

	provider, err := distance.NewORSDistanceProvider(cfg.ORSAPIKey,
		cache.NewTieredDistanceCache(layers...),
		cache.NewSQLGeocodeCache(conn, cfg.DBDriver),
		distance.WithProfile(cfg.ORSProfile),
		distance.WithCountry(cfg.ORSCountry),
	)
	if err != nil {
		closeCache()
		return nil, noop, err
	}
	return provider, closeCache, nil
}
