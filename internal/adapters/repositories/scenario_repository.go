package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"itinerary-route-service/internal/domain"
	"itinerary-route-service/internal/platform/db"
	"itinerary-route-service/internal/ports"
)

// SQL-backed implementation of the ScenarioRepository port.
type SQLScenarioRepository struct {
	DB      *sql.DB
	Dialect db.Dialect
}

func NewSQLScenarioRepository(conn *sql.DB, dialect db.Dialect) *SQLScenarioRepository {
	return &SQLScenarioRepository{DB: conn, Dialect: dialect}
}

// Return all saved scenarios ordered by name.
func (s *SQLScenarioRepository) ListScenarios(ctx context.Context) ([]domain.Scenario, error) {
	if s.DB == nil {
		return nil, errors.New("scenario repository: DB is nil")
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT name, payload, updated_at
	FROM scenarios
	ORDER BY name;
	`)
	if err != nil {
		return nil, fmt.Errorf("list scenarios: query scenarios table: %w", err)
	}
	defer rows.Close()

	scenarios := make([]domain.Scenario, 0, 16)
	for rows.Next() {
		sc, err := scanScenario(rows)
		if err != nil {
			return nil, fmt.Errorf("list scenarios: %w", err)
		}
		scenarios = append(scenarios, sc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list scenarios: row iteration: %w", err)
	}

	return scenarios, nil
}

func (s *SQLScenarioRepository) GetScenario(ctx context.Context, name string) (domain.Scenario, error) {
	if s.DB == nil {
		return domain.Scenario{}, errors.New("scenario repository: DB is nil")
	}

	row := s.DB.QueryRowContext(ctx, fmt.Sprintf(`
	SELECT name, payload, updated_at
	FROM scenarios
	WHERE name = %s;
	`, s.Dialect.Placeholder(1)), strings.TrimSpace(name))

	sc, err := scanScenario(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Scenario{}, fmt.Errorf("get scenario %q: %w", name, ports.ErrScenarioNotFound)
	}
	if err != nil {
		return domain.Scenario{}, fmt.Errorf("get scenario %q: %w", name, err)
	}
	return sc, nil
}

// Insert or replace a scenario keyed by name.
func (s *SQLScenarioRepository) SaveScenario(ctx context.Context, sc domain.Scenario) error {
	if s.DB == nil {
		return errors.New("scenario repository: DB is nil")
	}

	name := strings.TrimSpace(sc.Name)
	if name == "" {
		return errors.New("save scenario: name cannot be empty")
	}
	if len(sc.Payload) == 0 {
		return fmt.Errorf("save scenario %q: payload cannot be empty", name)
	}

	_, err := s.DB.ExecContext(ctx, fmt.Sprintf(`
	INSERT INTO scenarios (name, payload, updated_at)
	VALUES (%s)
	ON CONFLICT (name) DO UPDATE
	SET payload = excluded.payload,
		updated_at = excluded.updated_at;
	`, s.Dialect.Placeholders(1, 3)), name, string(sc.Payload), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("save scenario %q: %w", name, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScenario(r rowScanner) (domain.Scenario, error) {
	var (
		name    string
		payload string
		updated int64
	)
	if err := r.Scan(&name, &payload, &updated); err != nil {
		return domain.Scenario{}, err
	}
	at := time.Unix(updated, 0).UTC()
	return domain.Scenario{Name: name, Payload: []byte(payload), UpdatedAt: &at}, nil
}
