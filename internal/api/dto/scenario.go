package dto

import (
	"encoding/json"
	"time"
)

type ScenarioSummaryResponse struct {
	Name      string     `json:"name"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type ListScenariosResponse struct {
	Scenarios []ScenarioSummaryResponse `json:"scenarios"`
}

type ScenarioResponse struct {
	Name      string          `json:"name"`
	Request   json.RawMessage `json:"request"`
	UpdatedAt *time.Time      `json:"updated_at"`
}
