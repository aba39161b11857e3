package domain

import "time"

// Scenario is a named problem input kept for repeat planning.
// Payload holds the JSON plan request exactly as it was saved.
type Scenario struct {
	Name      string
	Payload   []byte
	UpdatedAt *time.Time
}
