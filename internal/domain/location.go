package domain

import "fmt"

// FullDay is the widest arrival window a stop can have within one day.
var FullDay = TimeWindow{Open: 0, Close: 1439}

// Inclusive arrival window in minutes since midnight.
type TimeWindow struct {
	Open  int `json:"open"`
	Close int `json:"close"`
}

// Contains reports whether t falls inside the window.
func (w TimeWindow) Contains(t int) bool { return t >= w.Open && t <= w.Close }

func (w TimeWindow) String() string {
	return fmt.Sprintf("[%s, %s]", FormatClock(w.Open), FormatClock(w.Close))
}

func (w TimeWindow) validate() error {
	if w.Open < 0 || w.Close < 0 {
		return fmt.Errorf("bounds must be non-negative, got [%d, %d]", w.Open, w.Close)
	}
	if w.Open > w.Close {
		return fmt.Errorf("open %d is after close %d", w.Open, w.Close)
	}
	return nil
}

// A place the vehicle has to visit.
// The address is opaque to planning; it only keys the distance matrix lookups.
type Location struct {
	Name           string
	Address        string
	ServiceMinutes int
	Window         TimeWindow
}
