package domain

import "fmt"

// FormatClock renders minutes since midnight as HH:MM.
// Values past midnight keep counting hours (e.g. 25:10) so multi-day plans stay ordered.
func FormatClock(minutes int) string {
	if minutes < 0 {
		return "-" + FormatClock(-minutes)
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// FormatDuration renders a minute count as "H hours and M minutes".
func FormatDuration(minutes int) string {
	return fmt.Sprintf("%d hours and %d minutes", minutes/60, minutes%60)
}
