package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"itinerary-route-service/internal/domain"
)

// uniformInput builds n locations with full-day windows, the given service
// time and the same travel time between every distinct pair.
func uniformInput(n, travel, service int) domain.ProblemInput {
	locs := make([]domain.Location, n)
	tm := make([][]int, n)
	dm := make([][]int, n)
	for i := 0; i < n; i++ {
		locs[i] = domain.Location{Name: string(rune('A' + i)), Window: domain.FullDay, ServiceMinutes: service}
		tm[i] = make([]int, n)
		dm[i] = make([]int, n)
		for j := 0; j < n; j++ {
			if i != j {
				tm[i][j] = travel
				dm[i][j] = travel * 1000
			}
		}
	}
	locs[0].Name = "Home"
	return domain.ProblemInput{Locations: locs, TravelMinutes: tm, DistanceMeters: dm}
}

func mustProblem(t *testing.T, in domain.ProblemInput) *domain.Problem {
	t.Helper()
	p, err := domain.NewProblem(in)
	require.NoError(t, err)
	return p
}

func window(open, close int) *domain.TimeWindow {
	return &domain.TimeWindow{Open: open, Close: close}
}

func intPtr(v int) *int { return &v }

// requireValidSchedule checks every window, service and precedence rule of p
// against a solved order and schedule.
func requireValidSchedule(t *testing.T, p *domain.Problem, order domain.VisitOrder, sched domain.Schedule) {
	t.Helper()

	require.Len(t, sched, len(order))
	require.Nil(t, checkOrderShape(p, order))

	dep := p.DepartureWindow()
	require.True(t, dep.Contains(sched[0].Departure), "departure %d outside %s", sched[0].Departure, dep)

	last := len(order) - 1
	for k := 1; k <= last; k++ {
		v := sched[k]
		require.Equal(t, order[k], v.Node)
		w, _ := positionWindow(p, v.Node, k == last)
		require.GreaterOrEqual(t, v.Arrival, w.Open, "position %d", k)
		require.LessOrEqual(t, v.Arrival, w.Close, "position %d", k)
		require.Equal(t, v.Arrival+p.Service(v.Node), v.Departure, "position %d", k)
		require.GreaterOrEqual(t, v.Arrival, sched[k-1].Departure+p.Travel(order[k-1], v.Node))
	}

	pos := make(map[int]int, len(order))
	for k, node := range order[:last] {
		pos[node] = k
	}
	pos[order[last]] = last
	for _, pc := range p.Precedences() {
		a, b := pos[pc.Before], pos[pc.After]
		require.Less(t, a, b, "%d must precede %d", pc.Before, pc.After)
		require.LessOrEqual(t, sched[a].Departure, sched[b].Arrival)
	}
}
