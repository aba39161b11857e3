package services

import (
	"fmt"

	"itinerary-route-service/internal/domain"
)

// ViolationKind classifies why a visit order is infeasible.
type ViolationKind int

const (
	ViolationMalformedOrder ViolationKind = iota + 1
	ViolationWindow
	ViolationReturnWindow
	ViolationPrecedenceOrder
	ViolationPrecedenceTiming
)

func (k ViolationKind) String() string {
	switch k {
	case ViolationMalformedOrder:
		return "malformed_order"
	case ViolationWindow:
		return "window_closed"
	case ViolationReturnWindow:
		return "return_window_closed"
	case ViolationPrecedenceOrder:
		return "precedence_order"
	case ViolationPrecedenceTiming:
		return "precedence_timing"
	default:
		return "unknown"
	}
}

// Violation is the typed failure outcome of propagation or precedence checks.
// For precedence kinds, Node must come after Other.
type Violation struct {
	Kind     ViolationKind
	Position int
	Node     int
	Other    int
	Arrival  int
	Limit    int
	Detail   string
}

func (v *Violation) String() string {
	switch v.Kind {
	case ViolationWindow, ViolationReturnWindow:
		return fmt.Sprintf("%s: node %d at position %d arrives %s after %s",
			v.Kind, v.Node, v.Position, domain.FormatClock(v.Arrival), domain.FormatClock(v.Limit))
	case ViolationPrecedenceOrder, ViolationPrecedenceTiming:
		return fmt.Sprintf("%s: node %d must follow node %d", v.Kind, v.Node, v.Other)
	default:
		return fmt.Sprintf("%s: %s", v.Kind, v.Detail)
	}
}

// Propagate computes the tightest schedule for order with the vehicle leaving
// the depot at start (clamped into the departure window).
//
// Arrival at each position is max(open, previous departure + travel); the
// vehicle may wait for a window to open but never arrive after it closes.
// A final depot position is bounded by the return window instead of the
// depot's own window. A nil schedule comes back with the first violation.
func Propagate(p *domain.Problem, order domain.VisitOrder, start int) (domain.Schedule, *Violation) {
	if v := checkOrderShape(p, order); v != nil {
		return nil, v
	}
	return propagate(p, order, start)
}

func propagate(p *domain.Problem, order domain.VisitOrder, start int) (domain.Schedule, *Violation) {
	dep := p.DepartureWindow()
	start = min(max(start, dep.Open), dep.Close)

	sched := make(domain.Schedule, len(order))
	sched[0] = domain.Visit{Node: order[0], Arrival: start, Departure: start}

	last := len(order) - 1
	for k := 1; k <= last; k++ {
		prev, cur := order[k-1], order[k]
		w, kind := positionWindow(p, cur, k == last)

		arrival := max(w.Open, sched[k-1].Departure+p.Travel(prev, cur))
		if arrival > w.Close {
			return nil, &Violation{Kind: kind, Position: k, Node: cur, Arrival: arrival, Limit: w.Close}
		}
		sched[k] = domain.Visit{Node: cur, Arrival: arrival, Departure: arrival + p.Service(cur)}
	}
	return sched, nil
}

// positionWindow returns the arrival window that applies to node at a position.
func positionWindow(p *domain.Problem, node int, final bool) (domain.TimeWindow, ViolationKind) {
	if final && node == domain.DepotIndex && p.ReturnsToDepot() {
		return p.ReturnWindow(), ViolationReturnWindow
	}
	return p.Window(node), ViolationWindow
}

// lateness propagates like propagate but keeps going past closed windows and
// returns the summed minutes of lateness. Zero means the order is feasible
// when leaving at the earliest departure.
func lateness(p *domain.Problem, order domain.VisitOrder) int {
	t := p.DepartureWindow().Open
	total := 0
	last := len(order) - 1
	for k := 1; k <= last; k++ {
		prev, cur := order[k-1], order[k]
		w, _ := positionWindow(p, cur, k == last)
		arrival := max(w.Open, t+p.Travel(prev, cur))
		if arrival > w.Close {
			total += arrival - w.Close
		}
		t = arrival + p.Service(cur)
	}
	return total
}

// tightenEnds fixes the departure time for an order: it pushes the depot
// departure as late as feasibility allows, which minimises elapsed time,
// then pulls it back to the earliest start with that same elapsed time so
// the final arrival is as early as possible.
//
// Feasible starts form the interval [dep.Open, latest] and elapsed time is
// non-increasing in the start, so both ends are found by binary search.
func tightenEnds(p *domain.Problem, order domain.VisitOrder) (domain.Schedule, bool) {
	dep := p.DepartureWindow()
	earliest, v := propagate(p, order, dep.Open)
	if v != nil {
		return nil, false
	}
	if dep.Open == dep.Close {
		return earliest, true
	}

	lo, hi := dep.Open, dep.Close
	for lo < hi {
		mid := lo + (hi-lo+1)/2
		if _, v := propagate(p, order, mid); v == nil {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	latest, _ := propagate(p, order, lo)
	target := latest.Elapsed()
	if earliest.Elapsed() == target {
		return earliest, true
	}

	lo, hi = dep.Open, lo
	for lo < hi {
		mid := lo + (hi-lo)/2
		if s, v := propagate(p, order, mid); v == nil && s.Elapsed() == target {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	best, _ := propagate(p, order, lo)
	return best, true
}

// checkOrderShape verifies order is a complete visit order for p.
func checkOrderShape(p *domain.Problem, order domain.VisitOrder) *Violation {
	malformed := func(format string, args ...any) *Violation {
		return &Violation{Kind: ViolationMalformedOrder, Detail: fmt.Sprintf(format, args...)}
	}

	if len(order) != p.OrderLength() {
		return malformed("expected %d positions, got %d", p.OrderLength(), len(order))
	}
	if order[0] != domain.DepotIndex {
		return malformed("order must start at the depot, starts at %d", order[0])
	}
	if order[len(order)-1] != p.EndNode() {
		return malformed("order must end at %d, ends at %d", p.EndNode(), order[len(order)-1])
	}

	seen := make([]bool, p.Size())
	body := order[:len(order)-1]
	if !p.ReturnsToDepot() {
		body = order
	}
	for pos, node := range body {
		if node < 0 || node >= p.Size() {
			return malformed("position %d: node %d out of range", pos, node)
		}
		if seen[node] {
			return malformed("position %d: node %d visited twice", pos, node)
		}
		seen[node] = true
	}
	return nil
}
