package services

import (
	"math"

	"itinerary-route-service/internal/domain"
)

// constructOrder builds the first visit order with a cheapest-feasible-arc
// greedy, the time-window aware form of the nearest-neighbour step.
//
// From the current stop it picks, among unplaced stops whose predecessors are
// all placed, the one with the lowest travel + service cost that can still be
// reached before its window closes. When nothing is reachable in time the
// cheapest eligible stop is taken anyway and propagation flags the order
// later; when nothing is eligible at all the cheapest remaining stop is
// taken. It always returns a complete order.
func constructOrder(p *domain.Problem, prec *precedenceIndex) domain.VisitOrder {
	n := p.Size()
	end := p.EndNode()

	order := make(domain.VisitOrder, 0, p.OrderLength())
	order = append(order, domain.DepotIndex)

	placed := make([]bool, n)
	placed[domain.DepotIndex] = true

	remaining := n - 1
	if end != domain.DepotIndex {
		remaining--
	}

	current := domain.DepotIndex
	clock := p.DepartureWindow().Open

	for ; remaining > 0; remaining-- {
		bestFeasible, bestEligible, bestAny := -1, -1, -1
		costFeasible, costEligible, costAny := math.MaxInt, math.MaxInt, math.MaxInt

		// Ascending index order keeps tie-breaking deterministic.
		for c := 0; c < n; c++ {
			if placed[c] || c == end {
				continue
			}
			cost := p.Travel(current, c) + p.Service(c)
			if cost < costAny {
				bestAny, costAny = c, cost
			}
			if !prec.eligible(c, placed) {
				continue
			}
			if cost < costEligible {
				bestEligible, costEligible = c, cost
			}
			w := p.Window(c)
			if max(w.Open, clock+p.Travel(current, c)) <= w.Close && cost < costFeasible {
				bestFeasible, costFeasible = c, cost
			}
		}

		next := bestFeasible
		if next < 0 {
			next = bestEligible
		}
		if next < 0 {
			next = bestAny
		}

		arrival := max(p.Window(next).Open, clock+p.Travel(current, next))
		clock = arrival + p.Service(next)
		placed[next] = true
		order = append(order, next)
		current = next
	}

	return append(order, end)
}
