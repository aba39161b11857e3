package services

import (
	"math"

	"itinerary-route-service/internal/domain"
)

// exhaustive runs a depth-first branch and bound over every
// precedence-respecting order and returns the first feasible one found.
// found=false with timedOut=false proves that no feasible order exists.
//
// Branches are pruned when the next stop's window is already closed, or when
// any unplaced stop can no longer be reached before its close even over its
// cheapest incoming arc.
func (s *searcher) exhaustive() (order domain.VisitOrder, found, timedOut bool) {
	p := s.p
	n := p.Size()
	end := p.EndNode()

	minIn := make([]int, n)
	for u := 0; u < n; u++ {
		minIn[u] = math.MaxInt
		for v := 0; v < n; v++ {
			if v != u && p.Travel(v, u) < minIn[u] {
				minIn[u] = p.Travel(v, u)
			}
		}
		if minIn[u] == math.MaxInt {
			minIn[u] = 0
		}
	}

	interior := n - 1
	if end != domain.DepotIndex {
		interior--
	}

	placed := make([]bool, n)
	placed[domain.DepotIndex] = true
	path := make(domain.VisitOrder, 1, p.OrderLength())
	path[0] = domain.DepotIndex

	expansions := 0
	var dfs func(current, clock, depth int) bool
	dfs = func(current, clock, depth int) bool {
		expansions++
		if expansions%1024 == 0 && s.expired() {
			timedOut = true
			return false
		}

		if depth == interior {
			w, _ := positionWindow(p, end, true)
			return max(w.Open, clock+p.Travel(current, end)) <= w.Close
		}

		for u := 0; u < n; u++ {
			if placed[u] || u == end {
				continue
			}
			if clock+minIn[u] > p.Window(u).Close {
				return false
			}
		}
		if end != domain.DepotIndex && clock+minIn[end] > p.Window(end).Close {
			return false
		}

		for c := 0; c < n; c++ {
			if placed[c] || c == end || !s.prec.eligible(c, placed) {
				continue
			}
			w := p.Window(c)
			arrival := max(w.Open, clock+p.Travel(current, c))
			if arrival > w.Close {
				continue
			}

			placed[c] = true
			path = append(path, c)
			if dfs(c, arrival+p.Service(c), depth+1) {
				return true
			}
			if timedOut {
				return false
			}
			path = path[:len(path)-1]
			placed[c] = false
		}
		return false
	}

	s.stats.UsedExhaustive = true
	if !dfs(domain.DepotIndex, p.DepartureWindow().Open, 0) {
		return nil, false, timedOut
	}
	return append(path, end), true, false
}
