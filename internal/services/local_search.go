package services

import (
	"context"
	"time"

	"itinerary-route-service/internal/domain"
)

type moveKind int

const (
	moveRelocate moveKind = iota
	moveSwap
	moveReverse
)

// move rearranges the interior of an order; the first and last positions
// are fixed to the depot and the end node.
type move struct {
	kind moveKind
	i, j int
}

// apply writes src with m applied into dst. Both have the same length.
func (m move) apply(dst, src domain.VisitOrder) {
	copy(dst, src)
	switch m.kind {
	case moveRelocate:
		node := src[m.i]
		if m.i < m.j {
			copy(dst[m.i:m.j], src[m.i+1:m.j+1])
		} else {
			copy(dst[m.j+1:m.i+1], src[m.j:m.i])
		}
		dst[m.j] = node
	case moveSwap:
		dst[m.i], dst[m.j] = src[m.j], src[m.i]
	case moveReverse:
		for a, b := m.i, m.j; a <= m.j; a, b = a+1, b-1 {
			dst[a] = src[b]
		}
	}
}

// neighbourhood lists every move for an order of the given length:
// single-node relocation, adjacent swaps and 2-opt segment reversal.
func neighbourhood(length int) []move {
	first, last := 1, length-2
	if last-first < 1 {
		return nil
	}

	moves := make([]move, 0, (last-first+1)*(last-first+1)*2)
	for i := first; i < last; i++ {
		moves = append(moves, move{kind: moveSwap, i: i, j: i + 1})
	}
	for i := first; i <= last; i++ {
		for j := first; j <= last; j++ {
			if i != j {
				moves = append(moves, move{kind: moveRelocate, i: i, j: j})
			}
		}
	}
	for i := first; i <= last; i++ {
		for j := i + 2; j <= last; j++ {
			moves = append(moves, move{kind: moveReverse, i: i, j: j})
		}
	}
	return moves
}

// evaluation ranks feasible orders: shorter elapsed journey first, then
// earlier final arrival.
type evaluation struct {
	schedule domain.Schedule
}

func (e evaluation) better(o evaluation) bool {
	if e.schedule.Elapsed() != o.schedule.Elapsed() {
		return e.schedule.Elapsed() < o.schedule.Elapsed()
	}
	return e.schedule.End() < o.schedule.End()
}

// infeasibility ranks infeasible orders during repair.
type infeasibility struct {
	precedence int
	lateness   int
}

func (a infeasibility) less(b infeasibility) bool {
	if a.precedence != b.precedence {
		return a.precedence < b.precedence
	}
	return a.lateness < b.lateness
}

func (a infeasibility) zero() bool { return a.precedence == 0 && a.lateness == 0 }

// searcher owns the mutable state of a single solve.
type searcher struct {
	ctx      context.Context
	p        *domain.Problem
	prec     *precedenceIndex
	deadline time.Time
	moves    []move
	buf      domain.VisitOrder
	stats    SearchStats
}

func newSearcher(ctx context.Context, p *domain.Problem, deadline time.Time) *searcher {
	return &searcher{
		ctx:      ctx,
		p:        p,
		prec:     newPrecedenceIndex(p),
		deadline: deadline,
		moves:    neighbourhood(p.OrderLength()),
		buf:      make(domain.VisitOrder, p.OrderLength()),
	}
}

func (s *searcher) expired() bool {
	if s.ctx.Err() != nil {
		return true
	}
	return !s.deadline.IsZero() && !time.Now().Before(s.deadline)
}

// evaluate returns the tightened schedule of a feasible order.
func (s *searcher) evaluate(order domain.VisitOrder) (evaluation, bool) {
	if s.prec.orderViolations(order) > 0 {
		return evaluation{}, false
	}
	sched, ok := tightenEnds(s.p, order)
	if !ok {
		return evaluation{}, false
	}
	if v := s.prec.check(order, sched); v != nil {
		return evaluation{}, false
	}
	return evaluation{schedule: sched}, true
}

func (s *searcher) score(order domain.VisitOrder) infeasibility {
	return infeasibility{precedence: s.prec.orderViolations(order), lateness: lateness(s.p, order)}
}

// improve runs first-improvement passes over the neighbourhood, accepting
// only feasible orders that strictly beat the incumbent. It stops after a
// pass without improvement or when the deadline passes; the deadline is
// checked at the top of each pass. order is updated in place.
func (s *searcher) improve(order domain.VisitOrder, best evaluation) (evaluation, bool) {
	for {
		if s.expired() {
			return best, true
		}
		s.stats.Passes++

		improved := false
		for _, m := range s.moves {
			m.apply(s.buf, order)
			cand, ok := s.evaluate(s.buf)
			if !ok || !cand.better(best) {
				continue
			}
			copy(order, s.buf)
			best = cand
			improved = true
			s.stats.Improvements++
		}
		if !improved {
			return best, false
		}
	}
}

// repair descends on (precedence violations, lateness) from an infeasible
// order until it reaches a feasible one or a pass brings no progress.
func (s *searcher) repair(order domain.VisitOrder) (feasible, timedOut bool) {
	current := s.score(order)
	for !current.zero() {
		if s.expired() {
			return false, true
		}
		s.stats.Passes++

		improved := false
		for _, m := range s.moves {
			m.apply(s.buf, order)
			cand := s.score(s.buf)
			if !cand.less(current) {
				continue
			}
			copy(order, s.buf)
			current = cand
			improved = true
			s.stats.RepairMoves++
			if current.zero() {
				break
			}
		}
		if !improved {
			return false, false
		}
	}
	return true, false
}
