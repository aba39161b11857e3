package services

import "itinerary-route-service/internal/domain"

// precedenceIndex answers precedence questions for one solve.
// Cycles were already rejected when the problem was built.
type precedenceIndex struct {
	pairs []domain.Precedence
	preds [][]int
	pos   []int
}

func newPrecedenceIndex(p *domain.Problem) *precedenceIndex {
	pairs := p.Precedences()
	preds := make([][]int, p.Size())
	for _, pc := range pairs {
		preds[pc.After] = append(preds[pc.After], pc.Before)
	}
	return &precedenceIndex{pairs: pairs, preds: preds, pos: make([]int, p.Size())}
}

func (x *precedenceIndex) empty() bool { return len(x.pairs) == 0 }

// eligible reports whether every required predecessor of node is placed.
func (x *precedenceIndex) eligible(node int, placed []bool) bool {
	for _, b := range x.preds[node] {
		if !placed[b] {
			return false
		}
	}
	return true
}

// index records the position of every node in order. The depot keeps its
// first position; it never appears in a precedence pair.
func (x *precedenceIndex) index(order domain.VisitOrder) {
	for i := len(order) - 1; i >= 0; i-- {
		x.pos[order[i]] = i
	}
}

// orderViolations counts pairs whose stops appear in the wrong order.
func (x *precedenceIndex) orderViolations(order domain.VisitOrder) int {
	if x.empty() {
		return 0
	}
	x.index(order)
	count := 0
	for _, pc := range x.pairs {
		if x.pos[pc.Before] >= x.pos[pc.After] {
			count++
		}
	}
	return count
}

// check rejects order when a required predecessor is not strictly earlier in
// the sequence or, given a schedule, has not departed by the successor's
// arrival. The schedule may be nil to check sequence only.
func (x *precedenceIndex) check(order domain.VisitOrder, sched domain.Schedule) *Violation {
	if x.empty() {
		return nil
	}
	x.index(order)
	for _, pc := range x.pairs {
		a, b := x.pos[pc.Before], x.pos[pc.After]
		if a >= b {
			return &Violation{Kind: ViolationPrecedenceOrder, Position: b, Node: pc.After, Other: pc.Before}
		}
		if sched != nil && sched[a].Departure > sched[b].Arrival {
			return &Violation{
				Kind:     ViolationPrecedenceTiming,
				Position: b,
				Node:     pc.After,
				Other:    pc.Before,
				Arrival:  sched[b].Arrival,
				Limit:    sched[a].Departure,
			}
		}
	}
	return nil
}

// CheckPrecedence applies the precedence rules of p to a complete order and
// optional schedule.
func CheckPrecedence(p *domain.Problem, order domain.VisitOrder, sched domain.Schedule) *Violation {
	if v := checkOrderShape(p, order); v != nil {
		return v
	}
	return newPrecedenceIndex(p).check(order, sched)
}
