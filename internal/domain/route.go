package domain

// VisitOrder is a sequence of location indices starting at the depot and
// ending at the depot or the custom end. Candidates index into the problem's
// location arena instead of copying locations.
type VisitOrder []int

// Clone returns an independent copy.
func (o VisitOrder) Clone() VisitOrder { return append(VisitOrder(nil), o...) }

// Visit is the timing of one position in a visit order.
// Departure always equals Arrival plus the stop's service duration.
type Visit struct {
	Node      int
	Arrival   int
	Departure int
}

// Schedule holds one Visit per position of the order it was computed for.
type Schedule []Visit

// Start is the departure time from the depot.
func (s Schedule) Start() int {
	if len(s) == 0 {
		return 0
	}
	return s[0].Departure
}

// End is the arrival time at the final node.
func (s Schedule) End() int {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1].Arrival
}

// Elapsed is the total journey duration, the quantity the search minimises.
func (s Schedule) Elapsed() int { return s.End() - s.Start() }
