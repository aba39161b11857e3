package domain

// TripSummary aggregates a final order and schedule.
type TripSummary struct {
	StopCount           int
	TotalDistanceMeters int
	TotalTravelMinutes  int
	TotalServiceMinutes int
	TotalWaitMinutes    int
	StartTime           int
	EndTime             int
	ElapsedMinutes      int
	ReturnToStart       bool
}

// StopVisit is one position of the itinerary with its location data resolved.
type StopVisit struct {
	Index          int
	Name           string
	Address        string
	Arrival        int
	Departure      int
	ServiceMinutes int
}

// Leg describes the drive between two consecutive positions.
// WaitMinutes is idle time before the destination window opens.
type Leg struct {
	From           int
	To             int
	DepartAt       int
	TravelMinutes  int
	DistanceMeters int
	WaitMinutes    int
	ArriveAt       int
	DwellMinutes   int
	Unreachable    bool
}

// ArrivalDeparture is the per-node lookup consumed by map rendering.
type ArrivalDeparture struct {
	Node      int
	Arrival   string
	Departure string
}

// Itinerary is the extracted, presentation-ready result of a solve.
type Itinerary struct {
	Order     VisitOrder
	Schedule  Schedule
	Stops     []StopVisit
	Legs      []Leg
	Timeline  []ArrivalDeparture
	Summary   TripSummary
	RouteText string
	Warnings  []string
}
