package services

import (
	"fmt"
	"strings"

	"itinerary-route-service/internal/domain"
)

// Summarize aggregates a fixed order and its schedule.
func Summarize(p *domain.Problem, order domain.VisitOrder, sched domain.Schedule) domain.TripSummary {
	s := domain.TripSummary{
		StartTime:     sched.Start(),
		EndTime:       sched.End(),
		ReturnToStart: order[len(order)-1] == domain.DepotIndex,
	}
	s.ElapsedMinutes = s.EndTime - s.StartTime

	s.StopCount = len(order) - 1
	if s.ReturnToStart {
		s.StopCount--
	}

	for k := 1; k < len(order); k++ {
		from, to := order[k-1], order[k]
		travel := p.Travel(from, to)
		s.TotalTravelMinutes += travel
		s.TotalDistanceMeters += p.Distance(from, to)
		s.TotalWaitMinutes += sched[k].Arrival - (sched[k-1].Departure + travel)
		if to != domain.DepotIndex {
			s.TotalServiceMinutes += p.Service(to)
		}
	}
	return s
}

// Extract turns a solution into a presentation-ready itinerary. It performs
// no search and does not re-check constraints.
func Extract(p *domain.Problem, sol *Solution) *domain.Itinerary {
	order, sched := sol.Order, sol.Schedule

	it := &domain.Itinerary{
		Order:    order.Clone(),
		Schedule: append(domain.Schedule(nil), sched...),
		Summary:  Summarize(p, order, sched),
		Stops:    make([]domain.StopVisit, 0, len(order)),
		Legs:     make([]domain.Leg, 0, len(order)-1),
		Timeline: make([]domain.ArrivalDeparture, 0, len(order)),
	}

	for k, v := range sched {
		loc := p.Location(v.Node)
		it.Stops = append(it.Stops, domain.StopVisit{
			Index:          v.Node,
			Name:           loc.Name,
			Address:        loc.Address,
			Arrival:        v.Arrival,
			Departure:      v.Departure,
			ServiceMinutes: v.Departure - v.Arrival,
		})
		it.Timeline = append(it.Timeline, domain.ArrivalDeparture{
			Node:      v.Node,
			Arrival:   domain.FormatClock(v.Arrival),
			Departure: domain.FormatClock(v.Departure),
		})

		if k == 0 {
			continue
		}
		prev := sched[k-1]
		travel := p.Travel(prev.Node, v.Node)
		leg := domain.Leg{
			From:           prev.Node,
			To:             v.Node,
			DepartAt:       prev.Departure,
			TravelMinutes:  travel,
			DistanceMeters: p.Distance(prev.Node, v.Node),
			WaitMinutes:    v.Arrival - (prev.Departure + travel),
			ArriveAt:       v.Arrival,
			DwellMinutes:   v.Departure - v.Arrival,
			Unreachable:    p.Unreachable(prev.Node, v.Node),
		}
		it.Legs = append(it.Legs, leg)
		if leg.Unreachable {
			it.Warnings = append(it.Warnings, fmt.Sprintf(
				"no route found from %s to %s; travel time is a %d minute placeholder",
				p.Location(leg.From).Name, p.Location(leg.To).Name, travel))
		}
	}

	it.RouteText = routeText(p, it)
	return it
}

// routeText renders the leg-by-leg description handed to prose generation.
func routeText(p *domain.Problem, it *domain.Itinerary) string {
	var b strings.Builder

	first := it.Stops[0]
	fmt.Fprintf(&b, "Departure from origin, %s, at %s.\n\n", first.Address, domain.FormatClock(first.Departure))

	for k, leg := range it.Legs {
		stop := it.Stops[k+1]
		arrive := domain.FormatClock(stop.Arrival)

		if stop.Index == domain.DepotIndex {
			fmt.Fprintf(&b, "Travel back to origin, %s. Travel time is %s. You will arrive back at your origin at %s. Your total journey was %d minutes.\n",
				stop.Address, domain.FormatDuration(leg.TravelMinutes), arrive, it.Summary.ElapsedMinutes)
			continue
		}

		fmt.Fprintf(&b, "Travel to %s, %s. Travel time is %s. You will arrive at %s at %s.\n",
			stop.Name, stop.Address, domain.FormatDuration(leg.TravelMinutes), stop.Name,
			domain.FormatClock(stop.Arrival-leg.WaitMinutes))
		if leg.WaitMinutes > 0 {
			fmt.Fprintf(&b, "Wait %d minutes for %s to open at %s.\n", leg.WaitMinutes, stop.Name, arrive)
		}
		fmt.Fprintf(&b, "Stay at %s for %d minutes from %s to %s. Departure from %s at %s.\n\n",
			stop.Name, stop.ServiceMinutes, arrive, domain.FormatClock(stop.Departure),
			stop.Name, domain.FormatClock(stop.Departure))
	}

	if !it.Summary.ReturnToStart {
		fmt.Fprintf(&b, "Your journey ends at %s. Your total journey was %d minutes.\n",
			it.Stops[len(it.Stops)-1].Name, it.Summary.ElapsedMinutes)
	}
	return b.String()
}
