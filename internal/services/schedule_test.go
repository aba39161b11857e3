package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itinerary-route-service/internal/domain"
)

func TestPropagateWaitsForOpenWindow(t *testing.T) {
	in := uniformInput(2, 30, 10)
	in.Locations[1].Window = domain.TimeWindow{Open: 600, Close: 700}
	p := mustProblem(t, in)

	sched, v := Propagate(p, domain.VisitOrder{0, 1, 0}, 480)
	require.Nil(t, v)
	assert.Equal(t, domain.Schedule{
		{Node: 0, Arrival: 480, Departure: 480},
		{Node: 1, Arrival: 600, Departure: 610},
		{Node: 0, Arrival: 640, Departure: 640},
	}, sched)
}

// directedInput has cheap legs around the cycle 0->1->2->0 and expensive
// ones against it.
func directedInput() domain.ProblemInput {
	in := uniformInput(3, 0, 0)
	in.TravelMinutes = [][]int{
		{0, 10, 100},
		{100, 0, 10},
		{10, 100, 0},
	}
	in.DepartureWindow = window(0, 0)
	return in
}

func TestPropagateUsesDirectedTravel(t *testing.T) {
	p := mustProblem(t, directedInput())

	sched, v := Propagate(p, domain.VisitOrder{0, 1, 2, 0}, 0)
	require.Nil(t, v)
	assert.Equal(t, domain.Schedule{
		{Node: 0, Arrival: 0, Departure: 0},
		{Node: 1, Arrival: 10, Departure: 10},
		{Node: 2, Arrival: 20, Departure: 20},
		{Node: 0, Arrival: 30, Departure: 30},
	}, sched)

	sched, v = Propagate(p, domain.VisitOrder{0, 2, 1, 0}, 0)
	require.Nil(t, v)
	assert.Equal(t, domain.Schedule{
		{Node: 0, Arrival: 0, Departure: 0},
		{Node: 2, Arrival: 100, Departure: 100},
		{Node: 1, Arrival: 200, Departure: 200},
		{Node: 0, Arrival: 300, Departure: 300},
	}, sched)
}

func TestPropagateClampsStartIntoDepartureWindow(t *testing.T) {
	in := uniformInput(2, 30, 10)
	in.DepartureWindow = window(500, 520)
	p := mustProblem(t, in)

	sched, v := Propagate(p, domain.VisitOrder{0, 1, 0}, 0)
	require.Nil(t, v)
	assert.Equal(t, 500, sched.Start())

	sched, v = Propagate(p, domain.VisitOrder{0, 1, 0}, 900)
	require.Nil(t, v)
	assert.Equal(t, 520, sched.Start())
}

func TestPropagateReportsClosedWindow(t *testing.T) {
	in := uniformInput(3, 30, 0)
	in.Locations[1].Window = domain.TimeWindow{Open: 0, Close: 10}
	in.Locations[2].Window = domain.TimeWindow{Open: 0, Close: 10}
	in.DepartureWindow = window(0, 0)
	p := mustProblem(t, in)

	sched, v := Propagate(p, domain.VisitOrder{0, 1, 2, 0}, 0)
	assert.Nil(t, sched)
	require.NotNil(t, v)
	assert.Equal(t, ViolationWindow, v.Kind)
	assert.Equal(t, 1, v.Position)
	assert.Equal(t, 30, v.Arrival)
	assert.Equal(t, 10, v.Limit)
}

func TestPropagateUsesReturnWindowForFinalDepot(t *testing.T) {
	in := uniformInput(2, 20, 30)
	in.DepartureWindow = window(540, 540)
	in.ReturnWindow = window(0, 600)
	p := mustProblem(t, in)

	_, v := Propagate(p, domain.VisitOrder{0, 1, 0}, 540)
	require.NotNil(t, v)
	assert.Equal(t, ViolationReturnWindow, v.Kind)
	assert.Equal(t, 610, v.Arrival)
	assert.Equal(t, 600, v.Limit)
}

func TestPropagateRejectsMalformedOrders(t *testing.T) {
	p := mustProblem(t, uniformInput(3, 10, 0))

	cases := map[string]domain.VisitOrder{
		"short":        {0, 1, 0},
		"wrong start":  {1, 0, 2, 0},
		"wrong end":    {0, 1, 2, 1},
		"duplicate":    {0, 1, 1, 0},
		"out of range": {0, 1, 7, 0},
	}
	for name, order := range cases {
		t.Run(name, func(t *testing.T) {
			_, v := Propagate(p, order, 0)
			require.NotNil(t, v)
			assert.Equal(t, ViolationMalformedOrder, v.Kind)
		})
	}
}

func TestTightenEndsShrinksIdleTime(t *testing.T) {
	in := uniformInput(2, 30, 10)
	in.Locations[1].Window = domain.TimeWindow{Open: 600, Close: 700}
	in.DepartureWindow = window(480, 600)
	p := mustProblem(t, in)

	sched, ok := tightenEnds(p, domain.VisitOrder{0, 1, 0})
	require.True(t, ok)
	assert.Equal(t, 570, sched.Start())
	assert.Equal(t, 640, sched.End())
	assert.Equal(t, 70, sched.Elapsed())
}

func TestTightenEndsKeepsEarliestWhenNothingToGain(t *testing.T) {
	in := uniformInput(3, 15, 10)
	in.DepartureWindow = window(480, 720)
	p := mustProblem(t, in)

	sched, ok := tightenEnds(p, domain.VisitOrder{0, 1, 2, 0})
	require.True(t, ok)
	assert.Equal(t, 480, sched.Start())
	assert.Equal(t, 545, sched.End())
}

func TestTightenEndsInfeasibleOrder(t *testing.T) {
	in := uniformInput(2, 30, 10)
	in.Locations[1].Window = domain.TimeWindow{Open: 0, Close: 20}
	in.DepartureWindow = window(0, 100)
	p := mustProblem(t, in)

	_, ok := tightenEnds(p, domain.VisitOrder{0, 1, 0})
	assert.False(t, ok)
}

func TestLatenessSumsMinutesPastClose(t *testing.T) {
	in := uniformInput(3, 30, 0)
	in.Locations[1].Window = domain.TimeWindow{Open: 0, Close: 10}
	in.Locations[2].Window = domain.TimeWindow{Open: 0, Close: 40}
	in.DepartureWindow = window(0, 0)
	p := mustProblem(t, in)

	// 1 at 30 (20 late), 2 at 60 (20 late), home at 90.
	assert.Equal(t, 40, lateness(p, domain.VisitOrder{0, 1, 2, 0}))
	// 2 at 30, 1 at 60 (50 late).
	assert.Equal(t, 50, lateness(p, domain.VisitOrder{0, 2, 1, 0}))
}

func TestCheckPrecedence(t *testing.T) {
	in := uniformInput(3, 10, 5)
	in.Precedences = []domain.PrecedenceRule{{Before: "C", After: "B"}}
	p := mustProblem(t, in)

	v := CheckPrecedence(p, domain.VisitOrder{0, 1, 2, 0}, nil)
	require.NotNil(t, v)
	assert.Equal(t, ViolationPrecedenceOrder, v.Kind)
	assert.Equal(t, 1, v.Node)
	assert.Equal(t, 2, v.Other)

	assert.Nil(t, CheckPrecedence(p, domain.VisitOrder{0, 2, 1, 0}, nil))

	bad := domain.Schedule{
		{Node: 0, Arrival: 0, Departure: 0},
		{Node: 2, Arrival: 10, Departure: 40},
		{Node: 1, Arrival: 30, Departure: 35},
		{Node: 0, Arrival: 45, Departure: 45},
	}
	v = CheckPrecedence(p, domain.VisitOrder{0, 2, 1, 0}, bad)
	require.NotNil(t, v)
	assert.Equal(t, ViolationPrecedenceTiming, v.Kind)
	assert.Equal(t, 30, v.Arrival)
	assert.Equal(t, 40, v.Limit)
}
