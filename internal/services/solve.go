package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"itinerary-route-service/internal/domain"
	"itinerary-route-service/internal/platform/obs"
)

// ErrInfeasible is matched by every NoSolutionError.
var ErrInfeasible = errors.New("no feasible route")

// NoSolutionReason tells apart why the search came back empty-handed.
type NoSolutionReason string

const (
	ReasonExhausted NoSolutionReason = "search_exhausted"
	ReasonTimedOut  NoSolutionReason = "search_timed_out"
)

// NoSolutionError is returned when no order satisfies every window and
// precedence rule. Violation describes the best infeasible order seen.
type NoSolutionError struct {
	Reason    NoSolutionReason
	Violation *Violation
}

func (e *NoSolutionError) Error() string {
	if e.Violation == nil {
		return fmt.Sprintf("no feasible route: %s", e.Reason)
	}
	return fmt.Sprintf("no feasible route: %s: %s", e.Reason, e.Violation)
}

func (e *NoSolutionError) Is(target error) bool { return target == ErrInfeasible }

const (
	DefaultTimeBudget = 5 * time.Second
	DefaultExactLimit = 9
)

type SolveOptions struct {
	// TimeBudget bounds the wall-clock time of the search. Zero means DefaultTimeBudget.
	TimeBudget time.Duration
	// ExactLimit is the largest number of stops for which an exhaustive search
	// may prove infeasibility. Zero means DefaultExactLimit; negative disables it.
	ExactLimit int
}

func (o SolveOptions) withDefaults() SolveOptions {
	if o.TimeBudget <= 0 {
		o.TimeBudget = DefaultTimeBudget
	}
	if o.ExactLimit == 0 {
		o.ExactLimit = DefaultExactLimit
	}
	return o
}

// SearchStats describes how a solve went; useful in logs and diagnostics.
type SearchStats struct {
	Passes         int
	Improvements   int
	RepairMoves    int
	UsedExhaustive bool
	TimedOut       bool
	Duration       time.Duration
}

// Solution is the best feasible order found with its schedule and summary.
type Solution struct {
	Order    domain.VisitOrder
	Schedule domain.Schedule
	Summary  domain.TripSummary
	Stats    SearchStats
}

// Solve searches for the visit order with the shortest elapsed journey.
//
// A cheapest-feasible-arc construction seeds the search. An infeasible seed
// is repaired by descending on lateness, and small instances fall back to an
// exhaustive search before giving up. The feasible order is then improved by
// local search until a pass finds nothing or the time budget runs out; on
// timeout the best order found so far is returned.
//
// Solve keeps no state between calls and is safe to run concurrently on the
// same problem.
func Solve(ctx context.Context, p *domain.Problem, opts SolveOptions) (_ *Solution, err error) {
	defer obs.Time(ctx, "solver.Solve")(&err)

	if p == nil {
		return nil, errors.New("solve: problem must be non-nil")
	}

	opts = opts.withDefaults()
	started := time.Now()
	deadline := started.Add(opts.TimeBudget)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	s := newSearcher(ctx, p, deadline)

	order := constructOrder(p, s.prec)
	best, feasible := s.evaluate(order)

	if !feasible {
		repaired, timedOut := s.repair(order)
		if repaired {
			best, feasible = s.evaluate(order)
		}
		if !feasible && !timedOut && interiorCount(p) <= opts.ExactLimit {
			var found bool
			var exact domain.VisitOrder
			exact, found, timedOut = s.exhaustive()
			if found {
				copy(order, exact)
				best, feasible = s.evaluate(order)
			}
		}
		if !feasible {
			reason := ReasonExhausted
			if timedOut {
				reason = ReasonTimedOut
			}
			s.stats.Duration = time.Since(started)
			log.Printf("solver: no feasible route reason=%s stops=%d passes=%d exhaustive=%t dur=%dms",
				reason, interiorCount(p), s.stats.Passes, s.stats.UsedExhaustive, s.stats.Duration.Milliseconds())
			return nil, &NoSolutionError{Reason: reason, Violation: s.diagnose(order)}
		}
	}

	best, s.stats.TimedOut = s.improve(order, best)
	s.stats.Duration = time.Since(started)

	log.Printf("solver: solved stops=%d elapsed=%dmin passes=%d improvements=%d timed_out=%t",
		interiorCount(p), best.schedule.Elapsed(), s.stats.Passes, s.stats.Improvements, s.stats.TimedOut)

	return &Solution{
		Order:    order.Clone(),
		Schedule: best.schedule,
		Summary:  Summarize(p, order, best.schedule),
		Stats:    s.stats,
	}, nil
}

// diagnose reports the first violation of an infeasible order.
func (s *searcher) diagnose(order domain.VisitOrder) *Violation {
	if v := s.prec.check(order, nil); v != nil {
		return v
	}
	if _, v := propagate(s.p, order, s.p.DepartureWindow().Open); v != nil {
		return v
	}
	return nil
}

// interiorCount is the number of positions the search may rearrange.
func interiorCount(p *domain.Problem) int {
	return p.OrderLength() - 2
}
