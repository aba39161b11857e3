package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"itinerary-route-service/internal/adapters/distance"
	"itinerary-route-service/internal/api/dto"
	"itinerary-route-service/internal/config"
	"itinerary-route-service/internal/domain"
	"itinerary-route-service/internal/ports"
	"itinerary-route-service/internal/services"
)

// solve plans one itinerary from a JSON plan request file ("-" reads stdin)
// and prints the route text and trip summary.
func main() {
	budget := flag.Duration("budget", services.DefaultTimeBudget, "solver time budget")
	exact := flag.Int("exact-limit", services.DefaultExactLimit, "largest stop count searched exhaustively; negative disables")
	asJSON := flag.Bool("json", false, "print the itinerary as JSON")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: solve [flags] request.json\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	config.LoadDotEnv()

	req, err := readRequest(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}
	in, err := req.ToProblemInput()
	if err != nil {
		log.Fatalf("invalid request: %v", err)
	}

	var provider ports.DistanceProvider
	if key := config.Get("ORS_API_KEY", ""); key != "" && in.TravelMinutes == nil {
		p, err := distance.NewORSDistanceProvider(key, nil, nil,
			distance.WithCountry(config.Get("ORS_COUNTRY", "US")))
		if err != nil {
			log.Fatal(err)
		}
		provider = p
	}

	if req.TimeBudgetMS > 0 {
		*budget = time.Duration(req.TimeBudgetMS) * time.Millisecond
	}

	res, err := services.PlanItinerary(context.Background(), services.PlanItineraryRequest{
		Input: in,
		Solve: services.SolveOptions{TimeBudget: *budget, ExactLimit: *exact},
	}, provider)
	var noSol *services.NoSolutionError
	if errors.As(err, &noSol) {
		fmt.Fprintf(os.Stderr, "No feasible route (%s).\n", noSol.Reason)
		if noSol.Violation != nil {
			fmt.Fprintf(os.Stderr, "Best attempt: %s\n", noSol.Violation)
		}
		os.Exit(1)
	}
	if err != nil {
		log.Fatal(err)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res.Itinerary); err != nil {
			log.Fatal(err)
		}
		return
	}

	printItinerary(os.Stdout, res)
}

func readRequest(path string) (*dto.PlanRequest, error) {
	var (
		b   []byte
		err error
	)
	if path == "-" {
		b, err = io.ReadAll(os.Stdin)
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read request: %w", err)
	}

	var req dto.PlanRequest
	if err := json.Unmarshal(b, &req); err != nil {
		return nil, fmt.Errorf("read request: parse %q: %w", path, err)
	}
	if req.Scenario != "" {
		return nil, fmt.Errorf("read request: scenario references need the server")
	}
	return &req, nil
}

func printItinerary(w io.Writer, res *services.PlanItineraryResult) {
	it := res.Itinerary
	s := it.Summary

	fmt.Fprint(w, it.RouteText)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Stops: %d\n", s.StopCount)
	fmt.Fprintf(w, "Start: %s  End: %s  (%s)\n",
		domain.FormatClock(s.StartTime), domain.FormatClock(s.EndTime), domain.FormatDuration(s.ElapsedMinutes))
	fmt.Fprintf(w, "Travel: %d min  Stops: %d min  Waiting: %d min  Distance: %.1f km\n",
		s.TotalTravelMinutes, s.TotalServiceMinutes, s.TotalWaitMinutes, float64(s.TotalDistanceMeters)/1000)
	for _, warn := range it.Warnings {
		fmt.Fprintf(w, "Warning: %s\n", warn)
	}
	fmt.Fprintf(w, "Search: passes=%d improvements=%d exhaustive=%t timed_out=%t in %s\n",
		res.Stats.Passes, res.Stats.Improvements, res.Stats.UsedExhaustive, res.Stats.TimedOut,
		res.Stats.Duration.Round(time.Millisecond))
}
