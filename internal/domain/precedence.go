package domain

import (
	"fmt"
	"strings"
)

// resolvePrecedences maps named rules onto location indices and rejects
// cyclic rule sets. Duplicate rules collapse into one pair.
func resolvePrecedences(locations []Location, rules []PrecedenceRule) ([]Precedence, error) {
	if len(rules) == 0 {
		return nil, nil
	}

	byName := make(map[string]int, len(locations))
	dup := make(map[string]struct{})
	for i, loc := range locations {
		key := strings.ToLower(loc.Name)
		if _, ok := byName[key]; ok {
			dup[key] = struct{}{}
			continue
		}
		byName[key] = i
	}

	lookup := func(field, name string) (int, error) {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, ok := dup[key]; ok {
			return 0, definitionErrorf(field, "stop name %q is ambiguous", name)
		}
		idx, ok := byName[key]
		if !ok {
			return 0, definitionErrorf(field, "unknown stop %q", name)
		}
		if idx == DepotIndex {
			return 0, definitionErrorf(field, "the depot %q cannot take part in a precedence rule", name)
		}
		return idx, nil
	}

	seen := make(map[Precedence]struct{}, len(rules))
	out := make([]Precedence, 0, len(rules))
	for i, r := range rules {
		field := fmt.Sprintf("precedence_constraints[%d]", i)
		before, err := lookup(field, r.Before)
		if err != nil {
			return nil, err
		}
		after, err := lookup(field, r.After)
		if err != nil {
			return nil, err
		}
		if before == after {
			return nil, definitionErrorf(field, "stop %q cannot precede itself", r.Before)
		}

		pc := Precedence{Before: before, After: after}
		if _, ok := seen[pc]; ok {
			continue
		}
		seen[pc] = struct{}{}
		out = append(out, pc)
	}

	if cycle := findCycle(len(locations), out); cycle != nil {
		names := make([]string, 0, len(cycle))
		for _, idx := range cycle {
			names = append(names, locations[idx].Name)
		}
		return nil, definitionErrorf("precedence_constraints", "cycle detected: %s", strings.Join(names, " -> "))
	}

	return out, nil
}

const (
	white = iota
	gray
	black
)

// findCycle returns one cycle (first vertex repeated at the end) or nil.
// Depth-first search with white/gray/black colouring; a gray hit is a back edge.
func findCycle(n int, pairs []Precedence) []int {
	adj := make([][]int, n)
	for _, pc := range pairs {
		adj[pc.Before] = append(adj[pc.Before], pc.After)
	}

	state := make([]int, n)
	stack := make([]int, 0, n)

	var visit func(v int) []int
	visit = func(v int) []int {
		state[v] = gray
		stack = append(stack, v)
		for _, w := range adj[v] {
			switch state[w] {
			case gray:
				for i, s := range stack {
					if s == w {
						cycle := append([]int(nil), stack[i:]...)
						return append(cycle, w)
					}
				}
			case white:
				if c := visit(w); c != nil {
					return c
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[v] = black
		return nil
	}

	for v := 0; v < n; v++ {
		if state[v] == white {
			if c := visit(v); c != nil {
				return c
			}
		}
	}
	return nil
}
