package validation

import (
	"fmt"
	"sort"

	coreprogram "github.com/blockflow/blockflow/internal/core/program"
)

// ValidateProgram performs structural validation on a program loaded from an
// external source where Add* guards may have been bypassed: well-formed
// elements and connections, endpoint resolution, no self-loops.
func ValidateProgram(p *coreprogram.Program) error {
	if p == nil {
		return fmt.Errorf("program is nil")
	}
	return p.Validate()
}

// EntryPoints returns the ids of elements that are never the target of any
// connection, in ascending order. An empty result means the caller must fall
// back to a single arbitrary element.
func EntryPoints(elements map[string]*coreprogram.Element, connections map[string]*coreprogram.Connection) []string {
	incoming := make(map[string]bool, len(elements))
	for _, c := range connections {
		incoming[c.To] = true
	}
	var entries []string
	for id := range elements {
		if !incoming[id] {
			entries = append(entries, id)
		}
	}
	sort.Strings(entries)
	return entries
}

// FindCycles reports the simple cycles discoverable by a depth-first scan of
// the connection graph, each as the ordered list of element ids on the cycle.
// Cycles are diagnostics only: the engine's at-most-once dedup makes them
// harmless at run time.
func FindCycles(elements map[string]*coreprogram.Element, connections map[string]*coreprogram.Connection) [][]string {
	adj := adjacency(connections)

	ids := make([]string, 0, len(elements))
	for id := range elements {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	const (
		white = 0 // unvisited
		gray  = 1 // on the current DFS path
		black = 2 // fully explored
	)
	color := make(map[string]int, len(ids))
	var path []string
	var cycles [][]string
	seen := make(map[string]struct{})

	var dfs func(string)
	dfs = func(u string) {
		color[u] = gray
		path = append(path, u)
		for _, v := range adj[u] {
			switch color[v] {
			case gray:
				// Back-edge: extract the cycle from the current path.
				if c := extractCycle(path, v); c != nil {
					key := canonicalCycleKey(c)
					if _, dup := seen[key]; !dup {
						seen[key] = struct{}{}
						cycles = append(cycles, c)
					}
				}
			case white:
				dfs(v)
			}
		}
		path = path[:len(path)-1]
		color[u] = black
	}

	for _, id := range ids {
		if color[id] == white {
			dfs(id)
		}
	}
	return cycles
}

// FindOrphans returns the ids of elements touched by no connection at all,
// in ascending order. Orphans still execute if chosen as entry points.
func FindOrphans(elements map[string]*coreprogram.Element, connections map[string]*coreprogram.Connection) []string {
	touched := make(map[string]bool, len(elements))
	for _, c := range connections {
		touched[c.From] = true
		touched[c.To] = true
	}
	var orphans []string
	for id := range elements {
		if !touched[id] {
			orphans = append(orphans, id)
		}
	}
	sort.Strings(orphans)
	return orphans
}

// adjacency builds a deterministic adjacency list: targets sorted per source.
func adjacency(connections map[string]*coreprogram.Connection) map[string][]string {
	adj := make(map[string][]string)
	for _, c := range connections {
		adj[c.From] = append(adj[c.From], c.To)
	}
	for src := range adj {
		sort.Strings(adj[src])
	}
	return adj
}

func extractCycle(path []string, start string) []string {
	for i, id := range path {
		if id == start {
			return append([]string(nil), path[i:]...)
		}
	}
	return nil
}

// canonicalCycleKey rotates a cycle to start at its smallest id so the same
// cycle discovered from different entry nodes deduplicates.
func canonicalCycleKey(cycle []string) string {
	min := 0
	for i := range cycle {
		if cycle[i] < cycle[min] {
			min = i
		}
	}
	key := ""
	for i := 0; i < len(cycle); i++ {
		key += cycle[(min+i)%len(cycle)] + "->"
	}
	return key
}
