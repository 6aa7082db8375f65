package enumeration

import (
	"slices"

	"github.com/limaJavier/mklandscape/pkg/landscape"
	"github.com/samber/lo"
)

// Graph is the variable interaction graph: graph[x] holds every variable sharing a subfunction with x
type Graph []map[int]struct{}

func BuildGraph(mk landscape.Landscape) Graph {
	graph := make(Graph, mk.Length)
	for i := range graph {
		graph[i] = make(map[int]struct{})
	}

	for _, subfunction := range mk.Subfunctions {
		for _, x := range subfunction.Variables {
			for _, y := range subfunction.Variables {
				if x != y {
					graph[x][y] = struct{}{}
				}
			}
		}
	}
	return graph
}

// Neighbors returns the sorted adjacency of vertex
func (graph Graph) Neighbors(vertex int) []int {
	neighbors := lo.Keys(graph[vertex])
	slices.Sort(neighbors)
	return neighbors
}

// ConnectedSubsets finds every connected induced subgraph with "radius" or less vertices, each exactly once
func ConnectedSubsets(graph Graph, radius int) [][]int {
	found := make([][]int, 0)
	closed := make(map[int]bool)
	// Vertices are never reopened at this level, so subsets rooted at v only grow into vertices after v
	for v := range graph {
		closed[v] = true
		expand(graph, v, closed, nil, nil, radius, &found)
	}
	return found
}

// expand records "prev" plus "v" and then every subset that contains both
func expand(graph Graph, v int, closed map[int]bool, prev []int, prevOpen map[int]struct{}, radius int, found *[][]int) {
	inset := make([]int, len(prev), len(prev)+1)
	copy(inset, prev)
	inset = append(inset, v)
	*found = append(*found, inset)
	if len(inset) >= radius {
		return
	}

	// Open everything adjacent to v
	open := make(map[int]struct{}, len(prevOpen)+len(graph[v]))
	for vertex := range prevOpen {
		open[vertex] = struct{}{}
	}
	for vertex := range graph[v] {
		open[vertex] = struct{}{}
	}
	candidates := lo.Keys(open)
	slices.Sort(candidates)

	closedHere := make([]int, 0)
	for _, working := range candidates {
		if closed[working] {
			continue
		}
		closedHere = append(closedHere, working)
		closed[working] = true
		expand(graph, working, closed, inset, open, radius, found)
	}

	// Reopen anything closed at this level
	for _, working := range closedHere {
		delete(closed, working)
	}
}
