package graph

import (
	"sort"
	"strings"
	"time"
)

// TraceResult is one traversed edge in a dependency trace, annotated with
// the depth at which it was crossed.
type TraceResult struct {
	FromID   string   `json:"from_id"`
	ToName   string   `json:"to_name"`
	EdgeType EdgeType `json:"edge_type"`
	CallSite string   `json:"call_site"`
	FilePath string   `json:"file_path"`
	Line     int      `json:"line"`
	Depth    int      `json:"depth"`
}

// ComplexityMetrics holds per-node coupling measures. Cyclomatic is a
// fan-out-based proxy (FanOut+1), not true cyclomatic complexity over
// control flow.
type ComplexityMetrics struct {
	FanIn      int `json:"fan_in"`
	FanOut     int `json:"fan_out"`
	Cyclomatic int `json:"cyclomatic"`
}

// HotspotResult is a call-target name with its incoming call count.
type HotspotResult struct {
	Name      string `json:"name"`
	CallCount int    `json:"call_count"`
}

// resolveTarget maps an edge's textual call target to the positions of every
// node carrying that name. This is the single place where the name-vs-id
// resolution ambiguity is decided; current policy is all matches.
func (g *Graph) resolveTarget(name string) []int {
	return g.byName[name]
}

// TraceDependencies walks outgoing edges from the given node, fanning each
// edge's name target out to all matching nodes, down to maxDepth. Each
// traversed edge is recorded once with its depth; a visited set guarantees
// termination on cycles. Depth 0 is the start node, so maxDepth 0 emits
// nothing.
func (g *Graph) TraceDependencies(fromID string, maxDepth int) []TraceResult {
	var results []TraceResult
	visited := make(map[string]bool)
	g.traceRecursive(fromID, 0, maxDepth, visited, &results)
	return results
}

func (g *Graph) traceRecursive(nodeID string, depth, maxDepth int, visited map[string]bool, results *[]TraceResult) {
	if depth >= maxDepth || visited[nodeID] {
		return
	}
	visited[nodeID] = true

	for _, edge := range g.GetOutgoingEdges(nodeID) {
		*results = append(*results, TraceResult{
			FromID:   edge.From,
			ToName:   edge.To,
			EdgeType: edge.Type,
			CallSite: edge.CallSite,
			FilePath: edge.FilePath,
			Line:     edge.Line,
			Depth:    depth,
		})

		for _, targetIdx := range g.resolveTarget(edge.To) {
			g.traceRecursive(g.Nodes[targetIdx].ID, depth+1, maxDepth, visited, results)
		}
	}
}

// FindCallers returns every edge whose target name matches. The caller's
// display name is resolved by the consumer via the From ID.
func (g *Graph) FindCallers(name string) []*Edge {
	return g.GetIncomingEdges(name)
}

// FindShortestPath runs a breadth-first search from the node with the given
// ID toward any edge targeting toName, bounded by maxDepth hops. It returns
// the sequence of edge-target names along a minimum-hop path (ending with
// toName, excluding the start node) and true, or nil and false when no path
// exists within the bound.
//
// BFS exists alongside the DFS enumeration deliberately: it is O(V+E) where
// enumerating paths is exponential.
func (g *Graph) FindShortestPath(fromID, toName string, maxDepth int) ([]string, bool) {
	type parentLink struct {
		parentID string
		edgeName string
	}

	queue := []string{fromID}
	parent := make(map[string]parentLink)
	visited := map[string]bool{fromID: true}
	depthOf := map[string]int{fromID: 0}

	for len(queue) > 0 {
		currentID := queue[0]
		queue = queue[1:]
		currentDepth := depthOf[currentID]

		if currentDepth >= maxDepth {
			continue
		}

		for _, edge := range g.GetOutgoingEdges(currentID) {
			if edge.To == toName {
				var path []string
				for id := currentID; ; {
					link, ok := parent[id]
					if !ok {
						break
					}
					path = append(path, link.edgeName)
					id = link.parentID
				}
				// parent links were walked back to front
				for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
					path[i], path[j] = path[j], path[i]
				}
				path = append(path, edge.To)
				return path, true
			}

			for _, idx := range g.resolveTarget(edge.To) {
				nextID := g.Nodes[idx].ID
				if !visited[nextID] {
					visited[nextID] = true
					parent[nextID] = parentLink{parentID: currentID, edgeName: edge.To}
					depthOf[nextID] = currentDepth + 1
					queue = append(queue, nextID)
				}
			}
		}
	}

	return nil, false
}

// FindPaths enumerates every path from the node with the given ID to any
// edge targeting toName, bounded by maxDepth.
func (g *Graph) FindPaths(fromID, toName string, maxDepth int) [][]string {
	return g.FindPathsLimited(fromID, toName, maxDepth, int(^uint(0)>>1))
}

// FindPathsLimited enumerates paths depth-first over node positions,
// stopping after maxPaths results. A match is recorded whenever an outgoing
// edge's target name equals toName, regardless of remaining depth budget.
// Visited tracking is stack-scoped: a node is released when the search
// backtracks past it, so distinct paths through a shared intermediate are
// all reported.
func (g *Graph) FindPathsLimited(fromID, toName string, maxDepth, maxPaths int) [][]string {
	fromIdx, ok := g.nodeByID[fromID]
	if !ok {
		return nil
	}

	var paths [][]int
	currentPath := []int{fromIdx}
	visited := make(map[int]bool)
	g.findPathsRecursive(fromIdx, toName, &currentPath, visited, &paths, maxDepth, 0, maxPaths)

	namePaths := make([][]string, 0, len(paths))
	for _, p := range paths {
		names := make([]string, 0, len(p))
		for _, idx := range p {
			names = append(names, g.Nodes[idx].Name)
		}
		namePaths = append(namePaths, names)
	}
	return namePaths
}

func (g *Graph) findPathsRecursive(currentIdx int, targetName string, currentPath *[]int, visited map[int]bool, paths *[][]int, maxDepth, depth, maxPaths int) {
	if len(*paths) >= maxPaths || depth >= maxDepth {
		return
	}

	visited[currentIdx] = true
	defer delete(visited, currentIdx)

	currentID := g.Nodes[currentIdx].ID
	for _, edgeIdx := range g.outgoing[currentID] {
		edge := &g.Edges[edgeIdx]

		if edge.To == targetName {
			if targets := g.resolveTarget(edge.To); len(targets) > 0 {
				complete := make([]int, len(*currentPath), len(*currentPath)+1)
				copy(complete, *currentPath)
				complete = append(complete, targets[0])
				*paths = append(*paths, complete)
			}
			continue
		}

		for _, nextIdx := range g.resolveTarget(edge.To) {
			if visited[nextIdx] {
				continue
			}
			*currentPath = append(*currentPath, nextIdx)
			g.findPathsRecursive(nextIdx, targetName, currentPath, visited, paths, maxDepth, depth+1, maxPaths)
			*currentPath = (*currentPath)[:len(*currentPath)-1]

			if len(*paths) >= maxPaths {
				break
			}
		}

		if len(*paths) >= maxPaths {
			break
		}
	}
}

// Complexity computes fan-in/fan-out for a node. Fan-in counts callers of
// the node's NAME (not its ID), since edges target names.
func (g *Graph) Complexity(nodeID string) ComplexityMetrics {
	fanOut := len(g.outgoing[nodeID])

	var name string
	if n := g.GetNodeByID(nodeID); n != nil {
		name = n.Name
	}
	fanIn := len(g.FindCallers(name))

	return ComplexityMetrics{
		FanIn:      fanIn,
		FanOut:     fanOut,
		Cyclomatic: fanOut + 1,
	}
}

// FindHotspots tallies edge targets by name and returns the most-called,
// sorted by call count descending with name ascending as the tie-break,
// truncated to limit.
func (g *Graph) FindHotspots(limit int) []HotspotResult {
	counts := make(map[string]int)
	for _, e := range g.Edges {
		counts[e.To]++
	}

	results := make([]HotspotResult, 0, len(counts))
	for name, count := range counts {
		results = append(results, HotspotResult{Name: name, CallCount: count})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].CallCount != results[j].CallCount {
			return results[i].CallCount > results[j].CallCount
		}
		return results[i].Name < results[j].Name
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// FindCycles reports call cycles as name sequences, each starting and ending
// on the same name. DFS with a gray/black coloring; every back edge yields one
// cycle, read off the active stack. Cycles reachable from multiple entry
// points are reported once, in node-declaration order.
func (g *Graph) FindCycles() [][]string {
	const (
		white = iota
		gray
		black
	)
	color := make([]int, len(g.Nodes))
	stackPos := make(map[int]int)
	var stack []int
	var cycles [][]string

	var visit func(idx int)
	visit = func(idx int) {
		color[idx] = gray
		stackPos[idx] = len(stack)
		stack = append(stack, idx)

		for _, edgeIdx := range g.outgoing[g.Nodes[idx].ID] {
			for _, nextIdx := range g.resolveTarget(g.Edges[edgeIdx].To) {
				switch color[nextIdx] {
				case white:
					visit(nextIdx)
				case gray:
					start := stackPos[nextIdx]
					cycle := make([]string, 0, len(stack)-start+1)
					for _, pos := range stack[start:] {
						cycle = append(cycle, g.Nodes[pos].Name)
					}
					cycle = append(cycle, g.Nodes[nextIdx].Name)
					cycles = append(cycles, cycle)
				}
			}
		}

		stack = stack[:len(stack)-1]
		delete(stackPos, idx)
		color[idx] = black
	}

	for idx := range g.Nodes {
		if color[idx] == white {
			visit(idx)
		}
	}
	return cycles
}

// ExtractSubgraph returns a new graph containing every node reachable within
// maxDepth (inclusive) from any node matching fromName, plus every edge
// whose From is inside the closure. The result carries fresh indices and an
// updated generator tag.
func (g *Graph) ExtractSubgraph(fromName string, maxDepth int) *Graph {
	visited := make(map[string]bool)
	include := make(map[string]bool)

	for _, startIdx := range g.resolveTarget(fromName) {
		g.extractRecursive(g.Nodes[startIdx].ID, 0, maxDepth, visited, include)
	}

	var nodes []Node
	for _, n := range g.Nodes {
		if include[n.ID] {
			nodes = append(nodes, n)
		}
	}

	var edges []Edge
	for _, e := range g.Edges {
		if include[e.From] {
			edges = append(edges, e)
		}
	}

	sub := &Graph{
		Metadata: Metadata{
			Version:     MetadataVersion,
			GeneratedAt: time.Now().UTC(),
			Generator:   DefaultGenerator + "-extract",
			Language:    g.Metadata.Language,
			RootPath:    g.Metadata.RootPath,
			Stats: Stats{
				TotalNodes: len(nodes),
				TotalEdges: len(edges),
			},
			FileMetadata: make(map[string]FileMetadata),
		},
		Nodes: nodes,
		Edges: edges,
	}
	sub.BuildIndexes()
	return sub
}

func (g *Graph) extractRecursive(nodeID string, depth, maxDepth int, visited, include map[string]bool) {
	if depth > maxDepth || visited[nodeID] {
		return
	}
	visited[nodeID] = true
	include[nodeID] = true

	for _, edge := range g.GetOutgoingEdges(nodeID) {
		for _, targetIdx := range g.resolveTarget(edge.To) {
			g.extractRecursive(g.Nodes[targetIdx].ID, depth+1, maxDepth, visited, include)
		}
	}
}

// FilterOptions selects nodes by package, type, and a file-path heuristic
// for test exclusion. Zero values mean "no constraint".
type FilterOptions struct {
	Package      string
	Type         NodeType
	ExcludeTests bool
}

// Filter returns a new graph containing the nodes passing every supplied
// predicate and the edges whose From survives, freshly indexed.
func (g *Graph) Filter(opts FilterOptions) *Graph {
	var nodes []Node
	keptIDs := make(map[string]bool)

	for _, n := range g.Nodes {
		if opts.Package != "" && n.Package != opts.Package {
			continue
		}
		if opts.Type != "" && n.Type != opts.Type {
			continue
		}
		if opts.ExcludeTests && isTestPath(n.FilePath) {
			continue
		}
		nodes = append(nodes, n)
		keptIDs[n.ID] = true
	}

	var edges []Edge
	for _, e := range g.Edges {
		if keptIDs[e.From] {
			edges = append(edges, e)
		}
	}

	filtered := &Graph{
		Metadata: Metadata{
			Version:     g.Metadata.Version,
			GeneratedAt: time.Now().UTC(),
			Generator:   DefaultGenerator + "-filter",
			Language:    g.Metadata.Language,
			RootPath:    g.Metadata.RootPath,
			Stats: Stats{
				TotalNodes: len(nodes),
				TotalEdges: len(edges),
			},
			FileMetadata: make(map[string]FileMetadata),
		},
		Nodes: nodes,
		Edges: edges,
	}
	filtered.BuildIndexes()
	return filtered
}

func isTestPath(path string) bool {
	return strings.Contains(path, "_test") || strings.Contains(path, ".test.")
}
