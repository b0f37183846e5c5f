package graph

import (
	"fmt"
	"time"

	"github.com/zeebo/xxh3"
)

// Graph is the aggregate store: node/edge slices, metadata, and five derived
// position indices. The indices map keys to offsets into Nodes/Edges and are
// never serialized with the graph; they are rebuilt on load or adopted from
// the index cache.
//
// Graph is a single-writer structure. Queries must not run concurrently with
// AddNode/AddEdge/Merge/RemoveNodesFromFile.
type Graph struct {
	Metadata Metadata `json:"_metadata" msgpack:"metadata"`
	Nodes    []Node   `json:"nodes" msgpack:"nodes"`
	Edges    []Edge   `json:"edges" msgpack:"edges"`

	// Derived indices, positions into Nodes/Edges.
	nodeByID map[string]int      // node ID -> node position (1:1)
	byName   map[string][]int    // node name -> node positions
	byType   map[NodeType][]int  // node type -> node positions
	outgoing map[string][]int    // edge From (node ID) -> edge positions
	incoming map[string][]int    // edge To (name) -> edge positions

	indicesDirty bool
}

// New creates an empty graph for the given root path and source language.
func New(rootPath, language string) *Graph {
	return NewWithCapacity(rootPath, language, 0, 0)
}

// NewWithCapacity creates an empty graph with pre-allocated storage for the
// estimated node and edge counts.
func NewWithCapacity(rootPath, language string, estimatedNodes, estimatedEdges int) *Graph {
	return &Graph{
		Metadata: Metadata{
			Version:      MetadataVersion,
			GeneratedAt:  time.Now().UTC(),
			Generator:    DefaultGenerator,
			Language:     language,
			RootPath:     rootPath,
			FileMetadata: make(map[string]FileMetadata),
		},
		Nodes:    make([]Node, 0, estimatedNodes),
		Edges:    make([]Edge, 0, estimatedEdges),
		nodeByID: make(map[string]int, estimatedNodes),
		byName:   make(map[string][]int, estimatedNodes/2+1),
		byType:   make(map[NodeType][]int, 4),
		outgoing: make(map[string][]int, estimatedEdges/2+1),
		incoming: make(map[string][]int, estimatedEdges/2+1),
	}
}

// AddNode appends a node and inserts it into the node indices.
func (g *Graph) AddNode(n Node) {
	idx := len(g.Nodes)
	g.Nodes = append(g.Nodes, n)
	g.nodeByID[n.ID] = idx
	g.byName[n.Name] = append(g.byName[n.Name], idx)
	g.byType[n.Type] = append(g.byType[n.Type], idx)
	g.Metadata.Stats.TotalNodes = len(g.Nodes)
}

// AddEdge appends an edge and inserts it into the edge indices.
func (g *Graph) AddEdge(e Edge) {
	idx := len(g.Edges)
	g.Edges = append(g.Edges, e)
	g.outgoing[e.From] = append(g.outgoing[e.From], idx)
	g.incoming[e.To] = append(g.incoming[e.To], idx)
	g.Metadata.Stats.TotalEdges = len(g.Edges)
}

// Merge absorbs another graph's nodes and edges, offsetting positions and
// extending every index incrementally. This is the synchronization point for
// parallel parsing: partial graphs are merged sequentially into the base.
//
// Duplicate node IDs across merged partials are not detected; callers avoid
// them by construction (IDs derive from file paths, which are partitioned
// across parse units).
func (g *Graph) Merge(other *Graph) {
	baseNode := len(g.Nodes)
	baseEdge := len(g.Edges)

	for i, n := range other.Nodes {
		idx := baseNode + i
		g.nodeByID[n.ID] = idx
		g.byName[n.Name] = append(g.byName[n.Name], idx)
		g.byType[n.Type] = append(g.byType[n.Type], idx)
		g.Nodes = append(g.Nodes, n)
	}

	for i, e := range other.Edges {
		idx := baseEdge + i
		g.outgoing[e.From] = append(g.outgoing[e.From], idx)
		g.incoming[e.To] = append(g.incoming[e.To], idx)
		g.Edges = append(g.Edges, e)
	}

	for path, fm := range other.Metadata.FileMetadata {
		g.Metadata.FileMetadata[path] = fm
	}

	g.Metadata.Stats.TotalNodes = len(g.Nodes)
	g.Metadata.Stats.TotalEdges = len(g.Edges)
}

// BuildIndexes clears and fully rebuilds all five indices from Nodes/Edges.
// O(N+E).
func (g *Graph) BuildIndexes() {
	g.nodeByID = make(map[string]int, len(g.Nodes))
	g.byName = make(map[string][]int, len(g.Nodes)/2+1)
	g.byType = make(map[NodeType][]int, 4)
	g.outgoing = make(map[string][]int, len(g.Edges)/2+1)
	g.incoming = make(map[string][]int, len(g.Edges)/2+1)

	for idx, n := range g.Nodes {
		g.nodeByID[n.ID] = idx
		g.byName[n.Name] = append(g.byName[n.Name], idx)
		g.byType[n.Type] = append(g.byType[n.Type], idx)
	}

	for idx, e := range g.Edges {
		g.outgoing[e.From] = append(g.outgoing[e.From], idx)
		g.incoming[e.To] = append(g.incoming[e.To], idx)
	}

	g.indicesDirty = false
}

// EnsureIndices rebuilds the indices only if a structural mutation marked
// them dirty.
func (g *Graph) EnsureIndices() {
	if g.indicesDirty {
		g.BuildIndexes()
	}
}

// MarkIndicesDirty flags the indices as stale. The next EnsureIndices call
// performs a full rebuild.
func (g *Graph) MarkIndicesDirty() {
	g.indicesDirty = true
}

// RemoveNodesFromFile removes every node whose FilePath matches, every edge
// whose From belongs to a removed node, and the file's metadata entry.
// Removal shifts positions, so the indices are rebuilt unconditionally.
func (g *Graph) RemoveNodesFromFile(filePath string) {
	removed := make(map[string]bool)
	for _, n := range g.Nodes {
		if n.FilePath == filePath {
			removed[n.ID] = true
		}
	}
	if len(removed) == 0 {
		delete(g.Metadata.FileMetadata, filePath)
		return
	}

	kept := g.Nodes[:0]
	for _, n := range g.Nodes {
		if !removed[n.ID] {
			kept = append(kept, n)
		}
	}
	g.Nodes = kept

	keptEdges := g.Edges[:0]
	for _, e := range g.Edges {
		if !removed[e.From] {
			keptEdges = append(keptEdges, e)
		}
	}
	g.Edges = keptEdges

	delete(g.Metadata.FileMetadata, filePath)
	g.Metadata.Stats.TotalNodes = len(g.Nodes)
	g.Metadata.Stats.TotalEdges = len(g.Edges)

	g.BuildIndexes()
}

// TrackFileMetadata records (or overwrites) the file -> node-ID association
// used by incremental change detection.
func (g *Graph) TrackFileMetadata(filePath, lastModified string) {
	var nodeIDs []string
	for _, n := range g.Nodes {
		if n.FilePath == filePath {
			nodeIDs = append(nodeIDs, n.ID)
		}
	}
	g.Metadata.FileMetadata[filePath] = FileMetadata{
		Path:         filePath,
		LastModified: lastModified,
		NodeIDs:      nodeIDs,
	}
}

// GetNodeByID returns the node with the given ID, or nil.
func (g *Graph) GetNodeByID(id string) *Node {
	if idx, ok := g.nodeByID[id]; ok {
		return &g.Nodes[idx]
	}
	return nil
}

// GetNodesByName returns every node with the given name. Empty on miss.
func (g *Graph) GetNodesByName(name string) []*Node {
	indices := g.byName[name]
	nodes := make([]*Node, 0, len(indices))
	for _, idx := range indices {
		nodes = append(nodes, &g.Nodes[idx])
	}
	return nodes
}

// GetNodesByType returns every node of the given type. Empty on miss.
func (g *Graph) GetNodesByType(t NodeType) []*Node {
	indices := g.byType[t]
	nodes := make([]*Node, 0, len(indices))
	for _, idx := range indices {
		nodes = append(nodes, &g.Nodes[idx])
	}
	return nodes
}

// GetOutgoingEdges returns the edges whose From equals the given node ID.
func (g *Graph) GetOutgoingEdges(nodeID string) []*Edge {
	indices := g.outgoing[nodeID]
	edges := make([]*Edge, 0, len(indices))
	for _, idx := range indices {
		edges = append(edges, &g.Edges[idx])
	}
	return edges
}

// GetIncomingEdges returns the edges whose To equals the given name.
func (g *Graph) GetIncomingEdges(name string) []*Edge {
	indices := g.incoming[name]
	edges := make([]*Edge, 0, len(indices))
	for _, idx := range indices {
		edges = append(edges, &g.Edges[idx])
	}
	return edges
}

// Fingerprint computes a cheap structural summary used to validate the index
// cache: node/edge counts plus identifying fields of the first and last node
// and edge. It is a fast heuristic, not a content digest — two graphs with
// identical counts and identical first/last samples are indistinguishable.
func (g *Graph) Fingerprint() string {
	h := xxh3.New()
	fmt.Fprintf(h, "%d:%d", len(g.Nodes), len(g.Edges))

	if len(g.Nodes) > 0 {
		first, last := g.Nodes[0], g.Nodes[len(g.Nodes)-1]
		h.WriteString(first.ID)
		h.WriteString(first.Name)
		h.WriteString(last.ID)
		h.WriteString(last.Name)
	}
	if len(g.Edges) > 0 {
		first, last := g.Edges[0], g.Edges[len(g.Edges)-1]
		h.WriteString(first.From)
		h.WriteString(first.To)
		h.WriteString(last.From)
		h.WriteString(last.To)
	}

	return fmt.Sprintf("%x", h.Sum64())
}

// IndexSnapshot is a copyable view of the five derived indices, used by the
// on-disk index cache.
type IndexSnapshot struct {
	NodeByID map[string]int     `msgpack:"node_by_id"`
	ByName   map[string][]int   `msgpack:"by_name"`
	ByType   map[NodeType][]int `msgpack:"by_type"`
	Outgoing map[string][]int   `msgpack:"outgoing"`
	Incoming map[string][]int   `msgpack:"incoming"`
}

// ExtractIndices copies the current indices into a snapshot.
func (g *Graph) ExtractIndices() *IndexSnapshot {
	return &IndexSnapshot{
		NodeByID: g.nodeByID,
		ByName:   g.byName,
		ByType:   g.byType,
		Outgoing: g.outgoing,
		Incoming: g.incoming,
	}
}

// ApplyIndices adopts a cached snapshot verbatim, skipping the O(N+E)
// rebuild. Callers must have validated the snapshot against Fingerprint.
func (g *Graph) ApplyIndices(s *IndexSnapshot) {
	g.nodeByID = s.NodeByID
	g.byName = s.ByName
	g.byType = s.ByType
	g.outgoing = s.Outgoing
	g.incoming = s.Incoming
	g.indicesDirty = false
}
