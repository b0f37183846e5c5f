package graph

// GraphDiff is the structural comparison of two graph snapshots.
//
// AddedEdgesCount/RemovedEdgesCount are differences of totals, not an exact
// multiset diff: edges carry no identity, so a simultaneous add and remove
// cancel out in these counts.
type GraphDiff struct {
	AddedNodes        []string           `json:"added_nodes"`   // node IDs only in new
	RemovedNodes      []string           `json:"removed_nodes"` // node IDs only in old
	ChangedNodes      []NodeChange       `json:"changed_nodes"`
	AddedEdgesCount   int                `json:"added_edges_count"`
	RemovedEdgesCount int                `json:"removed_edges_count"`
	ComplexityChanges []ComplexityChange `json:"complexity_changes"`
}

// NodeChange reports a node present in both graphs whose signature or
// declaration line moved.
type NodeChange struct {
	NodeID       string `json:"node_id"`
	NodeName     string `json:"node_name"`
	OldSignature string `json:"old_signature"`
	NewSignature string `json:"new_signature"`
	OldLine      int    `json:"old_line"`
	NewLine      int    `json:"new_line"`
}

// ComplexityChange reports a nonzero net fan-in+fan-out delta for a node
// present in both graphs. Change is positive when coupling increased.
type ComplexityChange struct {
	NodeID    string `json:"node_id"`
	NodeName  string `json:"node_name"`
	OldFanIn  int    `json:"old_fan_in"`
	NewFanIn  int    `json:"new_fan_in"`
	OldFanOut int    `json:"old_fan_out"`
	NewFanOut int    `json:"new_fan_out"`
	Change    int    `json:"change"`
}

// Diff compares this graph (old) against another (new). Both graphs must
// have consistent indices; fan-in/fan-out deltas are read from each graph's
// incoming/outgoing indices keyed by node ID.
func (g *Graph) Diff(other *Graph) GraphDiff {
	var diff GraphDiff

	oldIDs := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		oldIDs[n.ID] = true
	}
	newIDs := make(map[string]bool, len(other.Nodes))
	for _, n := range other.Nodes {
		newIDs[n.ID] = true
	}

	for _, n := range other.Nodes {
		if !oldIDs[n.ID] {
			diff.AddedNodes = append(diff.AddedNodes, n.ID)
		}
	}
	for _, n := range g.Nodes {
		if !newIDs[n.ID] {
			diff.RemovedNodes = append(diff.RemovedNodes, n.ID)
		}
	}

	for _, oldNode := range g.Nodes {
		newNode := other.GetNodeByID(oldNode.ID)
		if newNode == nil {
			continue
		}

		if oldNode.Signature != newNode.Signature || oldNode.Line != newNode.Line {
			diff.ChangedNodes = append(diff.ChangedNodes, NodeChange{
				NodeID:       oldNode.ID,
				NodeName:     oldNode.Name,
				OldSignature: oldNode.Signature,
				NewSignature: newNode.Signature,
				OldLine:      oldNode.Line,
				NewLine:      newNode.Line,
			})
		}

		// Edges target names, so fan-in reads the incoming index by name.
		oldFanIn := len(g.incoming[oldNode.Name])
		oldFanOut := len(g.outgoing[oldNode.ID])
		newFanIn := len(other.incoming[oldNode.Name])
		newFanOut := len(other.outgoing[oldNode.ID])

		change := (newFanIn + newFanOut) - (oldFanIn + oldFanOut)
		if change != 0 {
			diff.ComplexityChanges = append(diff.ComplexityChanges, ComplexityChange{
				NodeID:    oldNode.ID,
				NodeName:  oldNode.Name,
				OldFanIn:  oldFanIn,
				NewFanIn:  newFanIn,
				OldFanOut: oldFanOut,
				NewFanOut: newFanOut,
				Change:    change,
			})
		}
	}

	if len(other.Edges) > len(g.Edges) {
		diff.AddedEdgesCount = len(other.Edges) - len(g.Edges)
	} else {
		diff.RemovedEdgesCount = len(g.Edges) - len(other.Edges)
	}

	return diff
}
