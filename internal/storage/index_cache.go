package storage

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/mvp-joe/codenav/internal/graph"
)

// CacheVersion tags the index cache layout. Bump on any index shape change;
// stale versions trigger a silent rebuild.
const CacheVersion = "1"

// IndexCache is the companion .idx file: the five derived indices plus a
// structural fingerprint of the graph they were built from. Adopting a valid
// cache skips the O(N+E) index rebuild on load.
type IndexCache struct {
	Version   string               `msgpack:"version"`
	GraphHash string               `msgpack:"graph_hash"`
	NodeCount int                  `msgpack:"node_count"`
	EdgeCount int                  `msgpack:"edge_count"`
	Indexes   *graph.IndexSnapshot `msgpack:"indexes"`
}

// IndexCachePath derives the cache path from the graph file path: same stem,
// .idx extension.
func IndexCachePath(graphPath string) string {
	return strings.TrimSuffix(graphPath, filepath.Ext(graphPath)) + ".idx"
}

// SaveIndexCache snapshots the graph's indices next to its data file,
// compressed at the fastest zstd level since cache writes sit on the save
// path.
func SaveIndexCache(g *graph.Graph, graphPath string) error {
	cache := &IndexCache{
		Version:   CacheVersion,
		GraphHash: g.Fingerprint(),
		NodeCount: len(g.Nodes),
		EdgeCount: len(g.Edges),
		Indexes:   g.ExtractIndices(),
	}

	payload, err := msgpack.Marshal(cache)
	if err != nil {
		return fmt.Errorf("failed to serialize index cache: %w", err)
	}

	compressed, err := zstdCompress(payload, zstd.SpeedFastest)
	if err != nil {
		return fmt.Errorf("failed to compress index cache: %w", err)
	}

	return writeFileAtomic(IndexCachePath(graphPath), compressed)
}

// LoadIndexCache reads the companion cache for a graph file. Absence or
// corruption is an error for the caller to treat as a cache miss.
func LoadIndexCache(graphPath string) (*IndexCache, error) {
	data, err := readFile(IndexCachePath(graphPath))
	if err != nil {
		return nil, err
	}

	payload, err := zstdDecompress(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress index cache: %w", err)
	}

	var cache IndexCache
	if err := msgpack.Unmarshal(payload, &cache); err != nil {
		return nil, fmt.Errorf("failed to decode index cache: %w", err)
	}
	return &cache, nil
}

// Validate reports whether the cache matches the just-loaded graph. The
// fingerprint is a fast heuristic (counts + first/last samples), not a
// content digest; see graph.Fingerprint.
func (c *IndexCache) Validate(g *graph.Graph) bool {
	return c.Version == CacheVersion &&
		c.Indexes != nil &&
		c.NodeCount == len(g.Nodes) &&
		c.EdgeCount == len(g.Edges) &&
		c.GraphHash == g.Fingerprint()
}
