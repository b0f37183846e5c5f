package storage

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/mvp-joe/codenav/internal/graph"
)

// SaveJSON writes the graph as indented JSON. Human-readable and diffable,
// at several times the size of the binary format.
func SaveJSON(g *graph.Graph, path string) error {
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize graph: %w", err)
	}
	return writeFileAtomic(path, data)
}

// LoadJSON reads a plain-JSON graph file and rebuilds its indices. Unlike
// Load it does not consult the index cache; plain JSON is the debugging
// format, not the hot path.
func LoadJSON(path string) (*graph.Graph, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}

	g, err := unmarshalJSONGraph(data)
	if err != nil {
		return nil, err
	}
	if g.Metadata.FileMetadata == nil {
		g.Metadata.FileMetadata = make(map[string]graph.FileMetadata)
	}
	g.BuildIndexes()
	return g, nil
}

// SaveCompressed writes zstd-compressed JSON, the pre-binary on-disk format.
// Kept for producing files older tooling can still read.
func SaveCompressed(g *graph.Graph, path string) error {
	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("failed to serialize graph: %w", err)
	}

	compressed, err := zstdCompress(data, zstd.SpeedDefault)
	if err != nil {
		return fmt.Errorf("failed to compress graph: %w", err)
	}
	return writeFileAtomic(path, compressed)
}

// SaveFastCompressed writes lz4-compressed JSON. Weaker ratio than zstd but
// the cheapest compression on the write side.
func SaveFastCompressed(g *graph.Graph, path string) error {
	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("failed to serialize graph: %w", err)
	}

	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to compress graph: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to compress graph: %w", err)
	}
	return writeFileAtomic(path, buf.Bytes())
}
