package storage

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/mvp-joe/codenav/internal/graph"
)

// Save writes the graph in the canonical binary format:
// [8-byte magic][4-byte LE version][zstd(msgpack{metadata, nodes, edges})].
// Derived indices are excluded; SaveIndexCache writes them separately.
func Save(g *graph.Graph, path string) error {
	payload, err := msgpack.Marshal(g)
	if err != nil {
		return fmt.Errorf("failed to serialize graph: %w", err)
	}

	compressed, err := zstdCompress(payload, zstd.SpeedDefault)
	if err != nil {
		return fmt.Errorf("failed to compress graph: %w", err)
	}

	var buf bytes.Buffer
	buf.Grow(headerSize + len(compressed))
	buf.Write(magicBytes)
	var version [4]byte
	binary.LittleEndian.PutUint32(version[:], FormatVersion)
	buf.Write(version[:])
	buf.Write(compressed)

	return writeFileAtomic(path, buf.Bytes())
}

// Load reads a graph file through the decoder registry and leaves it ready
// for querying: if a valid index cache sits next to the file its indices are
// adopted verbatim, otherwise they are rebuilt and the cache is regenerated
// opportunistically.
func Load(path string) (*graph.Graph, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}

	g, err := decodeFile(data)
	if err != nil {
		return nil, err
	}
	if g.Metadata.FileMetadata == nil {
		g.Metadata.FileMetadata = make(map[string]graph.FileMetadata)
	}

	if cache, err := LoadIndexCache(path); err == nil && cache.Validate(g) {
		g.ApplyIndices(cache.Indexes)
		return g, nil
	}

	g.BuildIndexes()

	// Cache misses are not errors; regenerate for the next load.
	if err := SaveIndexCache(g, path); err != nil {
		log.Printf("Warning: failed to write index cache for %s: %v", path, err)
	}

	return g, nil
}

// writeFileAtomic writes via a uniquely named temp file in the target
// directory, then renames into place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(path), uuid.NewString()))

	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
