// Package storage persists graphs to disk and back.
//
// The canonical format is a small fixed header (magic + little-endian format
// version) followed by a zstd-compressed MessagePack payload of the graph's
// metadata, nodes, and edges. Derived indices are never part of this payload;
// they live in a companion cache file (see index_cache.go).
//
// Loading goes through an explicit decoder registry iterated in priority
// order, so the legacy formats (zstd-compressed JSON, lz4-compressed JSON,
// plain JSON) remain readable without ad hoc fallback chains.
package storage

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/mvp-joe/codenav/internal/graph"
)

// FormatVersion is the canonical binary format version.
const FormatVersion uint32 = 1

// headerSize is 8 bytes of magic plus a 4-byte version.
const headerSize = 12

var magicBytes = []byte("CODENAV\x01")

// zstd frame and lz4 frame magic numbers, little-endian on disk.
var (
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
)

// decoder is one entry in the format registry. Sniff reports whether the
// raw file bytes look like this format; Decode then either succeeds or
// fails hard — a positive sniff never falls through to later entries.
type decoder struct {
	name   string
	sniff  func(data []byte) bool
	decode func(data []byte) (*graph.Graph, error)
}

// decoders is iterated in priority order: the canonical header first, then
// the legacy compressed-JSON variants, plain JSON last.
var decoders = []decoder{
	{name: "binary", sniff: sniffBinary, decode: decodeBinary},
	{name: "zstd-json", sniff: sniffPrefix(zstdMagic), decode: decodeZstdJSON},
	{name: "lz4-json", sniff: sniffPrefix(lz4Magic), decode: decodeLZ4JSON},
	{name: "json", sniff: sniffJSON, decode: decodeJSON},
}

func sniffBinary(data []byte) bool {
	return len(data) >= headerSize && bytes.Equal(data[:8], magicBytes)
}

func sniffPrefix(magic []byte) func([]byte) bool {
	return func(data []byte) bool {
		return len(data) >= len(magic) && bytes.Equal(data[:len(magic)], magic)
	}
}

func sniffJSON(data []byte) bool {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func decodeBinary(data []byte) (*graph.Graph, error) {
	version := binary.LittleEndian.Uint32(data[8:headerSize])
	if version != FormatVersion {
		return nil, fmt.Errorf("unsupported graph format version: %d", version)
	}

	payload, err := zstdDecompress(data[headerSize:])
	if err != nil {
		return nil, fmt.Errorf("failed to decompress graph payload: %w", err)
	}

	var g graph.Graph
	if err := msgpack.Unmarshal(payload, &g); err != nil {
		return nil, fmt.Errorf("failed to decode graph payload: %w", err)
	}
	return &g, nil
}

func decodeZstdJSON(data []byte) (*graph.Graph, error) {
	payload, err := zstdDecompress(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress legacy graph file: %w", err)
	}
	return unmarshalJSONGraph(payload)
}

func decodeLZ4JSON(data []byte) (*graph.Graph, error) {
	r := lz4.NewReader(bytes.NewReader(data))
	payload, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress legacy graph file: %w", err)
	}
	return unmarshalJSONGraph(payload)
}

func decodeJSON(data []byte) (*graph.Graph, error) {
	return unmarshalJSONGraph(data)
}

func unmarshalJSONGraph(data []byte) (*graph.Graph, error) {
	var g graph.Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("failed to parse graph JSON: %w", err)
	}
	return &g, nil
}

// decodeFile runs the registry against raw file bytes.
func decodeFile(data []byte) (*graph.Graph, error) {
	for _, d := range decoders {
		if d.sniff(data) {
			g, err := d.decode(data)
			if err != nil {
				return nil, fmt.Errorf("%s decoder: %w", d.name, err)
			}
			return g, nil
		}
	}
	return nil, fmt.Errorf("unrecognized graph file format")
}

func zstdCompress(data []byte, level zstd.EncoderLevel) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(level))
	if err != nil {
		return nil, err
	}
	out := enc.EncodeAll(data, nil)
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return out, nil
}

func zstdDecompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph file %s: %w", path, err)
	}
	return data, nil
}
