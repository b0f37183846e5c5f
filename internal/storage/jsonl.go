package storage

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mvp-joe/codenav/internal/graph"
)

// jsonlRecord is one line of a JSONL export. Kind discriminates which of the
// remaining field sets is populated.
type jsonlRecord struct {
	Kind string `json:"type"`

	// metadata fields
	Version     string       `json:"version,omitempty"`
	GeneratedAt string       `json:"generated_at,omitempty"`
	Generator   string       `json:"generator,omitempty"`
	Language    string       `json:"language,omitempty"`
	RootPath    string       `json:"root_path,omitempty"`
	Stats       *graph.Stats `json:"stats,omitempty"`

	// node fields
	ID            string            `json:"id,omitempty"`
	Name          string            `json:"name,omitempty"`
	NodeType      string            `json:"node_type,omitempty"`
	EndLine       int               `json:"end_line,omitempty"`
	Package       string            `json:"package,omitempty"`
	Signature     string            `json:"signature,omitempty"`
	Parameters    []graph.Parameter `json:"parameters,omitempty"`
	Returns       []string          `json:"returns,omitempty"`
	Documentation string            `json:"documentation,omitempty"`
	Tags          []string          `json:"tags,omitempty"`

	// edge fields
	From     string `json:"from,omitempty"`
	To       string `json:"to,omitempty"`
	EdgeType string `json:"edge_type,omitempty"`
	CallSite string `json:"call_site,omitempty"`

	// shared by nodes and edges
	FilePath string            `json:"file_path,omitempty"`
	Line     int               `json:"line,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// ExportJSONL writes one JSON object per line: a metadata record first, then
// every node, then every edge. The line-per-record shape suits streaming
// consumers that never need the whole graph in memory.
func ExportJSONL(g *graph.Graph, path string) error {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	enc := json.NewEncoder(w)

	meta := jsonlRecord{
		Kind:        "metadata",
		Version:     g.Metadata.Version,
		GeneratedAt: g.Metadata.GeneratedAt.Format(time.RFC3339),
		Generator:   g.Metadata.Generator,
		Language:    g.Metadata.Language,
		RootPath:    g.Metadata.RootPath,
		Stats:       &g.Metadata.Stats,
	}
	if err := enc.Encode(meta); err != nil {
		return fmt.Errorf("failed to write metadata line: %w", err)
	}

	for _, node := range g.Nodes {
		rec := jsonlRecord{
			Kind:          "node",
			ID:            node.ID,
			Name:          node.Name,
			NodeType:      jsonlNodeTypeName(node.Type),
			FilePath:      node.FilePath,
			Line:          node.Line,
			EndLine:       node.EndLine,
			Package:       node.Package,
			Signature:     node.Signature,
			Parameters:    node.Parameters,
			Returns:       node.Returns,
			Documentation: node.Documentation,
			Tags:          node.Tags,
			Metadata:      node.Metadata,
		}
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("failed to write node line: %w", err)
		}
	}

	for _, edge := range g.Edges {
		rec := jsonlRecord{
			Kind:     "edge",
			From:     edge.From,
			To:       edge.To,
			EdgeType: jsonlEdgeTypeName(edge.Type),
			CallSite: edge.CallSite,
			FilePath: edge.FilePath,
			Line:     edge.Line,
			Metadata: edge.Metadata,
		}
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("failed to write edge line: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write JSONL export: %w", err)
	}
	return writeFileAtomic(path, buf.Bytes())
}

// LoadJSONL reads a JSONL export back into a graph. Unknown record kinds are
// skipped, and legacy exports with capitalized type names still load.
func LoadJSONL(path string) (*graph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph file %s: %w", path, err)
	}
	defer f.Close()

	g := graph.New("", "")
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var rec jsonlRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("failed to parse JSONL line: %w", err)
		}

		switch rec.Kind {
		case "metadata":
			g.Metadata.Version = rec.Version
			if ts, err := time.Parse(time.RFC3339, rec.GeneratedAt); err == nil {
				g.Metadata.GeneratedAt = ts
			}
			g.Metadata.Generator = rec.Generator
			g.Metadata.Language = rec.Language
			g.Metadata.RootPath = rec.RootPath
			if rec.Stats != nil {
				g.Metadata.Stats = *rec.Stats
			}
		case "node":
			g.AddNode(graph.Node{
				ID:            rec.ID,
				Name:          rec.Name,
				Type:          normalizeNodeType(rec.NodeType),
				FilePath:      rec.FilePath,
				Line:          rec.Line,
				EndLine:       rec.EndLine,
				Package:       rec.Package,
				Signature:     rec.Signature,
				Parameters:    rec.Parameters,
				Returns:       rec.Returns,
				Documentation: rec.Documentation,
				Tags:          rec.Tags,
				Metadata:      rec.Metadata,
			})
		case "edge":
			g.AddEdge(graph.Edge{
				From:     rec.From,
				To:       rec.To,
				Type:     normalizeEdgeType(rec.EdgeType),
				CallSite: rec.CallSite,
				FilePath: rec.FilePath,
				Line:     rec.Line,
				Metadata: rec.Metadata,
			})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read JSONL file: %w", err)
	}

	g.BuildIndexes()
	return g, nil
}

// The JSONL line format predates the snake_case wire names and spells kinds
// in exported case ("Function", "HttpHandler", "Calls"). The writer keeps
// that spelling so existing consumers stay compatible; the loader accepts
// both.
func jsonlNodeTypeName(t graph.NodeType) string {
	switch t {
	case graph.NodeMethod:
		return "Method"
	case graph.NodeHTTPHandler:
		return "HttpHandler"
	case graph.NodeMiddleware:
		return "Middleware"
	default:
		return "Function"
	}
}

func jsonlEdgeTypeName(t graph.EdgeType) string {
	switch t {
	case graph.EdgeImports:
		return "Imports"
	case graph.EdgeImplements:
		return "Implements"
	default:
		return "Calls"
	}
}

func normalizeNodeType(s string) graph.NodeType {
	switch strings.ToLower(s) {
	case "method":
		return graph.NodeMethod
	case "httphandler", "http_handler":
		return graph.NodeHTTPHandler
	case "middleware":
		return graph.NodeMiddleware
	default:
		return graph.NodeFunction
	}
}

func normalizeEdgeType(s string) graph.EdgeType {
	switch strings.ToLower(s) {
	case "imports":
		return graph.EdgeImports
	case "implements":
		return graph.EdgeImplements
	default:
		return graph.EdgeCalls
	}
}
