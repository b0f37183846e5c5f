package graph

import "time"

// NodeType classifies a code entity.
type NodeType string

const (
	NodeFunction    NodeType = "function"
	NodeMethod      NodeType = "method"
	NodeHTTPHandler NodeType = "http_handler"
	NodeMiddleware  NodeType = "middleware"
)

// Parameter is a single function parameter: its name and the source text of
// its type.
type Parameter struct {
	Name      string `json:"name" msgpack:"name"`
	ParamType string `json:"param_type" msgpack:"param_type"`
}

// Node represents a code entity with its source location.
//
// ID is globally unique within a graph, conventionally
// "<file>:<name>:<declaration line>". Name is NOT unique: overloads and
// same-named functions in different files all coexist and are disambiguated
// through the name index at query time.
type Node struct {
	ID            string            `json:"id" msgpack:"id"`
	Name          string            `json:"name" msgpack:"name"`
	Type          NodeType          `json:"type" msgpack:"type"`
	FilePath      string            `json:"file_path" msgpack:"file_path"`
	Line          int               `json:"line" msgpack:"line"`
	EndLine       int               `json:"end_line" msgpack:"end_line"`
	Package       string            `json:"package" msgpack:"package"`
	Signature     string            `json:"signature" msgpack:"signature"` // first source line of the declaration
	Parameters    []Parameter       `json:"parameters,omitempty" msgpack:"parameters,omitempty"`
	Returns       []string          `json:"returns,omitempty" msgpack:"returns,omitempty"`
	Documentation string            `json:"documentation,omitempty" msgpack:"documentation,omitempty"`
	Tags          []string          `json:"tags,omitempty" msgpack:"tags,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty" msgpack:"metadata,omitempty"`
}

// EdgeType classifies a relationship between code entities.
type EdgeType string

const (
	EdgeCalls      EdgeType = "calls"
	EdgeImports    EdgeType = "imports"
	EdgeImplements EdgeType = "implements"
)

// Edge represents a relationship recorded at a call site.
//
// From is the node ID of the enclosing declaration. To is a NAME, not an ID:
// parsing cannot always disambiguate overloaded or externally-defined
// targets, so resolution to zero, one, or many nodes is deferred to query
// time via the name index.
type Edge struct {
	From     string            `json:"from" msgpack:"from"`
	To       string            `json:"to" msgpack:"to"`
	Type     EdgeType          `json:"type" msgpack:"type"`
	CallSite string            `json:"call_site" msgpack:"call_site"`
	FilePath string            `json:"file_path" msgpack:"file_path"`
	Line     int               `json:"line" msgpack:"line"`
	Metadata map[string]string `json:"metadata,omitempty" msgpack:"metadata,omitempty"`
}

// Stats holds aggregate counts for a graph.
type Stats struct {
	TotalNodes  int `json:"total_nodes" msgpack:"total_nodes"`
	TotalEdges  int `json:"total_edges" msgpack:"total_edges"`
	FilesParsed int `json:"files_parsed" msgpack:"files_parsed"`
}

// FileMetadata records which node IDs originated from a file, plus an opaque
// last-modified marker. This is the join key for incremental updates.
type FileMetadata struct {
	Path         string   `json:"path" msgpack:"path"`
	LastModified string   `json:"last_modified" msgpack:"last_modified"`
	NodeIDs      []string `json:"node_ids" msgpack:"node_ids"`
}

// Metadata describes a graph: format version, provenance, and aggregate
// stats.
type Metadata struct {
	Version       string                  `json:"version" msgpack:"version"`
	GeneratedAt   time.Time               `json:"generated_at" msgpack:"generated_at"`
	Generator     string                  `json:"generator" msgpack:"generator"`
	Language      string                  `json:"language" msgpack:"language"`
	RootPath      string                  `json:"root_path" msgpack:"root_path"`
	Stats         Stats                   `json:"stats" msgpack:"stats"`
	FileMetadata  map[string]FileMetadata `json:"file_metadata,omitempty" msgpack:"file_metadata,omitempty"`
	GitCommitHash string                  `json:"git_commit_hash,omitempty" msgpack:"git_commit_hash,omitempty"`
}

// MetadataVersion is the current graph metadata format version.
const MetadataVersion = "1.0.0"

// DefaultGenerator tags graphs produced by a full or incremental index run.
const DefaultGenerator = "codenav"
