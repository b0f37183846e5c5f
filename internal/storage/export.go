package storage

import (
	"bytes"
	"encoding/csv"
	"encoding/xml"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mvp-joe/codenav/internal/graph"
)

// ExportCSV writes two sibling files, <stem>_nodes.csv and <stem>_edges.csv,
// for spreadsheet and SQL-import consumers. Returns the two paths written.
func ExportCSV(g *graph.Graph, outputPrefix string) (nodesPath, edgesPath string, err error) {
	stem := strings.TrimSuffix(outputPrefix, filepath.Ext(outputPrefix))
	nodesPath = stem + "_nodes.csv"
	edgesPath = stem + "_edges.csv"

	var nodesBuf bytes.Buffer
	nw := csv.NewWriter(&nodesBuf)
	if err := nw.Write([]string{"id", "name", "type", "file_path", "line", "end_line", "package", "signature"}); err != nil {
		return "", "", fmt.Errorf("failed to write nodes CSV: %w", err)
	}
	for _, n := range g.Nodes {
		record := []string{
			n.ID, n.Name, string(n.Type), n.FilePath,
			strconv.Itoa(n.Line), strconv.Itoa(n.EndLine),
			n.Package, n.Signature,
		}
		if err := nw.Write(record); err != nil {
			return "", "", fmt.Errorf("failed to write nodes CSV: %w", err)
		}
	}
	nw.Flush()
	if err := nw.Error(); err != nil {
		return "", "", fmt.Errorf("failed to write nodes CSV: %w", err)
	}

	var edgesBuf bytes.Buffer
	ew := csv.NewWriter(&edgesBuf)
	if err := ew.Write([]string{"from", "to", "type", "call_site", "file_path", "line"}); err != nil {
		return "", "", fmt.Errorf("failed to write edges CSV: %w", err)
	}
	for _, e := range g.Edges {
		record := []string{
			e.From, e.To, string(e.Type), e.CallSite,
			e.FilePath, strconv.Itoa(e.Line),
		}
		if err := ew.Write(record); err != nil {
			return "", "", fmt.Errorf("failed to write edges CSV: %w", err)
		}
	}
	ew.Flush()
	if err := ew.Error(); err != nil {
		return "", "", fmt.Errorf("failed to write edges CSV: %w", err)
	}

	if err := writeFileAtomic(nodesPath, nodesBuf.Bytes()); err != nil {
		return "", "", err
	}
	if err := writeFileAtomic(edgesPath, edgesBuf.Bytes()); err != nil {
		return "", "", err
	}
	return nodesPath, edgesPath, nil
}

// graphmlKeys declares the node and edge attributes up front, as the GraphML
// schema requires. Key IDs are stable so downstream tooling can hardcode them.
var graphmlKeys = []struct {
	id, target, name, typ string
}{
	{"d0", "node", "name", "string"},
	{"d1", "node", "type", "string"},
	{"d2", "node", "file", "string"},
	{"d3", "node", "line", "int"},
	{"d4", "node", "package", "string"},
	{"d5", "edge", "type", "string"},
	{"d6", "edge", "call_site", "string"},
}

// ExportGraphML writes the graph in GraphML for Gephi, yEd, and NetworkX.
// Edge targets are names rather than node IDs, mirroring the on-disk edge
// model; visualization tools treat unresolved names as isolated endpoints.
func ExportGraphML(g *graph.Graph, path string) error {
	var buf bytes.Buffer

	buf.WriteString(xml.Header)
	buf.WriteString(`<graphml xmlns="http://graphml.graphdrawing.org/xmlns"` + "\n")
	buf.WriteString(`         xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"` + "\n")
	buf.WriteString(`         xsi:schemaLocation="http://graphml.graphdrawing.org/xmlns` + "\n")
	buf.WriteString(`         http://graphml.graphdrawing.org/xmlns/1.0/graphml.xsd">` + "\n\n")

	for _, k := range graphmlKeys {
		fmt.Fprintf(&buf, "  <key id=%q for=%q attr.name=%q attr.type=%q/>\n", k.id, k.target, k.name, k.typ)
	}
	buf.WriteString("\n  <graph id=\"G\" edgedefault=\"directed\">\n")

	for _, n := range g.Nodes {
		fmt.Fprintf(&buf, "    <node id=\"%s\">\n", escapeXML(n.ID))
		fmt.Fprintf(&buf, "      <data key=\"d0\">%s</data>\n", escapeXML(n.Name))
		fmt.Fprintf(&buf, "      <data key=\"d1\">%s</data>\n", escapeXML(string(n.Type)))
		fmt.Fprintf(&buf, "      <data key=\"d2\">%s</data>\n", escapeXML(n.FilePath))
		fmt.Fprintf(&buf, "      <data key=\"d3\">%d</data>\n", n.Line)
		fmt.Fprintf(&buf, "      <data key=\"d4\">%s</data>\n", escapeXML(n.Package))
		buf.WriteString("    </node>\n")
	}

	for idx, e := range g.Edges {
		fmt.Fprintf(&buf, "    <edge id=\"e%d\" source=\"%s\" target=\"%s\">\n", idx, escapeXML(e.From), escapeXML(e.To))
		fmt.Fprintf(&buf, "      <data key=\"d5\">%s</data>\n", escapeXML(string(e.Type)))
		fmt.Fprintf(&buf, "      <data key=\"d6\">%s</data>\n", escapeXML(e.CallSite))
		buf.WriteString("    </edge>\n")
	}

	buf.WriteString("  </graph>\n</graphml>\n")
	return writeFileAtomic(path, buf.Bytes())
}

func escapeXML(s string) string {
	var b bytes.Buffer
	if err := xml.EscapeText(&b, []byte(s)); err != nil {
		return s
	}
	return b.String()
}
