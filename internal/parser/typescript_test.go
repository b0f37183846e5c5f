package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/codenav/internal/graph"
)

const typescriptSample = `function loadConfig(path: string) {
  return readFile(path);
}

const parseConfig = (raw: string) => {
  return JSON.parse(raw);
};

class ConfigStore {
  reload(path: string) {
    const cfg = loadConfig(path);
    this.apply(cfg);
  }
}
`

func TestTypeScriptParser_Declarations(t *testing.T) {
	t.Parallel()

	g, path := parseSource(t, NewTypeScriptParser("typescript"), "config.ts", typescriptSample)

	load := g.GetNodesByName("loadConfig")
	require.Len(t, load, 1)
	assert.Equal(t, graph.NodeFunction, load[0].Type)
	assert.Equal(t, 1, load[0].Line)
	require.Len(t, load[0].Parameters, 1)
	assert.Equal(t, graph.Parameter{Name: "path", ParamType: "string"}, load[0].Parameters[0])

	// Arrow function assigned to a const is recorded under the variable name.
	parse := g.GetNodesByName("parseConfig")
	require.Len(t, parse, 1)
	assert.Equal(t, graph.NodeFunction, parse[0].Type)
	assert.Equal(t, 5, parse[0].Line)

	reload := g.GetNodesByName("reload")
	require.Len(t, reload, 1)
	assert.Equal(t, graph.NodeMethod, reload[0].Type)

	out := g.GetOutgoingEdges(nodeID(path, "reload", 10))
	require.Len(t, out, 2)
	assert.Equal(t, "loadConfig", out[0].To)
	assert.Equal(t, "apply", out[1].To)
}

func TestTypeScriptParser_JavaScriptExtensions(t *testing.T) {
	t.Parallel()

	p := NewTypeScriptParser("javascript")
	assert.Equal(t, "javascript", p.Language())
	assert.Equal(t, []string{".js", ".jsx"}, p.Extensions())
	assert.True(t, p.IsTestFile("src/app.test.js"))
	assert.True(t, p.IsTestFile("src/app.spec.ts"))
	assert.False(t, p.IsTestFile("src/app.js"))
}
