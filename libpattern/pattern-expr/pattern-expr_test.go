package pattern_expr

import (
	"testing"

	"github.com/2x3systems/gopattern/gopattern"
	"github.com/2x3systems/gopattern/libpattern"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const modernSchema = `
entities:
  - label: {id: 0, name: person}
  - label: {id: 1, name: software}
relations:
  - label: {id: 0, name: knows}
    entity_pairs:
      - src: {id: 0, name: person}
        dst: {id: 0, name: person}
  - label: {id: 1, name: created}
    entity_pairs:
      - src: {id: 0, name: person}
        dst: {id: 1, name: software}
`

func loadMeta(t *testing.T) *libpattern.PatternMeta {
	t.Helper()
	meta, err := libpattern.ParsePatternMeta([]byte(modernSchema))
	require.NoError(t, err)
	return meta
}

func TestParse(t *testing.T) {
	ast, err := Parse("(a:person)-[:knows]->(b:person)<-[:knows]-(:person), (a)-[:created]->(:software)")
	require.NoError(t, err)
	require.Len(t, ast.Paths, 2)

	first := ast.Paths[0]
	assert.Equal(t, &NodeExpr{Tag: "a", Label: "person"}, first.Head)
	require.Len(t, first.Links, 2)
	assert.True(t, first.Links[0].Out)
	assert.False(t, first.Links[0].In)
	assert.Equal(t, "knows", first.Links[0].Label)
	assert.True(t, first.Links[1].In)
	assert.Equal(t, &NodeExpr{Label: "person"}, first.Links[1].Node)

	second := ast.Paths[1]
	assert.Equal(t, &NodeExpr{Tag: "a"}, second.Head)
	assert.Equal(t, "created", second.Links[0].Label)
}

func TestParseErrors(t *testing.T) {
	for _, expr := range []string{
		"",
		"(a:person",
		"(a:person)-[knows]->(b:person)",
		"(a:person)-[:knows]-(b:person)",
		"(a:person)<-[:knows]->(b:person)",
		"(a:person)-[:knows]->",
	} {
		_, err := Parse(expr)
		assert.True(t, errors.Is(err, gopattern.ErrBadExpr), "%q: %v", expr, err)
	}
}

func TestBuild(t *testing.T) {
	meta := loadMeta(t)

	p, err := BuildString("(a:person)-[:knows]->(b:person), (b)-[:created]->(s:software), (c:person)-[:created]->(s)", meta)
	require.NoError(t, err)
	assert.Equal(t, 4, p.VertexCount())
	assert.Equal(t, 3, p.EdgeCount())
	assert.Equal(t, libpattern.PatternEdge{ID: 0, Label: 0, StartID: 0, EndID: 1, StartLabel: 0, EndLabel: 0}, *p.Edge(0))
	assert.Equal(t, libpattern.PatternEdge{ID: 1, Label: 1, StartID: 1, EndID: 2, StartLabel: 0, EndLabel: 1}, *p.Edge(1))
	assert.Equal(t, libpattern.PatternEdge{ID: 2, Label: 1, StartID: 3, EndID: 2, StartLabel: 0, EndLabel: 1}, *p.Edge(2))

	// An incoming link runs from the node that follows it
	q, err := BuildString("(s:software)<-[:created]-(:person)", meta)
	require.NoError(t, err)
	assert.Equal(t, gopattern.VertexID(1), q.Edge(0).StartID)
	assert.Equal(t, gopattern.VertexID(0), q.Edge(0).EndID)

	// Loops name the same vertex twice
	loop, err := BuildString("(a:person)-[:knows]->(a)", meta)
	require.NoError(t, err)
	assert.Equal(t, 1, loop.VertexCount())
	assert.Equal(t, 1, loop.EdgeCount())

	single, err := BuildString("(:software)", meta)
	require.NoError(t, err)
	assert.Equal(t, 1, single.VertexCount())
	assert.Equal(t, 0, single.EdgeCount())
}

func TestBuildErrors(t *testing.T) {
	meta := loadMeta(t)

	for _, tc := range []struct {
		expr string
		want error
	}{
		{"(a:robot)", gopattern.ErrUnknownLabel},
		{"(a:person)-[:likes]->(b:person)", gopattern.ErrUnknownLabel},
		{"(s:software)-[:created]->(p:person)", gopattern.ErrBadExpr},
		{"(a:person)-[:knows]->(a:software)", gopattern.ErrBadExpr},
		{"(a)-[:knows]->(b:person)", gopattern.ErrBadExpr},
		{"(a:person), (b:person)", gopattern.ErrDisconnected},
		{"(a:person)-[:knows]->(b:person), (c:person)-[:knows]->(d:person)", gopattern.ErrDisconnected},
	} {
		_, err := BuildString(tc.expr, meta)
		assert.True(t, errors.Is(err, tc.want), "%q: %v", tc.expr, err)
	}

	_, err := Build(nil, meta)
	assert.True(t, errors.Is(err, gopattern.ErrEmptyPattern))
}
