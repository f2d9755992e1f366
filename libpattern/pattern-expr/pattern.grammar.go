package pattern_expr

import (
	"github.com/2x3systems/gopattern/gopattern"
	"github.com/2x3systems/gopattern/libpattern"
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
)

var sPatternLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "whitespace", Pattern: `[ \t\r\n]+`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Punct", Pattern: `[-<>()\[\]:,]`},
})

var sParsePatternExpr = participle.MustBuild[PatternExpr](
	participle.Lexer(sPatternLexer),
)

func wrapParseErr(err error) error {
	return errors.Wrap(gopattern.ErrBadExpr, err.Error())
}

func (expr *PatternExpr) Validate() error {
	for _, path := range expr.Paths {
		for _, link := range path.Links {
			if link.In == link.Out {
				return errors.Wrapf(gopattern.ErrBadExpr, "edge [:%s] must have exactly one arrow head", link.Label)
			}
		}
	}
	return nil
}

type builder struct {
	meta   *libpattern.PatternMeta
	tags   map[string]gopattern.VertexID
	labels []gopattern.LabelID // indexed by VertexID
	edges  []libpattern.PatternEdge
}

// Build resolves the labels of expr against meta and returns the pattern it describes.
//
// Vertex ids and edge ids are assigned in order of appearance, starting at 0.
// Every edge must be permitted by meta between the labels of its endpoints.
func Build(expr *PatternExpr, meta *libpattern.PatternMeta) (*libpattern.Pattern, error) {
	if expr == nil || len(expr.Paths) == 0 {
		return nil, gopattern.ErrEmptyPattern
	}

	b := builder{
		meta: meta,
		tags: make(map[string]gopattern.VertexID),
	}

	for _, path := range expr.Paths {
		prev, err := b.resolveNode(path.Head)
		if err != nil {
			return nil, err
		}
		for _, link := range path.Links {
			next, err := b.resolveNode(link.Node)
			if err != nil {
				return nil, err
			}
			start, end := prev, next
			if link.In {
				start, end = next, prev
			}
			if err = b.addEdge(link.Label, start, end); err != nil {
				return nil, err
			}
			prev = next
		}
	}

	if len(b.edges) == 0 {
		if len(b.labels) > 1 {
			return nil, errors.Wrap(gopattern.ErrDisconnected, "expression names vertices but no edges")
		}
		return libpattern.NewPatternFromVertex(0, b.labels[0]), nil
	}
	return libpattern.NewPatternFromEdges(b.edges)
}

// BuildString parses expr and builds it against meta.
func BuildString(expr string, meta *libpattern.PatternMeta) (*libpattern.Pattern, error) {
	ast, err := Parse(expr)
	if err != nil {
		return nil, err
	}
	return Build(ast, meta)
}

func (b *builder) resolveNode(node *NodeExpr) (gopattern.VertexID, error) {
	if id, exists := b.tags[node.Tag]; exists && len(node.Tag) > 0 {
		if len(node.Label) > 0 {
			label, err := b.vertexLabel(node.Label)
			if err != nil {
				return 0, err
			}
			if label != b.labels[id] {
				return 0, errors.Wrapf(gopattern.ErrBadExpr, "vertex %q relabeled as %q", node.Tag, node.Label)
			}
		}
		return id, nil
	}

	if len(node.Label) == 0 {
		return 0, errors.Wrapf(gopattern.ErrBadExpr, "first use of vertex %q has no label", node.Tag)
	}
	label, err := b.vertexLabel(node.Label)
	if err != nil {
		return 0, err
	}

	id := gopattern.VertexID(len(b.labels))
	b.labels = append(b.labels, label)
	if len(node.Tag) > 0 {
		b.tags[node.Tag] = id
	}
	return id, nil
}

func (b *builder) vertexLabel(name string) (gopattern.LabelID, error) {
	label, found := b.meta.VertexLabelID(name)
	if !found {
		return 0, errors.Wrapf(gopattern.ErrUnknownLabel, "vertex label %q", name)
	}
	return label, nil
}

func (b *builder) addEdge(name string, start, end gopattern.VertexID) error {
	label, found := b.meta.EdgeLabelID(name)
	if !found {
		return errors.Wrapf(gopattern.ErrUnknownLabel, "edge label %q", name)
	}

	startLabel, endLabel := b.labels[start], b.labels[end]
	permitted := false
	for _, le := range b.meta.EdgesBetween(startLabel, endLabel) {
		if le.Label == label && le.Dir == gopattern.Out {
			permitted = true
			break
		}
	}
	if !permitted {
		return errors.Wrapf(gopattern.ErrBadExpr, "schema has no [:%s] edge from label %d to label %d", name, startLabel, endLabel)
	}

	id := gopattern.EdgeID(len(b.edges))
	b.edges = append(b.edges, libpattern.NewPatternEdge(id, label, start, end, startLabel, endLabel))
	return nil
}
