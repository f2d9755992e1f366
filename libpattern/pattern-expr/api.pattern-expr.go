package pattern_expr

// PatternExpr is a comma separated list of paths, e.g.
//
//	(a:person)-[:knows]->(b:person), (a)-[:created]->(:software)
//
// A tag names a vertex across paths.  The first node carrying a tag must also carry a label,
// and every untagged node is a vertex of its own.
type PatternExpr struct {
	Paths []*PathExpr `parser:"@@ ( \",\" @@ )*"`
}

// PathExpr is a node followed by zero or more links, each leading to the next node.
type PathExpr struct {
	Head  *NodeExpr   `parser:"@@"`
	Links []*LinkExpr `parser:"@@*"`
}

// LinkExpr is a labeled edge: -[:label]-> runs toward the following node and <-[:label]- runs back toward the preceding one.
type LinkExpr struct {
	In    bool      `parser:"@\"<\"? \"-\""`
	Label string    `parser:"\"[\" \":\" @Ident \"]\" \"-\""`
	Out   bool      `parser:"@\">\"?"`
	Node  *NodeExpr `parser:"@@"`
}

// NodeExpr is a vertex reference: (tag), (tag:label) or (:label).
type NodeExpr struct {
	Tag   string `parser:"\"(\" @Ident?"`
	Label string `parser:"( \":\" @Ident )? \")\""`
}

// Parse parses and validates a pattern expression.
func Parse(expr string) (*PatternExpr, error) {
	ast, err := sParsePatternExpr.ParseString("", expr)
	if err != nil {
		return nil, wrapParseErr(err)
	}
	if err = ast.Validate(); err != nil {
		return nil, err
	}
	return ast, nil
}
