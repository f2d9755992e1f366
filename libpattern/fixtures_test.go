package libpattern

import (
	"testing"

	"github.com/2x3systems/gopattern/gopattern"
	"github.com/stretchr/testify/require"
)

// edge tuples are (id, label, start, end, start label, end label)
type edgeTuple [6]int32

func edgesOf(tuples ...edgeTuple) []PatternEdge {
	edges := make([]PatternEdge, len(tuples))
	for i, e := range tuples {
		edges[i] = NewPatternEdge(
			gopattern.EdgeID(e[0]),
			gopattern.LabelID(e[1]),
			gopattern.VertexID(e[2]), gopattern.VertexID(e[3]),
			gopattern.LabelID(e[4]), gopattern.LabelID(e[5]),
		)
	}
	return edges
}

func mustPattern(t *testing.T, tuples ...edgeTuple) *Pattern {
	t.Helper()
	p, err := NewPatternFromEdges(edgesOf(tuples...))
	require.NoError(t, err)
	return p
}

const (
	lA = 0
	lB = 1
	lC = 2
	lX = 3
)

// A0 <-> A1, both edges labeled 0
func patternCase1(t *testing.T) *Pattern {
	return mustPattern(t,
		edgeTuple{0, 0, 0, 1, lA, lA},
		edgeTuple{1, 0, 1, 0, lA, lA},
	)
}

// case1 plus A0 -> B2 and A1 -> B2
func patternCase2(t *testing.T) *Pattern {
	return mustPattern(t,
		edgeTuple{0, 0, 0, 1, lA, lA},
		edgeTuple{1, 0, 1, 0, lA, lA},
		edgeTuple{2, 1, 0, 2, lA, lB},
		edgeTuple{3, 1, 1, 2, lA, lB},
	)
}

// A0 -> A1, A0 -> B2, A1 -> B3, B2 -> B3
func patternCase3(t *testing.T) *Pattern {
	return mustPattern(t,
		edgeTuple{0, 0, 0, 1, lA, lA},
		edgeTuple{1, 1, 0, 2, lA, lB},
		edgeTuple{2, 1, 1, 3, lA, lB},
		edgeTuple{3, 2, 2, 3, lB, lB},
	)
}

// case3 plus A1 -> A0
func patternCase4(t *testing.T) *Pattern {
	return mustPattern(t,
		edgeTuple{0, 0, 0, 1, lA, lA},
		edgeTuple{1, 1, 0, 2, lA, lB},
		edgeTuple{2, 1, 1, 3, lA, lB},
		edgeTuple{3, 2, 2, 3, lB, lB},
		edgeTuple{4, 0, 1, 0, lA, lA},
	)
}

func patternCase6(t *testing.T) *Pattern {
	return mustPattern(t,
		edgeTuple{0, 1, 0, 1, 1, 2},
		edgeTuple{1, 2, 0, 2, 1, 3},
	)
}

func patternCase7(t *testing.T) *Pattern {
	return mustPattern(t,
		edgeTuple{0, 1, 0, 1, 1, 2},
		edgeTuple{1, 2, 0, 2, 1, 3},
		edgeTuple{2, 3, 1, 2, 2, 3},
		edgeTuple{3, 4, 0, 3, 1, 4},
		edgeTuple{4, 5, 1, 3, 2, 4},
		edgeTuple{5, 6, 3, 2, 4, 3},
	)
}

const (
	lPerson   = 0
	lSoftware = 1
	lKnows    = 0
	lCreated  = 1
)

const modernSchemaYAML = `
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

func modernSchema(t *testing.T) *PatternMeta {
	t.Helper()
	meta, err := ParsePatternMeta([]byte(modernSchemaYAML))
	require.NoError(t, err)
	return meta
}

func ranksOf(p *Pattern) map[gopattern.VertexID]gopattern.Rank {
	ranks := make(map[gopattern.VertexID]gopattern.Rank, p.VertexCount())
	for _, id := range p.VertexIDs() {
		ranks[id] = p.Vertex(id).Rank()
	}
	return ranks
}
