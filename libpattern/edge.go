package libpattern

import (
	"fmt"

	"github.com/2x3systems/gopattern/gopattern"
)

// PatternEdge is a directed, labeled edge of a Pattern.
//
// StartLabel and EndLabel are copies of the endpoint vertex labels and are checked against them when a Pattern is built.
type PatternEdge struct {
	ID         gopattern.EdgeID
	Label      gopattern.LabelID
	StartID    gopattern.VertexID
	EndID      gopattern.VertexID
	StartLabel gopattern.LabelID
	EndLabel   gopattern.LabelID
}

func NewPatternEdge(
	id gopattern.EdgeID,
	label gopattern.LabelID,
	startID, endID gopattern.VertexID,
	startLabel, endLabel gopattern.LabelID,
) PatternEdge {
	return PatternEdge{
		ID:         id,
		Label:      label,
		StartID:    startID,
		EndID:      endID,
		StartLabel: startLabel,
		EndLabel:   endLabel,
	}
}

// Other returns the endpoint of this edge opposite to v.
func (e *PatternEdge) Other(v gopattern.VertexID) gopattern.VertexID {
	if e.StartID == v {
		return e.EndID
	}
	return e.StartID
}

func (e PatternEdge) String() string {
	return fmt.Sprintf("e%d: %d(%d) -[%d]-> %d(%d)", e.ID, e.StartID, e.StartLabel, e.Label, e.EndID, e.EndLabel)
}

// cmpEdges orders edges by (start label, end label, edge label) and when withRank is set,
// then by (start rank, end rank).
func (p *Pattern) cmpEdges(e1, e2 gopattern.EdgeID, withRank bool) int {
	if e1 == e2 {
		return 0
	}
	E1 := p.edges[e1]
	E2 := p.edges[e2]

	if d := cmpInt32(int32(E1.StartLabel), int32(E2.StartLabel)); d != 0 {
		return d
	}
	if d := cmpInt32(int32(E1.EndLabel), int32(E2.EndLabel)); d != 0 {
		return d
	}
	if d := cmpInt32(int32(E1.Label), int32(E2.Label)); d != 0 {
		return d
	}
	if !withRank {
		return 0
	}
	if d := cmpInt32(int32(p.vertices[E1.StartID].rank), int32(p.vertices[E2.StartID].rank)); d != 0 {
		return d
	}
	return cmpInt32(int32(p.vertices[E1.EndID].rank), int32(p.vertices[E2.EndID].rank))
}

func cmpInt32(a, b int32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
