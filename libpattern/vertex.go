package libpattern

import (
	"sort"

	"github.com/2x3systems/gopattern/gopattern"
)

// Connection is one incident edge of a vertex: the edge, the vertex at its other end,
// and the direction the edge runs as seen from the vertex holding the Connection.
type Connection struct {
	Edge   gopattern.EdgeID
	Vertex gopattern.VertexID
	Dir    gopattern.Direction
}

// PatternVertex is a labeled vertex of a Pattern along with its incidence bookkeeping.
//
// Invariant: outDegree + inDegree == len(edges), and each Connection in neighbors also appears in edges.
// A loop edge is held twice, once per direction.
type PatternVertex struct {
	id        gopattern.VertexID
	label     gopattern.LabelID
	rank      gopattern.Rank
	edges     map[connKey]Connection
	neighbors map[gopattern.VertexID][]Connection
	outDegree int
	inDegree  int
}

type connKey struct {
	edge gopattern.EdgeID
	dir  gopattern.Direction
}

func newPatternVertex(id gopattern.VertexID, label gopattern.LabelID) *PatternVertex {
	return &PatternVertex{
		id:        id,
		label:     label,
		edges:     make(map[connKey]Connection),
		neighbors: make(map[gopattern.VertexID][]Connection),
	}
}

func (v *PatternVertex) ID() gopattern.VertexID {
	return v.id
}

func (v *PatternVertex) Label() gopattern.LabelID {
	return v.label
}

func (v *PatternVertex) Rank() gopattern.Rank {
	return v.rank
}

func (v *PatternVertex) OutDegree() int {
	return v.outDegree
}

func (v *PatternVertex) InDegree() int {
	return v.inDegree
}

func (v *PatternVertex) Degree() int {
	return v.outDegree + v.inDegree
}

// ConnectEdges returns the incident edges of this vertex in edge id order (Out before In for a loop).
func (v *PatternVertex) ConnectEdges() []Connection {
	conns := make([]Connection, 0, len(v.edges))
	for _, conn := range v.edges {
		conns = append(conns, conn)
	}
	sort.Slice(conns, func(i, j int) bool {
		if conns[i].Edge != conns[j].Edge {
			return conns[i].Edge < conns[j].Edge
		}
		return conns[i].Dir < conns[j].Dir
	})
	return conns
}

// ConnectVertices returns the ids of all adjacent vertices in ascending order.
func (v *PatternVertex) ConnectVertices() []gopattern.VertexID {
	ids := make([]gopattern.VertexID, 0, len(v.neighbors))
	for id := range v.neighbors {
		ids = append(ids, id)
	}
	sortVertexIDs(ids)
	return ids
}

// EdgesTo returns the connections from this vertex to the given neighbor, in the order they were made.
func (v *PatternVertex) EdgesTo(neighbor gopattern.VertexID) []Connection {
	return append([]Connection(nil), v.neighbors[neighbor]...)
}

func (v *PatternVertex) connect(conn Connection) {
	v.edges[connKey{conn.Edge, conn.Dir}] = conn
	v.neighbors[conn.Vertex] = append(v.neighbors[conn.Vertex], conn)
	if conn.Dir == gopattern.Out {
		v.outDegree++
	} else {
		v.inDegree++
	}
}

func (v *PatternVertex) clone() *PatternVertex {
	dup := &PatternVertex{
		id:        v.id,
		label:     v.label,
		rank:      v.rank,
		edges:     make(map[connKey]Connection, len(v.edges)),
		neighbors: make(map[gopattern.VertexID][]Connection, len(v.neighbors)),
		outDegree: v.outDegree,
		inDegree:  v.inDegree,
	}
	for key, conn := range v.edges {
		dup.edges[key] = conn
	}
	for id, conns := range v.neighbors {
		dup.neighbors[id] = append([]Connection(nil), conns...)
	}
	return dup
}

func sortVertexIDs(ids []gopattern.VertexID) {
	sort.Slice(ids, func(i, j int) bool {
		return ids[i] < ids[j]
	})
}

func sortEdgeIDs(ids []gopattern.EdgeID) {
	sort.Slice(ids, func(i, j int) bool {
		return ids[i] < ids[j]
	})
}
