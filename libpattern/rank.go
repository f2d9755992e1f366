package libpattern

import "github.com/2x3systems/gopattern/gopattern"

// RankRanking assigns every vertex a canonical rank among the vertices sharing its label.
//
// Ranks are first set from each vertex's local edge signature (SetInitialRank) and ties are then
// broken by one pass of recursive neighborhood comparison (SetAccurateRank).
// Running RankRanking again on the same pattern yields the same ranks.
func (p *Pattern) RankRanking() {
	p.SetInitialRank()
	p.SetAccurateRank()
}

// SetInitialRank ranks the vertices of each label class by label, out degree, in degree,
// then by the (end label, edge label) sequences of their outgoing and incoming edges.
//
// Equal vertices share a rank and each rank counts the vertices preceding it, e.g. 0,0,2,2,2,5.
func (p *Pattern) SetInitialRank() {
	for _, label := range p.VertexLabels() {
		ids := p.VerticesWithLabel(label)
		sortStable(ids, p.cmpVerticesForInitialRank)

		rank := 0
		current := ids[0]
		for i, id := range ids {
			if p.cmpVerticesForInitialRank(id, current) > 0 {
				rank = i
				current = id
			}
			p.vertices[id].rank = gopattern.Rank(rank)
		}
	}
}

// edgeSig is the part of an incident edge that the initial rank compares.
type edgeSig struct {
	edge       gopattern.EdgeID
	label      gopattern.LabelID
	otherLabel gopattern.LabelID
}

func (p *Pattern) edgeSigs(v *PatternVertex) (outs, ins []edgeSig) {
	outs = make([]edgeSig, 0, v.outDegree)
	ins = make([]edgeSig, 0, v.inDegree)
	for _, conn := range v.ConnectEdges() {
		sig := edgeSig{
			edge:       conn.Edge,
			label:      p.edges[conn.Edge].Label,
			otherLabel: p.vertices[conn.Vertex].label,
		}
		if conn.Dir == gopattern.Out {
			outs = append(outs, sig)
		} else {
			ins = append(ins, sig)
		}
	}
	byEdge := func(a, b edgeSig) int {
		return p.cmpEdges(a.edge, b.edge, false)
	}
	sortStable(outs, byEdge)
	sortStable(ins, byEdge)
	return
}

func cmpEdgeSigs(A, B []edgeSig) int {
	if d := cmpInt(len(A), len(B)); d != 0 {
		return d
	}
	for i := range A {
		if d := cmpInt32(int32(A[i].otherLabel), int32(B[i].otherLabel)); d != 0 {
			return d
		}
		if d := cmpInt32(int32(A[i].label), int32(B[i].label)); d != 0 {
			return d
		}
	}
	return 0
}

func (p *Pattern) cmpVerticesForInitialRank(v1, v2 gopattern.VertexID) int {
	if v1 == v2 {
		return 0
	}
	V1 := p.vertices[v1]
	V2 := p.vertices[v2]

	if d := cmpInt32(int32(V1.label), int32(V2.label)); d != 0 {
		return d
	}
	if d := cmpInt(V1.outDegree, V2.outDegree); d != 0 {
		return d
	}
	if d := cmpInt(V1.inDegree, V2.inDegree); d != 0 {
		return d
	}

	outs1, ins1 := p.edgeSigs(V1)
	outs2, ins2 := p.edgeSigs(V2)
	if d := cmpEdgeSigs(outs1, outs2); d != 0 {
		return d
	}
	return cmpEdgeSigs(ins1, ins2)
}

// SetAccurateRank breaks ties left by SetInitialRank.
//
// Within each group of vertices sharing (label, rank), every pair is compared by walking their
// neighbors in lock-step.  A vertex's new rank is its group rank plus the number of group members
// it compares greater than.  This is a single refinement pass, not iterated to a fixed point.
func (p *Pattern) SetAccurateRank() {
	groups := p.sameRankGroups()
	if len(groups) == 0 {
		return
	}

	// Neighbor order is fixed from the ranks as they stand before any group is refined.
	neighbors := make(map[gopattern.VertexID][]gopattern.VertexID, len(p.vertices))
	for id, v := range p.vertices {
		neighbors[id] = p.rankedNeighbors(v)
	}

	for _, group := range groups {
		base := p.vertices[group[0]].rank
		ranks := make([]gopattern.Rank, len(group))
		for i := range ranks {
			ranks[i] = base
		}
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				visited := make(map[gopattern.VertexID]bool, len(p.vertices))
				switch p.cmpVerticesForAccurateRank(group[i], group[j], neighbors, visited) {
				case -1:
					ranks[j]++
				case 1:
					ranks[i]++
				}
			}
		}
		for i, id := range group {
			p.vertices[id].rank = ranks[i]
		}
	}
}

// sameRankGroups returns each set of two or more vertices sharing a label and rank,
// ordered by label then rank, with each group in ascending id order.
func (p *Pattern) sameRankGroups() [][]gopattern.VertexID {
	var groups [][]gopattern.VertexID
	for _, label := range p.VertexLabels() {
		ids := p.VerticesWithLabel(label)
		sortStable(ids, func(a, b gopattern.VertexID) int {
			return cmpInt32(int32(p.vertices[a].rank), int32(p.vertices[b].rank))
		})

		start := 0
		for i := 1; i <= len(ids); i++ {
			if i < len(ids) && p.vertices[ids[i]].rank == p.vertices[ids[start]].rank {
				continue
			}
			if i-start > 1 {
				groups = append(groups, ids[start:i])
			}
			start = i
		}
	}
	return groups
}

// rankedNeighbors returns the vertices at the far end of v's incident edges, in ranked edge order,
// with consecutive repeats collapsed.
//
// Edges that tie in ranked order are ordered by their direction from v, outgoing first.
// Edges that still tie keep edge id order.
func (p *Pattern) rankedNeighbors(v *PatternVertex) []gopattern.VertexID {
	conns := v.ConnectEdges()
	sortStable(conns, func(a, b Connection) int {
		if d := p.cmpEdges(a.Edge, b.Edge, true); d != 0 {
			return d
		}
		return cmpInt(int(a.Dir), int(b.Dir))
	})

	ids := make([]gopattern.VertexID, 0, len(conns))
	for _, conn := range conns {
		if n := len(ids); n > 0 && ids[n-1] == conn.Vertex {
			continue
		}
		ids = append(ids, conn.Vertex)
	}
	return ids
}

// cmpVerticesForAccurateRank compares two vertices by rank and then recursively by their neighbors.
//
// visited holds the vertices of the comparisons enclosing this one.  A pair whose vertices are
// both enclosing is treated as equal, which bounds the recursion on cyclic patterns.
// visited is restored before returning.
func (p *Pattern) cmpVerticesForAccurateRank(
	v1, v2 gopattern.VertexID,
	neighbors map[gopattern.VertexID][]gopattern.VertexID,
	visited map[gopattern.VertexID]bool,
) int {
	if v1 == v2 {
		return 0
	}
	if d := cmpInt32(int32(p.vertices[v1].rank), int32(p.vertices[v2].rank)); d != 0 {
		return d
	}
	if visited[v1] && visited[v2] {
		return 0
	}

	marked1, marked2 := !visited[v1], !visited[v2]
	visited[v1] = true
	visited[v2] = true
	defer func() {
		if marked1 {
			delete(visited, v1)
		}
		if marked2 {
			delete(visited, v2)
		}
	}()

	N1 := neighbors[v1]
	N2 := neighbors[v2]
	if d := cmpInt(len(N1), len(N2)); d != 0 {
		return d
	}
	for i := range N1 {
		if visited[N1[i]] && visited[N2[i]] {
			continue
		}
		if d := p.cmpVerticesForAccurateRank(N1[i], N2[i], neighbors, visited); d != 0 {
			return d
		}
	}
	return 0
}
