package libpattern

import (
	"github.com/2x3systems/gopattern/gopattern"
	"github.com/RoaringBitmap/roaring"
)

type extendCandidate struct {
	src  gopattern.VertexID
	edge ExtendEdge
}

type extendCombo struct {
	edges []ExtendEdge
	srcs  *roaring.Bitmap // ids of the pattern vertices already attached
	next  int
}

// GetExtendSteps returns every way of growing p by one vertex that the schema permits.
//
// For each target label, every pattern vertex contributes one candidate ExtendEdge per schema edge
// joining its label to the target.  Each subset of candidates drawing on distinct pattern vertices
// yields one ExtendStep.  The result depends only on p and the schema.
func GetExtendSteps(p *Pattern, schema gopattern.Schema) []*ExtendStep {
	var steps []*ExtendStep

	vertexIDs := p.VertexIDs()
	for _, target := range schema.VertexLabelIDs() {
		var candidates []extendCandidate
		for _, id := range vertexIDs {
			v := p.vertices[id]
			for _, le := range schema.EdgesBetween(v.label, target) {
				candidates = append(candidates, extendCandidate{
					src:  id,
					edge: NewExtendEdge(v.label, v.rank, le.Label, le.Dir),
				})
			}
		}

		queue := make([]extendCombo, 0, len(candidates))
		for i, c := range candidates {
			queue = append(queue, extendCombo{
				edges: []ExtendEdge{c.edge},
				srcs:  roaring.BitmapOf(uint32(c.src)),
				next:  i + 1,
			})
		}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			steps = append(steps, NewExtendStep(target, cur.edges))

			for i := cur.next; i < len(candidates); i++ {
				c := candidates[i]
				if cur.srcs.Contains(uint32(c.src)) {
					continue
				}
				edges := make([]ExtendEdge, len(cur.edges), len(cur.edges)+1)
				copy(edges, cur.edges)
				srcs := cur.srcs.Clone()
				srcs.Add(uint32(c.src))
				queue = append(queue, extendCombo{
					edges: append(edges, c.edge),
					srcs:  srcs,
					next:  i + 1,
				})
			}
		}
	}
	return steps
}

// Extend returns a new pattern holding p plus one vertex attached as the given step describes.
//
// The ExtendEdges of each rank class are bound, in order, to the vertices of that class in ascending id order.
// If p has fewer vertices in some class than the step needs, false is returned.
// p is never modified and the returned pattern is not re-ranked.
func (p *Pattern) Extend(step *ExtendStep) (*Pattern, bool) {
	if step == nil || step.EdgeCount() == 0 {
		return nil, false
	}

	type binding struct {
		edge   ExtendEdge
		vertex gopattern.VertexID
	}
	bindings := make([]binding, 0, step.EdgeCount())
	for _, class := range step.Classes() {
		edges := step.EdgesOf(class)
		available := p.VerticesWithRank(class.Label, class.Rank)
		if len(available) < len(edges) {
			return nil, false
		}
		for i, e := range edges {
			bindings = append(bindings, binding{e, available[i]})
		}
	}

	dup := p.Clone()
	newID := dup.nextVertexID()
	dup.addVertex(newID, step.targetLabel)

	for _, b := range bindings {
		e := PatternEdge{
			ID:    dup.nextEdgeID(),
			Label: b.edge.EdgeLabel,
		}
		boundLabel := dup.vertices[b.vertex].label
		if b.edge.Dir == gopattern.Out {
			e.StartID, e.StartLabel = b.vertex, boundLabel
			e.EndID, e.EndLabel = newID, step.targetLabel
		} else {
			e.StartID, e.StartLabel = newID, step.targetLabel
			e.EndID, e.EndLabel = b.vertex, boundLabel
		}
		dup.addEdge(e)
	}
	return dup, true
}

// nextVertexID returns the smallest unused vertex id not below the vertex count.
func (p *Pattern) nextVertexID() gopattern.VertexID {
	id := gopattern.VertexID(len(p.vertices))
	for {
		if _, used := p.vertices[id]; !used {
			return id
		}
		id++
	}
}

// nextEdgeID returns the smallest unused edge id not below the edge count.
func (p *Pattern) nextEdgeID() gopattern.EdgeID {
	id := gopattern.EdgeID(len(p.edges))
	for {
		if _, used := p.edges[id]; !used {
			return id
		}
		id++
	}
}
