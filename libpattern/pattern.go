package libpattern

import (
	"fmt"
	"sort"
	"strings"

	"github.com/2x3systems/gopattern/gopattern"
	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/pkg/errors"
)

// Pattern is a small, connected, labeled directed multigraph whose vertices carry a canonical rank.
//
// A Pattern owns all of its state; Clone() returns a fully independent copy.
type Pattern struct {
	edges          map[gopattern.EdgeID]*PatternEdge
	vertices       map[gopattern.VertexID]*PatternVertex
	edgeLabelMap   *treemap.Map // LabelID => *treeset.Set of EdgeID
	vertexLabelMap *treemap.Map // LabelID => *treeset.Set of VertexID
}

func labelComparator(a, b interface{}) int {
	return cmpInt32(int32(a.(gopattern.LabelID)), int32(b.(gopattern.LabelID)))
}

func vertexIDComparator(a, b interface{}) int {
	return cmpInt32(int32(a.(gopattern.VertexID)), int32(b.(gopattern.VertexID)))
}

func edgeIDComparator(a, b interface{}) int {
	return cmpInt32(int32(a.(gopattern.EdgeID)), int32(b.(gopattern.EdgeID)))
}

func newPattern() *Pattern {
	return &Pattern{
		edges:          make(map[gopattern.EdgeID]*PatternEdge),
		vertices:       make(map[gopattern.VertexID]*PatternVertex),
		edgeLabelMap:   treemap.NewWith(labelComparator),
		vertexLabelMap: treemap.NewWith(labelComparator),
	}
}

// NewPatternFromVertex returns a Pattern consisting of a single vertex.
func NewPatternFromVertex(id gopattern.VertexID, label gopattern.LabelID) *Pattern {
	p := newPattern()
	p.addVertex(id, label)
	return p
}

// NewPatternFromEdges builds a Pattern from a non-empty list of edges.
//
// A vertex is created on the first edge naming it and every later edge naming it must agree on its label.
func NewPatternFromEdges(edges []PatternEdge) (*Pattern, error) {
	if len(edges) == 0 {
		return nil, gopattern.ErrEmptyPattern
	}

	p := newPattern()
	for _, e := range edges {
		if e.StartID < 0 || e.EndID < 0 || e.ID < 0 {
			return nil, errors.Wrapf(gopattern.ErrBadVertexID, "edge %d (%d -> %d)", e.ID, e.StartID, e.EndID)
		}
		if _, exists := p.edges[e.ID]; exists {
			return nil, errors.Wrapf(gopattern.ErrDuplicateEdge, "edge %d", e.ID)
		}
		if err := p.checkLabel(e.StartID, e.StartLabel); err != nil {
			return nil, err
		}
		if err := p.checkLabel(e.EndID, e.EndLabel); err != nil {
			return nil, err
		}
		p.addVertex(e.StartID, e.StartLabel)
		p.addVertex(e.EndID, e.EndLabel)
		p.addEdge(e)
	}

	if !p.IsConnected() {
		return nil, gopattern.ErrDisconnected
	}
	return p, nil
}

func (p *Pattern) checkLabel(id gopattern.VertexID, label gopattern.LabelID) error {
	if v := p.vertices[id]; v != nil && v.label != label {
		return errors.Wrapf(gopattern.ErrLabelMismatch, "vertex %d has label %d, edge gives %d", id, v.label, label)
	}
	return nil
}

func (p *Pattern) addVertex(id gopattern.VertexID, label gopattern.LabelID) {
	if _, exists := p.vertices[id]; exists {
		return
	}
	p.vertices[id] = newPatternVertex(id, label)
	indexAdd(p.vertexLabelMap, label, id, vertexIDComparator)
}

// addEdge assumes both endpoints already exist.
func (p *Pattern) addEdge(e PatternEdge) {
	edge := e
	p.edges[e.ID] = &edge
	p.vertices[e.StartID].connect(Connection{Edge: e.ID, Vertex: e.EndID, Dir: gopattern.Out})
	p.vertices[e.EndID].connect(Connection{Edge: e.ID, Vertex: e.StartID, Dir: gopattern.In})
	indexAdd(p.edgeLabelMap, e.Label, e.ID, edgeIDComparator)
}

func indexAdd(index *treemap.Map, label gopattern.LabelID, id interface{}, cmp func(a, b interface{}) int) {
	set, found := index.Get(label)
	if !found {
		set = treeset.NewWith(cmp)
		index.Put(label, set)
	}
	set.(*treeset.Set).Add(id)
}

// Clone returns a deep copy of this Pattern.
func (p *Pattern) Clone() *Pattern {
	dup := &Pattern{
		edges:          make(map[gopattern.EdgeID]*PatternEdge, len(p.edges)),
		vertices:       make(map[gopattern.VertexID]*PatternVertex, len(p.vertices)),
		edgeLabelMap:   cloneIndex(p.edgeLabelMap, edgeIDComparator),
		vertexLabelMap: cloneIndex(p.vertexLabelMap, vertexIDComparator),
	}
	for id, e := range p.edges {
		edge := *e
		dup.edges[id] = &edge
	}
	for id, v := range p.vertices {
		dup.vertices[id] = v.clone()
	}
	return dup
}

func cloneIndex(index *treemap.Map, cmp func(a, b interface{}) int) *treemap.Map {
	dup := treemap.NewWith(labelComparator)
	for it := index.Iterator(); it.Next(); {
		set := it.Value().(*treeset.Set)
		dup.Put(it.Key(), treeset.NewWith(cmp, set.Values()...))
	}
	return dup
}

func (p *Pattern) VertexCount() int {
	return len(p.vertices)
}

func (p *Pattern) EdgeCount() int {
	return len(p.edges)
}

// Vertex returns the vertex having the given id or nil if there is none.
func (p *Pattern) Vertex(id gopattern.VertexID) *PatternVertex {
	return p.vertices[id]
}

// Edge returns the edge having the given id or nil if there is none.
func (p *Pattern) Edge(id gopattern.EdgeID) *PatternEdge {
	return p.edges[id]
}

// VertexIDs returns all vertex ids in ascending order.
func (p *Pattern) VertexIDs() []gopattern.VertexID {
	ids := make([]gopattern.VertexID, 0, len(p.vertices))
	for id := range p.vertices {
		ids = append(ids, id)
	}
	sortVertexIDs(ids)
	return ids
}

// EdgeIDs returns all edge ids in ascending order.
func (p *Pattern) EdgeIDs() []gopattern.EdgeID {
	ids := make([]gopattern.EdgeID, 0, len(p.edges))
	for id := range p.edges {
		ids = append(ids, id)
	}
	sortEdgeIDs(ids)
	return ids
}

// VertexLabels returns each vertex label present in ascending order.
func (p *Pattern) VertexLabels() []gopattern.LabelID {
	labels := make([]gopattern.LabelID, 0, p.vertexLabelMap.Size())
	for _, key := range p.vertexLabelMap.Keys() {
		labels = append(labels, key.(gopattern.LabelID))
	}
	return labels
}

// EdgeLabels returns each edge label present in ascending order.
func (p *Pattern) EdgeLabels() []gopattern.LabelID {
	labels := make([]gopattern.LabelID, 0, p.edgeLabelMap.Size())
	for _, key := range p.edgeLabelMap.Keys() {
		labels = append(labels, key.(gopattern.LabelID))
	}
	return labels
}

// VerticesWithLabel returns the ids of the vertices carrying the given label in ascending order.
func (p *Pattern) VerticesWithLabel(label gopattern.LabelID) []gopattern.VertexID {
	set, found := p.vertexLabelMap.Get(label)
	if !found {
		return nil
	}
	values := set.(*treeset.Set).Values()
	ids := make([]gopattern.VertexID, len(values))
	for i, val := range values {
		ids[i] = val.(gopattern.VertexID)
	}
	return ids
}

// VerticesWithRank returns the ids of the vertices having the given label and rank in ascending order.
func (p *Pattern) VerticesWithRank(label gopattern.LabelID, rank gopattern.Rank) []gopattern.VertexID {
	var ids []gopattern.VertexID
	for _, id := range p.VerticesWithLabel(label) {
		if p.vertices[id].rank == rank {
			ids = append(ids, id)
		}
	}
	return ids
}

// EdgesWithLabel returns the ids of the edges carrying the given label in ascending order.
func (p *Pattern) EdgesWithLabel(label gopattern.LabelID) []gopattern.EdgeID {
	set, found := p.edgeLabelMap.Get(label)
	if !found {
		return nil
	}
	values := set.(*treeset.Set).Values()
	ids := make([]gopattern.EdgeID, len(values))
	for i, val := range values {
		ids[i] = val.(gopattern.EdgeID)
	}
	return ids
}

// SetRank assigns the rank of the given vertex, returning false if there is no such vertex.
func (p *Pattern) SetRank(id gopattern.VertexID, rank gopattern.Rank) bool {
	v := p.vertices[id]
	if v == nil {
		return false
	}
	v.rank = rank
	return true
}

// MaxVertexLabel returns the largest vertex label present.
func (p *Pattern) MaxVertexLabel() gopattern.LabelID {
	key, _ := p.vertexLabelMap.Max()
	if key == nil {
		return 0
	}
	return key.(gopattern.LabelID)
}

// MaxEdgeLabel returns the largest edge label present (0 if there are no edges).
func (p *Pattern) MaxEdgeLabel() gopattern.LabelID {
	key, _ := p.edgeLabelMap.Max()
	if key == nil {
		return 0
	}
	return key.(gopattern.LabelID)
}

// MinBits returns the fewest bits (at least 1) able to represent maxValue.
func MinBits(maxValue int) int {
	bits := 1
	for bits < gopattern.MaxFieldBits && (1<<bits) <= maxValue {
		bits++
	}
	return bits
}

// MinEdgeLabelBits returns the bit width needed to encode the largest edge label.
func (p *Pattern) MinEdgeLabelBits() int {
	return MinBits(int(p.MaxEdgeLabel()))
}

// MinVertexLabelBits returns the bit width needed to encode the largest vertex label.
func (p *Pattern) MinVertexLabelBits() int {
	return MinBits(int(p.MaxVertexLabel()))
}

// MinVertexRankBits returns the bit width needed to encode the size of the largest same-label vertex class.
func (p *Pattern) MinVertexRankBits() int {
	maxCount := 0
	for _, set := range p.vertexLabelMap.Values() {
		if n := set.(*treeset.Set).Size(); n > maxCount {
			maxCount = n
		}
	}
	return MinBits(maxCount)
}

// OrderedEdges returns all edge ids sorted by (start label, end label, edge label, start rank, end rank).
//
// Ties keep ascending edge id order.  Ranks are expected to be assigned already.
func (p *Pattern) OrderedEdges() []gopattern.EdgeID {
	ids := p.EdgeIDs()
	sortStable(ids, func(a, b gopattern.EdgeID) int {
		return p.cmpEdges(a, b, true)
	})
	return ids
}

// IsConnected returns true if every vertex is reachable from every other ignoring edge direction.
func (p *Pattern) IsConnected() bool {
	if len(p.vertices) == 0 {
		return false
	}
	ids := p.VertexIDs()
	seen := map[gopattern.VertexID]struct{}{ids[0]: {}}
	queue := []gopattern.VertexID{ids[0]}
	for len(queue) > 0 {
		v := p.vertices[queue[0]]
		queue = queue[1:]
		for _, next := range v.ConnectVertices() {
			if _, visited := seen[next]; !visited {
				seen[next] = struct{}{}
				queue = append(queue, next)
			}
		}
	}
	return len(seen) == len(p.vertices)
}

// String returns one line per edge in edge id order, or the lone vertex for an edgeless pattern.
func (p *Pattern) String() string {
	var b strings.Builder
	if len(p.edges) == 0 {
		for _, id := range p.VertexIDs() {
			writeVertex(&b, p.vertices[id])
		}
		return b.String()
	}
	for i, id := range p.EdgeIDs() {
		e := p.edges[id]
		if i > 0 {
			b.WriteByte('\n')
		}
		writeVertex(&b, p.vertices[e.StartID])
		fmt.Fprintf(&b, " -[%d]-> ", e.Label)
		writeVertex(&b, p.vertices[e.EndID])
	}
	return b.String()
}

func writeVertex(b *strings.Builder, v *PatternVertex) {
	fmt.Fprintf(b, "%d(l%d,r%d)", v.id, v.label, v.rank)
}

func sortStable[T any](items []T, cmp func(a, b T) int) {
	sort.SliceStable(items, func(i, j int) bool {
		return cmp(items[i], items[j]) < 0
	})
}
