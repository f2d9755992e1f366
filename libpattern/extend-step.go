package libpattern

import (
	"fmt"
	"strings"

	"github.com/2x3systems/gopattern/gopattern"
	"github.com/emirpasic/gods/maps/treemap"
)

// ExtendEdge is a template edge joining a new vertex to some vertex of a (label, rank) class.
type ExtendEdge struct {
	StartLabel gopattern.LabelID
	StartRank  gopattern.Rank
	EdgeLabel  gopattern.LabelID
	Dir        gopattern.Direction // Out: existing -> new, In: new -> existing
}

func NewExtendEdge(startLabel gopattern.LabelID, startRank gopattern.Rank, edgeLabel gopattern.LabelID, dir gopattern.Direction) ExtendEdge {
	return ExtendEdge{
		StartLabel: startLabel,
		StartRank:  startRank,
		EdgeLabel:  edgeLabel,
		Dir:        dir,
	}
}

func (e ExtendEdge) Class() RankClass {
	return RankClass{
		Label: e.StartLabel,
		Rank:  e.StartRank,
	}
}

func (e ExtendEdge) String() string {
	return fmt.Sprintf("(%d,r%d)-[%d,%v]", e.StartLabel, e.StartRank, e.EdgeLabel, e.Dir)
}

// RankClass names the vertices of a pattern sharing a label and rank.
type RankClass struct {
	Label gopattern.LabelID
	Rank  gopattern.Rank
}

func rankClassComparator(a, b interface{}) int {
	A := a.(RankClass)
	B := b.(RankClass)
	if d := cmpInt32(int32(A.Label), int32(B.Label)); d != 0 {
		return d
	}
	return cmpInt32(int32(A.Rank), int32(B.Rank))
}

// ExtendStep describes adding one vertex of a target label to a pattern, connected by
// ExtendEdges grouped by the rank class of the vertex each attaches to.
//
// More than one ExtendEdge in a class means that many distinct vertices of the class are attached.
type ExtendStep struct {
	targetLabel gopattern.LabelID
	edges       *treemap.Map // RankClass => []ExtendEdge
	edgeCount   int
}

// NewExtendStep groups the given edges by rank class, keeping their given order within each class.
func NewExtendStep(targetLabel gopattern.LabelID, edges []ExtendEdge) *ExtendStep {
	step := &ExtendStep{
		targetLabel: targetLabel,
		edges:       treemap.NewWith(rankClassComparator),
	}
	for _, e := range edges {
		step.add(e)
	}
	return step
}

func (step *ExtendStep) add(e ExtendEdge) {
	class := e.Class()
	var list []ExtendEdge
	if val, found := step.edges.Get(class); found {
		list = val.([]ExtendEdge)
	}
	step.edges.Put(class, append(list, e))
	step.edgeCount++
}

func (step *ExtendStep) TargetLabel() gopattern.LabelID {
	return step.targetLabel
}

// Classes returns the rank classes this step attaches to in (label, rank) order.
func (step *ExtendStep) Classes() []RankClass {
	keys := step.edges.Keys()
	classes := make([]RankClass, len(keys))
	for i, key := range keys {
		classes[i] = key.(RankClass)
	}
	return classes
}

// EdgesOf returns the ExtendEdges attaching to the given rank class.
func (step *ExtendStep) EdgesOf(class RankClass) []ExtendEdge {
	val, found := step.edges.Get(class)
	if !found {
		return nil
	}
	return val.([]ExtendEdge)
}

// HasExtendFrom returns true if this step attaches to a vertex of the given label and rank.
func (step *ExtendStep) HasExtendFrom(label gopattern.LabelID, rank gopattern.Rank) bool {
	_, found := step.edges.Get(RankClass{Label: label, Rank: rank})
	return found
}

// ClassCount returns the number of distinct rank classes this step attaches to.
func (step *ExtendStep) ClassCount() int {
	return step.edges.Size()
}

// EdgeCount returns the total number of ExtendEdges.
func (step *ExtendStep) EdgeCount() int {
	return step.edgeCount
}

// Edges returns every ExtendEdge, class by class in (label, rank) order.
func (step *ExtendStep) Edges() []ExtendEdge {
	all := make([]ExtendEdge, 0, step.edgeCount)
	for it := step.edges.Iterator(); it.Next(); {
		all = append(all, it.Value().([]ExtendEdge)...)
	}
	return all
}

func (step *ExtendStep) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "target %d:", step.targetLabel)
	for _, e := range step.Edges() {
		b.WriteByte(' ')
		b.WriteString(e.String())
	}
	return b.String()
}

// GetSubsets returns every non-empty subset of items, generated breadth-first so that
// smaller subsets come first and each subset keeps the order of items.
func GetSubsets[T any](items []T) [][]T {
	type state struct {
		subset []T
		next   int
	}

	var subsets [][]T
	queue := make([]state, 0, len(items))
	for i, item := range items {
		queue = append(queue, state{[]T{item}, i + 1})
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		subsets = append(subsets, cur.subset)
		for i := cur.next; i < len(items); i++ {
			subset := make([]T, len(cur.subset), len(cur.subset)+1)
			copy(subset, cur.subset)
			queue = append(queue, state{append(subset, items[i]), i + 1})
		}
	}
	return subsets
}
