package libpattern

import (
	"testing"

	"github.com/2x3systems/gopattern/gopattern"
	"github.com/stretchr/testify/assert"
)

type rankMap = map[gopattern.VertexID]gopattern.Rank

func TestInitialRank(t *testing.T) {
	p := patternCase3(t)
	p.SetInitialRank()
	assert.Equal(t, rankMap{0: 1, 1: 0, 2: 1, 3: 0}, ranksOf(p))

	// A0 and A1 look alike locally
	p = patternCase4(t)
	p.SetInitialRank()
	assert.Equal(t, rankMap{0: 0, 1: 0, 2: 1, 3: 0}, ranksOf(p))
}

func TestInitialRankCounting(t *testing.T) {
	// Two leaves tie below the hub so the hub's rank counts both of them
	p := mustPattern(t,
		edgeTuple{0, 0, 0, 1, lA, lA},
		edgeTuple{1, 0, 0, 2, lA, lA},
	)
	p.SetInitialRank()
	assert.Equal(t, rankMap{0: 2, 1: 0, 2: 0}, ranksOf(p))
}

func TestRankRanking(t *testing.T) {
	for _, tc := range []struct {
		name   string
		edges  []edgeTuple
		expect rankMap
	}{
		{
			name:   "single edge",
			edges:  []edgeTuple{{0, 0, 0, 1, lA, lA}},
			expect: rankMap{0: 1, 1: 0},
		},
		{
			name: "mixed labels",
			edges: []edgeTuple{
				{0, 0, 0, 1, lA, lA},
				{1, 1, 0, 2, lA, lB},
			},
			expect: rankMap{0: 1, 1: 0, 2: 0},
		},
		{
			name: "back edge",
			edges: []edgeTuple{
				{0, 0, 0, 1, lA, lA},
				{1, 0, 0, 2, lA, lA},
				{2, 0, 2, 0, lA, lA},
			},
			expect: rankMap{0: 2, 1: 0, 2: 1},
		},
		{
			name: "directed triangle",
			edges: []edgeTuple{
				{0, 0, 0, 1, lA, lA},
				{1, 0, 1, 2, lA, lA},
				{2, 0, 2, 0, lA, lA},
			},
			expect: rankMap{0: 0, 1: 0, 2: 0},
		},
		{
			name: "two way with detour",
			edges: []edgeTuple{
				{0, 0, 0, 1, lA, lA},
				{1, 0, 1, 0, lA, lA},
				{2, 1, 1, 2, lA, lB},
				{3, 2, 2, 0, lB, lA},
			},
			expect: rankMap{0: 0, 1: 1, 2: 0},
		},
	} {
		p := mustPattern(t, tc.edges...)
		p.RankRanking()
		assert.Equal(t, tc.expect, ranksOf(p), tc.name)
	}
}

func TestAccurateRankBreaksTies(t *testing.T) {
	p := patternCase4(t)
	p.RankRanking()
	assert.Equal(t, rankMap{0: 1, 1: 0, 2: 1, 3: 0}, ranksOf(p))

	// A0 and A1 tie locally and are told apart by their B neighbors, which do not tie
	p = mustPattern(t,
		edgeTuple{0, 0, 0, 2, lA, lB},
		edgeTuple{1, 0, 1, 3, lA, lB},
		edgeTuple{2, 1, 3, 4, lB, lC},
		edgeTuple{3, 2, 5, 0, lX, lA},
		edgeTuple{4, 2, 5, 1, lX, lA},
	)
	p.SetInitialRank()
	assert.Equal(t, p.Vertex(0).Rank(), p.Vertex(1).Rank())

	p.SetAccurateRank()
	ranks := ranksOf(p)
	assert.Equal(t, gopattern.Rank(0), ranks[0])
	assert.Equal(t, gopattern.Rank(1), ranks[1])
	assert.Equal(t, gopattern.Rank(0), ranks[2])
	assert.Equal(t, gopattern.Rank(1), ranks[3])
}

func TestRankRankingIsStable(t *testing.T) {
	for _, build := range []func(*testing.T) *Pattern{
		patternCase1, patternCase2, patternCase3, patternCase4, patternCase7,
	} {
		p := build(t)
		p.RankRanking()
		first := ranksOf(p)
		p.RankRanking()
		assert.Equal(t, first, ranksOf(p))
	}
}

func TestRankIgnoresVertexIDs(t *testing.T) {
	// case3 with its vertex ids permuted gives the same code
	p := patternCase3(t)
	q := mustPattern(t,
		edgeTuple{0, 0, 3, 2, lA, lA},
		edgeTuple{1, 1, 3, 1, lA, lB},
		edgeTuple{2, 1, 2, 0, lA, lB},
		edgeTuple{3, 2, 1, 0, lB, lB},
	)
	p.RankRanking()
	q.RankRanking()

	enc := NewEncoderForPattern(p, 0)
	assert.Equal(t, enc.EncodePattern(p), enc.EncodePattern(q))
}

// 3->0->1->4->3 plus 0->2: vertex 4 has an in-edge and an out-edge that tie in ranked order.
var cycleWithTail = []edgeTuple{
	{0, 0, 3, 0, lA, lA},
	{1, 0, 0, 1, lA, lA},
	{2, 0, 1, 4, lA, lA},
	{3, 0, 4, 3, lA, lA},
	{4, 0, 0, 2, lA, lA},
}

func TestRankIgnoresEdgeDirectionTies(t *testing.T) {
	p := mustPattern(t, cycleWithTail...)

	reversed := make([]edgeTuple, len(cycleWithTail))
	for i, e := range cycleWithTail {
		e[0] = int32(len(cycleWithTail) - 1 - i)
		reversed[i] = e
	}
	q := mustPattern(t, reversed...)

	// vertex ids shifted by 2 (mod 5) and edges listed in another order
	shift := func(v int32) int32 { return (v + 2) % 5 }
	shifted := make([]edgeTuple, len(cycleWithTail))
	for i, e := range cycleWithTail {
		e[0] = int32((i + 3) % 5)
		e[2], e[3] = shift(e[2]), shift(e[3])
		shifted[i] = e
	}
	r := mustPattern(t, shifted...)

	want := map[gopattern.VertexID]gopattern.Rank{0: 4, 1: 1, 2: 0, 3: 2, 4: 2}
	for _, x := range []*Pattern{p, q} {
		x.RankRanking()
		assert.Equal(t, want, ranksOf(x))
	}
	r.RankRanking()

	enc := NewEncoderForPattern(p, 0)
	assert.Equal(t, enc.EncodePattern(p), enc.EncodePattern(q))
	assert.Equal(t, enc.EncodePattern(p), enc.EncodePattern(r))
}

func TestRankSameDirectionTiesFollowEdgeIDs(t *testing.T) {
	// Vertex 0 has out-edges to vertices 1 and 2, which share a phase one rank but are not
	// equivalent.  Their order in 0's neighbor list falls back to edge id order, so swapping
	// the ids of those two edges refines the ranks differently.
	p := mustPattern(t,
		edgeTuple{0, 0, 0, 1, lA, lA},
		edgeTuple{1, 0, 0, 2, lA, lA},
		edgeTuple{2, 0, 1, 0, lA, lA},
		edgeTuple{3, 0, 1, 3, lA, lA},
		edgeTuple{4, 0, 2, 3, lA, lA},
		edgeTuple{5, 0, 2, 4, lA, lA},
	)
	q := mustPattern(t,
		edgeTuple{1, 0, 0, 1, lA, lA},
		edgeTuple{0, 0, 0, 2, lA, lA},
		edgeTuple{2, 0, 1, 0, lA, lA},
		edgeTuple{3, 0, 1, 3, lA, lA},
		edgeTuple{4, 0, 2, 3, lA, lA},
		edgeTuple{5, 0, 2, 4, lA, lA},
	)
	p.RankRanking()
	q.RankRanking()

	assert.Equal(t, map[gopattern.VertexID]gopattern.Rank{0: 4, 1: 2, 2: 3, 3: 1, 4: 0}, ranksOf(p))
	assert.Equal(t, map[gopattern.VertexID]gopattern.Rank{0: 3, 1: 2, 2: 4, 3: 1, 4: 0}, ranksOf(q))

	enc := NewEncoderForPattern(p, 0)
	assert.NotEqual(t, enc.EncodePattern(p), enc.EncodePattern(q))
}
