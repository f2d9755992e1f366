package libpattern

import (
	"fmt"

	"github.com/2x3systems/gopattern/gopattern"
	"github.com/pkg/errors"
)

// Encoder holds the field widths of the canonical codec.
//
// Pattern codes hold per edge, from the least significant bits up:
//
//	end rank | start rank | end label | start label | edge label
//
// with edges in OrderedEdges() order, the first edge lowest.  ExtendStep codes hold per ExtendEdge:
//
//	direction | edge label | start rank | start label
//
// followed by the target vertex label.
type Encoder struct {
	EdgeLabelBits   int
	VertexLabelBits int
	DirectionBits   int
	VertexRankBits  int
}

func NewEncoder(edgeLabelBits, vertexLabelBits, directionBits, vertexRankBits int) *Encoder {
	return &Encoder{
		EdgeLabelBits:   edgeLabelBits,
		VertexLabelBits: vertexLabelBits,
		DirectionBits:   directionBits,
		VertexRankBits:  vertexRankBits,
	}
}

// NewEncoderForPattern sizes an Encoder to the smallest widths able to encode p,
// using rankBitsFloor for the rank width if it is larger than what p needs.
func NewEncoderForPattern(p *Pattern, rankBitsFloor int) *Encoder {
	rankBits := p.MinVertexRankBits()
	if rankBitsFloor > rankBits {
		rankBits = rankBitsFloor
	}
	return NewEncoder(p.MinEdgeLabelBits(), p.MinVertexLabelBits(), gopattern.DirectionBits, rankBits)
}

// NewEncoderForSchema sizes an Encoder able to encode any pattern of up to maxVertices vertices over the given schema,
// so that codes of different patterns are comparable.
func NewEncoderForSchema(meta *PatternMeta, maxVertices int) *Encoder {
	return NewEncoder(
		MinBits(int(meta.MaxEdgeLabelID())),
		MinBits(int(meta.MaxVertexLabelID())),
		gopattern.DirectionBits,
		MinBits(maxVertices),
	)
}

func (enc *Encoder) String() string {
	return fmt.Sprintf("Encoder{el:%d vl:%d d:%d r:%d}", enc.EdgeLabelBits, enc.VertexLabelBits, enc.DirectionBits, enc.VertexRankBits)
}

func (enc *Encoder) edgeBits() int {
	return 2*enc.VertexRankBits + 2*enc.VertexLabelBits + enc.EdgeLabelBits
}

func (enc *Encoder) extendEdgeBits() int {
	return enc.DirectionBits + enc.EdgeLabelBits + enc.VertexRankBits + enc.VertexLabelBits
}

func (enc *Encoder) appendEdge(w *BitWriter, p *Pattern, e *PatternEdge) {
	w.AppendField(int(p.vertices[e.EndID].rank), enc.VertexRankBits)
	w.AppendField(int(p.vertices[e.StartID].rank), enc.VertexRankBits)
	w.AppendField(int(e.EndLabel), enc.VertexLabelBits)
	w.AppendField(int(e.StartLabel), enc.VertexLabelBits)
	w.AppendField(int(e.Label), enc.EdgeLabelBits)
}

func (enc *Encoder) writePattern(p *Pattern) *BitWriter {
	w := &BitWriter{}
	for _, id := range p.OrderedEdges() {
		enc.appendEdge(w, p, p.edges[id])
	}
	return w
}

func (enc *Encoder) writeExtendStep(step *ExtendStep) *BitWriter {
	w := &BitWriter{}
	for _, e := range step.Edges() {
		w.AppendField(int(e.Dir), enc.DirectionBits)
		w.AppendField(int(e.EdgeLabel), enc.EdgeLabelBits)
		w.AppendField(int(e.StartRank), enc.VertexRankBits)
		w.AppendField(int(e.StartLabel), enc.VertexLabelBits)
	}
	w.AppendField(int(step.targetLabel), enc.VertexLabelBits)
	return w
}

// EncodePattern returns the canonical code of p as raw bytes.  p is expected to be ranked.
func (enc *Encoder) EncodePattern(p *Pattern) []byte {
	return enc.writePattern(p).Finalize(ByteUnitBits)
}

// EncodePatternASCII returns the canonical code of p as 7-bit characters.
func (enc *Encoder) EncodePatternASCII(p *Pattern) string {
	return string(enc.writePattern(p).Finalize(ASCIIUnitBits))
}

// EncodeExtendStep returns the canonical code of step as raw bytes.
func (enc *Encoder) EncodeExtendStep(step *ExtendStep) []byte {
	return enc.writeExtendStep(step).Finalize(ByteUnitBits)
}

// EncodeExtendStepASCII returns the canonical code of step as 7-bit characters.
func (enc *Encoder) EncodeExtendStepASCII(step *ExtendStep) string {
	return string(enc.writeExtendStep(step).Finalize(ASCIIUnitBits))
}

// DecodePattern rebuilds a pattern from a raw byte code made by this Encoder's configuration.
func (enc *Encoder) DecodePattern(code []byte) (*Pattern, error) {
	return enc.decodePattern(code, ByteUnitBits)
}

// DecodePatternASCII rebuilds a pattern from a 7-bit code made by this Encoder's configuration.
func (enc *Encoder) DecodePatternASCII(code string) (*Pattern, error) {
	return enc.decodePattern([]byte(code), ASCIIUnitBits)
}

// decodePattern gives each distinct (label, rank) its own vertex, numbered in order of first appearance,
// then restores the decoded ranks.  Vertices sharing a label and rank therefore decode as one vertex.
func (enc *Encoder) decodePattern(code []byte, unitBits int) (*Pattern, error) {
	r := NewBitReader(code, unitBits)
	groupBits := enc.edgeBits()
	if r.Remaining()%groupBits != 0 {
		panic(errors.Wrapf(gopattern.ErrBadEncoding, "%d content bits is not a whole number of %d-bit edges", r.Remaining(), groupBits))
	}

	ids := make(map[RankClass]gopattern.VertexID)
	vertexFor := func(class RankClass) gopattern.VertexID {
		id, exists := ids[class]
		if !exists {
			id = gopattern.VertexID(len(ids))
			ids[class] = id
		}
		return id
	}

	numEdges := r.Remaining() / groupBits
	edges := make([]PatternEdge, 0, numEdges)
	for i := 0; i < numEdges; i++ {
		endRank := gopattern.Rank(r.ReadField(enc.VertexRankBits))
		startRank := gopattern.Rank(r.ReadField(enc.VertexRankBits))
		endLabel := gopattern.LabelID(r.ReadField(enc.VertexLabelBits))
		startLabel := gopattern.LabelID(r.ReadField(enc.VertexLabelBits))
		edgeLabel := gopattern.LabelID(r.ReadField(enc.EdgeLabelBits))

		startID := vertexFor(RankClass{startLabel, startRank})
		endID := vertexFor(RankClass{endLabel, endRank})
		edges = append(edges, NewPatternEdge(gopattern.EdgeID(i), edgeLabel, startID, endID, startLabel, endLabel))
	}

	p, err := NewPatternFromEdges(edges)
	if err != nil {
		return nil, errors.Wrap(err, "decoding pattern")
	}
	for class, id := range ids {
		p.SetRank(id, class.Rank)
	}
	return p, nil
}

// DecodeExtendStep rebuilds an ExtendStep from a raw byte code made by this Encoder's configuration.
func (enc *Encoder) DecodeExtendStep(code []byte) *ExtendStep {
	return enc.decodeExtendStep(code, ByteUnitBits)
}

// DecodeExtendStepASCII rebuilds an ExtendStep from a 7-bit code made by this Encoder's configuration.
func (enc *Encoder) DecodeExtendStepASCII(code string) *ExtendStep {
	return enc.decodeExtendStep([]byte(code), ASCIIUnitBits)
}

func (enc *Encoder) decodeExtendStep(code []byte, unitBits int) *ExtendStep {
	r := NewBitReader(code, unitBits)
	groupBits := enc.extendEdgeBits()
	body := r.Remaining() - enc.VertexLabelBits
	if body < 0 || body%groupBits != 0 {
		panic(errors.Wrapf(gopattern.ErrBadEncoding, "%d content bits is not a whole number of %d-bit extend edges plus a target", r.Remaining(), groupBits))
	}

	edges := make([]ExtendEdge, body/groupBits)
	for i := range edges {
		dir := r.ReadField(enc.DirectionBits)
		if dir > int(gopattern.In) {
			panic(errors.Wrapf(gopattern.ErrBadEncoding, "bad direction %d", dir))
		}
		edges[i].Dir = gopattern.Direction(dir)
		edges[i].EdgeLabel = gopattern.LabelID(r.ReadField(enc.EdgeLabelBits))
		edges[i].StartRank = gopattern.Rank(r.ReadField(enc.VertexRankBits))
		edges[i].StartLabel = gopattern.LabelID(r.ReadField(enc.VertexLabelBits))
	}
	target := gopattern.LabelID(r.ReadField(enc.VertexLabelBits))
	return NewExtendStep(target, edges)
}
