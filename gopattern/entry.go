package gopattern

import (
	"github.com/gogo/protobuf/proto"
	"github.com/pkg/errors"
)

// CatalogState is the bookkeeping record a catalog persists alongside its entries.
type CatalogState struct {
	MajorVers       uint32
	MinorVers       uint32
	EdgeLabelBits   uint32
	VertexLabelBits uint32
	VertexRankBits  uint32
	MaxVertices     uint32
	NumPatterns     []uint64 // NumPatterns[Nv] is the number of entries having Nv vertices
}

// Marshal appends the varint encoding of this state.
func (state *CatalogState) Marshal() ([]byte, error) {
	buf := proto.NewBuffer(make([]byte, 0, 16+8*len(state.NumPatterns)))
	for _, u := range []uint32{
		state.MajorVers,
		state.MinorVers,
		state.EdgeLabelBits,
		state.VertexLabelBits,
		state.VertexRankBits,
		state.MaxVertices,
	} {
		if err := buf.EncodeVarint(uint64(u)); err != nil {
			return nil, err
		}
	}
	if err := buf.EncodeVarint(uint64(len(state.NumPatterns))); err != nil {
		return nil, err
	}
	for _, n := range state.NumPatterns {
		if err := buf.EncodeVarint(n); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func (state *CatalogState) Unmarshal(src []byte) error {
	buf := proto.NewBuffer(src)
	for _, dst := range []*uint32{
		&state.MajorVers,
		&state.MinorVers,
		&state.EdgeLabelBits,
		&state.VertexLabelBits,
		&state.VertexRankBits,
		&state.MaxVertices,
	} {
		u, err := buf.DecodeVarint()
		if err != nil {
			return errors.Wrap(ErrUnmarshal, err.Error())
		}
		*dst = uint32(u)
	}
	count, err := buf.DecodeVarint()
	if err != nil {
		return errors.Wrap(ErrUnmarshal, err.Error())
	}
	if count > uint64(len(src)) {
		return errors.Wrapf(ErrUnmarshal, "%d pattern counts in %d bytes", count, len(src))
	}
	state.NumPatterns = make([]uint64, count)
	for i := range state.NumPatterns {
		if state.NumPatterns[i], err = buf.DecodeVarint(); err != nil {
			return errors.Wrap(ErrUnmarshal, err.Error())
		}
	}
	return nil
}

// Marshal encodes this entry as a sequence of varints and length-prefixed byte strings.
func (entry *CatalogEntry) Marshal() ([]byte, error) {
	size := 16 + len(entry.Code)
	for _, step := range entry.Steps {
		size += 2 + len(step)
	}
	buf := proto.NewBuffer(make([]byte, 0, size))

	if err := buf.EncodeRawBytes(entry.Code); err != nil {
		return nil, err
	}
	if err := buf.EncodeVarint(uint64(entry.VertexCount)); err != nil {
		return nil, err
	}
	if err := buf.EncodeVarint(uint64(entry.EdgeCount)); err != nil {
		return nil, err
	}
	if err := buf.EncodeVarint(uint64(len(entry.Steps))); err != nil {
		return nil, err
	}
	for _, step := range entry.Steps {
		if err := buf.EncodeRawBytes(step); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes an entry, copying everything out of src.
func (entry *CatalogEntry) Unmarshal(src []byte) error {
	buf := proto.NewBuffer(src)

	var err error
	if entry.Code, err = buf.DecodeRawBytes(true); err != nil {
		return errors.Wrap(ErrUnmarshal, err.Error())
	}

	var u uint64
	if u, err = buf.DecodeVarint(); err != nil {
		return errors.Wrap(ErrUnmarshal, err.Error())
	}
	entry.VertexCount = int32(u)

	if u, err = buf.DecodeVarint(); err != nil {
		return errors.Wrap(ErrUnmarshal, err.Error())
	}
	entry.EdgeCount = int32(u)

	if u, err = buf.DecodeVarint(); err != nil {
		return errors.Wrap(ErrUnmarshal, err.Error())
	}
	if u > uint64(len(src)) {
		return errors.Wrapf(ErrUnmarshal, "%d steps in %d bytes", u, len(src))
	}
	entry.Steps = make([][]byte, u)
	for i := range entry.Steps {
		if entry.Steps[i], err = buf.DecodeRawBytes(true); err != nil {
			return errors.Wrap(ErrUnmarshal, err.Error())
		}
	}
	return nil
}
