package gopattern

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogEntryMarshal(t *testing.T) {
	entry := CatalogEntry{
		Code:        []byte{5, 96},
		VertexCount: 2,
		EdgeCount:   1,
		Steps:       [][]byte{{0x01, 0x2f}, {0x07}},
	}
	buf, err := entry.Marshal()
	require.NoError(t, err)

	var got CatalogEntry
	require.NoError(t, got.Unmarshal(buf))
	assert.Equal(t, entry, got)

	// Unmarshal must not alias its input
	buf[1] = 0xFF
	assert.Equal(t, []byte{5, 96}, got.Code)

	for _, bad := range [][]byte{nil, buf[:3], {0x02, 0x05}, {0x01, 0x05, 0x02, 0x01, 0x7F}} {
		err = got.Unmarshal(bad)
		assert.True(t, errors.Is(err, ErrUnmarshal), "%x", bad)
	}
}

func TestCatalogStateMarshal(t *testing.T) {
	state := CatalogState{
		MajorVers:       2023,
		MinorVers:       1,
		EdgeLabelBits:   1,
		VertexLabelBits: 1,
		VertexRankBits:  3,
		MaxVertices:     4,
		NumPatterns:     []uint64{0, 0, 2, 300, 70000},
	}
	buf, err := state.Marshal()
	require.NoError(t, err)

	var got CatalogState
	require.NoError(t, got.Unmarshal(buf))
	assert.Equal(t, state, got)

	assert.True(t, errors.Is(got.Unmarshal(buf[:4]), ErrUnmarshal))
}

func TestPatternSelector(t *testing.T) {
	entry := &CatalogEntry{VertexCount: 3, EdgeCount: 4}

	for _, tc := range []struct {
		sel  PatternSelector
		want bool
	}{
		{DefaultPatternSelector, true},
		{PatternSelector{MinVertices: 3, MaxVertices: 3}, true},
		{PatternSelector{MinVertices: 4, MaxVertices: 9}, false},
		{PatternSelector{MinVertices: 1, MaxVertices: 2}, false},
		{PatternSelector{MinVertices: 1, MaxVertices: 9, MinEdges: 5}, false},
		{PatternSelector{MinVertices: 1, MaxVertices: 9, MaxEdges: 3}, false},
		{PatternSelector{MinVertices: 1, MaxVertices: 9, MinEdges: 4, MaxEdges: 4}, true},
	} {
		assert.Equal(t, tc.want, tc.sel.Selects(entry), "%+v", tc.sel)
	}
}

func TestWriteEntry(t *testing.T) {
	entry := &CatalogEntry{
		Code:        []byte{5, 96},
		VertexCount: 2,
		EdgeCount:   1,
		Steps:       [][]byte{{0x01, 0x2f}},
	}

	var out bytes.Buffer
	WriteEntry(&out, entry, DefaultPrintOpts)
	assert.Equal(t, "v2,e1,0560\n", out.String())

	out.Reset()
	WriteEntry(&out, entry, PrintOpts{Label: "knows", Steps: true})
	assert.Equal(t, "knows,v2,e1,0560,steps=1,012f\n", out.String())

	out.Reset()
	upper := func(code []byte) string { return strings.ToUpper(hex.EncodeToString(code)) }
	WriteEntry(&out, entry, PrintOpts{Steps: true, FormatCode: upper})
	assert.Equal(t, "v2,e1,0560,steps=1,012F\n", out.String())
}

func TestEntryStream(t *testing.T) {
	stream := NewEntryStream()
	go func() {
		for i := int32(1); i <= 3; i++ {
			stream.Outlet <- &CatalogEntry{Code: []byte{byte(i)}, VertexCount: i, EdgeCount: i}
		}
		stream.Close()
	}()

	var out bytes.Buffer
	n := stream.Print(&out, DefaultPrintOpts).PullAll()
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, strings.Count(out.String(), "\n"))
	assert.True(t, strings.HasPrefix(out.String(), "v1,e1,01\n"))
}

func TestCatalogContext(t *testing.T) {
	ctx := NewCatalogContext()
	cat := &fakeCatalog{ctx: ctx, closed: make(chan struct{})}
	ctx.AttachCatalog(cat)

	ctx.Close()
	<-cat.closed
	<-ctx.Done()

	// Closing twice is harmless
	ctx.Close()
}

type fakeCatalog struct {
	Catalog
	ctx    CatalogContext
	closed chan struct{}
}

func (cat *fakeCatalog) Close() error {
	cat.ctx.DetachCatalog(cat)
	close(cat.closed)
	return nil
}
