package gopattern

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"
)

type EntryStream struct {
	Outlet chan *CatalogEntry
}

func NewEntryStream() *EntryStream {
	stream := &EntryStream{
		Outlet: make(chan *CatalogEntry, 1),
	}
	return stream
}

func (stream *EntryStream) Close() {
	if stream.Outlet != nil {
		close(stream.Outlet)
	}
}

// PullAll drains the stream and returns how many entries it carried.
func (stream *EntryStream) PullAll() int {
	count := int(0)
	for range stream.Outlet {
		count++
	}
	return count
}

// WriteEntry writes one line describing the given entry.
func WriteEntry(out io.Writer, entry *CatalogEntry, opts PrintOpts) {
	buf := strings.Builder{}
	buf.Grow(128)

	if len(opts.Label) > 0 {
		buf.WriteString(opts.Label)
		buf.WriteByte(',')
	}
	fmt.Fprintf(&buf, "v%d,e%d,", entry.VertexCount, entry.EdgeCount)
	writeCode(&buf, entry.Code, opts)
	if opts.Steps {
		fmt.Fprintf(&buf, ",steps=%d", len(entry.Steps))
		for _, step := range entry.Steps {
			buf.WriteByte(',')
			writeCode(&buf, step, opts)
		}
	}
	buf.WriteByte('\n')
	out.Write([]byte(buf.String()))
}

func writeCode(buf *strings.Builder, code []byte, opts PrintOpts) {
	if opts.FormatCode != nil {
		buf.WriteString(opts.FormatCode(code))
	} else {
		buf.WriteString(hex.EncodeToString(code))
	}
}

// Print writes each entry to out then passes it along to the returned stream.
func (stream *EntryStream) Print(
	out io.Writer,
	opts PrintOpts) *EntryStream {

	next := NewEntryStream()

	go func() {
		for entry := range stream.Outlet {
			WriteEntry(out, entry, opts)
			next.Outlet <- entry
		}
		next.Close()
	}()

	return next
}

// SelectFromCatalog streams every entry of cat that sel selects.
func SelectFromCatalog(cat Catalog, sel PatternSelector) *EntryStream {
	next := NewEntryStream()

	onHit := make(chan *CatalogEntry, 4)

	go func() {
		cat.Select(sel, onHit)
		close(onHit)
	}()

	go func() {
		for entry := range onHit {
			if sel.Selects(entry) {
				next.Outlet <- entry
			}
		}
		next.Close()
	}()

	return next
}
