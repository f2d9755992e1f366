package catalog

import (
	"bytes"
	"runtime"
	"sync"

	"github.com/2x3systems/gopattern/gopattern"
	"github.com/2x3systems/gopattern/libpattern"
	"github.com/dgraph-io/badger/v3"
	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

/***

Catalog database format:

	gCatalogStateKey => CatalogState

	[Nv]byte, [Ne]byte, CanonicCode      => CatalogEntry
	...

Nv is never zero, so entries always sort after the state key.  Codes of patterns having
vertices with equal label and rank collapse those vertices when decoded, so the vertex count
is kept in the key to tell such a pattern apart from the pattern its code decodes to.

***/

var (
	gCatalogStateKey = []byte{0x00, 0x00, 0x01}
)

const (
	kMajorVers = 2023
	kMinorVers = 1

	kMaxCatalogVertices = 255
)

// Catalog is a db wrapper for a catalog of canonically encoded patterns over one schema.
type Catalog struct {
	ctx        gopattern.CatalogContext
	meta       *libpattern.PatternMeta
	enc        *libpattern.Encoder
	readOnly   bool
	mu         sync.Mutex
	stateDirty bool
	state      gopattern.CatalogState
	db         *badger.DB
}

var _ gopattern.Catalog = (*Catalog)(nil)

// OpenCatalog opens (or creates) the catalog at opts.DbPathName for patterns of the given schema.
//
// A new catalog fixes its encoder widths from the schema and opts.MaxVertices.
// Reopening an existing catalog with a schema or vertex bound needing other widths fails.
func OpenCatalog(ctx gopattern.CatalogContext, meta *libpattern.PatternMeta, opts gopattern.CatalogOpts) (*Catalog, error) {
	if meta == nil {
		return nil, errors.Wrap(gopattern.ErrBadCatalogParam, "no schema given")
	}
	if opts.MaxVertices < 0 || opts.MaxVertices > kMaxCatalogVertices {
		return nil, errors.Wrapf(gopattern.ErrBadCatalogParam, "MaxVertices %d is out of range", opts.MaxVertices)
	}

	cat := &Catalog{
		ctx:      ctx,
		meta:     meta,
		readOnly: opts.ReadOnly,
	}

	dbOpts := badger.DefaultOptions(opts.DbPathName)
	dbOpts.ReadOnly = opts.ReadOnly
	dbOpts.DetectConflicts = false // writes are serialized by cat.mu
	dbOpts.Logger = nil
	dbOpts.MetricsEnabled = false

	// Badger for windows currently does not support read-only mode
	if runtime.GOOS == "windows" {
		dbOpts.ReadOnly = false
	}

	if len(opts.DbPathName) == 0 {
		if opts.ReadOnly {
			return nil, errors.Wrap(gopattern.ErrBadCatalogParam, "DbPathName must be specified for read-only catalog")
		}
		dbOpts.InMemory = true
	}

	var err error
	cat.db, err = badger.Open(dbOpts)
	if err != nil {
		return nil, err
	}

	// Once the db is open, we consider the catalog ctx blocked until the catalog closes
	ctx.AttachCatalog(cat)

	err = cat.loadState()
	if err == badger.ErrKeyNotFound {
		err = nil
		if opts.ReadOnly {
			err = errors.Wrap(gopattern.ErrBadCatalogParam, "read-only db is not a pattern catalog")
		} else {
			cat.initState(opts.MaxVertices)
		}
	}

	if err == nil {
		err = cat.checkState(opts.MaxVertices)
	}

	if err != nil {
		cat.Close()
		return nil, err
	}

	klog.Infof("opened catalog %q (%v, up to %d vertices)", opts.DbPathName, cat.enc, cat.state.MaxVertices)
	return cat, nil
}

func (cat *Catalog) initState(maxVertices int32) {
	if maxVertices == 0 {
		maxVertices = gopattern.DefaultMaxVertices
	}
	enc := libpattern.NewEncoderForSchema(cat.meta, int(maxVertices))

	cat.stateDirty = true
	cat.state = gopattern.CatalogState{
		MajorVers:       kMajorVers,
		MinorVers:       kMinorVers,
		EdgeLabelBits:   uint32(enc.EdgeLabelBits),
		VertexLabelBits: uint32(enc.VertexLabelBits),
		VertexRankBits:  uint32(enc.VertexRankBits),
		MaxVertices:     uint32(maxVertices),
		NumPatterns:     make([]uint64, maxVertices+1),
	}
}

func (cat *Catalog) checkState(maxVertices int32) error {
	state := &cat.state
	if state.MajorVers != kMajorVers || state.MinorVers != kMinorVers {
		return errors.Wrapf(gopattern.ErrIncompatibleVers, "found %d.%d", state.MajorVers, state.MinorVers)
	}
	if maxVertices > 0 && uint32(maxVertices) != state.MaxVertices {
		return errors.Wrapf(gopattern.ErrBadCatalogParam, "catalog was created for %d vertices, not %d", state.MaxVertices, maxVertices)
	}
	if int(state.MaxVertices)+1 != len(state.NumPatterns) {
		return errors.Wrap(gopattern.ErrUnmarshal, "catalog pattern counts are inconsistent")
	}

	want := libpattern.NewEncoderForSchema(cat.meta, int(state.MaxVertices))
	if uint32(want.EdgeLabelBits) != state.EdgeLabelBits ||
		uint32(want.VertexLabelBits) != state.VertexLabelBits ||
		uint32(want.VertexRankBits) != state.VertexRankBits {
		return errors.Wrapf(gopattern.ErrBadCatalogParam, "catalog encoder widths do not match schema (%v)", want)
	}
	cat.enc = want
	return nil
}

func (cat *Catalog) loadState() error {
	err := cat.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gCatalogStateKey)
		if err == nil {
			err = item.Value(func(val []byte) error {
				return cat.state.Unmarshal(val)
			})
		}
		return err
	})
	return err
}

func (cat *Catalog) flushState() {
	if cat.stateDirty && !cat.readOnly {
		err := cat.db.Update(func(txn *badger.Txn) error {
			stateBuf, err := cat.state.Marshal()
			if err != nil {
				return err
			}
			return txn.Set(gCatalogStateKey, stateBuf)
		})
		if err != nil {
			panic(err)
		}
		cat.stateDirty = false
	}
}

func (cat *Catalog) Close() error {
	cat.mu.Lock()
	defer cat.mu.Unlock()

	if cat.db != nil {
		cat.flushState()
		cat.db.Close()
		cat.db = nil
		cat.ctx.DetachCatalog(cat)
		cat.ctx = nil
	}
	return nil
}

func (cat *Catalog) IsReadOnly() bool {
	return cat.readOnly
}

// Meta returns the schema this catalog was opened with.
func (cat *Catalog) Meta() *libpattern.PatternMeta {
	return cat.meta
}

// Encoder returns the encoder that produces this catalog's codes.
func (cat *Catalog) Encoder() *libpattern.Encoder {
	return cat.enc
}

// MaxVertices is the largest pattern (in vertices) this catalog holds.
func (cat *Catalog) MaxVertices() int32 {
	return int32(cat.state.MaxVertices)
}

func (cat *Catalog) NumPatterns(forVtxCount int32) int64 {
	cat.mu.Lock()
	defer cat.mu.Unlock()

	if forVtxCount <= 0 || int(forVtxCount) >= len(cat.state.NumPatterns) {
		return 0
	}
	return int64(cat.state.NumPatterns[forVtxCount])
}

// CanonicalCode ranks a copy of p and returns its code under this catalog's encoder.
//
// p must have at least one edge and only use labels known to the catalog's schema.
func (cat *Catalog) CanonicalCode(p *libpattern.Pattern) ([]byte, error) {
	_, code, err := cat.rankAndEncode(p)
	return code, err
}

func (cat *Catalog) checkPattern(p *libpattern.Pattern) error {
	if p == nil {
		return gopattern.ErrNilPattern
	}
	if p.EdgeCount() == 0 {
		return errors.Wrap(gopattern.ErrEmptyPattern, "edgeless patterns have no canonical code")
	}
	if p.VertexCount() > int(cat.state.MaxVertices) || p.EdgeCount() > 0xFF {
		return errors.Wrapf(gopattern.ErrBadCatalogParam, "pattern has %d vertices and %d edges, catalog holds at most %d vertices",
			p.VertexCount(), p.EdgeCount(), cat.state.MaxVertices)
	}
	for _, label := range p.VertexLabels() {
		if _, known := cat.meta.VertexLabelName(label); !known {
			return errors.Wrapf(gopattern.ErrUnknownLabel, "vertex label %d", label)
		}
	}
	for _, label := range p.EdgeLabels() {
		if _, known := cat.meta.EdgeLabelName(label); !known {
			return errors.Wrapf(gopattern.ErrUnknownLabel, "edge label %d", label)
		}
	}
	return nil
}

func (cat *Catalog) rankAndEncode(p *libpattern.Pattern) (*libpattern.Pattern, []byte, error) {
	if err := cat.checkPattern(p); err != nil {
		return nil, nil, err
	}
	ranked := p.Clone()
	ranked.RankRanking()
	return ranked, cat.enc.EncodePattern(ranked), nil
}

// encodeRanked returns the code of p, which the caller has already ranked.
func (cat *Catalog) encodeRanked(p *libpattern.Pattern) ([]byte, error) {
	if err := cat.checkPattern(p); err != nil {
		return nil, err
	}
	return cat.enc.EncodePattern(p), nil
}

func formEntryKey(key []byte, nv, ne int, code []byte) []byte {
	key = append(key, byte(nv), byte(ne))
	return append(key, code...)
}

// TryAddPattern adds the given pattern if its canonical form is not already present.
//
// The returned code is the pattern's canonical code whether or not it was added.
func (cat *Catalog) TryAddPattern(p *libpattern.Pattern) (code []byte, added bool, err error) {
	if cat.readOnly {
		return nil, false, gopattern.ErrCatalogReadOnly
	}
	ranked, code, err := cat.rankAndEncode(p)
	if err != nil {
		return nil, false, err
	}
	if added, err = cat.tryAddRanked(ranked, code); err != nil {
		return nil, false, err
	}
	return code, added, nil
}

// tryAddRanked stores an entry for ranked under code unless one is already present.
// code must be the encoding of ranked, which must already be ranked.
func (cat *Catalog) tryAddRanked(ranked *libpattern.Pattern, code []byte) (added bool, err error) {
	if cat.readOnly {
		return false, gopattern.ErrCatalogReadOnly
	}

	cat.mu.Lock()
	defer cat.mu.Unlock()

	if cat.db == nil {
		return false, errors.Wrap(gopattern.ErrBadCatalogParam, "catalog is closed")
	}

	nv, ne := ranked.VertexCount(), ranked.EdgeCount()
	key := formEntryKey(nil, nv, ne, code)
	numSteps := 0

	err = cat.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return nil
		}
		if err != badger.ErrKeyNotFound {
			return err
		}

		entry := gopattern.CatalogEntry{
			Code:        code,
			VertexCount: int32(nv),
			EdgeCount:   int32(ne),
		}
		for _, step := range libpattern.GetExtendSteps(ranked, cat.meta) {
			entry.Steps = append(entry.Steps, cat.enc.EncodeExtendStep(step))
		}
		numSteps = len(entry.Steps)

		val, err := entry.Marshal()
		if err != nil {
			return err
		}
		if err = txn.Set(key, val); err != nil {
			return err
		}
		added = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if added {
		cat.state.NumPatterns[nv]++
		cat.stateDirty = true
		klog.V(2).Infof("added %d-vertex pattern %x (%d steps)", nv, code, numSteps)
	}
	return added, nil
}

// Lookup returns the entry stored for the given code.
//
// If more than one entry shares the code, the one having the fewest vertices is returned.
func (cat *Catalog) Lookup(code []byte) (*gopattern.CatalogEntry, error) {
	ne, err := cat.edgeCountOf(code)
	if err != nil {
		return nil, err
	}

	var entry *gopattern.CatalogEntry
	err = cat.db.View(func(txn *badger.Txn) error {
		var keyBuf [256]byte
		for nv := 1; nv <= int(cat.state.MaxVertices); nv++ {
			item, err := txn.Get(formEntryKey(keyBuf[:0], nv, ne, code))
			if err == badger.ErrKeyNotFound {
				continue
			}
			if err != nil {
				return err
			}
			entry = &gopattern.CatalogEntry{}
			return item.Value(entry.Unmarshal)
		}
		return gopattern.ErrEntryNotFound
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// edgeCountOf returns the number of edges a code made by this catalog's encoder holds.
func (cat *Catalog) edgeCountOf(code []byte) (int, error) {
	content := libpattern.EffectiveBits(code, libpattern.ByteUnitBits) - 1
	edgeBits := 2*cat.enc.VertexRankBits + 2*cat.enc.VertexLabelBits + cat.enc.EdgeLabelBits
	if content <= 0 || content%edgeBits != 0 {
		return 0, errors.Wrapf(gopattern.ErrBadEncoding, "code %x is not a pattern code of this catalog", code)
	}
	return content / edgeBits, nil
}

func (cat *Catalog) Contains(code []byte) bool {
	_, err := cat.Lookup(code)
	return err == nil
}

func entryComparator(a, b interface{}) int {
	A := a.(*gopattern.CatalogEntry)
	B := b.(*gopattern.CatalogEntry)
	if d := bytes.Compare(A.Code, B.Code); d != 0 {
		return d
	}
	return int(A.VertexCount) - int(B.VertexCount)
}

// Select sends each entry meeting the selection criteria to onHit, ordered by code.
//
// Select returns once every hit has been sent; onHit is not closed.
func (cat *Catalog) Select(sel gopattern.PatternSelector, onHit gopattern.OnEntryHit) {
	minNv := sel.MinVertices
	if minNv < 1 {
		minNv = 1
	}
	minKey := [1]byte{byte(minNv)}

	hits := redblacktree.NewWith(entryComparator)
	err := cat.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{
			PrefetchValues: true,
			PrefetchSize:   300,
		})
		defer it.Close()

		for it.Seek(minKey[:]); it.Valid(); it.Next() {
			item := it.Item()

			// Stop when the vtx count is over the max
			if int32(item.Key()[0]) > sel.MaxVertices {
				break
			}

			entry := &gopattern.CatalogEntry{}
			if err := item.Value(entry.Unmarshal); err != nil {
				klog.Warningf("skipping unreadable catalog entry %x: %v", item.Key(), err)
				continue
			}
			if sel.Selects(entry) {
				hits.Put(entry, nil)
			}
		}
		return nil
	})
	if err != nil {
		panic(err)
	}

	for it := hits.Iterator(); it.Next(); {
		onHit <- it.Key().(*gopattern.CatalogEntry)
	}
}
