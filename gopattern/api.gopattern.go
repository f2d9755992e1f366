package gopattern

const (

	// DirectionBits is the number of bits an encoded Direction occupies.
	DirectionBits = 2

	// MaxFieldBits is the widest field the canonical codec accepts.
	MaxFieldBits = 31

	// DefaultMaxVertices is the vertex count a catalogue grows to when none is given.
	DefaultMaxVertices = 4
)

// LabelID identifies a vertex or edge label of a graph schema.
type LabelID int32

// VertexID identifies a vertex within a single pattern.
type VertexID int32

// EdgeID identifies an edge within a single pattern.
type EdgeID int32

// Rank is the canonical rank of a vertex among the vertices sharing its label.
type Rank int32

// Direction is the direction of an edge as seen from one of its endpoints.
type Direction byte

const (
	Out Direction = 0
	In  Direction = 1
)

// Reverse returns the direction as seen from the other endpoint.
func (dir Direction) Reverse() Direction {
	if dir == Out {
		return In
	}
	return Out
}

func (dir Direction) String() string {
	if dir == Out {
		return "out"
	}
	return "in"
}

// LabelEdge is an edge label and the direction it runs from the first of two vertex labels.
type LabelEdge struct {
	Label LabelID
	Dir   Direction
}

// Schema is the read-only label adjacency a pattern may grow within.
type Schema interface {

	// VertexLabelIDs returns every vertex label id known to this schema in ascending order.
	VertexLabelIDs() []LabelID

	// EdgesBetween returns every (edge label, direction) connecting label A to label B.
	// Out means the edge runs A -> B and In means B -> A.
	EdgesBetween(A, B LabelID) []LabelEdge
}

// CatalogContext is a container for open / active Catalog instances.
type CatalogContext interface {

	// Attaches the given Catalog to this context.
	AttachCatalog(cat Catalog)

	// Detaches the given Catalog from this context.
	DetachCatalog(cat Catalog)

	// Closes all open catalogs then closes.
	Close()

	// Signals when Close() completed and all open Catalogs have been closed
	Done() <-chan struct{}
}

// CatalogOpts specifies params for opening a pattern Catalog
type CatalogOpts struct {
	DbPathName  string // omit for in-memory db
	ReadOnly    bool   // open in read-only mode
	MaxVertices int32  // largest pattern (in vertices) the catalog's encoder is sized for
}

// CatalogEntry is one canonically encoded pattern and the codes of the extend steps that apply to it.
type CatalogEntry struct {
	Code        []byte   // canonical pattern code
	VertexCount int32    // number of vertices in the pattern
	EdgeCount   int32    // number of edges in the pattern
	Steps       [][]byte // canonical codes of every extend step enumerated for the pattern
}

// OnEntryHit is a callback channel used to return entries meeting a set of selection criteria.
type OnEntryHit chan<- *CatalogEntry

// PatternSelector bounds which catalog entries are selected.
type PatternSelector struct {
	MinVertices int32 // lower vertex count bound (inclusive)
	MaxVertices int32 // upper vertex count bound (inclusive)
	MinEdges    int32 // lower edge count bound (inclusive)
	MaxEdges    int32 // upper edge count bound (inclusive), 0 for unbounded
}

// DefaultPatternSelector selects every entry.
var DefaultPatternSelector = PatternSelector{
	MinVertices: 1,
	MaxVertices: 255,
}

// Catalog wraps a database of canonically encoded patterns.
type Catalog interface {

	// Returns true if this catalog was opened for read-only access.
	IsReadOnly() bool

	// NumPatterns returns the number of patterns in this catalog having the given vertex count.
	NumPatterns(forVtxCount int32) int64

	// Contains returns true if the given canonical code has been added.
	Contains(code []byte) bool

	// Lookup returns the entry stored for the given canonical code.
	Lookup(code []byte) (*CatalogEntry, error)

	// Select sends each entry meeting the selection criteria to onHit, in code order.
	Select(sel PatternSelector, onHit OnEntryHit)

	Close() error
}

// PrintOpts specifies what is printed for each catalog entry
type PrintOpts struct {
	Label      string                   // Prefix label
	Steps      bool                     // If set, the extend step codes are printed
	FormatCode func(code []byte) string // Formats each code; nil prints hex
}

// DefaultPrintOpts{}
var DefaultPrintOpts = PrintOpts{
	Steps: false,
}
