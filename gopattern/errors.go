package gopattern

import "github.com/pkg/errors"

// Errors
var (
	ErrEmptyPattern     = errors.New("pattern has no edges")
	ErrBadVertexID      = errors.New("bad pattern vertex ID")
	ErrDuplicateEdge    = errors.New("duplicate pattern edge ID")
	ErrLabelMismatch    = errors.New("vertex ID given conflicting labels")
	ErrDisconnected     = errors.New("pattern is not connected")
	ErrBadSchema        = errors.New("bad schema definition")
	ErrUnknownLabel     = errors.New("unknown schema label")
	ErrBadEncoding      = errors.New("bad pattern encoding")
	ErrBadCatalogParam  = errors.New("bad catalog param")
	ErrCatalogReadOnly  = errors.New("catalog is read-only")
	ErrUnmarshal        = errors.New("unmarshal failed")
	ErrBadExpr          = errors.New("bad pattern expression")
	ErrNilPattern       = errors.New("nil pattern")
	ErrEntryNotFound    = errors.New("catalog entry not found")
	ErrIncompatibleVers = errors.New("catalog version is incompatible")
)
