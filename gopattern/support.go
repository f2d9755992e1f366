package gopattern

import "sync"

// NewCatalogContext returns a CatalogContext with no catalogs attached.
func NewCatalogContext() CatalogContext {
	return &catalogContext{
		open: make(map[Catalog]struct{}),
		done: make(chan struct{}),
	}
}

type catalogContext struct {
	mu      sync.Mutex
	open    map[Catalog]struct{}
	closing bool
	done    chan struct{}
}

func (ctx *catalogContext) AttachCatalog(cat Catalog) {
	ctx.mu.Lock()
	ctx.open[cat] = struct{}{}
	ctx.mu.Unlock()
}

func (ctx *catalogContext) DetachCatalog(cat Catalog) {
	ctx.mu.Lock()
	delete(ctx.open, cat)
	ctx.signalIfDone()
	ctx.mu.Unlock()
}

// signalIfDone closes ctx.done once closing and no catalogs remain.  ctx.mu must be held.
func (ctx *catalogContext) signalIfDone() {
	if !ctx.closing || len(ctx.open) > 0 {
		return
	}
	select {
	case <-ctx.done:
	default:
		close(ctx.done)
	}
}

func (ctx *catalogContext) Done() <-chan struct{} {
	return ctx.done
}

func (ctx *catalogContext) Close() {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()

	if ctx.closing {
		return
	}
	ctx.closing = true
	for cat := range ctx.open {
		go cat.Close()
	}
	ctx.signalIfDone()
}

// Selects is a convenience function used to see if an entry is selected according to a PatternSelector.
func (sel *PatternSelector) Selects(entry *CatalogEntry) bool {
	if entry.VertexCount < sel.MinVertices || entry.VertexCount > sel.MaxVertices {
		return false
	}
	if entry.EdgeCount < sel.MinEdges {
		return false
	}
	if sel.MaxEdges > 0 && entry.EdgeCount > sel.MaxEdges {
		return false
	}
	return true
}
