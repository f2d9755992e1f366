package catalog

import (
	"context"

	"github.com/2x3systems/gopattern/gopattern"
	"github.com/2x3systems/gopattern/libpattern"
	"github.com/plan-systems/klog"
)

// GrowOpts bounds a call to Grow.
type GrowOpts struct {
	MaxVertices int32 // largest pattern grown; 0 or above the catalog's bound means the catalog's bound
	MaxPatterns int   // stop after adding this many new entries; 0 for no limit
}

// GrowStats reports what a call to Grow did.
type GrowStats struct {
	Levels   int // number of frontier levels expanded
	Extended int // number of successful pattern extensions
	Added    int // number of entries new to the catalog
	Dupes    int // number of extensions whose canonical form was already seen during this call
}

// Grow adds to cat every pattern reachable from the given seeds by repeated extension,
// up to opts.MaxVertices vertices, breadth-first.
//
// If no seeds are given, each vertex label of the catalog's schema seeds a single vertex pattern.
// Grow returns ctx.Err() if ctx is cancelled before the frontier empties.
func Grow(ctx context.Context, cat *Catalog, seeds []*libpattern.Pattern, opts GrowOpts) (GrowStats, error) {
	var stats GrowStats

	maxVertices := opts.MaxVertices
	if maxVertices <= 0 || maxVertices > cat.MaxVertices() {
		maxVertices = cat.MaxVertices()
	}

	meta := cat.Meta()
	if len(seeds) == 0 {
		for _, label := range meta.VertexLabelIDs() {
			seeds = append(seeds, libpattern.NewPatternFromVertex(0, label))
		}
	}

	seen := libpattern.NewCanonicSet()
	defer seen.Close()

	var keyBuf [256]byte
	frontier := make([]*libpattern.Pattern, 0, len(seeds))
	for _, seed := range seeds {
		if seed == nil {
			return stats, gopattern.ErrNilPattern
		}
		p := seed.Clone()
		p.RankRanking()
		if p.EdgeCount() > 0 {
			code, err := cat.encodeRanked(p)
			if err != nil {
				return stats, err
			}
			added, err := cat.tryAddRanked(p, code)
			if err != nil {
				return stats, err
			}
			if added {
				stats.Added++
			}
			seen.TryAdd(formEntryKey(keyBuf[:0], p.VertexCount(), p.EdgeCount(), code))
		}
		frontier = append(frontier, p)
	}

	for len(frontier) > 0 {
		var next []*libpattern.Pattern
		for _, p := range frontier {
			if int32(p.VertexCount()) >= maxVertices {
				continue
			}
			for _, step := range libpattern.GetExtendSteps(p, meta) {
				if err := ctx.Err(); err != nil {
					return stats, err
				}

				q, ok := p.Extend(step)
				if !ok {
					continue
				}
				stats.Extended++
				q.RankRanking()

				code, err := cat.encodeRanked(q)
				if err != nil {
					return stats, err
				}
				if !seen.TryAdd(formEntryKey(keyBuf[:0], q.VertexCount(), q.EdgeCount(), code)) {
					stats.Dupes++
					continue
				}

				if added, err := cat.tryAddRanked(q, code); err != nil {
					return stats, err
				} else if added {
					stats.Added++
					if opts.MaxPatterns > 0 && stats.Added >= opts.MaxPatterns {
						stats.Levels++
						return stats, nil
					}
				}
				next = append(next, q)
			}
		}

		stats.Levels++
		klog.Infof("grow level %d: %d patterns in frontier, %d added so far", stats.Levels, len(next), stats.Added)
		frontier = next
	}
	return stats, nil
}
