package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"

	"github.com/2x3systems/gopattern/gopattern"
	"github.com/2x3systems/gopattern/libpattern"
	"github.com/2x3systems/gopattern/libpattern/catalog"
	pattern_expr "github.com/2x3systems/gopattern/libpattern/pattern-expr"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
	"github.com/spf13/cobra"
)

var (
	gMaxPatterns int
	gPrintSteps  bool
	gMinSelect   int32
	gMaxSelect   int32
)

func loadSchema() (*libpattern.PatternMeta, error) {
	if len(gSchemaPath) == 0 {
		return nil, errors.Wrap(gopattern.ErrBadSchema, "--schema is required")
	}
	return libpattern.LoadPatternMeta(gSchemaPath)
}

func schemaEncoder(meta *libpattern.PatternMeta) *libpattern.Encoder {
	maxVertices := int(gMaxVertices)
	if maxVertices <= 0 {
		maxVertices = gopattern.DefaultMaxVertices
	}
	return libpattern.NewEncoderForSchema(meta, maxVertices)
}

func formatCode(code []byte) string {
	if gASCII {
		return string(code)
	}
	return hex.EncodeToString(code)
}

func buildExpr(meta *libpattern.PatternMeta, expr string, enc *libpattern.Encoder) (*libpattern.Pattern, error) {
	p, err := pattern_expr.BuildString(expr, meta)
	if err != nil {
		return nil, err
	}
	if limit := 1 << uint(enc.VertexRankBits); p.VertexCount() > limit {
		return nil, errors.Wrapf(gopattern.ErrBadCatalogParam, "pattern has %d vertices, --max-vertices allows %d", p.VertexCount(), limit)
	}
	p.RankRanking()
	return p, nil
}

var encodeCmd = &cobra.Command{
	Use:   "encode <expr>",
	Short: "Print the canonical code of a pattern expression",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		meta, err := loadSchema()
		if err != nil {
			return err
		}
		enc := schemaEncoder(meta)
		p, err := buildExpr(meta, args[0], enc)
		if err != nil {
			return err
		}
		klog.V(1).Infof("%v", enc)
		if gASCII {
			fmt.Println(enc.EncodePatternASCII(p))
		} else {
			fmt.Println(hex.EncodeToString(enc.EncodePattern(p)))
		}
		return nil
	},
}

// decodePattern turns a decoder panic on malformed input into an error.
func decodePattern(enc *libpattern.Encoder, code string) (p *libpattern.Pattern, err error) {
	defer func() {
		if r := recover(); r != nil {
			if rerr, ok := r.(error); ok {
				err = rerr
			} else {
				err = errors.Wrapf(gopattern.ErrBadEncoding, "%v", r)
			}
		}
	}()

	if gASCII {
		return enc.DecodePatternASCII(code)
	}
	raw, err := hex.DecodeString(code)
	if err != nil {
		return nil, errors.Wrap(gopattern.ErrBadEncoding, err.Error())
	}
	return enc.DecodePattern(raw)
}

var decodeCmd = &cobra.Command{
	Use:   "decode <code>",
	Short: "Print the edges of the pattern a canonical code holds",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		meta, err := loadSchema()
		if err != nil {
			return err
		}
		p, err := decodePattern(schemaEncoder(meta), args[0])
		if err != nil {
			return err
		}
		for _, id := range p.EdgeIDs() {
			e := p.Edge(id)
			start, _ := meta.VertexLabelName(e.StartLabel)
			end, _ := meta.VertexLabelName(e.EndLabel)
			label, _ := meta.EdgeLabelName(e.Label)
			fmt.Printf("(v%d:%s r%d)-[:%s]->(v%d:%s r%d)\n",
				e.StartID, start, p.Vertex(e.StartID).Rank(), label,
				e.EndID, end, p.Vertex(e.EndID).Rank())
		}
		return nil
	},
}

var stepsCmd = &cobra.Command{
	Use:   "steps <expr>",
	Short: "List every extend step of a pattern expression and its code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		meta, err := loadSchema()
		if err != nil {
			return err
		}
		enc := schemaEncoder(meta)
		p, err := buildExpr(meta, args[0], enc)
		if err != nil {
			return err
		}
		for i, step := range libpattern.GetExtendSteps(p, meta) {
			fmt.Printf("%3d  %s  %v\n", i, formatCode(enc.EncodeExtendStep(step)), step)
		}
		return nil
	},
}

func openCatalog(ctx gopattern.CatalogContext, readOnly bool) (*catalog.Catalog, error) {
	meta, err := loadSchema()
	if err != nil {
		return nil, err
	}
	return catalog.OpenCatalog(ctx, meta, gopattern.CatalogOpts{
		DbPathName:  gCatalogPath,
		ReadOnly:    readOnly,
		MaxVertices: gMaxVertices,
	})
}

var growCmd = &cobra.Command{
	Use:   "grow",
	Short: "Fill a catalog with every pattern the schema permits",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		catCtx := gopattern.NewCatalogContext()
		defer func() {
			catCtx.Close()
			<-catCtx.Done()
		}()

		cat, err := openCatalog(catCtx, false)
		if err != nil {
			return err
		}
		defer cat.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		stats, err := catalog.Grow(ctx, cat, nil, catalog.GrowOpts{
			MaxPatterns: gMaxPatterns,
		})
		klog.Infof("grow: %d levels, %d extensions, %d added, %d dupes", stats.Levels, stats.Extended, stats.Added, stats.Dupes)
		for nv := int32(1); nv <= cat.MaxVertices(); nv++ {
			fmt.Printf("v%d: %d patterns\n", nv, cat.NumPatterns(nv))
		}
		return err
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the entries of a catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(gCatalogPath) == 0 {
			return errors.Wrap(gopattern.ErrBadCatalogParam, "--catalog is required")
		}
		catCtx := gopattern.NewCatalogContext()
		defer func() {
			catCtx.Close()
			<-catCtx.Done()
		}()

		cat, err := openCatalog(catCtx, true)
		if err != nil {
			return err
		}
		defer cat.Close()

		sel := gopattern.DefaultPatternSelector
		if gMinSelect > 0 {
			sel.MinVertices = gMinSelect
		}
		if gMaxSelect > 0 {
			sel.MaxVertices = gMaxSelect
		}
		opts := gopattern.DefaultPrintOpts
		opts.Steps = gPrintSteps
		if gASCII {
			// catalog codes are stored in byte units
			opts.FormatCode = func(code []byte) string {
				return string(libpattern.RepackCode(code, libpattern.ByteUnitBits, libpattern.ASCIIUnitBits))
			}
		}

		count := gopattern.SelectFromCatalog(cat, sel).Print(os.Stdout, opts).PullAll()
		klog.Infof("listed %d entries", count)
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run [script.py]",
	Short: "Run a gpython script (or the REPL) with the _pypattern module available",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pathname := ""
		if len(args) > 0 {
			pathname = args[0]
		}
		return go_gpython(pathname)
	},
}

func init() {
	growCmd.Flags().IntVar(&gMaxPatterns, "max-patterns", 0, "stop after adding this many patterns (0 for no limit)")
	listCmd.Flags().BoolVar(&gPrintSteps, "steps", false, "also print the extend step codes of each entry")
	listCmd.Flags().Int32Var(&gMinSelect, "min", 0, "smallest vertex count listed")
	listCmd.Flags().Int32Var(&gMaxSelect, "max", 0, "largest vertex count listed")
}
