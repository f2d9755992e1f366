package pypattern

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/2x3systems/gopattern/gopattern"
	"github.com/2x3systems/gopattern/libpattern"
	"github.com/2x3systems/gopattern/libpattern/catalog"
	pattern_expr "github.com/2x3systems/gopattern/libpattern/pattern-expr"
	"github.com/go-python/gpython/py"
)

var (
	LIB_VERSION = "v1.2023.1"
)

var (
	pySchemaType      = py.NewType("Schema", "label adjacency index of a graph schema")
	pyCatalogType     = py.NewType("Catalog", "catalog of canonically encoded patterns")
	pyEntryStreamType = py.NewType("EntryStream", "gopattern.EntryStream")
	pyWorkspaceType   = py.NewType("Workspace", "collects active session resources and catalogs")
)

const (
	kWorkspaceAttr = "_Workspace"
)

type Workspace struct {
	CatalogCtx gopattern.CatalogContext
}

func (ws *Workspace) Close() {
	ws.CatalogCtx.Close()
	<-ws.CatalogCtx.Done()
}

func (ws *Workspace) Type() *py.Type {
	return pyWorkspaceType
}

func getWorkspace(module py.Object) *Workspace {
	wsObj, _ := py.GetAttrString(module, kWorkspaceAttr)
	if wsObj == nil {
		ws := &Workspace{
			CatalogCtx: gopattern.NewCatalogContext(),
		}
		wsObj = ws
		py.SetAttrString(module, kWorkspaceAttr, wsObj)
	}
	return wsObj.(*Workspace)
}

func py_GetWorkspace(module py.Object, args py.Tuple) (py.Object, error) {
	return getWorkspace(module), nil
}

type pySchema struct {
	*libpattern.PatternMeta
	ws *Workspace
}

func (meta pySchema) Type() *py.Type {
	return pySchemaType
}

func (meta pySchema) M__str__() (py.Object, error) {
	return py.String(fmt.Sprintf("Schema(vertices=%v, edges=%v)", meta.VertexLabelNames(), meta.EdgeLabelNames())), nil
}

func (meta pySchema) M__repr__() (py.Object, error) {
	return meta.M__str__()
}

// Arg 1 (str): schema pathname (YAML or JSON)
func py_LoadSchema(module py.Object, args py.Tuple) (py.Object, error) {
	var pathname string
	err := py.LoadTuple(args, []interface{}{&pathname})
	if err != nil {
		return nil, err
	}
	if _, err = os.Stat(pathname); os.IsNotExist(err) {
		return nil, py.ExceptionNewf(py.FileNotFoundError, "%v", err)
	}

	meta, err := libpattern.LoadPatternMeta(pathname)
	if err != nil {
		return nil, py.ExceptionNewf(py.ValueError, "%v", err)
	}
	return py.Object(pySchema{meta, getWorkspace(module)}), nil
}

func buildPattern(meta pySchema, args py.Tuple) (*libpattern.Pattern, error) {
	var expr string
	err := py.LoadTuple(args, []interface{}{&expr})
	if err != nil {
		return nil, err
	}
	p, err := pattern_expr.BuildString(expr, meta.PatternMeta)
	if err != nil {
		return nil, py.ExceptionNewf(py.ValueError, "%v", err)
	}
	p.RankRanking()
	return p, nil
}

// Arg 1 (str): pattern expression
//
// Returns the hex canonical code of the pattern, sized to the pattern itself.
func py_Schema_Encode(self py.Object, args py.Tuple) (py.Object, error) {
	meta := self.(pySchema)
	p, err := buildPattern(meta, args)
	if err != nil {
		return nil, err
	}
	enc := libpattern.NewEncoderForPattern(p, 0)
	return py.String(hex.EncodeToString(enc.EncodePattern(p))), nil
}

// Arg 1 (str): pattern expression
//
// Returns a tuple containing a description of each extend step of the pattern.
func py_Schema_Steps(self py.Object, args py.Tuple) (py.Object, error) {
	meta := self.(pySchema)
	p, err := buildPattern(meta, args)
	if err != nil {
		return nil, err
	}
	steps := libpattern.GetExtendSteps(p, meta.PatternMeta)
	out := make(py.Tuple, len(steps))
	for i, step := range steps {
		out[i] = py.String(step.String())
	}
	return out, nil
}

// Arg 1 (str): pattern expression
//
// Returns the pattern's edges, one per line, using the schema's label names.
func py_Schema_Describe(self py.Object, args py.Tuple) (py.Object, error) {
	meta := self.(pySchema)
	p, err := buildPattern(meta, args)
	if err != nil {
		return nil, err
	}
	return py.String(describePattern(meta.PatternMeta, p)), nil
}

// Arg 1 (str): catalog pathname ("" for in-memory)
// Arg 2 (int): max vertex count
func py_Schema_OpenCatalog(self py.Object, args py.Tuple) (py.Object, error) {
	meta := self.(pySchema)

	var pathname string
	var maxVertices int32
	err := py.LoadTuple(args, []interface{}{&pathname, &maxVertices})
	if err != nil {
		return nil, err
	}

	opts := gopattern.CatalogOpts{
		DbPathName:  pathname,
		MaxVertices: maxVertices,
	}
	cat, err := catalog.OpenCatalog(meta.ws.CatalogCtx, meta.PatternMeta, opts)
	if err != nil {
		return nil, py.ExceptionNewf(py.RuntimeError, "%v", err)
	}
	return py.Object(pyCatalog{cat}), nil
}

type pyCatalog struct {
	*catalog.Catalog
}

func (cat pyCatalog) Type() *py.Type {
	return pyCatalogType
}

func py_Catalog_Close(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)
	if cat.Catalog != nil {
		cat.Close()
	}
	return py.None, nil
}

// Arg 1 (int, optional): max number of patterns to add (0 for no limit)
//
// Returns the number of patterns added.
func py_Catalog_Grow(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)
	if cat.IsReadOnly() {
		return nil, py.ExceptionNewf(py.PermissionError, "%v", gopattern.ErrCatalogReadOnly)
	}

	var maxPatterns int32
	if len(args) > 0 {
		err := py.LoadTuple(args, []interface{}{&maxPatterns})
		if err != nil {
			return nil, err
		}
	}

	stats, err := catalog.Grow(context.Background(), cat.Catalog, nil, catalog.GrowOpts{
		MaxPatterns: int(maxPatterns),
	})
	if err != nil {
		return nil, py.ExceptionNewf(py.RuntimeError, "%v", err)
	}
	return py.Int(stats.Added), nil
}

func py_Catalog_NumPatterns(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)

	Nv, err := py.GetInt(args[0])
	if err != nil {
		return nil, err
	}
	return py.Int(cat.NumPatterns(int32(Nv))), nil
}

// Arg 1 (int, optional): min vertex count
// Arg 2 (int, optional): max vertex count
func py_Catalog_Select(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)

	sel := gopattern.DefaultPatternSelector
	if len(args) > 0 {
		err := py.LoadTuple(args, []interface{}{&sel.MinVertices, &sel.MaxVertices})
		if err != nil {
			return nil, err
		}
	}
	next := gopattern.SelectFromCatalog(cat, sel)
	return wrapEntryStream(next), nil
}

type entryStream struct {
	*gopattern.EntryStream
}

func (stream entryStream) Type() *py.Type {
	return pyEntryStreamType
}

func wrapEntryStream(stream *gopattern.EntryStream) py.Object {
	return py.Object(entryStream{stream})
}

func py_EntryStream_Go(self py.Object, args py.Tuple) (py.Object, error) {
	stream := self.(entryStream)
	count := stream.PullAll()
	return py.Int(count), nil
}

func py_EntryStream_Print(self py.Object, args py.Tuple, kwargs py.StringDict) (py.Object, error) {
	stream := self.(entryStream)

	opts := gopattern.DefaultPrintOpts
	py.LoadTuple(args, []interface{}{&opts.Label})
	if opts.Label == "" {
		py.LoadAttr(kwargs, "label", &opts.Label)
	}
	py.LoadAttr(kwargs, "steps", &opts.Steps)

	next := stream.Print(os.Stdout, opts)
	return wrapEntryStream(next), nil
}

func init() {

	/////////////////////////////////
	// Schema
	{
		pySchemaType.Dict["Encode"] = py.MustNewMethod("Encode", py_Schema_Encode, 0, "returns the hex canonical code of the given pattern expression")
		pySchemaType.Dict["Steps"] = py.MustNewMethod("Steps", py_Schema_Steps, 0, "lists the extend steps of the given pattern expression")
		pySchemaType.Dict["Describe"] = py.MustNewMethod("Describe", py_Schema_Describe, 0, "")
		pySchemaType.Dict["OpenCatalog"] = py.MustNewMethod("OpenCatalog", py_Schema_OpenCatalog, 0, "")
	}

	/////////////////////////////////
	// Catalog
	{
		pyCatalogType.Dict["Grow"] = py.MustNewMethod("Grow", py_Catalog_Grow, 0, "adds every pattern the schema permits up to the catalog's vertex bound")
		pyCatalogType.Dict["NumPatterns"] = py.MustNewMethod("NumPatterns", py_Catalog_NumPatterns, 0, "")
		pyCatalogType.Dict["Select"] = py.MustNewMethod("Select", py_Catalog_Select, 0, "")
		pyCatalogType.Dict["Close"] = py.MustNewMethod("Close", py_Catalog_Close, 0, "")
	}

	/////////////////////////////////
	// EntryStream
	{
		pyEntryStreamType.Dict["Go"] = py.MustNewMethod("Go", py_EntryStream_Go, 0, "counts the number of entries output from the EntryStream")
		pyEntryStreamType.Dict["Print"] = py.MustNewMethod("Print", py_EntryStream_Print, 0, "prints each entry from the EntryStream")
	}

	{
		methods := []*py.Method{
			py.MustNewMethod("LoadSchema", py_LoadSchema, 0, "loads a YAML or JSON schema document"),
			py.MustNewMethod("GetWorkspace", py_GetWorkspace, 0, ""),
		}

		globals := py.StringDict{
			"LIB_VERSION":  py.String(LIB_VERSION),
			"PY_VERSION":   py.String("v3.4.0"),
			"MAX_VERTICES": py.Int(gopattern.DefaultMaxVertices),
		}

		py.RegisterModule(&py.ModuleImpl{
			Info: py.ModuleInfo{
				Name: "_pypattern",
				Doc:  "graph pattern catalogue gpython module",
			},
			Methods: methods,
			Globals: globals,
			OnContextClosed: func(m *py.Module) {
				wsObj, _ := py.GetAttrString(m, kWorkspaceAttr)
				if wsObj != nil {
					wsObj.(*Workspace).Close()
				}
			},
		})
	}
}

// describePattern writes one line per edge in edge id order, naming labels by the schema.
func describePattern(meta *libpattern.PatternMeta, p *libpattern.Pattern) string {
	var b strings.Builder
	for i, id := range p.EdgeIDs() {
		e := p.Edge(id)
		if i > 0 {
			b.WriteByte('\n')
		}
		start, _ := meta.VertexLabelName(e.StartLabel)
		end, _ := meta.VertexLabelName(e.EndLabel)
		label, _ := meta.EdgeLabelName(e.Label)
		fmt.Fprintf(&b, "(v%d:%s)-[:%s]->(v%d:%s)", e.StartID, start, label, e.EndID, end)
	}
	return b.String()
}
