package libpattern

import (
	"os"

	"github.com/2x3systems/gopattern/gopattern"
	"github.com/emirpasic/gods/maps/treemap"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// SchemaLabel is a label id and name as they appear in a schema document.
type SchemaLabel struct {
	ID   int32  `yaml:"id"`
	Name string `yaml:"name"`
}

type SchemaEntity struct {
	Label SchemaLabel `yaml:"label"`
}

type SchemaEntityPair struct {
	Src SchemaLabel `yaml:"src"`
	Dst SchemaLabel `yaml:"dst"`
}

type SchemaRelation struct {
	Label       SchemaLabel        `yaml:"label"`
	EntityPairs []SchemaEntityPair `yaml:"entity_pairs"`
}

// SchemaDef is a graph schema document: vertex labels (entities) and edge labels (relations)
// with the vertex label pairs each relation connects.
type SchemaDef struct {
	Entities  []SchemaEntity   `yaml:"entities"`
	Relations []SchemaRelation `yaml:"relations"`
}

// LabelPair is an ordered pair of vertex labels.
type LabelPair struct {
	Src gopattern.LabelID
	Dst gopattern.LabelID
}

func labelPairComparator(a, b interface{}) int {
	A := a.(LabelPair)
	B := b.(LabelPair)
	if d := cmpInt32(int32(A.Src), int32(B.Src)); d != 0 {
		return d
	}
	return cmpInt32(int32(A.Dst), int32(B.Dst))
}

// PatternMeta is the read-only label adjacency index of a graph schema.
//
// Once built it is never modified, so one instance may be shared freely.
type PatternMeta struct {
	vertexIDs           map[string]gopattern.LabelID
	edgeIDs             map[string]gopattern.LabelID
	vertexNames         *treemap.Map // LabelID => string
	edgeNames           *treemap.Map // LabelID => string
	edgeConnectVertices map[gopattern.LabelID][]LabelPair
	vertexVertexEdges   *treemap.Map // LabelPair => []gopattern.LabelEdge
}

var _ gopattern.Schema = (*PatternMeta)(nil)

// LoadPatternMeta reads a schema document (YAML or JSON) from the given file.
func LoadPatternMeta(pathname string) (*PatternMeta, error) {
	buf, err := os.ReadFile(pathname)
	if err != nil {
		return nil, err
	}
	meta, err := ParsePatternMeta(buf)
	if err != nil {
		return nil, errors.Wrapf(err, "loading schema %q", pathname)
	}
	return meta, nil
}

// ParsePatternMeta parses a schema document (YAML or JSON).
func ParsePatternMeta(doc []byte) (*PatternMeta, error) {
	var def SchemaDef
	if err := yaml.Unmarshal(doc, &def); err != nil {
		return nil, errors.Wrap(gopattern.ErrBadSchema, err.Error())
	}
	return NewPatternMeta(def)
}

// NewPatternMeta indexes the given schema.
func NewPatternMeta(def SchemaDef) (*PatternMeta, error) {
	meta := &PatternMeta{
		vertexIDs:           make(map[string]gopattern.LabelID),
		edgeIDs:             make(map[string]gopattern.LabelID),
		vertexNames:         treemap.NewWith(labelComparator),
		edgeNames:           treemap.NewWith(labelComparator),
		edgeConnectVertices: make(map[gopattern.LabelID][]LabelPair),
		vertexVertexEdges:   treemap.NewWith(labelPairComparator),
	}

	for _, ent := range def.Entities {
		if err := addLabel(meta.vertexIDs, meta.vertexNames, ent.Label); err != nil {
			return nil, errors.Wrap(err, "entity")
		}
	}

	for _, rel := range def.Relations {
		if err := addLabel(meta.edgeIDs, meta.edgeNames, rel.Label); err != nil {
			return nil, errors.Wrap(err, "relation")
		}
		edge := gopattern.LabelID(rel.Label.ID)
		for _, pair := range rel.EntityPairs {
			src, err := meta.resolveEntity(pair.Src)
			if err != nil {
				return nil, errors.Wrapf(err, "relation %q", rel.Label.Name)
			}
			dst, err := meta.resolveEntity(pair.Dst)
			if err != nil {
				return nil, errors.Wrapf(err, "relation %q", rel.Label.Name)
			}
			meta.connect(edge, src, dst)
		}
	}
	return meta, nil
}

func addLabel(ids map[string]gopattern.LabelID, names *treemap.Map, label SchemaLabel) error {
	if label.ID < 0 || len(label.Name) == 0 {
		return errors.Wrapf(gopattern.ErrBadSchema, "label %q has id %d", label.Name, label.ID)
	}
	id := gopattern.LabelID(label.ID)
	if _, dupe := ids[label.Name]; dupe {
		return errors.Wrapf(gopattern.ErrBadSchema, "duplicate label name %q", label.Name)
	}
	if _, dupe := names.Get(id); dupe {
		return errors.Wrapf(gopattern.ErrBadSchema, "duplicate label id %d", id)
	}
	ids[label.Name] = id
	names.Put(id, label.Name)
	return nil
}

func (meta *PatternMeta) resolveEntity(label SchemaLabel) (gopattern.LabelID, error) {
	id := gopattern.LabelID(label.ID)
	name, found := meta.vertexNames.Get(id)
	if !found {
		return 0, errors.Wrapf(gopattern.ErrBadSchema, "unknown entity id %d", id)
	}
	if len(label.Name) > 0 && name.(string) != label.Name {
		return 0, errors.Wrapf(gopattern.ErrBadSchema, "entity id %d is %q, not %q", id, name, label.Name)
	}
	return id, nil
}

func (meta *PatternMeta) connect(edge, src, dst gopattern.LabelID) {
	pair := LabelPair{src, dst}
	for _, existing := range meta.edgeConnectVertices[edge] {
		if existing == pair {
			return
		}
	}
	meta.edgeConnectVertices[edge] = append(meta.edgeConnectVertices[edge], pair)
	meta.appendLabelEdge(pair, gopattern.LabelEdge{Label: edge, Dir: gopattern.Out})
	meta.appendLabelEdge(LabelPair{dst, src}, gopattern.LabelEdge{Label: edge, Dir: gopattern.In})
}

func (meta *PatternMeta) appendLabelEdge(pair LabelPair, le gopattern.LabelEdge) {
	var list []gopattern.LabelEdge
	if val, found := meta.vertexVertexEdges.Get(pair); found {
		list = val.([]gopattern.LabelEdge)
	}
	meta.vertexVertexEdges.Put(pair, append(list, le))
}

func (meta *PatternMeta) VertexLabelCount() int {
	return len(meta.vertexIDs)
}

func (meta *PatternMeta) EdgeLabelCount() int {
	return len(meta.edgeIDs)
}

// VertexLabelIDs returns all vertex label ids in ascending order.
func (meta *PatternMeta) VertexLabelIDs() []gopattern.LabelID {
	return labelKeys(meta.vertexNames)
}

// EdgeLabelIDs returns all edge label ids in ascending order.
func (meta *PatternMeta) EdgeLabelIDs() []gopattern.LabelID {
	return labelKeys(meta.edgeNames)
}

// VertexLabelNames returns all vertex label names in label id order.
func (meta *PatternMeta) VertexLabelNames() []string {
	return labelNames(meta.vertexNames)
}

// EdgeLabelNames returns all edge label names in label id order.
func (meta *PatternMeta) EdgeLabelNames() []string {
	return labelNames(meta.edgeNames)
}

func labelKeys(names *treemap.Map) []gopattern.LabelID {
	keys := names.Keys()
	ids := make([]gopattern.LabelID, len(keys))
	for i, key := range keys {
		ids[i] = key.(gopattern.LabelID)
	}
	return ids
}

func labelNames(names *treemap.Map) []string {
	vals := names.Values()
	out := make([]string, len(vals))
	for i, val := range vals {
		out[i] = val.(string)
	}
	return out
}

// VertexLabelID returns the id of the named vertex label.
func (meta *PatternMeta) VertexLabelID(name string) (gopattern.LabelID, bool) {
	id, found := meta.vertexIDs[name]
	return id, found
}

// EdgeLabelID returns the id of the named edge label.
func (meta *PatternMeta) EdgeLabelID(name string) (gopattern.LabelID, bool) {
	id, found := meta.edgeIDs[name]
	return id, found
}

func (meta *PatternMeta) VertexLabelName(id gopattern.LabelID) (string, bool) {
	name, found := meta.vertexNames.Get(id)
	if !found {
		return "", false
	}
	return name.(string), true
}

func (meta *PatternMeta) EdgeLabelName(id gopattern.LabelID) (string, bool) {
	name, found := meta.edgeNames.Get(id)
	if !found {
		return "", false
	}
	return name.(string), true
}

// MaxVertexLabelID returns the largest vertex label id (0 for an empty schema).
func (meta *PatternMeta) MaxVertexLabelID() gopattern.LabelID {
	key, _ := meta.vertexNames.Max()
	if key == nil {
		return 0
	}
	return key.(gopattern.LabelID)
}

// MaxEdgeLabelID returns the largest edge label id (0 if the schema has no relations).
func (meta *PatternMeta) MaxEdgeLabelID() gopattern.LabelID {
	key, _ := meta.edgeNames.Max()
	if key == nil {
		return 0
	}
	return key.(gopattern.LabelID)
}

// ConnectVerticesOf returns, in ascending order, every vertex label joined to the given one by some edge label.
func (meta *PatternMeta) ConnectVerticesOf(vlabel gopattern.LabelID) []gopattern.LabelID {
	var labels []gopattern.LabelID
	for _, key := range meta.vertexVertexEdges.Keys() {
		if pair := key.(LabelPair); pair.Src == vlabel {
			labels = append(labels, pair.Dst)
		}
	}
	return labels
}

// ConnectEdgesOf returns every distinct (edge label, direction) incident to the given vertex label,
// ordered by edge label then direction.
func (meta *PatternMeta) ConnectEdgesOf(vlabel gopattern.LabelID) []gopattern.LabelEdge {
	seen := make(map[gopattern.LabelEdge]struct{})
	var edges []gopattern.LabelEdge
	for it := meta.vertexVertexEdges.Iterator(); it.Next(); {
		if it.Key().(LabelPair).Src != vlabel {
			continue
		}
		for _, le := range it.Value().([]gopattern.LabelEdge) {
			if _, dupe := seen[le]; !dupe {
				seen[le] = struct{}{}
				edges = append(edges, le)
			}
		}
	}
	sortStable(edges, func(a, b gopattern.LabelEdge) int {
		if d := cmpInt32(int32(a.Label), int32(b.Label)); d != 0 {
			return d
		}
		return cmpInt(int(a.Dir), int(b.Dir))
	})
	return edges
}

// ConnectVerticesOfEdge returns the (src, dst) vertex label pairs the given edge label connects.
func (meta *PatternMeta) ConnectVerticesOfEdge(elabel gopattern.LabelID) []LabelPair {
	return append([]LabelPair(nil), meta.edgeConnectVertices[elabel]...)
}

// EdgesBetween returns every (edge label, direction) joining vertex label A to vertex label B.
func (meta *PatternMeta) EdgesBetween(A, B gopattern.LabelID) []gopattern.LabelEdge {
	val, found := meta.vertexVertexEdges.Get(LabelPair{A, B})
	if !found {
		return nil
	}
	return append([]gopattern.LabelEdge(nil), val.([]gopattern.LabelEdge)...)
}
