package libpattern

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/2x3systems/gopattern/gopattern"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatternMetaModern(t *testing.T) {
	meta := modernSchema(t)

	assert.Equal(t, 2, meta.VertexLabelCount())
	assert.Equal(t, 2, meta.EdgeLabelCount())
	assert.Equal(t, []string{"person", "software"}, meta.VertexLabelNames())
	assert.Equal(t, []string{"knows", "created"}, meta.EdgeLabelNames())
	assert.Equal(t, []gopattern.LabelID{0, 1}, meta.VertexLabelIDs())
	assert.Equal(t, []gopattern.LabelID{0, 1}, meta.EdgeLabelIDs())
	assert.Equal(t, gopattern.LabelID(1), meta.MaxVertexLabelID())
	assert.Equal(t, gopattern.LabelID(1), meta.MaxEdgeLabelID())

	id, found := meta.VertexLabelID("software")
	assert.True(t, found)
	assert.Equal(t, gopattern.LabelID(lSoftware), id)
	_, found = meta.VertexLabelID("city")
	assert.False(t, found)

	id, found = meta.EdgeLabelID("created")
	assert.True(t, found)
	assert.Equal(t, gopattern.LabelID(lCreated), id)

	name, found := meta.VertexLabelName(lPerson)
	assert.True(t, found)
	assert.Equal(t, "person", name)
	name, found = meta.EdgeLabelName(lKnows)
	assert.True(t, found)
	assert.Equal(t, "knows", name)
	_, found = meta.EdgeLabelName(9)
	assert.False(t, found)

	assert.Len(t, meta.ConnectEdgesOf(lPerson), 3)
	assert.Len(t, meta.ConnectEdgesOf(lSoftware), 1)
	assert.Equal(t, []gopattern.LabelEdge{
		{Label: lKnows, Dir: gopattern.Out},
		{Label: lKnows, Dir: gopattern.In},
		{Label: lCreated, Dir: gopattern.Out},
	}, meta.ConnectEdgesOf(lPerson))

	assert.Equal(t, []gopattern.LabelID{lPerson, lSoftware}, meta.ConnectVerticesOf(lPerson))
	assert.Equal(t, []gopattern.LabelID{lPerson}, meta.ConnectVerticesOf(lSoftware))

	assert.Len(t, meta.EdgesBetween(lPerson, lPerson), 2)
	assert.Equal(t, []gopattern.LabelEdge{{Label: lCreated, Dir: gopattern.Out}}, meta.EdgesBetween(lPerson, lSoftware))
	assert.Equal(t, []gopattern.LabelEdge{{Label: lCreated, Dir: gopattern.In}}, meta.EdgesBetween(lSoftware, lPerson))
	assert.Empty(t, meta.EdgesBetween(lSoftware, lSoftware))

	assert.Equal(t, []LabelPair{{lPerson, lSoftware}}, meta.ConnectVerticesOfEdge(lCreated))
	assert.Empty(t, meta.ConnectVerticesOfEdge(7))
}

func TestPatternMetaCopies(t *testing.T) {
	meta := modernSchema(t)
	edges := meta.EdgesBetween(lPerson, lPerson)
	edges[0].Label = 9
	assert.Equal(t, gopattern.LabelID(lKnows), meta.EdgesBetween(lPerson, lPerson)[0].Label)
}

func TestPatternMetaJSON(t *testing.T) {
	doc := `{
  "entities": [
    {"label": {"id": 0, "name": "person"}},
    {"label": {"id": 1, "name": "software"}}
  ],
  "relations": [
    {"label": {"id": 0, "name": "knows"},
     "entity_pairs": [{"src": {"id": 0, "name": "person"}, "dst": {"id": 0, "name": "person"}}]},
    {"label": {"id": 1, "name": "created"},
     "entity_pairs": [{"src": {"id": 0, "name": "person"}, "dst": {"id": 1, "name": "software"}}]}
  ]
}`
	meta, err := ParsePatternMeta([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, modernSchema(t).ConnectEdgesOf(lPerson), meta.ConnectEdgesOf(lPerson))
}

func TestLoadPatternMeta(t *testing.T) {
	pathname := filepath.Join(t.TempDir(), "modern.yaml")
	require.NoError(t, os.WriteFile(pathname, []byte(modernSchemaYAML), 0600))

	meta, err := LoadPatternMeta(pathname)
	require.NoError(t, err)
	assert.Equal(t, 2, meta.VertexLabelCount())

	_, err = LoadPatternMeta(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestPatternMetaErrors(t *testing.T) {
	person := SchemaEntity{Label: SchemaLabel{ID: 0, Name: "person"}}

	for _, def := range []SchemaDef{
		{Entities: []SchemaEntity{person, person}},
		{Entities: []SchemaEntity{person, {Label: SchemaLabel{ID: 0, Name: "place"}}}},
		{Entities: []SchemaEntity{{Label: SchemaLabel{ID: -1, Name: "x"}}}},
		{
			Entities: []SchemaEntity{person},
			Relations: []SchemaRelation{{
				Label:       SchemaLabel{ID: 0, Name: "knows"},
				EntityPairs: []SchemaEntityPair{{Src: SchemaLabel{ID: 0}, Dst: SchemaLabel{ID: 4}}},
			}},
		},
		{
			Entities: []SchemaEntity{person},
			Relations: []SchemaRelation{{
				Label:       SchemaLabel{ID: 0, Name: "knows"},
				EntityPairs: []SchemaEntityPair{{Src: SchemaLabel{ID: 0, Name: "software"}, Dst: SchemaLabel{ID: 0}}},
			}},
		},
	} {
		_, err := NewPatternMeta(def)
		assert.True(t, errors.Is(err, gopattern.ErrBadSchema), "%v", err)
	}

	_, err := ParsePatternMeta([]byte("entities: [: oops"))
	assert.True(t, errors.Is(err, gopattern.ErrBadSchema))
}
