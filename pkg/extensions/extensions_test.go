package extensions_test

import (
	"testing"

	"github.com/Mindburn-Labs/spp/pkg/blocks"
	"github.com/Mindburn-Labs/spp/pkg/document"
	"github.com/Mindburn-Labs/spp/pkg/extensions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, s string) *document.Document {
	t.Helper()
	doc, err := document.Parse([]byte(s))
	require.NoError(t, err)
	return doc
}

func TestExtract_KeysAndValuesAtAnyDepth(t *testing.T) {
	doc := parse(t, `{
		"title": "x",
		"sps:time-versioning": {"rev": 2},
		"extensions": [{"id": "sps:trust-weighting"}, {"id": "other:thing"}],
		"deep": {"a": {"b": [[{"sps:ephemeral-content": "sps:trust-weighting"}]]}}
	}`)

	got := extensions.Extract(doc.Value())
	// keys are sorted at every level: deep < extensions < sps:time-versioning < title
	assert.Equal(t, []string{"sps:ephemeral-content", "sps:trust-weighting", "sps:time-versioning"}, got)
}

func TestExtract_StableAcrossCalls(t *testing.T) {
	doc := parse(t, `{"b":"sps:b","a":"sps:a","c":["sps:c","sps:a"]}`)
	first := extensions.Extract(doc.Value())
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, extensions.Extract(doc.Value()))
	}
	assert.Equal(t, []string{"sps:a", "sps:b", "sps:c"}, first)
}

func TestExtract_OrderIgnoresSourceKeyOrder(t *testing.T) {
	for _, src := range []string{`{"sps:z":1,"sps:a":2}`, `{"sps:a":2,"sps:z":1}`} {
		assert.Equal(t, []string{"sps:a", "sps:z"}, extensions.Extract(parse(t, src).Value()), src)
	}
	assert.Equal(t, []string{"sps:z", "sps:a"}, extensions.Extract(parse(t, `{"x":["sps:z","sps:a"]}`).Value()))
}

func TestExtract_DepthCap(t *testing.T) {
	var v any = "sps:deep"
	for i := 0; i < 200; i++ {
		v = []any{v}
	}
	assert.Empty(t, extensions.Extract(v))

	e := extensions.Extractor{Prefix: "sps:", MaxDepth: 500}
	assert.Equal(t, []string{"sps:deep"}, e.Extract(v))
}

func TestExtract_CustomPrefix(t *testing.T) {
	e := extensions.Extractor{Prefix: "spp:"}
	assert.Equal(t, []string{"spp:endorsement-chains"}, e.Extract(map[string]any{"id": "spp:endorsement-chains", "x": "sps:other"}))
}

func TestFromBlocks(t *testing.T) {
	bs := []blocks.Block{{Type: "quote"}, {Type: "sps:block/recipe"}, {Type: "acme:card"}}
	assert.Equal(t, []string{"sps:block/recipe", "acme:card"}, extensions.FromBlocks(bs))
}

func TestMerge(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, extensions.Merge([]string{"a", "b"}, []string{"b", "c", "a"}))
	assert.NotNil(t, extensions.Merge())
}

func TestRegistry_UnknownOnlyWarns(t *testing.T) {
	r := extensions.DefaultRegistry()
	ids := []string{"sps:trust-weighting", "sps:not-real", "acme:card"}

	assert.Equal(t, []string{"sps:not-real"}, r.Unknown(ids))
	assert.Equal(t, []string{"Unknown extension: sps:not-real"}, r.Warnings(ids))
	assert.True(t, r.IsKnown("sps:block/quote"))
}

func TestRegistry_Injected(t *testing.T) {
	r := extensions.NewRegistry([]string{"sps:not-real"})
	assert.Empty(t, r.Unknown([]string{"sps:not-real"}))
	assert.Equal(t, []string{"sps:trust-weighting"}, r.Unknown([]string{"sps:trust-weighting"}))
}

func TestDeclarations(t *testing.T) {
	doc := parse(t, `{"extensions":[
		{"id":"sps:trust-weighting","version":"0.3.0"},
		{"id":"sps:time-versioning","version":"v1"},
		{"id":"sps:ephemeral-content"}
	]}`)
	assert.Equal(t, []string{`Extension sps:time-versioning: invalid version "v1"`}, extensions.Declarations(doc))
}
