package schema_test

import (
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/Mindburn-Labs/spp/pkg/document"
	"github.com/Mindburn-Labs/spp/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, s string) *document.Document {
	t.Helper()
	doc, err := document.Parse([]byte(s))
	require.NoError(t, err)
	return doc
}

func TestLoader_Resolution(t *testing.T) {
	l := schema.NewLoader(fstest.MapFS{
		"a.json": {Data: []byte(`{"type":"object"}`)},
	}, "https://spp.dev/schemas")

	rc, err := l.Load("https://spp.dev/schemas/a.json#/$defs/x")
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	assert.JSONEq(t, `{"type":"object"}`, string(data))

	rc, err = l.Load("https://json-schema.org/draft/2020-12/schema")
	require.NoError(t, err)
	data, _ = io.ReadAll(rc)
	assert.Equal(t, "true", string(data))

	_, err = l.Load("https://evil.example/x.json")
	assert.True(t, errors.Is(err, schema.ErrUnresolvable))

	_, err = l.Load("https://spp.dev/schemas/missing.json")
	assert.True(t, errors.Is(err, schema.ErrUnresolvable))

	_, err = l.Load("https://spp.dev/schemas/../etc/passwd")
	assert.True(t, errors.Is(err, schema.ErrUnresolvable))
}

func TestSet_ValidDocument(t *testing.T) {
	set := schema.NewSet(schema.Embedded())
	doc := parse(t, `{
		"id": "sample:news-article",
		"title": "Sample",
		"protocolVersion": "1.0.0",
		"extensions": [{"id": "sps:trust-weighting", "version": "0.3.0"}, {"id": "sps:not-real", "version": "1.0.0"}],
		"endorsements": [{"endorser": {"id": "endorser:x", "uri": "https://x.example"}, "verdict": "accurate", "confidence": 0.92, "trust_weight": 0.85}],
		"trust_signals": {"source_credibility": 0.8, "fact_checked": true}
	}`)

	violations, err := set.Validate(schema.Semantic, doc.Value())
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestSet_CollectsAllViolations(t *testing.T) {
	set := schema.NewSet(schema.Embedded())
	doc := parse(t, `{
		"title": "",
		"canonical": "not a uri",
		"trust_signals": {"source_credibility": 1.5},
		"surprise": 1
	}`)

	violations, err := set.Validate(schema.Semantic, doc.Value())
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(violations), 4)

	locations := make(map[string]bool)
	for _, v := range violations {
		locations[v.Path()] = true
		assert.True(t, strings.HasPrefix(v.String(), "Schema validation error at "))
	}
	assert.True(t, locations["root"])
	assert.True(t, locations["/title"])
	assert.True(t, locations["/canonical"])
	assert.True(t, locations["/trust_signals/source_credibility"])
}

func TestSet_AlternativesReportClosestBranch(t *testing.T) {
	set := schema.NewSet(schema.Embedded())
	doc := parse(t, `{"id":"x","title":"y","endorsements":[{"endorser":{"id":"e"},"verdict":"accurate","confidence":2}]}`)

	violations, err := set.Validate(schema.Semantic, doc.Value())
	require.NoError(t, err)
	require.NotEmpty(t, violations)
	for _, v := range violations {
		assert.Equal(t, "/endorsements/0/confidence", v.Path())
		assert.NotContains(t, v.Message, "endorser_did")
	}
}

func TestSet_DeterministicOrder(t *testing.T) {
	set := schema.NewSet(schema.Embedded())
	doc := parse(t, `{"title":"","id":"","canonical":"::","tags":[1,2,3],"x":1}`)

	first, err := set.Validate(schema.Semantic, doc.Value())
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := set.Validate(schema.Semantic, doc.Value())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestSet_MissingRoot(t *testing.T) {
	set := schema.NewSet(schema.NewLoader(fstest.MapFS{}, ""))
	_, err := set.Validate(schema.Semantic, map[string]any{})
	assert.True(t, errors.Is(err, schema.ErrSchemaNotFound))
}

func TestSet_UnresolvableRef(t *testing.T) {
	set := schema.NewSet(schema.NewLoader(fstest.MapFS{
		"semantic.json": {Data: []byte(`{"$id":"https://spp.dev/schemas/semantic.json","$ref":"https://elsewhere.example/x.json"}`)},
	}, ""))
	_, err := set.Validate(schema.Semantic, map[string]any{})
	require.Error(t, err)
	assert.False(t, errors.Is(err, schema.ErrSchemaNotFound))
}

func TestSet_ConcurrentCompileSharesResult(t *testing.T) {
	set := schema.NewSet(schema.Embedded())

	var wg sync.WaitGroup
	results := make([]any, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sch, err := set.Compile(schema.Semantic)
			assert.NoError(t, err)
			results[i] = sch
		}(i)
	}
	wg.Wait()
	for _, r := range results[1:] {
		assert.Same(t, results[0], r)
	}
}

func TestEmbeddedBundleCompiles(t *testing.T) {
	set := schema.NewSet(schema.Embedded())
	for _, name := range []string{schema.Semantic, schema.Meta, schema.SiteConfig, schema.Pub} {
		_, err := set.Compile(name)
		assert.NoError(t, err, name)
	}
}

func TestSelect(t *testing.T) {
	cases := []struct {
		name     string
		json     string
		filename string
		want     string
	}{
		{"legacy", `{"title":"x"}`, "semantic.json", schema.Semantic},
		{"jsonld", `{"@context":"https://schema.org","@type":"Article"}`, "post.json", schema.Meta},
		{"meta by name", `{"name":"x"}`, "pubs/first/meta.jsonld", schema.Meta},
		{"site", `{"siteMetadata":{}}`, "x.json", schema.SiteConfig},
		{"site by name", `{}`, "site.config.json", schema.SiteConfig},
		{"pub", `{}`, "pubs/first/pub.json", schema.Pub},
		{"unrecognized", `{"foo":1}`, "foo.json", schema.Semantic},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			target := schema.Select(parse(t, tc.json), tc.filename)
			assert.Equal(t, tc.want, target.Name)
		})
	}
}

func TestSelect_WrappedUsesInnerArtifact(t *testing.T) {
	doc := parse(t, `{"artifact":{"id":"a","title":"t"},"signature":"x"}`)
	target := schema.Select(doc, "wrapped.json")
	assert.Equal(t, schema.Semantic, target.Name)

	set := schema.NewSet(schema.Embedded())
	violations, err := set.Validate(target.Name, target.Instance)
	require.NoError(t, err)
	assert.Empty(t, violations)
}
