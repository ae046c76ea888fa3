package validator_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Mindburn-Labs/spp/pkg/extensions"
	"github.com/Mindburn-Labs/spp/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSemantic = `{
  "id": "sample:news-article",
  "title": "Sample News Article for Testing",
  "protocolVersion": "1.0.0",
  "author": { "name": "Test Author", "id": "author:test" },
  "publisher": { "name": "Test Publisher", "id": "publisher:test" },
  "extensions": [
    { "id": "sps:trust-weighting", "version": "0.3.0" },
    { "id": "sps:not-real", "version": "1.0.0" }
  ],
  "endorsements": [
    {
      "endorser": { "name": "Test Fact Checker", "id": "endorser:test-factcheck", "uri": "https://test-factcheck.org" },
      "verdict": "accurate",
      "confidence": 0.92,
      "date": "2025-01-15T14:30:00Z",
      "trust_weight": 0.85,
      "evidence": ["https://example.org/evidence"]
    }
  ],
  "trust_signals": { "source_credibility": 0.8, "fact_checked": true, "aggregate_trust_score": 0.87 }
}`

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func validate(t *testing.T, v *validator.Validator, name, content string, opts validator.Options) *validator.Report {
	t.Helper()
	return v.ValidateContent(context.Background(), name, []byte(content), opts)
}

func TestValidate_ValidDocumentWithUnknownExtension(t *testing.T) {
	v := validator.New()
	r := validate(t, v, "semantic.json", sampleSemantic, validator.Options{})

	assert.Equal(t, "JSON", r.FileType)
	assert.Empty(t, r.Errors)
	assert.Empty(t, r.Issues)
	assert.Equal(t, []string{"Unknown extension: sps:not-real"}, r.Warnings)
	assert.Equal(t, []string{"sps:trust-weighting", "sps:not-real"}, r.Extensions)
	for _, e := range r.Errors {
		assert.NotContains(t, e, "sps:not-real")
	}
}

func TestValidate_Unsupported(t *testing.T) {
	r := validate(t, validator.New(), "notes.txt", "hello", validator.Options{})
	assert.Equal(t, "", r.FileType)
	assert.Equal(t, []string{"Unsupported file type: .txt"}, r.Errors)

	raw, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"fileType":null`)
}

func TestValidate_InvalidJSONShortCircuits(t *testing.T) {
	r := validate(t, validator.New(), "broken.json", `{"id": "x",`, validator.Options{})
	require.Len(t, r.Errors, 1)
	assert.True(t, strings.HasPrefix(r.Errors[0], "Invalid JSON: "))
	assert.Empty(t, r.Warnings)
	assert.Empty(t, r.Extensions)
}

func TestValidate_JSONLD(t *testing.T) {
	r := validate(t, validator.New(), "article.jsonld", `{
		"@context": "https://schema.org", "@type": "Article",
		"name": "Agents", "datePublished": "2025-01-28T10:00:00Z", "protocolVersion": "1.0.0",
		"author": {"@type": "Person", "name": "Alex"}, "inLanguage": "en"
	}`, validator.Options{})
	assert.Equal(t, "JSON-LD", r.FileType)
	assert.Empty(t, r.Errors)
}

func TestValidate_SiteConfigDispatch(t *testing.T) {
	r := validate(t, validator.New(), "site.config.json", `{"protocolVersion":"1.0.0","siteMetadata":{"name":"x","url":"not a url"}}`, validator.Options{})
	require.NotEmpty(t, r.Errors)
	assert.Contains(t, strings.Join(r.Errors, "\n"), "/siteMetadata/url")
}

func TestValidate_SPSMarkdown(t *testing.T) {
	v := validator.New()
	r := validate(t, v, "post.sps.md", "---\nid: post-1\ntitle: Hello\nprotocolVersion: 1.0.0\nsps:ephemeral-content: true\n---\n# Body\n", validator.Options{})
	assert.Equal(t, "SPS Markdown", r.FileType)
	assert.Empty(t, r.Errors)
	assert.Equal(t, []string{"sps:ephemeral-content"}, r.Extensions)
	assert.Empty(t, r.Warnings)

	r = validate(t, v, "post.sps.md", "---\ntitle: [oops\n---\n", validator.Options{})
	require.Len(t, r.Errors, 1)
	assert.True(t, strings.HasPrefix(r.Errors[0], "Invalid frontmatter: "))
}

func TestValidate_BlockMarkdown(t *testing.T) {
	v := validator.New()
	r := validate(t, v, "post.md", `
<!-- sb:block type="quote" -->words<!-- /sb:block -->
<!-- sb:block confidence="certain" -->body<!-- /sb:block -->
<!-- sb:block type="sps:block/recipe" --> <!-- /sb:block -->
<!-- sb:block type="sps:block/unknown" -->x<!-- /sb:block -->
`, validator.Options{})

	assert.Equal(t, "Markdown with semantic blocks", r.FileType)
	assert.Equal(t, []string{"Block 2: Missing or invalid type attribute"}, r.Errors)
	assert.Equal(t, []string{
		"Block 1: Quote block should have a source attribute",
		`Block 2: Invalid confidence value "certain"`,
		"Block 3: Block has empty content",
		"Unknown extension: sps:block/unknown",
	}, r.Warnings)
	assert.Equal(t, []string{"sps:block/recipe", "sps:block/unknown"}, r.Extensions)

	r = validate(t, v, "plain.md", "# nothing here", validator.Options{})
	assert.Empty(t, r.Errors)
	assert.Equal(t, []string{"No semantic blocks found in markdown file"}, r.Warnings)
}

func TestValidate_SchemaViolationsAccumulate(t *testing.T) {
	r := validate(t, validator.New(), "bad.json", `{"title": 7, "canonical": "::", "endorsements": [{"endorser": {}, "confidence": 2}]}`, validator.Options{})

	assert.GreaterOrEqual(t, len(r.Errors), 3)
	for _, e := range r.Errors {
		assert.True(t, strings.HasPrefix(e, "Schema validation error at "), e)
	}
	assert.Equal(t, []string{
		"Endorsement 0: Missing endorser ID",
		"Endorsement 0: Missing verdict",
		"Endorsement 0: Invalid confidence value",
	}, r.Issues)
}

func TestValidate_ExtensionsOnly(t *testing.T) {
	r := validate(t, validator.New(), "bad.json", `{"surprise": "sps:trust-weighting"}`, validator.Options{ExtensionsOnly: true})
	assert.Empty(t, r.Errors)
	assert.Equal(t, []string{"sps:trust-weighting"}, r.Extensions)
}

func TestValidate_SchemaNotFoundKeepsOtherResults(t *testing.T) {
	v := validator.New(validator.WithSchemaDir(t.TempDir(), ""))
	r := validate(t, v, "semantic.json", sampleSemantic, validator.Options{})

	assert.Equal(t, []string{"Schema not found: https://spp.dev/schemas/semantic.json"}, r.Errors)
	assert.Equal(t, []string{"sps:trust-weighting", "sps:not-real"}, r.Extensions)
	assert.Equal(t, []string{"Unknown extension: sps:not-real"}, r.Warnings)
}

func TestValidate_SchemaLoadingError(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "semantic.json", `{"$id":"https://spp.dev/schemas/semantic.json","$ref":"missing.json"}`)
	v := validator.New(validator.WithSchemaDir(dir, ""))

	r := validate(t, v, "semantic.json", `{"id":"x","title":"y"}`, validator.Options{})
	require.Len(t, r.Errors, 1)
	assert.True(t, strings.HasPrefix(r.Errors[0], "Schema loading error: "))
}

func TestValidate_Warnings(t *testing.T) {
	r := validate(t, validator.New(), "semantic.json", `{
		"id": "x", "title": "y", "language": "not a tag",
		"extensions": [{"id": "sps:time-versioning", "version": "latest"}]
	}`, validator.Options{})

	assert.Empty(t, r.Errors)
	assert.Equal(t, []string{
		`Extension sps:time-versioning: invalid version "latest"`,
		`Invalid language tag "not a tag" at /language`,
	}, r.Warnings)
}

func TestValidate_InjectedRegistry(t *testing.T) {
	v := validator.New(validator.WithRegistry(extensions.NewRegistry(append([]string{"sps:not-real"}, extensions.Known...))))
	r := validate(t, v, "semantic.json", sampleSemantic, validator.Options{})
	assert.Empty(t, r.Warnings)
}

func TestValidate_Idempotent(t *testing.T) {
	v := validator.New()
	first := validate(t, v, "semantic.json", sampleSemantic, validator.Options{})
	second := validate(t, v, "semantic.json", sampleSemantic, validator.Options{})

	assert.Equal(t, first, second)
	f1, err := first.Fingerprint()
	require.NoError(t, err)
	f2, err := second.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, f1, f2)

	other := validate(t, v, "other.json", `{"id":"x"}`, validator.Options{})
	f3, err := other.Fingerprint()
	require.NoError(t, err)
	assert.NotEqual(t, f1, f3)
}

func TestValidateFile(t *testing.T) {
	dir := t.TempDir()
	p := write(t, dir, "semantic.json", sampleSemantic)

	r, err := validator.New().ValidateFile(context.Background(), p, validator.Options{})
	require.NoError(t, err)
	assert.True(t, r.Valid())

	_, err = validator.New().ValidateFile(context.Background(), filepath.Join(dir, "nope.json"), validator.Options{})
	assert.True(t, errors.Is(err, validator.ErrFileNotFound))
}

func TestClassify(t *testing.T) {
	cases := map[string]validator.Kind{
		"a.json":        validator.KindJSON,
		"a.jsonld":      validator.KindJSON,
		"a.sps.md":      validator.KindSPSMarkdown,
		"dir/a.md":      validator.KindBlockMarkdown,
		"a.yaml":        validator.KindUnsupported,
		"Makefile":      validator.KindUnsupported,
		"a.json.backup": validator.KindUnsupported,
	}
	for path, want := range cases {
		assert.Equal(t, want, validator.Classify(path).Kind, path)
	}
}
