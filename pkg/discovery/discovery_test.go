package discovery_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Mindburn-Labs/spp/pkg/discovery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, root string, rel ...string) {
	t.Helper()
	p := filepath.Join(append([]string{root}, rel...)...)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte("{}"), 0o644))
}

func TestFind_DefaultPatterns(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "site.config.json")
	touch(t, root, "semantic.json")
	touch(t, root, "pubs", "first", "meta.jsonld")
	touch(t, root, "pubs", "second", "meta.jsonld")
	touch(t, root, "drafts", "meta.jsonld")
	touch(t, root, "posts", "hello.sps.md")
	touch(t, root, "posts", "plain.md")
	touch(t, root, "node_modules", "pkg", "semantic.json")
	touch(t, root, ".cache", "semantic.json")

	got, err := discovery.NewFinder().Find(context.Background(), root, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "posts", "hello.sps.md"),
		filepath.Join(root, "pubs", "first", "meta.jsonld"),
		filepath.Join(root, "pubs", "second", "meta.jsonld"),
		filepath.Join(root, "semantic.json"),
		filepath.Join(root, "site.config.json"),
	}, got)
}

func TestFind_CustomPatterns(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a", "one.md")
	touch(t, root, "b", "two.md")
	touch(t, root, "b", "two.json")

	got, err := discovery.NewFinder().Find(context.Background(), root, []discovery.Pattern{{Name: "*.md", Under: "b"}})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "b", "two.md")}, got)
}

func TestFind_EmptyTree(t *testing.T) {
	got, err := discovery.NewFinder().Find(context.Background(), t.TempDir(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFind_Canceled(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "semantic.json")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := discovery.NewFinder().Find(ctx, root, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPatternMatch(t *testing.T) {
	p := discovery.Pattern{Name: "meta.jsonld", Under: "pubs"}
	assert.True(t, p.Match([]string{"pubs", "x"}, "meta.jsonld"))
	assert.False(t, p.Match([]string{"x"}, "meta.jsonld"))
	assert.False(t, discovery.Pattern{Name: "["}.Match(nil, "a"))
}
