package schema_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/Mindburn-Labs/spp/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func releaseSource() fstest.MapFS {
	return fstest.MapFS{
		"semantic.json":           {Data: []byte(`{"type":"object"}`)},
		"nested/defs.json":        {Data: []byte(`{}`)},
		"README.md":               {Data: []byte("ignored")},
		".hidden.json":            {Data: []byte("{}")},
		"releases/0.1.0/old.json": {Data: []byte("{}")},
	}
}

func TestRelease(t *testing.T) {
	dir := t.TempDir()
	fixed := time.Date(2025, 1, 15, 14, 30, 0, 0, time.UTC)

	m, err := schema.Release(context.Background(), releaseSource(), dir, "1.0.0-rc.1",
		schema.WithClock(func() time.Time { return fixed }))
	require.NoError(t, err)

	require.Len(t, m.Files, 2)
	assert.Equal(t, "nested/defs.json", m.Files[0].Path)
	assert.Equal(t, "semantic.json", m.Files[1].Path)
	assert.Equal(t, "2025-01-15T14:30:00Z", m.GeneratedAt)

	target := filepath.Join(dir, "1.0.0-rc.1")
	copied, err := os.ReadFile(filepath.Join(target, "semantic.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"type":"object"}`, string(copied))

	raw, err := os.ReadFile(filepath.Join(target, "manifest.json"))
	require.NoError(t, err)
	var onDisk schema.Manifest
	require.NoError(t, json.Unmarshal(raw, &onDisk))
	assert.Equal(t, *m, onDisk)

	sums, err := os.ReadFile(filepath.Join(target, "checksums.txt"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(sums)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, m.Files[0].SHA256+"  nested/defs.json", lines[0])
}

func TestRelease_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	_, err := schema.Release(context.Background(), releaseSource(), dir, "0.4.0")
	require.NoError(t, err)

	_, err = schema.Release(context.Background(), releaseSource(), dir, "0.4.0")
	assert.True(t, errors.Is(err, schema.ErrReleaseExists))
}

func TestRelease_Rejects(t *testing.T) {
	dir := t.TempDir()

	_, err := schema.Release(context.Background(), releaseSource(), dir, "v1")
	assert.True(t, errors.Is(err, schema.ErrInvalidVersion))

	_, err = schema.Release(context.Background(), fstest.MapFS{"a.txt": {Data: []byte("x")}}, dir, "1.0.0")
	assert.True(t, errors.Is(err, schema.ErrNoSchemas))
}
