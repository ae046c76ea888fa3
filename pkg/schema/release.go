package schema

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	gojson "github.com/goccy/go-json"
)

var (
	// ErrInvalidVersion is returned for release versions that are not SemVer.
	ErrInvalidVersion = errors.New("schema: invalid release version")
	// ErrReleaseExists is returned when the release directory is already present.
	ErrReleaseExists = errors.New("schema: release already exists")
	// ErrNoSchemas is returned when the source holds no schema files.
	ErrNoSchemas = errors.New("schema: no schemas to release")
)

// ManifestFile is one released schema file.
type ManifestFile struct {
	Path   string `json:"path"`
	SHA256 string `json:"sha256"`
}

// Manifest describes a released schema snapshot.
type Manifest struct {
	Version     string         `json:"version"`
	GeneratedAt string         `json:"generatedAt"`
	Source      string         `json:"source"`
	Files       []ManifestFile `json:"files"`
}

// ReleaseOption configures Release.
type ReleaseOption func(*releaseConfig)

type releaseConfig struct {
	now    func() time.Time
	source string
}

// WithClock sets the clock used for the manifest timestamp.
func WithClock(now func() time.Time) ReleaseOption {
	return func(c *releaseConfig) { c.now = now }
}

// WithSourceLabel sets the manifest's source label.
func WithSourceLabel(s string) ReleaseOption {
	return func(c *releaseConfig) { c.source = s }
}

// Release copies every .json file of src into releasesDir/<version>/ and
// writes manifest.json and checksums.txt next to them. Hidden entries and an
// existing releases/ tree inside src are skipped. An existing target is never
// overwritten.
func Release(ctx context.Context, src fs.FS, releasesDir, version string, opts ...ReleaseOption) (*Manifest, error) {
	cfg := releaseConfig{now: time.Now, source: "schemas"}
	for _, opt := range opts {
		opt(&cfg)
	}

	if _, err := semver.StrictNewVersion(version); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidVersion, version)
	}

	target := filepath.Join(releasesDir, version)
	if _, err := os.Stat(target); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrReleaseExists, target)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("stat %s: %w", target, err)
	}

	files, err := collect(src)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoSchemas
	}

	m := &Manifest{
		Version:     version,
		GeneratedAt: cfg.now().UTC().Format(time.RFC3339),
		Source:      cfg.source,
	}
	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := fs.ReadFile(src, rel)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", rel, err)
		}
		dest := filepath.Join(target, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(dest, data, 0o644); err != nil {
			return nil, err
		}
		sum := sha256.Sum256(data)
		m.Files = append(m.Files, ManifestFile{Path: rel, SHA256: hex.EncodeToString(sum[:])})
	}

	manifest, err := gojson.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(target, "manifest.json"), manifest, 0o644); err != nil {
		return nil, err
	}

	var sums strings.Builder
	for _, f := range m.Files {
		fmt.Fprintf(&sums, "%s  %s\n", f.SHA256, f.Path)
	}
	if err := os.WriteFile(filepath.Join(target, "checksums.txt"), []byte(sums.String()), 0o644); err != nil {
		return nil, err
	}
	return m, nil
}

// collect lists schema files in src, slash separated and sorted.
func collect(src fs.FS) ([]string, error) {
	var out []string
	err := fs.WalkDir(src, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == "." {
			return nil
		}
		name := d.Name()
		if strings.HasPrefix(name, ".") || (d.IsDir() && p == "releases") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() && path.Ext(name) == ".json" {
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}
