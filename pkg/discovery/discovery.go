// Package discovery locates protocol files in a publishing tree.
package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/url"
)

// Pattern matches a file by base name. When Under is set the file must also
// sit below a directory with that name.
type Pattern struct {
	Name  string
	Under string
}

// Match reports whether a file called name in the directories dirs matches.
func (p Pattern) Match(dirs []string, name string) bool {
	ok, err := path.Match(p.Name, name)
	if err != nil || !ok {
		return false
	}
	return p.Under == "" || slices.Contains(dirs, p.Under)
}

// DefaultPatterns are the files a drop site carries.
var DefaultPatterns = []Pattern{
	{Name: "site.config.json"},
	{Name: "meta.jsonld", Under: "pubs"},
	{Name: "*.sps.md"},
	{Name: "semantic.json"},
}

// skipDirs are never descended into.
var skipDirs = map[string]bool{"node_modules": true}

// Finder walks a tree through an afs.Service.
type Finder struct {
	svc    afs.Service
	logger *slog.Logger
}

// NewFinder returns a Finder over the local file system.
func NewFinder() *Finder {
	return &Finder{svc: afs.New(), logger: slog.Default().With("component", "discovery")}
}

// Find returns the files below root matching any of patterns, sorted. The
// returned paths are joined onto root as given. An empty pattern list means
// DefaultPatterns.
func (f *Finder) Find(ctx context.Context, root string, patterns []Pattern) ([]string, error) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	location := root
	if url.Scheme(location, "") == "" && url.IsRelative(location) {
		abs, err := filepath.Abs(location)
		if err != nil {
			return nil, fmt.Errorf("discover %s: %w", root, err)
		}
		location = abs
	}
	if url.Scheme(location, "") == "" {
		location = url.ToFileURL(location)
	}

	var found []string
	if err := f.walk(ctx, location, nil, patterns, func(rel []string) {
		found = append(found, filepath.Join(append([]string{root}, rel...)...))
	}); err != nil {
		return nil, fmt.Errorf("discover %s: %w", root, err)
	}
	slices.Sort(found)
	f.logger.DebugContext(ctx, "discovered", "root", root, "files", len(found))
	return found, nil
}

func (f *Finder) walk(ctx context.Context, location string, dirs []string, patterns []Pattern, emit func([]string)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	objects, err := f.svc.List(ctx, location)
	if err != nil {
		return err
	}
	self := url.Path(location)
	for _, object := range objects {
		name := object.Name()
		if object.IsDir() {
			if url.Equals(url.Path(object.URL()), self) {
				continue
			}
			if skipDirs[name] || strings.HasPrefix(name, ".") {
				continue
			}
			sub := append(slices.Clone(dirs), name)
			if err := f.walk(ctx, url.Join(location, name), sub, patterns, emit); err != nil {
				return err
			}
			continue
		}
		for _, p := range patterns {
			if p.Match(dirs, name) {
				emit(append(slices.Clone(dirs), name))
				break
			}
		}
	}
	return nil
}
