// Package extensions detects namespaced protocol extensions in documents.
package extensions

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/Mindburn-Labs/spp/pkg/blocks"
	"github.com/Mindburn-Labs/spp/pkg/document"
)

// Prefix is the extension namespace recognised by default.
const Prefix = "sps:"

// MaxDepth bounds the traversal of nested values.
const MaxDepth = 64

// Known is the default allow-list.
var Known = []string{
	"sps:block/recipe",
	"sps:block/quote",
	"sps:block/summary",
	"sps:endorsement-chains",
	"sps:trust-weighting",
	"sps:time-versioning",
	"sps:ephemeral-content",
}

// Extractor collects extension identifiers carrying a namespace prefix.
type Extractor struct {
	Prefix   string
	MaxDepth int
}

// Extract walks v with the default prefix and depth.
func Extract(v any) []string {
	return Extractor{Prefix: Prefix, MaxDepth: MaxDepth}.Extract(v)
}

// Extract returns every object key or string value starting with the prefix,
// deduplicated in traversal order. Object keys are visited in sorted order and
// array elements in document order, so two documents differing only in key
// order report the same list.
func (e Extractor) Extract(v any) []string {
	c := collector{prefix: e.Prefix, maxDepth: e.MaxDepth, seen: make(map[string]bool)}
	if c.prefix == "" {
		c.prefix = Prefix
	}
	if c.maxDepth <= 0 {
		c.maxDepth = MaxDepth
	}
	c.walk(v, 0)
	return c.out
}

type collector struct {
	prefix   string
	maxDepth int
	seen     map[string]bool
	out      []string
}

func (c *collector) add(s string) {
	if !strings.HasPrefix(s, c.prefix) || c.seen[s] {
		return
	}
	c.seen[s] = true
	c.out = append(c.out, s)
}

func (c *collector) walk(v any, depth int) {
	if depth > c.maxDepth {
		return
	}
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			c.add(k)
			c.walk(t[k], depth+1)
		}
	case []any:
		for _, item := range t {
			c.walk(item, depth+1)
		}
	case string:
		c.add(t)
	}
}

// FromBlocks returns block types that name an extension, in order.
func FromBlocks(bs []blocks.Block) []string {
	var out []string
	for _, b := range bs {
		if strings.Contains(b.Type, ":") {
			out = append(out, b.Type)
		}
	}
	return out
}

// Merge concatenates id lists, dropping duplicates after their first appearance.
func Merge(lists ...[]string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, l := range lists {
		for _, id := range l {
			if seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// Registry is an allow-list of known extension ids.
type Registry struct {
	prefix string
	known  map[string]bool
}

// NewRegistry builds a registry for ids under the default prefix.
func NewRegistry(known []string) *Registry {
	r := &Registry{prefix: Prefix, known: make(map[string]bool, len(known))}
	for _, id := range known {
		r.known[id] = true
	}
	return r
}

// DefaultRegistry returns a registry over Known.
func DefaultRegistry() *Registry { return NewRegistry(Known) }

// IsKnown reports whether id is on the allow-list.
func (r *Registry) IsKnown(id string) bool { return r.known[id] }

// Unknown returns prefixed ids that are not on the allow-list, in input order.
func (r *Registry) Unknown(ids []string) []string {
	var out []string
	for _, id := range ids {
		if strings.HasPrefix(id, r.prefix) && !r.known[id] {
			out = append(out, id)
		}
	}
	return out
}

// Warnings renders Unknown as report warnings.
func (r *Registry) Warnings(ids []string) []string {
	unknown := r.Unknown(ids)
	out := make([]string, 0, len(unknown))
	for _, id := range unknown {
		out = append(out, "Unknown extension: "+id)
	}
	return out
}

// Declarations checks the version of every declared extension. A missing
// version is tolerated; one that is not SemVer produces a warning.
func Declarations(doc *document.Document) []string {
	var out []string
	for _, decl := range doc.Extensions() {
		if decl.Version == "" {
			continue
		}
		if _, err := semver.StrictNewVersion(decl.Version); err != nil {
			out = append(out, fmt.Sprintf("Extension %s: invalid version \"%s\"", decl.ID, decl.Version))
		}
	}
	return out
}
