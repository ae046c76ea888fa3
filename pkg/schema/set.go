package schema

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/sync/singleflight"
)

// Violation is one leaf failure reported by a compiled schema.
type Violation struct {
	InstanceLocation string `json:"instanceLocation"`
	KeywordLocation  string `json:"keywordLocation"`
	Message          string `json:"message"`
}

// Path returns the instance location, or "root" for the document itself.
func (v Violation) Path() string {
	if v.InstanceLocation == "" {
		return "root"
	}
	return v.InstanceLocation
}

func (v Violation) String() string {
	return fmt.Sprintf("Schema validation error at %s: %s", v.Path(), v.Message)
}

// Set compiles schemas on first use and keeps them for the life of the process.
// Compiled schemas are immutable and safe to share between goroutines.
type Set struct {
	loader *Loader
	logger *slog.Logger

	group singleflight.Group
	mu    sync.RWMutex
	cache map[string]*jsonschema.Schema
}

// SetOption configures a Set.
type SetOption func(*Set)

// WithLogger overrides the component logger.
func WithLogger(l *slog.Logger) SetOption {
	return func(s *Set) { s.logger = l }
}

// NewSet returns an empty set backed by loader.
func NewSet(loader *Loader, opts ...SetOption) *Set {
	s := &Set{
		loader: loader,
		logger: slog.Default().With("component", "schema"),
		cache:  make(map[string]*jsonschema.Schema),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Loader returns the loader the set resolves through.
func (s *Set) Loader() *Loader { return s.loader }

// Compile returns the compiled schema for a file name relative to the
// loader's namespace. Concurrent callers for the same schema share one
// compilation.
func (s *Set) Compile(name string) (*jsonschema.Schema, error) {
	uri := s.loader.URI(name)

	s.mu.RLock()
	sch, ok := s.cache[uri]
	s.mu.RUnlock()
	if ok {
		return sch, nil
	}

	v, err, _ := s.group.Do(uri, func() (any, error) {
		s.mu.RLock()
		cached, ok := s.cache[uri]
		s.mu.RUnlock()
		if ok {
			return cached, nil
		}

		if !s.loader.Exists(name) {
			return nil, fmt.Errorf("%w: %s", ErrSchemaNotFound, uri)
		}

		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		c.AssertFormat = true
		c.LoadURL = s.loader.Load

		compiled, err := c.Compile(uri)
		if err != nil {
			s.logger.Warn("schema compile failed", "uri", uri, "error", err)
			return nil, err
		}
		s.logger.Debug("schema compiled", "uri", uri)

		s.mu.Lock()
		s.cache[uri] = compiled
		s.mu.Unlock()
		return compiled, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*jsonschema.Schema), nil
}

// Validate checks instance against the named schema and returns every leaf
// violation, sorted by location. A non-nil error means the schema itself
// could not be loaded.
func (s *Set) Validate(name string, instance any) ([]Violation, error) {
	sch, err := s.Compile(name)
	if err != nil {
		return nil, err
	}
	err = sch.Validate(instance)
	if err == nil {
		return nil, nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return []Violation{{Message: err.Error()}}, nil
	}
	out := leaves(verr, nil)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].InstanceLocation != out[j].InstanceLocation {
			return out[i].InstanceLocation < out[j].InstanceLocation
		}
		if out[i].KeywordLocation != out[j].KeywordLocation {
			return out[i].KeywordLocation < out[j].KeywordLocation
		}
		return out[i].Message < out[j].Message
	})
	return out, nil
}

func leaves(e *jsonschema.ValidationError, out []Violation) []Violation {
	if len(e.Causes) == 0 {
		return append(out, Violation{
			InstanceLocation: e.InstanceLocation,
			KeywordLocation:  e.KeywordLocation,
			Message:          e.Message,
		})
	}
	if strings.HasSuffix(e.KeywordLocation, "/anyOf") || strings.HasSuffix(e.KeywordLocation, "/oneOf") {
		return append(out, bestBranch(e.Causes)...)
	}
	for _, c := range e.Causes {
		out = leaves(c, out)
	}
	return out
}

// bestBranch keeps the failures of the alternative that matched furthest:
// the deepest instance location wins, then the fewest failures.
func bestBranch(causes []*jsonschema.ValidationError) []Violation {
	var best []Violation
	bestDepth := -1
	for _, c := range causes {
		branch := leaves(c, nil)
		depth := 0
		for _, v := range branch {
			depth = max(depth, strings.Count(v.InstanceLocation, "/"))
		}
		if depth > bestDepth || (depth == bestDepth && len(branch) < len(best)) {
			best, bestDepth = branch, depth
		}
	}
	return best
}
