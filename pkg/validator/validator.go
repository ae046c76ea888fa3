// Package validator runs the file validation pipeline: classification,
// parsing, semantic block checks, schema validation, extension detection and
// endorsement chain checks.
package validator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"golang.org/x/text/language"

	"github.com/Mindburn-Labs/spp/pkg/blocks"
	"github.com/Mindburn-Labs/spp/pkg/document"
	"github.com/Mindburn-Labs/spp/pkg/extensions"
	"github.com/Mindburn-Labs/spp/pkg/observability"
	"github.com/Mindburn-Labs/spp/pkg/schema"
	"github.com/Mindburn-Labs/spp/pkg/trust"
)

// ErrFileNotFound is returned when the file to validate does not exist.
var ErrFileNotFound = errors.New("file not found")

// Options tune a single validation call.
type Options struct {
	// ExtensionsOnly skips schema validation. Parsing, block checks and
	// extension detection still run.
	ExtensionsOnly bool
}

// Validator validates files against a shared schema set. It is safe for
// concurrent use.
type Validator struct {
	set         *schema.Set
	registry    *extensions.Registry
	extractor   extensions.Extractor
	telemetry   *observability.Provider
	logger      *slog.Logger
	concurrency int
}

// Option configures a Validator.
type Option func(*Validator)

// WithSchemaSet uses a prepared schema set.
func WithSchemaSet(s *schema.Set) Option {
	return func(v *Validator) { v.set = s }
}

// WithSchemaDir loads schemas from dir instead of the embedded bundle.
func WithSchemaDir(dir, namespace string) Option {
	return func(v *Validator) { v.set = schema.NewSet(schema.Dir(dir, namespace)) }
}

// WithRegistry replaces the known-extension allow-list.
func WithRegistry(r *extensions.Registry) Option {
	return func(v *Validator) { v.registry = r }
}

// WithTelemetry records metrics and spans for every validated file.
func WithTelemetry(p *observability.Provider) Option {
	return func(v *Validator) { v.telemetry = p }
}

// WithLogger overrides the component logger.
func WithLogger(l *slog.Logger) Option {
	return func(v *Validator) { v.logger = l }
}

// WithConcurrency bounds the number of files ValidateBatch works on at once.
func WithConcurrency(n int) Option {
	return func(v *Validator) { v.concurrency = n }
}

// New returns a validator over the embedded schemas and default allow-list.
func New(opts ...Option) *Validator {
	v := &Validator{
		extractor:   extensions.Extractor{Prefix: extensions.Prefix, MaxDepth: extensions.MaxDepth},
		logger:      slog.Default().With("component", "validator"),
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.set == nil {
		v.set = schema.NewSet(schema.Embedded(), schema.WithLogger(v.logger))
	}
	if v.registry == nil {
		v.registry = extensions.DefaultRegistry()
	}
	if v.concurrency <= 0 {
		v.concurrency = 1
	}
	return v
}

// Schemas returns the validator's schema set.
func (v *Validator) Schemas() *schema.Set { return v.set }

// ValidateFile reads and validates path. The only error returned is for a
// missing or unreadable file; every other failure is recorded in the report.
func (v *Validator) ValidateFile(ctx context.Context, path string, opts Options) (*Report, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return v.ValidateContent(ctx, path, content, opts), nil
}

// ValidateContent validates content as if it were read from path. The path
// selects the parsing branch and, for JSON, the schema.
func (v *Validator) ValidateContent(ctx context.Context, path string, content []byte, opts Options) *Report {
	start := time.Now()
	var finish func(error)
	if v.telemetry != nil {
		ctx, finish = v.telemetry.TrackOperation(ctx, "spp.validate")
	}

	r := v.run(path, content, opts)

	v.logger.DebugContext(ctx, "validated", "path", path, "file_type", r.FileType,
		"errors", len(r.Errors), "warnings", len(r.Warnings), "issues", len(r.Issues))
	if v.telemetry != nil {
		v.telemetry.RecordValidation(ctx, r.FileType, len(r.Errors), time.Since(start))
		finish(nil)
	}
	return r
}

func (v *Validator) run(path string, content []byte, opts Options) *Report {
	r := newReport()

	kind := Classify(path)
	if kind.Kind == KindUnsupported {
		r.Errors = append(r.Errors, "Unsupported file type: "+kind.Ext)
		return r
	}
	r.FileType = kind.Label

	var (
		doc *document.Document
		bs  []blocks.Block
		err error
	)
	switch kind.Kind {
	case KindJSON:
		if doc, err = document.Parse(content); err != nil {
			r.Errors = append(r.Errors, "Invalid JSON: "+err.Error())
			return r
		}
	case KindSPSMarkdown:
		if doc, err = document.ParseFrontMatter(string(content)); err != nil {
			r.Errors = append(r.Errors, "Invalid frontmatter: "+err.Error())
			return r
		}
	case KindBlockMarkdown:
		bs = blocks.Extract(string(content))
		if len(bs) == 0 {
			r.Warnings = append(r.Warnings, "No semantic blocks found in markdown file")
		}
	}

	var found []string
	if len(bs) > 0 {
		res := blocks.Validate(bs)
		r.Errors = append(r.Errors, res.Errors...)
		r.Warnings = append(r.Warnings, res.Warnings...)
		found = extensions.FromBlocks(bs)
	}

	if doc == nil {
		r.Extensions = extensions.Merge(found)
		r.Warnings = append(r.Warnings, v.registry.Warnings(r.Extensions)...)
		return r
	}

	if !opts.ExtensionsOnly {
		r.Errors = append(r.Errors, v.schemaErrors(doc, path)...)
	}

	r.Extensions = extensions.Merge(found, v.extractor.Extract(doc.Value()))
	r.Warnings = append(r.Warnings, v.registry.Warnings(r.Extensions)...)
	r.Warnings = append(r.Warnings, extensions.Declarations(doc)...)
	r.Warnings = append(r.Warnings, languageWarnings(doc)...)
	r.Issues = append(r.Issues, trust.ValidateChain(doc.Endorsements()).Issues...)
	return r
}

func (v *Validator) schemaErrors(doc *document.Document, path string) []string {
	target := schema.Select(doc, path)
	violations, err := v.set.Validate(target.Name, target.Instance)
	if err != nil {
		v.logger.Warn("schema unavailable", "schema", target.Name, "error", err)
		if errors.Is(err, schema.ErrSchemaNotFound) {
			return []string{"Schema not found: " + v.set.Loader().URI(target.Name)}
		}
		return []string{"Schema loading error: " + err.Error()}
	}
	out := make([]string, 0, len(violations))
	for _, viol := range violations {
		out = append(out, viol.String())
	}
	return out
}

// languageFields are the locations that may carry a BCP 47 tag.
var languageFields = []struct {
	pointer string
	path    []string
}{
	{"/language", []string{"language"}},
	{"/lang", []string{"lang"}},
	{"/inLanguage", []string{"inLanguage"}},
	{"/siteMetadata/language", []string{"siteMetadata", "language"}},
}

func languageWarnings(doc *document.Document) []string {
	var out []string
	for _, f := range languageFields {
		var cur any = doc.Content()
		for _, key := range f.path {
			obj, ok := cur.(map[string]any)
			if !ok {
				cur = nil
				break
			}
			cur = obj[key]
		}
		tag, ok := cur.(string)
		if !ok || tag == "" {
			continue
		}
		if _, err := language.Parse(tag); err != nil {
			out = append(out, fmt.Sprintf("Invalid language tag \"%s\" at %s", tag, f.pointer))
		}
	}
	return out
}
