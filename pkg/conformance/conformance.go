// Package conformance runs fixture suites and smoke plans through the
// validator.
//
// A fixture directory holds documents that must validate cleanly; its
// invalid/ subdirectory holds documents that must produce at least one
// error.
package conformance

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Mindburn-Labs/spp/pkg/discovery"
	"github.com/Mindburn-Labs/spp/pkg/validator"
)

// InvalidDir is the fixture subdirectory of documents expected to fail.
const InvalidDir = "invalid"

// ErrNoFixtures is returned when a fixture directory is missing or empty.
var ErrNoFixtures = errors.New("conformance: no fixtures")

// fixturePatterns are the file kinds the validator accepts.
var fixturePatterns = []discovery.Pattern{
	{Name: "*.json"},
	{Name: "*.jsonld"},
	{Name: "*.md"},
}

// Expectation is the result a fixture must produce.
type Expectation string

const (
	ExpectValid   Expectation = "valid"
	ExpectInvalid Expectation = "invalid"
)

// Outcome is one fixture's result.
type Outcome struct {
	Path   string      `json:"path"`
	Expect Expectation `json:"expect"`
	Pass   bool        `json:"pass"`
	// Errors are the validator's errors for the fixture.
	Errors []string `json:"errors,omitempty"`
	Error  string   `json:"error,omitempty"`
}

// Report summarizes a fixture run.
type Report struct {
	RunID     string        `json:"run_id"`
	Dir       string        `json:"dir"`
	Timestamp time.Time     `json:"timestamp"`
	Pass      bool          `json:"pass"`
	Outcomes  []Outcome     `json:"outcomes"`
	Duration  time.Duration `json:"duration"`
}

// Failed returns the outcomes that did not meet their expectation.
func (r *Report) Failed() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if !o.Pass {
			out = append(out, o)
		}
	}
	return out
}

// Runner executes fixture suites and plans.
type Runner struct {
	v      *validator.Validator
	finder *discovery.Finder
	clock  func() time.Time
	logger *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithClock sets the clock used for report timestamps and durations.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.clock = now }
}

// NewRunner returns a runner validating through v.
func NewRunner(v *validator.Validator, opts ...Option) *Runner {
	r := &Runner{
		v:      v,
		finder: discovery.NewFinder(),
		clock:  time.Now,
		logger: slog.Default().With("component", "conformance"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunFixtures validates every fixture under dir against its expectation.
func (r *Runner) RunFixtures(ctx context.Context, dir string) (*Report, error) {
	start := r.clock()
	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoFixtures, dir)
		}
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}
	paths, err := r.finder.Find(ctx, dir, fixturePatterns)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoFixtures, dir)
	}

	batch, err := r.v.ValidateBatch(ctx, paths, validator.Options{})
	if err != nil {
		return nil, err
	}

	report := &Report{
		RunID:     uuid.New().String(),
		Dir:       dir,
		Timestamp: start.UTC(),
		Pass:      true,
		Outcomes:  make([]Outcome, 0, len(batch.Results)),
	}
	invalidRoot := filepath.Join(dir, InvalidDir) + string(filepath.Separator)
	for _, res := range batch.Results {
		o := Outcome{Path: res.Path, Expect: ExpectValid}
		if strings.HasPrefix(res.Path, invalidRoot) {
			o.Expect = ExpectInvalid
		}
		switch {
		case res.Err != nil:
			o.Error = res.Error
		case o.Expect == ExpectValid:
			o.Errors = res.Report.Errors
			o.Pass = res.Report.Valid()
		default:
			o.Errors = res.Report.Errors
			o.Pass = !res.Report.Valid()
		}
		if !o.Pass {
			report.Pass = false
		}
		report.Outcomes = append(report.Outcomes, o)
	}
	report.Duration = r.clock().Sub(start)

	r.logger.InfoContext(ctx, "fixtures checked", "run_id", report.RunID, "dir", dir,
		"fixtures", len(report.Outcomes), "failed", len(report.Failed()))
	return report, nil
}
