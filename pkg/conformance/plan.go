package conformance

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Mindburn-Labs/spp/pkg/validator"
)

// Plan is a named list of smoke tests.
type Plan struct {
	Name  string     `yaml:"name" json:"name"`
	Tests []PlanTest `yaml:"tests" json:"tests"`
}

// PlanTest groups fixtures, given relative to the plan's base directory.
type PlanTest struct {
	Name     string   `yaml:"name" json:"name"`
	Fixtures []string `yaml:"fixtures" json:"fixtures"`
}

// FixtureResult is the outcome of one plan fixture.
type FixtureResult struct {
	Fixture string `json:"fixture"`
	Valid   bool   `json:"valid"`
	Errors  int    `json:"errors"`
	Reason  string `json:"reason,omitempty"`
}

// TestResult holds one plan test's fixtures in plan order.
type TestResult struct {
	Name     string          `json:"name"`
	Fixtures []FixtureResult `json:"fixtures"`
}

// PlanResult summarizes a smoke run.
type PlanResult struct {
	Name   string       `json:"name"`
	Tests  []TestResult `json:"tests"`
	Passed int          `json:"passed"`
	Failed int          `json:"failed"`
}

// LoadPlan reads a YAML plan.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load plan %q: %w", path, err)
	}
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse plan %q: %w", path, err)
	}
	if p.Name == "" {
		p.Name = filepath.Base(path)
	}
	return &p, nil
}

// RunPlan validates every plan fixture, resolving paths against baseDir. A
// fixture passes when it exists and validates without errors.
func (r *Runner) RunPlan(ctx context.Context, plan *Plan, baseDir string) (*PlanResult, error) {
	res := &PlanResult{Name: plan.Name, Tests: make([]TestResult, 0, len(plan.Tests))}
	for _, test := range plan.Tests {
		tr := TestResult{Name: test.Name, Fixtures: make([]FixtureResult, 0, len(test.Fixtures))}
		for _, fixture := range test.Fixtures {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			fr := r.runFixture(ctx, filepath.Join(baseDir, fixture))
			fr.Fixture = fixture
			if fr.Valid {
				res.Passed++
			} else {
				res.Failed++
			}
			tr.Fixtures = append(tr.Fixtures, fr)
		}
		res.Tests = append(res.Tests, tr)
	}
	r.logger.InfoContext(ctx, "plan run", "plan", plan.Name, "passed", res.Passed, "failed", res.Failed)
	return res, nil
}

func (r *Runner) runFixture(ctx context.Context, path string) FixtureResult {
	report, err := r.v.ValidateFile(ctx, path, validator.Options{})
	switch {
	case errors.Is(err, validator.ErrFileNotFound), errors.Is(err, fs.ErrNotExist):
		return FixtureResult{Reason: "Fixture not found"}
	case err != nil:
		return FixtureResult{Reason: err.Error()}
	}
	fr := FixtureResult{Errors: len(report.Errors), Valid: report.Valid()}
	if !fr.Valid {
		fr.Reason = fmt.Sprintf("%d errors", fr.Errors)
	}
	return fr
}
