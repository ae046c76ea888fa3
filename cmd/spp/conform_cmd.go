package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"path/filepath"

	gojson "github.com/goccy/go-json"

	"github.com/Mindburn-Labs/spp/pkg/conformance"
)

// runConformCmd implements `spp conform`.
//
// Exit codes:
//
//	0 = every fixture met its expectation
//	1 = any fixture did not
//	2 = runtime error
func runConformCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("conform", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		dir        string
		schemaDir  string
		jsonOutput bool
	)
	cmd.StringVar(&dir, "dir", filepath.Join("conformance", "fixtures"), "Fixture directory; invalid/ holds fixtures expected to fail")
	cmd.StringVar(&schemaDir, "schema-dir", "", "Schema directory (default: embedded bundle)")
	cmd.BoolVar(&jsonOutput, "json", false, "Output report as JSON to stdout")
	if _, err := parseArgs(cmd, args); err != nil {
		return 2
	}

	ctx := context.Background()
	e, err := newEnv(ctx, stderr, envOptions{schemaDir: schemaDir})
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	defer e.close(ctx)

	report, err := conformance.NewRunner(e.validator).RunFixtures(ctx, dir)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: conformance run failed: %v\n", err)
		return 2
	}

	if jsonOutput {
		data, _ := gojson.MarshalIndent(report, "", "  ")
		_, _ = fmt.Fprintln(stdout, string(data))
	} else {
		printConformanceReport(stdout, report)
	}
	if !report.Pass {
		return 1
	}
	return 0
}

func printConformanceReport(w io.Writer, report *conformance.Report) {
	_, _ = fmt.Fprintf(w, "SPP Conformance Report\n")
	_, _ = fmt.Fprintf(w, "──────────────────────\n")
	_, _ = fmt.Fprintf(w, "Run ID:    %s\n", report.RunID)
	_, _ = fmt.Fprintf(w, "Fixtures:  %s\n", report.Dir)
	_, _ = fmt.Fprintf(w, "Timestamp: %s\n", report.Timestamp.Format("2006-01-02T15:04:05Z"))
	_, _ = fmt.Fprintf(w, "Duration:  %s\n\n", report.Duration)

	for _, o := range report.Outcomes {
		status := "✅ PASS"
		if !o.Pass {
			status = "❌ FAIL"
		}
		_, _ = fmt.Fprintf(w, "  %s  %s (expected %s)", status, o.Path, o.Expect)
		switch {
		case o.Error != "":
			_, _ = fmt.Fprintf(w, "  [%s]", o.Error)
		case !o.Pass && len(o.Errors) > 0:
			_, _ = fmt.Fprintf(w, "  [%s]", o.Errors[0])
			if len(o.Errors) > 1 {
				_, _ = fmt.Fprintf(w, " (+%d more)", len(o.Errors)-1)
			}
		}
		_, _ = fmt.Fprintln(w)
	}

	_, _ = fmt.Fprintln(w)
	if report.Pass {
		_, _ = fmt.Fprintf(w, "Result: ✅ PASS (%d fixtures)\n", len(report.Outcomes))
	} else {
		_, _ = fmt.Fprintf(w, "Result: ❌ FAIL (%d/%d fixtures failed)\n", len(report.Failed()), len(report.Outcomes))
	}
}

// runSmokeCmd implements `spp smoke`. Fixture paths in the plan resolve
// against --base, which defaults to the parent of the plan's directory.
func runSmokeCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("smoke", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		planPath   string
		base       string
		jsonOutput bool
	)
	cmd.StringVar(&planPath, "plan", filepath.Join("conformance", "plans", "quick-smoke.yaml"), "Smoke plan (YAML)")
	cmd.StringVar(&base, "base", "", "Directory fixture paths are relative to")
	cmd.BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	if _, err := parseArgs(cmd, args); err != nil {
		return 2
	}
	if base == "" {
		base = filepath.Dir(filepath.Dir(planPath))
	}

	plan, err := conformance.LoadPlan(planPath)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "❌ Test plan not found: %v\n", err)
		return 2
	}

	ctx := context.Background()
	e, err := newEnv(ctx, stderr, envOptions{})
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	defer e.close(ctx)

	res, err := conformance.NewRunner(e.validator).RunPlan(ctx, plan, base)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	if jsonOutput {
		data, _ := gojson.MarshalIndent(res, "", "  ")
		_, _ = fmt.Fprintln(stdout, string(data))
	} else {
		_, _ = fmt.Fprintf(stdout, "🧪 SPP Conformance Smoke Test\n\n📋 %s\n", res.Name)
		for _, test := range res.Tests {
			_, _ = fmt.Fprintf(stdout, "\n🔍 %s\n", test.Name)
			for _, f := range test.Fixtures {
				if f.Valid {
					_, _ = fmt.Fprintf(stdout, "  ✅ %s: Valid\n", filepath.Base(f.Fixture))
				} else {
					_, _ = fmt.Fprintf(stdout, "  ❌ %s: %s\n", filepath.Base(f.Fixture), f.Reason)
				}
			}
		}
		_, _ = fmt.Fprintf(stdout, "\n📊 Results: %d passed, %d failed\n", res.Passed, res.Failed)
	}

	if res.Failed > 0 {
		return 1
	}
	if !jsonOutput {
		_, _ = fmt.Fprintln(stdout, "🎉 All conformance tests passed!")
	}
	return 0
}
