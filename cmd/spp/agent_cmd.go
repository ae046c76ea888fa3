package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	gojson "github.com/goccy/go-json"

	"github.com/Mindburn-Labs/spp/pkg/document"
	"github.com/Mindburn-Labs/spp/pkg/extensions"
	"github.com/Mindburn-Labs/spp/pkg/trust"
	"github.com/Mindburn-Labs/spp/pkg/validator"
)

var errUnsupported = errors.New("unsupported document type")

// agentFlags are shared by the agent conformance commands.
type agentFlags struct {
	verbose    bool
	jsonOutput bool
	require    multiFlag
}

func parseAgentArgs(name string, args []string, stderr io.Writer, withRequire bool) (string, agentFlags, bool) {
	cmd := flag.NewFlagSet(name, flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var f agentFlags
	cmd.BoolVar(&f.verbose, "verbose", false, "Show calculation details")
	cmd.BoolVar(&f.jsonOutput, "json", false, "Output as JSON")
	if withRequire {
		cmd.Var(&f.require, "require", "Extension id that must be declared (repeatable)")
	}

	rest, err := parseArgs(cmd, args)
	if err != nil {
		return "", f, false
	}
	if len(rest) != 1 {
		_, _ = fmt.Fprintf(stderr, "Error: file path required\nUsage: spp %s <file>\n", name)
		return "", f, false
	}
	return rest[0], f, true
}

// loadDocument parses a JSON document or the front matter of an SPS
// Markdown file.
func loadDocument(path string) (*document.Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch validator.Classify(path).Kind {
	case validator.KindJSON:
		return document.Parse(content)
	case validator.KindSPSMarkdown:
		return document.ParseFrontMatter(string(content))
	default:
		return nil, fmt.Errorf("%w: %s", errUnsupported, path)
	}
}

// agentReport is the JSON form of the agent commands.
type agentReport struct {
	File         string             `json:"file"`
	Info         document.Info      `json:"info"`
	Extensions   *extensionReport   `json:"extensions,omitempty"`
	Endorsements *endorsementReport `json:"endorsements,omitempty"`
	Trust        *trustReport       `json:"trust,omitempty"`
}

type trustReport struct {
	Score     float64         `json:"score"`
	Band      string          `json:"band"`
	Decision  trust.Decision  `json:"decision"`
	Breakdown trust.Breakdown `json:"breakdown"`
}

type extensionStatus struct {
	ID      string `json:"id"`
	Version string `json:"version,omitempty"`
	Known   bool   `json:"known"`
}

type extensionReport struct {
	Declared []extensionStatus `json:"declared"`
	Detected []string          `json:"detected"`
	Missing  []string          `json:"missing,omitempty"`
}

type endorsementReport struct {
	Count  int      `json:"count"`
	Valid  bool     `json:"valid"`
	Issues []string `json:"issues"`
}

func runScoreCmd(args []string, stdout, stderr io.Writer) int {
	path, f, ok := parseAgentArgs("score", args, stderr, false)
	if !ok {
		return 2
	}
	return runAgent(path, f, stdout, stderr, agentSections{trust: true})
}

func runExtensionsCmd(args []string, stdout, stderr io.Writer) int {
	path, f, ok := parseAgentArgs("extensions", args, stderr, true)
	if !ok {
		return 2
	}
	return runAgent(path, f, stdout, stderr, agentSections{extensions: true})
}

func runEndorsementsCmd(args []string, stdout, stderr io.Writer) int {
	path, f, ok := parseAgentArgs("endorsements", args, stderr, false)
	if !ok {
		return 2
	}
	return runAgent(path, f, stdout, stderr, agentSections{endorsements: true})
}

func runAgentCmd(args []string, stdout, stderr io.Writer) int {
	path, f, ok := parseAgentArgs("agent", args, stderr, true)
	if !ok {
		return 2
	}
	return runAgent(path, f, stdout, stderr, agentSections{extensions: true, endorsements: true, trust: true})
}

type agentSections struct {
	extensions   bool
	endorsements bool
	trust        bool
}

func runAgent(path string, f agentFlags, stdout, stderr io.Writer, s agentSections) int {
	ctx := context.Background()
	e, err := newEnv(ctx, stderr, envOptions{verbose: f.verbose})
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	defer e.close(ctx)

	doc, err := loadDocument(path)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "❌ Error reading %s: %v\n", path, err)
		return 2
	}

	rep := agentReport{File: path, Info: doc.Info()}
	code := 0
	if s.extensions {
		rep.Extensions = extensionAnalysis(doc, e.registry, f.require)
		if len(rep.Extensions.Missing) > 0 {
			code = 1
		}
	}
	if s.endorsements {
		chain := trust.ValidateChain(doc.Endorsements())
		rep.Endorsements = &endorsementReport{Count: len(doc.Endorsements()), Valid: chain.Valid, Issues: chain.Issues}
		if !chain.Valid {
			code = 1
		}
	}
	if s.trust {
		b := e.scorer.Explain(doc)
		d := trust.Decide(b.Score)
		rep.Trust = &trustReport{Score: b.Score, Band: trust.Band(b.Score), Decision: d, Breakdown: b}
		e.telemetry.RecordTrustScore(ctx, b.Score, string(d.Action))
	}

	if f.jsonOutput {
		data, err := gojson.MarshalIndent(rep, "", "  ")
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
			return 2
		}
		_, _ = fmt.Fprintln(stdout, string(data))
		return code
	}

	all := s.extensions && s.endorsements && s.trust
	if all {
		_, _ = fmt.Fprintln(stdout, "\n🤖 AGENT CONFORMANCE VALIDATION")
		_, _ = fmt.Fprintln(stdout, strings.Repeat("=", 50))
		_, _ = fmt.Fprintf(stdout, "%s (%s) by %s, published by %s\n",
			rep.Info.Title, rep.Info.Format, rep.Info.Author.Name, rep.Info.Publisher.Name)
	}
	if rep.Extensions != nil {
		printExtensions(stdout, path, rep.Extensions)
	}
	if rep.Endorsements != nil {
		printEndorsements(stdout, path, rep.Endorsements, doc.Endorsements())
	}
	if rep.Trust != nil {
		printTrust(stdout, path, rep.Trust, doc, f.verbose)
	}
	if all {
		_, _ = fmt.Fprintln(stdout, "\n✅ Agent conformance validation complete")
	}
	return code
}

// watchedExtensions are reported individually by the extension analysis.
var watchedExtensions = []struct {
	id    string
	label string
}{
	{"sps:endorsement-chains", "Endorsement Chains"},
	{"sps:trust-weighting", "Trust Weighting"},
	{"sps:time-versioning", "Time Versioning"},
}

func extensionAnalysis(doc *document.Document, registry *extensions.Registry, require []string) *extensionReport {
	rep := &extensionReport{Detected: extensions.Extract(doc.Value())}
	for _, decl := range doc.Extensions() {
		rep.Declared = append(rep.Declared, extensionStatus{ID: decl.ID, Version: decl.Version, Known: registry.IsKnown(decl.ID)})
	}
	for _, id := range require {
		if !doc.Declares(id) {
			rep.Missing = append(rep.Missing, id)
		}
	}
	return rep
}

func printExtensions(w io.Writer, path string, rep *extensionReport) {
	_, _ = fmt.Fprintln(w, "\n🔧 EXTENSION ANALYSIS")
	_, _ = fmt.Fprintln(w, strings.Repeat("=", 50))
	_, _ = fmt.Fprintf(w, "File: %s\n", path)

	if len(rep.Declared) == 0 {
		_, _ = fmt.Fprintln(w, "\n❌ No extensions declared")
	} else {
		_, _ = fmt.Fprintf(w, "\n📦 DECLARED EXTENSIONS (%d)\n", len(rep.Declared))
		declared := make(map[string]bool, len(rep.Declared))
		for i, ext := range rep.Declared {
			declared[ext.ID] = true
			status := "✅"
			if !ext.Known {
				status = "⚠️ "
			}
			_, _ = fmt.Fprintf(w, "  %d. %s %s v%s\n", i+1, status, ext.ID, ext.Version)
		}

		_, _ = fmt.Fprintln(w, "\n🎯 EXTENSION SUPPORT TEST")
		for _, watched := range watchedExtensions {
			state := "❌ NOT SUPPORTED"
			if declared[watched.id] {
				state = "✅ SUPPORTED"
			}
			_, _ = fmt.Fprintf(w, "  %s: %s\n", watched.label, state)
		}
	}

	if len(rep.Detected) > 0 {
		_, _ = fmt.Fprintf(w, "\n🧩 DETECTED IDENTIFIERS: %s\n", strings.Join(rep.Detected, ", "))
	}
	for _, id := range rep.Missing {
		_, _ = fmt.Fprintf(w, "❌ Required extension not declared: %s\n", id)
	}
}

func printEndorsements(w io.Writer, path string, rep *endorsementReport, endorsements []document.Endorsement) {
	_, _ = fmt.Fprintln(w, "\n🤝 ENDORSEMENT VALIDATION")
	_, _ = fmt.Fprintln(w, strings.Repeat("=", 50))
	_, _ = fmt.Fprintf(w, "File: %s\n", path)

	if rep.Valid {
		_, _ = fmt.Fprintln(w, "\n✅ ENDORSEMENT CHAIN VALID")
	} else {
		_, _ = fmt.Fprintln(w, "\n❌ ENDORSEMENT CHAIN ISSUES:")
		for _, issue := range rep.Issues {
			_, _ = fmt.Fprintf(w, "  • %s\n", issue)
		}
	}

	if len(endorsements) == 0 {
		_, _ = fmt.Fprintln(w, "\n📭 No endorsements found")
		return
	}
	_, _ = fmt.Fprintf(w, "\n📋 ENDORSEMENT DETAILS (%d)\n", len(endorsements))
	for i, en := range endorsements {
		_, _ = fmt.Fprintf(w, "\n  %d. %s\n", i+1, orNA(en.Endorser.Name, "Unknown"))
		_, _ = fmt.Fprintf(w, "     ID: %s\n", orNA(en.Endorser.ID, "N/A"))
		_, _ = fmt.Fprintf(w, "     Verdict: %s\n", orNA(en.Verdict, "N/A"))
		_, _ = fmt.Fprintf(w, "     Confidence: %s\n", measure(en.Confidence))
		_, _ = fmt.Fprintf(w, "     Trust Weight: %s\n", measure(en.TrustWeight))
		if len(en.Evidence) > 0 {
			_, _ = fmt.Fprintf(w, "     Evidence: %d item(s)\n", len(en.Evidence))
		}
	}
}

func printTrust(w io.Writer, path string, rep *trustReport, doc *document.Document, verbose bool) {
	_, _ = fmt.Fprintln(w, "\n📊 TRUST SCORE ANALYSIS")
	_, _ = fmt.Fprintln(w, strings.Repeat("=", 50))
	_, _ = fmt.Fprintf(w, "File: %s\n", path)
	_, _ = fmt.Fprintf(w, "Trust Score: %s %.3f (%s TRUST)\n", bandIcon(rep.Band), rep.Score, rep.Band)
	_, _ = fmt.Fprintf(w, "Rendering Decision: %s\n", strings.ToUpper(string(rep.Decision.Action)))
	if rep.Decision.Warning != "" {
		_, _ = fmt.Fprintf(w, "Warning: %s\n", rep.Decision.Warning)
	}

	if n := len(rep.Breakdown.Contributions); n > 0 {
		_, _ = fmt.Fprintf(w, "\n📝 ENDORSEMENTS (%d)\n", n)
		for _, c := range rep.Breakdown.Contributions {
			_, _ = fmt.Fprintf(w, "  %d. %s - %s (%.2f, weight: %.2f from %s)\n",
				c.Index+1, orNA(c.EndorserName, "Unknown"), orNA(c.Verdict, "N/A"), c.Confidence, c.Weight, c.WeightSource)
		}
	}

	signals := doc.TrustSignals()
	if signals.SourceCredibility != nil || len(signals.Extra) > 0 {
		_, _ = fmt.Fprintln(w, "\n🔍 TRUST SIGNALS")
		if signals.SourceCredibility != nil {
			_, _ = fmt.Fprintf(w, "  %s: %v\n", document.SourceCredibilityKey, *signals.SourceCredibility)
		}
		for _, k := range signals.Keys() {
			_, _ = fmt.Fprintf(w, "  %s: %v\n", k, signals.Extra[k])
		}
	}

	if verbose {
		b := rep.Breakdown
		_, _ = fmt.Fprintln(w, "\n🧮 CALCULATION DETAILS")
		_, _ = fmt.Fprintln(w, "Algorithm: Weighted average with source credibility")
		_, _ = fmt.Fprintf(w, "Formula: (endorsement_score * %.1f) + (source_credibility * %.1f)\n", trust.EndorsementShare, trust.CredibilityShare)
		_, _ = fmt.Fprintf(w, "Endorsement score: %.3f (total weight %.3f)\n", b.EndorsementScore, b.TotalWeight)
		credibility := fmt.Sprintf("%.3f", b.SourceCredibility)
		if b.CredibilityDefaulted {
			credibility += " (default)"
		}
		_, _ = fmt.Fprintf(w, "Source credibility: %s\n", credibility)
	}
}

func bandIcon(band string) string {
	switch band {
	case "HIGH":
		return "🟢"
	case "MEDIUM":
		return "🟡"
	case "LOW":
		return "🟠"
	default:
		return "🔴"
	}
}

func measure(m document.Measure) string {
	if !m.Present {
		return "N/A"
	}
	if !m.Numeric {
		return "invalid"
	}
	return fmt.Sprintf("%v", m.Value)
}

func orNA(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
