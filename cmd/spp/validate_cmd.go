package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	gojson "github.com/goccy/go-json"

	"github.com/Mindburn-Labs/spp/pkg/discovery"
	"github.com/Mindburn-Labs/spp/pkg/validator"
)

// runValidateCmd implements `spp validate [files...]`. Without files it
// validates the protocol files found below the working directory.
func runValidateCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("validate", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		schemaDir      string
		extensionsOnly bool
		verbose        bool
		jsonOutput     bool
	)
	cmd.StringVar(&schemaDir, "schema-dir", "", "Schema directory (default: embedded bundle)")
	cmd.BoolVar(&extensionsOnly, "extensions-only", false, "Only check extensions, skip schema validation")
	cmd.BoolVar(&verbose, "verbose", false, "Verbose output")
	cmd.BoolVar(&verbose, "v", false, "Verbose output (shorthand)")
	cmd.BoolVar(&jsonOutput, "json", false, "Output results as JSON")

	files, err := parseArgs(cmd, args)
	if err != nil {
		return 2
	}

	ctx := context.Background()
	e, err := newEnv(ctx, stderr, envOptions{schemaDir: schemaDir, verbose: verbose})
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	defer e.close(ctx)

	if len(files) == 0 {
		files, err = discovery.NewFinder().Find(ctx, ".", nil)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
			return 2
		}
		if len(files) == 0 {
			_, _ = fmt.Fprintln(stdout, "ℹ️  No files specified and no common semantic files found.")
			_, _ = fmt.Fprintln(stdout, "Usage: spp validate <file1> [file2] ...")
			return 0
		}
		if !jsonOutput {
			_, _ = fmt.Fprintf(stdout, "📋 Found %d file(s) to validate:\n", len(files))
			for _, f := range files {
				_, _ = fmt.Fprintf(stdout, "   - %s\n", f)
			}
			_, _ = fmt.Fprintln(stdout)
		}
	}

	batch, err := e.validator.ValidateBatch(ctx, files, validator.Options{ExtensionsOnly: extensionsOnly})
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: validation run failed: %v\n", err)
		return 2
	}

	if jsonOutput {
		data, err := gojson.MarshalIndent(batch, "", "  ")
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
			return 2
		}
		_, _ = fmt.Fprintln(stdout, string(data))
	} else {
		for _, res := range batch.Results {
			if res.Err != nil {
				_, _ = fmt.Fprintf(stderr, "❌ %v\n", res.Err)
				continue
			}
			printReport(stdout, res.Path, res.Report, verbose)
		}
	}

	if batch.Failed > 0 {
		return 1
	}
	return 0
}

func printReport(w io.Writer, path string, r *validator.Report, verbose bool) {
	noisy := len(r.Errors) > 0 || len(r.Warnings) > 0 || len(r.Issues) > 0
	if verbose || noisy {
		_, _ = fmt.Fprintf(w, "\n📋 Validation Report for: %s\n", path)
		_, _ = fmt.Fprintln(w, strings.Repeat("═", 50))
		if r.FileType != "" {
			_, _ = fmt.Fprintf(w, "📄 File Type: %s\n", r.FileType)
		}
		if len(r.Extensions) > 0 {
			_, _ = fmt.Fprintf(w, "🧩 Extensions Used: %s\n", strings.Join(r.Extensions, ", "))
		}
		printList(w, "\n❌ Errors", r.Errors)
		printList(w, "\n⚠️  Warnings", r.Warnings)
		printList(w, "\n🤝 Endorsement Issues", r.Issues)
		if !noisy {
			_, _ = fmt.Fprintln(w, "\n✅ All validations passed!")
		}
	}
	if r.Valid() {
		_, _ = fmt.Fprintf(w, "✅ %s is valid\n", path)
	}
}

func printList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	_, _ = fmt.Fprintf(w, "%s (%d):\n", title, len(items))
	for i, item := range items {
		_, _ = fmt.Fprintf(w, "  %d. %s\n", i+1, item)
	}
}
