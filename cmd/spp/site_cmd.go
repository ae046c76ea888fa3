package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Mindburn-Labs/spp/pkg/scaffold"
	"github.com/Mindburn-Labs/spp/pkg/validator"
)

func runSampleCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("sample", flag.ContinueOnError)
	cmd.SetOutput(stderr)
	var out string
	cmd.StringVar(&out, "out", "", "Write the sample to this file instead of stdout")
	if _, err := parseArgs(cmd, args); err != nil {
		return 2
	}

	data, err := scaffold.SampleJSON()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	if out == "" {
		_, _ = fmt.Fprintln(stdout, string(data))
		return 0
	}
	if _, err := os.Stat(out); err == nil {
		_, _ = fmt.Fprintf(stderr, "❌ File %s already exists.\n", out)
		return 2
	}
	if err := os.WriteFile(out, append(data, '\n'), 0o644); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	_, _ = fmt.Fprintf(stdout, "✅ Created %s\n", out)
	_, _ = fmt.Fprintf(stdout, "💡 Test with: spp agent %s\n", out)
	return 0
}

func runInitCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("init", flag.ContinueOnError)
	cmd.SetOutput(stderr)
	var output string
	cmd.StringVar(&output, "output", "semantic.json", "Output file name")
	cmd.StringVar(&output, "o", "semantic.json", "Output file name (shorthand)")
	if _, err := parseArgs(cmd, args); err != nil {
		return 2
	}

	if err := scaffold.New().Semantic(output); err != nil {
		if errors.Is(err, scaffold.ErrExists) {
			_, _ = fmt.Fprintf(stderr, "❌ File %s already exists. Use a different output file or remove the existing one.\n", output)
		} else {
			_, _ = fmt.Fprintf(stderr, "❌ Failed to create file: %v\n", err)
		}
		return 2
	}

	base := filepath.Base(output)
	_, _ = fmt.Fprintf(stdout, "✅ Created %s\n", output)
	_, _ = fmt.Fprintln(stdout, "\n📋 Next steps:")
	_, _ = fmt.Fprintf(stdout, "   1. Edit %s with your content details\n", base)
	_, _ = fmt.Fprintf(stdout, "   2. Run: spp validate %s\n", base)
	return 0
}

func runScaffoldCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("scaffold", flag.ContinueOnError)
	cmd.SetOutput(stderr)
	var (
		kindName string
		dir      string
	)
	cmd.StringVar(&kindName, "type", string(scaffold.Blog), "Site template: blog, zine, recipes")
	cmd.StringVar(&kindName, "t", string(scaffold.Blog), "Site template (shorthand)")
	cmd.StringVar(&dir, "dir", ".", "Parent directory for the site")

	rest, err := parseArgs(cmd, args)
	if err != nil {
		return 2
	}
	if len(rest) != 1 || strings.TrimSpace(rest[0]) == "" {
		_, _ = fmt.Fprintln(stderr, "Error: site name is required\nUsage: spp scaffold <sitename> [--type blog|zine|recipes]")
		return 2
	}
	kind, err := scaffold.ParseKind(kindName)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "❌ Error: %v\n", err)
		return 2
	}
	name := rest[0]

	ctx := context.Background()
	e, err := newEnv(ctx, stderr, envOptions{})
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	defer e.close(ctx)

	_, _ = fmt.Fprintf(stdout, "🚀 Creating new %s site: %s\n", kind, name)
	site, err := scaffold.New().Site(dir, name, kind)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "❌ Error: %v\n", err)
		return 2
	}
	_, _ = fmt.Fprintf(stdout, "📄 Created %s\n", site.ConfigPath)
	_, _ = fmt.Fprintf(stdout, "📄 Created %s\n", site.MetaPath)

	_, _ = fmt.Fprintln(stdout, "🔍 Validating generated files...")
	clean := true
	for _, p := range []string{site.ConfigPath, site.MetaPath} {
		r, err := e.validator.ValidateFile(ctx, p, validator.Options{})
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "⚠️  Could not validate %s: %v\n", p, err)
			clean = false
			continue
		}
		for _, msg := range append(r.Errors, r.Warnings...) {
			_, _ = fmt.Fprintf(stdout, "⚠️  %s: %s\n", filepath.Base(p), msg)
			clean = false
		}
	}
	if clean {
		_, _ = fmt.Fprintln(stdout, "✅ All files pass validation!")
	} else {
		_, _ = fmt.Fprintln(stdout, "⚠️  Files created but may have validation issues (see warnings above)")
	}

	_, _ = fmt.Fprintf(stdout, "\n🎉 Successfully created %s site scaffold for: %s\n", kind, name)
	_, _ = fmt.Fprintf(stdout, "\nNext steps:\n  cd %s\n  spp validate site.config.json pubs/first/meta.jsonld\n", site.Dir)
	return 0
}
