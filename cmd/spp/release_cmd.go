package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Mindburn-Labs/spp/pkg/schema"
	"github.com/Mindburn-Labs/spp/schemas"
)

// runReleaseCmd implements `spp release <version>`: a checksummed snapshot
// of the schema set under <out>/<version>.
func runReleaseCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("release", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		schemaDir string
		out       string
	)
	cmd.StringVar(&schemaDir, "schema-dir", "", "Schema directory to release (default: embedded bundle)")
	cmd.StringVar(&out, "out", filepath.Join("schemas", "releases"), "Releases directory")

	rest, err := parseArgs(cmd, args)
	if err != nil {
		return 2
	}
	if len(rest) != 1 {
		_, _ = fmt.Fprintln(stderr, "Usage: spp release <version> [--schema-dir dir] [--out dir]")
		return 2
	}

	var (
		src   fs.FS = schemas.FS
		label       = "embedded"
	)
	if schemaDir != "" {
		src, label = os.DirFS(schemaDir), schemaDir
	}

	manifest, err := schema.Release(context.Background(), src, out, rest[0], schema.WithSourceLabel(label))
	switch {
	case errors.Is(err, schema.ErrInvalidVersion):
		_, _ = fmt.Fprintf(stderr, "❌ Invalid version: %s\n", rest[0])
		return 2
	case errors.Is(err, schema.ErrReleaseExists):
		_, _ = fmt.Fprintf(stderr, "❌ Release already exists: %s\n", filepath.Join(out, rest[0]))
		return 2
	case err != nil:
		_, _ = fmt.Fprintf(stderr, "❌ Release failed: %v\n", err)
		return 2
	}

	_, _ = fmt.Fprintf(stdout, "📦 Released %d schema(s) as %s\n", len(manifest.Files), manifest.Version)
	for _, f := range manifest.Files {
		_, _ = fmt.Fprintf(stdout, "  %s  %s\n", f.SHA256[:12], f.Path)
	}
	_, _ = fmt.Fprintf(stdout, "✅ Wrote %s\n", filepath.Join(out, manifest.Version))
	return 0
}
