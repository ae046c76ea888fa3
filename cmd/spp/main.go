package main

import (
	"fmt"
	"io"
	"os"
)

// Version is the toolkit release.
const Version = "0.4.0"

func main() {
	os.Exit(Run(os.Args, os.Stdout, os.Stderr))
}

// Run is the entrypoint for testing.
//
// Exit codes:
//
//	0 = success
//	1 = validation or conformance failure
//	2 = usage or runtime error
func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 2 {
		printUsage(stderr)
		return 2
	}

	switch args[1] {
	case "validate":
		return runValidateCmd(args[2:], stdout, stderr)
	case "score", "test-trust":
		return runScoreCmd(args[2:], stdout, stderr)
	case "extensions", "test-extensions":
		return runExtensionsCmd(args[2:], stdout, stderr)
	case "endorsements", "test-endorsements":
		return runEndorsementsCmd(args[2:], stdout, stderr)
	case "agent", "validate-agent":
		return runAgentCmd(args[2:], stdout, stderr)
	case "sample", "generate-sample":
		return runSampleCmd(args[2:], stdout, stderr)
	case "init":
		return runInitCmd(args[2:], stdout, stderr)
	case "scaffold":
		return runScaffoldCmd(args[2:], stdout, stderr)
	case "conform", "conformance":
		return runConformCmd(args[2:], stdout, stderr)
	case "smoke":
		return runSmokeCmd(args[2:], stdout, stderr)
	case "release":
		return runReleaseCmd(args[2:], stdout, stderr)
	case "version", "--version":
		_, _ = fmt.Fprintf(stdout, "spp %s\n", Version)
		return 0
	case "help", "--help", "-h":
		printUsage(stdout)
		return 0
	default:
		_, _ = fmt.Fprintf(stderr, "Unknown command: %s\n", args[1])
		printUsage(stderr)
		return 2
	}
}

// ANSI Colors
const (
	ColorReset = "\033[0m"
	ColorBold  = "\033[1m"
	ColorBlue  = "\033[34m"
	ColorGreen = "\033[32m"
	ColorCyan  = "\033[36m"
	ColorGray  = "\033[37m"
)

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "%sSPP Toolkit %s%s\n", ColorBold+ColorBlue, "v"+Version, ColorReset)
	fmt.Fprintf(w, "%sSemantic Publishing Protocol validator and agent tools%s\n", ColorGray, ColorReset)
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "%sUSAGE:%s\n", ColorBold, ColorReset)
	fmt.Fprintln(w, "  spp <command> [flags]")
	fmt.Fprintln(w, "")

	printSection(w, "VALIDATION")
	printCommand(w, "validate", "Validate .json, .jsonld, .sps.md or .md files (--json, --extensions-only)")
	printCommand(w, "conform", "Check conformance fixtures (--dir, --json)")
	printCommand(w, "smoke", "Run a YAML smoke plan (--plan)")

	printSection(w, "AGENT CONFORMANCE")
	printCommand(w, "score", "Compute trust score and rendering decision")
	printCommand(w, "extensions", "Analyse declared extensions (--require)")
	printCommand(w, "endorsements", "Check the endorsement chain")
	printCommand(w, "agent", "Run extensions, endorsements and score together")
	printCommand(w, "sample", "Print a sample semantic document")

	printSection(w, "AUTHORING")
	printCommand(w, "init", "Write a starter semantic.json (--output)")
	printCommand(w, "scaffold", "Create a drop site (--type blog|zine|recipes)")
	printCommand(w, "release", "Snapshot schemas into a versioned release")

	printSection(w, "UTILITIES")
	printCommand(w, "version", "Show version information")
	printCommand(w, "help", "Show this help")
	fmt.Fprintln(w, "")
}

func printSection(w io.Writer, title string) {
	fmt.Fprintf(w, "%s%s:%s\n", ColorBold+ColorCyan, title, ColorReset)
}

func printCommand(w io.Writer, name, desc string) {
	fmt.Fprintf(w, "  %s%-14s%s %s\n", ColorGreen, name, ColorReset, desc)
}
