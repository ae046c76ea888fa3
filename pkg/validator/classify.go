package validator

import (
	"path/filepath"
	"strings"
)

// Kind is the parsing branch a file takes.
type Kind int

const (
	KindUnsupported Kind = iota
	KindJSON
	KindSPSMarkdown
	KindBlockMarkdown
)

// SPSSuffix marks markdown files whose metadata lives in front matter.
const SPSSuffix = ".sps.md"

// FileKind is the classification of a path.
type FileKind struct {
	Kind  Kind
	Label string // report fileType, empty when unsupported
	Ext   string
}

// Classify maps a path onto its parsing branch by extension.
func Classify(path string) FileKind {
	ext := filepath.Ext(path)
	switch ext {
	case ".json":
		return FileKind{Kind: KindJSON, Label: "JSON", Ext: ext}
	case ".jsonld":
		return FileKind{Kind: KindJSON, Label: "JSON-LD", Ext: ext}
	case ".md":
		if strings.HasSuffix(path, SPSSuffix) {
			return FileKind{Kind: KindSPSMarkdown, Label: "SPS Markdown", Ext: ext}
		}
		return FileKind{Kind: KindBlockMarkdown, Label: "Markdown with semantic blocks", Ext: ext}
	default:
		return FileKind{Kind: KindUnsupported, Ext: ext}
	}
}
