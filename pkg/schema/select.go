package schema

import (
	"path/filepath"

	"github.com/Mindburn-Labs/spp/pkg/document"
)

// Schema file names in the bundle.
const (
	Semantic   = "semantic.json"
	Meta       = "meta.schema.json"
	SiteConfig = "site-config.schema.json"
	Pub        = "pub.schema.json"
)

// Target pairs the schema to apply with the value it applies to.
type Target struct {
	Name     string
	Instance any
}

// Select picks the schema for a document. Wrapped documents are checked on
// their inner artifact.
func Select(doc *document.Document, filename string) Target {
	base := filepath.Base(filename)
	switch {
	case doc.Shape() == document.ShapeWrapped:
		return Target{Name: Semantic, Instance: doc.Content()}
	case doc.Shape() == document.ShapeJSONLD, base == "meta.jsonld":
		return Target{Name: Meta, Instance: doc.Value()}
	case doc.Shape() == document.ShapeSiteConfig, base == "site.config.json":
		return Target{Name: SiteConfig, Instance: doc.Value()}
	case base == "pub.json":
		return Target{Name: Pub, Instance: doc.Value()}
	default:
		return Target{Name: Semantic, Instance: doc.Value()}
	}
}
