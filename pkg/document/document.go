// Package document models semantic publishing metadata as a generic JSON tree.
//
// A Document is classified once into a Shape when it is constructed. Typed
// views (endorsements, trust signals, extension declarations, summary info)
// read from the shape-appropriate content object so consumers never probe the
// raw structure themselves.
package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	gojson "github.com/goccy/go-json"
)

// Shape is the structural variant of a document.
type Shape string

const (
	// ShapeLegacyFlat is the flat semantic.json form (protocolVersion, title, endorsements, ...).
	ShapeLegacyFlat Shape = "legacy"
	// ShapeJSONLD is schema.org style metadata carrying @context and @type.
	ShapeJSONLD Shape = "jsonld"
	// ShapeWrapped wraps the content object under a top-level "artifact" key.
	ShapeWrapped Shape = "wrapped"
	// ShapeSiteConfig is a site.config.json document.
	ShapeSiteConfig Shape = "site-config"
	// ShapeUnrecognized matches none of the known forms.
	ShapeUnrecognized Shape = "unrecognized"
)

// legacyKeys mark the flat semantic form.
var legacyKeys = []string{"protocolVersion", "title", "id", "author", "endorsements", "trust_signals", "extensions"}

// Document is one parsed metadata document.
type Document struct {
	value any
	root  map[string]any
	shape Shape
}

// New wraps an already decoded JSON value.
func New(value any) *Document {
	root, _ := value.(map[string]any)
	return &Document{value: value, root: root, shape: Classify(value)}
}

// Parse decodes JSON bytes. Numbers are kept as json.Number.
func Parse(data []byte) (*Document, error) {
	dec := gojson.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}
	return New(v), nil
}

// Classify determines the structural variant of a decoded value.
func Classify(value any) Shape {
	root, ok := value.(map[string]any)
	if !ok {
		return ShapeUnrecognized
	}
	if inner, ok := root["artifact"].(map[string]any); ok && inner != nil {
		return ShapeWrapped
	}
	_, hasContext := root["@context"]
	_, hasType := root["@type"]
	if hasContext && hasType {
		return ShapeJSONLD
	}
	if _, ok := root["siteMetadata"].(map[string]any); ok {
		return ShapeSiteConfig
	}
	for _, k := range legacyKeys {
		if _, ok := root[k]; ok {
			return ShapeLegacyFlat
		}
	}
	return ShapeUnrecognized
}

// Value returns the decoded value as parsed.
func (d *Document) Value() any { return d.value }

// Root returns the top-level object, or nil when the value is not an object.
func (d *Document) Root() map[string]any { return d.root }

// Shape returns the classification computed at construction.
func (d *Document) Shape() Shape { return d.shape }

// Content returns the object carrying content metadata: the inner artifact
// for wrapped documents, the root otherwise.
func (d *Document) Content() map[string]any {
	if d.shape == ShapeWrapped {
		inner, _ := d.root["artifact"].(map[string]any)
		return inner
	}
	return d.root
}

// Number converts a decoded JSON number to float64.
func Number(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// String returns v when it is a string.
func String(v any) string {
	s, _ := v.(string)
	return s
}

// normalize converts a YAML decoded tree into JSON-compatible values.
func normalize(v any) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			n, err := normalize(val)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("non-string key %v", k)
			}
			n, err := normalize(val)
			if err != nil {
				return nil, err
			}
			out[key] = n
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			n, err := normalize(val)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case int:
		return json.Number(strconv.Itoa(t)), nil
	case int64:
		return json.Number(strconv.FormatInt(t, 10)), nil
	case uint64:
		return json.Number(strconv.FormatUint(t, 10)), nil
	case float64:
		return json.Number(strconv.FormatFloat(t, 'g', -1, 64)), nil
	case time.Time:
		return t.UTC().Format(time.RFC3339), nil
	default:
		return v, nil
	}
}
