// Package scaffold generates starter protocol files: drop sites, a semantic
// document template and the conformance sample.
package scaffold

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	gojson "github.com/goccy/go-json"
)

// ProtocolVersion is stamped into generated files.
const ProtocolVersion = "1.0.0"

var (
	// ErrExists is returned instead of overwriting a file or directory.
	ErrExists = errors.New("scaffold: target already exists")
	// ErrUnknownKind is returned for an unsupported site template.
	ErrUnknownKind = errors.New("scaffold: unknown site template")
	// ErrEmptyName is returned when no site name is given.
	ErrEmptyName = errors.New("scaffold: site name is required")
)

// Kind names a site template.
type Kind string

const (
	Blog    Kind = "blog"
	Zine    Kind = "zine"
	Recipes Kind = "recipes"
)

// Kinds lists the supported templates.
var Kinds = []Kind{Blog, Zine, Recipes}

type template struct {
	description string
	topics      []string
	contentType string
	metaType    string
	metaName    string
	metaDesc    string
	keywords    []string
}

var templates = map[Kind]template{
	Blog: {
		description: "A personal blog sharing thoughts and experiences",
		topics:      []string{"personal", "thoughts", "experiences"},
		contentType: "article",
		metaType:    "BlogPosting",
		metaName:    "Welcome to My Blog",
		metaDesc:    "The first post of my new blog",
		keywords:    []string{"blog", "personal", "welcome"},
	},
	Zine: {
		description: "An independent zine publication",
		topics:      []string{"culture", "arts", "independent"},
		contentType: "article",
		metaType:    "Article",
		metaName:    "Welcome to Our Zine",
		metaDesc:    "The inaugural issue of our independent zine",
		keywords:    []string{"zine", "independent", "culture", "arts"},
	},
	Recipes: {
		description: "A collection of delicious recipes",
		topics:      []string{"cooking", "recipes", "food"},
		contentType: "article",
		metaType:    "Recipe",
		metaName:    "My First Recipe",
		metaDesc:    "A simple recipe to get started",
		keywords:    []string{"recipe", "cooking", "food"},
	},
}

// SiteConfig is the generated site.config.json.
type SiteConfig struct {
	ProtocolVersion    string             `json:"protocolVersion"`
	SiteMetadata       SiteMetadata       `json:"siteMetadata"`
	PublishingSettings PublishingSettings `json:"publishingSettings"`
	TrustSettings      TrustSettings      `json:"trustSettings"`
}

type SiteMetadata struct {
	Name        string        `json:"name"`
	URL         string        `json:"url"`
	Description string        `json:"description"`
	Language    string        `json:"language"`
	Publisher   SitePublisher `json:"publisher"`
	Topics      []string      `json:"topics"`
	License     string        `json:"license"`
}

type SitePublisher struct {
	Name             string `json:"name"`
	OrganizationType string `json:"organizationType"`
}

type PublishingSettings struct {
	DefaultContentType string `json:"defaultContentType"`
	EnableAnalytics    bool   `json:"enableAnalytics"`
	EnableComments     bool   `json:"enableComments"`
}

type TrustSettings struct {
	VerificationLevel string `json:"verificationLevel"`
	AllowEndorsements bool   `json:"allowEndorsements"`
}

// Meta is the generated pubs/first/meta.jsonld.
type Meta struct {
	Context         string   `json:"@context"`
	Type            string   `json:"@type"`
	Name            string   `json:"name"`
	DatePublished   string   `json:"datePublished"`
	ProtocolVersion string   `json:"protocolVersion"`
	Author          Agent    `json:"author"`
	Description     string   `json:"description"`
	Publisher       Agent    `json:"publisher"`
	Keywords        []string `json:"keywords"`
	License         string   `json:"license"`
	InLanguage      string   `json:"inLanguage"`
}

// Agent is a JSON-LD person or organization.
type Agent struct {
	Type string `json:"@type"`
	Name string `json:"name"`
}

// Site lists the files written by Generator.Site.
type Site struct {
	Dir        string
	ConfigPath string
	MetaPath   string
}

// Generator writes scaffolds. The zero value is not usable; call New.
type Generator struct {
	now func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock sets the clock used for publication dates.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// New returns a Generator.
func New(opts ...Option) *Generator {
	g := &Generator{now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ParseKind resolves a template name.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if _, ok := templates[k]; !ok {
		return "", fmt.Errorf("%w: %q (valid: blog, zine, recipes)", ErrUnknownKind, s)
	}
	return k, nil
}

// NewSiteConfig builds the site configuration for name.
func NewSiteConfig(name string, kind Kind) SiteConfig {
	t := templates[kind]
	return SiteConfig{
		ProtocolVersion: ProtocolVersion,
		SiteMetadata: SiteMetadata{
			Name:        capitalize(name),
			URL:         "https://" + strings.ToLower(name) + ".example.com",
			Description: t.description,
			Language:    "en",
			Publisher:   SitePublisher{Name: name + " Publisher", OrganizationType: "individual"},
			Topics:      t.topics,
			License:     "CC-BY-4.0",
		},
		PublishingSettings: PublishingSettings{
			DefaultContentType: t.contentType,
			EnableAnalytics:    true,
		},
		TrustSettings: TrustSettings{VerificationLevel: "none", AllowEndorsements: true},
	}
}

// NewMeta builds the first publication's JSON-LD metadata.
func NewMeta(name string, kind Kind, published time.Time) Meta {
	t := templates[kind]
	return Meta{
		Context:         "https://schema.org",
		Type:            t.metaType,
		Name:            t.metaName,
		DatePublished:   published.UTC().Format(time.RFC3339),
		ProtocolVersion: ProtocolVersion,
		Author:          Agent{Type: "Person", Name: name + " Author"},
		Description:     t.metaDesc,
		Publisher:       Agent{Type: "Person", Name: name + " Publisher"},
		Keywords:        t.keywords,
		License:         "CC-BY-4.0",
		InLanguage:      "en",
	}
}

// Site creates root/name with site.config.json and pubs/first/meta.jsonld.
// An existing site directory is left untouched.
func (g *Generator) Site(root, name string, kind Kind) (*Site, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if _, ok := templates[kind]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	dir := filepath.Join(root, name)
	if err := absent(dir); err != nil {
		return nil, err
	}
	pubs := filepath.Join(dir, "pubs", "first")
	if err := os.MkdirAll(pubs, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", pubs, err)
	}

	site := &Site{
		Dir:        dir,
		ConfigPath: filepath.Join(dir, "site.config.json"),
		MetaPath:   filepath.Join(pubs, "meta.jsonld"),
	}
	if err := writeJSON(site.ConfigPath, NewSiteConfig(name, kind)); err != nil {
		return nil, err
	}
	if err := writeJSON(site.MetaPath, NewMeta(name, kind, g.now())); err != nil {
		return nil, err
	}
	return site, nil
}

// SemanticTemplate returns a starter semantic document.
func (g *Generator) SemanticTemplate() map[string]any {
	return map[string]any{
		"$schema":      "https://schemas.spp.dev/semantic.json",
		"id":           "example:content",
		"type":         "article",
		"title":        "Your Content Title",
		"language":     "en",
		"authors":      []any{map[string]any{"name": "Your Name"}},
		"published_at": g.now().UTC().Format(time.RFC3339),
		"content": map[string]any{
			"format": "markdown",
			"value":  "Your content goes here. This can be markdown, HTML, or plain text.",
		},
		"links": []any{
			map[string]any{"rel": "canonical", "href": "https://example.com/your-content"},
		},
		"provenance": map[string]any{
			"mode":         "authoritative",
			"source_url":   "https://example.com/your-content",
			"content_hash": "sha256:" + strings.Repeat("0", 64),
		},
		"version": 1,
	}
}

// Semantic writes SemanticTemplate to path unless path exists.
func (g *Generator) Semantic(path string) error {
	if err := absent(path); err != nil {
		return err
	}
	return writeJSON(path, g.SemanticTemplate())
}

// Sample returns a fully endorsed document for exercising consumers.
func Sample() map[string]any {
	return map[string]any{
		"id":              "sample:news-article",
		"title":           "Sample News Article for Testing",
		"protocolVersion": ProtocolVersion,
		"author":          map[string]any{"name": "Test Author", "id": "author:test"},
		"publisher":       map[string]any{"name": "Test Publisher", "id": "publisher:test"},
		"extensions": []any{
			map[string]any{"id": "sps:endorsement-chains", "version": "0.3.0"},
			map[string]any{"id": "sps:trust-weighting", "version": "0.3.0"},
		},
		"endorsements": []any{
			map[string]any{
				"endorser": map[string]any{
					"name": "Test Fact Checker",
					"id":   "endorser:test-factcheck",
					"uri":  "https://test-factcheck.org",
				},
				"verdict":      "accurate",
				"confidence":   0.92,
				"date":         "2025-01-15T14:30:00Z",
				"trust_weight": 0.85,
				"evidence":     []any{"https://example.org/evidence"},
			},
		},
		"trust_signals": map[string]any{
			"source_credibility":    0.8,
			"fact_checked":          true,
			"aggregate_trust_score": 0.87,
		},
	}
}

// SampleJSON renders Sample indented.
func SampleJSON() ([]byte, error) {
	return gojson.MarshalIndent(Sample(), "", "  ")
}

func absent(path string) error {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return fmt.Errorf("%w: %s", ErrExists, path)
	case errors.Is(err, fs.ErrNotExist):
		return nil
	default:
		return fmt.Errorf("stat %s: %w", path, err)
	}
}

func writeJSON(path string, v any) error {
	raw, err := gojson.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(raw, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
