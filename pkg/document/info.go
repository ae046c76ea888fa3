package document

// Party is an author or publisher reference.
type Party struct {
	Name string
	Type string
	URL  string
}

// Info is a display summary of a content item.
type Info struct {
	Format      string
	Title       string
	Description string
	Published   string
	Author      Party
	Publisher   Party
	Keywords    []string
	License     string
	URL         string
	Language    string
}

// Info summarises the content for display. JSON-LD documents read schema.org
// names, every other shape reads the flat semantic names.
func (d *Document) Info() Info {
	c := d.Content()
	if d.shape == ShapeJSONLD {
		return Info{
			Format:      "JSON-LD",
			Title:       or(String(c["name"]), "Untitled"),
			Description: String(c["description"]),
			Published:   or(String(c["datePublished"]), "Unknown"),
			Author:      party(c["author"], "Unknown Author", "", "url"),
			Publisher:   party(c["publisher"], "Unknown Publisher", "", "url"),
			Keywords:    stringList(c["keywords"]),
			License:     String(c["license"]),
			URL:         String(c["url"]),
			Language:    String(c["inLanguage"]),
		}
	}
	return Info{
		Format:      "SPP-Custom",
		Title:       or(String(c["title"]), or(String(c["id"]), "Untitled")),
		Description: String(c["summary"]),
		Published:   or(String(c["date"]), "Unknown"),
		Author:      party(c["author"], "Unknown Author", "Person", "uri"),
		Publisher:   party(c["publisher"], "Unknown Publisher", "Organization", "uri"),
		Keywords:    stringList(c["tags"]),
		License:     String(c["license"]),
		URL:         String(c["canonical"]),
		Language:    String(c["language"]),
	}
}

func party(v any, unknownName, fixedType, urlKey string) Party {
	obj, _ := v.(map[string]any)
	p := Party{
		Name: or(String(obj["name"]), unknownName),
		Type: fixedType,
		URL:  String(obj[urlKey]),
	}
	if p.Type == "" {
		p.Type = or(String(obj["@type"]), "Unknown")
	}
	return p
}

func stringList(v any) []string {
	items, _ := v.([]any)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func or(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
