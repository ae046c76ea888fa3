package document

import "sort"

// Measure is an optional numeric field as it appeared in the document.
type Measure struct {
	Value   float64
	Present bool // key present with a non-null value
	Numeric bool // value is a JSON number
}

// Valid reports whether the field is present and numeric.
func (m Measure) Valid() bool { return m.Present && m.Numeric }

// Or returns the value when valid, else def.
func (m Measure) Or(def float64) float64 {
	if m.Valid() {
		return m.Value
	}
	return def
}

// InUnit reports whether a valid value lies in [0,1].
func (m Measure) InUnit() bool {
	return m.Valid() && m.Value >= 0 && m.Value <= 1
}

func measure(obj map[string]any, key string) Measure {
	v, ok := obj[key]
	if !ok || v == nil {
		return Measure{}
	}
	f, numeric := Number(v)
	return Measure{Value: f, Present: true, Numeric: numeric}
}

// Endorser identifies the party behind an endorsement.
type Endorser struct {
	ID   string
	Name string
	URI  string
}

// Endorsement is a third party's recorded judgment about a content item.
type Endorsement struct {
	Endorser    Endorser
	Verdict     string
	Confidence  Measure
	TrustWeight Measure
	Date        string
	Evidence    []string
	Signature   string
}

// Endorsements returns the content's endorsement list in document order.
// Entries that are not objects yield zero-valued endorsements so positional
// indexes stay aligned with the source array.
func (d *Document) Endorsements() []Endorsement {
	items, _ := d.Content()["endorsements"].([]any)
	out := make([]Endorsement, 0, len(items))
	for _, item := range items {
		obj, _ := item.(map[string]any)
		out = append(out, endorsementFrom(obj))
	}
	return out
}

func endorsementFrom(obj map[string]any) Endorsement {
	if obj == nil {
		return Endorsement{}
	}
	e := Endorsement{
		Verdict:     String(obj["verdict"]),
		Confidence:  measure(obj, "confidence"),
		TrustWeight: measure(obj, "trust_weight"),
		Date:        String(obj["date"]),
		Signature:   String(obj["signature"]),
	}
	if who, ok := obj["endorser"].(map[string]any); ok {
		e.Endorser = Endorser{
			ID:   String(who["id"]),
			Name: String(who["name"]),
			URI:  String(who["uri"]),
		}
	}
	if ev, ok := obj["evidence"].([]any); ok {
		for _, item := range ev {
			if s, ok := item.(string); ok {
				e.Evidence = append(e.Evidence, s)
			}
		}
	}
	return e
}

// SourceCredibilityKey is the trust signal that participates in scoring.
const SourceCredibilityKey = "source_credibility"

// TrustSignals are document-level trust indicators.
type TrustSignals struct {
	// SourceCredibility is set only when the signal is present and numeric.
	SourceCredibility *float64
	// Extra holds every other signal untouched.
	Extra map[string]any
}

// Keys returns the names of the informational signals, sorted.
func (s TrustSignals) Keys() []string {
	keys := make([]string, 0, len(s.Extra))
	for k := range s.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// TrustSignals returns the content's trust_signals mapping.
func (d *Document) TrustSignals() TrustSignals {
	raw, _ := d.Content()["trust_signals"].(map[string]any)
	ts := TrustSignals{Extra: make(map[string]any, len(raw))}
	for k, v := range raw {
		if k == SourceCredibilityKey {
			if f, ok := Number(v); ok {
				ts.SourceCredibility = &f
				continue
			}
		}
		ts.Extra[k] = v
	}
	return ts
}

// ExtensionDecl is one entry of the extensions array.
type ExtensionDecl struct {
	ID      string
	Version string
}

// Extensions returns declared extensions in document order. Duplicates are kept.
func (d *Document) Extensions() []ExtensionDecl {
	items, _ := d.Content()["extensions"].([]any)
	out := make([]ExtensionDecl, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, ExtensionDecl{ID: String(obj["id"]), Version: String(obj["version"])})
	}
	return out
}

// Declares reports whether every id is declared.
func (d *Document) Declares(ids ...string) bool {
	declared := make(map[string]bool)
	for _, decl := range d.Extensions() {
		declared[decl.ID] = true
	}
	for _, id := range ids {
		if !declared[id] {
			return false
		}
	}
	return true
}
