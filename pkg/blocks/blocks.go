// Package blocks extracts and checks semantic blocks embedded in markdown.
//
// A block is delimited by HTML comments:
//
//	<!-- sb:block type="quote" source="..." -->
//	body
//	<!-- /sb:block -->
package blocks

import (
	"fmt"
	"regexp"
	"strings"
)

// UnknownType is assigned when a block carries no type attribute.
const UnknownType = "unknown"

var (
	blockPattern = regexp.MustCompile(`(?s)<!-- sb:block([^>]*) -->(.*?)<!-- /sb:block -->`)
	attrPattern  = regexp.MustCompile(`(\w+)="([^"]*)"`)
)

// Confidence levels accepted on the confidence attribute.
var validConfidence = map[string]bool{"low": true, "medium": true, "high": true}

// Block is one delimited region of a markdown document.
type Block struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
	Content    string            `json:"content"`
}

// Result collects the findings of Validate.
type Result struct {
	Errors   []string
	Warnings []string
}

// Extract returns the blocks of content in document order.
func Extract(content string) []Block {
	matches := blockPattern.FindAllStringSubmatch(content, -1)
	out := make([]Block, 0, len(matches))
	for _, m := range matches {
		attrs := make(map[string]string)
		for _, a := range attrPattern.FindAllStringSubmatch(m[1], -1) {
			attrs[a[1]] = a[2]
		}
		typ := attrs["type"]
		if typ == "" {
			typ = UnknownType
		}
		out = append(out, Block{
			Type:       typ,
			Attributes: attrs,
			Content:    strings.TrimSpace(m[2]),
		})
	}
	return out
}

// Validate checks each block independently. Indexes in messages are 1-based.
func Validate(blocks []Block) Result {
	var res Result
	for i, b := range blocks {
		n := i + 1
		if b.Type == "" || b.Type == UnknownType {
			res.Errors = append(res.Errors, fmt.Sprintf("Block %d: Missing or invalid type attribute", n))
		}
		if b.Type == "quote" && b.Attributes["source"] == "" {
			res.Warnings = append(res.Warnings, fmt.Sprintf("Block %d: Quote block should have a source attribute", n))
		}
		if c := b.Attributes["confidence"]; c != "" && !validConfidence[c] {
			res.Warnings = append(res.Warnings, fmt.Sprintf("Block %d: Invalid confidence value \"%s\"", n, c))
		}
		if strings.TrimSpace(b.Content) == "" {
			res.Warnings = append(res.Warnings, fmt.Sprintf("Block %d: Block has empty content", n))
		}
	}
	return res
}

// Types returns the block types in order.
func Types(blocks []Block) []string {
	out := make([]string, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, b.Type)
	}
	return out
}
