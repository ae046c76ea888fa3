package document

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const fence = "---"

// ParseFrontMatter decodes the YAML header of a markdown document.
//
// The header starts on the first line with "---" and ends at the next line
// consisting of "---" (or "..."). Content without a header yields an empty
// object document.
func ParseFrontMatter(content string) (*Document, error) {
	header, ok, err := splitFrontMatter(content)
	if err != nil {
		return nil, err
	}
	if !ok || strings.TrimSpace(header) == "" {
		return New(map[string]any{}), nil
	}

	var raw any
	if err := yaml.Unmarshal([]byte(header), &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return New(map[string]any{}), nil
	}
	value, err := normalize(raw)
	if err != nil {
		return nil, err
	}
	if _, isObj := value.(map[string]any); !isObj {
		return nil, fmt.Errorf("front matter must be a mapping, got %T", value)
	}
	return New(value), nil
}

func splitFrontMatter(content string) (string, bool, error) {
	content = strings.TrimPrefix(content, "\ufeff")
	lines := strings.SplitAfter(content, "\n")
	if len(lines) == 0 || strings.TrimRight(lines[0], " \t\r\n") != fence {
		return "", false, nil
	}
	var b strings.Builder
	for _, line := range lines[1:] {
		trimmed := strings.TrimRight(line, " \t\r\n")
		if trimmed == fence || trimmed == "..." {
			return b.String(), true, nil
		}
		b.WriteString(line)
	}
	return "", false, fmt.Errorf("front matter is not terminated")
}
