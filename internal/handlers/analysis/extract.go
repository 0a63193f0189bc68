// internal/handlers/analysis/extract.go
package analysis

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var fenceOpen = regexp.MustCompile("(?i)```json\n?")
var fenceAny = regexp.MustCompile("```\n?")

// ExtractJSONObject parses model output into a generic object, tolerating the
// decorations models wrap JSON in. Direct parse first; on failure, markdown
// fences are stripped and the first balanced {...} block is carved out, which
// drops both leading chatter and trailing prose.
func ExtractJSONObject(text string) (map[string]interface{}, error) {
	trimmed := strings.TrimSpace(text)

	var direct map[string]interface{}
	if err := json.Unmarshal([]byte(trimmed), &direct); err == nil && direct != nil {
		return direct, nil
	}

	cleaned := fenceOpen.ReplaceAllString(trimmed, "")
	cleaned = fenceAny.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)

	if idx := strings.Index(cleaned, "{"); idx > 0 {
		cleaned = cleaned[idx:]
	}

	if end := balancedObjectEnd(cleaned); end > 0 {
		cleaned = cleaned[:end]
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, err
	}
	if parsed == nil {
		return nil, fmt.Errorf("parsed data is not an object")
	}
	return parsed, nil
}

// balancedObjectEnd returns the index just past the closing brace of the
// first balanced object, or -1. Brace counting ignores string contents; the
// final json.Unmarshal catches anything this lets through.
func balancedObjectEnd(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}
