// internal/risk/jsonextract.go
package risk

import (
	"errors"
	"strings"

	"github.com/tidwall/gjson"
)

var errNoJSONObject = errors.New("no JSON object found in model output")

// extractJSONObject returns the first balanced JSON object in text. The
// model is instructed to return bare JSON but wraps it in markdown fences or
// prose often enough that scanning is the tolerant option.
func extractJSONObject(text string) (string, error) {
	text = stripFences(text)

	for start := 0; start < len(text); start++ {
		if text[start] != '{' {
			continue
		}
		if end, ok := matchBalanced(text, start); ok {
			candidate := text[start : end+1]
			if gjson.Valid(candidate) {
				return candidate, nil
			}
			// Balanced but not valid JSON; keep scanning from the next
			// opening brace.
		}
	}
	return "", errNoJSONObject
}

// matchBalanced finds the closing brace matching text[start], tracking
// string literals and escapes.
func matchBalanced(text string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// stripFences removes optional surrounding markdown code-fence markers.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = text[len("```json"):]
	} else if strings.HasPrefix(text, "```") {
		text = text[len("```"):]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
