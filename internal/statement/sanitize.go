package statement

import (
	"regexp"
	"strings"
)

// codeFence matches ``` with an optional language tag (```json, ```JSON, ```).
var codeFence = regexp.MustCompile("```[A-Za-z0-9_+-]*")

// Sanitize strips Markdown fences and surrounding commentary from a model answer
// and returns the span most likely to be a JSON object. The span from the first
// '{' to the last '}' is returned byte for byte, fence-like text inside string
// values included. Text without a brace pair loses its fences and is trimmed.
func Sanitize(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start != -1 && end != -1 && start < end {
		return raw[start : end+1]
	}

	return strings.TrimSpace(codeFence.ReplaceAllString(raw, ""))
}
