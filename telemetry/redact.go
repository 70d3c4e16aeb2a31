package telemetry

import (
	"regexp"
	"strings"
)

// sensitiveKey matches field names the redactor must scrub, per spec.md
// §4.11: api_key/api-key/apikey, authorization, token, secret, password.
var sensitiveKey = regexp.MustCompile(`(?i)(api[_-]?key|authorization|token|secret|password)`)

const redacted = "[REDACTED]"

// DefaultMaxChars is the truncation limit applied to string data when no
// override is configured.
const DefaultMaxChars = 2000

// Redact walks data recursively, replacing the value of any key matching
// sensitiveKey with the redacted placeholder. Non-sensitive string values
// longer than maxChars are truncated with an ellipsis. data is not mutated;
// a new map is returned.
func Redact(data map[string]interface{}, maxChars int) map[string]interface{} {
	if data == nil {
		return nil
	}
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		if sensitiveKey.MatchString(k) {
			out[k] = redacted
			continue
		}
		out[k] = redactValue(v, maxChars)
	}
	return out
}

func redactValue(v interface{}, maxChars int) interface{} {
	switch val := v.(type) {
	case string:
		return Truncate(val, maxChars)
	case map[string]interface{}:
		return Redact(val, maxChars)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = redactValue(item, maxChars)
		}
		return out
	default:
		return v
	}
}

// Truncate shortens s to at most maxChars runes, appending an ellipsis when
// truncation occurred.
func Truncate(s string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return strings.TrimSpace(string(runes[:maxChars])) + "..."
}
