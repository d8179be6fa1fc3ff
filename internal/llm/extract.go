package llm

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoJSONObject is returned when no JSON object can be recovered from a reply.
var ErrNoJSONObject = errors.New("no JSON object found in model reply")

// ExtractJSON recovers a JSON object from a model reply. The reply is first
// stripped of markdown code fences and parsed as-is; if that fails, the span
// from the first '{' to the last '}' is parsed instead.
func ExtractJSON(reply string) (json.RawMessage, error) {
	cleaned := stripFences(reply)

	if isObject(cleaned) {
		return json.RawMessage(cleaned), nil
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end <= start {
		return nil, ErrNoJSONObject
	}

	candidate := cleaned[start : end+1]
	if !isObject(candidate) {
		return nil, ErrNoJSONObject
	}
	return json.RawMessage(candidate), nil
}

// Decode extracts the JSON object from reply and unmarshals it into v.
func Decode(reply string, v interface{}) error {
	raw, err := ExtractJSON(reply)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		// Drop the language tag on the opening fence line, e.g. ```json.
		if nl := strings.IndexByte(s, '\n'); nl != -1 && !strings.Contains(s[:nl], "{") {
			s = s[nl+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func isObject(s string) bool {
	if !strings.HasPrefix(s, "{") {
		return false
	}
	var obj map[string]json.RawMessage
	return json.Unmarshal([]byte(s), &obj) == nil
}
