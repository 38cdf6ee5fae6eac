package common

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSONObject returns the substring between the first '{' and the last
// '}' of response. It is the single prose-stripping step applied to model
// output; nothing else is repaired.
func ExtractJSONObject(response string) (string, bool) {
	start := strings.IndexByte(response, '{')
	if start == -1 {
		return "", false
	}
	end := strings.LastIndexByte(response, '}')
	if end <= start {
		return "", false
	}
	return response[start : end+1], true
}

// ParseJSON unmarshals response into T. When the whole text is not valid JSON
// it retries once on the extracted object substring.
func ParseJSON[T any](response string) (T, error) {
	var result T
	if err := json.Unmarshal([]byte(strings.TrimSpace(response)), &result); err == nil {
		return result, nil
	}

	jsonStr, ok := ExtractJSONObject(response)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: no JSON object found in response", ErrDataShape)
	}

	result = *new(T)
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		var zero T
		return zero, fmt.Errorf("%w: failed to unmarshal JSON: %v", ErrDataShape, err)
	}
	return result, nil
}

// Truncate cuts s to max runes, ending with "..." when something was cut.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
