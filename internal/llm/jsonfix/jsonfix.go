// Package jsonfix coerces free-form model output into a JSON object.
package jsonfix

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// ErrNoJSON is returned when no JSON object can be recovered from the text.
var ErrNoJSON = errors.New("no json object found")

var (
	fencedJSON    = regexp.MustCompile("(?is)```json\\s*(\\{.*?\\})\\s*```")
	trailingComma = regexp.MustCompile(`,\s*([}\]])`)
)

// Parse recovers a JSON object from text. It tries the text as-is, then a
// ```json fenced block, then the span between the first '{' and the last '}'.
// Candidates from the last two steps get trailing commas removed and are
// retried with single quotes swapped for double quotes.
func Parse(text string) (map[string]any, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoJSON
	}

	if obj, ok := decodeObject(text); ok {
		return obj, nil
	}

	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		if obj, ok := decodeRepaired(m[1]); ok {
			return obj, nil
		}
	}

	if span, ok := objectSpan(text); ok {
		if obj, ok := decodeRepaired(span); ok {
			return obj, nil
		}
	}
	return nil, ErrNoJSON
}

// Clean strips markdown fences and backticks and returns the JSON object
// span. The result is not validated.
func Clean(text string) (string, error) {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.Trim(s, "`")
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
		return s, nil
	}
	span, ok := objectSpan(s)
	if !ok {
		return "", ErrNoJSON
	}
	return span, nil
}

// Decode runs Clean and unmarshals the result into a generic object.
func Decode(text string) (map[string]any, error) {
	s, err := Clean(text)
	if err != nil {
		return nil, err
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, ErrNoJSON
	}
	return obj, nil
}

func objectSpan(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

func decodeRepaired(candidate string) (map[string]any, bool) {
	candidate = trailingComma.ReplaceAllString(candidate, "$1")
	if obj, ok := decodeObject(candidate); ok {
		return obj, true
	}
	return decodeObject(strings.ReplaceAll(candidate, "'", `"`))
}

func decodeObject(s string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}
