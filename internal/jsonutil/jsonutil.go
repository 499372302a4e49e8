// Package jsonutil parses JSON documents out of generative-model responses.
//
// Models asked to return JSON routinely wrap it in markdown code fences, tag
// it with a literal "json" language marker, or pad it with prose. Every stage
// that expects a JSON document goes through Unmarshal so the unwrapping rules
// are applied uniformly. A parse failure after unwrapping is not retryable —
// the response itself is malformed — so callers treat it as fatal and keep
// the raw text for diagnosis.
package jsonutil

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StripFences removes a surrounding ``` fence pair and a leading "json"
// language tag from text. Text without fences is returned trimmed but
// otherwise untouched.
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```")
	if end := strings.LastIndex(text, "```"); end >= 0 {
		text = text[:end]
	}

	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "json")
	return strings.TrimSpace(text)
}

// extract returns the JSON object or array embedded in text, tolerating
// prose before the opening delimiter and after the closing one.
func extract(text string) (string, error) {
	objIdx := strings.Index(text, "{")
	arrIdx := strings.Index(text, "[")

	if objIdx == -1 && arrIdx == -1 {
		return "", fmt.Errorf("no JSON object or array in text")
	}

	start := objIdx
	closer := "}"
	if objIdx == -1 || (arrIdx != -1 && arrIdx < objIdx) {
		start = arrIdx
		closer = "]"
	}

	text = text[start:]
	end := strings.LastIndex(text, closer)
	if end == -1 {
		return "", fmt.Errorf("no closing %s in text", closer)
	}
	return text[:end+1], nil
}

// Unmarshal strips fences from a raw model response, extracts the embedded
// JSON document, and unmarshals it into T. The returned error, if any,
// describes the raw response only by length and preview — callers that need
// the full raw text for diagnosis keep their own copy.
func Unmarshal[T any](raw string) (T, error) {
	var zero T

	text := StripFences(raw)
	doc, err := extract(text)
	if err != nil {
		return zero, fmt.Errorf("%w (response length %d)", err, len(raw))
	}

	var out T
	if err := json.Unmarshal([]byte(doc), &out); err != nil {
		preview := doc
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		return zero, fmt.Errorf("invalid JSON: %w (text: %s)", err, preview)
	}
	return out, nil
}

// Raw validates that a model response contains a well-formed JSON document
// and returns it as compact bytes, preserving the original field order and
// values. Used where the document shape is model-defined and should pass
// through untouched, such as translation output.
func Raw(raw string) (json.RawMessage, error) {
	text := StripFences(raw)
	doc, err := extract(text)
	if err != nil {
		return nil, err
	}
	if !json.Valid([]byte(doc)) {
		return nil, fmt.Errorf("model response is not valid JSON (length %d)", len(doc))
	}
	return json.RawMessage(doc), nil
}
