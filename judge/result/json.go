/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package result provides lenient decoding of JSON objects out of free-text
// model responses. Judges are instructed to answer with strict JSON, but in
// practice responses arrive wrapped in prose, markdown fences, or sentinel
// tags. The contract is best-effort: extract the first object-looking block
// and decode it, or return an error and leave the raw text to the caller.
// No grammar-level repair is attempted.
package result

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractObject returns the first balanced {...} block in the response text.
// Markdown code fences are stripped first so that a fenced response with
// braces in the surrounding prose still yields the fenced payload. Returns
// an empty string if no opening brace is found; an unterminated object is
// returned as-is and left for the decoder to reject.
func ExtractObject(responseText string) string {
	s := stripFences(responseText)

	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
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
				return s[start : i+1]
			}
		}
	}
	return s[start:]
}

// stripFences removes markdown code fences and model sentinel tags around the
// response body. It searches for a ```json block first and falls back to
// trimming inline markers.
func stripFences(responseText string) string {
	s := strings.TrimSpace(responseText)
	s = strings.TrimPrefix(s, "<s>")
	s = strings.TrimSuffix(s, "</s>")
	s = strings.TrimSpace(s)

	// Search for the first ```json fence on its own line and collect content
	// until the closing fence.
	lines := strings.Split(s, "\n")
	var body bytes.Buffer
	inBlock := false
	found := false
	for _, line := range lines {
		if !inBlock && strings.TrimSpace(line) == "```json" {
			inBlock = true
			found = true
			continue
		}
		if inBlock && strings.TrimSpace(line) == "```" {
			break
		}
		if inBlock {
			if body.Len() > 0 {
				body.WriteString("\n")
			}
			body.WriteString(line)
		}
	}
	if found {
		return strings.TrimSpace(body.String())
	}

	// These do nothing if the markers aren't there, so always do it.
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// Decode extracts the first JSON object from a model response and unmarshals
// it into T. On failure the zero value and an error are returned; callers are
// expected to keep the raw response for their audit records.
func Decode[T any](responseText string) (T, error) {
	var out T

	obj := ExtractObject(responseText)
	if obj == "" {
		return out, fmt.Errorf("no JSON object found in response (%d bytes)", len(responseText))
	}

	if err := json.Unmarshal([]byte(obj), &out); err != nil {
		return out, fmt.Errorf("decoding judge response: %w", err)
	}
	return out, nil
}
