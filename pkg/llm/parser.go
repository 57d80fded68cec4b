package llm

import (
	"bytes"
	"encoding/json"
	"strings"
)

// DecodeStructured extracts one structured record from raw model output.
//
// Generative models frequently wrap valid JSON in prose or code fences, or
// append commentary after a complete document. Each fallback is tried only
// if the previous one fails, so the most-specific successful parse wins
// without silently accepting truncated text:
//
//  1. Decode the whole text as a single document.
//  2. If a complete document is followed by trailing data, decode just the
//     first document and discard the remainder.
//  3. Strip a fenced code-block wrapper and retry.
//  4. Scan for the first balanced brace-delimited substring and decode it.
//
// If every strategy fails, a MalformedOutputError carries the first 200
// characters of the original text.
func DecodeStructured(raw string, v any) (err error) {
	trimmed := strings.TrimSpace(raw)

	// Whole text as a single document.
	firstErr := json.Unmarshal([]byte(trimmed), v)
	if firstErr == nil {
		return err
	}

	// A complete document followed by trailing data.
	err = decodeFirstDocument(trimmed, v)
	if err == nil {
		return err
	}

	// Fenced code block around the document.
	if stripped, ok := stripCodeFence(trimmed); ok {
		err = json.Unmarshal([]byte(stripped), v)
		if err == nil {
			return err
		}
	}

	// First balanced brace-delimited substring.
	if candidate, ok := extractBraced(raw); ok {
		err = json.Unmarshal([]byte(candidate), v)
		if err == nil {
			return err
		}
	}

	err = newMalformedOutputError(raw, firstErr)
	return err
}

// decodeFirstDocument decodes the first complete JSON document in text,
// discarding anything after it (model commentary or a second document).
func decodeFirstDocument(text string, v any) (err error) {
	dec := json.NewDecoder(strings.NewReader(text))
	err = dec.Decode(v)
	return err
}

// stripCodeFence removes a leading ``` marker (with optional language tag)
// and the trailing ``` marker.
func stripCodeFence(text string) (stripped string, ok bool) {
	if !strings.HasPrefix(text, "```") {
		return text, false
	}

	stripped = strings.TrimPrefix(text, "```")
	// Drop an optional language tag up to the first newline.
	if idx := strings.IndexByte(stripped, '\n'); idx >= 0 {
		firstLine := strings.TrimSpace(stripped[:idx])
		if firstLine == "" || isLanguageTag(firstLine) {
			stripped = stripped[idx+1:]
		}
	}

	stripped = strings.TrimSpace(stripped)
	stripped = strings.TrimSuffix(stripped, "```")
	stripped = strings.TrimSpace(stripped)

	return stripped, true
}

// isLanguageTag reports whether s looks like a code-fence language tag.
func isLanguageTag(s string) (ok bool) {
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	ok = len(s) > 0
	return ok
}

// extractBraced finds the first balanced {...} substring, tracking quoted
// strings and escape characters so braces inside string values don't count.
func extractBraced(text string) (candidate string, ok bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return candidate, false
	}

	depth := 0
	inString := false
	escaped := false
	var buf bytes.Buffer

	for i := start; i < len(text); i++ {
		ch := text[i]
		buf.WriteByte(ch)

		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' && inString {
			escaped = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch ch {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				candidate = buf.String()
				return candidate, true
			}
		}
	}

	return candidate, false
}
