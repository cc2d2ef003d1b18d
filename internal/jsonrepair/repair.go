// Package jsonrepair recovers a structured record from a near-valid text
// blob. Model responses frequently wrap the JSON object in prose or code
// fences, leave trailing commas, or get truncated mid-object; the passes
// here normalize those defects without ever inventing field values.
package jsonrepair

import (
	"encoding/json"
	"regexp"
	"strings"

	"meeting-minutes-go/internal/types"
)

var trailingComma = regexp.MustCompile(`,(\s*[}\]])`)

var fenceMarkers = []string{"```json", "```yaml", "```text", "```", "`json", "`"}

// Unmarshal parses raw into v. It first attempts a strict parse, then runs
// a bounded sequence of normalization passes, re-parsing after each one.
// Well-formed input is returned untouched. If no pass produces valid JSON
// the original text is preserved inside MalformedOutputError.
func Unmarshal(raw string, v any) error {
	if json.Unmarshal([]byte(raw), v) == nil {
		return nil
	}

	passes := []func(string) string{
		extractObject,
		stripTrailingCommas,
		coerceSingleQuotes,
		escapeControlChars,
		closeOpenBrackets,
	}

	s := raw
	for _, pass := range passes {
		s = pass(s)
		if s == "" {
			continue
		}
		if json.Unmarshal([]byte(s), v) == nil {
			return nil
		}
	}

	return &types.MalformedOutputError{Raw: raw}
}

// extractObject strips markdown fences and any prose before the first '{'
// and after its matching '}'. If the object never closes, everything from
// the first '{' is kept so a later pass can balance it.
func extractObject(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	for _, m := range fenceMarkers {
		s = strings.ReplaceAll(s, m, "")
	}

	start := strings.Index(s, "{")
	if start == -1 {
		return ""
	}

	depth := 0
	inStr := false
	esc := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if esc {
			esc = false
			continue
		}
		switch c {
		case '\\':
			if inStr {
				esc = true
			}
		case '"':
			inStr = !inStr
		case '{':
			if !inStr {
				depth++
			}
		case '}':
			if !inStr {
				depth--
				if depth == 0 {
					return strings.TrimSpace(s[start : i+1])
				}
			}
		}
	}

	// Truncated object: keep the tail for the balancing pass.
	return strings.TrimSpace(s[start:])
}

func stripTrailingCommas(s string) string {
	return trailingComma.ReplaceAllString(s, "$1")
}

// coerceSingleQuotes rewrites '...' delimiters to "..." only when the text
// contains no double quotes at all, the one unambiguous case.
func coerceSingleQuotes(s string) string {
	if strings.Contains(s, `"`) || !strings.Contains(s, "'") {
		return s
	}
	return strings.ReplaceAll(s, "'", `"`)
}

// escapeControlChars escapes raw newlines and tabs inside string literals
// and drops carriage returns.
func escapeControlChars(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inStr := false
	esc := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if esc {
			b.WriteByte(c)
			esc = false
			continue
		}
		switch c {
		case '\\':
			esc = true
			b.WriteByte(c)
		case '"':
			inStr = !inStr
			b.WriteByte(c)
		case '\n':
			if inStr {
				b.WriteString(`\n`)
			} else {
				b.WriteByte(c)
			}
		case '\t':
			if inStr {
				b.WriteString(`\t`)
			} else {
				b.WriteByte(c)
			}
		case '\r':
			if !inStr {
				b.WriteByte(c)
			}
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// closeOpenBrackets terminates an unterminated string literal and appends
// the closers for any brackets still open at end of input.
func closeOpenBrackets(s string) string {
	var stack []byte
	inStr := false
	esc := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if esc {
			esc = false
			continue
		}
		switch c {
		case '\\':
			if inStr {
				esc = true
			}
		case '"':
			inStr = !inStr
		case '{', '[':
			if !inStr {
				stack = append(stack, c)
			}
		case '}':
			if !inStr && len(stack) > 0 && stack[len(stack)-1] == '{' {
				stack = stack[:len(stack)-1]
			}
		case ']':
			if !inStr && len(stack) > 0 && stack[len(stack)-1] == '[' {
				stack = stack[:len(stack)-1]
			}
		}
	}

	if len(stack) == 0 && !inStr {
		return s
	}

	out := s
	if inStr {
		out += `"`
	}
	out = strings.TrimRight(out, " \t\r\n")
	out = strings.TrimRight(out, ",")
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			out += "}"
		} else {
			out += "]"
		}
	}
	return out
}
