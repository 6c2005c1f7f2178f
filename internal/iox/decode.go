package iox

import (
	"encoding/json"
	"strings"
)

// Text decodes captured bytes as UTF-8 and trims exactly one trailing
// newline if present, never more.
func Text(b []byte) string {
	s := string(b)
	s = strings.TrimSuffix(s, "\n")
	return strings.TrimSuffix(s, "\r")
}

// Lines splits captured bytes on '\n' and drops a single trailing empty
// element, so "a\nb\n" decodes to ["a", "b"].
func Lines(b []byte) []string {
	lines := strings.Split(string(b), "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// JSON decodes captured bytes into v.
func JSON(b []byte, v any) error {
	return json.Unmarshal(b, v)
}

// TrimTrailingNewlines removes every trailing newline, the treatment
// command substitution applies to captured output.
func TrimTrailingNewlines(s string) string {
	return strings.TrimRight(s, "\r\n")
}
