package testutil

import "strings"

// LineOption rewrites the builder's line slice.
type LineOption func([]string) []string

// TrailingComment appends "% text" to the last line.
func TrailingComment(text string) LineOption {
	return func(lines []string) []string {
		if len(lines) == 0 {
			return lines
		}
		lines[len(lines)-1] += " % " + text
		return lines
	}
}

// Indent prefixes every line with n spaces.
func Indent(n int) LineOption {
	pad := strings.Repeat(" ", n)
	return func(lines []string) []string {
		for i, l := range lines {
			if l != "" {
				lines[i] = pad + l
			}
		}
		return lines
	}
}

// Replace swaps one line for another, simulating an edit between passes.
func Replace(index int, line string) LineOption {
	return func(lines []string) []string {
		if index >= 0 && index < len(lines) {
			lines[index] = line
		}
		return lines
	}
}

// InsertBlank inserts an empty line before index.
func InsertBlank(index int) LineOption {
	return func(lines []string) []string {
		if index < 0 || index > len(lines) {
			return lines
		}
		out := make([]string, 0, len(lines)+1)
		out = append(out, lines[:index]...)
		out = append(out, "")
		return append(out, lines[index:]...)
	}
}
