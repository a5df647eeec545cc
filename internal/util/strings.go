// Package util provides shared utility functions used across the codebase.
package util

import "strings"

// SplitCSV splits a comma-separated string into its non-empty,
// whitespace-trimmed parts. Returns nil when nothing survives.
func SplitCSV(s string) []string {
	var parts []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

// ContainsFold reports whether substr is within s, ignoring case.
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
