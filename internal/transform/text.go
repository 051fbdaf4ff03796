package transform

import "strings"

// NormalizeText collapses every run of whitespace to a single space and
// trims the ends. Idempotent: normalizing normalized text returns it
// unchanged. Applied per text node; sibling text runs are never merged, so
// formatting boundaries survive.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// trimRawBlock trims outer whitespace from pre-formatted passthrough text
// while keeping interior blank lines.
func trimRawBlock(s string) string {
	return strings.TrimSpace(s)
}
