// Package slug derives URL- and path-safe identifiers from entity names.
// The slug is always recomputed from the current name, never stored.
package slug

import "strings"

// Make lower-cases s, trims surrounding whitespace and replaces the
// remaining whitespace runs with single hyphens.
func Make(s string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(s)))
	return strings.Join(fields, "-")
}

// FullName builds the slug for a person from first and last name.
func FullName(firstName, lastName string) string {
	return Make(firstName + " " + lastName)
}
