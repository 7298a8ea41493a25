// Package borrowform decodes the flat form submission of the borrowing
// selection step into structured (book, matric numbers) pairs.
//
// The form convention pairs fields by name: "<bookID>_selected" marks a
// book as picked, and the sibling field sharing the "<bookID>_" prefix
// carries that book's comma-separated matriculation numbers.
package borrowform

import (
	"sort"
	"strings"
)

const selectedSuffix = "_selected"

// Selection is one decoded (book, students) pair.
type Selection struct {
	BookID        string
	MatricNumbers []string
}

// Decode extracts selections from a flat field-name to value mapping.
//
// For every field ending in "_selected" the book id prefix is taken and
// the sibling field with the same prefix supplies the student list,
// split on commas with each token trimmed, lower-cased and
// deduplicated (first occurrence wins). Keys are
// walked in sorted order so "last sibling wins" is deterministic. A book
// with no sibling field yields an empty student list.
func Decode(form map[string]string) []Selection {
	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var selections []Selection
	for _, key := range keys {
		if !strings.HasSuffix(key, selectedSuffix) {
			continue
		}
		bookID := strings.TrimSuffix(key, selectedSuffix)
		if bookID == "" {
			continue
		}

		var matrics []string
		for _, sibling := range keys {
			if sibling == key {
				continue
			}
			if strings.HasPrefix(sibling, bookID+"_") {
				matrics = splitMatricNumbers(form[sibling])
			}
		}

		selections = append(selections, Selection{
			BookID:        bookID,
			MatricNumbers: matrics,
		})
	}

	return selections
}

// splitMatricNumbers normalizes a comma-separated matric list. Tokens
// are trimmed and lower-cased; duplicates keep the first occurrence.
func splitMatricNumbers(value string) []string {
	parts := strings.Split(value, ",")
	matrics := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for _, p := range parts {
		m := strings.ToLower(strings.TrimSpace(p))
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		matrics = append(matrics, m)
	}
	return matrics
}
