package borrowform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSingleBook(t *testing.T) {
	form := map[string]string{
		"101_selected": "on",
		"101_students": "A01, a02,A02",
	}

	got := Decode(form)
	require.Len(t, got, 1)
	assert.Equal(t, "101", got[0].BookID)
	assert.Equal(t, []string{"a01", "a02"}, got[0].MatricNumbers)
}

func TestDecodeDeduplicatesMatrics(t *testing.T) {
	// Case-insensitive duplicates collapse to the first occurrence.
	form := map[string]string{
		"101_selected": "on",
		"101_students": "ENG001, eng002, eng001 ,Eng002",
	}

	got := Decode(form)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"eng001", "eng002"}, got[0].MatricNumbers)
}

func TestDecodeMultipleBooks(t *testing.T) {
	form := map[string]string{
		"101_selected": "on",
		"101_students": "eng001,eng002",
		"205_selected": "on",
		"205_students": " sci009 ",
	}

	got := Decode(form)
	require.Len(t, got, 2)

	byBook := map[string][]string{}
	for _, sel := range got {
		byBook[sel.BookID] = sel.MatricNumbers
	}
	assert.Equal(t, []string{"eng001", "eng002"}, byBook["101"])
	assert.Equal(t, []string{"sci009"}, byBook["205"])
}

func TestDecodeNoSiblingYieldsEmptyList(t *testing.T) {
	form := map[string]string{
		"101_selected": "on",
	}

	got := Decode(form)
	require.Len(t, got, 1)
	assert.Equal(t, "101", got[0].BookID)
	assert.Empty(t, got[0].MatricNumbers)
}

func TestDecodeLastSiblingWins(t *testing.T) {
	// Two sibling fields match the same prefix; the last one in sorted
	// key order supplies the list.
	form := map[string]string{
		"101_selected": "on",
		"101_aaa":      "eng001",
		"101_zzz":      "eng999",
	}

	got := Decode(form)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"eng999"}, got[0].MatricNumbers)
}

func TestDecodeIgnoresUnselectedFields(t *testing.T) {
	form := map[string]string{
		"101_students":  "eng001",
		"submit_method": "input_manually",
	}

	assert.Empty(t, Decode(form))
}

func TestDecodeDropsEmptyTokens(t *testing.T) {
	form := map[string]string{
		"7_selected": "on",
		"7_students": "eng001,, ,eng002,",
	}

	got := Decode(form)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"eng001", "eng002"}, got[0].MatricNumbers)
}

func TestDecodeEmptyForm(t *testing.T) {
	assert.Empty(t, Decode(map[string]string{}))
	assert.Empty(t, Decode(nil))
}
