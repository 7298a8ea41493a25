package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "simple title", input: "algorithms", want: "algorithms"},
		{name: "spaces become hyphens", input: "clean code", want: "clean-code"},
		{name: "upper case folded", input: "The Go Programming Language", want: "the-go-programming-language"},
		{name: "surrounding whitespace trimmed", input: "  data structures  ", want: "data-structures"},
		{name: "inner whitespace runs collapse", input: "deep   learning", want: "deep-learning"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Make(tt.input))
		})
	}
}

func TestFullName(t *testing.T) {
	assert.Equal(t, "ada-okafor", FullName("Ada", "Okafor"))
	assert.Equal(t, "john-doe", FullName(" John ", " Doe "))
}
