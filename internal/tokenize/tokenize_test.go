package tokenize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"punctuation and short tokens", "AI & ML!! 2024", []string{"2024"}},
		{"empty", "", nil},
		{"only short tokens", "a an it", nil},
		{"mixed case and symbols", "Senior-Go/Rust Engineer, Bengaluru", []string{"senior", "rust", "engineer", "bengaluru"}},
		{"duplicates kept in order", "cloud Cloud CLOUD ops", []string{"cloud", "cloud", "cloud", "ops"}},
		{"newlines and tabs", "data\tscience\nlead", []string{"data", "science", "lead"}},
		{"non ascii letters become separators", "café manager", []string{"caf", "manager"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.in))
		})
	}
}

func TestSetUnique(t *testing.T) {
	tokens := []string{"go", "cloud", "go", "data"}

	assert.Len(t, Set(tokens), 3)
	assert.Equal(t, []string{"go", "cloud", "data"}, Unique(tokens))
}
