package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey_Consistency(t *testing.T) {
	source := []byte("package main\n\nfunc main() {}\n")

	key1 := Key(source, "go version go1.25.2 linux/amd64", "release")
	key2 := Key(source, "go version go1.25.2 linux/amd64", "release")

	assert.Equal(t, key1, key2, "identical inputs must yield the same key")
	assert.Len(t, key1, 64)
}

func TestKey_Sensitivity(t *testing.T) {
	source := []byte("package main")
	base := Key(source, "go version go1.25.2", "release")

	assert.NotEqual(t, base, Key([]byte("package main "), "go version go1.25.2", "release"),
		"source change must change the key")
	assert.NotEqual(t, base, Key(source, "go version go1.26.0", "release"),
		"toolchain change must change the key")
	assert.NotEqual(t, base, Key(source, "go version go1.25.2", "debug"),
		"profile change must change the key")
}

func TestKey_FieldBoundaries(t *testing.T) {
	// Field separators must prevent boundary ambiguity between the
	// concatenated inputs.
	a := Key([]byte("ab"), "c", "release")
	b := Key([]byte("a"), "bc", "release")

	assert.NotEqual(t, a, b)
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		size     int64
		expected string
	}{
		{0, "0 B"},
		{500, "500 B"},
		{1024, "1.00 KB"},
		{1024 * 1024, "1.00 MB"},
		{1024 * 1024 * 1024, "1.00 GB"},
		{500 * 1024 * 1024, "500.00 MB"},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, FormatSize(test.size))
	}
}
