package cache

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileHasher_HashContent(t *testing.T) {
	hasher := NewFileHasher()

	tests := []struct {
		name     string
		content  []byte
		expected string
	}{
		{
			name:     "empty content",
			content:  []byte(""),
			expected: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
		{
			name:     "simple content",
			content:  []byte("hello world"),
			expected: "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, hasher.HashContent(tt.content))
		})
	}
}

func TestFileHasher_HashString(t *testing.T) {
	hasher := NewFileHasher()

	content := "partial class Foo { [SimpleStyledProperty] int _a; }"
	hash1 := hasher.HashString(content)

	assert.Len(t, hash1, 64)
	assert.Equal(t, hash1, hasher.HashString(content))
	assert.NotEqual(t, hash1, hasher.HashString(content+" "))
	assert.Equal(t, hash1, hasher.HashContent([]byte(content)))
}

func TestFileHasher_HashFile(t *testing.T) {
	hasher := NewFileHasher()
	fs := afero.NewMemMapFs()

	content := "class Foo {}"
	require.NoError(t, afero.WriteFile(fs, "/src/Foo.cs", []byte(content), 0o644))

	hash1, err := hasher.HashFile(fs, "/src/Foo.cs")
	require.NoError(t, err)
	assert.Equal(t, hasher.HashString(content), hash1)

	require.NoError(t, afero.WriteFile(fs, "/src/Foo.cs", []byte(content+"\n"), 0o644))
	hash2, err := hasher.HashFile(fs, "/src/Foo.cs")
	require.NoError(t, err)
	assert.NotEqual(t, hash1, hash2)
}

func TestFileHasher_HashFile_NotFound(t *testing.T) {
	_, err := NewFileHasher().HashFile(afero.NewMemMapFs(), "/nonexistent/Foo.cs")
	assert.Error(t, err)
}
