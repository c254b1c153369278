package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_NoFrontmatter_ReturnsBodyOnly(t *testing.T) {
	input := []byte("# Title\n\nHello\n")

	fm, body, had, err := Split(input)
	require.NoError(t, err)
	require.False(t, had)
	require.Empty(t, fm)
	require.Equal(t, input, body)
}

func TestSplit_YAMLFrontmatter_SplitsFrontmatterAndBody(t *testing.T) {
	fm, body, had, err := Split([]byte("---\ntitle: Client\n---\n# Client\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("title: Client\n"), fm)
	require.Equal(t, []byte("# Client\n"), body)
}

func TestSplit_CRLF(t *testing.T) {
	fm, body, had, err := Split([]byte("---\r\ntitle: Client\r\n---\r\n# Client\r\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("title: Client\r\n"), fm)
	require.Equal(t, []byte("# Client\r\n"), body)
}

func TestSplit_EmptyBlock(t *testing.T) {
	fm, body, had, err := Split([]byte("---\n---\nbody\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Empty(t, fm)
	require.Equal(t, []byte("body\n"), body)
}

func TestSplit_ClosingDelimiterAtEOF(t *testing.T) {
	fm, body, had, err := Split([]byte("---\ntitle: Only\n---"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("title: Only\n"), fm)
	require.Empty(t, body)
}

func TestSplit_MissingClosingDelimiter(t *testing.T) {
	_, _, had, err := Split([]byte("---\ntitle: x\n# body\n"))
	require.ErrorIs(t, err, ErrMissingClosingDelimiter)
	require.False(t, had)
}

func TestDecode(t *testing.T) {
	fields, err := Decode([]byte("title: \"  Client API \"\nuid: abc-123\ntags:\n  - http\n"))
	require.NoError(t, err)
	assert.Equal(t, "Client API", fields.Title)
	assert.Equal(t, "abc-123", fields.UID)
	assert.Equal(t, []any{"http"}, fields.Extra["tags"])
}

func TestDecode_EmptyAndInvalid(t *testing.T) {
	fields, err := Decode(nil)
	require.NoError(t, err)
	assert.Empty(t, fields.Title)

	_, err = Decode([]byte("title: [unterminated\n"))
	require.Error(t, err)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, []byte("a: 1\nb: 2\n"), Normalize([]byte("a: 1\r\nb: 2\r\n")))
}
