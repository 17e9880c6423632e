package misc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringLimit(t *testing.T) {
	assert.Equal(t, "", StringLimit("abcdef", -1))
	assert.Equal(t, "ab", StringLimit("abcdef", 2))
	assert.Equal(t, "abcdef", StringLimit("abcdef", 6))
	assert.Equal(t, "abcdefg", StringLimit("abcdefg", 10))
	assert.Equal(t, "abcd...", StringLimit("abcdefgh", 7))
}

func TestBytesLimit(t *testing.T) {
	assert.Nil(t, BytesLimit([]byte("abcdef"), -1))
	assert.Equal(t, []byte("ab"), BytesLimit([]byte("abcdef"), 2))
	assert.Equal(t, []byte("abcd..."), BytesLimit([]byte("abcdefgh"), 7))
}

func TestMinMax(t *testing.T) {
	assert.Equal(t, 1, Min(1, 2))
	assert.Equal(t, 2, Max(1, 2))
	assert.Equal(t, "a", Min("a", "b"))
}
