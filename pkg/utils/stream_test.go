package utils

import (
	"crypto/md5"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashingReader(t *testing.T) {
	payload := "the quick brown fox jumps over the lazy dog"
	h := md5.New()
	r := NewHashingReader(strings.NewReader(payload), h)

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, payload, string(data))

	want := fmt.Sprintf("%x", md5.Sum([]byte(payload)))
	assert.Equal(t, want, HexSum(h))
}

func TestHashingReaderSmallChunks(t *testing.T) {
	payload := strings.Repeat("abc123", 1000)
	h := md5.New()
	r := NewHashingReader(strings.NewReader(payload), h)

	// Consume in tiny reads; the digest must match a one-shot hash.
	buf := make([]byte, 7)
	for {
		_, err := r.Read(buf)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}

	want := fmt.Sprintf("%x", md5.Sum([]byte(payload)))
	assert.Equal(t, want, HexSum(h))
}

func TestHashingReaderEmpty(t *testing.T) {
	h := md5.New()
	r := NewHashingReader(strings.NewReader(""), h)

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Empty(t, data)
	assert.Equal(t, fmt.Sprintf("%x", md5.Sum(nil)), HexSum(h))
}
