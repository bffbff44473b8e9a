package utils

import (
	"encoding/hex"
	"hash"
	"io"
)

// HashingReader updates a hash with every chunk it passes through, so a
// checksum comes out of a single streaming copy.
type HashingReader struct {
	reader io.Reader
	hash   io.Writer
}

// Read reads data from the underlying reader and updates the hash
func (hr *HashingReader) Read(p []byte) (n int, err error) {
	n, err = hr.reader.Read(p)
	if n > 0 {
		hr.hash.Write(p[:n])
	}
	return
}

// NewHashingReader wraps reader so that everything read from it is also
// written into h.
func NewHashingReader(reader io.Reader, h io.Writer) *HashingReader {
	return &HashingReader{reader: reader, hash: h}
}

// HexSum returns the hex-encoded digest of h. Call after the stream has been
// fully consumed.
func HexSum(h hash.Hash) string {
	return hex.EncodeToString(h.Sum(nil))
}
