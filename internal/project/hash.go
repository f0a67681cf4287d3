package project

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest is a SHA-256 sum, laid out like source.File.Hash.
type Digest [32]byte

// Combine hashes content followed by the dependency digests in the order
// given; callers pass deps sorted so the result is stable.
func Combine(content Digest, deps ...Digest) Digest {
	buf := make([]byte, 0, len(content)*(len(deps)+1))
	buf = append(buf, content[:]...)
	for _, d := range deps {
		buf = append(buf, d[:]...)
	}
	return sha256.Sum256(buf)
}

func (d Digest) String() string { return hex.EncodeToString(d[:]) }
