// Package id derives job identifiers.
package id

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/jfaulkner/seedshot/internal/mapgen"
)

// idLength is the number of hex characters kept from the digest. 16 bytes
// of digest is plenty to keep repeated seeds from colliding, since the
// submission timestamp is part of the input.
const idLength = 32

// Generator derives job ids from the submission itself, so the same seed
// submitted twice still yields distinct ids.
type Generator struct{}

// New creates a Generator.
func New() *Generator {
	return &Generator{}
}

// NewID returns a hex digest of seed, dimension, and submission time.
func (Generator) NewID(seed string, dim mapgen.Dimension, submitted time.Time) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s|%s|%d", seed, dim, submitted.UnixNano()))
	return hex.EncodeToString(sum[:])[:idLength]
}
