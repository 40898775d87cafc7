// internal/app/system/invites/code.go
package invites

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// codeAlphabet omits lookalike characters (0/O, 1/I/L) so codes survive
// being read aloud or retyped from a printout.
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const (
	// CodeLength is the standard invite code length.
	CodeLength = 8

	// LongCodeLength is used after repeated collisions (see Service.Generate).
	LongCodeLength = 12

	// maxCollisionRetries bounds the generate-retry loop. With a 31-char
	// alphabet and 8 positions the space is ~8.5e11 codes, so hitting the
	// cap means something is wrong with the store, not bad luck.
	maxCollisionRetries = 5
)

// newCode returns a random code of n characters from the unambiguous alphabet.
func newCode(n int) (string, error) {
	max := big.NewInt(int64(len(codeAlphabet)))
	buf := make([]byte, n)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("invites: generating code: %w", err)
		}
		buf[i] = codeAlphabet[idx.Int64()]
	}
	return string(buf), nil
}
