package programs

import (
	"github.com/mr-tron/base58/base58"
	"golang.org/x/crypto/blake2b"
)

// Digest identifies a program source in logs and stats.
func Digest(src string) string {
	sum := blake2b.Sum256([]byte(src))
	return base58.Encode(sum[:16])
}
