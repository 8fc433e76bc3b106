package dice

import (
	"crypto/rand"
	"math/big"
)

// cryptoSource draws from crypto/rand. Used by live servers where runs need
// not be reproducible.
type cryptoSource struct{}

// NewCryptoSource returns a non-deterministic Source backed by crypto/rand.
//
// Postcondition: Every value returned by Intn is in [0, n).
func NewCryptoSource() Source {
	return cryptoSource{}
}

// Intn returns a uniformly distributed int in [0, n).
//
// Precondition: n > 0. Panics with "dice: Intn called with n <= 0" otherwise,
// and with "dice: crypto/rand failure: <err>" if the reader fails.
func (cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	val, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	return int(val.Int64())
}
