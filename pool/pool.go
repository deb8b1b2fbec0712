// Package pool provides sources of primes for modulus construction: direct
// generation, an in-memory buffer refilled in the background, and a
// persistent bolt file of precalculated primes.
package pool

import (
	"io"
	"math/big"

	"github.com/go-errors/errors"
	"github.com/privacybydesign/rsarng/internal/common"
)

type PrimePool interface {
	Fetch(bits uint) (*big.Int, error)
}

// ErrEmpty is returned by a pool that holds no prime of the requested size.
var ErrEmpty = common.ErrStorageEmpty

// RandomPrimeFromPool returns a prime from pool, generating one from r when
// the pool cannot deliver.
func RandomPrimeFromPool(pool PrimePool, r io.Reader, bits uint) (p *big.Int, err error) {
	if bits < common.MinPrimeBits {
		err = errors.New("randomPrimeFromPool: prime size must be at least 2-bit")
		return
	}

	return common.RandomPrecalcPrime(pool, r, bits)
}
