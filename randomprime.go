package rsarng

import (
	"io"
	"math/big"

	"github.com/privacybydesign/rsarng/internal/common"
)

// RandomPrime returns a probable prime of exactly bits bits drawn from r.
func RandomPrime(r io.Reader, bits uint) (p *big.Int, err error) {
	return common.RandomPrime(r, bits)
}
