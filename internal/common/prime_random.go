package common

import (
	"io"
	"math/big"

	"github.com/go-errors/errors"
)

// MinPrimeBits is the smallest bit length RandomPrime accepts.
const MinPrimeBits = 2

const primalityRounds = 20

// RandomPrime returns a probable prime of exactly bits bits, drawing its
// candidates from r. Every byte read from r is used, so a fixed r yields a
// fixed prime.
func RandomPrime(r io.Reader, bits uint) (p *big.Int, err error) {
	if bits < MinPrimeBits {
		err = errors.New("randomPrime: prime size must be at least 2-bit")
		return
	}

	b := bits % 8
	if b == 0 {
		b = 8
	}

	bytes := make([]byte, (bits+7)/8)
	p = new(big.Int)

	for {
		if _, err = io.ReadFull(r, bytes); err != nil {
			return nil, errors.WrapPrefix(err, "randomPrime", 0)
		}

		// Clear bits in the first byte to make sure the candidate has a size <= bits.
		bytes[0] &= uint8(int(1<<b) - 1)

		// Set the top two bits so the product of two such primes has
		// exactly 2*bits bits.
		if b >= 2 {
			bytes[0] |= 3 << (b - 2)
		} else {
			bytes[0] |= 1
			if len(bytes) > 1 {
				bytes[1] |= 0x80
			}
		}

		bytes[len(bytes)-1] |= 1
		p.SetBytes(bytes)
		if p.BitLen() == int(bits) && p.ProbablyPrime(primalityRounds) {
			return p, nil
		}
	}
}

type randomStorage struct {
	reader io.Reader
}

// NewRandomStorage returns a PrimeStorage that generates every prime on
// demand from r.
func NewRandomStorage(r io.Reader) PrimeStorage {
	return &randomStorage{reader: r}
}

func (s *randomStorage) Fetch(bits uint) (*big.Int, error) {
	return RandomPrime(s.reader, bits)
}
