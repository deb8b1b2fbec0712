package rsarng

import (
	"io"
	"math/big"

	"github.com/go-errors/errors"
)

// SampleSeed draws x uniformly from [0, n) by rejection sampling: it reads
// just enough bytes for n's bit length, masks the excess high bits and redraws
// while x >= n.
func SampleSeed(r io.Reader, m *Modulus) (*big.Int, error) {
	if m == nil {
		return nil, errors.Wrap(&ModulusInvariantError{Reason: "no modulus"}, 0)
	}
	if err := checkModulus(m.n); err != nil {
		return nil, err
	}

	bitLen := m.n.BitLen()
	buf := make([]byte, (bitLen+7)/8)
	mask := byte(0xff >> uint(len(buf)*8-bitLen))

	x := new(big.Int)
	for {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, errors.WrapPrefix(err, "rsarng: sample seed", 0)
		}
		buf[0] &= mask
		x.SetBytes(buf)
		if x.Cmp(m.n) < 0 {
			return x, nil
		}
	}
}
