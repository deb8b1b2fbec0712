package rsarng

import (
	"math/big"

	"github.com/go-errors/errors"
	"github.com/multiformats/go-multihash"
	"github.com/sirupsen/logrus"

	"github.com/privacybydesign/rsarng/internal/common"
	"github.com/privacybydesign/rsarng/internal/monty"
	"github.com/privacybydesign/rsarng/pool"
)

const (
	// PublicExponent is the fixed exponent e of the recurrence x -> x^e mod n.
	PublicExponent = 65537

	// DefaultHalfBits gives a 2048-bit modulus.
	DefaultHalfBits = 1024

	// MinHalfBits is the smallest prime size accepted. Such small moduli are
	// only useful for tests.
	MinHalfBits = common.MinPrimeBits

	primalityRounds = 20
)

var (
	bigOne   = big.NewInt(1)
	exponent = big.NewInt(PublicExponent)
)

// Modulus is the product n of two primes together with its precomputed
// Montgomery parameters. The factors are not retained. A Modulus is immutable
// and may be shared by several generators.
type Modulus struct {
	n      *big.Int
	params *monty.Params
}

// N returns a copy of the modulus.
func (m *Modulus) N() *big.Int {
	return new(big.Int).Set(m.n)
}

func (m *Modulus) BitLen() int {
	return m.n.BitLen()
}

// Fingerprint returns the base58 sha2-256 multihash of n, for logs.
func (m *Modulus) Fingerprint() string {
	mh, err := multihash.Sum(m.n.Bytes(), multihash.SHA2_256, -1)
	if err != nil {
		return ""
	}
	return mh.B58String()
}

func checkModulus(n *big.Int) error {
	switch {
	case n == nil || n.Sign() == 0:
		return errors.Wrap(&ModulusInvariantError{Reason: "modulus is zero"}, 1)
	case n.Bit(0) == 0:
		return errors.Wrap(&ModulusInvariantError{Reason: "modulus is even"}, 1)
	case n.Cmp(bigOne) <= 0:
		return errors.Wrap(&ModulusInvariantError{Reason: "modulus must be greater than one"}, 1)
	}
	return nil
}

// lambda returns lcm(p-1, q-1).
func lambda(p, q *big.Int) *big.Int {
	p1 := new(big.Int).Sub(p, bigOne)
	q1 := new(big.Int).Sub(q, bigOne)
	g := new(big.Int).GCD(nil, nil, p1, q1)
	l := new(big.Int).Mul(p1, q1)
	return l.Div(l, g)
}

func checkExponent(p, q *big.Int) error {
	g := new(big.Int).GCD(nil, nil, exponent, lambda(p, q))
	if g.Cmp(bigOne) != 0 {
		return errors.Wrap(&ExponentCoprimalityError{Exponent: PublicExponent}, 1)
	}
	return nil
}

// NewModulus forms n = p*q from two probable primes. It fails when the product
// violates the modulus invariants or PublicExponent is not coprime to λ(n).
// Equal factors are accepted and logged.
func NewModulus(p, q *big.Int) (*Modulus, error) {
	for _, f := range []*big.Int{p, q} {
		if f == nil || f.Sign() <= 0 || !f.ProbablyPrime(primalityRounds) {
			return nil, errors.Wrap(&ModulusInvariantError{Reason: "factor is not a probable prime"}, 0)
		}
	}

	n := new(big.Int).Mul(p, q)
	if err := checkModulus(n); err != nil {
		return nil, err
	}
	if err := checkExponent(p, q); err != nil {
		return nil, err
	}
	if p.Cmp(q) == 0 {
		common.Logger.WithField("bits", p.BitLen()).Warn("modulus built from two identical primes")
	}

	params, err := monty.NewParams(n)
	if err != nil {
		return nil, errors.Wrap(&ModulusInvariantError{Reason: err.Error()}, 0)
	}

	return &Modulus{n: n, params: params}, nil
}

func fetchPrime(src pool.PrimePool, bits uint) (*big.Int, error) {
	p, err := src.Fetch(bits)
	if err != nil {
		return nil, errors.Wrap(&PrimeGenerationError{Bits: bits, Err: err}, 1)
	}
	if p == nil || p.BitLen() != int(bits) || !p.ProbablyPrime(primalityRounds) {
		return nil, errors.Wrap(&PrimeGenerationError{
			Bits: bits,
			Err:  errors.New("prime source returned an unsuitable value"),
		}, 1)
	}
	return p, nil
}

// BuildModulus draws two primes of halfBits bits from src and returns their
// product. A pair whose product violates the modulus invariants, or for which
// PublicExponent is not invertible modulo λ(n), is discarded and a new pair is
// drawn, up to maxAttempts times. Failures of src are returned immediately.
func BuildModulus(src pool.PrimePool, halfBits uint, maxAttempts int) (*Modulus, error) {
	if halfBits < MinHalfBits {
		return nil, errors.Errorf("rsarng: half bit length %d below minimum %d", halfBits, MinHalfBits)
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		p, err := fetchPrime(src, halfBits)
		if err != nil {
			return nil, err
		}
		q, err := fetchPrime(src, halfBits)
		if err != nil {
			return nil, err
		}

		m, err := NewModulus(p, q)
		if err == nil {
			common.Logger.WithFields(logrus.Fields{
				"attempt":     attempt,
				"halfBits":    halfBits,
				"bits":        m.BitLen(),
				"fingerprint": m.Fingerprint(),
			}).Debug("modulus built")
			return m, nil
		}

		var invariant *ModulusInvariantError
		var coprime *ExponentCoprimalityError
		if !errors.As(err, &invariant) && !errors.As(err, &coprime) {
			return nil, err
		}
		common.Logger.WithFields(logrus.Fields{
			"attempt":  attempt,
			"halfBits": halfBits,
			"error":    err,
		}).Warn("discarding prime pair")
		lastErr = err
	}

	return nil, lastErr
}
