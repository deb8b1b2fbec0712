// Package rsarng implements a pseudorandom bit generator built on the RSA
// trapdoor permutation.
//
// A generator holds a modulus n = p*q and a state x in [0, n). Every output bit
// is the low-order bit of the current state, after which the state advances to
// x^65537 mod n. Bytes are packed most significant bit first and words are
// read little-endian from consecutive bytes.
//
// A Generator is not safe for concurrent use; wrap it with NewLocked when it
// is shared between goroutines.
package rsarng

import (
	"encoding/binary"
	"io"
	"math/big"
	"math/rand/v2"

	"github.com/go-errors/errors"
	"github.com/sirupsen/logrus"

	"github.com/privacybydesign/rsarng/internal/common"
	"github.com/privacybydesign/rsarng/internal/monty"
	"github.com/privacybydesign/rsarng/pool"
)

// Source is the byte and word capability a Generator provides.
type Source interface {
	FillBytes(buf []byte)
	TryFillBytes(buf []byte) error
	Uint32() uint32
	Uint64() uint64
}

var (
	_ Source      = (*Generator)(nil)
	_ io.Reader   = (*Generator)(nil)
	_ rand.Source = (*Generator)(nil)
)

// SetLogger replaces the logger used by this module.
func SetLogger(l *logrus.Logger) {
	common.Logger = l
}

type Generator struct {
	modulus *Modulus
	x       *monty.Form
}

// New builds a fresh modulus from two primes of halfBits bits each and samples
// a seed below it. All entropy is drawn from r unless WithPrimePool supplies
// the primes.
func New(r io.Reader, halfBits uint, opts ...Option) (*Generator, error) {
	o := newOptions(opts...)

	var src pool.PrimePool = pool.NewRandomPool(r)
	if o.primes != nil {
		src = &fallbackPool{pool: o.primes, r: r}
	}

	m, err := BuildModulus(src, halfBits, o.maxAttempts)
	if err != nil {
		return nil, err
	}
	return NewFromModulus(r, m)
}

// NewFromModulus samples a new seed from r below an existing modulus.
func NewFromModulus(r io.Reader, m *Modulus) (*Generator, error) {
	x, err := SampleSeed(r, m)
	if err != nil {
		return nil, err
	}
	return NewFromSeed(m, x)
}

// NewFromSeed returns a generator with initial state x, which must lie in
// [0, n). Two generators built from the same modulus and seed produce the
// same output. Degenerate seeds (0, 1 or sharing a factor with n) are accepted
// and logged.
func NewFromSeed(m *Modulus, x *big.Int) (*Generator, error) {
	if m == nil {
		return nil, errors.Wrap(&ModulusInvariantError{Reason: "no modulus"}, 0)
	}
	if err := checkModulus(m.n); err != nil {
		return nil, err
	}
	if x == nil || x.Sign() < 0 || x.Cmp(m.n) >= 0 {
		return nil, errors.Errorf("rsarng: seed outside [0, n)")
	}

	if x.Cmp(bigOne) <= 0 || new(big.Int).GCD(nil, nil, x, m.n).Cmp(bigOne) != 0 {
		common.Logger.WithFields(logrus.Fields{
			"fingerprint": m.Fingerprint(),
		}).Warn("degenerate seed: zero, one or not a unit modulo n")
	}

	return &Generator{
		modulus: m,
		x:       monty.New(x, m.params),
	}, nil
}

// Modulus returns the modulus the generator runs under.
func (g *Generator) Modulus() *Modulus {
	return g.modulus
}

// Bit returns the low-order bit of the current state and advances the state
// to x^e mod n.
func (g *Generator) Bit() uint {
	bit := g.x.Retrieve().Bit(0)
	g.x.Pow(g.x, exponent)
	return bit
}

// FillBytes fills buf with output, eight bits per byte, the first bit
// produced becoming the most significant bit.
func (g *Generator) FillBytes(buf []byte) {
	for i := range buf {
		var b byte
		for j := 0; j < 8; j++ {
			b = b<<1 | byte(g.Bit())
		}
		buf[i] = b
	}
}

// TryFillBytes is FillBytes; output never fails once a generator exists.
func (g *Generator) TryFillBytes(buf []byte) error {
	g.FillBytes(buf)
	return nil
}

// Read implements io.Reader. It always fills p completely.
func (g *Generator) Read(p []byte) (int, error) {
	g.FillBytes(p)
	return len(p), nil
}

func (g *Generator) Uint32() uint32 {
	var buf [4]byte
	g.FillBytes(buf[:])
	return binary.LittleEndian.Uint32(buf[:])
}

func (g *Generator) Uint64() uint64 {
	var buf [8]byte
	g.FillBytes(buf[:])
	return binary.LittleEndian.Uint64(buf[:])
}

// Bits returns the next k bits as an integer whose bit i is the i-th bit
// produced.
func (g *Generator) Bits(k uint) *big.Int {
	out := new(big.Int)
	for i := 0; i < int(k); i++ {
		out.SetBit(out, i, g.Bit())
	}
	return out
}

// fallbackPool generates primes from r when the configured pool cannot
// deliver.
type fallbackPool struct {
	pool pool.PrimePool
	r    io.Reader
}

func (f *fallbackPool) Fetch(bits uint) (*big.Int, error) {
	return pool.RandomPrimeFromPool(f.pool, f.r, bits)
}
