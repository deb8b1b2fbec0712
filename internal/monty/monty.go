// Package monty implements the Montgomery representation of residues modulo a
// fixed odd modulus, used to run many modular exponentiations under the same
// modulus without a division per multiplication.
package monty

import (
	"math/big"

	"github.com/go-errors/errors"
)

const wordBits = 64

// Params holds the values precomputed once per modulus: R = 2^k with k a
// multiple of the word size and R > n, n' = -n^-1 mod R, R mod n and R^2 mod n.
// A Params is immutable and may be shared by any number of Forms.
type Params struct {
	n      *big.Int
	k      uint
	mask   *big.Int // R - 1
	nPrime *big.Int
	one    *big.Int // R mod n, the Montgomery form of 1
	r2     *big.Int
}

// NewParams precomputes the Montgomery parameters of n, which must be odd and
// greater than one.
func NewParams(n *big.Int) (*Params, error) {
	if n == nil || n.Cmp(big.NewInt(1)) <= 0 {
		return nil, errors.New("monty: modulus must be greater than one")
	}
	if n.Bit(0) == 0 {
		return nil, errors.New("monty: modulus must be odd")
	}

	k := uint((n.BitLen() + wordBits - 1) / wordBits * wordBits)
	r := new(big.Int).Lsh(big.NewInt(1), k)

	inv := new(big.Int).ModInverse(n, r)
	if inv == nil {
		return nil, errors.New("monty: modulus is not invertible modulo R")
	}

	p := &Params{
		n:      new(big.Int).Set(n),
		k:      k,
		mask:   new(big.Int).Sub(r, big.NewInt(1)),
		nPrime: inv.Sub(r, inv),
		one:    new(big.Int).Mod(r, n),
	}
	p.r2 = new(big.Int).Mul(p.one, p.one)
	p.r2.Mod(p.r2, n)

	return p, nil
}

// Modulus returns a copy of n.
func (p *Params) Modulus() *big.Int {
	return new(big.Int).Set(p.n)
}

// redc computes t * R^-1 mod n for 0 <= t < n*R. The result is written to t.
func (p *Params) redc(t *big.Int) *big.Int {
	m := new(big.Int).And(t, p.mask)
	m.Mul(m, p.nPrime)
	m.And(m, p.mask)

	m.Mul(m, p.n)
	t.Add(t, m)
	t.Rsh(t, p.k)
	if t.Cmp(p.n) >= 0 {
		t.Sub(t, p.n)
	}
	return t
}

// Form is a residue modulo n held as x*R mod n.
type Form struct {
	v      *big.Int
	params *Params
}

// New converts x into Montgomery form. x is reduced modulo n first, so any
// non-negative or negative integer is accepted.
func New(x *big.Int, params *Params) *Form {
	t := new(big.Int).Mod(x, params.n)
	t.Mul(t, params.r2)
	return &Form{v: params.redc(t), params: params}
}

// One returns the Montgomery form of 1.
func One(params *Params) *Form {
	return &Form{v: new(big.Int).Set(params.one), params: params}
}

// Params returns the parameters f was created with.
func (f *Form) Params() *Params {
	return f.params
}

// Retrieve converts f back to the canonical residue in [0, n).
func (f *Form) Retrieve() *big.Int {
	return f.params.redc(new(big.Int).Set(f.v))
}

// Montgomery returns a copy of the internal representation x*R mod n.
func (f *Form) Montgomery() *big.Int {
	return new(big.Int).Set(f.v)
}

// Clone returns an independent copy of f sharing the same Params.
func (f *Form) Clone() *Form {
	return &Form{v: new(big.Int).Set(f.v), params: f.params}
}

// Equal reports whether f and g hold the same residue under the same modulus.
func (f *Form) Equal(g *Form) bool {
	return f.params.n.Cmp(g.params.n) == 0 && f.v.Cmp(g.v) == 0
}

// Mul sets f to a*b and returns f.
func (f *Form) Mul(a, b *Form) *Form {
	t := new(big.Int).Mul(a.v, b.v)
	f.v = a.params.redc(t)
	f.params = a.params
	return f
}

// Square sets f to a*a and returns f.
func (f *Form) Square(a *Form) *Form {
	return f.Mul(a, a)
}

// Pow sets f to a^e and returns f. e must be non-negative; a^0 is 1.
func (f *Form) Pow(a *Form, e *big.Int) *Form {
	base := a.Clone()
	acc := One(a.params)
	for i := e.BitLen() - 1; i >= 0; i-- {
		acc.Square(acc)
		if e.Bit(i) == 1 {
			acc.Mul(acc, base)
		}
	}
	f.v = acc.v
	f.params = acc.params
	return f
}
