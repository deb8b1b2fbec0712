package rsarng

import (
	"github.com/privacybydesign/rsarng/pool"
)

// DefaultMaxAttempts bounds how many prime pairs New draws before giving up on
// a modulus that violates its invariants.
const DefaultMaxAttempts = 16

type Options struct {
	primes      pool.PrimePool
	maxAttempts int
}

type Option func(opts *Options)

// WithPrimePool draws the primes from p. Primes p cannot deliver are generated
// from the randomness source passed to New.
func WithPrimePool(p pool.PrimePool) Option {
	return func(opts *Options) {
		opts.primes = p
	}
}

// WithMaxAttempts sets how many prime pairs are tried. Values below one mean
// a single attempt.
func WithMaxAttempts(n int) Option {
	return func(opts *Options) {
		opts.maxAttempts = n
	}
}

func newOptions(opts ...Option) *Options {
	o := &Options{maxAttempts: DefaultMaxAttempts}
	for _, opt := range opts {
		opt(o)
	}
	if o.maxAttempts < 1 {
		o.maxAttempts = 1
	}
	return o
}
