package rsarng

import (
	"fmt"
)

// PrimeGenerationError reports that no prime of the requested size could be
// obtained from the prime source.
type PrimeGenerationError struct {
	Bits uint
	Err  error
}

func (e *PrimeGenerationError) Error() string {
	return fmt.Sprintf("rsarng: cannot obtain %d-bit prime: %v", e.Bits, e.Err)
}

func (e *PrimeGenerationError) Unwrap() error {
	return e.Err
}

// ModulusInvariantError reports a modulus that is zero, even, not greater than
// one, or built from a factor that is not a probable prime.
type ModulusInvariantError struct {
	Reason string
}

func (e *ModulusInvariantError) Error() string {
	return "rsarng: invalid modulus: " + e.Reason
}

// ExponentCoprimalityError reports that the public exponent is not invertible
// modulo λ(n), so x -> x^e mod n would not be a permutation.
type ExponentCoprimalityError struct {
	Exponent int64
}

func (e *ExponentCoprimalityError) Error() string {
	return fmt.Sprintf("rsarng: exponent %d is not coprime to λ(n)", e.Exponent)
}
