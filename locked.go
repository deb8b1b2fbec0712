package rsarng

import (
	"math/big"
	"sync"
)

var _ Source = (*Locked)(nil)

// Locked is a Generator guarded by a mutex. Every call runs to completion
// before the next one starts, so the output of each call is a contiguous run
// of the underlying stream.
type Locked struct {
	mu sync.Mutex
	g  *Generator
}

// NewLocked wraps g. g must not be used directly afterwards.
func NewLocked(g *Generator) *Locked {
	return &Locked{g: g}
}

func (l *Locked) Bit() uint {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.g.Bit()
}

func (l *Locked) FillBytes(buf []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.g.FillBytes(buf)
}

func (l *Locked) TryFillBytes(buf []byte) error {
	l.FillBytes(buf)
	return nil
}

func (l *Locked) Read(p []byte) (int, error) {
	l.FillBytes(p)
	return len(p), nil
}

func (l *Locked) Uint32() uint32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.g.Uint32()
}

func (l *Locked) Uint64() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.g.Uint64()
}

func (l *Locked) Bits(k uint) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.g.Bits(k)
}
