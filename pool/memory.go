package pool

import (
	"context"
	"encoding/json"
	"io"
	"math/big"

	"github.com/privacybydesign/rsarng/internal/common"
)

// MemoryPool buffers primes of a single size. Fetching from a depleted pool
// generates a prime directly.
type MemoryPool struct {
	storage interface {
		common.PrimeStorage
		Len() int
		Close() error
	}
	bits uint
}

// NewMemoryPool starts a background goroutine keeping up to size primes of
// the given bit length ready. It stops when ctx is cancelled or Close is
// called.
//
// The goroutine reads r concurrently with Fetch. When the same r also feeds
// rsarng.New, wrap it once with NewSyncReader and pass the wrapped reader to
// both.
func NewMemoryPool(ctx context.Context, r io.Reader, size int, bits uint) (*MemoryPool, error) {
	s, err := common.NewInMemoryStorage(ctx, r, size, bits)
	if err != nil {
		return nil, err
	}
	return &MemoryPool{storage: s, bits: bits}, nil
}

// NewSyncReader returns a reader serializing reads from r. Wrapping the
// result again returns it unchanged.
func NewSyncReader(r io.Reader) io.Reader {
	return common.NewSyncReader(r)
}

func (p *MemoryPool) Fetch(bits uint) (*big.Int, error) {
	return p.storage.Fetch(bits)
}

// Len reports how many primes are buffered.
func (p *MemoryPool) Len() int {
	return p.storage.Len()
}

func (p *MemoryPool) Close() error {
	return p.storage.Close()
}

func (p *MemoryPool) StatsJSON() ([]byte, error) {
	type Stats struct {
		Name     string
		Bits     uint
		Buffered int
	}
	return json.Marshal(Stats{
		Name:     "memory",
		Bits:     p.bits,
		Buffered: p.Len(),
	})
}
