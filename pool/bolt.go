package pool

import (
	"math/big"

	"github.com/privacybydesign/rsarng/internal/common"
)

// DefaultBoltFile is the file name used when no path is configured.
const DefaultBoltFile = common.BoltDBFile

// BoltPool hands out precalculated primes stored in a bolt file. Every fetched
// prime is removed from the file so it is never used twice.
type BoltPool struct {
	storage interface {
		common.PrimeStorage
		Store(bits uint, primes ...*big.Int) error
		Count(bits uint) (int, error)
		Close() error
	}
}

func OpenBoltPool(path string) (*BoltPool, error) {
	s, err := common.OpenBoltStorage(path)
	if err != nil {
		return nil, err
	}
	return &BoltPool{storage: s}, nil
}

func (p *BoltPool) Fetch(bits uint) (*big.Int, error) {
	return p.storage.Fetch(bits)
}

// Store adds primes of exactly bits bits to the pool.
func (p *BoltPool) Store(bits uint, primes ...*big.Int) error {
	return p.storage.Store(bits, primes...)
}

func (p *BoltPool) Count(bits uint) (int, error) {
	return p.storage.Count(bits)
}

func (p *BoltPool) Close() error {
	return p.storage.Close()
}
