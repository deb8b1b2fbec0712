package pool

import (
	"encoding/json"
	"io"
	"math/big"

	"github.com/privacybydesign/rsarng/internal/common"
)

type randomPool struct {
	storage common.PrimeStorage
}

func (p *randomPool) StatsJSON() ([]byte, error) {
	type Stats struct {
		Name string
	}
	return json.Marshal(Stats{
		Name: "random",
	})
}

// NewRandomPool returns a pool generating every prime on demand from r.
func NewRandomPool(r io.Reader) PrimePool {
	return &randomPool{
		storage: common.NewRandomStorage(r),
	}
}

func (p *randomPool) Fetch(bits uint) (*big.Int, error) {
	return p.storage.Fetch(bits)
}
