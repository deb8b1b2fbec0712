// Copyright 2016 Maarten Everts. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package common

import (
	"io"
	"math/big"

	"github.com/go-errors/errors"
	"github.com/sirupsen/logrus"
)

// ErrStorageEmpty is returned by a PrimeStorage that holds no prime of the
// requested size.
var ErrStorageEmpty = errors.New("prime storage: no prime of requested size")

type PrimeStorage interface {
	Fetch(bits uint) (*big.Int, error)
}

// RandomPrecalcPrime returns a precalculated prime from storage, falling back
// to generating one from r when the storage cannot deliver.
func RandomPrecalcPrime(storage PrimeStorage, r io.Reader, bits uint) (p *big.Int, err error) {
	if bits < MinPrimeBits {
		err = errors.New("randomPrecalcPrime: prime size must be at least 2-bit")
		return
	}

	p, err = storage.Fetch(bits)
	if err != nil || p == nil {
		Logger.WithFields(logrus.Fields{"bits": bits, "error": err}).Debug("prime storage miss, generating prime")
		return RandomPrime(r, bits)
	}

	return p, nil
}
