package common

import (
	"bytes"
	"context"
	"crypto/rand"
	"math/big"
	mathrand "math/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-errors/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"
)

type failingStorage struct{}

func (failingStorage) Fetch(uint) (*big.Int, error) {
	return nil, ErrStorageEmpty
}

type fixedStorage struct {
	p *big.Int
}

func (s fixedStorage) Fetch(uint) (*big.Int, error) {
	return s.p, nil
}

func TestRandomPrime(t *testing.T) {
	for _, bits := range []uint{2, 3, 8, 17, 64, 128} {
		p, err := RandomPrime(rand.Reader, bits)
		require.NoError(t, err)
		assert.Equal(t, int(bits), p.BitLen())
		assert.True(t, p.ProbablyPrime(20))
	}
}

func TestRandomPrimeIsReproducible(t *testing.T) {
	for _, bits := range []uint{2, 9, 16, 33, 64, 256} {
		a, err := RandomPrime(mathrand.New(mathrand.NewSource(int64(bits))), bits)
		require.NoError(t, err)
		b, err := RandomPrime(mathrand.New(mathrand.NewSource(int64(bits))), bits)
		require.NoError(t, err)

		assert.Equal(t, 0, a.Cmp(b), "bits %d", bits)
		assert.Equal(t, int(bits), a.BitLen())
		assert.True(t, a.ProbablyPrime(20))
	}
}

func TestRandomPrimeSetsTopBitsAndLowBit(t *testing.T) {
	// An all-zero 2-bit candidate becomes 0b11.
	p, err := RandomPrime(bytes.NewReader(make([]byte, 2)), 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), p.Int64())

	// 0b1_1000_0011 = 387 = 3 * 129 is composite, so the reader runs dry.
	p, err = RandomPrime(bytes.NewReader([]byte{0, 0x02}), 9)
	assert.Error(t, err)
	assert.Nil(t, p)
}

func TestRandomPrimeReaderExhausted(t *testing.T) {
	_, err := RandomPrime(bytes.NewReader([]byte{1, 2, 3}), 64)
	assert.Error(t, err)
}

func TestRandomPrimeTooSmall(t *testing.T) {
	_, err := RandomPrime(rand.Reader, 1)
	assert.Error(t, err)
	_, err = RandomPrime(rand.Reader, 0)
	assert.Error(t, err)
}

func TestRandomPrecalcPrimeFallback(t *testing.T) {
	p, err := RandomPrecalcPrime(failingStorage{}, rand.Reader, 32)
	require.NoError(t, err)
	assert.Equal(t, 32, p.BitLen())

	fixed := big.NewInt(65521)
	p, err = RandomPrecalcPrime(fixedStorage{fixed}, rand.Reader, 16)
	require.NoError(t, err)
	assert.Equal(t, fixed, p)

	_, err = RandomPrecalcPrime(fixedStorage{fixed}, rand.Reader, 1)
	assert.Error(t, err)
}

func TestRandomStorage(t *testing.T) {
	p, err := NewRandomStorage(rand.Reader).Fetch(48)
	require.NoError(t, err)
	assert.Equal(t, 48, p.BitLen())
}

func TestInMemoryStorage(t *testing.T) {
	s, err := NewInMemoryStorage(context.Background(), rand.Reader, 4, 64)
	require.NoError(t, err)
	defer s.Close()

	require.Eventually(t, func() bool { return s.Len() == 4 }, 10*time.Second, 10*time.Millisecond)

	p, err := s.Fetch(64)
	require.NoError(t, err)
	assert.Equal(t, 64, p.BitLen())
	assert.True(t, p.ProbablyPrime(20))

	_, err = s.Fetch(32)
	assert.True(t, errors.Is(err, ErrStorageEmpty))
}

func TestInMemoryStorageDepleted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s, err := NewInMemoryStorage(ctx, rand.Reader, 1, 32)
	require.NoError(t, err)
	cancel()
	require.NoError(t, s.Close())

	// Drain whatever the filler managed to produce before stopping.
	for s.Len() > 0 {
		_, err := s.Fetch(32)
		require.NoError(t, err)
	}

	p, err := s.Fetch(32)
	require.NoError(t, err)
	assert.Equal(t, 32, p.BitLen())
}

func TestInMemoryStorageRejectsNegativeSize(t *testing.T) {
	s, err := NewInMemoryStorage(context.Background(), rand.Reader, -1, 32)
	assert.Error(t, err)
	assert.Nil(t, s)
}

func TestInMemoryStorageSharesReaderLock(t *testing.T) {
	r := NewSyncReader(mathrand.New(mathrand.NewSource(3)))
	assert.Same(t, r, NewSyncReader(r))

	s, err := NewInMemoryStorage(context.Background(), r, 2, 32)
	require.NoError(t, err)
	defer s.Close()
	assert.Same(t, r, s.reader)
}

func TestBoltStorage(t *testing.T) {
	s, err := OpenBoltStorage(filepath.Join(t.TempDir(), BoltDBFile))
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Fetch(16)
	assert.True(t, errors.Is(err, ErrStorageEmpty))

	first, second := big.NewInt(65521), big.NewInt(65519)
	require.NoError(t, s.Store(16, first, second))

	n, err := s.Count(16)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	p, err := s.Fetch(16)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Cmp(first))

	p, err = s.Fetch(16)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Cmp(second))

	_, err = s.Fetch(16)
	assert.True(t, errors.Is(err, ErrStorageEmpty))

	n, err = s.Count(32)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestBoltStorageRejectsWrongSize(t *testing.T) {
	s, err := OpenBoltStorage(filepath.Join(t.TempDir(), BoltDBFile))
	require.NoError(t, err)
	defer s.Close()

	assert.Error(t, s.Store(32, big.NewInt(65521)))

	n, err := s.Count(32)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestBoltStorageDropsMalformedRecord(t *testing.T) {
	s, err := OpenBoltStorage(filepath.Join(t.TempDir(), BoltDBFile))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Store(16, big.NewInt(65521)))
	require.NoError(t, s.client.Update(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketName(16)).Cursor()
		k, _ := c.First()
		return tx.Bucket(bucketName(16)).Put(k, []byte{0xff, 0x00})
	}))
	require.NoError(t, s.Store(16, big.NewInt(65519)))

	_, err = s.Fetch(16)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrStorageEmpty))

	n, err := s.Count(16)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	p, err := s.Fetch(16)
	require.NoError(t, err)
	assert.Equal(t, int64(65519), p.Int64())
}

func TestBoltStoragePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), BoltDBFile)
	s, err := OpenBoltStorage(path)
	require.NoError(t, err)
	require.NoError(t, s.Store(16, big.NewInt(65521)))
	require.NoError(t, s.Close())

	s, err = OpenBoltStorage(path)
	require.NoError(t, err)
	defer s.Close()

	p, err := s.Fetch(16)
	require.NoError(t, err)
	assert.Equal(t, int64(65521), p.Int64())
}
