package common

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/go-errors/errors"
	"github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"
)

// BucketName is where the primes of a bit length are stored (sprintf'ed)
const BucketName = "primes_%d"

// BoltDBFile is the default filename of the boltDB storage
const BoltDBFile = "primes.db"

type primeRecord struct {
	Bits  uint   `cbor:"1,keyasint"`
	Prime []byte `cbor:"2,keyasint"`
}

type boltStorage struct {
	client *bolt.DB
}

// OpenBoltStorage opens (creating if needed) a bolt file holding
// precalculated primes.
func OpenBoltStorage(path string) (*boltStorage, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.WrapPrefix(err, "open prime storage "+path, 0)
	}

	return &boltStorage{
		client: db,
	}, nil
}

func bucketName(bits uint) []byte {
	return []byte(fmt.Sprintf(BucketName, bits))
}

// Fetch removes and returns the oldest stored prime of the given size. A
// record that does not decode to a prime of that size is dropped as well, so
// it cannot block the records behind it.
func (b *boltStorage) Fetch(bits uint) (*big.Int, error) {
	var bi *big.Int
	var bad error

	err := b.client.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketName(bits))
		if bucket == nil {
			return ErrStorageEmpty
		}

		c := bucket.Cursor()
		k, v := c.First()
		if k == nil {
			return ErrStorageEmpty
		}

		var rec primeRecord
		if err := cbor.Unmarshal(v, &rec); err != nil {
			bad = errors.WrapPrefix(err, "decode stored prime", 0)
		} else if rec.Bits != bits {
			bad = errors.Errorf("stored prime has %d bits, bucket holds %d", rec.Bits, bits)
		} else if bi = new(big.Int).SetBytes(rec.Prime); bi.BitLen() != int(bits) {
			bad = errors.Errorf("stored prime has %d bits, bucket holds %d", bi.BitLen(), bits)
		}

		return bucket.Delete(k)
	})
	if err != nil {
		return nil, err
	}
	if bad != nil {
		Logger.WithFields(logrus.Fields{"bits": bits, "error": bad}).Warn("dropped malformed prime record")
		return nil, bad
	}

	return bi, nil
}

// Store appends primes to the bucket of the given size.
func (b *boltStorage) Store(bits uint, primes ...*big.Int) error {
	return b.client.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(bucketName(bits))
		if err != nil {
			return errors.Wrap(err, 0)
		}

		for _, p := range primes {
			if p.BitLen() != int(bits) {
				return errors.Errorf("prime has %d bits, want %d", p.BitLen(), bits)
			}
			v, err := cbor.Marshal(primeRecord{Bits: bits, Prime: p.Bytes()})
			if err != nil {
				return errors.Wrap(err, 0)
			}

			seq, err := bucket.NextSequence()
			if err != nil {
				return errors.Wrap(err, 0)
			}
			var k [8]byte
			binary.BigEndian.PutUint64(k[:], seq)
			if err := bucket.Put(k[:], v); err != nil {
				return errors.Wrap(err, 0)
			}
		}
		return nil
	})
}

// Count reports how many primes of the given size are stored.
func (b *boltStorage) Count(bits uint) (int, error) {
	var n int
	err := b.client.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketName(bits))
		if bucket == nil {
			return nil
		}
		n = bucket.Stats().KeyN
		return nil
	})
	return n, err
}

func (b *boltStorage) Close() error {
	return b.client.Close()
}
