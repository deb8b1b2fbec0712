package common

import (
	"context"
	"io"
	"math/big"
	"time"

	"github.com/go-errors/errors"
	"github.com/sirupsen/logrus"
)

// retryDelay is how long the filler waits after a failed generation.
const retryDelay = time.Second

type inmemoryStorage struct {
	primes chan *big.Int // Buffer with our new primes
	bits   uint          // Bit length of generated primes
	reader io.Reader
	cancel context.CancelFunc
	done   chan struct{}
}

// NewInMemoryStorage returns a storage that keeps up to size primes of the
// given bit length ready. A background goroutine refills the buffer until ctx
// is cancelled or Close is called. The filler and Fetch read r through
// NewSyncReader, so callers reading r elsewhere must wrap it the same way.
func NewInMemoryStorage(ctx context.Context, r io.Reader, size int, bits uint) (*inmemoryStorage, error) {
	if size < 0 {
		return nil, errors.Errorf("in-memory prime storage: negative size %d", size)
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &inmemoryStorage{
		primes: make(chan *big.Int, size),
		bits:   bits,
		reader: NewSyncReader(r),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go s.fill(ctx)

	return s, nil
}

func (s *inmemoryStorage) fill(ctx context.Context) {
	defer close(s.done)
	for {
		p, err := RandomPrime(s.reader, s.bits)
		if err != nil {
			Logger.WithFields(logrus.Fields{"bits": s.bits, "error": err}).Warn("in-memory prime storage: generation failed")
			select {
			case <-ctx.Done():
				return
			case <-time.After(retryDelay):
				continue
			}
		}

		// Blocks while the buffer is full.
		select {
		case s.primes <- p:
		case <-ctx.Done():
			return
		}
	}
}

// Fetch a new prime directly from our in-memory buffer
func (s *inmemoryStorage) Fetch(bits uint) (*big.Int, error) {
	if bits != s.bits {
		return nil, ErrStorageEmpty
	}

	select {
	case p := <-s.primes:
		return p, nil
	default:
		Logger.WithFields(logrus.Fields{"size": cap(s.primes), "bits": bits}).Warn("in-memory prime storage depleted")
		return RandomPrime(s.reader, bits)
	}
}

// Len reports how many primes are currently buffered.
func (s *inmemoryStorage) Len() int {
	return len(s.primes)
}

// Close stops the filler goroutine and waits for it to exit.
func (s *inmemoryStorage) Close() error {
	s.cancel()
	<-s.done
	return nil
}
