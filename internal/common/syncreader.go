package common

import (
	"io"
	"sync"
)

// SyncReader is a concurrency safe reader
type SyncReader struct {
	mu sync.Mutex
	r  io.Reader
}

func (r *SyncReader) Read(p []byte) (n int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.r.Read(p)
}

// NewSyncReader wraps r so reads from several goroutines are serialized. A
// reader that is already a *SyncReader is returned as is, so every holder of
// it shares the same lock.
func NewSyncReader(r io.Reader) *SyncReader {
	if s, ok := r.(*SyncReader); ok {
		return s
	}
	return &SyncReader{r: r}
}
