// Package iox provides the byte-stream plumbing shared by the evaluator
// and the command builder: capture buffers, synchronized writers and the
// decoders applied to captured output.
package iox

import (
	"bytes"
	"io"
	"sync"
)

// Buffer is a byte sink safe for concurrent writers. Captured pipeline
// stages and tee copies may write to the same buffer from different
// goroutines.
type Buffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *Buffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// Bytes returns a copy of the captured bytes.
func (b *Buffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.buf.Bytes()...)
}

// SyncWriter wraps an io.Writer with a mutex to synchronize writes from
// multiple goroutines.
type SyncWriter struct {
	w  io.Writer
	mu *sync.Mutex
}

// NewSyncWriter creates a new SyncWriter that uses the provided mutex.
func NewSyncWriter(w io.Writer, mu *sync.Mutex) *SyncWriter {
	return &SyncWriter{w: w, mu: mu}
}

func (sw *SyncWriter) Write(p []byte) (n int, err error) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.w.Write(p)
}

// Tee returns a writer that duplicates writes to both destinations, used
// for the inherit-and-capture stdio mode.
func Tee(a, b io.Writer) io.Writer {
	return io.MultiWriter(a, b)
}
