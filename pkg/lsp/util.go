package lsp

import (
	"io"
	"sync"

	"go.uber.org/multierr"
)

// ReadWriteCloser combines an io.ReadCloser and io.WriteCloser into a single
// io.ReadWriteCloser, such as stdin and stdout.
type ReadWriteCloser struct {
	reader io.ReadCloser
	writer io.WriteCloser

	// reads and writes happen on different goroutines, so only writes are
	// serialized
	writeMu sync.Mutex
	once    sync.Once
	err     error
}

func NewReadWriteCloser(r io.ReadCloser, w io.WriteCloser) *ReadWriteCloser {
	return &ReadWriteCloser{reader: r, writer: w}
}

func (rwc *ReadWriteCloser) Read(p []byte) (int, error) {
	return rwc.reader.Read(p)
}

func (rwc *ReadWriteCloser) Write(p []byte) (int, error) {
	rwc.writeMu.Lock()
	defer rwc.writeMu.Unlock()
	return rwc.writer.Write(p)
}

// Close closes both the reader and writer, once.
func (rwc *ReadWriteCloser) Close() error {
	rwc.once.Do(func() {
		rwc.err = multierr.Combine(rwc.reader.Close(), rwc.writer.Close())
	})
	return rwc.err
}
