package core

import (
	"bufio"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
)

// openSink resolves outputPath to a writer and whether the caller owns it
// (and must therefore close it). An empty path borrows stdout: a sink
// exclusively owns its output; it never closes a sink it did not open.
func openSink(outputPath string) (io.Writer, bool, error) {
	if outputPath == "" {
		return os.Stdout, false, nil
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return nil, false, err
	}
	return &fileSink{Writer: bufio.NewWriter(f), f: f}, true, nil
}

// fileSink pairs a buffered writer with the file backing it, so the
// output.Formatter's flusher/closer type-assertions both succeed on the one
// value: Flush drains the buffer, Close flushes then closes the file.
type fileSink struct {
	*bufio.Writer
	f *os.File
}

func (s *fileSink) Close() error {
	if err := s.Writer.Flush(); err != nil {
		s.f.Close()
		return err
	}
	return s.f.Close()
}

// closeSinkIfOwned closes sink when owned is true and sink implements
// io.Closer, for the document-writing paths (profile/snapshot) that bypass
// output.Formatter and so must release the sink themselves.
func closeSinkIfOwned(sink io.Writer, owned bool) {
	if !owned {
		return
	}
	if c, ok := sink.(io.Closer); ok {
		if err := c.Close(); err != nil {
			log.WithError(err).Warn("core: error closing output sink")
		}
	}
}
