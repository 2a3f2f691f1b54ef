package harness

import (
	"bytes"
	"io"
	"regexp"
)

// filteredWriter passes lines through to writer unless they match one of excludeRegex.
// A line split across writes is buffered until its newline arrives or Close is called.
type filteredWriter struct {
	writer       io.Writer
	excludeRegex []*regexp.Regexp
	pending      []byte
}

func newFilteredWriter(writer io.Writer, excludeRegex []*regexp.Regexp) io.Writer {
	if len(excludeRegex) == 0 {
		return writer
	}
	return &filteredWriter{writer: writer, excludeRegex: excludeRegex}
}

func (f *filteredWriter) Write(data []byte) (int, error) {
	f.pending = append(f.pending, data...)
	for {
		i := bytes.IndexByte(f.pending, '\n')
		if i < 0 {
			return len(data), nil
		}
		line := f.pending[:i+1]
		if err := f.emit(line); err != nil {
			return len(data), err
		}
		f.pending = f.pending[i+1:]
	}
}

func (f *filteredWriter) emit(line []byte) error {
	for _, r := range f.excludeRegex {
		if r.Match(bytes.TrimRight(line, "\r\n")) {
			return nil
		}
	}
	_, err := f.writer.Write(line)
	return err
}

// Close writes out any unterminated final line.
func (f *filteredWriter) Close() error {
	if len(f.pending) == 0 {
		return nil
	}
	line := f.pending
	f.pending = nil
	return f.emit(line)
}
