// internal/agent/stream/splitter.go
package stream

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// Splitter yields the lines of a body one at a time. Lines have no length limit.
type Splitter struct {
	reader *bufio.Reader
	line   string
	err    error
	done   bool
}

func NewSplitter(r io.Reader) *Splitter {
	return &Splitter{reader: bufio.NewReader(r)}
}

// Next advances to the next line. It returns false at the end of the body or after a
// read error; a partially read line is dropped in that case.
func (s *Splitter) Next() bool {
	if s.done {
		return false
	}

	line, err := s.reader.ReadString('\n')
	if err != nil {
		s.done = true
		if !errors.Is(err, io.EOF) {
			s.err = err
			return false
		}
		if line == "" {
			return false
		}
	}

	line = strings.TrimSuffix(line, "\n")
	s.line = strings.TrimSuffix(line, "\r")
	return true
}

func (s *Splitter) Line() string {
	return s.line
}

// Err returns the read error that ended the body early, if any.
func (s *Splitter) Err() error {
	return s.err
}
