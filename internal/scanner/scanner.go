package scanner

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// DefaultBufferSize is the chunk size used when reading a stream.
const DefaultBufferSize = 1024 * 1024

const (
	cr = '\r'
	lf = '\n'
)

// ErrInvalidArgument is returned when Scan is given no reader at all.
var ErrInvalidArgument = errors.New("invalid argument")

// Ending is the line terminator a scan locked onto.
type Ending byte

const (
	EndingNone Ending = 0
	EndingCR   Ending = cr
	EndingLF   Ending = lf
)

func (e Ending) String() string {
	switch e {
	case EndingCR:
		return "CR"
	case EndingLF:
		return "LF"
	default:
		return "none"
	}
}

// Result of a single scan.
type Result struct {
	Lines  int64
	Ending Ending
}

// Counter counts lines in byte streams, reading them in fixed-size chunks.
// The first CR or LF seen decides which byte terminates lines for the rest
// of the stream; the other one is ignored from then on.
//
// A Counter reuses its buffer between calls and must not be shared
// between goroutines.
type Counter struct {
	buf []byte
}

// Option configures a Counter.
type Option func(*Counter)

// WithBufferSize sets the read chunk size. Values below 1 keep the default.
func WithBufferSize(n int) Option {
	return func(c *Counter) {
		if n > 0 {
			c.buf = make([]byte, n)
		}
	}
}

// New creates a Counter.
func New(opts ...Option) *Counter {
	c := &Counter{}
	for _, o := range opts {
		o(c)
	}
	if c.buf == nil {
		c.buf = make([]byte, DefaultBufferSize)
	}
	return c
}

// BufferSize reports the chunk size used for reads.
func (c *Counter) BufferSize() int { return len(c.buf) }

// Count returns the number of lines in r.
func (c *Counter) Count(r io.Reader) (int64, error) {
	res, err := c.Scan(r)
	return res.Lines, err
}

// Scan reads r to the end and returns its line count and detected ending.
// Read errors other than io.EOF are returned as-is (wrapped), together with
// the count accumulated so far.
func (c *Counter) Scan(r io.Reader) (Result, error) {
	if r == nil {
		return Result{}, fmt.Errorf("%w: nil reader", ErrInvalidArgument)
	}

	var (
		st   state
		rerr error
	)
	for {
		n, err := r.Read(c.buf)
		if n > 0 {
			st.feed(c.buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			rerr = fmt.Errorf("read: %w", err)
			break
		}
	}
	return st.finish(), rerr
}

// Count counts lines in r with a default Counter.
func Count(r io.Reader) (int64, error) {
	return New().Count(r)
}

type state struct {
	ending Ending
	lines  int64
	last   byte
	seen   bool
}

func (s *state) feed(chunk []byte) {
	i := 0
	if s.ending == EndingNone {
		for ; i < len(chunk); i++ {
			if b := chunk[i]; b == cr || b == lf {
				s.ending = Ending(b)
				s.lines++
				i++
				break
			}
		}
	}
	if s.ending != EndingNone {
		s.lines += int64(bytes.Count(chunk[i:], []byte{byte(s.ending)}))
	}
	s.last = chunk[len(chunk)-1]
	s.seen = true
}

func (s *state) finish() Result {
	if s.seen && s.last != cr && s.last != lf {
		s.lines++
	}
	return Result{Lines: s.lines, Ending: s.ending}
}
