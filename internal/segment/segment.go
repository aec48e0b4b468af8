// Package segment carves a remote resource into contiguous byte ranges and
// persists each range at its absolute offset in the destination file.
package segment

import (
	"fmt"
	"io"
)

// Segment is one contiguous byte range of the source resource. It tracks how
// much of the range has been persisted so that repeated writes after
// completion are no-ops.
type Segment struct {
	Start   int64
	Length  int64
	Written int64

	writer io.WriterAt
}

func New(start, length int64, writer io.WriterAt) *Segment {
	return &Segment{Start: start, Length: length, writer: writer}
}

// RangeHeader returns the inclusive Range header value for this segment,
// e.g. "bytes=100-199".
func (s *Segment) RangeHeader() string {
	return fmt.Sprintf("bytes=%d-%d", s.Start, s.Start+s.Length-1)
}

// Done reports whether the full range has been persisted.
func (s *Segment) Done() bool {
	return s.Written >= s.Length
}

// Write persists buf at the segment's current position in the destination
// and advances the position by the amount actually written. A full segment
// short-circuits and returns 0. Partial writes are not drained internally;
// the caller may call again with the remaining bytes.
func (s *Segment) Write(buf []byte) (int64, error) {
	if s.Done() {
		return 0, nil
	}
	offset := s.Start + s.Written
	n, err := s.writer.WriteAt(buf, offset)
	s.Written += int64(n)
	if err != nil {
		return int64(n), fmt.Errorf("error writing %d bytes at offset %d: %w", len(buf), offset, err)
	}
	return int64(n), nil
}
