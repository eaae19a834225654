package sse

import (
	"bytes"
	"strings"
)

// Delimiter separates frames on the wire.
const Delimiter = "\n\n"

// Splitter cuts decoded text into frames. Between calls it holds at most one
// incomplete frame and never a complete one.
type Splitter struct {
	buf []byte
}

// Push appends text and returns every frame it completes, in arrival order,
// with surrounding whitespace trimmed. Blank frames are skipped.
func (s *Splitter) Push(text string) []string {
	s.buf = append(s.buf, text...)

	var frames []string
	off := 0
	for {
		i := bytes.Index(s.buf[off:], []byte(Delimiter))
		if i < 0 {
			break
		}
		if f := strings.TrimSpace(string(s.buf[off : off+i])); f != "" {
			frames = append(frames, f)
		}
		off += i + len(Delimiter)
	}

	if off > 0 {
		s.buf = append(s.buf[:0], s.buf[off:]...)
	}
	return frames
}

// Pending returns the buffered partial frame.
func (s *Splitter) Pending() string {
	return string(s.buf)
}

// Flush returns the trimmed remainder when the stream closes and empties the
// buffer. ok is false when nothing but whitespace was left.
func (s *Splitter) Flush() (frame string, ok bool) {
	frame = strings.TrimSpace(string(s.buf))
	s.buf = s.buf[:0]
	return frame, frame != ""
}
