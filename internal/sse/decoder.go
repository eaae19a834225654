// Package sse turns a chunked server-sent-event byte stream into typed
// application events.
//
// The pipeline is Decoder (bytes to text) then Splitter (text to frames)
// then Classify (frame to Event). Parser wires the three together and Stream
// runs a Parser over an io.Reader in its own goroutine.
package sse

import (
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Decoder converts byte chunks to UTF-8 text. A multi-byte sequence split
// across chunks is held back until its remaining bytes arrive. Invalid
// sequences decode to U+FFFD.
type Decoder struct {
	t       transform.Transformer
	pending []byte
	buf     [4096]byte
}

// NewDecoder returns a Decoder with no carried-over bytes.
func NewDecoder() *Decoder {
	return &Decoder{t: unicode.UTF8.NewDecoder()}
}

// Decode decodes chunk, prefixed by any bytes held back from the previous
// call, and returns the text that is complete so far.
func (d *Decoder) Decode(chunk []byte) string {
	src := chunk
	if len(d.pending) > 0 {
		src = append(d.pending, chunk...)
		d.pending = nil
	}
	out, rest := d.run(src, false)
	if len(rest) > 0 {
		d.pending = append([]byte(nil), rest...)
	}
	return out
}

// Flush returns replacement characters for any bytes still held back and
// resets the decoder.
func (d *Decoder) Flush() string {
	src := d.pending
	d.pending = nil
	out, _ := d.run(src, true)
	d.t.Reset()
	return out
}

// Pending reports how many bytes are waiting for the rest of their rune.
func (d *Decoder) Pending() int {
	return len(d.pending)
}

func (d *Decoder) run(src []byte, atEOF bool) (string, []byte) {
	var b strings.Builder
	for len(src) > 0 {
		nDst, nSrc, err := d.t.Transform(d.buf[:], src, atEOF)
		b.Write(d.buf[:nDst])
		src = src[nSrc:]
		switch {
		case err == nil:
			return b.String(), nil
		case errors.Is(err, transform.ErrShortDst):
			continue
		case errors.Is(err, transform.ErrShortSrc):
			return b.String(), src
		default:
			// The UTF-8 decoder only reports short buffers; anything else is
			// replaced like any other invalid input.
			b.WriteRune(utf8.RuneError)
			if nSrc == 0 {
				src = src[1:]
			}
		}
	}
	return b.String(), nil
}
