package sse

import (
	"context"
	"errors"
	"io"
)

// DefaultChunkSize is the read size used by Stream when none is given.
const DefaultChunkSize = 4096

// Parser runs the decode, split and classify steps over pushed chunks.
// It is not safe for concurrent use.
type Parser struct {
	dec   *Decoder
	split Splitter
}

// NewParser returns an empty Parser.
func NewParser() *Parser {
	return &Parser{dec: NewDecoder()}
}

// Feed consumes one raw chunk and returns the events it completes.
func (p *Parser) Feed(chunk []byte) []Event {
	return p.classify(p.split.Push(p.dec.Decode(chunk)))
}

// Close flushes the decoder and the splitter. A trailing frame that was not
// terminated by a blank line is still classified.
func (p *Parser) Close() []Event {
	frames := p.split.Push(p.dec.Flush())
	if tail, ok := p.split.Flush(); ok {
		frames = append(frames, tail)
	}
	return p.classify(frames)
}

// Frames is Feed without classification, for inspecting the raw framing.
func (p *Parser) Frames(chunk []byte) []string {
	return p.split.Push(p.dec.Decode(chunk))
}

func (p *Parser) classify(frames []string) []Event {
	var out []Event
	for _, f := range frames {
		if ev, ok := Classify(f); ok {
			out = append(out, ev)
		}
	}
	return out
}

// Item is one element delivered by Stream: an event, or the read error that
// ended the stream.
type Item struct {
	Event Event
	Err   error
}

// Stream reads r in chunks of chunkSize bytes and delivers events in frame
// order. The channel is closed after the last event at EOF, after an Item
// carrying a read error, or when ctx is done. The caller owns r and should
// close it on cancellation to unblock a pending Read.
func Stream(ctx context.Context, r io.Reader, chunkSize int) <-chan Item {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	out := make(chan Item)

	go func() {
		defer close(out)

		send := func(it Item) bool {
			select {
			case out <- it:
				return true
			case <-ctx.Done():
				return false
			}
		}

		p := NewParser()
		buf := make([]byte, chunkSize)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				for _, ev := range p.Feed(buf[:n]) {
					if !send(Item{Event: ev}) {
						return
					}
				}
			}
			if err == nil {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, io.EOF) {
				for _, ev := range p.Close() {
					if !send(Item{Event: ev}) {
						return
					}
				}
				return
			}
			send(Item{Err: err})
			return
		}
	}()

	return out
}
