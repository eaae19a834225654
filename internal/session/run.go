package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/simtai/simtai/internal/exam"
	"github.com/simtai/simtai/internal/sse"
)

// Run is one generation request. It is canceled when the session moves on,
// after which its events are ignored.
type Run struct {
	m      *Machine
	id     uint64
	ctx    context.Context
	cancel context.CancelFunc

	// Request is what will be sent to the generation service.
	Request exam.GenerationRequest

	closeOnce sync.Once
	closeBody func() error
}

// ID is the run's generation number, increasing per Machine.
func (r *Run) ID() uint64 {
	return r.id
}

// Context is canceled when the run is over or superseded.
func (r *Run) Context() context.Context {
	return r.ctx
}

// Open sends the request and returns the event stream. A request failure
// is applied to the machine before it is returned.
func (r *Run) Open() (<-chan sse.Item, error) {
	body, err := r.m.gen.Generate(r.ctx, r.Request)
	if err != nil {
		if r.ctx.Err() == nil {
			r.m.Fail(r, err)
		}
		return nil, err
	}
	r.closeBody = body.Close
	context.AfterFunc(r.ctx, func() { r.Close() })
	return sse.Stream(r.ctx, body, r.m.chunkSize), nil
}

// Close releases the response body. It is safe to call more than once.
func (r *Run) Close() {
	r.closeOnce.Do(func() {
		if r.closeBody != nil {
			_ = r.closeBody()
		}
	})
}

// Deliver applies one stream item. It returns true when the caller should
// stop reading.
func (r *Run) Deliver(it sse.Item) bool {
	if it.Err != nil {
		r.m.Fail(r, fmt.Errorf("stream interrupted: %w", it.Err))
		return true
	}
	return r.m.Apply(r, it.Event)
}

// End is called when the stream channel closes. Without a prior sentinel
// or failure the accumulated questions are accepted.
func (r *Run) End() {
	if r.ctx.Err() == nil {
		r.m.Complete(r)
	}
	r.Close()
}

// Consume reads the whole stream, applying every event. notify, if set, is
// called after each applied item. It returns the request error, if any;
// stream failures are recorded on the machine instead.
func (r *Run) Consume(notify func()) error {
	ch, err := r.Open()
	if err != nil {
		return err
	}
	defer r.End()

	for it := range ch {
		stop := r.Deliver(it)
		if notify != nil {
			notify()
		}
		if stop {
			return nil
		}
	}
	return nil
}
