package testutil

import (
	"context"
	"sync"

	"sharectl/internal/share"
)

// Reply is one scripted outcome of FakeGateway.Call.
type Reply struct {
	Response *share.Response
	Err      error
}

// OK returns a successful reply carrying message.
func OK(message string) Reply {
	return Reply{Response: &share.Response{Message: message}}
}

// Remaining returns a successful reply that reports n remaining shares.
func Remaining(message string, n int) Reply {
	return Reply{Response: &share.Response{Message: message, RemainingShares: &n}}
}

// Fail returns a reply whose error is a RemoteError with status and message.
func Fail(status int, message string) Reply {
	return Reply{Err: &share.RemoteError{Status: status, Message: message}}
}

// FakeGateway records every request and answers from a scripted queue.
// When the queue is empty it answers with an empty successful Response.
type FakeGateway struct {
	mu       sync.Mutex
	replies  []Reply
	requests []share.Request

	// Block, when set, makes Call wait until it is closed or ctx is done.
	// Entered receives once per call that reached the wait.
	Block   chan struct{}
	Entered chan struct{}
}

func NewFakeGateway(replies ...Reply) *FakeGateway {
	return &FakeGateway{replies: replies}
}

// Push appends replies to the queue.
func (g *FakeGateway) Push(replies ...Reply) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.replies = append(g.replies, replies...)
}

func (g *FakeGateway) Call(ctx context.Context, req share.Request) (*share.Response, error) {
	g.mu.Lock()
	g.requests = append(g.requests, req)
	block, entered := g.Block, g.Entered
	g.mu.Unlock()

	if block != nil {
		if entered != nil {
			entered <- struct{}{}
		}
		select {
		case <-block:
		case <-ctx.Done():
			return nil, &share.RemoteError{Message: req.Fallback, Err: ctx.Err()}
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.replies) == 0 {
		return &share.Response{}, nil
	}
	r := g.replies[0]
	g.replies = g.replies[1:]
	if r.Err != nil {
		return nil, r.Err
	}
	if r.Response == nil {
		return &share.Response{}, nil
	}
	return r.Response, nil
}

// Requests returns a copy of the recorded requests.
func (g *FakeGateway) Requests() []share.Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]share.Request(nil), g.requests...)
}

// Calls returns the number of recorded requests.
func (g *FakeGateway) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.requests)
}

var _ share.Gateway = (*FakeGateway)(nil)
