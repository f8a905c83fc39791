// Package llmtest provides a scripted llm.Backend for tests.
package llmtest

import (
	"context"
	"errors"
	"sync"

	"github.com/dimslaev/spaider/pkg/llm"
)

// ErrNoReply is returned once the script runs out.
var ErrNoReply = errors.New("llmtest: no scripted reply left")

// Reply is one scripted answer.
type Reply struct {
	Text string
	Err  error
}

// Backend replays scripted replies in order and records every request.
// When Respond is set it is used instead of the script.
type Backend struct {
	Respond func(req llm.Request) (string, error)

	mu       sync.Mutex
	replies  []Reply
	requests []llm.Request
}

// New returns a backend that answers with texts in order.
func New(texts ...string) *Backend {
	b := &Backend{}
	for _, t := range texts {
		b.Push(t)
	}
	return b
}

// Push appends a text reply.
func (b *Backend) Push(text string) *Backend {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.replies = append(b.replies, Reply{Text: text})
	return b
}

// PushError appends a failing reply.
func (b *Backend) PushError(err error) *Backend {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.replies = append(b.replies, Reply{Err: err})
	return b
}

func (b *Backend) Send(ctx context.Context, req llm.Request) (string, error) {
	b.mu.Lock()
	b.requests = append(b.requests, req)
	respond := b.Respond
	var next *Reply
	if respond == nil && len(b.replies) > 0 {
		next = &b.replies[0]
		b.replies = b.replies[1:]
	}
	b.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if respond != nil {
		return respond(req)
	}
	if next == nil {
		return "", ErrNoReply
	}
	return next.Text, next.Err
}

// Calls returns how many requests were sent.
func (b *Backend) Calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.requests)
}

// Requests returns a copy of every recorded request.
func (b *Backend) Requests() []llm.Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]llm.Request(nil), b.requests...)
}

// Last returns the most recent request, or the zero Request.
func (b *Backend) Last() llm.Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.requests) == 0 {
		return llm.Request{}
	}
	return b.requests[len(b.requests)-1]
}

// Client wraps b in an llm.Client without retries.
func Client(b *Backend) *llm.Client {
	return llm.NewClient(b, llm.Options{Model: "test-model"}, nil)
}
