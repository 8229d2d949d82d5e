package ollama

import (
	"context"
	"sync"

	"github.com/ollama/ollama/api"

	"github.com/jatin2507/docdelta/llm"
)

// fragment is one delivery from the daemon's push callback.
type fragment struct {
	text  string
	usage *llm.Usage
}

// stream adapts the daemon's push-style Chat callback to the pull-style
// llm.Stream contract. A goroutine runs the request and feeds fragments
// over a channel; Close cancels the request context so the daemon stops
// generating.
type stream struct {
	adapter *Adapter
	cancel  context.CancelFunc
	ch      chan fragment

	mu     sync.Mutex
	err    error
	closed bool

	text string
}

func newStream(ctx context.Context, adapter *Adapter, client *api.Client, req *api.ChatRequest) *stream {
	ctx, cancel := context.WithCancel(ctx)
	s := &stream{
		adapter: adapter,
		cancel:  cancel,
		ch:      make(chan fragment),
	}

	go func() {
		defer close(s.ch)
		err := client.Chat(ctx, req, func(resp api.ChatResponse) error {
			frag := fragment{text: resp.Message.Content}
			if resp.Done {
				frag.usage = &llm.Usage{
					PromptTokens:     int64(resp.PromptEvalCount),
					CompletionTokens: int64(resp.EvalCount),
				}
				frag.usage.TotalTokens = frag.usage.PromptTokens + frag.usage.CompletionTokens
			}
			select {
			case s.ch <- frag:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err != nil && ctx.Err() == nil {
			s.mu.Lock()
			s.err = convertError(err)
			s.mu.Unlock()
		}
	}()

	return s
}

// Next blocks for the next text fragment. Empty deliveries (such as the
// final done marker) are skipped; their usage counts still settle.
func (s *stream) Next() bool {
	for frag := range s.ch {
		if frag.usage != nil {
			s.adapter.AddTokens(frag.usage.Total())
		}
		if frag.text != "" {
			s.text = frag.text
			return true
		}
	}
	return false
}

// Text returns the most recent fragment.
func (s *stream) Text() string {
	return s.text
}

// Err reports a mid-stream failure, if any.
func (s *stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close aborts the request and releases the connection. Idempotent.
func (s *stream) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	// Drain so the producer goroutine can exit.
	for range s.ch {
	}
	return nil
}

var _ llm.Stream = (*stream)(nil)
