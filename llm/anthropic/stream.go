package anthropic

import (
	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"

	"github.com/jatin2507/docdelta/llm"
)

// stream adapts the SDK's SSE stream to the pull-based llm.Stream contract.
// Text fragments are surfaced one content delta at a time; Close releases
// the underlying connection regardless of how far consumption got.
type stream struct {
	adapter *Adapter
	inner   *ssestream.Stream[anthropic.MessageStreamEventUnion]
	text    string
	err     error
	closed  bool
}

func newStream(adapter *Adapter, inner *ssestream.Stream[anthropic.MessageStreamEventUnion]) *stream {
	return &stream{adapter: adapter, inner: inner}
}

// Next implements llm.Stream.
func (s *stream) Next() bool {
	if s.closed || s.err != nil {
		return false
	}

	for s.inner.Next() {
		event := s.inner.Current()
		switch evt := event.AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			if delta, ok := evt.Delta.AsAny().(anthropic.TextDelta); ok && delta.Text != "" {
				s.text = delta.Text
				return true
			}
		case anthropic.MessageDeltaEvent:
			// Final usage arrives on the message delta.
			s.adapter.AddTokens(evt.Usage.InputTokens + evt.Usage.OutputTokens)
		}
	}

	s.err = convertError(s.inner.Err())
	return false
}

// Text implements llm.Stream.
func (s *stream) Text() string { return s.text }

// Err implements llm.Stream.
func (s *stream) Err() error { return s.err }

// Close implements llm.Stream.
func (s *stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.inner.Close()
}

var _ llm.Stream = (*stream)(nil)
