package openai

import (
	"errors"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/jatin2507/docdelta/llm"
)

// stream adapts the SDK's Recv-based stream to the pull llm.Stream contract.
type stream struct {
	adapter *Adapter
	inner   *openai.ChatCompletionStream
	text    string
	err     error
	closed  bool

	// collected accumulates delivered text so the token counter can be
	// settled on EOF; streaming responses carry no usage block by default.
	collected strings.Builder
}

func newStream(adapter *Adapter, inner *openai.ChatCompletionStream) *stream {
	return &stream{adapter: adapter, inner: inner}
}

// Next implements llm.Stream.
func (s *stream) Next() bool {
	if s.closed || s.err != nil {
		return false
	}

	for {
		resp, err := s.inner.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.adapter.AddTokens(int64(s.adapter.EstimateTokens(s.collected.String())))
			} else {
				s.err = convertError(err)
			}
			return false
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if delta := resp.Choices[0].Delta.Content; delta != "" {
			s.text = delta
			s.collected.WriteString(delta)
			return true
		}
	}
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
