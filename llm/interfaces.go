package llm

import (
	"context"
)

// Provider is the capability contract every backend adapter implements.
// Implementations handle vendor-specific details internally; callers never
// see a vendor SDK type.
type Provider interface {
	// Initialize establishes or validates the network client. It returns a
	// configuration error when required credentials are absent. It is
	// idempotent: later calls may re-validate but never corrupt prior state.
	Initialize(ctx context.Context) error

	// GenerateText performs single-shot generation. The retry policy is
	// applied internally.
	GenerateText(ctx context.Context, prompt, systemPrompt string) (*Response, error)

	// GenerateStream produces a finite, non-restartable sequence of
	// incremental text fragments. The caller drives consumption and must
	// call Close; stopping early releases the underlying connection.
	GenerateStream(ctx context.Context, prompt, systemPrompt string) (Stream, error)

	// Summarize builds a summarization prompt from req and delegates to
	// GenerateText.
	Summarize(ctx context.Context, req *SummarizeRequest) (*Response, error)

	// AnalyzeCode builds a code-analysis prompt from req and delegates to
	// GenerateText.
	AnalyzeCode(ctx context.Context, req *AnalyzeRequest) (*Response, error)

	// GenerateDiagram builds a diagram prompt from req and delegates to
	// GenerateText.
	GenerateDiagram(ctx context.Context, req *DiagramRequest) (*Response, error)

	// GenerateEmbedding returns an embedding vector for text. Providers
	// without embedding support return an unsupported-operation error, never
	// a degraded result.
	GenerateEmbedding(ctx context.Context, text string) ([]float64, error)

	// ValidateConfig performs a minimal live probe. It never returns an
	// error; any failure becomes false.
	ValidateConfig(ctx context.Context) bool

	// ModelList enumerates available models. It returns a non-empty list
	// even when live enumeration fails, falling back to a static list.
	ModelList(ctx context.Context) []string

	// EstimateTokens is a fast local approximation of the token count.
	EstimateTokens(text string) int

	// TokenCount reads the instance-scoped cumulative token counter.
	TokenCount() int64

	// ResetTokenCount resets the instance-scoped counter to zero.
	ResetTokenCount()
}

// Stream delivers incremental text from a streaming generation. It is
// pull-based: the caller repeatedly invokes Next and reads Text. Close
// releases the underlying connection and is safe to call at any point,
// including before the stream is exhausted.
type Stream interface {
	// Next advances to the next text fragment. It returns false when the
	// stream is complete or an error occurred.
	Next() bool

	// Text returns the current fragment. Only valid after Next returned true.
	Text() string

	// Err returns the error that terminated the stream, if any.
	Err() error

	// Close releases the underlying connection.
	Close() error
}

// CollectStream drains a stream into a single string, closing it afterwards.
func CollectStream(s Stream) (string, error) {
	defer s.Close()
	var out []byte
	for s.Next() {
		out = append(out, s.Text()...)
	}
	return string(out), s.Err()
}
