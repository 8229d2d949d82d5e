package llm

import "time"

// Config holds everything needed to construct one provider adapter.
// It is treated as immutable once an adapter has been built from it;
// one Config produces exactly one adapter instance.
type Config struct {
	// Provider is the backend kind, e.g. "anthropic", "openai", "ollama".
	Provider string `yaml:"provider"`

	// APIKey is the credential for providers that require one.
	APIKey string `yaml:"api_key,omitempty"`

	// Model is the target model identifier. Empty uses the provider default.
	Model string `yaml:"model,omitempty"`

	// Generation parameters. Pointers so "unset" is distinguishable from zero.
	Temperature   *float64 `yaml:"temperature,omitempty"`
	TopP          *float64 `yaml:"top_p,omitempty"`
	TopK          *int     `yaml:"top_k,omitempty"`
	MaxTokens     int64    `yaml:"max_tokens,omitempty"`
	StopSequences []string `yaml:"stop_sequences,omitempty"`

	// TimeoutSeconds bounds each underlying network call. Zero uses
	// DefaultTimeoutSeconds.
	TimeoutSeconds int `yaml:"timeout,omitempty"`

	// Retry budget for the resilience wrapper. Zero values use
	// DefaultMaxRetries / DefaultRetryDelayMS.
	MaxRetries   int `yaml:"max_retries,omitempty"`
	RetryDelayMS int `yaml:"retry_delay_ms,omitempty"`

	// Provider-specific extras.
	BaseURL      string            `yaml:"base_url,omitempty"`
	Host         string            `yaml:"host,omitempty"`
	Organization string            `yaml:"organization,omitempty"`
	Headers      map[string]string `yaml:"headers,omitempty"`
}

const (
	// DefaultMaxRetries is the total number of attempts per logical call.
	DefaultMaxRetries = 3
	// DefaultRetryDelayMS is the initial backoff delay; it doubles per attempt.
	DefaultRetryDelayMS = 1000
	// DefaultTimeoutSeconds bounds a single network call.
	DefaultTimeoutSeconds = 120
	// DefaultMaxTokens is used when a Config carries no token limit.
	DefaultMaxTokens = 4096
)

// MaxAttempts returns the configured attempt budget, applying the default.
func (c *Config) MaxAttempts() int {
	if c.MaxRetries > 0 {
		return c.MaxRetries
	}
	return DefaultMaxRetries
}

// RetryDelay returns the configured initial backoff delay, applying the default.
func (c *Config) RetryDelay() time.Duration {
	if c.RetryDelayMS > 0 {
		return time.Duration(c.RetryDelayMS) * time.Millisecond
	}
	return DefaultRetryDelayMS * time.Millisecond
}

// Timeout returns the per-call timeout, applying the default.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutSeconds > 0 {
		return time.Duration(c.TimeoutSeconds) * time.Second
	}
	return DefaultTimeoutSeconds * time.Second
}

// Usage carries token counts reported by a provider. Fields are zero when
// the provider does not report them.
type Usage struct {
	TotalTokens      int64
	PromptTokens     int64
	CompletionTokens int64
}

// Total returns the reported total, deriving it from the parts when the
// provider only reports prompt/completion counts.
func (u *Usage) Total() int64 {
	if u == nil {
		return 0
	}
	if u.TotalTokens > 0 {
		return u.TotalTokens
	}
	return u.PromptTokens + u.CompletionTokens
}

// Response is the uniform result of a generation call. It is produced fresh
// per call and never mutated after return.
type Response struct {
	Text       string
	Model      string
	Usage      *Usage
	StopReason string
	Metadata   map[string]string
}

// SummarizeStyle selects the register of a summary.
type SummarizeStyle string

const (
	StyleTechnical SummarizeStyle = "technical"
	StyleSimple    SummarizeStyle = "simple"
	StyleDetailed  SummarizeStyle = "detailed"
)

// SummarizeRequest asks a provider to summarize a piece of content.
type SummarizeRequest struct {
	Content string
	Style   SummarizeStyle
	// Context is optional surrounding information, e.g. the file path the
	// content was extracted from.
	Context string
}

// AnalysisType selects what kind of code analysis to perform.
type AnalysisType string

const (
	AnalysisSummary       AnalysisType = "summary"
	AnalysisReview        AnalysisType = "review"
	AnalysisDocumentation AnalysisType = "documentation"
	AnalysisComplexity    AnalysisType = "complexity"
	AnalysisSecurity      AnalysisType = "security"
)

// AnalyzeRequest asks a provider to analyze source code.
type AnalyzeRequest struct {
	Code     string
	Language string
	Type     AnalysisType
}

// DiagramType selects the diagram structure to generate.
type DiagramType string

const (
	DiagramFlowchart DiagramType = "flowchart"
	DiagramSequence  DiagramType = "sequence"
	DiagramER        DiagramType = "er"
	DiagramClass     DiagramType = "class"
)

// DiagramFormat selects the output notation.
type DiagramFormat string

const (
	FormatMermaid  DiagramFormat = "mermaid"
	FormatPlantUML DiagramFormat = "plantuml"
)

// DiagramRequest asks a provider to generate a diagram definition.
type DiagramRequest struct {
	Description string
	Type        DiagramType
	Format      DiagramFormat
}
