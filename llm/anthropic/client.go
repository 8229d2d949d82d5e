// Package anthropic implements the llm.Provider contract for Anthropic's
// Messages API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog"

	"github.com/jatin2507/docdelta/llm"
	"github.com/jatin2507/docdelta/usage"
)

const defaultModel = "claude-haiku-4-5"

// staticModels is the fallback list; Anthropic has no cheap live enumeration
// worth a round trip per listing.
var staticModels = []string{
	"claude-sonnet-4-20250514",
	"claude-haiku-4-5",
	"claude-opus-4-1",
}

// Adapter implements llm.Provider against the Anthropic API.
type Adapter struct {
	*llm.Base

	mu     sync.Mutex
	client *anthropic.Client
}

// New constructs an Adapter. The network client is created lazily; a missing
// API key surfaces from Initialize, not from construction.
func New(cfg *llm.Config, logger zerolog.Logger, recorder usage.Recorder) (llm.Provider, error) {
	return &Adapter{
		Base: llm.NewBase(llm.ProviderAnthropic, cfg, logger, recorder),
	}, nil
}

// Initialize establishes the API client. It is idempotent: once a client
// exists, later calls are no-ops.
func (a *Adapter) Initialize(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.client != nil {
		return nil
	}

	apiKey := a.Config().APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return llm.NewConfigurationError(llm.ProviderAnthropic, "anthropic API key not configured")
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if a.Config().BaseURL != "" {
		opts = append(opts, option.WithBaseURL(a.Config().BaseURL))
	}
	for name, value := range a.Config().Headers {
		opts = append(opts, option.WithHeader(name, value))
	}

	client := anthropic.NewClient(opts...)
	a.client = &client
	return nil
}

// ensureClient initializes lazily on first use.
func (a *Adapter) ensureClient(ctx context.Context) (*anthropic.Client, error) {
	if err := a.Initialize(ctx); err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.client, nil
}

func (a *Adapter) model() string {
	if a.Config().Model != "" {
		return a.Config().Model
	}
	return defaultModel
}

// messageParams assembles the request from the config's generation
// parameters and the prompt pair.
func (a *Adapter) messageParams(prompt, systemPrompt string) anthropic.MessageNewParams {
	cfg := a.Config()

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = llm.DefaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model()),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: systemPrompt}}
	}
	if cfg.Temperature != nil {
		params.Temperature = anthropic.Float(*cfg.Temperature)
	}
	if cfg.TopP != nil {
		params.TopP = anthropic.Float(*cfg.TopP)
	}
	if cfg.TopK != nil {
		params.TopK = anthropic.Int(int64(*cfg.TopK))
	}
	if len(cfg.StopSequences) > 0 {
		params.StopSequences = cfg.StopSequences
	}
	return params
}

// generate is the single non-streaming path; every convenience operation
// funnels through it so the retry policy and usage accounting apply
// uniformly.
func (a *Adapter) generate(ctx context.Context, op, prompt, systemPrompt string) (*llm.Response, error) {
	client, err := a.ensureClient(ctx)
	if err != nil {
		return nil, err
	}

	params := a.messageParams(prompt, systemPrompt)
	return a.Generate(ctx, op, func(ctx context.Context) (*llm.Response, error) {
		message, err := client.Messages.New(ctx, params)
		if err != nil {
			return nil, convertError(err)
		}

		var text strings.Builder
		for _, blockUnion := range message.Content {
			if block, ok := blockUnion.AsAny().(anthropic.TextBlock); ok {
				text.WriteString(block.Text)
			}
		}

		return &llm.Response{
			Text:  text.String(),
			Model: string(message.Model),
			Usage: &llm.Usage{
				PromptTokens:     message.Usage.InputTokens,
				CompletionTokens: message.Usage.OutputTokens,
				TotalTokens:      message.Usage.InputTokens + message.Usage.OutputTokens,
			},
			StopReason: string(message.StopReason),
		}, nil
	})
}

// GenerateText implements llm.Provider.
func (a *Adapter) GenerateText(ctx context.Context, prompt, systemPrompt string) (*llm.Response, error) {
	return a.generate(ctx, "generate_text", prompt, systemPrompt)
}

// Summarize implements llm.Provider.
func (a *Adapter) Summarize(ctx context.Context, req *llm.SummarizeRequest) (*llm.Response, error) {
	prompt, system := llm.BuildSummarizePrompt(req)
	return a.generate(ctx, "summarize", prompt, system)
}

// AnalyzeCode implements llm.Provider.
func (a *Adapter) AnalyzeCode(ctx context.Context, req *llm.AnalyzeRequest) (*llm.Response, error) {
	prompt, system := llm.BuildAnalyzePrompt(req)
	return a.generate(ctx, "analyze_code", prompt, system)
}

// GenerateDiagram implements llm.Provider.
func (a *Adapter) GenerateDiagram(ctx context.Context, req *llm.DiagramRequest) (*llm.Response, error) {
	prompt, system := llm.BuildDiagramPrompt(req)
	return a.generate(ctx, "generate_diagram", prompt, system)
}

// GenerateEmbedding implements llm.Provider. Anthropic has no embedding API.
func (a *Adapter) GenerateEmbedding(ctx context.Context, text string) ([]float64, error) {
	return nil, llm.NewUnsupportedOperationError(llm.ProviderAnthropic, "embeddings")
}

// GenerateStream implements llm.Provider.
func (a *Adapter) GenerateStream(ctx context.Context, prompt, systemPrompt string) (llm.Stream, error) {
	client, err := a.ensureClient(ctx)
	if err != nil {
		return nil, err
	}
	params := a.messageParams(prompt, systemPrompt)
	return newStream(a, client.Messages.NewStreaming(ctx, params)), nil
}

// ValidateConfig implements llm.Provider with a one-token ping message.
func (a *Adapter) ValidateConfig(ctx context.Context) bool {
	client, err := a.ensureClient(ctx)
	if err != nil {
		return false
	}
	_, err = client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model()),
		MaxTokens: 1,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock("ping")),
		},
	})
	if err != nil {
		log := a.Logger()
		log.Debug().Err(err).Msg("Validation probe failed")
		return false
	}
	return true
}

// ModelList implements llm.Provider. The list is static; the configured
// model is surfaced first when it is not already present.
func (a *Adapter) ModelList(ctx context.Context) []string {
	models := append([]string(nil), staticModels...)
	if cfg := a.Config().Model; cfg != "" && !contains(models, cfg) {
		models = append([]string{cfg}, models...)
	}
	return models
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// convertError maps Anthropic API errors into the llm taxonomy.
func convertError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *anthropic.Error
	if !errors.As(err, &apiErr) {
		return llm.NewProviderError(llm.ProviderAnthropic, "anthropic API error", err)
	}

	switch {
	case apiErr.StatusCode == http.StatusTooManyRequests:
		return llm.NewRateLimitError(llm.ProviderAnthropic, "anthropic rate limit", err)
	case apiErr.StatusCode >= http.StatusInternalServerError:
		return llm.NewTransientError(llm.ProviderAnthropic, fmt.Sprintf("anthropic server error (%d)", apiErr.StatusCode), apiErr.StatusCode, err)
	case apiErr.StatusCode == http.StatusBadRequest:
		return &llm.Error{
			Type:        llm.ErrorTypeInvalidRequest,
			Message:     "anthropic invalid request",
			StatusCode:  apiErr.StatusCode,
			Provider:    llm.ProviderAnthropic,
			ProviderErr: err,
		}
	default:
		return &llm.Error{
			Type:        llm.ErrorTypeProvider,
			Message:     "anthropic API error",
			StatusCode:  apiErr.StatusCode,
			Provider:    llm.ProviderAnthropic,
			ProviderErr: err,
		}
	}
}

var _ llm.Provider = (*Adapter)(nil)
