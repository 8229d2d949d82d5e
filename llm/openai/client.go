// Package openai implements the llm.Provider contract for OpenAI-compatible
// chat completion APIs, including embeddings and live model listing.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/jatin2507/docdelta/llm"
	"github.com/jatin2507/docdelta/usage"
)

const (
	defaultModel          = "gpt-4o-mini"
	defaultEmbeddingModel = "text-embedding-3-small"
)

var staticModels = []string{"gpt-4o", "gpt-4o-mini", "o3-mini"}

// Adapter implements llm.Provider against OpenAI's API. A custom BaseURL in
// the config points it at any OpenAI-compatible gateway.
type Adapter struct {
	*llm.Base

	mu     sync.Mutex
	client *openai.Client
}

// New constructs an Adapter. The network client is created lazily.
func New(cfg *llm.Config, logger zerolog.Logger, recorder usage.Recorder) (llm.Provider, error) {
	return &Adapter{
		Base: llm.NewBase(llm.ProviderOpenAI, cfg, logger, recorder),
	}, nil
}

// Initialize establishes the API client. Idempotent.
func (a *Adapter) Initialize(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.client != nil {
		return nil
	}

	apiKey := a.Config().APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return llm.NewConfigurationError(llm.ProviderOpenAI, "openai API key not configured")
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if a.Config().BaseURL != "" {
		clientConfig.BaseURL = a.Config().BaseURL
	}
	if a.Config().Organization != "" {
		clientConfig.OrgID = a.Config().Organization
	}

	a.client = openai.NewClientWithConfig(clientConfig)
	return nil
}

func (a *Adapter) ensureClient(ctx context.Context) (*openai.Client, error) {
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

// chatRequest assembles the completion request from the config's generation
// parameters and the prompt pair.
func (a *Adapter) chatRequest(prompt, systemPrompt string, stream bool) openai.ChatCompletionRequest {
	cfg := a.Config()

	var messages []openai.ChatCompletionMessage
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	req := openai.ChatCompletionRequest{
		Model:    a.model(),
		Messages: messages,
		Stream:   stream,
	}
	if cfg.MaxTokens > 0 {
		req.MaxTokens = int(cfg.MaxTokens)
	}
	if cfg.Temperature != nil {
		req.Temperature = float32(*cfg.Temperature)
	}
	if cfg.TopP != nil {
		req.TopP = float32(*cfg.TopP)
	}
	if len(cfg.StopSequences) > 0 {
		req.Stop = cfg.StopSequences
	}
	return req
}

func (a *Adapter) generate(ctx context.Context, op, prompt, systemPrompt string) (*llm.Response, error) {
	client, err := a.ensureClient(ctx)
	if err != nil {
		return nil, err
	}

	req := a.chatRequest(prompt, systemPrompt, false)
	return a.Generate(ctx, op, func(ctx context.Context) (*llm.Response, error) {
		chatResp, err := client.CreateChatCompletion(ctx, req)
		if err != nil {
			return nil, convertError(err)
		}
		if len(chatResp.Choices) == 0 {
			return nil, llm.NewProviderError(llm.ProviderOpenAI, "no choices in response", nil)
		}

		choice := chatResp.Choices[0]
		return &llm.Response{
			Text:  choice.Message.Content,
			Model: chatResp.Model,
			Usage: &llm.Usage{
				PromptTokens:     int64(chatResp.Usage.PromptTokens),
				CompletionTokens: int64(chatResp.Usage.CompletionTokens),
				TotalTokens:      int64(chatResp.Usage.TotalTokens),
			},
			StopReason: string(choice.FinishReason),
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

// GenerateEmbedding implements llm.Provider.
func (a *Adapter) GenerateEmbedding(ctx context.Context, text string) ([]float64, error) {
	client, err := a.ensureClient(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(defaultEmbeddingModel),
	})
	if err != nil {
		return nil, convertError(err)
	}
	if len(resp.Data) == 0 {
		return nil, llm.NewProviderError(llm.ProviderOpenAI, "no embedding in response", nil)
	}

	vector := make([]float64, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		vector[i] = float64(v)
	}
	a.AddTokens(int64(resp.Usage.TotalTokens))
	return vector, nil
}

// GenerateStream implements llm.Provider.
func (a *Adapter) GenerateStream(ctx context.Context, prompt, systemPrompt string) (llm.Stream, error) {
	client, err := a.ensureClient(ctx)
	if err != nil {
		return nil, err
	}

	inner, err := client.CreateChatCompletionStream(ctx, a.chatRequest(prompt, systemPrompt, true))
	if err != nil {
		return nil, convertError(err)
	}
	return newStream(a, inner), nil
}

// ValidateConfig implements llm.Provider; model listing is the cheapest
// authenticated probe.
func (a *Adapter) ValidateConfig(ctx context.Context) bool {
	client, err := a.ensureClient(ctx)
	if err != nil {
		return false
	}
	if _, err := client.ListModels(ctx); err != nil {
		log := a.Logger()
		log.Debug().Err(err).Msg("Validation probe failed")
		return false
	}
	return true
}

// ModelList implements llm.Provider: live enumeration with a static
// fallback so the list is never empty.
func (a *Adapter) ModelList(ctx context.Context) []string {
	client, err := a.ensureClient(ctx)
	if err != nil {
		return append([]string(nil), staticModels...)
	}

	resp, err := client.ListModels(ctx)
	if err != nil || len(resp.Models) == 0 {
		return append([]string(nil), staticModels...)
	}

	models := make([]string, 0, len(resp.Models))
	for _, model := range resp.Models {
		models = append(models, model.ID)
	}
	return models
}

// convertError maps OpenAI API errors into the llm taxonomy.
func convertError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.APIError
	if !errors.As(err, &apiErr) {
		return llm.NewProviderError(llm.ProviderOpenAI, "openai API error", err)
	}

	switch {
	case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
		return llm.NewRateLimitError(llm.ProviderOpenAI, "openai rate limit", err)
	case apiErr.HTTPStatusCode >= http.StatusInternalServerError:
		return llm.NewTransientError(llm.ProviderOpenAI, fmt.Sprintf("openai server error (%d)", apiErr.HTTPStatusCode), apiErr.HTTPStatusCode, err)
	case apiErr.HTTPStatusCode == http.StatusBadRequest:
		return &llm.Error{
			Type:        llm.ErrorTypeInvalidRequest,
			Message:     "openai invalid request",
			StatusCode:  apiErr.HTTPStatusCode,
			Provider:    llm.ProviderOpenAI,
			ProviderErr: err,
		}
	default:
		return &llm.Error{
			Type:        llm.ErrorTypeProvider,
			Message:     "openai API error",
			StatusCode:  apiErr.HTTPStatusCode,
			Provider:    llm.ProviderOpenAI,
			ProviderErr: err,
		}
	}
}

var _ llm.Provider = (*Adapter)(nil)
