package llm

import (
	"math"
	"testing"
)

func TestEstimateCost(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		model    string
		usage    *Usage
		want     float64
	}{
		{
			name:     "known model",
			provider: ProviderAnthropic,
			model:    "claude-haiku-4-5",
			usage:    &Usage{PromptTokens: 1000, CompletionTokens: 1000},
			want:     0.006,
		},
		{
			name:     "unknown model falls back to provider default",
			provider: ProviderAnthropic,
			model:    "claude-experimental",
			usage:    &Usage{PromptTokens: 1000, CompletionTokens: 0},
			want:     0.003,
		},
		{
			name:     "local provider has no pricing",
			provider: ProviderOllama,
			model:    "llama3.2:3b",
			usage:    &Usage{PromptTokens: 5000, CompletionTokens: 5000},
			want:     0,
		},
		{
			name:     "total-only usage priced at completion rate",
			provider: ProviderOpenAI,
			model:    "gpt-4o",
			usage:    &Usage{TotalTokens: 1000},
			want:     0.01,
		},
		{
			name:     "nil usage",
			provider: ProviderOpenAI,
			model:    "gpt-4o",
			usage:    nil,
			want:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimateCost(tt.provider, tt.model, tt.usage)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("EstimateCost = %f, want %f", got, tt.want)
			}
		})
	}
}
