package llm

// modelPricing holds per-1K-token USD rates for one model.
type modelPricing struct {
	PromptPer1K     float64
	CompletionPer1K float64
}

// pricingTable maps provider kind -> model -> rates. The "default" entry per
// provider is used for models without their own row. Local backends carry no
// table at all and estimate to zero.
var pricingTable = map[string]map[string]modelPricing{
	ProviderAnthropic: {
		"claude-sonnet-4-20250514": {PromptPer1K: 0.003, CompletionPer1K: 0.015},
		"claude-haiku-4-5":         {PromptPer1K: 0.001, CompletionPer1K: 0.005},
		"default":                  {PromptPer1K: 0.003, CompletionPer1K: 0.015},
	},
	ProviderOpenAI: {
		"gpt-4o":      {PromptPer1K: 0.0025, CompletionPer1K: 0.01},
		"gpt-4o-mini": {PromptPer1K: 0.00015, CompletionPer1K: 0.0006},
		"default":     {PromptPer1K: 0.0025, CompletionPer1K: 0.01},
	},
}

// EstimateCost estimates the USD cost of a call. It returns zero for
// providers or models with no pricing entry and no default.
func EstimateCost(provider, model string, usage *Usage) float64 {
	if usage == nil {
		return 0
	}
	providerPricing, ok := pricingTable[provider]
	if !ok {
		return 0
	}
	entry, ok := providerPricing[model]
	if !ok {
		entry, ok = providerPricing["default"]
		if !ok {
			return 0
		}
	}

	prompt := usage.PromptTokens
	completion := usage.CompletionTokens
	if prompt == 0 && completion == 0 {
		// Only a total was reported; price it all at the completion rate,
		// the conservative choice.
		completion = usage.TotalTokens
	}

	return (float64(prompt)/1000.0)*entry.PromptPer1K +
		(float64(completion)/1000.0)*entry.CompletionPer1K
}
