package llm

import (
	"fmt"
	"strings"
)

// Prompt builders for the convenience operations. Each returns the
// (prompt, system prompt) pair an adapter feeds to GenerateText.

// BuildSummarizePrompt builds the prompt pair for a summarization request.
func BuildSummarizePrompt(req *SummarizeRequest) (prompt, system string) {
	style := req.Style
	if style == "" {
		style = StyleTechnical
	}

	var instruction string
	switch style {
	case StyleSimple:
		instruction = "Summarize the following content in plain language for a non-technical reader. Keep it short."
	case StyleDetailed:
		instruction = "Write a detailed summary of the following content. Cover every significant point and preserve structure."
	default:
		instruction = "Write a concise technical summary of the following content. Focus on behavior, inputs, and outputs."
	}

	var sb strings.Builder
	sb.WriteString(instruction)
	sb.WriteString("\n\n")
	if req.Context != "" {
		fmt.Fprintf(&sb, "Context: %s\n\n", req.Context)
	}
	sb.WriteString(req.Content)

	return sb.String(), "You are a technical writer producing accurate, grounded summaries. Never invent details absent from the source."
}

// BuildAnalyzePrompt builds the prompt pair for a code-analysis request.
func BuildAnalyzePrompt(req *AnalyzeRequest) (prompt, system string) {
	analysisType := req.Type
	if analysisType == "" {
		analysisType = AnalysisSummary
	}

	var instruction string
	switch analysisType {
	case AnalysisReview:
		instruction = "Review the following code. Point out bugs, questionable patterns, and concrete improvements."
	case AnalysisDocumentation:
		instruction = "Write reference documentation for the following code: purpose, parameters, return values, and usage notes."
	case AnalysisComplexity:
		instruction = "Assess the complexity of the following code. Identify hot spots and suggest simplifications."
	case AnalysisSecurity:
		instruction = "Audit the following code for security issues. Report each finding with severity and a suggested fix."
	default:
		instruction = "Summarize what the following code does and how its pieces fit together."
	}

	language := req.Language
	if language == "" {
		language = "text"
	}

	prompt = fmt.Sprintf("%s\n\n```%s\n%s\n```", instruction, language, req.Code)
	return prompt, "You are an experienced software engineer. Base every statement on the code shown; say so when something cannot be determined from it."
}

// BuildDiagramPrompt builds the prompt pair for a diagram request.
func BuildDiagramPrompt(req *DiagramRequest) (prompt, system string) {
	diagramType := req.Type
	if diagramType == "" {
		diagramType = DiagramFlowchart
	}
	format := req.Format
	if format == "" {
		format = FormatMermaid
	}

	prompt = fmt.Sprintf(
		"Generate a %s diagram in %s syntax for the following description. Output only the diagram definition, no prose.\n\n%s",
		diagramType, format, req.Description,
	)
	return prompt, "You generate syntactically valid diagram definitions. Output the diagram source only."
}
