package llm

import (
	"strings"
	"testing"
)

func TestBuildSummarizePrompt(t *testing.T) {
	prompt, system := BuildSummarizePrompt(&SummarizeRequest{
		Content: "the content",
		Style:   StyleSimple,
		Context: "README.md",
	})
	if !strings.Contains(prompt, "plain language") {
		t.Errorf("simple style missing from prompt: %s", prompt)
	}
	if !strings.Contains(prompt, "Context: README.md") {
		t.Errorf("context missing from prompt: %s", prompt)
	}
	if !strings.Contains(prompt, "the content") {
		t.Errorf("content missing from prompt: %s", prompt)
	}
	if system == "" {
		t.Error("expected a system prompt")
	}

	// Empty style defaults to technical.
	prompt, _ = BuildSummarizePrompt(&SummarizeRequest{Content: "x"})
	if !strings.Contains(prompt, "technical summary") {
		t.Errorf("default style not technical: %s", prompt)
	}
}

func TestBuildAnalyzePrompt(t *testing.T) {
	prompt, _ := BuildAnalyzePrompt(&AnalyzeRequest{
		Code:     "def f(): pass",
		Language: "python",
		Type:     AnalysisSecurity,
	})
	if !strings.Contains(prompt, "security issues") {
		t.Errorf("security instruction missing: %s", prompt)
	}
	if !strings.Contains(prompt, "```python") {
		t.Errorf("language fence missing: %s", prompt)
	}

	// Empty type defaults to summary; empty language to a plain fence.
	prompt, _ = BuildAnalyzePrompt(&AnalyzeRequest{Code: "x"})
	if !strings.Contains(prompt, "Summarize what the following code does") {
		t.Errorf("default analysis not summary: %s", prompt)
	}
	if !strings.Contains(prompt, "```text") {
		t.Errorf("default fence missing: %s", prompt)
	}
}

func TestBuildDiagramPrompt(t *testing.T) {
	prompt, _ := BuildDiagramPrompt(&DiagramRequest{
		Description: "login flow",
		Type:        DiagramSequence,
		Format:      FormatPlantUML,
	})
	if !strings.Contains(prompt, "sequence diagram in plantuml syntax") {
		t.Errorf("type/format missing: %s", prompt)
	}

	// Defaults: flowchart in mermaid.
	prompt, _ = BuildDiagramPrompt(&DiagramRequest{Description: "x"})
	if !strings.Contains(prompt, "flowchart diagram in mermaid syntax") {
		t.Errorf("defaults missing: %s", prompt)
	}
}
