package blueprint

import (
	"strings"
	"testing"
)

func TestBuildBlueprintPromptDeterministic(t *testing.T) {
	responses := map[string]any{
		"tdcj_number":     "02134567",
		"remorse":         "I take full responsibility.",
		"housing_address": "123 Main St, Houston TX",
		"why_parole":      "Stable home and job waiting.",
	}
	docs := []DocumentSummary{
		{Type: "SUPPORT_LETTER", FileName: "mom.pdf", ID: "doc-1"},
		{Type: "CERTIFICATE", FileName: "ged.pdf", ID: "doc-2"},
	}

	first := BuildBlueprintPrompt(responses, docs)
	second := BuildBlueprintPrompt(responses, docs)
	if first != second {
		t.Fatalf("prompt not deterministic for identical inputs")
	}
}

func TestBuildBlueprintPromptIncludesAllFields(t *testing.T) {
	responses := map[string]any{
		"remorse":    "I take full responsibility.",
		"why_parole": "Stable home and job waiting.",
	}
	docs := []DocumentSummary{
		{Type: "SUPPORT_LETTER", FileName: "mom.pdf", ID: "doc-1"},
	}

	prompt := BuildBlueprintPrompt(responses, docs)
	for _, want := range []string{
		"remorse", "I take full responsibility.",
		"why_parole", "Stable home and job waiting.",
		"SUPPORT_LETTER", "mom.pdf", "doc-1",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
}

func TestBuildBlueprintPromptNilInputs(t *testing.T) {
	prompt := BuildBlueprintPrompt(nil, nil)
	if !strings.Contains(prompt, "ASSESSMENT DATA:") || !strings.Contains(prompt, "AVAILABLE DOCUMENTS:") {
		t.Fatalf("prompt scaffold missing on nil inputs")
	}
}

func TestSystemPromptConstraints(t *testing.T) {
	for _, want := range []string{
		"NEVER fabricate",
		"parole is discretionary",
		"single JSON object",
	} {
		if !strings.Contains(SystemPrompt, want) {
			t.Fatalf("system prompt missing constraint %q", want)
		}
	}
}
