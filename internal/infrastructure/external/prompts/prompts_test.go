package prompts

import (
	"strings"
	"testing"

	"github.com/docuflow/docuflow/internal/application/port"
)

func TestBuildSummaryPrompt(t *testing.T) {
	prompt, err := BuildSummaryPrompt(port.SummarizeRequest{
		Title:         "Contrato marco",
		Description:   "Renovación anual",
		Content:       "El presente contrato se celebra entre las partes.",
		PromptVersion: "v1.0.0",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{"Contrato marco", "Renovación anual", "El presente contrato"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("expected prompt to contain %q", want)
		}
	}
}

func TestBuildSummaryPromptOmitsEmptyDescription(t *testing.T) {
	prompt, err := BuildSummaryPrompt(port.SummarizeRequest{
		Title:         "Factura",
		Content:       "Total: 1200",
		PromptVersion: "v1.0.0",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(prompt, "**Description:**") {
		t.Errorf("expected description block to be omitted, got:\n%s", prompt)
	}
}

func TestBuildSummaryPromptUnknownVersion(t *testing.T) {
	_, err := BuildSummaryPrompt(port.SummarizeRequest{
		Title:         "Factura",
		Content:       "Total: 1200",
		PromptVersion: "v9.9.9",
	})
	if err == nil {
		t.Fatal("expected error for unknown prompt version")
	}
}
