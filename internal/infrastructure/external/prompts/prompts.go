package prompts

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/docuflow/docuflow/internal/application/port"
)

// SummarySystemPrompt is the system message shared by chat-style
// providers.
const SummarySystemPrompt = "You are a document analyst for a multi-tenant document management system. " +
	"Summarize documents accurately and concisely. Respond in the same language as the document."

// summaryTemplates maps prompt versions to user prompt templates. Runs
// record the version they were triggered with, so older versions stay
// available for reproducibility.
var summaryTemplates = map[string]string{
	"v1.0.0": `Summarize the following document.

**Title:** {{.Title}}
{{if .Description}}**Description:** {{.Description}}
{{end}}
**Content:**
{{.Content}}

Produce a summary of at most 200 words covering the document's purpose, key points and any deadlines or amounts mentioned.`,
}

// BuildSummaryPrompt renders the user prompt for the requested version.
func BuildSummaryPrompt(req port.SummarizeRequest) (string, error) {
	templateStr, ok := summaryTemplates[req.PromptVersion]
	if !ok {
		return "", fmt.Errorf("unknown prompt version %q", req.PromptVersion)
	}

	tmpl, err := template.New("summary").Parse(templateStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, req); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}
