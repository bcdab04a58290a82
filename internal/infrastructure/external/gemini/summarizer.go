package gemini

import (
	"context"
	"fmt"

	"github.com/docuflow/docuflow/internal/application/port"
	"github.com/docuflow/docuflow/internal/domain/entity"
	"github.com/docuflow/docuflow/internal/infrastructure/external/prompts"
	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Summarizer implements port.Summarizer using the Google Gemini API.
// The genai client needs a context at construction, so it is created per
// call; tenants hold their own API keys and calls are infrequent.
type Summarizer struct {
	apiKey string
	logger *zap.Logger
}

// NewSummarizer creates a Gemini summarizer with the tenant's API key
func NewSummarizer(apiKey string, logger *zap.Logger) *Summarizer {
	return &Summarizer{apiKey: apiKey, logger: logger}
}

// Provider returns the provider identifier
func (s *Summarizer) Provider() string {
	return entity.AiProviderGemini
}

// Summarize produces a summary of the document content.
func (s *Summarizer) Summarize(ctx context.Context, req port.SummarizeRequest) (string, error) {
	if s.apiKey == "" {
		return "", fmt.Errorf("gemini api key is empty")
	}

	s.logger.Debug("Summarizing with Gemini",
		zap.String("model", req.Model),
		zap.String("prompt_version", req.PromptVersion),
		zap.Int("content_length", len(req.Content)))

	client, err := genai.NewClient(ctx, option.WithAPIKey(s.apiKey))
	if err != nil {
		return "", fmt.Errorf("failed to create genai client: %w", err)
	}
	defer client.Close()

	prompt, err := prompts.BuildSummaryPrompt(req)
	if err != nil {
		return "", err
	}

	model := client.GenerativeModel(req.Model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(prompts.SummarySystemPrompt)},
	}
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		s.logger.Error("Gemini API call failed", zap.Error(err))
		return "", fmt.Errorf("gemini generation error: %w", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from gemini")
	}

	var summary string
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			summary += string(txt)
		}
	}

	s.logger.Info("Gemini summary completed",
		zap.String("model", req.Model),
		zap.Int("summary_length", len(summary)))
	return summary, nil
}
