package openai

import (
	"context"
	"fmt"

	"github.com/docuflow/docuflow/internal/application/port"
	"github.com/docuflow/docuflow/internal/domain/entity"
	"github.com/docuflow/docuflow/internal/infrastructure/external/prompts"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Summarizer implements port.Summarizer using the OpenAI chat API.
type Summarizer struct {
	client      *openai.Client
	temperature float32
	logger      *zap.Logger
}

// NewSummarizer creates an OpenAI summarizer with the tenant's API key
func NewSummarizer(apiKey string, temperature float32, logger *zap.Logger) *Summarizer {
	return &Summarizer{
		client:      openai.NewClient(apiKey),
		temperature: temperature,
		logger:      logger,
	}
}

// Provider returns the provider identifier
func (s *Summarizer) Provider() string {
	return entity.AiProviderOpenAI
}

// Summarize produces a summary of the document content.
func (s *Summarizer) Summarize(ctx context.Context, req port.SummarizeRequest) (string, error) {
	s.logger.Debug("Summarizing with OpenAI",
		zap.String("model", req.Model),
		zap.String("prompt_version", req.PromptVersion),
		zap.Int("content_length", len(req.Content)))

	prompt, err := prompts.BuildSummaryPrompt(req)
	if err != nil {
		return "", err
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Temperature: s.temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: prompts.SummarySystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		s.logger.Error("OpenAI API call failed", zap.Error(err))
		return "", fmt.Errorf("OpenAI API call failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}

	summary := resp.Choices[0].Message.Content
	s.logger.Info("OpenAI summary completed",
		zap.String("model", req.Model),
		zap.Int("summary_length", len(summary)))
	return summary, nil
}
