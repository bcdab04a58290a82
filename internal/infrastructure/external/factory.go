package external

import (
	"fmt"

	"github.com/docuflow/docuflow/internal/application/port"
	"github.com/docuflow/docuflow/internal/domain/entity"
	"github.com/docuflow/docuflow/internal/infrastructure/external/gemini"
	"github.com/docuflow/docuflow/internal/infrastructure/external/openai"
	"go.uber.org/zap"
)

// SummarizerFactory resolves AI providers per tenant setting. Each call
// builds a provider bound to the tenant's own API key.
type SummarizerFactory struct {
	temperature float32
	logger      *zap.Logger
}

// NewSummarizerFactory creates the provider factory
func NewSummarizerFactory(temperature float32, logger *zap.Logger) port.SummarizerFactory {
	return &SummarizerFactory{temperature: temperature, logger: logger}
}

// ForSetting returns the summarizer matching the tenant's provider.
func (f *SummarizerFactory) ForSetting(setting *entity.CompanyAISetting) (port.Summarizer, error) {
	if !setting.Enabled() {
		return nil, fmt.Errorf("ai processing is disabled")
	}

	switch setting.Provider {
	case entity.AiProviderOpenAI:
		return openai.NewSummarizer(setting.APIKey, f.temperature, f.logger), nil
	case entity.AiProviderGemini:
		return gemini.NewSummarizer(setting.APIKey, f.logger), nil
	default:
		return nil, fmt.Errorf("unsupported ai provider %q", setting.Provider)
	}
}
