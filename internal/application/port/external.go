package port

import (
	"context"

	"github.com/docuflow/docuflow/internal/domain/entity"
)

// SummarizeRequest carries everything a provider needs for one run.
// Content has already been extracted and, when the tenant requires it,
// redacted.
type SummarizeRequest struct {
	Content       string
	Title         string
	Description   string
	Model         string
	PromptVersion string
}

// Summarizer is an AI provider capable of summarizing document content.
type Summarizer interface {
	Summarize(ctx context.Context, req SummarizeRequest) (string, error)
	Provider() string
}

// SummarizerFactory resolves a provider by name using the tenant's API
// key, so each company's runs use its own credentials.
type SummarizerFactory interface {
	ForSetting(setting *entity.CompanyAISetting) (Summarizer, error)
}

// EmailSender delivers a rendered notification to a recipient address.
// Delivery success or failure is opaque beyond the returned error.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// ContentExtractor turns an uploaded file into plain text for hashing
// and summarization.
type ContentExtractor interface {
	Extract(path string) (string, error)
}

// DocumentPolicy is the view-authorization contract delegated to by the
// notification fan-out: recipients that cannot view a document are
// skipped without error.
type DocumentPolicy interface {
	CanView(user *entity.User, doc *entity.Document) bool
}
