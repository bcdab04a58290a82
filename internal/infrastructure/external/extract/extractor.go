package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/docuflow/docuflow/internal/application/port"
	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

// Extractor implements port.ContentExtractor. PDFs go through mupdf;
// plain-text formats are read directly.
type Extractor struct {
	logger *zap.Logger
}

// NewExtractor creates a content extractor
func NewExtractor(logger *zap.Logger) port.ContentExtractor {
	return &Extractor{logger: logger}
}

// Extract turns an uploaded file into plain text.
func (e *Extractor) Extract(path string) (string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", fmt.Errorf("file not found: %s", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf":
		return e.extractPDF(path)
	case ".txt", ".md", ".csv":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("unsupported file type: %s", ext)
	}
}

func (e *Extractor) extractPDF(path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	var sb strings.Builder
	pageCount := doc.NumPage()
	e.logger.Debug("Extracting PDF text", zap.String("path", path), zap.Int("total_pages", pageCount))

	for pageNum := 0; pageNum < pageCount; pageNum++ {
		text, err := doc.Text(pageNum)
		if err != nil {
			e.logger.Warn("Failed to extract page text",
				zap.Int("page", pageNum),
				zap.Error(err))
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	if sb.Len() == 0 {
		return "", fmt.Errorf("no text extracted from %s", path)
	}
	return sb.String(), nil
}
