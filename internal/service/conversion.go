package service

import (
	"context"
	"log/slog"

	"github.com/jonathan/parser-service/internal/htmltext"
)

// Conversion is a converted document.
type Conversion struct {
	HTML string `json:"html"`
	// Text is a plain-text rendering of HTML; empty when it could not be derived.
	Text        string `json:"text,omitempty"`
	HighQuality bool   `json:"-"`
}

// ConversionService converts documents to HTML.
type ConversionService struct {
	parser Parser
	logger *slog.Logger
}

// NewConversionService creates a ConversionService.
func NewConversionService(p Parser, logger *slog.Logger) *ConversionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConversionService{parser: p, logger: logger}
}

// Convert converts file to HTML and derives its plain text.
func (s *ConversionService) Convert(ctx context.Context, file []byte, highQuality bool, filename string) (*Conversion, error) {
	html, err := s.parser.ConvertToHTML(ctx, file, highQuality, filename, nil)
	if err != nil {
		return nil, err
	}

	conv := &Conversion{HTML: html, HighQuality: highQuality}
	text, err := htmltext.Extract(html)
	if err != nil {
		s.logger.Warn("failed to derive text from converted HTML", "filename", filename, "error", err)
		return conv, nil
	}
	conv.Text = text
	return conv, nil
}

// ParseHighQuality reports whether either the form or the query value asks for
// high quality conversion.
func ParseHighQuality(formValue, queryValue string) bool {
	return formValue == "true" || queryValue == "true"
}
