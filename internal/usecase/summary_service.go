package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/ekoscanner/ekoscanner/internal/domain"
	"go.uber.org/zap"
)

// summaryPromptTemplate is fixed; callers only supply the product fields.
const summaryPromptTemplate = `Ge en kort, tydlig och lättförståelig miljö- och hållbarhetsbeskrivning.
Produkt: %s
Varumärke: %s
Kategorier: %s
Max 4 meningar.`

// SummaryService turns product details into a sustainability blurb using a language model
type SummaryService struct {
	completer domain.Completer
	logger    *zap.Logger
}

// NewSummaryService creates a summary service
func NewSummaryService(completer domain.Completer, logger *zap.Logger) *SummaryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SummaryService{
		completer: completer,
		logger:    logger.Named("summary"),
	}
}

// BuildPrompt renders the prompt for a request, substituting defaults for empty fields
func BuildPrompt(req domain.SummaryRequest) string {
	p := domain.Product{Name: req.ProductName, Brand: req.Brand, Categories: req.Categories}
	return fmt.Sprintf(summaryPromptTemplate, oneLine(p.DisplayName()), oneLine(p.DisplayBrand()), oneLine(p.DisplayCategories()))
}

// oneLine keeps user-supplied fields from adding lines to the prompt
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Summarize asks the completer for a summary. The completion text is
// returned untouched.
func (s *SummaryService) Summarize(ctx context.Context, req domain.SummaryRequest) (string, error) {
	prompt := BuildPrompt(req)

	s.logger.Info("requesting summary",
		zap.String("product", req.ProductName),
		zap.String("brand", req.Brand))

	text, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		s.logger.Error("completion failed", zap.Error(err))
		return "", fmt.Errorf("%w: %v", domain.ErrSummaryUnavailable, err)
	}

	return text, nil
}
