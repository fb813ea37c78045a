package extractor

import (
	"context"
	"fmt"

	"github.com/haierkeys/idea-inbox-service/internal/domain"
)

// Disabled is used when no provider is configured. Every call fails, so
// captures always take the fallback path.
type Disabled struct{}

// Extract implements service.Extractor.
func (Disabled) Extract(context.Context, string) (domain.ExtractionResult, error) {
	return domain.ExtractionResult{}, fmt.Errorf("extraction disabled: %w", domain.ErrExtractionFailure)
}
