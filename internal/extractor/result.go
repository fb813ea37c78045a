package extractor

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/haierkeys/idea-inbox-service/internal/domain"
)

// ParseResult validates the raw model output and maps it to an ExtractionResult.
//
// The payload must be a JSON object. A missing or null title becomes "",
// any other non-string title is rejected. Tags that are missing or not an
// array become an empty list; non-string entries are dropped and the rest
// trimmed, keeping order.
func ParseResult(raw string) (domain.ExtractionResult, error) {
	text := stripCodeFence(raw)
	if text == "" {
		return domain.ExtractionResult{}, fmt.Errorf("empty model response: %w", domain.ErrExtractionFailure)
	}

	var payload any
	if err := sonic.UnmarshalString(text, &payload); err != nil {
		return domain.ExtractionResult{}, fmt.Errorf("model response is not JSON: %w: %w", err, domain.ErrExtractionFailure)
	}
	obj, ok := payload.(map[string]any)
	if !ok {
		return domain.ExtractionResult{}, fmt.Errorf("model response is not an object: %w", domain.ErrExtractionFailure)
	}

	result := domain.ExtractionResult{Tags: []string{}}

	switch title := obj["title"].(type) {
	case nil:
	case string:
		result.Title = strings.TrimSpace(title)
	default:
		return domain.ExtractionResult{}, fmt.Errorf("title has type %T: %w", title, domain.ErrExtractionFailure)
	}

	if tags, ok := obj["tags"].([]any); ok {
		for _, t := range tags {
			s, ok := t.(string)
			if !ok {
				continue
			}
			if s = strings.TrimSpace(s); s != "" {
				result.Tags = append(result.Tags, s)
			}
		}
	}

	return result, nil
}

// stripCodeFence removes a surrounding ``` / ```json fence some models add.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		return ""
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
