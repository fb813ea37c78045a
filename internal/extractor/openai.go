// Package extractor turns free-form note text into a title and tags using an
// OpenAI-compatible chat completion endpoint with a JSON schema response format.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
	"go.uber.org/zap"

	"github.com/haierkeys/idea-inbox-service/internal/domain"
	"github.com/haierkeys/idea-inbox-service/internal/metrics"
	"github.com/haierkeys/idea-inbox-service/pkg/logger"
)

const (
	// DefaultTimeout bounds a single extraction call.
	DefaultTimeout = 15 * time.Second
	// DefaultModel used when none is configured.
	DefaultModel = "gpt-4o-mini"

	instruction = "Process this fleeting note for an Obsidian vault.\n" +
		"Generate a concise title (no extension) and relevant tags."
	schemaName = "note_metadata"
)

// Extractor is a title/tag provider using the OpenAI-compatible API.
type Extractor struct {
	client   *openai.Client
	model    string
	timeout  time.Duration
	provider string
	logger   *zap.Logger
}

// Config holds the extraction provider settings.
type Config struct {
	APIKey   string
	BaseURL  string
	Model    string
	Timeout  time.Duration
	Provider string
	Logger   *zap.Logger
}

// New creates an OpenAI-compatible extractor.
func New(cfg *Config) *Extractor {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	provider := cfg.Provider
	if provider == "" {
		provider = "openai"
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Extractor{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    model,
		timeout:  timeout,
		provider: provider,
		logger:   log,
	}
}

// responseSchema requires both fields; strict mode forbids extra keys.
func responseSchema() *jsonschema.Definition {
	return &jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"title": {Type: jsonschema.String, Description: "Concise note title without file extension"},
			"tags": {
				Type:        jsonschema.Array,
				Description: "Relevant tags",
				Items:       &jsonschema.Definition{Type: jsonschema.String},
			},
		},
		Required:             []string{"title", "tags"},
		AdditionalProperties: false,
	}
}

// Extract makes one schema-constrained call and validates the answer.
// Every failure wraps domain.ErrExtractionFailure. There are no retries.
func (e *Extractor) Extract(ctx context.Context, content string) (domain.ExtractionResult, error) {
	if strings.TrimSpace(content) == "" {
		return domain.ExtractionResult{Tags: []string{}}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: instruction},
			{Role: openai.ChatMessageRoleUser, Content: "Note: " + content},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   schemaName,
				Schema: responseSchema(),
				Strict: true,
			},
		},
	}

	start := time.Now()
	resp, err := e.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)
	metrics.ExtractionRequestDuration.WithLabelValues(e.provider, e.model).Observe(duration.Seconds())

	if err != nil {
		errType := "api_error"
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			errType = "timeout"
		}
		e.fail(errType)
		return domain.ExtractionResult{}, parseAPIError(err)
	}

	if len(resp.Choices) == 0 {
		e.fail("empty_response")
		return domain.ExtractionResult{}, fmt.Errorf("empty completion response: %w", domain.ErrExtractionFailure)
	}

	result, err := ParseResult(resp.Choices[0].Message.Content)
	if err != nil {
		e.fail("invalid_payload")
		return domain.ExtractionResult{}, err
	}

	metrics.ExtractionRequestsTotal.WithLabelValues(e.provider, e.model, "success").Inc()
	if resp.Usage.TotalTokens > 0 {
		metrics.ExtractionTokensTotal.WithLabelValues(e.provider, e.model, "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.ExtractionTokensTotal.WithLabelValues(e.provider, e.model, "completion").Add(float64(resp.Usage.CompletionTokens))
	}

	e.logger.Debug("extraction completed",
		zap.String(logger.FieldProvider, e.provider),
		zap.String(logger.FieldModel, e.model),
		zap.Duration(logger.FieldDuration, duration),
		zap.Int(logger.FieldCount, len(result.Tags)))

	return result, nil
}

// HealthCheck verifies API availability via ListModels.
func (e *Extractor) HealthCheck(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

func (e *Extractor) fail(errType string) {
	metrics.ExtractionRequestsTotal.WithLabelValues(e.provider, e.model, "error").Inc()
	metrics.ExtractionErrorsTotal.WithLabelValues(e.provider, e.model, errType).Inc()
}

// parseAPIError extracts a human-readable error from the API response.
// The result wraps both the client error and domain.ErrExtractionFailure.
func parseAPIError(err error) error {
	wrap := domain.ErrExtractionFailure

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if detail := extractDetail(reqErr.Body); detail != "" {
			return fmt.Errorf("extraction API error %d: %s: %w: %w", reqErr.HTTPStatusCode, detail, err, wrap)
		}
		return fmt.Errorf("extraction API error %d: %w: %w", reqErr.HTTPStatusCode, err, wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("extraction API error %d: %w: %w", apiErr.HTTPStatusCode, err, wrap)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("extraction timed out: %w: %w", err, wrap)
	}
	return fmt.Errorf("extraction request failed: %w: %w", err, wrap)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if sonic.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
