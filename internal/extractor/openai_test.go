package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/haierkeys/idea-inbox-service/internal/domain"
	"github.com/haierkeys/idea-inbox-service/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.Register()
	os.Exit(m.Run())
}

// chatResponse mirrors the OpenAI-compatible chat completion response.
func chatResponse(content string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "test-model",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message": map[string]any{
				"role":    "assistant",
				"content": content,
			},
		}},
		"usage": map[string]any{
			"prompt_tokens":     12,
			"completion_tokens": 8,
			"total_tokens":      20,
		},
	}
}

func newFakeServer(t *testing.T, hits *atomic.Int32, handler func(w http.ResponseWriter, body map[string]any)) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)
		w.Header().Set("Content-Type", "application/json")
		handler(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestExtractor(url string, timeout time.Duration) *Extractor {
	return New(&Config{
		APIKey:   "test-key",
		BaseURL:  url,
		Model:    "test-model",
		Timeout:  timeout,
		Provider: "test",
		Logger:   zap.NewNop(),
	})
}

func TestExtractor_Extract(t *testing.T) {
	server := newFakeServer(t, nil, func(w http.ResponseWriter, body map[string]any) {
		assert.Equal(t, "test-model", body["model"])
		format, _ := body["response_format"].(map[string]any)
		assert.Equal(t, "json_schema", format["type"])
		schema, _ := format["json_schema"].(map[string]any)
		assert.Equal(t, true, schema["strict"])

		_ = json.NewEncoder(w).Encode(chatResponse(`{"title":"Groceries","tags":["errand"]}`))
	})

	res, err := newTestExtractor(server.URL, time.Second).Extract(context.Background(), "Buy milk")
	require.NoError(t, err)
	assert.Equal(t, "Groceries", res.Title)
	assert.Equal(t, []string{"errand"}, res.Tags)
}

func TestExtractor_WrongTypedTitle(t *testing.T) {
	server := newFakeServer(t, nil, func(w http.ResponseWriter, _ map[string]any) {
		_ = json.NewEncoder(w).Encode(chatResponse(`{"title": 5}`))
	})

	_, err := newTestExtractor(server.URL, time.Second).Extract(context.Background(), "Buy milk")
	assert.ErrorIs(t, err, domain.ErrExtractionFailure)
}

func TestExtractor_NotJSON(t *testing.T) {
	server := newFakeServer(t, nil, func(w http.ResponseWriter, _ map[string]any) {
		_ = json.NewEncoder(w).Encode(chatResponse("Sure! Here is your title: Groceries"))
	})

	_, err := newTestExtractor(server.URL, time.Second).Extract(context.Background(), "Buy milk")
	assert.ErrorIs(t, err, domain.ErrExtractionFailure)
}

func TestExtractor_NoChoices(t *testing.T) {
	server := newFakeServer(t, nil, func(w http.ResponseWriter, _ map[string]any) {
		resp := chatResponse("")
		resp["choices"] = []any{}
		_ = json.NewEncoder(w).Encode(resp)
	})

	_, err := newTestExtractor(server.URL, time.Second).Extract(context.Background(), "Buy milk")
	assert.ErrorIs(t, err, domain.ErrExtractionFailure)
}

func TestExtractor_APIError(t *testing.T) {
	server := newFakeServer(t, nil, func(w http.ResponseWriter, _ map[string]any) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"upstream exploded","type":"server_error"}}`))
	})

	_, err := newTestExtractor(server.URL, time.Second).Extract(context.Background(), "Buy milk")
	require.ErrorIs(t, err, domain.ErrExtractionFailure)
	assert.Contains(t, err.Error(), "500")

	var apiErr *openai.APIError
	require.True(t, errors.As(err, &apiErr), "client error kept in chain: %v", err)
	assert.Equal(t, http.StatusInternalServerError, apiErr.HTTPStatusCode)
}

func TestExtractor_Timeout(t *testing.T) {
	server := newFakeServer(t, nil, func(w http.ResponseWriter, _ map[string]any) {
		time.Sleep(300 * time.Millisecond)
		_ = json.NewEncoder(w).Encode(chatResponse(`{"title":"late","tags":[]}`))
	})

	e := newTestExtractor(server.URL, 50*time.Millisecond)
	e.provider = "timeout-test"
	series := testutil.CollectAndCount(metrics.ExtractionRequestDuration)

	start := time.Now()
	_, err := e.Extract(context.Background(), "Buy milk")
	assert.ErrorIs(t, err, domain.ErrExtractionFailure)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 250*time.Millisecond)

	// 超时请求同样计入耗时直方图
	assert.Equal(t, series+1, testutil.CollectAndCount(metrics.ExtractionRequestDuration))
}

func TestExtractor_BlankContentSkipsCall(t *testing.T) {
	var hits atomic.Int32
	server := newFakeServer(t, &hits, func(w http.ResponseWriter, _ map[string]any) {
		_ = json.NewEncoder(w).Encode(chatResponse(`{"title":"x","tags":[]}`))
	})

	res, err := newTestExtractor(server.URL, time.Second).Extract(context.Background(), "  \n\t ")
	require.NoError(t, err)
	assert.Equal(t, "", res.Title)
	assert.Empty(t, res.Tags)
	assert.Zero(t, hits.Load())
}

func TestDisabled_AlwaysFails(t *testing.T) {
	_, err := Disabled{}.Extract(context.Background(), "anything")
	assert.ErrorIs(t, err, domain.ErrExtractionFailure)
}
