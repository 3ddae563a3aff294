package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
	"go.uber.org/zap"

	"studyhub/internal/config"
	"studyhub/internal/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.AIConfig{APIKey: "test-key", BaseURL: srv.URL, TimeoutMS: 1000, RequestsPerMin: 600}
	c, err := NewClient(cfg, "gemini-test", zap.NewNop(), opts...)
	require.NoError(t, err)
	return c
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient(&config.AIConfig{}, "m", zap.NewNop())

	var missing *config.MissingError
	assert.True(t, errors.As(err, &missing))
}

func TestClient_GenerateContent(t *testing.T) {
	var got geminiRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"ok\":"},{"text":"true}"}]},"finishReason":"STOP"}]}`))
	}, WithJSONResponses())

	msgs := []llms.MessageContent{
		{Role: schema.ChatMessageTypeSystem, Parts: []llms.ContentPart{llms.TextContent{Text: "be brief"}}},
		{Role: schema.ChatMessageTypeHuman, Parts: []llms.ContentPart{llms.TextContent{Text: "hello"}}},
	}
	resp, err := c.GenerateContent(context.Background(), msgs, llms.WithTemperature(0.5))

	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, resp.Choices[0].Content)
	assert.Equal(t, "STOP", resp.Choices[0].StopReason)
	require.NotNil(t, got.SystemInstruction)
	assert.Equal(t, "be brief", got.SystemInstruction.Parts[0].Text)
	require.Len(t, got.Contents, 1)
	assert.Equal(t, "user", got.Contents[0].Role)
	assert.Equal(t, "application/json", got.GenerationConfig["responseMimeType"])
	assert.Equal(t, 0.5, got.GenerationConfig["temperature"])
}

func TestClient_ErrorStatusIsExternalError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"code":429,"message":"quota exceeded"}}`))
	})

	_, err := Generate(context.Background(), c, "hi")

	var ext *model.ExternalError
	require.True(t, errors.As(err, &ext))
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestClient_EmptyCandidates(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	})

	_, err := c.Call(context.Background(), "hi")

	assert.ErrorContains(t, err, "empty response from Gemini")
}

func TestDisabled(t *testing.T) {
	cfgErr := errors.New("not configured")

	_, err := Generate(context.Background(), Disabled{Err: cfgErr}, "hi")

	assert.ErrorIs(t, err, cfgErr)
}
