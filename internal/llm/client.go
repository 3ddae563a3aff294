// Package llm talks to the generative-language API and decodes its answers.
//
// Client implements langchaingo's llms.Model on top of the Gemini generateContent
// REST endpoint, so services depend only on llms.Model and tests can substitute any
// model. Decode turns generated text into typed content or a *SchemaError.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"studyhub/internal/config"
	"studyhub/internal/metrics"
	"studyhub/internal/model"
)

// Client calls one Gemini model.
type Client struct {
	config   *config.AIConfig
	model    string
	jsonMode bool
	client   *http.Client
	limiter  *rate.Limiter
	log      *zap.Logger
}

var _ llms.Model = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithJSONResponses asks the model to answer with application/json.
func WithJSONResponses() Option {
	return func(c *Client) { c.jsonMode = true }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// NewClient creates a client for modelName. It fails when no API key is configured.
func NewClient(cfg *config.AIConfig, modelName string, log *zap.Logger, opts ...Option) (*Client, error) {
	if err := cfg.Require(); err != nil {
		return nil, err
	}
	perMin := cfg.RequestsPerMin
	if perMin <= 0 {
		perMin = 60
	}
	c := &Client{
		config: cfg,
		model:  modelName,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		},
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMin)), perMin),
		log:     log.Named("gemini").With(zap.String("model", modelName)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents          []geminiContent        `json:"contents"`
	SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
	GenerationConfig  map[string]interface{} `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// GenerateContent sends messages to the model and returns its candidates.
func (c *Client) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	opts := llms.CallOptions{}
	for _, o := range options {
		o(&opts)
	}

	req := geminiRequest{GenerationConfig: map[string]interface{}{}}
	for _, m := range messages {
		content := geminiContent{Parts: textParts(m.Parts)}
		switch m.Role {
		case schema.ChatMessageTypeSystem:
			req.SystemInstruction = &content
			continue
		case schema.ChatMessageTypeAI:
			content.Role = "model"
		default:
			content.Role = "user"
		}
		req.Contents = append(req.Contents, content)
	}
	if opts.Temperature > 0 {
		req.GenerationConfig["temperature"] = opts.Temperature
	}
	if opts.MaxTokens > 0 {
		req.GenerationConfig["maxOutputTokens"] = opts.MaxTokens
	}
	if c.jsonMode {
		req.GenerationConfig["responseMimeType"] = "application/json"
	}

	text, finish, err := c.callGemini(ctx, &req)
	metrics.ObserveCall(metrics.Gemini, err)
	if err != nil {
		c.log.Warn("generate content failed", zap.Error(err))
		return nil, &model.ExternalError{Service: "language model", Err: err}
	}

	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: text, StopReason: finish}},
	}, nil
}

// Call sends a single prompt.
func (c *Client) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return Generate(ctx, c, prompt, options...)
}

// callGemini makes a request to the Gemini API
func (c *Client) callGemini(ctx context.Context, req *geminiRequest) (string, string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", "", err
	}

	jsonBody, err := json.Marshal(req)
	if err != nil {
		return "", "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.ModelEndpoint(c.model), bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.config.APIKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", err
	}

	var geminiResp geminiResponse
	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return "", "", fmt.Errorf("status %d: unreadable response body", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		if geminiResp.Error != nil {
			return "", "", fmt.Errorf("status %d: %s", resp.StatusCode, geminiResp.Error.Message)
		}
		return "", "", fmt.Errorf("status %d", resp.StatusCode)
	}

	if len(geminiResp.Candidates) > 0 && len(geminiResp.Candidates[0].Content.Parts) > 0 {
		var sb strings.Builder
		for _, p := range geminiResp.Candidates[0].Content.Parts {
			sb.WriteString(p.Text)
		}
		return sb.String(), geminiResp.Candidates[0].FinishReason, nil
	}

	return "", "", errors.New("empty response from Gemini")
}

func textParts(parts []llms.ContentPart) []geminiPart {
	out := make([]geminiPart, 0, len(parts))
	for _, p := range parts {
		if tc, ok := p.(llms.TextContent); ok {
			out = append(out, geminiPart{Text: tc.Text})
		}
	}
	return out
}

// Generate sends prompt as a single human message and returns the first choice.
func Generate(ctx context.Context, m llms.Model, prompt string, options ...llms.CallOption) (string, error) {
	msg := llms.MessageContent{
		Role:  schema.ChatMessageTypeHuman,
		Parts: []llms.ContentPart{llms.TextContent{Text: prompt}},
	}
	resp, err := m.GenerateContent(ctx, []llms.MessageContent{msg}, options...)
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", &model.ExternalError{Service: "language model", Err: errors.New("no choices returned")}
	}
	return resp.Choices[0].Content, nil
}

// Disabled stands in for the model when it is not configured.
type Disabled struct {
	Err error
}

func (d Disabled) GenerateContent(context.Context, []llms.MessageContent, ...llms.CallOption) (*llms.ContentResponse, error) {
	return nil, d.Err
}

func (d Disabled) Call(context.Context, string, ...llms.CallOption) (string, error) {
	return "", d.Err
}
