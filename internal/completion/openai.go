package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dshills/gptcommit/internal/config"
	"github.com/rs/zerolog/log"
)

const (
	defaultBaseURL   = "https://api.openai.com/v1"
	defaultTimeout   = 30 * time.Second
	defaultMaxTokens = 256
)

// Request contains the data sent for a single completion.
type Request struct {
	Model        string
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float64
}

// Response contains the raw reply of the service.
type Response struct {
	Content      string
	TokensUsed   int
	FinishReason string
}

// OpenAI is a client for the OpenAI chat completions API and compatible
// gateways.
type OpenAI struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewOpenAI creates a client from the completion settings.
func NewOpenAI(cfg config.CompletionConfig) (*OpenAI, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("no API key configured for the completion service")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &OpenAI{
		apiKey:  cfg.APIKey,
		baseURL: normalizeBaseURL(cfg.BaseURL),
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// BaseURL returns the service root requests are sent to.
func (o *OpenAI) BaseURL() string { return o.baseURL }

// Complete sends one chat completion request asking for a single candidate.
func (o *OpenAI) Complete(ctx context.Context, req Request) (Response, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}
	temperature := req.Temperature

	body := openaiRequest{
		Model: req.Model,
		Messages: []openaiMessage{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: req.UserPrompt},
		},
		MaxTokens:   maxTokens,
		Temperature: &temperature,
		N:           1,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return Response{}, fmt.Errorf("marshaling request: %w", err)
	}

	log.Debug().Str("model", req.Model).Int("bytes", len(payload)).Msg("Sending completion request")
	start := time.Now()
	respBody, err := o.do(ctx, http.MethodPost, "/chat/completions", payload)
	if err != nil {
		return Response{}, err
	}

	var result openaiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(result.Choices) == 0 {
		return Response{}, fmt.Errorf("%w: no choices", ErrMalformedResponse)
	}
	choice := result.Choices[0]
	if strings.TrimSpace(choice.Message.Content) == "" {
		return Response{}, ErrEmptyResponse
	}

	log.Debug().
		Dur("elapsed", time.Since(start)).
		Int("tokens", result.Usage.TotalTokens).
		Str("finish_reason", choice.FinishReason).
		Msg("Completion received")

	return Response{
		Content:      choice.Message.Content,
		TokensUsed:   result.Usage.TotalTokens,
		FinishReason: choice.FinishReason,
	}, nil
}

// ListModels returns the model identifiers offered by the service, in the
// order the service reports them.
func (o *OpenAI) ListModels(ctx context.Context) ([]string, error) {
	respBody, err := o.do(ctx, http.MethodGet, "/models", nil)
	if err != nil {
		return nil, err
	}
	var result modelsResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	ids := make([]string, 0, len(result.Data))
	for _, m := range result.Data {
		if m.ID != "" {
			ids = append(ids, m.ID)
		}
	}
	log.Debug().Int("count", len(ids)).Msg("Listed models")
	return ids, nil
}

func (o *OpenAI) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, o.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)

	httpResp, err := o.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, statusError(httpResp.StatusCode, respBody)
	}
	return respBody, nil
}

// normalizeBaseURL accepts either the API root or the full chat completions
// endpoint.
func normalizeBaseURL(raw string) string {
	u := strings.TrimSpace(raw)
	if u == "" {
		return defaultBaseURL
	}
	u = strings.TrimRight(u, "/")
	u = strings.TrimSuffix(u, "/chat/completions")
	return strings.TrimRight(u, "/")
}

type openaiRequest struct {
	Model       string          `json:"model"`
	Messages    []openaiMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature *float64        `json:"temperature,omitempty"`
	N           int             `json:"n"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiResponse struct {
	Choices []openaiChoice `json:"choices"`
	Usage   openaiUsage    `json:"usage"`
}

type openaiChoice struct {
	Message      openaiMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type openaiUsage struct {
	TotalTokens int `json:"total_tokens"`
}

type modelsResponse struct {
	Data []modelEntry `json:"data"`
}

type modelEntry struct {
	ID string `json:"id"`
}
