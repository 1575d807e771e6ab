package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/okian/vitrine/internal/domain/chat"
	"github.com/okian/vitrine/pkg/logger"
)

const maxErrorBody = 512

// OpenAIConfig configures an OpenAI-compatible completion client.
type OpenAIConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model     string          `json:"model"`
	Messages  []openAIMessage `json:"messages"`
	MaxTokens int             `json:"max_tokens,omitempty"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// OpenAICompleter talks to /chat/completions on OpenAI or any compatible
// proxy. It does not retry.
type OpenAICompleter struct {
	apiKey     string
	baseURL    string
	model      string
	maxTokens  int
	httpClient *http.Client
	log        logger.Logger
}

var _ chat.Completer = (*OpenAICompleter)(nil)

// NewOpenAICompleter validates cfg and builds the client.
func NewOpenAICompleter(cfg OpenAIConfig, opts ...Option) (*OpenAICompleter, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("openai: %w", ErrMissingAPIKey)
	}
	o := applyOptions(opts)
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = "https://api.openai.com/v1"
	}
	return &OpenAICompleter{
		apiKey:     cfg.APIKey,
		baseURL:    base,
		model:      cfg.Model,
		maxTokens:  cfg.MaxTokens,
		httpClient: o.httpClient,
		log:        o.log,
	}, nil
}

// Model returns the configured model name.
func (c *OpenAICompleter) Model() string { return c.model }

// Complete sends messages and returns the first choice's text.
func (c *OpenAICompleter) Complete(ctx context.Context, messages []chat.Message) (string, error) {
	body := openAIRequest{Model: c.model, MaxTokens: c.maxTokens, Messages: make([]openAIMessage, len(messages))}
	for i, m := range messages {
		body.Messages[i] = openAIMessage{Role: string(m.Role), Content: m.Content}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("openai: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("openai: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("openai: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if len(raw) > maxErrorBody {
			raw = raw[:maxErrorBody]
		}
		return "", fmt.Errorf("openai: %w: status %d: %s", ErrAPIStatus, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out openAIResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("openai: parse response: %w", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("openai: %w: %s", ErrAPIStatus, out.Error.Message)
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("openai: %w", ErrNoContent)
	}
	text := strings.TrimSpace(out.Choices[0].Message.Content)
	c.log.Debug(ctx, "completion done", logger.String("model", c.model),
		logger.Int("messages", len(messages)), logger.Int("reply_len", len(text)), logger.Duration("took", time.Since(start)))
	return text, nil
}
