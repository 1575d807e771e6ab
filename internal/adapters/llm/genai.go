package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/vitrine/internal/domain/chat"
	"github.com/okian/vitrine/pkg/logger"
	"google.golang.org/genai"
)

// GenAIConfig configures a Gemini completion client.
type GenAIConfig struct {
	APIKey    string
	Model     string
	MaxTokens int
	// BaseURL overrides the API endpoint. Empty uses the public one.
	BaseURL string
}

// GenAICompleter is a plain completion client over the Gemini API.
type GenAICompleter struct {
	client    *genai.Client
	model     string
	maxTokens int
	log       logger.Logger
}

var _ chat.Completer = (*GenAICompleter)(nil)

// NewGenAICompleter builds the client. No request is made.
func NewGenAICompleter(ctx context.Context, cfg GenAIConfig, opts ...Option) (*GenAICompleter, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("genai: %w", ErrMissingAPIKey)
	}
	o := applyOptions(opts)
	cc := &genai.ClientConfig{APIKey: cfg.APIKey, Backend: genai.BackendGeminiAPI}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	if o.httpClient != nil {
		cc.HTTPClient = o.httpClient
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("genai: create client: %w", err)
	}
	return &GenAICompleter{client: client, model: cfg.Model, maxTokens: cfg.MaxTokens, log: o.log}, nil
}

// Model returns the configured model name.
func (c *GenAICompleter) Model() string { return c.model }

// Complete sends messages and returns the reply text.
func (c *GenAICompleter) Complete(ctx context.Context, messages []chat.Message) (string, error) {
	system, contents := toGenAIContents(messages)
	cfg := &genai.GenerateContentConfig{SystemInstruction: system}
	if c.maxTokens > 0 {
		cfg.MaxOutputTokens = int32(c.maxTokens)
	}
	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("genai: generate: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("genai: %w", ErrNoContent)
	}
	c.log.Debug(ctx, "completion done", logger.String("model", c.model), logger.Int("reply_len", len(text)))
	return text, nil
}

// toGenAIContents folds system messages into one instruction and maps the
// rest onto user/model turns.
func toGenAIContents(messages []chat.Message) (*genai.Content, []*genai.Content) {
	var sys []string
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case chat.RoleSystem:
			sys = append(sys, m.Content)
		case chat.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	if len(sys) == 0 {
		return nil, contents
	}
	return genai.NewContentFromText(strings.Join(sys, "\n\n"), genai.RoleUser), contents
}
