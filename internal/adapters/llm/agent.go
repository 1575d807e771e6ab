package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/okian/vitrine/internal/domain/chat"
	"github.com/okian/vitrine/internal/domain/lookup"
	"github.com/okian/vitrine/pkg/logger"
	"google.golang.org/api/option"
)

const defaultMaxSteps = 6

// ToolRunner is the tool set the agent may call. *lookup.Registry satisfies it.
type ToolRunner interface {
	Tools() []lookup.Tool
	Call(ctx context.Context, name string, args lookup.Args) (string, error)
}

// AgentConfig configures the Gemini tool agent.
type AgentConfig struct {
	APIKey       string
	Model        string
	SystemPrompt string
	MaxSteps     int
	MaxTokens    int
}

type chatSession interface {
	SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// GeminiAgent answers a message with Gemini function calling over the
// lookup tools. Each Run is a fresh conversation.
type GeminiAgent struct {
	client     *genai.Client
	model      string
	maxSteps   int
	tools      ToolRunner
	newSession func() chatSession
	log        logger.Logger
}

var _ chat.ToolAgent = (*GeminiAgent)(nil)

// NewGeminiAgent creates the client and registers every tool as a function
// declaration.
func NewGeminiAgent(ctx context.Context, cfg AgentConfig, tools ToolRunner, opts ...Option) (*GeminiAgent, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("gemini: %w", ErrMissingAPIKey)
	}
	o := applyOptions(opts)
	copts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if o.httpClient != nil {
		copts = append(copts, option.WithHTTPClient(o.httpClient))
	}
	client, err := genai.NewClient(ctx, copts...)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.Tools = []*genai.Tool{{FunctionDeclarations: FunctionDeclarations(tools.Tools())}}
	if cfg.SystemPrompt != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(cfg.SystemPrompt)}}
	}
	if cfg.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(cfg.MaxTokens))
	}

	a := newAgent(cfg.Model, cfg.MaxSteps, tools, func() chatSession { return model.StartChat() }, o.log)
	a.client = client
	return a, nil
}

func newAgent(model string, maxSteps int, tools ToolRunner, sessions func() chatSession, log logger.Logger) *GeminiAgent {
	if maxSteps <= 0 {
		maxSteps = defaultMaxSteps
	}
	return &GeminiAgent{model: model, maxSteps: maxSteps, tools: tools, newSession: sessions, log: log}
}

// Model returns the configured model name.
func (a *GeminiAgent) Model() string { return a.model }

// Close releases the client.
func (a *GeminiAgent) Close() error {
	if a.client != nil {
		return a.client.Close()
	}
	return nil
}

// Run sends message and executes requested tool calls until the model
// answers with text or the step budget runs out.
func (a *GeminiAgent) Run(ctx context.Context, message string) (any, error) {
	cs := a.newSession()
	toolCtx := lookup.WithCaller(ctx, chat.TierAgent)

	resp, err := cs.SendMessage(ctx, genai.Text(message))
	for step := 0; ; step++ {
		if err != nil {
			return nil, fmt.Errorf("gemini: send: %w", err)
		}
		calls, text := splitResponse(resp)
		if len(calls) == 0 {
			if strings.TrimSpace(text) == "" {
				return nil, fmt.Errorf("gemini: %w", ErrNoContent)
			}
			return text, nil
		}
		if step >= a.maxSteps {
			return nil, fmt.Errorf("gemini: %w (%d)", ErrStepLimit, a.maxSteps)
		}

		parts := make([]genai.Part, 0, len(calls))
		for _, call := range calls {
			out, cerr := a.tools.Call(toolCtx, call.Name, lookup.Args(call.Args))
			result := map[string]any{"output": out}
			if cerr != nil {
				result = map[string]any{"error": cerr.Error()}
			}
			a.log.Debug(ctx, "agent tool call", logger.String("tool", call.Name), logger.Int("step", step), logger.Bool("failed", cerr != nil))
			parts = append(parts, genai.FunctionResponse{Name: call.Name, Response: result})
		}
		resp, err = cs.SendMessage(ctx, parts...)
	}
}

func splitResponse(resp *genai.GenerateContentResponse) ([]genai.FunctionCall, string) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, ""
	}
	var calls []genai.FunctionCall
	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		switch p := part.(type) {
		case genai.Text:
			text.WriteString(string(p))
		case genai.FunctionCall:
			calls = append(calls, p)
		case *genai.FunctionCall:
			calls = append(calls, *p)
		}
	}
	return calls, text.String()
}

// FunctionDeclarations maps lookup tools onto Gemini function declarations.
func FunctionDeclarations(tools []lookup.Tool) []*genai.FunctionDeclaration {
	out := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		decl := &genai.FunctionDeclaration{Name: t.Name, Description: t.Description}
		out = append(out, decl)
		// Gemini rejects an OBJECT schema without properties.
		if len(t.Params) == 0 {
			continue
		}
		schema := &genai.Schema{Type: genai.TypeObject, Properties: map[string]*genai.Schema{}}
		for _, p := range t.Params {
			typ := genai.TypeString
			if p.Type == lookup.TypeInteger {
				typ = genai.TypeInteger
			}
			schema.Properties[p.Name] = &genai.Schema{Type: typ, Description: p.Description}
			if p.Required {
				schema.Required = append(schema.Required, p.Name)
			}
		}
		decl.Parameters = schema
	}
	return out
}
