// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New returns a Config populated with defaults.
// - Load layers an optional YAML file and VITRINE_* environment variables on top.
// - Errors returned by Load and Validate wrap this package's sentinels.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Backend tiers.
const (
	BackendAgent      = "agent"
	BackendCompletion = "completion"
)

// Completion providers.
const (
	ProviderOpenAI = "openai"
	ProviderGenAI  = "genai"
)

// EasterEgg is one trigger rule. Rules are checked in list order.
type EasterEgg struct {
	Phrase  string `koanf:"phrase"`
	Gender  string `koanf:"gender"`
	Special bool   `koanf:"special"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the slog handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":7860".
	Addr string `koanf:"addr"`

	// DataPath points at the portfolio YAML file.
	DataPath string `koanf:"data_path"`

	// LogosDir is the root searched for technology and client logos.
	LogosDir string `koanf:"logos_dir"`

	// SessionTTLMinutes expires idle sessions.
	SessionTTLMinutes int `koanf:"session_ttl_minutes"`

	// ChatRatePerMinute and ChatBurst bound chat turns per session.
	ChatRatePerMinute int `koanf:"chat_rate_per_minute"`
	ChatBurst         int `koanf:"chat_burst"`

	// DedupeSize bounds the remembered chat request ids per session.
	DedupeSize int `koanf:"dedupe_size"`

	// Backend is the preferred tier: agent or completion.
	Backend string `koanf:"backend"`

	// CompletionProvider selects the completion client: openai or genai.
	CompletionProvider string `koanf:"completion_provider"`

	AgentModel      string `koanf:"agent_model"`
	CompletionModel string `koanf:"completion_model"`

	// OpenAIBaseURL accepts any OpenAI-compatible endpoint, e.g. a LiteLLM proxy.
	OpenAIBaseURL string `koanf:"openai_base_url"`

	// GenAIBaseURL overrides the Gemini endpoint used by the genai completer.
	// Empty uses the public API.
	GenAIBaseURL string `koanf:"genai_base_url"`

	// AgentMaxSteps bounds tool-calling rounds per agent turn.
	AgentMaxSteps int `koanf:"agent_max_steps"`

	// MaxTokens caps completion replies.
	MaxTokens int `koanf:"max_tokens"`

	// RequestTimeoutSeconds bounds one backend call. Zero disables the bound.
	RequestTimeoutSeconds int `koanf:"request_timeout_seconds"`

	// AssistantName is how the assistant introduces itself.
	AssistantName string `koanf:"assistant_name"`

	// EasterEggs is the ordered trigger table.
	EasterEggs []EasterEgg `koanf:"easter_eggs"`

	// TechLinks maps lowercase technology names to URLs.
	TechLinks map[string]string `koanf:"tech_links"`

	// Credentials, read from the plain environment only.
	GeminiAPIKey string `koanf:"-"`
	OpenAIAPIKey string `koanf:"-"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		LogFormat:             "text",
		Addr:                  ":7860",
		DataPath:              "data/portfolio.yaml",
		LogosDir:              "data/logos",
		SessionTTLMinutes:     60,
		ChatRatePerMinute:     12,
		ChatBurst:             4,
		DedupeSize:            256,
		Backend:               BackendAgent,
		CompletionProvider:    ProviderOpenAI,
		AgentModel:            "gemini-1.5-flash",
		CompletionModel:       "gpt-4o-mini",
		OpenAIBaseURL:         "https://api.openai.com/v1",
		AgentMaxSteps:         6,
		MaxTokens:             500,
		RequestTimeoutSeconds: 60,
		AssistantName:         "PortfolioAgent",
		EasterEggs:            DefaultEasterEggs(),
		TechLinks:             DefaultTechLinks(),
	}
}

// DefaultEasterEggs returns the built-in trigger table.
func DefaultEasterEggs() []EasterEgg {
	return []EasterEgg{
		{Phrase: "poupouille", Gender: "ma"},
		{Phrase: "tchoupinoux", Gender: "mon", Special: true},
		{Phrase: "péchailloux", Gender: "mon"},
		{Phrase: "péchaille", Gender: "ma"},
		{Phrase: "chayoux", Gender: "mon"},
		{Phrase: "chnawax", Gender: "mon"},
	}
}

// DefaultTechLinks returns the built-in technology link table.
func DefaultTechLinks() map[string]string {
	return map[string]string{
		"azure ai foundry": "https://ai.azure.com/",
		"azure ai search":  "https://azure.microsoft.com/en-us/products/ai-services/ai-search/",
		"azure":            "https://azure.microsoft.com/",
		"azure kubernetes": "https://azure.microsoft.com/en-us/products/kubernetes-service/",
		"mistral":          "https://mistral.ai/",
		"react":            "https://react.dev/",
		"flask":            "https://flask.palletsprojects.com/",
		"docker":           "https://www.docker.com/",
		"power automate":   "https://powerautomate.microsoft.com/",
		"copilot studio":   "https://www.microsoft.com/en-us/microsoft-copilot/microsoft-copilot-studio",
		"teams":            "https://www.microsoft.com/en-us/microsoft-teams/group-chat-software",
		"smolagent":        "https://github.com/huggingfaceh4/smolagents",
		"litellm":          "https://docs.litellm.ai/",
		"gradio":           "https://gradio.app/",
		"mcp":              "https://modelcontextprotocol.io/",
		"librechat":        "https://librechat.ai/",
		"microsoft graph":  "https://developer.microsoft.com/en-us/graph",
		"mcp shield":       "https://github.com/modelcontextprotocol/servers",
		"dataiku":          "https://www.dataiku.com/",
		"ariba":            "https://www.sap.com/products/spend-management/procurement-solutions.html",
		"go":               "https://go.dev/",
		"kubernetes":       "https://kubernetes.io/",
	}
}

// SessionTTL returns the idle session lifetime.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// RequestTimeout returns the per-call backend bound, zero when disabled.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Normalize lowercases trigger phrases and link keys.
func (c *Config) Normalize() {
	for i := range c.EasterEggs {
		c.EasterEggs[i].Phrase = strings.ToLower(strings.TrimSpace(c.EasterEggs[i].Phrase))
		c.EasterEggs[i].Gender = strings.TrimSpace(c.EasterEggs[i].Gender)
	}
	if len(c.TechLinks) > 0 {
		links := make(map[string]string, len(c.TechLinks))
		for k, v := range c.TechLinks {
			links[strings.ToLower(strings.TrimSpace(k))] = v
		}
		c.TechLinks = links
	}
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	c.CompletionProvider = strings.ToLower(strings.TrimSpace(c.CompletionProvider))
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DataPath == "":
		return fmt.Errorf("%w: data_path must not be empty", ErrInvalidConfig)
	case c.Backend != BackendAgent && c.Backend != BackendCompletion:
		return fmt.Errorf("%w: backend %q (want %s or %s)", ErrInvalidConfig, c.Backend, BackendAgent, BackendCompletion)
	case c.CompletionProvider != ProviderOpenAI && c.CompletionProvider != ProviderGenAI:
		return fmt.Errorf("%w: completion_provider %q (want %s or %s)", ErrInvalidConfig, c.CompletionProvider, ProviderOpenAI, ProviderGenAI)
	case c.SessionTTLMinutes <= 0:
		return fmt.Errorf("%w: session_ttl_minutes must be positive", ErrInvalidConfig)
	case c.ChatRatePerMinute <= 0 || c.ChatBurst <= 0:
		return fmt.Errorf("%w: chat_rate_per_minute and chat_burst must be positive", ErrInvalidConfig)
	case c.DedupeSize <= 0:
		return fmt.Errorf("%w: dedupe_size must be positive", ErrInvalidConfig)
	case c.AgentMaxSteps <= 0:
		return fmt.Errorf("%w: agent_max_steps must be positive", ErrInvalidConfig)
	case c.MaxTokens <= 0:
		return fmt.Errorf("%w: max_tokens must be positive", ErrInvalidConfig)
	case c.RequestTimeoutSeconds < 0:
		return fmt.Errorf("%w: request_timeout_seconds must not be negative", ErrInvalidConfig)
	}
	for i, egg := range c.EasterEggs {
		if egg.Phrase == "" {
			return fmt.Errorf("%w: easter_eggs[%d] has an empty phrase", ErrInvalidConfig, i)
		}
	}
	return nil
}
