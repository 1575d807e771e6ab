package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/vitrine/pkg/logger"
	"github.com/okian/vitrine/pkg/metrics"
)

// Backend tier names.
const (
	TierAgent      = "agent"
	TierCompletion = "completion"
	tierNone       = "none"
)

// Backend answers one chat turn.
type Backend interface {
	// Name is the tier name used in logs and metrics.
	Name() string
	// Describe is a human readable model description for the page footer.
	Describe() string
	Call(ctx context.Context, req Request) Result
}

// ToolAgent is a tool-using agent with its own standing system prompt. Run
// may return a string or a map carrying the answer under "output".
type ToolAgent interface {
	Run(ctx context.Context, message string) (any, error)
}

// Completer is a plain chat completion client.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// AgentBackend adapts a ToolAgent to Backend.
type AgentBackend struct {
	agent ToolAgent
	model string
}

// NewAgentBackend wraps agent. model is only used for Describe.
func NewAgentBackend(agent ToolAgent, model string) *AgentBackend {
	return &AgentBackend{agent: agent, model: model}
}

func (b *AgentBackend) Name() string { return TierAgent }

func (b *AgentBackend) Describe() string { return b.model + " (tool agent)" }

// Call runs the agent. In triggered mode the playful prompt travels in front
// of the message because the agent keeps its own system prompt.
func (b *AgentBackend) Call(ctx context.Context, req Request) (res Result) {
	defer recoverInto(&res)
	msg := req.Message
	if req.Triggered && req.SystemPrompt != "" {
		msg = req.SystemPrompt + "\n\nUser message: " + req.Message
	}
	out, err := b.agent.Run(ctx, msg)
	if err != nil {
		return Failure(err)
	}
	return nonEmpty(NormalizeOutput(out))
}

// NormalizeOutput turns the agent's return value into text.
func NormalizeOutput(out any) string {
	switch v := out.(type) {
	case nil:
		return ""
	case string:
		return v
	case map[string]any:
		if o, ok := v["output"]; ok {
			return NormalizeOutput(o)
		}
		return fmt.Sprint(v)
	case map[string]string:
		if o, ok := v["output"]; ok {
			return o
		}
		return fmt.Sprint(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// CompletionBackend adapts a Completer to Backend.
type CompletionBackend struct {
	completer Completer
	model     string
}

// NewCompletionBackend wraps completer. model is only used for Describe.
func NewCompletionBackend(completer Completer, model string) *CompletionBackend {
	return &CompletionBackend{completer: completer, model: model}
}

func (b *CompletionBackend) Name() string { return TierCompletion }

func (b *CompletionBackend) Describe() string { return b.model + " (completion)" }

// Call sends system prompt, history, optional preamble and the message.
func (b *CompletionBackend) Call(ctx context.Context, req Request) (res Result) {
	defer recoverInto(&res)
	out, err := b.completer.Complete(ctx, BuildMessages(req))
	if err != nil {
		return Failure(err)
	}
	return nonEmpty(out)
}

// BuildMessages lays a request out as completion messages. Empty history
// entries are skipped.
func BuildMessages(req Request) []Message {
	msgs := make([]Message, 0, 2*len(req.History)+3)
	if req.SystemPrompt != "" {
		msgs = append(msgs, Message{Role: RoleSystem, Content: req.SystemPrompt})
	}
	for _, t := range req.History {
		if t.User != "" {
			msgs = append(msgs, Message{Role: RoleUser, Content: t.User})
		}
		if t.Assistant != "" {
			msgs = append(msgs, Message{Role: RoleAssistant, Content: t.Assistant})
		}
	}
	if req.Preamble != "" {
		msgs = append(msgs, Message{Role: RoleAssistant, Content: req.Preamble})
	}
	msgs = append(msgs, Message{Role: RoleUser, Content: req.Message})
	return msgs
}

type unavailable struct{ reason error }

func (u unavailable) Name() string     { return tierNone }
func (u unavailable) Describe() string { return "no model configured" }
func (u unavailable) Call(context.Context, Request) Result {
	return Failure(fmt.Errorf("%w: %w", ErrNoBackend, u.reason))
}

// Selection is the backend chosen at start-up.
type Selection struct {
	Backend  Backend
	Degraded bool
	// Reason is why the preferred tier was not used.
	Reason error
}

// SelectBackend picks preferred when it initialised (initErr == nil) and
// falls back otherwise. It never fails: with no usable backend at all every
// turn answers with the apology.
func SelectBackend(ctx context.Context, preferred Backend, initErr error, fallback Backend, log logger.Logger) Selection {
	if log == nil {
		log = logger.Nop()
	}
	if preferred != nil && initErr == nil {
		log.Info(ctx, "chat backend selected", logger.String("backend", preferred.Name()), logger.String("model", preferred.Describe()))
		metrics.RecordBackendSelection(preferred.Name(), false)
		return Selection{Backend: preferred}
	}
	reason := initErr
	if reason == nil {
		reason = ErrNoBackend
	}
	if fallback == nil {
		log.Error(ctx, "no chat backend could be initialised", logger.Error(reason))
		metrics.RecordBackendSelection(tierNone, true)
		return Selection{Backend: unavailable{reason: reason}, Degraded: true, Reason: reason}
	}
	log.Warn(ctx, "preferred chat backend unavailable, falling back",
		logger.String("backend", fallback.Name()), logger.String("model", fallback.Describe()), logger.Error(reason))
	metrics.RecordBackendSelection(fallback.Name(), true)
	return Selection{Backend: fallback, Degraded: true, Reason: reason}
}

func nonEmpty(text string) Result {
	if strings.TrimSpace(text) == "" {
		return Failure(ErrEmptyReply)
	}
	return Success(text)
}

func recoverInto(res *Result) {
	if r := recover(); r != nil {
		*res = Failure(fmt.Errorf("%w: %v", ErrBackendPanic, r))
	}
}
