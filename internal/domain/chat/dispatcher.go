package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/okian/vitrine/pkg/logger"
	"github.com/okian/vitrine/pkg/metrics"
)

// ApologyMessage is shown in place of a reply when the backend fails.
const ApologyMessage = "Sorry, I ran into a problem while answering. Please try again in a moment."

// SpecialGreeting opens a turn triggered by the special rule.
const SpecialGreeting = "Coucouuuuu mon tchoupinoux du B15 !!!! Comment il va mon superbe tchoup' masqué ?? " +
	"J'espère que tu as récupéré ton sticker qui te reviens de droit telle une très bonne poupouille que tu es."

// Rule is one trigger phrase. Rules are matched in order.
type Rule struct {
	Phrase  string
	Gender  string
	Special bool
}

// Reply is the outcome of one handled message.
type Reply struct {
	History History
	// Text is the backend reply, or ApologyMessage on failure. Empty when
	// the message was ignored.
	Text         string
	Triggered    bool
	Notification string
	Backend      string
	Failed       bool
}

// Dispatcher handles chat turns against one backend.
type Dispatcher struct {
	backend   Backend
	prompts   *PromptBuilder
	rules     []Rule
	timeout   time.Duration
	assistant string
	log       logger.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithRules sets the trigger table. Phrases are lowercased; empty phrases
// are dropped.
func WithRules(rules ...Rule) DispatcherOption {
	return func(d *Dispatcher) {
		d.rules = d.rules[:0]
		for _, r := range rules {
			r.Phrase = strings.ToLower(strings.TrimSpace(r.Phrase))
			if r.Phrase == "" {
				continue
			}
			d.rules = append(d.rules, r)
		}
	}
}

// WithLogger sets the dispatcher logger.
func WithLogger(l logger.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.log = l
		}
	}
}

// WithTimeout bounds each backend call. Zero disables the bound.
func WithTimeout(t time.Duration) DispatcherOption {
	return func(d *Dispatcher) { d.timeout = t }
}

// WithAssistantName overrides the name used in the notification.
func WithAssistantName(name string) DispatcherOption {
	return func(d *Dispatcher) {
		if name != "" {
			d.assistant = name
		}
	}
}

// NewDispatcher builds a dispatcher. A nil backend answers every turn with
// the apology.
func NewDispatcher(backend Backend, prompts *PromptBuilder, opts ...DispatcherOption) *Dispatcher {
	if backend == nil {
		backend = unavailable{reason: ErrNoBackend}
	}
	if prompts == nil {
		prompts = NewPromptBuilder("Assistant", nil, "")
	}
	d := &Dispatcher{
		backend:   backend,
		prompts:   prompts,
		assistant: prompts.Assistant(),
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Backend returns the backend answering turns.
func (d *Dispatcher) Backend() Backend { return d.backend }

// Detect returns the first rule whose phrase occurs in message.
func (d *Dispatcher) Detect(message string) (Rule, bool) {
	lower := strings.ToLower(message)
	for _, r := range d.rules {
		if strings.Contains(lower, r.Phrase) {
			return r, true
		}
	}
	return Rule{}, false
}

// Greeting is the opening line for a triggered turn.
func Greeting(r Rule) string {
	if r.Special {
		return SpecialGreeting
	}
	return fmt.Sprintf("Coucouuuuu %s %s !!!! Comment ça va par ici ??", r.Gender, r.Phrase)
}

// Notification is the banner shown when a trigger fires.
func (d *Dispatcher) Notification() string {
	return fmt.Sprintf("🎉 Easter egg found: You have unlocked the full potential of %s! 🎉", d.assistant)
}

// Handle answers message given the session history and returns the
// updated history. It never fails: backend errors become one apology turn.
// A blank message leaves the history untouched.
func (d *Dispatcher) Handle(ctx context.Context, message string, history History) Reply {
	out := history.Clone()
	if strings.TrimSpace(message) == "" {
		return Reply{History: out, Backend: d.backend.Name()}
	}

	rule, triggered := d.Detect(message)
	req := Request{History: history.Clone(), Message: message}
	greeting := ""
	if triggered {
		greeting = Greeting(rule)
		req.SystemPrompt = d.prompts.Playful(rule.Phrase)
		req.Preamble = greeting
		req.Triggered = true
	} else {
		req.SystemPrompt = d.prompts.Base()
	}

	res := d.call(ctx, req)
	name := d.backend.Name()
	reply := Reply{Backend: name, Triggered: triggered}

	if !res.OK() {
		d.log.Error(ctx, "chat backend call failed",
			logger.String("backend", name), logger.Bool("triggered", triggered), logger.Error(res.Reason()))
		metrics.RecordChatFailure(name)
		reply.Failed = true
		reply.Text = ApologyMessage
		reply.History = append(out, Turn{User: message, Assistant: ApologyMessage})
		return reply
	}

	metrics.RecordChatTurn(name, triggered)
	reply.Text = res.Text()
	if !triggered {
		reply.History = append(out, Turn{User: message, Assistant: res.Text()})
		return reply
	}

	d.log.Info(ctx, "easter egg triggered", logger.String("phrase", rule.Phrase), logger.Bool("special", rule.Special))
	metrics.RecordEasterEgg(rule.Special)
	reply.Notification = d.Notification()
	reply.Text = greeting + "\n\n" + res.Text()
	reply.History = append(out,
		Turn{User: message, Assistant: reply.Notification},
		Turn{Assistant: reply.Text},
	)
	return reply
}

func (d *Dispatcher) call(ctx context.Context, req Request) Result {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	start := time.Now()
	res := d.backend.Call(ctx, req)
	metrics.RecordChatLatency(d.backend.Name(), time.Since(start))
	return res
}
