// Package chat routes a visitor's message to a language-model backend.
//
// The dispatcher has two orthogonal axes: which backend tier answers (a
// tool-using agent or a plain completion) and which mode the turn runs in
// (normal, or triggered by a hidden phrase). Backend failures never escape a
// turn; they become a canned apology in the history.
package chat

// Role tags a completion message.
type Role string

// Completion roles.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one role-tagged completion message.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Turn is one (visitor, assistant) exchange. User is empty for assistant-only
// turns such as the greeting after a trigger.
type Turn struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}

// History is the append-only list of turns of one session.
type History []Turn

// Clone returns an independent copy.
func (h History) Clone() History {
	if h == nil {
		return History{}
	}
	out := make(History, len(h))
	copy(out, h)
	return out
}

// Request is what a backend needs to answer one turn.
type Request struct {
	SystemPrompt string
	History      History
	// Preamble is an assistant message placed just before the visitor's
	// message, used for the trigger greeting.
	Preamble  string
	Message   string
	Triggered bool
}

// Result is either a reply text or the reason the call failed.
type Result struct {
	text   string
	reason error
}

// Success wraps a reply.
func Success(text string) Result { return Result{text: text} }

// Failure wraps the reason a call failed. A nil reason is reported as
// ErrNoBackend so a Failure is never mistaken for a success.
func Failure(reason error) Result {
	if reason == nil {
		reason = ErrNoBackend
	}
	return Result{reason: reason}
}

// OK reports whether the call produced a reply.
func (r Result) OK() bool { return r.reason == nil }

// Text returns the reply of a successful call.
func (r Result) Text() string { return r.text }

// Reason returns why the call failed, or nil.
func (r Result) Reason() error { return r.reason }
